package cache

import (
	"context"
	"fmt"
	"time"

	"techfix-tracking-be/internal/entity"
)

// Driver names accepted by New.
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverDisabled = "disabled"
)

// SessionCache sits in front of token lookups. The database stays
// authoritative: a miss or a broken driver just falls through to it, so
// Get reports absence instead of returning errors.
type SessionCache interface {
	Get(ctx context.Context, token string) (*entity.Session, bool)
	Set(ctx context.Context, session *entity.Session)
	Invalidate(ctx context.Context, token string)
}

type Options struct {
	Driver    string
	TTL       time.Duration
	RedisAddr string
}

func New(opts Options) (SessionCache, error) {
	switch opts.Driver {
	case DriverMemory, "":
		return NewMemoryCache(opts.TTL), nil
	case DriverRedis:
		return NewRedisCache(opts.RedisAddr, opts.TTL)
	case DriverDisabled:
		return NewNoopCache(), nil
	default:
		return nil, fmt.Errorf("unknown session cache driver: %q", opts.Driver)
	}
}

// NoopCache turns caching off without special-casing callers.
type NoopCache struct{}

func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

func (NoopCache) Get(context.Context, string) (*entity.Session, bool) { return nil, false }
func (NoopCache) Set(context.Context, *entity.Session)                {}
func (NoopCache) Invalidate(context.Context, string)                  {}
