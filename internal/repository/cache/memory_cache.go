package cache

import (
	"context"
	"time"

	"techfix-tracking-be/internal/entity"

	gocache "github.com/patrickmn/go-cache"
)

type MemoryCache struct {
	store *gocache.Cache
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &MemoryCache{
		store: gocache.New(ttl, 10*time.Minute),
	}
}

func (c *MemoryCache) Get(_ context.Context, token string) (*entity.Session, bool) {
	if x, found := c.store.Get(token); found {
		if session, ok := x.(*entity.Session); ok {
			return session, true
		}
	}
	return nil, false
}

func (c *MemoryCache) Set(_ context.Context, session *entity.Session) {
	if session == nil {
		return
	}
	c.store.Set(session.Token, session, gocache.DefaultExpiration)
}

func (c *MemoryCache) Invalidate(_ context.Context, token string) {
	c.store.Delete(token)
}
