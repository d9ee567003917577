package cache

import (
	"context"
	"encoding/json"
	"time"

	"techfix-tracking-be/internal/entity"

	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(addr string, ttl time.Duration) (*RedisCache, error) {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

func sessionKey(token string) string {
	return "session:" + token
}

func (c *RedisCache) Get(ctx context.Context, token string) (*entity.Session, bool) {
	raw, err := c.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		// redis.Nil and transport errors both read as a miss.
		return nil, false
	}

	var session entity.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, false
	}
	return &session, true
}

func (c *RedisCache) Set(ctx context.Context, session *entity.Session) {
	if session == nil {
		return
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return
	}
	c.client.Set(ctx, sessionKey(session.Token), raw, c.ttl)
}

func (c *RedisCache) Invalidate(ctx context.Context, token string) {
	c.client.Del(ctx, sessionKey(token))
}
