package cache

import (
	"context"
	"testing"
	"time"

	"techfix-tracking-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession(token string) *entity.Session {
	return &entity.Session{
		Id:        uuid.New(),
		Token:     token,
		Email:     "user@example.com",
		Issue:     "laptop will not boot",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(30 * time.Minute),
		Active:    true,
		PlanType:  entity.PlanTypeBasic,
	}
}

func TestMemoryCacheSetGetInvalidate(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	ctx := context.Background()
	session := testSession("A1B2-C3D4")

	_, found := c.Get(ctx, session.Token)
	assert.False(t, found)

	c.Set(ctx, session)
	got, found := c.Get(ctx, session.Token)
	require.True(t, found)
	assert.Equal(t, session.Id, got.Id)
	assert.Equal(t, session.Email, got.Email)

	c.Invalidate(ctx, session.Token)
	_, found = c.Get(ctx, session.Token)
	assert.False(t, found)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(20 * time.Millisecond)
	ctx := context.Background()
	session := testSession("FFFF-0000")

	c.Set(ctx, session)
	_, found := c.Get(ctx, session.Token)
	require.True(t, found)

	time.Sleep(50 * time.Millisecond)
	_, found = c.Get(ctx, session.Token)
	assert.False(t, found)
}

func TestMemoryCacheIgnoresNil(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	c.Set(context.Background(), nil)
	_, found := c.Get(context.Background(), "")
	assert.False(t, found)
}

func TestNewCacheFactory(t *testing.T) {
	c, err := New(Options{Driver: DriverMemory, TTL: time.Minute})
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, c)

	c, err = New(Options{Driver: ""})
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, c)

	c, err = New(Options{Driver: DriverDisabled})
	require.NoError(t, err)
	assert.IsType(t, &NoopCache{}, c)

	_, err = New(Options{Driver: "memcached"})
	assert.Error(t, err)
}

func TestNoopCacheNeverHits(t *testing.T) {
	c := NewNoopCache()
	ctx := context.Background()
	session := testSession("1234-ABCD")

	c.Set(ctx, session)
	_, found := c.Get(ctx, session.Token)
	assert.False(t, found)
}
