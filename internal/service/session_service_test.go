package service

import (
	"context"
	"testing"
	"time"

	"techfix-tracking-be/internal/dto"
	"techfix-tracking-be/internal/entity"
	"techfix-tracking-be/internal/pkg/authz"
	"techfix-tracking-be/internal/repository/cache"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreateRequest() *dto.CreateSessionRequest {
	return &dto.CreateSessionRequest{
		Token: "A1B2-C3D4",
		Email: "user@example.com",
		Issue: "wifi drops every few minutes",
	}
}

func TestSessionCreate(t *testing.T) {
	f := newStoreFakes()
	tracker := &fakeTracker{}
	svc := NewSessionService(f.factory, authz.NewGuard(), cache.NewNoopCache(), tracker, 0)

	resp, err := svc.Create(ctxAs(authz.RoleFrontdoor), validCreateRequest())
	require.NoError(t, err)

	assert.Equal(t, "A1B2-C3D4", resp.Token)
	assert.Equal(t, "user@example.com", resp.Email)
	assert.True(t, resp.Active)
	assert.Equal(t, "basic", resp.PlanType)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), resp.ExpiresAt, 2*time.Second)
	assert.Nil(t, resp.TransactionRef)

	stored := f.sessions.get("A1B2-C3D4")
	require.NotNil(t, stored)
	assert.Equal(t, resp.Id, stored.Id)

	events := tracker.tracked()
	require.Len(t, events, 1)
	assert.Equal(t, entity.EventTokenGenerated, events[0].EventType)
	assert.Equal(t, "A1B2-C3D4", events[0].Token)
	assert.Equal(t, "user@example.com", events[0].Email)
}

func TestSessionCreateExplicitExpiry(t *testing.T) {
	f := newStoreFakes()
	svc := NewSessionService(f.factory, authz.NewGuard(), cache.NewNoopCache(), &fakeTracker{}, 0)

	expiresAt := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	req := validCreateRequest()
	req.ExpiresAt = &expiresAt
	req.PlanType = "pro"

	resp, err := svc.Create(ctxAs(authz.RoleFrontdoor), req)
	require.NoError(t, err)
	assert.Equal(t, expiresAt, resp.ExpiresAt)
	assert.Equal(t, "pro", resp.PlanType)
}

func TestSessionCreateDuplicateToken(t *testing.T) {
	f := newStoreFakes()
	svc := NewSessionService(f.factory, authz.NewGuard(), cache.NewNoopCache(), &fakeTracker{}, 0)
	ctx := ctxAs(authz.RoleFrontdoor)

	_, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	req := validCreateRequest()
	req.Email = "someone-else@example.com"
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, entity.ErrDuplicateToken)
}

func TestSessionCreateValidation(t *testing.T) {
	f := newStoreFakes()
	svc := NewSessionService(f.factory, authz.NewGuard(), cache.NewNoopCache(), &fakeTracker{}, 0)
	ctx := ctxAs(authz.RoleFrontdoor)
	past := time.Now().Add(-time.Minute)

	tests := []struct {
		name   string
		mutate func(*dto.CreateSessionRequest)
	}{
		{"token without separator", func(r *dto.CreateSessionRequest) { r.Token = "A1B2C3D4" }},
		{"lowercase token", func(r *dto.CreateSessionRequest) { r.Token = "a1b2-c3d4" }},
		{"token with symbol", func(r *dto.CreateSessionRequest) { r.Token = "A1B2-C3D!" }},
		{"bad email", func(r *dto.CreateSessionRequest) { r.Email = "not-an-email" }},
		{"missing issue", func(r *dto.CreateSessionRequest) { r.Issue = "" }},
		{"unknown plan type", func(r *dto.CreateSessionRequest) { r.PlanType = "platinum" }},
		{"expiry in the past", func(r *dto.CreateSessionRequest) { r.ExpiresAt = &past }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(req)
			_, err := svc.Create(ctx, req)
			assert.ErrorIs(t, err, entity.ErrConstraintViolation)
		})
	}

	assert.Equal(t, 0, f.sessions.size())
}

func TestSessionCreateAuthz(t *testing.T) {
	f := newStoreFakes()
	svc := NewSessionService(f.factory, authz.NewGuard(), cache.NewNoopCache(), &fakeTracker{}, 0)

	_, err := svc.Create(context.Background(), validCreateRequest())
	assert.ErrorIs(t, err, authz.ErrPermissionDenied)

	_, err = svc.Create(ctxAs(authz.RoleScheduler), validCreateRequest())
	assert.ErrorIs(t, err, authz.ErrPermissionDenied)

	assert.Equal(t, 0, f.sessions.size())
}

func TestSessionFindByToken(t *testing.T) {
	f := newStoreFakes()
	svc := NewSessionService(f.factory, authz.NewGuard(), cache.NewNoopCache(), &fakeTracker{}, 0)
	ctx := ctxAs(authz.RoleFrontdoor)

	created, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	found, err := svc.FindByToken(ctx, created.Token)
	require.NoError(t, err)
	assert.Equal(t, created.Id, found.Id)

	_, err = svc.FindByToken(ctx, "0000-FFFF")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}

func TestSessionFindByTokenUsesCache(t *testing.T) {
	f := newStoreFakes()
	svc := NewSessionService(f.factory, authz.NewGuard(), cache.NewMemoryCache(time.Minute), &fakeTracker{}, 0)
	ctx := ctxAs(authz.RoleFrontdoor)

	created, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	_, err = svc.FindByToken(ctx, created.Token)
	require.NoError(t, err)
	assert.Equal(t, 1, f.sessions.findCalls)

	_, err = svc.FindByToken(ctx, created.Token)
	require.NoError(t, err)
	assert.Equal(t, 1, f.sessions.findCalls, "second lookup should be served from cache")
}

func TestSessionMarkInactiveInvalidatesCache(t *testing.T) {
	f := newStoreFakes()
	svc := NewSessionService(f.factory, authz.NewGuard(), cache.NewMemoryCache(time.Minute), &fakeTracker{}, 0)
	frontdoor := ctxAs(authz.RoleFrontdoor)
	billing := ctxAs(authz.RoleBilling)

	created, err := svc.Create(frontdoor, validCreateRequest())
	require.NoError(t, err)

	_, err = svc.FindByToken(frontdoor, created.Token)
	require.NoError(t, err)
	require.Equal(t, 1, f.sessions.findCalls)

	require.NoError(t, svc.MarkInactive(billing, created.Token))

	found, err := svc.FindByToken(frontdoor, created.Token)
	require.NoError(t, err)
	assert.Equal(t, 2, f.sessions.findCalls, "stale cache entry must not survive deactivation")
	assert.False(t, found.Active)

	err = svc.MarkInactive(billing, "0000-FFFF")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}

func TestSessionAttachPlan(t *testing.T) {
	f := newStoreFakes()
	svc := NewSessionService(f.factory, authz.NewGuard(), cache.NewNoopCache(), &fakeTracker{}, 0)
	planner := ctxAs(authz.RolePlanner)

	created, err := svc.Create(ctxAs(authz.RoleFrontdoor), validCreateRequest())
	require.NoError(t, err)

	plan := map[string]interface{}{
		"steps": []interface{}{"run diagnostics", "update driver"},
	}
	require.NoError(t, svc.AttachPlan(planner, &dto.AttachPlanRequest{Token: created.Token, Plan: plan}))

	stored := f.sessions.get(created.Token)
	require.NotNil(t, stored)
	assert.Contains(t, stored.Plan, "steps")

	err = svc.AttachPlan(planner, &dto.AttachPlanRequest{Token: "0000-FFFF", Plan: plan})
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)

	err = svc.AttachPlan(planner, &dto.AttachPlanRequest{Token: created.Token, Plan: map[string]interface{}{}})
	assert.ErrorIs(t, err, entity.ErrConstraintViolation)

	err = svc.AttachPlan(ctxAs(authz.RoleBilling), &dto.AttachPlanRequest{Token: created.Token, Plan: plan})
	assert.ErrorIs(t, err, authz.ErrPermissionDenied)
}

func TestSessionAttachTransaction(t *testing.T) {
	f := newStoreFakes()
	svc := NewSessionService(f.factory, authz.NewGuard(), cache.NewNoopCache(), &fakeTracker{}, 0)
	billing := ctxAs(authz.RoleBilling)

	created, err := svc.Create(ctxAs(authz.RoleFrontdoor), validCreateRequest())
	require.NoError(t, err)

	require.NoError(t, svc.AttachTransaction(billing, created.Token, "ch_3NqK1x2eZvKYlo2C"))

	stored := f.sessions.get(created.Token)
	require.NotNil(t, stored)
	require.NotNil(t, stored.TransactionRef)
	assert.Equal(t, "ch_3NqK1x2eZvKYlo2C", *stored.TransactionRef)

	err = svc.AttachTransaction(billing, created.Token, "")
	assert.ErrorIs(t, err, entity.ErrConstraintViolation)

	err = svc.AttachTransaction(billing, "0000-FFFF", "ch_x")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)

	err = svc.AttachTransaction(ctxAs(authz.RolePlanner), created.Token, "ch_y")
	assert.ErrorIs(t, err, authz.ErrPermissionDenied)
}

func TestSessionCreateSurvivesTrackerFailure(t *testing.T) {
	f := newStoreFakes()
	log := &testLogger{}

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	require.NoError(t, pubSub.Close())
	tracker := NewTrackerService(pubSub, "TRACK_EVENT", log)

	svc := NewSessionService(f.factory, authz.NewGuard(), cache.NewNoopCache(), tracker, 0)

	resp, err := svc.Create(ctxAs(authz.RoleFrontdoor), validCreateRequest())
	require.NoError(t, err, "a dead tracking bus must not fail session creation")
	assert.NotNil(t, f.sessions.get(resp.Token))
	assert.Equal(t, 1, log.count("warn"))
}

func TestSessionLifecycleThroughCleanup(t *testing.T) {
	f := newStoreFakes()
	sessions := NewSessionService(f.factory, authz.NewGuard(), cache.NewNoopCache(), &fakeTracker{}, 0)
	cleanup := newCleanupFixture(f, 7*24*time.Hour, false)
	frontdoor := ctxAs(authz.RoleFrontdoor)

	expiresAt := time.Now().Add(24 * time.Hour)
	created, err := sessions.Create(frontdoor, &dto.CreateSessionRequest{
		Token:     "TEST-1234",
		Email:     "test@example.com",
		Issue:     "Windows update error",
		PlanType:  "basic",
		ExpiresAt: &expiresAt,
	})
	require.NoError(t, err)
	assert.True(t, created.Active)

	found, err := sessions.FindByToken(frontdoor, "TEST-1234")
	require.NoError(t, err)
	assert.Equal(t, created.Id, found.Id)
	assert.Equal(t, "test@example.com", found.Email)

	require.NoError(t, sessions.MarkInactive(ctxAs(authz.RoleBilling), "TEST-1234"))

	// Age the row past retention in place of waiting eight days.
	f.sessions.get("TEST-1234").CreatedAt = time.Now().Add(-8 * 24 * time.Hour)

	deleted, err := cleanup.Run(ctxAs(authz.RoleScheduler))
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	_, err = sessions.FindByToken(frontdoor, "TEST-1234")
	assert.ErrorIs(t, err, entity.ErrSessionNotFound)
}
