// Package authz replaces the schema's old allow-everything access policy
// with an explicit capability check per caller role.
package authz

import (
	"context"
	"errors"
	"fmt"
)

type Role string

const (
	RoleFrontdoor Role = "frontdoor" // public-facing request handler
	RolePlanner   Role = "planner"   // AI planning service
	RoleBilling   Role = "billing"   // payment webhook handler
	RoleScheduler Role = "scheduler" // cron and maintenance jobs
	RoleAdmin     Role = "admin"
)

type Capability string

const (
	CapSessionCreate            Capability = "session:create"
	CapSessionRead              Capability = "session:read"
	CapSessionAttachPlan        Capability = "session:attach_plan"
	CapSessionAttachTransaction Capability = "session:attach_transaction"
	CapSessionDeactivate        Capability = "session:deactivate"
	CapSessionPurge             Capability = "session:purge"
	CapNotificationCreate       Capability = "notification:create"
	CapNotificationRead         Capability = "notification:read"
	CapAnalyticsRecord          Capability = "analytics:record"
	CapAnalyticsRead            Capability = "analytics:read"
	CapAnalyticsAggregate       Capability = "analytics:aggregate"
)

var ErrPermissionDenied = errors.New("permission denied")

// grants maps each caller role to the operations it may perform.
var grants = map[Role][]Capability{
	RoleFrontdoor: {CapSessionCreate, CapSessionRead, CapNotificationRead, CapAnalyticsRecord},
	RolePlanner:   {CapSessionRead, CapSessionAttachPlan, CapAnalyticsRecord},
	RoleBilling:   {CapSessionRead, CapSessionAttachTransaction, CapSessionDeactivate},
	RoleScheduler: {CapSessionPurge, CapSessionDeactivate, CapAnalyticsRecord, CapAnalyticsAggregate},
	RoleAdmin: {
		CapSessionCreate, CapSessionRead, CapSessionAttachPlan, CapSessionAttachTransaction,
		CapSessionDeactivate, CapSessionPurge, CapNotificationCreate, CapNotificationRead,
		CapAnalyticsRecord, CapAnalyticsRead, CapAnalyticsAggregate,
	},
}

// Principal is the verified identity of a calling service.
type Principal struct {
	Service string
	Role    Role
}

func (p Principal) Can(c Capability) bool {
	for _, granted := range grants[p.Role] {
		if granted == c {
			return true
		}
	}
	return false
}

type principalKey struct{}

// WithPrincipal returns a context carrying the caller identity.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext extracts the caller identity, if any.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// AsService is a shorthand for in-process callers (workers, commands).
func AsService(ctx context.Context, service string, role Role) context.Context {
	return WithPrincipal(ctx, Principal{Service: service, Role: role})
}

// Guard checks capabilities against the context principal. Calls with no
// principal at all are denied.
type Guard struct{}

func NewGuard() *Guard {
	return &Guard{}
}

func (g *Guard) Require(ctx context.Context, c Capability) error {
	p, ok := FromContext(ctx)
	if !ok {
		return fmt.Errorf("%w: no principal", ErrPermissionDenied)
	}
	if !p.Can(c) {
		return fmt.Errorf("%w: role %q lacks %q", ErrPermissionDenied, p.Role, c)
	}
	return nil
}
