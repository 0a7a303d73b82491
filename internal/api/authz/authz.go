// Package authz carries the already-resolved actor identity and tenant
// context through requests. Identity-provider integration lives outside this
// system; only the resolved identity and role are consumed here.
package authz

import (
	"context"
	"errors"
	"strconv"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// Actor is the authenticated caller. A nil TenantID with the admin role
// marks a platform operator with cross-tenant access; everyone else is bound
// to exactly one tenant.
type Actor struct {
	ID       int64
	Role     string
	TenantID *int64
}

const (
	RoleAdmin    = "admin"
	RoleStaff    = "staff"
	RoleCustomer = "customer"
)

// Tenant is the organization resolved from the request (subdomain routing).
type Tenant struct {
	ID   int64
	Name string
	Slug string
}

type actorContextKey struct{}
type tenantContextKey struct{}

func ContextWithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ContextWithTenant(ctx context.Context, tenant *Tenant) context.Context {
	return context.WithValue(ctx, tenantContextKey{}, tenant)
}

// ActorFromContext retrieves the Actor stored in ctx, or nil.
func ActorFromContext(ctx context.Context) *Actor {
	if ctx == nil {
		return nil
	}
	actor, ok := ctx.Value(actorContextKey{}).(*Actor)
	if !ok {
		return nil
	}
	return actor
}

// TenantFromContext retrieves the Tenant stored in ctx, or nil.
func TenantFromContext(ctx context.Context) *Tenant {
	if ctx == nil {
		return nil
	}
	tenant, ok := ctx.Value(tenantContextKey{}).(*Tenant)
	if !ok {
		return nil
	}
	return tenant
}

// TenantIDString returns the tenant ID as a string, or empty if no tenant is
// in context.
func TenantIDString(ctx context.Context) string {
	if tenant := TenantFromContext(ctx); tenant != nil {
		return strconv.FormatInt(tenant.ID, 10)
	}
	return ""
}

// IsAdmin reports whether the actor holds the admin role.
func IsAdmin(actor *Actor) bool {
	return actor != nil && actor.Role == RoleAdmin
}

// RequireTenantAccess checks that the actor in ctx may touch the given
// tenant's records. Platform admins (admin role, no tenant binding) may
// touch any tenant; everyone else only their own.
func RequireTenantAccess(ctx context.Context, tenantID int64) error {
	actor := ActorFromContext(ctx)
	if actor == nil {
		return ErrUnauthenticated
	}

	if actor.TenantID == nil {
		if IsAdmin(actor) {
			return nil
		}
		return ErrForbidden
	}

	if *actor.TenantID != tenantID {
		return ErrForbidden
	}
	return nil
}

// RequireRole checks the actor holds the given role. Admins satisfy every
// role check.
func RequireRole(ctx context.Context, role string) error {
	actor := ActorFromContext(ctx)
	if actor == nil {
		return ErrUnauthenticated
	}
	if actor.Role == role || IsAdmin(actor) {
		return nil
	}
	return ErrForbidden
}
