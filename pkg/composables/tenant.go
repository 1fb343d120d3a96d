package composables

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/plotline-hq/plotline/modules/core/domain/entities/tenant"
	"github.com/plotline-hq/plotline/pkg/constants"
)

var (
	ErrNoTenant = errors.New("tenant not found in context")
)

// WithTenant returns a new context scoped to the given tenant. The context
// only ever holds a fully resolved *tenant.Tenant, never a bare identifier:
// downstream code can rely on the type without defensive checks.
//
// Context values are request-local by construction, so concurrent requests
// cannot observe each other's tenant, and restoring a prior scope is just
// keeping the parent context.
func WithTenant(ctx context.Context, t *tenant.Tenant) context.Context {
	return context.WithValue(ctx, constants.TenantKey, t)
}

// WithoutTenant clears the tenant for an internal sub-operation. Queries run
// under the returned context fail tenant resolution instead of silently
// inheriting the caller's scope.
func WithoutTenant(ctx context.Context) context.Context {
	return context.WithValue(ctx, constants.TenantKey, (*tenant.Tenant)(nil))
}

// UseTenant returns the tenant the current operation is scoped to.
func UseTenant(ctx context.Context) (*tenant.Tenant, error) {
	t, ok := ctx.Value(constants.TenantKey).(*tenant.Tenant)
	if !ok || t == nil {
		return nil, ErrNoTenant
	}
	return t, nil
}

// UseTenantID is a convenience for the common case where only the owning
// tenant's ID is needed for a query predicate.
func UseTenantID(ctx context.Context) (uuid.UUID, error) {
	t, err := UseTenant(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return t.ID(), nil
}

// MustUseTenantID panics if no tenant is in scope. Reserved for code paths
// that run strictly behind the tenant middleware.
func MustUseTenantID(ctx context.Context) uuid.UUID {
	id, err := UseTenantID(ctx)
	if err != nil {
		panic(err)
	}
	return id
}
