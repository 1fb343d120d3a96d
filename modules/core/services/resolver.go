package services

import (
	"context"

	"github.com/plotline-hq/plotline/modules/core/domain/entities/tenant"
	"github.com/plotline-hq/plotline/pkg/composables"
)

// Resolver maps an incoming request to exactly one tenant, or to none.
// Resolution is all-or-nothing: a partial identifier (a slug that matches no
// tenant, a principal whose home tenant is gone) is a hard error, never a
// fallback to an unscoped context.
type Resolver struct {
	repo tenant.Repository
}

func NewResolver(repo tenant.Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve picks the tenant for a request. Precedence:
//
//  1. An explicit slug from the URL. A miss is tenant.ErrNotFound. If the
//     context also carries a principal, the principal's home tenant must be
//     the resolved one, otherwise a *tenant.MismatchError is returned and the
//     caller must fail closed.
//  2. The authenticated principal's home tenant.
//  3. Neither: (nil, nil). The caller decides whether an anonymous request is
//     acceptable on this route.
//
// A deactivated tenant resolves the same as a missing one.
func (r *Resolver) Resolve(ctx context.Context, slug string) (*tenant.Tenant, error) {
	principal, hasPrincipal := composables.UsePrincipal(ctx)

	if slug != "" {
		t, err := r.repo.GetBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		if !t.IsActive() {
			return nil, tenant.ErrNotFound
		}
		if hasPrincipal && principal.TenantID != t.ID() {
			return nil, &tenant.MismatchError{
				RequestSlug:     slug,
				RequestTenant:   t.ID(),
				PrincipalTenant: principal.TenantID,
			}
		}
		return t, nil
	}

	if hasPrincipal {
		t, err := r.repo.GetByID(ctx, principal.TenantID)
		if err != nil {
			return nil, err
		}
		if !t.IsActive() {
			return nil, tenant.ErrNotFound
		}
		return t, nil
	}

	return nil, nil
}
