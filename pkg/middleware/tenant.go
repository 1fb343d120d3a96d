package middleware

import (
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"

	"github.com/plotline-hq/plotline/modules/core/domain/entities/audit"
	"github.com/plotline-hq/plotline/modules/core/domain/entities/tenant"
	"github.com/plotline-hq/plotline/modules/core/services"
	"github.com/plotline-hq/plotline/pkg/composables"
	"github.com/plotline-hq/plotline/pkg/configuration"
	"github.com/plotline-hq/plotline/pkg/httpapi"
	"github.com/plotline-hq/plotline/pkg/metrics"
)

// TenantVar is the mux path variable carrying the tenant slug.
const TenantVar = "tenant"

// RequireTenant resolves the request to a tenant and pins it on the context.
// Paths on the public allowlist skip resolution entirely and run unscoped.
// Everything else must resolve to exactly one tenant; a mismatch between the
// URL slug and the principal's home tenant is rejected with 403 and recorded
// in the audit trail.
func RequireTenant(resolver *services.Resolver, auditRepo audit.Repository) mux.MiddlewareFunc {
	conf := configuration.Use()
	publicPaths := conf.PublicPathList()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path, publicPaths) {
				next.ServeHTTP(w, r)
				return
			}

			slug := mux.Vars(r)[TenantVar]
			resolved, err := resolver.Resolve(r.Context(), slug)

			var mismatch *tenant.MismatchError
			switch {
			case errors.As(err, &mismatch):
				metrics.CrossTenantRejections.WithLabelValues(r.Method).Inc()
				recordRejection(r, mismatch, auditRepo)
				_ = httpapi.WriteError(w, http.StatusForbidden, "TENANT_MISMATCH", "access denied", nil)
				return
			case errors.Is(err, tenant.ErrNotFound):
				_ = httpapi.WriteError(w, http.StatusNotFound, "TENANT_NOT_FOUND", "tenant not found", nil)
				return
			case err != nil:
				composables.UseLogger(r.Context()).WithError(err).Error("tenant resolution failed")
				_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "internal server error", nil)
				return
			case resolved == nil:
				_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required", nil)
				return
			}

			ctx := composables.WithTenant(r.Context(), resolved)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func recordRejection(r *http.Request, mismatch *tenant.MismatchError, repo audit.Repository) {
	if repo == nil {
		return
	}
	entry := audit.Entry{
		AttemptedTenant: mismatch.RequestTenant,
		ActualTenant:    mismatch.PrincipalTenant,
		Operation:       r.Method,
		Path:            r.URL.Path,
	}
	if principal, ok := composables.UsePrincipal(r.Context()); ok {
		entry.Actor = principal.Email
	}
	if err := repo.Record(r.Context(), entry); err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("failed to record cross-tenant rejection")
	}
}

func isPublicPath(path string, publicPaths []string) bool {
	for _, prefix := range publicPaths {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}
