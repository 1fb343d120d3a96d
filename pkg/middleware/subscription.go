package middleware

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"

	"github.com/plotline-hq/plotline/modules/core/domain/entities/tenant"
	"github.com/plotline-hq/plotline/pkg/composables"
	"github.com/plotline-hq/plotline/pkg/configuration"
	"github.com/plotline-hq/plotline/pkg/httpapi"
	"github.com/plotline-hq/plotline/pkg/metrics"
)

// RequireSubscription gates requests by the tenant's effective subscription
// state at the time of the request. Reads stay allowed all the way down to
// read-only access; writes stop as soon as the tenant degrades past grace.
// The billing and public surfaces must sit on the path allowlist so a lapsed
// tenant can still reach the payment page.
func RequireSubscription(clock clockwork.Clock) mux.MiddlewareFunc {
	conf := configuration.Use()
	publicPaths := conf.PublicPathList()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path, publicPaths) {
				next.ServeHTTP(w, r)
				return
			}

			t, err := composables.UseTenant(r.Context())
			if err != nil {
				// Tenant resolution runs earlier in the chain; nothing to gate.
				next.ServeHTTP(w, r)
				return
			}

			status := t.Status(clock.Now())
			access := status.Access()

			if access == tenant.AccessFull {
				next.ServeHTTP(w, r)
				return
			}

			if isWriteMethod(r.Method) && !status.AllowsWrite() {
				metrics.SubscriptionDenials.WithLabelValues(string(status)).Inc()
				_ = httpapi.WriteError(w, http.StatusPaymentRequired, "SUBSCRIPTION_REQUIRED", "subscription required", map[string]string{
					"status": string(status),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isWriteMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
