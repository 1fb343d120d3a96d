package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plotline-hq/plotline/modules/core/domain/entities/tenant"
	"github.com/plotline-hq/plotline/modules/core/services"
	"github.com/plotline-hq/plotline/pkg/composables"
	"github.com/plotline-hq/plotline/pkg/itf"
	"github.com/plotline-hq/plotline/pkg/middleware"
)

func withPrincipal(p *composables.Principal) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(composables.WithPrincipal(r.Context(), p)))
		})
	}
}

func newTenantRouter(resolver *services.Resolver, auditRepo *itf.InMemoryAuditRepository, principal *composables.Principal, handler http.HandlerFunc) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.WithLogger(logrus.New(), middleware.LoggerOptions{}))
	if principal != nil {
		r.Use(withPrincipal(principal))
	}
	r.Use(middleware.RequireTenant(resolver, auditRepo))
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.PathPrefix("/{tenant}/").HandlerFunc(handler)
	return r
}

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRequireTenant_ScopesRequestToResolvedTenant(t *testing.T) {
	acme := itf.TrialTenant("Acme Estates", "acme")
	resolver := services.NewResolver(itf.NewInMemoryTenantRepository(acme))

	var seen *tenant.Tenant
	router := newTenantRouter(resolver, itf.NewInMemoryAuditRepository(), itf.PrincipalFor(acme), func(w http.ResponseWriter, r *http.Request) {
		scoped, err := composables.UseTenant(r.Context())
		require.NoError(t, err)
		seen = scoped
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/acme/plots", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, acme.ID(), seen.ID())
}

func TestRequireTenant_MismatchIsForbiddenAndAudited(t *testing.T) {
	acme := itf.TrialTenant("Acme Estates", "acme")
	rival := itf.TrialTenant("Rival Realty", "rival")
	resolver := services.NewResolver(itf.NewInMemoryTenantRepository(acme, rival))
	auditRepo := itf.NewInMemoryAuditRepository()

	router := newTenantRouter(resolver, auditRepo, itf.PrincipalFor(rival), okHandler)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/acme/plots", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "TENANT_MISMATCH")
	assert.NotContains(t, rec.Body.String(), acme.ID().String(), "response must not leak the target tenant")

	entries, err := auditRepo.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, acme.ID(), entries[0].AttemptedTenant)
	assert.Equal(t, rival.ID(), entries[0].ActualTenant)
	assert.Equal(t, "/acme/plots", entries[0].Path)
}

func TestRequireTenant_UnknownSlugIsNotFound(t *testing.T) {
	resolver := services.NewResolver(itf.NewInMemoryTenantRepository())
	router := newTenantRouter(resolver, itf.NewInMemoryAuditRepository(), nil, okHandler)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ghost/plots", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequireTenant_AnonymousIsUnauthorized(t *testing.T) {
	resolver := services.NewResolver(itf.NewInMemoryTenantRepository())
	router := mux.NewRouter()
	router.Use(middleware.WithLogger(logrus.New(), middleware.LoggerOptions{}))
	router.Use(middleware.RequireTenant(resolver, nil))
	router.HandleFunc("/plots", okHandler)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plots", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireTenant_PublicPathSkipsResolution(t *testing.T) {
	resolver := services.NewResolver(itf.NewInMemoryTenantRepository())
	router := newTenantRouter(resolver, itf.NewInMemoryAuditRepository(), nil, okHandler)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
