package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"

	"github.com/plotline-hq/plotline/modules/core/domain/entities/tenant"
	"github.com/plotline-hq/plotline/pkg/composables"
	"github.com/plotline-hq/plotline/pkg/itf"
	"github.com/plotline-hq/plotline/pkg/middleware"
)

var frozenAt = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

func withTenant(t *tenant.Tenant) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(composables.WithTenant(r.Context(), t)))
		})
	}
}

func newGatedRouter(t *tenant.Tenant) *mux.Router {
	r := mux.NewRouter()
	r.Use(withTenant(t))
	r.Use(middleware.RequireSubscription(clockwork.NewFakeClockAt(frozenAt)))
	r.PathPrefix("/").HandlerFunc(okHandler)
	return r
}

func suspendedTenant() *tenant.Tenant {
	return itf.ActiveTenant("Lapsed Realty", "lapsed", frozenAt.AddDate(-2, 0, 0))
}

func TestRequireSubscription_ActiveTenantWrites(t *testing.T) {
	router := newGatedRouter(itf.ActiveTenant("Current Realty", "current", frozenAt))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/plots", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireSubscription_SuspendedTenantWriteDenied(t *testing.T) {
	router := newGatedRouter(suspendedTenant())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/plots", nil))

	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Contains(t, rec.Body.String(), "SUBSCRIPTION_REQUIRED")
}

func TestRequireSubscription_SuspendedTenantReadsStillWork(t *testing.T) {
	router := newGatedRouter(suspendedTenant())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plots", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireSubscription_SuspendedTenantReachesBilling(t *testing.T) {
	router := newGatedRouter(suspendedTenant())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/billing/checkout", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "billing is on the public allowlist so a lapsed tenant can pay")
}

func TestRequireSubscription_GraceTenantStillWrites(t *testing.T) {
	g := tenant.New("Grace Realty", "grace", 14*24*time.Hour)
	g.Activate(frozenAt.AddDate(0, -12, 0), frozenAt.Add(-24*time.Hour), frozenAt.Add(48*time.Hour))

	router := newGatedRouter(g)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/plots", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireSubscription_GraceBoundaryFlipsWithClock(t *testing.T) {
	g := tenant.New("Edge Realty", "edge", 14*24*time.Hour)
	g.Activate(frozenAt.AddDate(0, -12, 0), frozenAt.Add(-72*time.Hour), frozenAt.Add(time.Second))

	write := func(at time.Time) int {
		r := mux.NewRouter()
		r.Use(withTenant(g))
		r.Use(middleware.RequireSubscription(clockwork.NewFakeClockAt(at)))
		r.PathPrefix("/").HandlerFunc(okHandler)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/plots", nil))
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, write(frozenAt), "one second before the grace window closes")
	assert.Equal(t, http.StatusPaymentRequired, write(frozenAt.Add(2*time.Second)), "one second after")
}
