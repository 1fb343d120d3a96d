package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plotline-hq/plotline/pkg/composables"
	"github.com/plotline-hq/plotline/pkg/configuration"
	"github.com/plotline-hq/plotline/pkg/middleware"
)

func TestAuthenticate_TokenRoundTrip(t *testing.T) {
	conf := configuration.Use()
	original := &composables.Principal{
		UserID:   uuid.New(),
		TenantID: uuid.New(),
		Email:    "agent@acme.example",
		Role:     "agent",
	}
	token, err := middleware.NewToken(original, conf.JWTSecret, time.Hour)
	require.NoError(t, err)

	var got *composables.Principal
	r := mux.NewRouter()
	r.Use(middleware.Authenticate())
	r.HandleFunc("/plots", func(w http.ResponseWriter, req *http.Request) {
		got, _ = composables.UsePrincipal(req.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/plots", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, original.UserID, got.UserID)
	assert.Equal(t, original.TenantID, got.TenantID)
	assert.Equal(t, original.Email, got.Email)
}

func TestAuthenticate_MissingTokenStaysAnonymous(t *testing.T) {
	r := mux.NewRouter()
	r.Use(middleware.Authenticate())
	r.HandleFunc("/plots", func(w http.ResponseWriter, req *http.Request) {
		_, ok := composables.UsePrincipal(req.Context())
		assert.False(t, ok)
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plots", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticate_GarbageTokenRejected(t *testing.T) {
	r := mux.NewRouter()
	r.Use(middleware.Authenticate())
	r.HandleFunc("/plots", okHandler)

	req := httptest.NewRequest(http.MethodGet, "/plots", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_ExpiredTokenRejected(t *testing.T) {
	conf := configuration.Use()
	token, err := middleware.NewToken(&composables.Principal{
		UserID:   uuid.New(),
		TenantID: uuid.New(),
	}, conf.JWTSecret, -time.Minute)
	require.NoError(t, err)

	r := mux.NewRouter()
	r.Use(middleware.Authenticate())
	r.HandleFunc("/plots", okHandler)

	req := httptest.NewRequest(http.MethodGet, "/plots", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
