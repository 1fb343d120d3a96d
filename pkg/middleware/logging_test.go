package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/plotline-hq/plotline/pkg/middleware"
)

func newLoggedRouter(handler http.HandlerFunc) *mux.Router {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	r := mux.NewRouter()
	r.Use(middleware.WithLogger(logger, middleware.LoggerOptions{}))
	r.PathPrefix("/").HandlerFunc(handler)
	return r
}

func TestWithLogger_SetsRequestID(t *testing.T) {
	router := newLoggedRouter(okHandler)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plots", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestWithLogger_PropagatesIncomingRequestID(t *testing.T) {
	router := newLoggedRouter(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/plots", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get("X-Request-Id"))
}

func TestWithLogger_RecoversPanicsIntoJSON500(t *testing.T) {
	router := newLoggedRouter(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plots", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_SERVER_ERROR")
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestWithLogger_RepanicOption(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	r := mux.NewRouter()
	r.Use(middleware.WithLogger(logger, middleware.LoggerOptions{Repanic: true}))
	r.PathPrefix("/").HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	assert.Panics(t, func() {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/plots", nil))
	})
}
