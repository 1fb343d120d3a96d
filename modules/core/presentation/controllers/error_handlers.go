package controllers

import (
	"net/http"

	"github.com/plotline-hq/plotline/pkg/httpapi"
)

func NotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "resource not found", map[string]string{
			"path": r.URL.Path,
		})
	})
}

func MethodNotAllowed() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", map[string]string{
			"path":   r.URL.Path,
			"method": r.Method,
		})
	})
}
