package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/plotline-hq/plotline/pkg/httpapi"
)

type HealthController struct{}

func NewHealthController() *HealthController {
	return &HealthController{}
}

func (c *HealthController) Key() string {
	return "/health"
}

func (c *HealthController) Register(r *mux.Router) {
	r.HandleFunc("/health", c.handle).Methods(http.MethodGet)
}

func (c *HealthController) handle(w http.ResponseWriter, _ *http.Request) {
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
