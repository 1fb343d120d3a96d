package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/plotline-hq/plotline/modules/estate/services"
	"github.com/plotline-hq/plotline/pkg/constants"
	"github.com/plotline-hq/plotline/pkg/httpapi"
)

// PlotsController serves a tenant's plot inventory. Routes are nested under
// the tenant slug; the tenant middleware has already scoped the context by
// the time a handler runs.
type PlotsController struct {
	service *services.PlotService
}

func NewPlotsController(service *services.PlotService) *PlotsController {
	return &PlotsController{service: service}
}

func (c *PlotsController) Key() string {
	return "/plots"
}

func (c *PlotsController) Register(r *mux.Router) {
	router := r.PathPrefix("/{tenant}/plots").Subrouter()
	router.HandleFunc("", c.list).Methods(http.MethodGet)
	router.HandleFunc("", c.create).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.get).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.delete).Methods(http.MethodDelete)
}

func (c *PlotsController) list(w http.ResponseWriter, r *http.Request) {
	plots, err := c.service.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]plotResponse, 0, len(plots))
	for _, p := range plots {
		out = append(out, toPlotResponse(p))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

func (c *PlotsController) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid plot id", nil)
		return
	}
	p, err := c.service.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toPlotResponse(p))
}

func (c *PlotsController) create(w http.ResponseWriter, r *http.Request) {
	var dto createPlotRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid JSON", nil)
		return
	}
	if err := constants.Validate.Struct(dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error(), nil)
		return
	}

	p, err := c.service.Create(r.Context(), dto.Estate, dto.Number, dto.AreaSqm, dto.Price)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toPlotResponse(p))
}

func (c *PlotsController) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid plot id", nil)
		return
	}
	if err := c.service.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusNoContent, nil)
}
