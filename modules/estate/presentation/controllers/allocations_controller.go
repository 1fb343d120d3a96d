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

// AllocationsController serves plot sales: reservation, completion and
// cancellation.
type AllocationsController struct {
	service *services.AllocationService
}

func NewAllocationsController(service *services.AllocationService) *AllocationsController {
	return &AllocationsController{service: service}
}

func (c *AllocationsController) Key() string {
	return "/allocations"
}

func (c *AllocationsController) Register(r *mux.Router) {
	router := r.PathPrefix("/{tenant}/allocations").Subrouter()
	router.HandleFunc("", c.list).Methods(http.MethodGet)
	router.HandleFunc("", c.create).Methods(http.MethodPost)
	router.HandleFunc("/{id}/complete", c.complete).Methods(http.MethodPost)
	router.HandleFunc("/{id}/cancel", c.cancel).Methods(http.MethodPost)
}

func (c *AllocationsController) list(w http.ResponseWriter, r *http.Request) {
	allocations, err := c.service.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]allocationResponse, 0, len(allocations))
	for _, a := range allocations {
		out = append(out, toAllocationResponse(a))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

func (c *AllocationsController) create(w http.ResponseWriter, r *http.Request) {
	var dto createAllocationRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid JSON", nil)
		return
	}
	if err := constants.Validate.Struct(dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error(), nil)
		return
	}

	plotID, _ := uuid.Parse(dto.PlotID)
	clientID, _ := uuid.Parse(dto.ClientID)
	marketerID, _ := uuid.Parse(dto.MarketerID)

	a, err := c.service.Allocate(r.Context(), plotID, clientID, marketerID, dto.Price)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toAllocationResponse(a))
}

func (c *AllocationsController) complete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid allocation id", nil)
		return
	}
	a, err := c.service.Complete(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toAllocationResponse(a))
}

func (c *AllocationsController) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid allocation id", nil)
		return
	}
	a, err := c.service.Cancel(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toAllocationResponse(a))
}
