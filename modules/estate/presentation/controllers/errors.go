package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"

	"github.com/plotline-hq/plotline/modules/core/domain/entities/sequence"
	"github.com/plotline-hq/plotline/modules/core/domain/entities/tenant"
	"github.com/plotline-hq/plotline/modules/estate/domain/entities/allocation"
	"github.com/plotline-hq/plotline/modules/estate/domain/entities/person"
	"github.com/plotline-hq/plotline/modules/estate/domain/entities/plot"
	"github.com/plotline-hq/plotline/modules/estate/services"
	"github.com/plotline-hq/plotline/pkg/httpapi"
)

// writeDomainError maps domain errors onto the API error envelope. Anything
// unmapped is a 500 with no internals leaked.
func writeDomainError(w http.ResponseWriter, err error) {
	var quotaErr *tenant.QuotaExceededError
	var allocErr *sequence.AllocationError

	switch {
	case errors.Is(err, person.ErrNotFound):
		_ = httpapi.WriteError(w, http.StatusNotFound, "PERSON_NOT_FOUND", "person not found", nil)
	case errors.Is(err, plot.ErrNotFound):
		_ = httpapi.WriteError(w, http.StatusNotFound, "PLOT_NOT_FOUND", "plot not found", nil)
	case errors.Is(err, allocation.ErrNotFound):
		_ = httpapi.WriteError(w, http.StatusNotFound, "ALLOCATION_NOT_FOUND", "allocation not found", nil)
	case errors.Is(err, plot.ErrNotAvailable):
		_ = httpapi.WriteError(w, http.StatusConflict, "PLOT_NOT_AVAILABLE", "plot is not available", nil)
	case errors.Is(err, person.ErrEmailTaken):
		_ = httpapi.WriteError(w, http.StatusConflict, "EMAIL_TAKEN", "email already registered", nil)
	case errors.Is(err, services.ErrWrongRole):
		_ = httpapi.WriteError(w, http.StatusUnprocessableEntity, "WRONG_ROLE", "person has the wrong role for this allocation", nil)
	case errors.As(err, &quotaErr):
		_ = httpapi.WriteError(w, http.StatusConflict, "QUOTA_EXCEEDED", "quota exceeded", map[string]string{
			"resource": quotaErr.Resource,
			"limit":    strconv.Itoa(quotaErr.Limit),
			"used":     strconv.Itoa(quotaErr.Used),
		})
	case errors.As(err, &allocErr):
		_ = httpapi.WriteError(w, http.StatusServiceUnavailable, "UID_ALLOCATION_FAILED", "failed to allocate identifier", nil)
	default:
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "internal server error", nil)
	}
}
