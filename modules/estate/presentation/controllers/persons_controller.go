package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/plotline-hq/plotline/modules/estate/domain/entities/person"
	"github.com/plotline-hq/plotline/modules/estate/services"
	"github.com/plotline-hq/plotline/pkg/composables"
	"github.com/plotline-hq/plotline/pkg/constants"
	"github.com/plotline-hq/plotline/pkg/httpapi"
)

// PersonsController serves a tenant's clients and marketers.
type PersonsController struct {
	service *services.PersonService
}

func NewPersonsController(service *services.PersonService) *PersonsController {
	return &PersonsController{service: service}
}

func (c *PersonsController) Key() string {
	return "/persons"
}

func (c *PersonsController) Register(r *mux.Router) {
	router := r.PathPrefix("/{tenant}/persons").Subrouter()
	router.HandleFunc("", c.list).Methods(http.MethodGet)
	router.HandleFunc("", c.create).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.get).Methods(http.MethodGet)
}

func (c *PersonsController) list(w http.ResponseWriter, r *http.Request) {
	role := person.Role(r.URL.Query().Get("role"))
	if role == "" {
		role = person.RoleClient
	}
	persons, err := c.service.List(r.Context(), role)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]personResponse, 0, len(persons))
	for _, p := range persons {
		out = append(out, toPersonResponse(p))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

func (c *PersonsController) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "invalid person id", nil)
		return
	}
	p, err := c.service.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toPersonResponse(p))
}

func (c *PersonsController) create(w http.ResponseWriter, r *http.Request) {
	logger := composables.UseLogger(r.Context())

	var dto createPersonRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid JSON", nil)
		return
	}
	if err := constants.Validate.Struct(dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error(), nil)
		return
	}

	opts := []person.Option{
		person.WithEmail(dto.Email),
		person.WithPhone(dto.Phone),
	}
	if dto.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
		if err != nil {
			logger.WithError(err).Error("failed to hash password")
			_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "internal server error", nil)
			return
		}
		opts = append(opts, person.WithPasswordHash(string(hash)))
	}

	p, err := c.service.Create(r.Context(), person.Role(dto.Role), dto.FirstName, dto.LastName, opts...)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toPersonResponse(p))
}
