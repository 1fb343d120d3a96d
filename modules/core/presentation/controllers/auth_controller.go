package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	coreservices "github.com/plotline-hq/plotline/modules/core/services"
	"github.com/plotline-hq/plotline/modules/estate/domain/entities/person"
	"github.com/plotline-hq/plotline/pkg/composables"
	"github.com/plotline-hq/plotline/pkg/configuration"
	"github.com/plotline-hq/plotline/pkg/constants"
	"github.com/plotline-hq/plotline/pkg/httpapi"
	"github.com/plotline-hq/plotline/pkg/middleware"
)

type loginRequest struct {
	Tenant   string `json:"tenant" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthController issues and clears session tokens. Login runs before any
// tenant is resolved, so it scopes its own person lookup to the company the
// caller named.
type AuthController struct {
	tenantService *coreservices.TenantService
	persons       person.Repository
}

func NewAuthController(tenantService *coreservices.TenantService, persons person.Repository) *AuthController {
	return &AuthController{
		tenantService: tenantService,
		persons:       persons,
	}
}

func (c *AuthController) Key() string {
	return "/login"
}

func (c *AuthController) Register(r *mux.Router) {
	r.HandleFunc("/login", c.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/logout", c.handleLogout).Methods(http.MethodPost)
}

func (c *AuthController) handleLogin(w http.ResponseWriter, r *http.Request) {
	logger := composables.UseLogger(r.Context())
	conf := configuration.Use()

	var dto loginRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid JSON", nil)
		return
	}
	if err := constants.Validate.Struct(dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error(), nil)
		return
	}

	t, err := c.tenantService.GetBySlug(r.Context(), dto.Tenant)
	if err != nil || !t.IsActive() {
		// Same response for unknown tenant and wrong password. No probing.
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials", nil)
		return
	}

	scoped := composables.WithTenant(r.Context(), t)
	p, err := c.persons.GetByEmail(scoped, dto.Email)
	if err != nil {
		if !errors.Is(err, person.ErrNotFound) {
			logger.WithError(err).Error("login lookup failed")
		}
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials", nil)
		return
	}
	if p.Role() != person.RoleMarketer || p.PasswordHash() == "" {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials", nil)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash()), []byte(dto.Password)); err != nil {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials", nil)
		return
	}

	principal := &composables.Principal{
		UserID:   p.ID(),
		TenantID: t.ID(),
		Email:    p.Email(),
		Role:     string(p.Role()),
	}
	token, err := middleware.NewToken(principal, conf.JWTSecret, conf.JWTDuration)
	if err != nil {
		logger.WithError(err).Error("failed to sign token")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "internal server error", nil)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(conf.JWTDuration.Seconds()),
	})
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]string{
		"token":  token,
		"tenant": t.Slug(),
	})
}

func (c *AuthController) handleLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// HashPassword is used at marketer onboarding and by the seeder.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
