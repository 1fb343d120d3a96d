package controllers

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/plotline-hq/plotline/modules/billing/services"
	"github.com/plotline-hq/plotline/modules/core/domain/entities/tenant"
	"github.com/plotline-hq/plotline/pkg/composables"
	"github.com/plotline-hq/plotline/pkg/configuration"
	"github.com/plotline-hq/plotline/pkg/constants"
	"github.com/plotline-hq/plotline/pkg/httpapi"
)

const signatureHeader = "X-Plotline-Signature"

type paymentNotification struct {
	TenantID   string `json:"tenant_id" validate:"required,uuid"`
	ExternalID string `json:"external_id" validate:"required"`
	Amount     int64  `json:"amount" validate:"required,gt=0"`
	Currency   string `json:"currency" validate:"required,len=3"`
	PeriodDays int    `json:"period_days" validate:"required,gt=0"`
}

// WebhookController receives payment-provider notifications. It sits on the
// public allowlist: a suspended tenant's payment must still get through.
type WebhookController struct {
	billingService *services.BillingService
	basePath       string
}

func NewWebhookController(billingService *services.BillingService, basePath string) *WebhookController {
	return &WebhookController{
		billingService: billingService,
		basePath:       basePath,
	}
}

func (c *WebhookController) Key() string {
	return c.basePath
}

func (c *WebhookController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/webhook", c.handleWebhook).Methods(http.MethodPost)
	router.HandleFunc("/cancel", c.handleCancel).Methods(http.MethodPost)
}

func (c *WebhookController) handleWebhook(w http.ResponseWriter, r *http.Request) {
	logger := composables.UseLogger(r.Context())
	conf := configuration.Use()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "failed to read body", nil)
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	if !validSignature(body, r.Header.Get(signatureHeader), conf.Billing.WebhookSecret) {
		logger.Warn("billing webhook with bad signature rejected")
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "INVALID_SIGNATURE", "signature verification failed", nil)
		return
	}

	var dto paymentNotification
	if err := json.Unmarshal(body, &dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid JSON", nil)
		return
	}
	if err := constants.Validate.Struct(dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error(), nil)
		return
	}

	tenantID, err := uuid.Parse(dto.TenantID)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid tenant_id", nil)
		return
	}

	period := time.Duration(dto.PeriodDays) * 24 * time.Hour
	recorded, err := c.billingService.Confirm(r.Context(), tenantID, dto.ExternalID, dto.Amount, dto.Currency, period)
	if err != nil {
		if err == tenant.ErrNotFound {
			_ = httpapi.WriteError(w, http.StatusNotFound, "TENANT_NOT_FOUND", "tenant not found", nil)
			return
		}
		logger.WithError(err).Error("failed to apply payment notification")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "internal server error", nil)
		return
	}

	logger.WithField("payment-id", recorded.ID()).Info("payment confirmed")
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]string{"payment_id": recorded.ID().String()})
}

type cancelRequest struct {
	TenantID string `json:"tenant_id" validate:"required,uuid"`
}

func (c *WebhookController) handleCancel(w http.ResponseWriter, r *http.Request) {
	logger := composables.UseLogger(r.Context())
	conf := configuration.Use()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "failed to read body", nil)
		return
	}
	if !validSignature(body, r.Header.Get(signatureHeader), conf.Billing.WebhookSecret) {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "INVALID_SIGNATURE", "signature verification failed", nil)
		return
	}

	var dto cancelRequest
	if err := json.Unmarshal(body, &dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid JSON", nil)
		return
	}
	if err := constants.Validate.Struct(dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error(), nil)
		return
	}
	tenantID, err := uuid.Parse(dto.TenantID)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid tenant_id", nil)
		return
	}

	if err := c.billingService.Cancel(r.Context(), tenantID); err != nil {
		if err == tenant.ErrNotFound {
			_ = httpapi.WriteError(w, http.StatusNotFound, "TENANT_NOT_FOUND", "tenant not found", nil)
			return
		}
		logger.WithError(err).Error("failed to cancel subscription")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "internal server error", nil)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func validSignature(body []byte, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
