package payment

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/vipps-adapter/internal/common"
	"github.com/noah-isme/vipps-adapter/internal/vipps"
)

// Handler exposes the host-facing HTTP surface of the adapter.
type Handler struct {
	Svc      *Service
	Methods  MethodHandler
	Validate *validator.Validate
}

// Intent opens a payment for the caller's active order and returns the
// provider redirect URL.
func (h *Handler) Intent(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "PAYMENT_NOT_CONFIGURED", "payment handler unavailable", nil)
		return
	}
	url, err := h.Svc.CreatePaymentIntent(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]string{"url": url})
}

// Settle captures the active order's reserved amount. Settlement is an
// admin-only operation.
func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "PAYMENT_NOT_CONFIGURED", "payment handler unavailable", nil)
		return
	}
	if apiType, _ := common.APIType(r.Context()); apiType != common.APITypeAdmin {
		writeError(w, ErrUnauthorizedAPIType)
		return
	}
	if err := h.Svc.SettlePayment(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type refundRequest struct {
	OrderID       string `json:"orderId" validate:"required"`
	TransactionID string `json:"transactionId"`
}

// Refund triggers a provider refund for the named order and returns the
// mapped refund result.
func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil || h.Svc.Orders == nil {
		common.JSONError(w, http.StatusInternalServerError, "PAYMENT_NOT_CONFIGURED", "payment handler unavailable", nil)
		return
	}
	if apiType, _ := common.APIType(r.Context()); apiType != common.APITypeAdmin {
		writeError(w, ErrUnauthorizedAPIType)
		return
	}
	var req refundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid body", nil)
		return
	}
	req.OrderID = strings.TrimSpace(req.OrderID)
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "orderId is required", nil)
			return
		}
	}
	order, err := h.Svc.Orders.Order(r.Context(), req.OrderID)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load order", nil)
		return
	}
	result, err := h.Methods.CreateRefund(r.Context(), order, req.TransactionID)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"state":         result.State,
		"transactionId": result.TransactionID,
	})
}

// Details returns the provider's view of a transaction unchanged.
func (h *Handler) Details(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "PAYMENT_NOT_CONFIGURED", "payment handler unavailable", nil)
		return
	}
	orderID := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if orderID == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "orderId is required", nil)
		return
	}
	details, err := h.Svc.OrderDetails(r.Context(), orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, details)
}

// writeError maps orchestration errors onto the canonical error envelope.
// Configuration failures surface distinctly from order-state failures.
func writeError(w http.ResponseWriter, err error) {
	var missing *MissingConfigArgumentError
	var provider *vipps.ProviderError
	switch {
	case errors.Is(err, ErrNoActiveOrder):
		common.JSONError(w, http.StatusNotFound, "NO_ACTIVE_ORDER", err.Error(), nil)
	case errors.Is(err, ErrEmptyOrder):
		common.JSONError(w, http.StatusUnprocessableEntity, "EMPTY_ORDER", err.Error(), nil)
	case errors.Is(err, ErrMissingCustomer):
		common.JSONError(w, http.StatusUnprocessableEntity, "MISSING_CUSTOMER", err.Error(), nil)
	case errors.Is(err, ErrMissingShippingMethod):
		common.JSONError(w, http.StatusUnprocessableEntity, "MISSING_SHIPPING_METHOD", err.Error(), nil)
	case errors.Is(err, ErrUnauthorizedAPIType):
		common.JSONError(w, http.StatusForbidden, "UNAUTHORIZED_API_TYPE", err.Error(), nil)
	case errors.Is(err, ErrHandlerNotConfigured):
		common.JSONError(w, http.StatusInternalServerError, "HANDLER_NOT_CONFIGURED", err.Error(), nil)
	case errors.As(err, &missing):
		common.JSONError(w, http.StatusInternalServerError, "MISSING_CONFIG_ARGUMENT", err.Error(), map[string]string{"argument": missing.Name})
	case errors.As(err, &provider):
		common.JSONError(w, http.StatusBadGateway, "PROVIDER_ERROR", provider.Message, nil)
	default:
		common.JSONError(w, http.StatusBadGateway, "UPSTREAM_ERROR", err.Error(), nil)
	}
}
