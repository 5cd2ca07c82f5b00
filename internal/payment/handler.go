package payment

import (
	"context"

	"github.com/noah-isme/vipps-adapter/internal/common"
	"github.com/noah-isme/vipps-adapter/internal/host"
)

// ResultState mirrors the host's payment-state vocabulary.
type ResultState string

const (
	StateSettled ResultState = "Settled"
	StateFailed  ResultState = "Failed"
	StateError   ResultState = "Error"
)

// Result is the value handed back to the host's payment-state machine. It is
// built per call and never stored by the adapter.
type Result struct {
	State         ResultState
	Amount        int64
	TransactionID string
	Metadata      map[string]any
}

// MethodHandler implements the host-side lifecycle hooks for the vipps
// payment method.
type MethodHandler struct {
	Service *Service
}

// CreatePayment records an immediately settled payment. Because creation
// settles, only admin or internal callers may trigger it; a customer-facing
// caller is rejected before any state changes.
func (h MethodHandler) CreatePayment(ctx context.Context, order *host.Order, amount int64, metadata map[string]any) (Result, error) {
	if apiType, _ := common.APIType(ctx); apiType != common.APITypeAdmin {
		return Result{}, ErrUnauthorizedAPIType
	}
	transactionID, _ := metadata["paymentId"].(string)
	return Result{
		State:         StateSettled,
		Amount:        amount,
		TransactionID: transactionID,
		Metadata:      metadata,
	}, nil
}

// SettlePayment acknowledges settlement; the capture itself happens through
// Service.SettlePayment before the host invokes this hook.
func (h MethodHandler) SettlePayment(ctx context.Context) (bool, error) {
	return true, nil
}

// CreateRefund triggers the provider refund and maps the raw body into the
// host's refund vocabulary. The refund path is best effort: any failure is
// reported as a Failed result rather than propagated.
func (h MethodHandler) CreateRefund(ctx context.Context, order *host.Order, transactionID string) (Result, error) {
	response, err := h.Service.CreateRefund(ctx, order)
	if err != nil {
		h.Service.Logger.Error().Err(err).Msg("refund failed")
		return Result{State: StateFailed}, nil
	}
	if response.Has("transaction") {
		return Result{State: StateSettled, TransactionID: transactionID}, nil
	}
	return Result{State: StateFailed}, nil
}
