package payment_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/vipps-adapter/internal/common"
	"github.com/noah-isme/vipps-adapter/internal/host"
	"github.com/noah-isme/vipps-adapter/internal/payment"
	"github.com/noah-isme/vipps-adapter/internal/vipps"
)

type stubClient struct {
	refundResponse vipps.Response
	refundErr      error
}

func (c stubClient) CreatePayment(context.Context, vipps.InitiatePaymentCommand) (vipps.Response, error) {
	return nil, errors.New("not implemented")
}

func (c stubClient) CapturePayment(context.Context, vipps.PaymentActionsRequest) (vipps.Response, error) {
	return nil, errors.New("not implemented")
}

func (c stubClient) RefundPayment(context.Context, vipps.PaymentActionsRequest) (vipps.Response, error) {
	return c.refundResponse, c.refundErr
}

func (c stubClient) OrderDetails(context.Context, vipps.PaymentActionsRequest) (vipps.Response, error) {
	return nil, errors.New("not implemented")
}

func refundService(client stubClient) *payment.Service {
	return &payment.Service{
		Orders:  stubOrders{},
		Methods: stubMethods{methods: []host.PaymentMethod{methodWithArgs(fullArgs("https://shop.example.no"))}},
		Logger:  zerolog.Nop(),
		NewClient: func(vipps.Config) (payment.ProviderClient, error) {
			return client, nil
		},
	}
}

func TestCreatePaymentRejectsShopCaller(t *testing.T) {
	t.Parallel()

	handler := payment.MethodHandler{Service: refundService(stubClient{})}
	ctx := common.WithAPIType(context.Background(), common.APITypeShop)
	_, err := handler.CreatePayment(ctx, completeOrder(), 10000, map[string]any{"paymentId": "pay-1"})
	require.ErrorIs(t, err, payment.ErrUnauthorizedAPIType)
}

func TestCreatePaymentSettlesForAdmin(t *testing.T) {
	t.Parallel()

	handler := payment.MethodHandler{Service: refundService(stubClient{})}
	ctx := common.WithAPIType(context.Background(), common.APITypeAdmin)
	result, err := handler.CreatePayment(ctx, completeOrder(), 10000, map[string]any{"paymentId": "pay-1"})
	require.NoError(t, err)
	require.Equal(t, payment.StateSettled, result.State)
	require.Equal(t, int64(10000), result.Amount)
	require.Equal(t, "pay-1", result.TransactionID)
}

func TestCreateRefundMapsTransactionPresence(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		client stubClient
		want   payment.ResultState
	}{
		{
			name:   "transaction present settles",
			client: stubClient{refundResponse: vipps.Response{"transaction": map[string]any{"amount": float64(10000)}}},
			want:   payment.StateSettled,
		},
		{
			name:   "transaction absent fails",
			client: stubClient{refundResponse: vipps.Response{"transactionSummary": map[string]any{}}},
			want:   payment.StateFailed,
		},
		{
			name:   "provider error fails without propagating",
			client: stubClient{refundErr: &vipps.ProviderError{Message: "already refunded"}},
			want:   payment.StateFailed,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			handler := payment.MethodHandler{Service: refundService(tc.client)}
			result, err := handler.CreateRefund(context.Background(), completeOrder(), "tx-1")
			require.NoError(t, err)
			require.Equal(t, tc.want, result.State)
			if tc.want == payment.StateSettled {
				require.Equal(t, "tx-1", result.TransactionID)
			}
		})
	}
}
