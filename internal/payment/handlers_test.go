package payment_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/vipps-adapter/internal/common"
	"github.com/noah-isme/vipps-adapter/internal/host"
	"github.com/noah-isme/vipps-adapter/internal/payment"
	"github.com/noah-isme/vipps-adapter/internal/vipps"
)

func newHandler(svc *payment.Service) *payment.Handler {
	return &payment.Handler{
		Svc:      svc,
		Methods:  payment.MethodHandler{Service: svc},
		Validate: validator.New(),
	}
}

func decodeErrorBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok, "expected error envelope, got %s", rr.Body.String())
	return errObj
}

func TestIntentWithoutActiveOrder(t *testing.T) {
	t.Parallel()

	svc := &payment.Service{
		Orders:  stubOrders{},
		Methods: stubMethods{methods: []host.PaymentMethod{methodWithArgs(fullArgs("https://shop.example.no"))}},
		Logger:  zerolog.Nop(),
	}
	handler := newHandler(svc)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments/vipps/intent", nil)
	req = req.WithContext(common.WithSessionToken(req.Context(), "session-token"))
	handler.Intent(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "NO_ACTIVE_ORDER", decodeErrorBody(t, rr)["code"])
}

func TestIntentMissingConfigArgument(t *testing.T) {
	t.Parallel()

	args := fullArgs("https://shop.example.no")
	delete(args, "clientSecret")
	svc := &payment.Service{
		Orders:  stubOrders{active: completeOrder()},
		Methods: stubMethods{methods: []host.PaymentMethod{methodWithArgs(args)}},
		Logger:  zerolog.Nop(),
	}
	handler := newHandler(svc)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments/vipps/intent", nil)
	req = req.WithContext(common.WithSessionToken(req.Context(), "session-token"))
	handler.Intent(rr, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	errObj := decodeErrorBody(t, rr)
	require.Equal(t, "MISSING_CONFIG_ARGUMENT", errObj["code"])
	details := errObj["details"].(map[string]any)
	require.Equal(t, "clientSecret", details["argument"])
}

func TestSettleRequiresAdmin(t *testing.T) {
	t.Parallel()

	handler := newHandler(refundService(stubClient{}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments/vipps/settle", nil)
	req = req.WithContext(common.WithAPIType(req.Context(), common.APITypeShop))
	handler.Settle(rr, req)

	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Equal(t, "UNAUTHORIZED_API_TYPE", decodeErrorBody(t, rr)["code"])
}

func TestRefundEndpoint(t *testing.T) {
	t.Parallel()

	order := completeOrder()
	svc := refundService(stubClient{refundResponse: vipps.Response{"transaction": map[string]any{}}})
	svc.Orders = stubOrders{byID: map[string]*host.Order{order.ID: order}}
	handler := newHandler(svc)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments/vipps/refund", strings.NewReader(`{"orderId":"order-1","transactionId":"tx-1"}`))
	req = req.WithContext(common.WithAPIType(req.Context(), common.APITypeAdmin))
	handler.Refund(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, string(payment.StateSettled), body["state"])
	require.Equal(t, "tx-1", body["transactionId"])
}

func TestRefundRejectsMissingOrderID(t *testing.T) {
	t.Parallel()

	handler := newHandler(refundService(stubClient{}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments/vipps/refund", strings.NewReader(`{"transactionId":"tx-1"}`))
	req = req.WithContext(common.WithAPIType(req.Context(), common.APITypeAdmin))
	handler.Refund(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDetailsPassesBodyThrough(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ecomm/v2/payments/order-1/details", r.URL.Path)
		_, _ = w.Write([]byte(`{"orderId":"order-1","transactionSummary":{"capturedAmount":10000}}`))
	}))
	defer server.Close()

	svc := &payment.Service{
		Orders:  stubOrders{},
		Methods: stubMethods{methods: []host.PaymentMethod{methodWithArgs(fullArgs(server.URL))}},
		Logger:  zerolog.Nop(),
	}
	handler := newHandler(svc)

	router := chi.NewRouter()
	router.Get("/payments/vipps/orders/{orderId}", handler.Details)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/payments/vipps/orders/order-1", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "order-1", body["orderId"])
}

func TestDetailsProviderError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"error":{"message":"order not found"}}`))
	}))
	defer server.Close()

	svc := &payment.Service{
		Orders:  stubOrders{},
		Methods: stubMethods{methods: []host.PaymentMethod{methodWithArgs(fullArgs(server.URL))}},
		Logger:  zerolog.Nop(),
	}
	handler := newHandler(svc)

	router := chi.NewRouter()
	router.Get("/payments/vipps/orders/{orderId}", handler.Details)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/payments/vipps/orders/missing", nil))

	require.Equal(t, http.StatusBadGateway, rr.Code)
	require.Equal(t, "PROVIDER_ERROR", decodeErrorBody(t, rr)["code"])
}
