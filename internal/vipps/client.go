package vipps

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/vipps-adapter/internal/obs"
)

// Defaults for the provider endpoint and its calendar-versioned API.
const (
	DefaultBaseURL    = "https://api.vipps.no"
	DefaultAPIVersion = "2021-12-14"
)

const (
	headerSubscriptionKey = "Ocp-Apim-Subscription-Key"
	headerMerchantSerial  = "Merchant-Serial-Number"
	headerRequestID       = "X-Request-Id"
)

// ProviderError is a logical failure reported inside the response body. Vipps
// signals these independently of the HTTP status, so a 2xx response can still
// carry one.
type ProviderError struct {
	Message string
}

func (e *ProviderError) Error() string {
	return "vipps: provider error: " + e.Message
}

// Config binds a client to one payment method's credentials.
type Config struct {
	BaseURL         string
	SubscriptionKey string
	// MerchantSerialNumber populates the Merchant-Serial-Number header. When
	// empty the subscription key is sent instead, matching the behaviour of
	// the integration this adapter replaces.
	MerchantSerialNumber string
	APIVersion           string
}

// Client is a stateless HTTP gateway to the Vipps eCom v2 API. It holds no
// mutable state and performs exactly one outbound call per operation: no
// caching, no retries.
type Client struct {
	baseURL         string
	subscriptionKey string
	merchantSerial  string
	apiVersion      string
	httpClient      *http.Client
	logger          zerolog.Logger
}

// NewClient validates the configuration and builds a client bound to the
// resolved base endpoint.
func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SubscriptionKey) == "" {
		return nil, errors.New("vipps: subscription key is required")
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	serial := strings.TrimSpace(cfg.MerchantSerialNumber)
	if serial == "" {
		serial = cfg.SubscriptionKey
	}
	version := strings.TrimSpace(cfg.APIVersion)
	if version == "" {
		version = DefaultAPIVersion
	}
	return &Client{
		baseURL:         base,
		subscriptionKey: cfg.SubscriptionKey,
		merchantSerial:  serial,
		apiVersion:      version,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}, nil
}

// RequestAccessToken fetches a raw token payload from the provider.
func (c *Client) RequestAccessToken(ctx context.Context) (Response, error) {
	return c.do(ctx, http.MethodPost, "/accessToken/get", "access_token", nil)
}

// CreatePayment opens a new payment and returns the provider payment object,
// including the redirect URL the customer is sent to.
func (c *Client) CreatePayment(ctx context.Context, cmd InitiatePaymentCommand) (Response, error) {
	return c.do(ctx, http.MethodPost, "/ecomm/v2/payments", "create_payment", cmd)
}

// CapturePayment captures the reserved amount for the order named in the
// request's transaction.
func (c *Client) CapturePayment(ctx context.Context, req PaymentActionsRequest) (Response, error) {
	return c.do(ctx, http.MethodPost, "/ecomm/v2/payments/"+req.Transaction.OrderID+"/capture", "capture_payment", req)
}

// CancelOrder cancels an initiated but uncaptured payment.
func (c *Client) CancelOrder(ctx context.Context, req PaymentActionsRequest) (Response, error) {
	return c.do(ctx, http.MethodPut, "/ecomm/v2/payments/"+req.Transaction.OrderID+"/cancel", "cancel_order", req)
}

// OrderDetails fetches the provider's view of a transaction.
func (c *Client) OrderDetails(ctx context.Context, req PaymentActionsRequest) (Response, error) {
	return c.do(ctx, http.MethodGet, "/ecomm/v2/payments/"+req.Transaction.OrderID+"/details", "order_details", nil)
}

// RefundPayment refunds an already captured payment.
func (c *Client) RefundPayment(ctx context.Context, req PaymentActionsRequest) (Response, error) {
	return c.do(ctx, http.MethodPost, "/ecomm/v2/payments/"+req.Transaction.OrderID+"/refund", "refund_payment", req)
}

func (c *Client) do(ctx context.Context, method, path, operation string, payload any) (Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("vipps: encode %s request: %w", operation, err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerSubscriptionKey, c.subscriptionKey)
	req.Header.Set(headerMerchantSerial, c.merchantSerial)
	if method != http.MethodGet {
		// Vipps has no idempotency discipline of its own; a client-generated
		// request id at least makes duplicates traceable upstream.
		req.Header.Set(headerRequestID, uuid.NewString())
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if obs.ProviderCallDuration != nil {
		obs.ProviderCallDuration.WithLabelValues(operation).Observe(obs.DurationMillis(time.Since(start)))
	}
	if err != nil {
		// Transport failures pass through untranslated.
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("vipps: read %s response: %w", operation, err)
	}
	var parsed Response
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("vipps: decode %s response: %w", operation, err)
		}
	}
	c.logger.Debug().Str("operation", operation).Int("status", resp.StatusCode).Msg("vipps response received")
	return c.validateResponse(operation, parsed)
}

// validateResponse applies the shared error convention: a body carrying an
// error object is a logical failure regardless of the HTTP status; any other
// body is returned unchanged.
func (c *Client) validateResponse(operation string, body Response) (Response, error) {
	raw, ok := body["error"]
	if !ok || raw == nil {
		return body, nil
	}
	message := ""
	if obj, ok := raw.(map[string]any); ok {
		if m, ok := obj["message"].(string); ok {
			message = m
		}
	}
	c.logger.Error().Str("operation", operation).Str("message", message).Msg("vipps call failed")
	return nil, &ProviderError{Message: message}
}
