package payment

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/vipps-adapter/internal/common"
	"github.com/noah-isme/vipps-adapter/internal/host"
	"github.com/noah-isme/vipps-adapter/internal/obs"
	"github.com/noah-isme/vipps-adapter/internal/vipps"
)

// HandlerCode identifies this provider's payment method records on the host.
const HandlerCode = "vipps"

// Redirect surface suffixes appended to the configured host.
const (
	callbackSuffix       = "/vipps/callbacks-for-payment-updates"
	fallbackSuffix       = "/vipps/fallback-order-result-page/"
	consentRemovalSuffix = "/vipps/consent-removal"
)

const (
	paymentType  = "eComm Regular Payment"
	paymentScope = "name address email"
)

// requiredArgs is checked in declaration order so a misconfigured method
// always fails on the same field.
var requiredArgs = []string{"host", "apiHost", "merchantSerialNumber", "clientId", "clientSecret", "subscriptionKey"}

// methodConfig is one payment method's resolved credential set. All six
// fields are present and non-empty by construction.
type methodConfig struct {
	MethodCode           string
	Host                 string
	APIHost              string
	MerchantSerialNumber string
	ClientID             string
	ClientSecret         string
	SubscriptionKey      string
}

// ProviderClient is the slice of the vipps client the orchestrator drives.
type ProviderClient interface {
	CreatePayment(ctx context.Context, cmd vipps.InitiatePaymentCommand) (vipps.Response, error)
	CapturePayment(ctx context.Context, req vipps.PaymentActionsRequest) (vipps.Response, error)
	RefundPayment(ctx context.Context, req vipps.PaymentActionsRequest) (vipps.Response, error)
	OrderDetails(ctx context.Context, req vipps.PaymentActionsRequest) (vipps.Response, error)
}

// ClientFactory builds a provider client bound to one resolved configuration.
// A fresh client is constructed per orchestrated call; nothing is shared or
// cached between calls.
type ClientFactory func(cfg vipps.Config) (ProviderClient, error)

// Service sequences order validation, credential resolution and provider
// calls for each host lifecycle event. Failed provider calls fail the whole
// operation immediately; there are no retries.
type Service struct {
	Orders    host.OrderStore
	Methods   host.PaymentMethodStore
	Logger    zerolog.Logger
	NewClient ClientFactory
}

// CreatePaymentIntent opens a payment for the session's active order and
// returns the provider redirect URL.
func (s *Service) CreatePaymentIntent(ctx context.Context) (string, error) {
	ctx, span := otel.Tracer("payment.Service").Start(ctx, "Service.CreatePaymentIntent")
	defer span.End()
	result := "error"
	defer func() {
		span.SetAttributes(attribute.String("payment.intent.result", result))
		if obs.PaymentIntentTotal != nil {
			obs.PaymentIntentTotal.WithLabelValues(result).Inc()
		}
	}()

	order, err := s.activeOrder(ctx)
	if err != nil {
		return "", err
	}
	if err := s.Orders.Hydrate(ctx, order, host.RelationLines, host.RelationCustomer, host.RelationShippingLines); err != nil {
		return "", err
	}
	if len(order.Lines) == 0 {
		return "", ErrEmptyOrder
	}
	if order.Customer == nil {
		return "", ErrMissingCustomer
	}
	if len(order.ShippingLines) == 0 {
		return "", ErrMissingShippingMethod
	}

	cfg, err := s.resolveMethod(ctx)
	if err != nil {
		return "", err
	}
	client, err := s.newClient(cfg)
	if err != nil {
		return "", err
	}

	channelToken, _ := common.ChannelToken(ctx)
	span.SetAttributes(attribute.String("order.code", order.Code))
	response, err := client.CreatePayment(ctx, vipps.InitiatePaymentCommand{
		CustomerInfo: vipps.CustomerInfo{MobileNumber: order.Customer.PhoneNumber},
		MerchantInfo: vipps.MerchantInfo{
			CallbackPrefix:        cfg.Host + callbackSuffix,
			FallBack:              cfg.Host + fallbackSuffix + order.Code,
			ConsentRemovalPrefix:  cfg.Host + consentRemovalSuffix,
			IsApp:                 false,
			MerchantSerialNumber:  cfg.MerchantSerialNumber,
			PaymentType:           paymentType,
			StaticShippingDetails: []vipps.StaticShippingDetail{},
		},
		Transaction: vipps.Transaction{
			Amount:                  order.TotalWithTax,
			OrderID:                 order.ID,
			SkipLandingPage:         false,
			Scope:                   paymentScope,
			UseExplicitCheckoutFlow: true,
			AdditionalData: &vipps.AdditionalData{
				OrderCode:    order.Code,
				ChannelToken: channelToken,
			},
		},
	})
	if err != nil {
		span.RecordError(err)
		s.Logger.Error().Err(err).Str("order_code", order.Code).Msg("create payment intent failed")
		return "", err
	}
	result = "success"
	return response.URL(), nil
}

// SettlePayment captures the reserved amount for the session's active order.
func (s *Service) SettlePayment(ctx context.Context) error {
	ctx, span := otel.Tracer("payment.Service").Start(ctx, "Service.SettlePayment")
	defer span.End()
	result := "error"
	defer func() {
		if obs.PaymentCaptureTotal != nil {
			obs.PaymentCaptureTotal.WithLabelValues(result).Inc()
		}
	}()

	cfg, err := s.resolveMethod(ctx)
	if err != nil {
		return err
	}
	client, err := s.newClient(cfg)
	if err != nil {
		return err
	}
	order, err := s.activeOrder(ctx)
	if err != nil {
		return err
	}
	if _, err := client.CapturePayment(ctx, vipps.PaymentActionsRequest{
		MerchantInfo: vipps.MerchantInfo{MerchantSerialNumber: cfg.MerchantSerialNumber},
		Transaction:  vipps.Transaction{Amount: order.TotalWithTax, OrderID: order.ID},
	}); err != nil {
		span.RecordError(err)
		return err
	}
	result = "success"
	s.Logger.Info().Str("order_code", order.Code).Msg("payment settled")
	return nil
}

// CreateRefund refunds the order's captured amount and returns the raw
// provider result for the handler layer to map. The nil guard keeps the guard
// the host relies on even though the order comes from the caller here.
func (s *Service) CreateRefund(ctx context.Context, order *host.Order) (vipps.Response, error) {
	ctx, span := otel.Tracer("payment.Service").Start(ctx, "Service.CreateRefund")
	defer span.End()
	result := "error"
	defer func() {
		if obs.PaymentRefundTotal != nil {
			obs.PaymentRefundTotal.WithLabelValues(result).Inc()
		}
	}()

	cfg, err := s.resolveMethod(ctx)
	if err != nil {
		return nil, err
	}
	client, err := s.newClient(cfg)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNoActiveOrder
	}
	response, err := client.RefundPayment(ctx, vipps.PaymentActionsRequest{
		MerchantInfo: vipps.MerchantInfo{MerchantSerialNumber: cfg.MerchantSerialNumber},
		Transaction:  vipps.Transaction{Amount: order.TotalWithTax, OrderID: order.ID},
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	result = "success"
	s.Logger.Info().Str("order_code", order.Code).Msg("payment refunded")
	return response, nil
}

// OrderDetails queries the provider's view of a transaction.
func (s *Service) OrderDetails(ctx context.Context, orderID string) (vipps.Response, error) {
	cfg, err := s.resolveMethod(ctx)
	if err != nil {
		return nil, err
	}
	client, err := s.newClient(cfg)
	if err != nil {
		return nil, err
	}
	return client.OrderDetails(ctx, vipps.PaymentActionsRequest{
		MerchantInfo: vipps.MerchantInfo{MerchantSerialNumber: cfg.MerchantSerialNumber},
		Transaction:  vipps.Transaction{OrderID: orderID},
	})
}

func (s *Service) activeOrder(ctx context.Context) (*host.Order, error) {
	sessionToken, _ := common.SessionToken(ctx)
	order, err := s.Orders.ActiveOrder(ctx, sessionToken)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNoActiveOrder
	}
	return order, nil
}

// resolveMethod finds the vipps payment method and reads its six credential
// arguments, failing fast on the first missing one.
func (s *Service) resolveMethod(ctx context.Context) (methodConfig, error) {
	methods, err := s.Methods.List(ctx)
	if err != nil {
		return methodConfig{}, err
	}
	var method *host.PaymentMethod
	for i := range methods {
		if methods[i].HandlerCode == HandlerCode {
			method = &methods[i]
			break
		}
	}
	if method == nil {
		return methodConfig{}, ErrHandlerNotConfigured
	}
	values := make(map[string]string, len(requiredArgs))
	for _, name := range requiredArgs {
		value, ok := method.Arg(name)
		if !ok || strings.TrimSpace(value) == "" {
			s.Logger.Error().Str("method", method.Code).Str("argument", name).Msg("payment method misconfigured")
			return methodConfig{}, &MissingConfigArgumentError{MethodCode: method.Code, Name: name}
		}
		values[name] = value
	}
	return methodConfig{
		MethodCode:           method.Code,
		Host:                 values["host"],
		APIHost:              values["apiHost"],
		MerchantSerialNumber: values["merchantSerialNumber"],
		ClientID:             values["clientId"],
		ClientSecret:         values["clientSecret"],
		SubscriptionKey:      values["subscriptionKey"],
	}, nil
}

func (s *Service) newClient(cfg methodConfig) (ProviderClient, error) {
	factory := s.NewClient
	if factory == nil {
		factory = func(c vipps.Config) (ProviderClient, error) {
			return vipps.NewClient(c, s.Logger)
		}
	}
	return factory(vipps.Config{
		BaseURL:              cfg.Host,
		SubscriptionKey:      cfg.SubscriptionKey,
		MerchantSerialNumber: cfg.MerchantSerialNumber,
	})
}
