package vipps

// Payload shapes for the Vipps eCom v2 API. Field names follow the provider's
// wire contract exactly.

// CustomerInfo identifies the Vipps account paying for the transaction.
type CustomerInfo struct {
	MobileNumber string `json:"mobileNumber"`
}

// StaticShippingDetail is a pre-computed shipping option presented in the
// Vipps app during express checkout.
type StaticShippingDetail struct {
	IsDefault        string `json:"isDefault"`
	Priority         int    `json:"priority"`
	ShippingCost     int64  `json:"shippingCost"`
	ShippingMethod   string `json:"shippingMethod"`
	ShippingMethodID string `json:"shippingMethodId"`
}

// MerchantInfo carries merchant identity and the callback surface Vipps will
// call back into.
type MerchantInfo struct {
	AuthToken             string                 `json:"authToken,omitempty"`
	CallbackPrefix        string                 `json:"callbackPrefix,omitempty"`
	ConsentRemovalPrefix  string                 `json:"consentRemovalPrefix,omitempty"`
	FallBack              string                 `json:"fallBack,omitempty"`
	IsApp                 bool                   `json:"isApp"`
	MerchantSerialNumber  string                 `json:"merchantSerialNumber"`
	PaymentType           string                 `json:"paymentType,omitempty"`
	ShippingDetailsPrefix string                 `json:"shippingDetailsPrefix,omitempty"`
	StaticShippingDetails []StaticShippingDetail `json:"staticShippingDetails,omitempty"`
}

// AdditionalData is free-form transaction metadata echoed back on callbacks.
type AdditionalData struct {
	OrderCode    string `json:"orderCode,omitempty"`
	ChannelToken string `json:"channelToken,omitempty"`
}

// Transaction describes the amount and order binding of a payment action.
// Amounts are integer minor units (øre).
type Transaction struct {
	Amount                  int64           `json:"amount"`
	OrderID                 string          `json:"orderId,omitempty"`
	TransactionText         string          `json:"transactionText,omitempty"`
	SkipLandingPage         bool            `json:"skipLandingPage"`
	Scope                   string          `json:"scope,omitempty"`
	AdditionalData          *AdditionalData `json:"additionalData,omitempty"`
	UseExplicitCheckoutFlow bool            `json:"useExplicitCheckoutFlow"`
}

// InitiatePaymentCommand is the payload for opening a new payment.
type InitiatePaymentCommand struct {
	CustomerInfo CustomerInfo `json:"customerInfo"`
	MerchantInfo MerchantInfo `json:"merchantInfo"`
	Transaction  Transaction  `json:"transaction"`
}

// PaymentActionsRequest is the payload shared by capture, cancel and refund.
type PaymentActionsRequest struct {
	MerchantInfo                MerchantInfo `json:"merchantInfo"`
	Transaction                 Transaction  `json:"transaction"`
	ShouldReleaseRemainingFunds bool         `json:"shouldReleaseRemainingFunds,omitempty"`
}

// Response is the decoded provider body. The orchestrator passes it through to
// callers unchanged; helpers below read the handful of fields this adapter
// inspects.
type Response map[string]any

// URL returns the redirect URL carried by an initiate-payment response.
func (r Response) URL() string {
	v, _ := r["url"].(string)
	return v
}

// Has reports whether the named top-level field is present and non-null.
func (r Response) Has(field string) bool {
	v, ok := r[field]
	return ok && v != nil
}

// TransactionID returns transactionInfo.transactionId when present.
func (r Response) TransactionID() string {
	info, ok := r["transactionInfo"].(map[string]any)
	if !ok {
		return ""
	}
	v, _ := info["transactionId"].(string)
	return v
}
