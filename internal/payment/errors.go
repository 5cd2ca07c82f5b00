package payment

import (
	"errors"
	"fmt"
)

// Precondition and configuration failures. All are raised before any network
// call, so a failed check never leaves partial state at the provider.
var (
	ErrNoActiveOrder         = errors.New("payment: no active order found for session")
	ErrEmptyOrder            = errors.New("payment: cannot create payment intent for empty order")
	ErrMissingCustomer       = errors.New("payment: cannot create payment intent for order without customer")
	ErrMissingShippingMethod = errors.New("payment: cannot create payment intent for order without shipping method")
	ErrHandlerNotConfigured  = errors.New("payment: no payment method configured with handler " + HandlerCode)
	ErrUnauthorizedAPIType   = errors.New("payment: create payment is not allowed for this api type")
)

// MissingConfigArgumentError identifies which credential argument is absent
// from the matched payment method.
type MissingConfigArgumentError struct {
	MethodCode string
	Name       string
}

func (e *MissingConfigArgumentError) Error() string {
	return fmt.Sprintf("payment: method %s has no %s configured", e.MethodCode, e.Name)
}
