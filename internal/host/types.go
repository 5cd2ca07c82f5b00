// Package host holds the narrow contracts this adapter needs from the
// order-management host, plus a Postgres implementation reading the host's
// own tables. The adapter never writes host data.
package host

import "context"

// Relation names an order association that can be hydrated on demand.
type Relation string

const (
	RelationLines         Relation = "lines"
	RelationCustomer      Relation = "customer"
	RelationShippingLines Relation = "shippingLines"
)

// Customer is the order's customer as the host stores it.
type Customer struct {
	ID           string
	EmailAddress string
	PhoneNumber  string
}

// OrderLine is a single purchasable line on an order.
type OrderLine struct {
	ID               string
	ProductName      string
	Quantity         int
	LinePriceWithTax int64
}

// ShippingLine binds an order to a chosen shipping method.
type ShippingLine struct {
	ID           string
	MethodCode   string
	PriceWithTax int64
}

// Order is the host's order, read-only from the adapter's perspective.
// Lines, Customer and ShippingLines are nil until hydrated.
type Order struct {
	ID            string
	Code          string
	State         string
	CurrencyCode  string
	TotalWithTax  int64
	Lines         []OrderLine
	Customer      *Customer
	ShippingLines []ShippingLine
}

// PaymentMethodArg is a named credential argument on a payment method record.
type PaymentMethodArg struct {
	Name  string
	Value string
}

// PaymentMethod maps a method code to a handler code and its argument list.
type PaymentMethod struct {
	ID          string
	Code        string
	HandlerCode string
	Enabled     bool
	Args        []PaymentMethodArg
}

// Arg looks up a named argument, preserving the host's linear scan semantics.
func (m PaymentMethod) Arg(name string) (string, bool) {
	for _, arg := range m.Args {
		if arg.Name == name {
			return arg.Value, true
		}
	}
	return "", false
}

// OrderStore is the order collaborator. ActiveOrder and Order return
// (nil, nil) when no matching order exists; absence is the caller's concern.
type OrderStore interface {
	ActiveOrder(ctx context.Context, sessionToken string) (*Order, error)
	Order(ctx context.Context, id string) (*Order, error)
	Hydrate(ctx context.Context, order *Order, relations ...Relation) error
}

// PaymentMethodStore lists the host's configured payment methods.
type PaymentMethodStore interface {
	List(ctx context.Context) ([]PaymentMethod, error)
}
