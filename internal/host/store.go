package host

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store reads host-owned order and payment-method data from Postgres.
type Store struct {
	Pool *pgxpool.Pool
}

var _ OrderStore = (*Store)(nil)
var _ PaymentMethodStore = (*Store)(nil)

// ActiveOrder returns the order bound to the session's active order, or
// (nil, nil) when the session has none.
func (s *Store) ActiveOrder(ctx context.Context, sessionToken string) (*Order, error) {
	if s == nil || s.Pool == nil {
		return nil, errors.New("host: store not configured")
	}
	row := s.Pool.QueryRow(ctx, `
		SELECT o.id, o.code, o.state, o.currency_code, o.total_with_tax
		FROM orders o
		JOIN sessions s ON s.active_order_id = o.id
		WHERE s.token = $1`, sessionToken)
	return scanOrder(row)
}

// Order loads an order by id, or (nil, nil) when it does not exist.
func (s *Store) Order(ctx context.Context, id string) (*Order, error) {
	if s == nil || s.Pool == nil {
		return nil, errors.New("host: store not configured")
	}
	row := s.Pool.QueryRow(ctx, `
		SELECT id, code, state, currency_code, total_with_tax
		FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

func scanOrder(row pgx.Row) (*Order, error) {
	var order Order
	err := row.Scan(&order.ID, &order.Code, &order.State, &order.CurrencyCode, &order.TotalWithTax)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("host: load order: %w", err)
	}
	return &order, nil
}

// Hydrate loads the requested relations onto the order before use.
func (s *Store) Hydrate(ctx context.Context, order *Order, relations ...Relation) error {
	if s == nil || s.Pool == nil {
		return errors.New("host: store not configured")
	}
	if order == nil {
		return errors.New("host: cannot hydrate nil order")
	}
	for _, relation := range relations {
		var err error
		switch relation {
		case RelationLines:
			err = s.hydrateLines(ctx, order)
		case RelationCustomer:
			err = s.hydrateCustomer(ctx, order)
		case RelationShippingLines:
			err = s.hydrateShippingLines(ctx, order)
		default:
			return fmt.Errorf("host: unknown relation %q", relation)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) hydrateLines(ctx context.Context, order *Order) error {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, product_name, quantity, line_price_with_tax
		FROM order_lines WHERE order_id = $1 ORDER BY created_at`, order.ID)
	if err != nil {
		return fmt.Errorf("host: load order lines: %w", err)
	}
	defer rows.Close()
	lines := []OrderLine{}
	for rows.Next() {
		var line OrderLine
		if err := rows.Scan(&line.ID, &line.ProductName, &line.Quantity, &line.LinePriceWithTax); err != nil {
			return fmt.Errorf("host: scan order line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("host: iterate order lines: %w", err)
	}
	order.Lines = lines
	return nil
}

func (s *Store) hydrateCustomer(ctx context.Context, order *Order) error {
	row := s.Pool.QueryRow(ctx, `
		SELECT c.id, c.email_address, c.phone_number
		FROM customers c
		JOIN orders o ON o.customer_id = c.id
		WHERE o.id = $1`, order.ID)
	var customer Customer
	err := row.Scan(&customer.ID, &customer.EmailAddress, &customer.PhoneNumber)
	if errors.Is(err, pgx.ErrNoRows) {
		order.Customer = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("host: load customer: %w", err)
	}
	order.Customer = &customer
	return nil
}

func (s *Store) hydrateShippingLines(ctx context.Context, order *Order) error {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, method_code, price_with_tax
		FROM shipping_lines WHERE order_id = $1 ORDER BY created_at`, order.ID)
	if err != nil {
		return fmt.Errorf("host: load shipping lines: %w", err)
	}
	defer rows.Close()
	lines := []ShippingLine{}
	for rows.Next() {
		var line ShippingLine
		if err := rows.Scan(&line.ID, &line.MethodCode, &line.PriceWithTax); err != nil {
			return fmt.Errorf("host: scan shipping line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("host: iterate shipping lines: %w", err)
	}
	order.ShippingLines = lines
	return nil
}

// List returns every enabled payment method with its argument list.
func (s *Store) List(ctx context.Context) ([]PaymentMethod, error) {
	if s == nil || s.Pool == nil {
		return nil, errors.New("host: store not configured")
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, code, handler_code, enabled
		FROM payment_methods WHERE enabled ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("host: load payment methods: %w", err)
	}
	defer rows.Close()
	methods := []PaymentMethod{}
	for rows.Next() {
		var method PaymentMethod
		if err := rows.Scan(&method.ID, &method.Code, &method.HandlerCode, &method.Enabled); err != nil {
			return nil, fmt.Errorf("host: scan payment method: %w", err)
		}
		methods = append(methods, method)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("host: iterate payment methods: %w", err)
	}
	for i := range methods {
		args, err := s.listArgs(ctx, methods[i].ID)
		if err != nil {
			return nil, err
		}
		methods[i].Args = args
	}
	return methods, nil
}

func (s *Store) listArgs(ctx context.Context, methodID string) ([]PaymentMethodArg, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT name, value
		FROM payment_method_args WHERE method_id = $1 ORDER BY position`, methodID)
	if err != nil {
		return nil, fmt.Errorf("host: load payment method args: %w", err)
	}
	defer rows.Close()
	args := []PaymentMethodArg{}
	for rows.Next() {
		var arg PaymentMethodArg
		if err := rows.Scan(&arg.Name, &arg.Value); err != nil {
			return nil, fmt.Errorf("host: scan payment method arg: %w", err)
		}
		args = append(args, arg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("host: iterate payment method args: %w", err)
	}
	return args, nil
}
