package order

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"beira/internal/db"
	"beira/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type postgresRepo struct {
	q      db.Querier
	logger *logrus.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(q db.Querier, logger *logrus.Logger) Repository {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &postgresRepo{q: q, logger: logger}
}

const orderColumns = `id::text, platform, platform_order_id, customer_id::text, order_date, status,
       fulfillment_status, total_amount::text, shipping_address, shipping_carrier, tracking_number,
       tracking_status, tracking_url, tracking_updated_at, estimated_delivery_date, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	addrJSON, err := marshalAddress(o.ShippingAddress)
	if err != nil {
		return nil, err
	}

	const q = `
INSERT INTO orders (
    platform, platform_order_id, customer_id, order_date, status, fulfillment_status,
    total_amount, shipping_address, shipping_carrier, tracking_number
) VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9, $10)
RETURNING ` + orderColumns
	return r.scan(r.q.QueryRow(ctx, q,
		string(o.Platform),
		o.PlatformOrderID,
		o.CustomerID,
		o.OrderDate,
		o.Status,
		o.FulfillmentStatus,
		o.TotalAmount.StringFixed(2),
		addrJSON,
		o.ShippingCarrier,
		o.TrackingNumber,
	))
}

func (r *postgresRepo) Update(ctx context.Context, o domain.Order) error {
	addrJSON, err := marshalAddress(o.ShippingAddress)
	if err != nil {
		return err
	}

	const q = `
UPDATE orders
SET customer_id = $2,
    status = $3,
    fulfillment_status = $4,
    total_amount = $5::numeric,
    shipping_address = $6,
    shipping_carrier = $7,
    tracking_number = $8,
    updated_at = now()
WHERE id = $1
`
	tag, err := r.q.Exec(ctx, q,
		o.ID,
		o.CustomerID,
		o.Status,
		o.FulfillmentStatus,
		o.TotalAmount.StringFixed(2),
		addrJSON,
		o.ShippingCarrier,
		o.TrackingNumber,
	)
	if err != nil {
		r.logger.WithError(err).WithField("id", o.ID).Error("order repo: update")
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) GetByPlatformID(ctx context.Context, platform domain.Platform, platformOrderID string) (*domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE platform = $1 AND platform_order_id = $2
`
	o, err := r.scan(r.q.QueryRow(ctx, q, string(platform), platformOrderID))
	if err != nil {
		return nil, err
	}
	o.LineItems, err = r.lineItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) lineItems(ctx context.Context, orderID string) ([]domain.OrderLineItem, error) {
	const q = `
SELECT id::text, order_id::text, product_id::text, quantity, price::text, created_at
FROM order_line_items
WHERE order_id = $1
ORDER BY created_at, id
`
	rows, err := r.q.Query(ctx, q, orderID)
	if err != nil {
		r.logger.WithError(err).WithField("order_id", orderID).Error("order repo: query line items")
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderLineItem
	for rows.Next() {
		var (
			item  domain.OrderLineItem
			price string
		)
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &price, &item.CreatedAt); err != nil {
			return nil, err
		}
		if item.Price, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *postgresRepo) ReplaceLineItems(ctx context.Context, orderID string, items []domain.OrderLineItem) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM order_line_items WHERE order_id = $1`, orderID); err != nil {
		r.logger.WithError(err).WithField("order_id", orderID).Error("order repo: clear line items")
		return err
	}
	const q = `
INSERT INTO order_line_items (order_id, product_id, quantity, price)
VALUES ($1, $2, $3, $4::numeric)
`
	for _, item := range items {
		if _, err := r.q.Exec(ctx, q, orderID, item.ProductID, item.Quantity, item.Price.StringFixed(2)); err != nil {
			r.logger.WithError(err).WithField("order_id", orderID).Error("order repo: insert line item")
			return err
		}
	}
	return nil
}

func (r *postgresRepo) List(ctx context.Context, f Filter) ([]domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE ($1 = '' OR platform = $1) AND ($2 = '' OR status = $2)
ORDER BY order_date DESC
`
	return r.queryOrders(ctx, q, string(f.Platform), f.Status)
}

func (r *postgresRepo) Recent(ctx context.Context, limit int) ([]domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
ORDER BY order_date DESC
LIMIT $1
`
	return r.queryOrders(ctx, q, limit)
}

func (r *postgresRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE customer_id = $1
ORDER BY order_date DESC
`
	return r.queryOrders(ctx, q, customerID)
}

func (r *postgresRepo) SetFulfillmentStatus(ctx context.Context, orderID, status string) error {
	const q = `
UPDATE orders
SET fulfillment_status = $2, updated_at = now()
WHERE id = $1
`
	tag, err := r.q.Exec(ctx, q, orderID, status)
	if err != nil {
		r.logger.WithError(err).WithField("id", orderID).Error("order repo: set fulfillment status")
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) queryOrders(ctx context.Context, q string, args ...any) ([]domain.Order, error) {
	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		r.logger.WithError(err).Error("order repo: query")
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		r.logger.WithError(err).Error("order repo: query rows")
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) scan(row pgx.Row) (*domain.Order, error) {
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.WithError(err).Error("order repo: scan")
		return nil, err
	}
	return o, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o        domain.Order
		total    string
		addrJSON []byte
	)
	err := row.Scan(
		&o.ID,
		&o.Platform,
		&o.PlatformOrderID,
		&o.CustomerID,
		&o.OrderDate,
		&o.Status,
		&o.FulfillmentStatus,
		&total,
		&addrJSON,
		&o.ShippingCarrier,
		&o.TrackingNumber,
		&o.TrackingStatus,
		&o.TrackingURL,
		&o.TrackingUpdatedAt,
		&o.EstimatedDeliveryDate,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.TotalAmount, err = decimal.NewFromString(total)
	if err != nil {
		return nil, err
	}
	if len(addrJSON) > 0 {
		var addr domain.Address
		if err := json.Unmarshal(addrJSON, &addr); err != nil {
			return nil, err
		}
		o.ShippingAddress = &addr
	}
	return &o, nil
}

func marshalAddress(addr *domain.Address) ([]byte, error) {
	if addr == nil {
		return nil, nil
	}
	return json.Marshal(addr)
}
