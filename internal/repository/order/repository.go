package order

import (
	"context"

	"beira/internal/domain"
)

// Filter narrows List results; zero values match everything.
type Filter struct {
	Platform domain.Platform
	Status   string
}

// Repository persists and fetches orders and their line items.
type Repository interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	// Update rewrites the sync-mutable fields of an existing order: customer
	// linkage, status, fulfillment status, total, address and tracking.
	Update(ctx context.Context, o domain.Order) error
	GetByPlatformID(ctx context.Context, platform domain.Platform, platformOrderID string) (*domain.Order, error)
	// ReplaceLineItems discards all line items of the order and inserts the
	// given set.
	ReplaceLineItems(ctx context.Context, orderID string, items []domain.OrderLineItem) error
	List(ctx context.Context, f Filter) ([]domain.Order, error)
	Recent(ctx context.Context, limit int) ([]domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	// SetFulfillmentStatus mirrors a successful remote fulfillment push onto
	// the local row.
	SetFulfillmentStatus(ctx context.Context, orderID, status string) error
}
