package product

import (
	"context"

	"beira/internal/domain"
)

// Repository persists and fetches catalog products.
type Repository interface {
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) error
	GetByPlatformID(ctx context.Context, platform domain.Platform, platformProductID string) (*domain.Product, error)
	// List returns products, optionally filtered by platform (empty = all).
	List(ctx context.Context, platform domain.Platform) ([]domain.Product, error)
}
