package message

import (
	"context"

	"beira/internal/domain"
)

// Repository fetches customer messages for the dashboard views.
type Repository interface {
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Message, error)
}
