package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a platform-scoped catalog entry. (Platform, PlatformProductID)
// is unique; price is stored in major currency units.
type Product struct {
	ID                string          `json:"id"`
	Platform          Platform        `json:"platform"`
	PlatformProductID string          `json:"platformProductId"`
	Name              string          `json:"name"`
	Description       string          `json:"description,omitempty"`
	Price             decimal.Decimal `json:"price"`
	SKU               string          `json:"sku,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}
