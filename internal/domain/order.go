package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Address is the structured shipping address serialized onto an order.
type Address struct {
	Name     string `json:"name"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2,omitempty"`
	City     string `json:"city"`
	State    string `json:"state"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
}

// Order is a platform-scoped order record. (Platform, PlatformOrderID) is
// unique and serves as the idempotency key for sync upserts.
type Order struct {
	ID                string          `json:"id"`
	Platform          Platform        `json:"platform"`
	PlatformOrderID   string          `json:"platformOrderId"`
	CustomerID        *string         `json:"customerId,omitempty"`
	OrderDate         time.Time       `json:"orderDate"`
	Status            string          `json:"status,omitempty"`
	FulfillmentStatus string          `json:"fulfillmentStatus,omitempty"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	ShippingAddress   *Address        `json:"shippingAddress,omitempty"`
	ShippingCarrier   string          `json:"shippingCarrier,omitempty"`
	TrackingNumber    string          `json:"trackingNumber,omitempty"`

	// Reserved for carrier-tracking enrichment; sync itself never fills these.
	TrackingStatus        string     `json:"trackingStatus,omitempty"`
	TrackingURL           string     `json:"trackingUrl,omitempty"`
	TrackingUpdatedAt     *time.Time `json:"trackingUpdatedAt,omitempty"`
	EstimatedDeliveryDate *time.Time `json:"estimatedDeliveryDate,omitempty"`

	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	LineItems []OrderLineItem `json:"lineItems,omitempty"`
}

// OrderLineItem joins an order to a locally synced product with the quantity
// and unit price at time of order.
type OrderLineItem struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"orderId"`
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"createdAt"`
}
