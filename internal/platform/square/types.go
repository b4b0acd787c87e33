package square

import (
	"time"

	"github.com/shopspring/decimal"
)

// Money is an amount in the currency's smallest unit (cents for USD).
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency,omitempty"`
}

// Decimal converts cents into major currency units.
func (m *Money) Decimal() decimal.Decimal {
	if m == nil {
		return decimal.Zero
	}
	return decimal.NewFromInt(m.Amount).Div(decimal.NewFromInt(100))
}

// Location is a seller location.
type Location struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// CatalogObject is a node of the catalog tree. Items carry ItemData;
// variations carry ItemVariationData.
type CatalogObject struct {
	ID                string             `json:"id"`
	Type              string             `json:"type"`
	ItemData          *ItemData          `json:"item_data,omitempty"`
	ItemVariationData *ItemVariationData `json:"item_variation_data,omitempty"`
}

// ItemData is the payload of an ITEM catalog object.
type ItemData struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Variations  []CatalogObject `json:"variations,omitempty"`
}

// ItemVariationData is the payload of an ITEM_VARIATION catalog object.
type ItemVariationData struct {
	SKU        string `json:"sku,omitempty"`
	PriceMoney *Money `json:"price_money,omitempty"`
}

// Order is a Square order as returned by the orders endpoints.
type Order struct {
	ID           string        `json:"id"`
	LocationID   string        `json:"location_id,omitempty"`
	CustomerID   string        `json:"customer_id,omitempty"`
	State        string        `json:"state,omitempty"`
	Version      int64         `json:"version,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	TotalMoney   *Money        `json:"total_money,omitempty"`
	LineItems    []LineItem    `json:"line_items,omitempty"`
	Fulfillments []Fulfillment `json:"fulfillments,omitempty"`
}

// LineItem is one order line. Quantity is a decimal string on the wire.
type LineItem struct {
	UID             string `json:"uid,omitempty"`
	CatalogObjectID string `json:"catalog_object_id,omitempty"`
	Quantity        string `json:"quantity,omitempty"`
	BasePriceMoney  *Money `json:"base_price_money,omitempty"`
}

// Fulfillment describes how an order reaches the buyer.
type Fulfillment struct {
	UID             string           `json:"uid,omitempty"`
	Type            string           `json:"type,omitempty"`
	State           string           `json:"state,omitempty"`
	ShipmentDetails *ShipmentDetails `json:"shipment_details,omitempty"`
}

// ShipmentDetails carries the recipient and tracking data of a SHIPMENT
// fulfillment.
type ShipmentDetails struct {
	Recipient      *Recipient `json:"recipient,omitempty"`
	Carrier        string     `json:"carrier,omitempty"`
	TrackingNumber string     `json:"tracking_number,omitempty"`
}

// Recipient is the shipping recipient.
type Recipient struct {
	DisplayName string   `json:"display_name,omitempty"`
	Address     *Address `json:"address,omitempty"`
}

// Address is a Square postal address.
type Address struct {
	AddressLine1                 string `json:"address_line_1,omitempty"`
	AddressLine2                 string `json:"address_line_2,omitempty"`
	Locality                     string `json:"locality,omitempty"`
	AdministrativeDistrictLevel1 string `json:"administrative_district_level_1,omitempty"`
	PostalCode                   string `json:"postal_code,omitempty"`
	Country                      string `json:"country,omitempty"`
}

// Customer is a Square customer profile.
type Customer struct {
	ID           string `json:"id"`
	GivenName    string `json:"given_name,omitempty"`
	FamilyName   string `json:"family_name,omitempty"`
	EmailAddress string `json:"email_address,omitempty"`
}

// APIError is one entry of the errors array Square returns on failure.
type APIError struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Detail   string `json:"detail,omitempty"`
}
