package etsy

import "github.com/shopspring/decimal"

// Money is the amount/divisor pair Etsy uses for all prices.
type Money struct {
	Amount   int64  `json:"amount"`
	Divisor  int64  `json:"divisor"`
	Currency string `json:"currency_code"`
}

// Decimal converts the pair into major currency units.
func (m Money) Decimal() decimal.Decimal {
	if m.Divisor == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(m.Amount).Div(decimal.NewFromInt(m.Divisor))
}

// Shop is the subset of the shop resource the sync needs.
type Shop struct {
	ShopID   int64  `json:"shop_id"`
	ShopName string `json:"shop_name"`
}

// Receipt is an Etsy order as returned by the receipts endpoint.
type Receipt struct {
	ReceiptID        int64  `json:"receipt_id"`
	BuyerEmail       string `json:"buyer_email"`
	BuyerFirstName   string `json:"buyer_first_name"`
	BuyerLastName    string `json:"buyer_last_name"`
	ShippingName     string `json:"shipping_name"`
	FirstLine        string `json:"first_line"`
	SecondLine       string `json:"second_line"`
	City             string `json:"city"`
	State            string `json:"state"`
	Zip              string `json:"zip"`
	CountryISO       string `json:"country_iso"`
	WasPaid          bool   `json:"was_paid"`
	WasShipped       bool   `json:"was_shipped"`
	TotalPrice       Money  `json:"total_price"`
	CreatedTimestamp int64  `json:"created_timestamp"`
	ShippingCarrier  string `json:"shipping_carrier"`
	TrackingCode     string `json:"tracking_code"`
}

type listResponse[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}

// TokenResponse is the OAuth token endpoint payload.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}
