package square

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	productionBaseURL = "https://connect.squareup.com"
	sandboxBaseURL    = "https://connect.squareupsandbox.com"

	apiVersion     = "2025-01-23"
	requestTimeout = 30 * time.Second
)

// Config selects the Square environment and credentials. BaseURL overrides
// the environment-derived endpoint when set.
type Config struct {
	AccessToken string
	Environment string
	BaseURL     string
}

// Client is a minimal Square REST client covering locations, catalog,
// orders and customers.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

// NewClient builds a Client for the configured environment. Anything other
// than "production" selects the sandbox.
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		if strings.EqualFold(cfg.Environment, "production") {
			base = productionBaseURL
		} else {
			base = sandboxBaseURL
		}
	}
	return &Client{
		baseURL:     base,
		accessToken: cfg.AccessToken,
		httpClient:  &http.Client{Timeout: requestTimeout},
	}
}

// ListLocations returns the seller's locations.
func (c *Client) ListLocations(ctx context.Context) ([]Location, error) {
	var out struct {
		Locations []Location `json:"locations"`
		Errors    []APIError `json:"errors"`
	}
	if err := c.call(ctx, http.MethodGet, "/v2/locations", nil, nil, &out); err != nil {
		return nil, err
	}
	if err := apiErr("list locations", out.Errors); err != nil {
		return nil, err
	}
	return out.Locations, nil
}

// LocationID resolves the first location of the account.
func (c *Client) LocationID(ctx context.Context) (string, error) {
	locations, err := c.ListLocations(ctx)
	if err != nil {
		return "", err
	}
	if len(locations) == 0 {
		return "", fmt.Errorf("square: no locations found")
	}
	return locations[0].ID, nil
}

// ListCatalogItems returns all ITEM catalog objects, following cursors.
func (c *Client) ListCatalogItems(ctx context.Context) ([]CatalogObject, error) {
	var items []CatalogObject
	cursor := ""
	for {
		q := url.Values{}
		q.Set("types", "ITEM")
		if cursor != "" {
			q.Set("cursor", cursor)
		}
		var out struct {
			Objects []CatalogObject `json:"objects"`
			Cursor  string          `json:"cursor"`
			Errors  []APIError      `json:"errors"`
		}
		if err := c.call(ctx, http.MethodGet, "/v2/catalog/list", q, nil, &out); err != nil {
			return nil, err
		}
		if err := apiErr("list catalog", out.Errors); err != nil {
			return nil, err
		}
		items = append(items, out.Objects...)
		if out.Cursor == "" {
			return items, nil
		}
		cursor = out.Cursor
	}
}

// SearchOrders returns COMPLETED orders of the location created inside the
// [start, end] window.
func (c *Client) SearchOrders(ctx context.Context, locationID string, start, end time.Time) ([]Order, error) {
	body := map[string]any{
		"location_ids": []string{locationID},
		"query": map[string]any{
			"filter": map[string]any{
				"date_time_filter": map[string]any{
					"created_at": map[string]any{
						"start_at": start.Format(time.RFC3339),
						"end_at":   end.Format(time.RFC3339),
					},
				},
				"state_filter": map[string]any{
					"states": []string{"COMPLETED"},
				},
			},
		},
	}
	var out struct {
		Orders []Order    `json:"orders"`
		Errors []APIError `json:"errors"`
	}
	if err := c.call(ctx, http.MethodPost, "/v2/orders/search", nil, body, &out); err != nil {
		return nil, err
	}
	if err := apiErr("search orders", out.Errors); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

// RetrieveOrder fetches a single order.
func (c *Client) RetrieveOrder(ctx context.Context, orderID string) (*Order, error) {
	var out struct {
		Order  *Order     `json:"order"`
		Errors []APIError `json:"errors"`
	}
	if err := c.call(ctx, http.MethodGet, "/v2/orders/"+orderID, nil, nil, &out); err != nil {
		return nil, err
	}
	if err := apiErr("retrieve order", out.Errors); err != nil {
		return nil, err
	}
	if out.Order == nil {
		return nil, fmt.Errorf("square: order %s not in response", orderID)
	}
	return out.Order, nil
}

// UpdateOrderFulfillment moves one fulfillment of the order to a new state.
// Version must be the current order version for optimistic concurrency.
func (c *Client) UpdateOrderFulfillment(ctx context.Context, orderID, fulfillmentUID, state string, version int64) error {
	body := map[string]any{
		"order": map[string]any{
			"fulfillments": []map[string]any{
				{"uid": fulfillmentUID, "state": state},
			},
			"version": version,
		},
	}
	var out struct {
		Errors []APIError `json:"errors"`
	}
	if err := c.call(ctx, http.MethodPut, "/v2/orders/"+orderID, nil, body, &out); err != nil {
		return err
	}
	return apiErr("update order", out.Errors)
}

// RetrieveCustomer fetches a customer profile.
func (c *Client) RetrieveCustomer(ctx context.Context, customerID string) (*Customer, error) {
	var out struct {
		Customer *Customer  `json:"customer"`
		Errors   []APIError `json:"errors"`
	}
	if err := c.call(ctx, http.MethodGet, "/v2/customers/"+customerID, nil, nil, &out); err != nil {
		return nil, err
	}
	if err := apiErr("retrieve customer", out.Errors); err != nil {
		return nil, err
	}
	return out.Customer, nil
}

func (c *Client) call(ctx context.Context, method, path string, q url.Values, body, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("square: encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("square: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Square-Version", apiVersion)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("square: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("square: read %s response: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var failure struct {
			Errors []APIError `json:"errors"`
		}
		if err := json.Unmarshal(raw, &failure); err == nil && len(failure.Errors) > 0 {
			return fmt.Errorf("square: %s %s: status %d: %s", method, path, resp.StatusCode, formatErrors(failure.Errors))
		}
		return fmt.Errorf("square: %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("square: decode %s response: %w", path, err)
	}
	return nil
}

func apiErr(op string, errs []APIError) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("square: %s: %s", op, formatErrors(errs))
}

func formatErrors(errs []APIError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		if e.Detail != "" {
			parts = append(parts, fmt.Sprintf("%s (%s)", e.Code, e.Detail))
		} else {
			parts = append(parts, e.Code)
		}
	}
	return strings.Join(parts, "; ")
}
