package etsy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultBaseURL  = "https://api.etsy.com/v3"
	defaultTokenURL = "https://api.etsy.com/v3/public/oauth/token"

	requestTimeout = 30 * time.Second
)

// Config carries the Etsy app credentials. BaseURL and TokenURL default to
// the production endpoints when empty.
type Config struct {
	ClientID     string
	SharedSecret string
	RedirectURL  string
	BaseURL      string
	TokenURL     string
}

// RefreshFunc is invoked after every successful token refresh so the caller
// can persist the rotated token set.
type RefreshFunc func(ctx context.Context, access, refresh string, expiry time.Time) error

// Client is an authenticated Etsy v3 API client. Refreshing rotates both
// tokens; the onRefresh hook is the caller's chance to store them.
type Client struct {
	cfg        Config
	httpClient *http.Client
	onRefresh  RefreshFunc

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

// NewClient builds a Client with the given token pair.
func NewClient(cfg Config, accessToken, refreshToken string, onRefresh RefreshFunc) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultTokenURL
	}
	return &Client{
		cfg:          cfg,
		httpClient:   &http.Client{Timeout: requestTimeout},
		onRefresh:    onRefresh,
		accessToken:  accessToken,
		refreshToken: refreshToken,
	}
}

// GetShops returns the shops owned by the authenticated user.
func (c *Client) GetShops(ctx context.Context) ([]Shop, error) {
	var out listResponse[Shop]
	if err := c.get(ctx, "/application/shops", nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// ShopID resolves the first shop of the authenticated user.
func (c *Client) ShopID(ctx context.Context) (int64, error) {
	shops, err := c.GetShops(ctx)
	if err != nil {
		return 0, err
	}
	if len(shops) == 0 {
		return 0, fmt.Errorf("no etsy shops found for authenticated user")
	}
	return shops[0].ShopID, nil
}

// GetReceipts returns up to limit paid receipts of the shop created at or
// after minCreated (zero disables the lower bound).
func (c *Client) GetReceipts(ctx context.Context, shopID int64, limit int, minCreated time.Time) ([]Receipt, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("was_paid", "true")
	if !minCreated.IsZero() {
		q.Set("min_created", strconv.FormatInt(minCreated.Unix(), 10))
	}
	var out listResponse[Receipt]
	if err := c.get(ctx, fmt.Sprintf("/application/shops/%d/receipts", shopID), q, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, q)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("etsy: GET %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("etsy: decode %s response: %w", path, err)
	}
	return nil
}

// do sends one request and retries exactly once after a token refresh when
// the API answers 401.
func (c *Client) do(ctx context.Context, method, path string, q url.Values) (*http.Response, error) {
	resp, err := c.send(ctx, method, path, q)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	resp.Body.Close()

	if err := c.Refresh(ctx); err != nil {
		return nil, err
	}
	return c.send(ctx, method, path, q)
}

func (c *Client) send(ctx context.Context, method, path string, q url.Values) (*http.Response, error) {
	u := c.cfg.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, fmt.Errorf("etsy: build request: %w", err)
	}
	c.mu.Lock()
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	c.mu.Unlock()
	req.Header.Set("x-api-key", c.cfg.ClientID)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("etsy: %s %s: %w", method, path, err)
	}
	return resp, nil
}

// Refresh exchanges the refresh token for a new token pair and invokes the
// onRefresh hook with the rotated set.
func (c *Client) Refresh(ctx context.Context) error {
	c.mu.Lock()
	refresh := c.refreshToken
	c.mu.Unlock()
	if refresh == "" {
		return fmt.Errorf("etsy: no refresh token available")
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refresh)
	form.Set("client_id", c.cfg.ClientID)

	tok, err := c.postToken(ctx, form, true)
	if err != nil {
		return fmt.Errorf("etsy: refresh token: %w", err)
	}

	expiry := time.Now().UTC().Add(time.Duration(tok.ExpiresIn) * time.Second)
	c.mu.Lock()
	c.accessToken = tok.AccessToken
	c.refreshToken = tok.RefreshToken
	c.mu.Unlock()

	if c.onRefresh != nil {
		if err := c.onRefresh(ctx, tok.AccessToken, tok.RefreshToken, expiry); err != nil {
			return fmt.Errorf("etsy: persist refreshed tokens: %w", err)
		}
	}
	return nil
}

// ExchangeCode completes the PKCE flow, trading an authorization code for a
// token pair.
func (c *Client) ExchangeCode(ctx context.Context, code, codeVerifier string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", c.cfg.ClientID)
	form.Set("redirect_uri", c.cfg.RedirectURL)
	form.Set("code", code)
	form.Set("code_verifier", codeVerifier)

	tok, err := c.postToken(ctx, form, false)
	if err != nil {
		return nil, fmt.Errorf("etsy: exchange code: %w", err)
	}
	c.mu.Lock()
	c.accessToken = tok.AccessToken
	c.refreshToken = tok.RefreshToken
	c.mu.Unlock()
	return tok, nil
}

func (c *Client) postToken(ctx context.Context, form url.Values, basicAuth bool) (*TokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if basicAuth {
		req.SetBasicAuth(c.cfg.ClientID, c.cfg.SharedSecret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var tok TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	return &tok, nil
}
