package setting

import "context"

// Credential store keys written by the platform adapters.
const (
	KeyEtsyAccessToken  = "ETSY_ACCESS_TOKEN"
	KeyEtsyRefreshToken = "ETSY_REFRESH_TOKEN"
	KeyEtsyTokenExpiry  = "ETSY_TOKEN_EXPIRY"
	KeyEtsyLastSync     = "ETSY_LAST_SYNC"
	KeyEtsyOAuthState   = "ETSY_OAUTH_STATE"
	KeyEtsyPKCEVerifier = "ETSY_PKCE_VERIFIER"

	KeySquareAccessToken = "SQUARE_ACCESS_TOKEN"
	KeySquareLastSync    = "SQUARE_LAST_SYNC"
)

// Repository is the key/value credential store. Set is a full
// read-modify-write; there is no optimistic concurrency.
type Repository interface {
	// Get returns the stored value, or domain.ErrNotFound when absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, encrypted bool) error
	Delete(ctx context.Context, key string) error
}
