package etsy

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"

	settingrepo "beira/internal/repository/setting"
)

// Scopes requested during the OAuth connect flow.
var oauthScopes = []string{"transactions.r", "listings.r", "shops.r", "profile.r"}

const authorizeURL = "https://www.etsy.com/oauth/connect"

// GenerateCodeVerifier returns a new PKCE code verifier.
func GenerateCodeVerifier() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate code verifier: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// CodeChallengeS256 derives the S256 code challenge for a verifier.
func CodeChallengeS256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// Authorizer drives the PKCE authorization-code flow. State and verifier are
// persisted in the settings store so the callback can be served by a
// different process than the one that started the flow.
type Authorizer struct {
	client   *Client
	settings settingrepo.Repository
}

// NewAuthorizer builds an Authorizer over the given client and settings.
func NewAuthorizer(client *Client, settings settingrepo.Repository) *Authorizer {
	return &Authorizer{client: client, settings: settings}
}

// Begin generates state and PKCE material, stores both and returns the
// authorization URL to redirect the merchant to.
func (a *Authorizer) Begin(ctx context.Context) (string, error) {
	state, err := GenerateCodeVerifier()
	if err != nil {
		return "", err
	}
	verifier, err := GenerateCodeVerifier()
	if err != nil {
		return "", err
	}
	if err := a.settings.Set(ctx, settingrepo.KeyEtsyOAuthState, state, true); err != nil {
		return "", fmt.Errorf("store oauth state: %w", err)
	}
	if err := a.settings.Set(ctx, settingrepo.KeyEtsyPKCEVerifier, verifier, true); err != nil {
		return "", fmt.Errorf("store pkce verifier: %w", err)
	}

	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", a.client.cfg.ClientID)
	q.Set("redirect_uri", a.client.cfg.RedirectURL)
	q.Set("scope", strings.Join(oauthScopes, " "))
	q.Set("state", state)
	q.Set("code_challenge", CodeChallengeS256(verifier))
	q.Set("code_challenge_method", "S256")
	return authorizeURL + "?" + q.Encode(), nil
}

// Complete validates the callback state, exchanges the code and persists the
// resulting token set.
func (a *Authorizer) Complete(ctx context.Context, state, code string) error {
	stored, err := a.settings.Get(ctx, settingrepo.KeyEtsyOAuthState)
	if err != nil {
		return fmt.Errorf("oauth state missing: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(state)) != 1 {
		return fmt.Errorf("oauth state mismatch")
	}
	verifier, err := a.settings.Get(ctx, settingrepo.KeyEtsyPKCEVerifier)
	if err != nil {
		return fmt.Errorf("pkce verifier missing: %w", err)
	}

	tok, err := a.client.ExchangeCode(ctx, code, verifier)
	if err != nil {
		return err
	}
	expiry := time.Now().UTC().Add(time.Duration(tok.ExpiresIn) * time.Second)
	if err := persistTokens(ctx, a.settings, tok.AccessToken, tok.RefreshToken, expiry); err != nil {
		return err
	}
	_ = a.settings.Delete(ctx, settingrepo.KeyEtsyOAuthState)
	_ = a.settings.Delete(ctx, settingrepo.KeyEtsyPKCEVerifier)
	return nil
}

func persistTokens(ctx context.Context, settings settingrepo.Repository, access, refresh string, expiry time.Time) error {
	if err := settings.Set(ctx, settingrepo.KeyEtsyAccessToken, access, true); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}
	if err := settings.Set(ctx, settingrepo.KeyEtsyRefreshToken, refresh, true); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	if err := settings.Set(ctx, settingrepo.KeyEtsyTokenExpiry, expiry.Format(time.RFC3339), true); err != nil {
		return fmt.Errorf("store token expiry: %w", err)
	}
	return nil
}
