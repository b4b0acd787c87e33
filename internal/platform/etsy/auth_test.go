package etsy

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	settingrepo "beira/internal/repository/setting"
	"beira/internal/store/storetest"
)

func TestCodeChallengeS256(t *testing.T) {
	// RFC 7636 appendix B test vector.
	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	want := "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"
	if got := CodeChallengeS256(verifier); got != want {
		t.Fatalf("CodeChallengeS256 = %q, want %q", got, want)
	}
}

func TestAuthorizerBegin(t *testing.T) {
	st := storetest.New()
	c := NewClient(Config{ClientID: "client-1", SharedSecret: "sec", RedirectURL: "https://app.test/callback"}, "", "", nil)
	a := NewAuthorizer(c, st.Settings())

	authURL, err := a.Begin(context.Background())
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	u, err := url.Parse(authURL)
	if err != nil {
		t.Fatalf("parse auth url: %v", err)
	}
	if !strings.HasPrefix(authURL, "https://www.etsy.com/oauth/connect?") {
		t.Fatalf("auth url = %q, want etsy connect endpoint", authURL)
	}
	q := u.Query()
	if q.Get("client_id") != "client-1" || q.Get("response_type") != "code" {
		t.Fatalf("unexpected query: %v", q)
	}
	if q.Get("code_challenge_method") != "S256" {
		t.Fatalf("code_challenge_method = %q", q.Get("code_challenge_method"))
	}

	state := st.SettingValue(settingrepo.KeyEtsyOAuthState)
	verifier := st.SettingValue(settingrepo.KeyEtsyPKCEVerifier)
	if state == "" || verifier == "" {
		t.Fatal("state and verifier must be persisted")
	}
	if q.Get("state") != state {
		t.Fatalf("url state %q != stored state %q", q.Get("state"), state)
	}
	if q.Get("code_challenge") != CodeChallengeS256(verifier) {
		t.Fatal("code_challenge does not match stored verifier")
	}
}

func TestAuthorizerComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.FormValue("grant_type"); got != "authorization_code" {
			t.Errorf("grant_type = %q", got)
		}
		if got := r.FormValue("code"); got != "auth-code" {
			t.Errorf("code = %q", got)
		}
		fmt.Fprint(w, `{"access_token":"tok-1","refresh_token":"ref-1","expires_in":3600}`)
	}))
	defer srv.Close()

	st := storetest.New()
	c := NewClient(Config{ClientID: "client-1", SharedSecret: "sec", TokenURL: srv.URL}, "", "", nil)
	a := NewAuthorizer(c, st.Settings())

	if _, err := a.Begin(context.Background()); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	state := st.SettingValue(settingrepo.KeyEtsyOAuthState)

	if err := a.Complete(context.Background(), "wrong-state", "auth-code"); err == nil {
		t.Fatal("expected state mismatch error")
	}

	if err := a.Complete(context.Background(), state, "auth-code"); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got := st.SettingValue(settingrepo.KeyEtsyAccessToken); got != "tok-1" {
		t.Fatalf("stored access token = %q, want tok-1", got)
	}
	if got := st.SettingValue(settingrepo.KeyEtsyRefreshToken); got != "ref-1" {
		t.Fatalf("stored refresh token = %q, want ref-1", got)
	}
	if st.SettingValue(settingrepo.KeyEtsyOAuthState) != "" {
		t.Fatal("oauth state must be cleared after completion")
	}
	if st.SettingValue(settingrepo.KeyEtsyPKCEVerifier) != "" {
		t.Fatal("pkce verifier must be cleared after completion")
	}
}
