package etsy

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestClientSendsAuthHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer tok-1")
		}
		if got := r.Header.Get("x-api-key"); got != "client-1" {
			t.Errorf("x-api-key = %q, want %q", got, "client-1")
		}
		fmt.Fprint(w, `{"count":1,"results":[{"shop_id":42,"shop_name":"testshop"}]}`)
	}))
	defer srv.Close()

	c := NewClient(Config{ClientID: "client-1", SharedSecret: "sec", BaseURL: srv.URL}, "tok-1", "ref-1", nil)
	shops, err := c.GetShops(context.Background())
	if err != nil {
		t.Fatalf("GetShops: %v", err)
	}
	if len(shops) != 1 || shops[0].ShopID != 42 {
		t.Fatalf("shops = %+v, want one shop with id 42", shops)
	}
}

func TestClientRefreshesOnceOn401(t *testing.T) {
	var apiCalls, tokenCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client-1" || pass != "sec" {
			t.Errorf("token request basic auth = %q/%q ok=%v", user, pass, ok)
		}
		if got := r.FormValue("grant_type"); got != "refresh_token" {
			t.Errorf("grant_type = %q, want refresh_token", got)
		}
		fmt.Fprint(w, `{"access_token":"tok-2","refresh_token":"ref-2","expires_in":3600}`)
	})
	mux.HandleFunc("/application/shops", func(w http.ResponseWriter, r *http.Request) {
		apiCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer tok-2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"count":1,"results":[{"shop_id":7}]}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	var persisted []string
	hook := func(_ context.Context, access, refresh string, _ time.Time) error {
		persisted = []string{access, refresh}
		return nil
	}
	c := NewClient(Config{ClientID: "client-1", SharedSecret: "sec", BaseURL: srv.URL, TokenURL: srv.URL + "/token"}, "tok-stale", "ref-1", hook)

	id, err := c.ShopID(context.Background())
	if err != nil {
		t.Fatalf("ShopID: %v", err)
	}
	if id != 7 {
		t.Fatalf("shop id = %d, want 7", id)
	}
	if got := apiCalls.Load(); got != 2 {
		t.Fatalf("api calls = %d, want 2 (original plus one retry)", got)
	}
	if got := tokenCalls.Load(); got != 1 {
		t.Fatalf("token calls = %d, want 1", got)
	}
	if len(persisted) != 2 || persisted[0] != "tok-2" || persisted[1] != "ref-2" {
		t.Fatalf("persisted tokens = %v, want [tok-2 ref-2]", persisted)
	}
}

func TestClientDoesNotRetryTwice(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"access_token":"tok-2","refresh_token":"ref-2","expires_in":3600}`)
	})
	var apiCalls atomic.Int32
	mux.HandleFunc("/application/shops", func(w http.ResponseWriter, r *http.Request) {
		apiCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(Config{ClientID: "c", SharedSecret: "s", BaseURL: srv.URL, TokenURL: srv.URL + "/token"}, "tok", "ref", nil)
	if _, err := c.GetShops(context.Background()); err == nil {
		t.Fatal("expected error when retry also gets 401")
	}
	if got := apiCalls.Load(); got != 2 {
		t.Fatalf("api calls = %d, want exactly 2", got)
	}
}

func TestGetReceiptsQuery(t *testing.T) {
	minCreated := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("limit"); got != "100" {
			t.Errorf("limit = %q, want 100", got)
		}
		if got := q.Get("was_paid"); got != "true" {
			t.Errorf("was_paid = %q, want true", got)
		}
		if got := q.Get("min_created"); got != fmt.Sprint(minCreated.Unix()) {
			t.Errorf("min_created = %q, want %d", got, minCreated.Unix())
		}
		fmt.Fprint(w, `{"count":0,"results":[]}`)
	}))
	defer srv.Close()

	c := NewClient(Config{ClientID: "c", SharedSecret: "s", BaseURL: srv.URL}, "tok", "ref", nil)
	receipts, err := c.GetReceipts(context.Background(), 42, 100, minCreated)
	if err != nil {
		t.Fatalf("GetReceipts: %v", err)
	}
	if len(receipts) != 0 {
		t.Fatalf("receipts = %v, want empty", receipts)
	}
}

func TestMoneyDecimal(t *testing.T) {
	cases := []struct {
		money Money
		want  string
	}{
		{Money{Amount: 1250, Divisor: 100}, "12.5"},
		{Money{Amount: 999, Divisor: 100}, "9.99"},
		{Money{Amount: 5, Divisor: 0}, "0"},
	}
	for _, tc := range cases {
		if got := tc.money.Decimal().String(); got != tc.want {
			t.Errorf("Decimal(%d/%d) = %s, want %s", tc.money.Amount, tc.money.Divisor, got, tc.want)
		}
	}
}
