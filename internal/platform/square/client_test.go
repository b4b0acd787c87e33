package square

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClientHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sq-token" {
			t.Errorf("Authorization = %q", got)
		}
		if r.Header.Get("Square-Version") == "" {
			t.Error("Square-Version header missing")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"locations": []Location{{ID: "loc-1"}}})
	}))
	defer srv.Close()

	c := NewClient(Config{AccessToken: "sq-token", BaseURL: srv.URL})
	id, err := c.LocationID(context.Background())
	if err != nil {
		t.Fatalf("LocationID: %v", err)
	}
	if id != "loc-1" {
		t.Fatalf("location = %q, want loc-1", id)
	}
}

func TestClientEnvironmentSelection(t *testing.T) {
	if c := NewClient(Config{Environment: "production"}); c.baseURL != productionBaseURL {
		t.Errorf("production base = %q", c.baseURL)
	}
	if c := NewClient(Config{Environment: "sandbox"}); c.baseURL != sandboxBaseURL {
		t.Errorf("sandbox base = %q", c.baseURL)
	}
	if c := NewClient(Config{}); c.baseURL != sandboxBaseURL {
		t.Errorf("default base = %q, want sandbox", c.baseURL)
	}
}

func TestListCatalogItemsFollowsCursor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("types"); got != "ITEM" {
			t.Errorf("types = %q, want ITEM", got)
		}
		if r.URL.Query().Get("cursor") == "" {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"objects": []CatalogObject{{ID: "item-1", Type: "ITEM"}},
				"cursor":  "page-2",
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"objects": []CatalogObject{{ID: "item-2", Type: "ITEM"}},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{AccessToken: "t", BaseURL: srv.URL})
	items, err := c.ListCatalogItems(context.Background())
	if err != nil {
		t.Fatalf("ListCatalogItems: %v", err)
	}
	if len(items) != 2 || items[0].ID != "item-1" || items[1].ID != "item-2" {
		t.Fatalf("items = %+v", items)
	}
}

func TestClientSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"errors": []APIError{{Category: "AUTHENTICATION_ERROR", Code: "UNAUTHORIZED", Detail: "bad token"}},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{AccessToken: "t", BaseURL: srv.URL})
	_, err := c.ListLocations(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "UNAUTHORIZED") || !strings.Contains(err.Error(), "bad token") {
		t.Fatalf("err = %v, want code and detail surfaced", err)
	}
}
