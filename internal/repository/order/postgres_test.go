package order

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"beira/internal/domain"
	"beira/internal/migrate"
	productrepo "beira/internal/repository/product"
)

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE order_line_items, orders, products, messages, customers, settings RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func TestPostgres_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)

	created, err := repo.Create(ctx, domain.Order{
		Platform:        domain.PlatformEtsy,
		PlatformOrderID: "1001",
		OrderDate:       time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC),
		Status:          "pending",
		TotalAmount:     decimal.RequireFromString("25.99"),
		ShippingAddress: &domain.Address{Name: "Jane", Address1: "1 Main St", City: "Lisbon", Country: "PT"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByPlatformID(ctx, domain.PlatformEtsy, "1001")
	if err != nil {
		t.Fatalf("GetByPlatformID: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("id mismatch: %s != %s", got.ID, created.ID)
	}
	if !got.TotalAmount.Equal(decimal.RequireFromString("25.99")) {
		t.Fatalf("total = %s, want 25.99", got.TotalAmount)
	}
	if got.ShippingAddress == nil || got.ShippingAddress.City != "Lisbon" {
		t.Fatalf("shipping address = %+v", got.ShippingAddress)
	}

	if _, err := repo.Create(ctx, domain.Order{
		Platform:        domain.PlatformEtsy,
		PlatformOrderID: "1001",
		OrderDate:       time.Now().UTC(),
	}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("duplicate create err = %v, want ErrAlreadyExists", err)
	}

	// Same external id on the other platform is a different order.
	if _, err := repo.Create(ctx, domain.Order{
		Platform:        domain.PlatformSquare,
		PlatformOrderID: "1001",
		OrderDate:       time.Now().UTC(),
	}); err != nil {
		t.Fatalf("cross-platform create: %v", err)
	}
}

func TestPostgres_UpdateAndFulfillment(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	created, err := repo.Create(ctx, domain.Order{
		Platform:        domain.PlatformSquare,
		PlatformOrderID: "sq-1",
		OrderDate:       time.Now().UTC(),
		Status:          "open",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	created.Status = "completed"
	created.FulfillmentStatus = "reserved"
	created.TotalAmount = decimal.RequireFromString("40.00")
	created.ShippingCarrier = "FEDEX"
	created.TrackingNumber = "FX-1"
	if err := repo.Update(ctx, *created); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.GetByPlatformID(ctx, domain.PlatformSquare, "sq-1")
	if err != nil {
		t.Fatalf("GetByPlatformID: %v", err)
	}
	if got.Status != "completed" || got.FulfillmentStatus != "reserved" {
		t.Fatalf("status = %s/%s", got.Status, got.FulfillmentStatus)
	}
	if got.ShippingCarrier != "FEDEX" || got.TrackingNumber != "FX-1" {
		t.Fatalf("tracking = %s/%s", got.ShippingCarrier, got.TrackingNumber)
	}

	if err := repo.SetFulfillmentStatus(ctx, got.ID, "completed"); err != nil {
		t.Fatalf("SetFulfillmentStatus: %v", err)
	}
	got, _ = repo.GetByPlatformID(ctx, domain.PlatformSquare, "sq-1")
	if got.FulfillmentStatus != "completed" {
		t.Fatalf("fulfillment = %s, want completed", got.FulfillmentStatus)
	}

	missing := *created
	missing.ID = "00000000-0000-0000-0000-000000000000"
	if err := repo.Update(ctx, missing); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("update missing err = %v, want ErrNotFound", err)
	}
}

func TestPostgres_ReplaceLineItems(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	products := productrepo.NewPostgres(pool, nil)
	mug, err := products.Create(ctx, domain.Product{
		Platform:          domain.PlatformSquare,
		PlatformProductID: "item-1",
		Name:              "Mug",
		Price:             decimal.RequireFromString("15.00"),
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	shirt, err := products.Create(ctx, domain.Product{
		Platform:          domain.PlatformSquare,
		PlatformProductID: "item-2",
		Name:              "Shirt",
		Price:             decimal.RequireFromString("25.00"),
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	repo := NewPostgres(pool, nil)
	order, err := repo.Create(ctx, domain.Order{
		Platform:        domain.PlatformSquare,
		PlatformOrderID: "sq-1",
		OrderDate:       time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	items := []domain.OrderLineItem{
		{ProductID: mug.ID, Quantity: 2, Price: decimal.RequireFromString("15.00")},
		{ProductID: shirt.ID, Quantity: 1, Price: decimal.RequireFromString("25.00")},
	}
	if err := repo.ReplaceLineItems(ctx, order.ID, items); err != nil {
		t.Fatalf("ReplaceLineItems: %v", err)
	}

	got, err := repo.GetByPlatformID(ctx, domain.PlatformSquare, "sq-1")
	if err != nil {
		t.Fatalf("GetByPlatformID: %v", err)
	}
	if len(got.LineItems) != 2 {
		t.Fatalf("line items = %d, want 2", len(got.LineItems))
	}

	// Replacing again fully swaps the set.
	if err := repo.ReplaceLineItems(ctx, order.ID, items[:1]); err != nil {
		t.Fatalf("second ReplaceLineItems: %v", err)
	}
	got, _ = repo.GetByPlatformID(ctx, domain.PlatformSquare, "sq-1")
	if len(got.LineItems) != 1 {
		t.Fatalf("line items = %d, want 1 after replacement", len(got.LineItems))
	}
	if got.LineItems[0].ProductID != mug.ID || got.LineItems[0].Quantity != 2 {
		t.Fatalf("line item = %+v", got.LineItems[0])
	}
}

func TestPostgres_ListFilters(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	seed := []domain.Order{
		{Platform: domain.PlatformEtsy, PlatformOrderID: "e-1", Status: "pending", OrderDate: time.Now().Add(-2 * time.Hour).UTC()},
		{Platform: domain.PlatformEtsy, PlatformOrderID: "e-2", Status: "shipped", OrderDate: time.Now().Add(-1 * time.Hour).UTC()},
		{Platform: domain.PlatformSquare, PlatformOrderID: "s-1", Status: "completed", OrderDate: time.Now().UTC()},
	}
	for _, o := range seed {
		if _, err := repo.Create(ctx, o); err != nil {
			t.Fatalf("seed %s: %v", o.PlatformOrderID, err)
		}
	}

	all, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all = %d, want 3", len(all))
	}
	if all[0].PlatformOrderID != "s-1" {
		t.Fatalf("newest first, got %s", all[0].PlatformOrderID)
	}

	etsyOnly, err := repo.List(ctx, Filter{Platform: domain.PlatformEtsy})
	if err != nil {
		t.Fatalf("List etsy: %v", err)
	}
	if len(etsyOnly) != 2 {
		t.Fatalf("etsy = %d, want 2", len(etsyOnly))
	}

	shipped, err := repo.List(ctx, Filter{Platform: domain.PlatformEtsy, Status: "shipped"})
	if err != nil {
		t.Fatalf("List shipped: %v", err)
	}
	if len(shipped) != 1 || shipped[0].PlatformOrderID != "e-2" {
		t.Fatalf("shipped = %+v", shipped)
	}

	recent, err := repo.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 || recent[0].PlatformOrderID != "s-1" {
		t.Fatalf("recent = %+v", recent)
	}
}
