package setting

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"beira/internal/domain"
	"beira/internal/migrate"
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

func TestPostgres_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE settings RESTART IDENTITY`); err != nil {
		t.Fatalf("truncate settings: %v", err)
	}

	repo := NewPostgres(pool, nil)

	if _, err := repo.Get(ctx, KeyEtsyAccessToken); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("get missing err = %v, want ErrNotFound", err)
	}

	if err := repo.Set(ctx, KeyEtsyAccessToken, "tok-1", true); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := repo.Get(ctx, KeyEtsyAccessToken)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "tok-1" {
		t.Fatalf("value = %q, want tok-1", got)
	}

	// Set on an existing key overwrites in place.
	if err := repo.Set(ctx, KeyEtsyAccessToken, "tok-2", true); err != nil {
		t.Fatalf("second Set: %v", err)
	}
	got, _ = repo.Get(ctx, KeyEtsyAccessToken)
	if got != "tok-2" {
		t.Fatalf("value = %q, want tok-2", got)
	}

	var count int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM settings WHERE key = $1`, KeyEtsyAccessToken).Scan(&count); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("rows = %d, want 1", count)
	}

	if err := repo.Delete(ctx, KeyEtsyAccessToken); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, KeyEtsyAccessToken); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("get after delete err = %v, want ErrNotFound", err)
	}
}
