package product

import (
	"context"
	"errors"
	"io"

	"beira/internal/db"
	"beira/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type postgresRepo struct {
	q      db.Querier
	logger *logrus.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(q db.Querier, logger *logrus.Logger) Repository {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &postgresRepo{q: q, logger: logger}
}

const productColumns = `id::text, platform, platform_product_id, name, description, price::text, sku, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (platform, platform_product_id, name, description, price, sku)
VALUES ($1, $2, $3, $4, $5::numeric, $6)
RETURNING ` + productColumns
	return r.scan(r.q.QueryRow(ctx, q,
		string(p.Platform), p.PlatformProductID, p.Name, p.Description, p.Price.StringFixed(2), p.SKU,
	))
}

func (r *postgresRepo) Update(ctx context.Context, p domain.Product) error {
	const q = `
UPDATE products
SET name = $2, description = $3, price = $4::numeric, sku = $5, updated_at = now()
WHERE id = $1
`
	tag, err := r.q.Exec(ctx, q, p.ID, p.Name, p.Description, p.Price.StringFixed(2), p.SKU)
	if err != nil {
		r.logger.WithError(err).WithField("id", p.ID).Error("product repo: update")
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) GetByPlatformID(ctx context.Context, platform domain.Platform, platformProductID string) (*domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE platform = $1 AND platform_product_id = $2
`
	return r.scan(r.q.QueryRow(ctx, q, string(platform), platformProductID))
}

func (r *postgresRepo) List(ctx context.Context, platform domain.Platform) ([]domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE $1 = '' OR platform = $1
ORDER BY created_at DESC
`
	rows, err := r.q.Query(ctx, q, string(platform))
	if err != nil {
		r.logger.WithError(err).Error("product repo: list")
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.WithError(err).Error("product repo: list rows")
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) scan(row pgx.Row) (*domain.Product, error) {
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.WithError(err).Error("product repo: scan")
		return nil, err
	}
	return p, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p     domain.Product
		price string
	)
	if err := row.Scan(&p.ID, &p.Platform, &p.PlatformProductID, &p.Name, &p.Description, &price, &p.SKU, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return nil, err
	}
	p.Price = parsed
	return &p, nil
}
