package customer

import (
	"context"
	"errors"
	"io"
	"strings"

	"beira/internal/db"
	"beira/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
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

const customerColumns = `id::text, COALESCE(email, ''), name, phone, created_at`

func (r *postgresRepo) Create(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	const q = `
INSERT INTO customers (email, name, phone)
VALUES (NULLIF(lower($1), ''), $2, $3)
RETURNING ` + customerColumns
	return r.scan(r.q.QueryRow(ctx, q, strings.TrimSpace(c.Email), c.Name, c.Phone))
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	const q = `
SELECT ` + customerColumns + `
FROM customers
WHERE lower(email) = lower($1)
LIMIT 1
`
	return r.scan(r.q.QueryRow(ctx, q, email))
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	const q = `
SELECT ` + customerColumns + `
FROM customers
WHERE id = $1
`
	return r.scan(r.q.QueryRow(ctx, q, id))
}

func (r *postgresRepo) List(ctx context.Context, search string) ([]domain.Customer, error) {
	const q = `
SELECT ` + customerColumns + `
FROM customers
WHERE $1 = '' OR name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%'
ORDER BY created_at DESC
`
	rows, err := r.q.Query(ctx, q, strings.TrimSpace(search))
	if err != nil {
		r.logger.WithError(err).Error("customer repo: list")
		return nil, err
	}
	defer rows.Close()

	var result []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Email, &c.Name, &c.Phone, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		r.logger.WithError(err).Error("customer repo: list rows")
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) scan(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(&c.ID, &c.Email, &c.Name, &c.Phone, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.WithError(err).Error("customer repo: scan")
		return nil, err
	}
	return &c, nil
}
