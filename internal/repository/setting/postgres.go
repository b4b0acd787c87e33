package setting

import (
	"context"
	"errors"
	"io"

	"beira/internal/db"
	"beira/internal/domain"
	"github.com/jackc/pgx/v5"
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

func (r *postgresRepo) Get(ctx context.Context, key string) (string, error) {
	const q = `SELECT value FROM settings WHERE key = $1`
	var value string
	err := r.q.QueryRow(ctx, q, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		r.logger.WithError(err).WithField("key", key).Error("setting repo: get")
		return "", err
	}
	return value, nil
}

func (r *postgresRepo) Set(ctx context.Context, key, value string, encrypted bool) error {
	const q = `
INSERT INTO settings (key, value, is_encrypted)
VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET
    value = EXCLUDED.value,
    is_encrypted = EXCLUDED.is_encrypted,
    updated_at = now()
`
	if _, err := r.q.Exec(ctx, q, key, value, encrypted); err != nil {
		r.logger.WithError(err).WithField("key", key).Error("setting repo: set")
		return err
	}
	return nil
}

func (r *postgresRepo) Delete(ctx context.Context, key string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM settings WHERE key = $1`, key); err != nil {
		r.logger.WithError(err).WithField("key", key).Error("setting repo: delete")
		return err
	}
	return nil
}
