package message

import (
	"context"
	"io"

	"beira/internal/db"
	"beira/internal/domain"
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

func (r *postgresRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.Message, error) {
	const q = `
SELECT id::text, customer_id::text, content, platform, platform_message_id, sent_at, created_at
FROM messages
WHERE customer_id = $1
ORDER BY sent_at DESC
`
	rows, err := r.q.Query(ctx, q, customerID)
	if err != nil {
		r.logger.WithError(err).Error("message repo: list")
		return nil, err
	}
	defer rows.Close()

	var result []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.CustomerID, &m.Content, &m.Platform, &m.PlatformMessageID, &m.SentAt, &m.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		r.logger.WithError(err).Error("message repo: list rows")
		return nil, err
	}
	return result, nil
}
