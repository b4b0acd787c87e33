package store

import (
	"context"

	custrepo "beira/internal/repository/customer"
	msgrepo "beira/internal/repository/message"
	orderrepo "beira/internal/repository/order"
	productrepo "beira/internal/repository/product"
	settingrepo "beira/internal/repository/setting"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// TxStores bundles the repositories a sync pass writes through. All of them
// share one transaction; the pass commits or rolls back as a whole.
type TxStores struct {
	Customers custrepo.Repository
	Products  productrepo.Repository
	Orders    orderrepo.Repository
}

// TxRunner runs a function inside a single database transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(TxStores) error) error
}

// Store bundles pool-bound repositories for the read surface and implements
// TxRunner for sync passes.
type Store struct {
	pool   *pgxpool.Pool
	logger *logrus.Logger

	Customers custrepo.Repository
	Products  productrepo.Repository
	Orders    orderrepo.Repository
	Messages  msgrepo.Repository
	Settings  settingrepo.Repository
}

// New builds a Store over the given pool.
func New(pool *pgxpool.Pool, logger *logrus.Logger) *Store {
	return &Store{
		pool:      pool,
		logger:    logger,
		Customers: custrepo.NewPostgres(pool, logger),
		Products:  productrepo.NewPostgres(pool, logger),
		Orders:    orderrepo.NewPostgres(pool, logger),
		Messages:  msgrepo.NewPostgres(pool, logger),
		Settings:  settingrepo.NewPostgres(pool, logger),
	}
}

// RunInTx begins a transaction, binds tx-scoped repositories and runs fn.
// A nil return commits; any error rolls the whole pass back and is returned.
func (s *Store) RunInTx(ctx context.Context, fn func(TxStores) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }() // no-op once committed

	ts := TxStores{
		Customers: custrepo.NewPostgres(tx, s.logger),
		Products:  productrepo.NewPostgres(tx, s.logger),
		Orders:    orderrepo.NewPostgres(tx, s.logger),
	}
	if err := fn(ts); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
