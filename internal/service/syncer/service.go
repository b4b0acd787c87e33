// Package syncer coordinates the platform sync passes. At most one pass per
// platform/kind pair runs at a time; a second trigger while one is running
// is rejected with ErrSyncInProgress instead of queueing.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrSyncInProgress is returned when a sync of the same platform and kind is
// already running.
var ErrSyncInProgress = errors.New("sync already in progress")

// DefaultDaysBack is the lookback window used when the caller does not pick
// one.
const DefaultDaysBack = 30

// Result carries the counts of one completed sync pass.
type Result struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// EtsySyncer is the Etsy adapter surface the orchestrator drives.
type EtsySyncer interface {
	SyncOrders(ctx context.Context, daysBack int) (int, int, error)
}

// SquareSyncer is the Square adapter surface the orchestrator drives.
type SquareSyncer interface {
	SyncOrders(ctx context.Context, daysBack int) (int, int, error)
	SyncCatalog(ctx context.Context) (int, int, error)
	UpdateFulfillmentStatus(ctx context.Context, orderID, status string) bool
}

// EtsyFactory builds a connected Etsy adapter. Construction errors surface
// configuration and connection problems per trigger.
type EtsyFactory func(ctx context.Context) (EtsySyncer, error)

// SquareFactory builds a configured Square adapter.
type SquareFactory func(ctx context.Context) (SquareSyncer, error)

// Service serializes sync passes per platform/kind.
type Service struct {
	newEtsy   EtsyFactory
	newSquare SquareFactory
	logger    *logrus.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New builds a Service over the adapter factories.
func New(newEtsy EtsyFactory, newSquare SquareFactory, logger *logrus.Logger) *Service {
	return &Service{
		newEtsy:   newEtsy,
		newSquare: newSquare,
		logger:    logger,
		locks:     make(map[string]*sync.Mutex),
	}
}

// EtsyOrders runs an Etsy order sync pass.
func (s *Service) EtsyOrders(ctx context.Context, daysBack int) (Result, error) {
	return s.run(ctx, "etsy:orders", func(ctx context.Context) (Result, error) {
		adapter, err := s.newEtsy(ctx)
		if err != nil {
			return Result{}, err
		}
		created, updated, err := adapter.SyncOrders(ctx, normalizeDays(daysBack))
		return Result{Created: created, Updated: updated}, err
	})
}

// SquareOrders runs a Square order sync pass.
func (s *Service) SquareOrders(ctx context.Context, daysBack int) (Result, error) {
	return s.run(ctx, "square:orders", func(ctx context.Context) (Result, error) {
		adapter, err := s.newSquare(ctx)
		if err != nil {
			return Result{}, err
		}
		created, updated, err := adapter.SyncOrders(ctx, normalizeDays(daysBack))
		return Result{Created: created, Updated: updated}, err
	})
}

// SquareCatalog runs a Square catalog sync pass.
func (s *Service) SquareCatalog(ctx context.Context) (Result, error) {
	return s.run(ctx, "square:catalog", func(ctx context.Context) (Result, error) {
		adapter, err := s.newSquare(ctx)
		if err != nil {
			return Result{}, err
		}
		created, updated, err := adapter.SyncCatalog(ctx)
		return Result{Created: created, Updated: updated}, err
	})
}

// PushSquareFulfillment pushes a fulfillment state to the remote Square
// order. The returned bool is the push outcome; the error covers adapter
// construction only.
func (s *Service) PushSquareFulfillment(ctx context.Context, platformOrderID, status string) (bool, error) {
	adapter, err := s.newSquare(ctx)
	if err != nil {
		return false, err
	}
	return adapter.UpdateFulfillmentStatus(ctx, platformOrderID, status), nil
}

func (s *Service) run(ctx context.Context, key string, pass func(ctx context.Context) (Result, error)) (Result, error) {
	lock := s.lockFor(key)
	if !lock.TryLock() {
		s.logger.WithField("sync", key).Warn("sync trigger rejected, already running")
		return Result{}, fmt.Errorf("%s: %w", key, ErrSyncInProgress)
	}
	defer lock.Unlock()
	return pass(ctx)
}

func (s *Service) lockFor(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

func normalizeDays(daysBack int) int {
	if daysBack <= 0 {
		return DefaultDaysBack
	}
	return daysBack
}
