package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"beira/internal/domain"
)

type fakeEtsy struct {
	block       chan struct{}
	started     chan struct{}
	startedOnce sync.Once
	created     int
	updated     int
	err         error
}

func (f *fakeEtsy) SyncOrders(ctx context.Context, daysBack int) (int, int, error) {
	if f.started != nil {
		f.startedOnce.Do(func() { close(f.started) })
	}
	if f.block != nil {
		<-f.block
	}
	return f.created, f.updated, f.err
}

type fakeSquare struct {
	catalogCreated int
	ordersCreated  int
	pushOK         bool
	lastPush       [2]string
	lastDays       int
}

func (f *fakeSquare) SyncOrders(ctx context.Context, daysBack int) (int, int, error) {
	f.lastDays = daysBack
	return f.ordersCreated, 0, nil
}

func (f *fakeSquare) SyncCatalog(ctx context.Context) (int, int, error) {
	return f.catalogCreated, 0, nil
}

func (f *fakeSquare) UpdateFulfillmentStatus(ctx context.Context, orderID, status string) bool {
	f.lastPush = [2]string{orderID, status}
	return f.pushOK
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newService(etsy EtsySyncer, etsyErr error, square SquareSyncer, squareErr error) *Service {
	return New(
		func(ctx context.Context) (EtsySyncer, error) { return etsy, etsyErr },
		func(ctx context.Context) (SquareSyncer, error) { return square, squareErr },
		testLogger(),
	)
}

func TestEtsyOrders(t *testing.T) {
	s := newService(&fakeEtsy{created: 3, updated: 2}, nil, &fakeSquare{}, nil)
	res, err := s.EtsyOrders(context.Background(), 30)
	if err != nil {
		t.Fatalf("EtsyOrders: %v", err)
	}
	if res.Created != 3 || res.Updated != 2 {
		t.Fatalf("result = %+v, want 3/2", res)
	}
}

func TestEtsyOrdersFactoryError(t *testing.T) {
	s := newService(nil, domain.ErrNotConnected, &fakeSquare{}, nil)
	_, err := s.EtsyOrders(context.Background(), 30)
	if !errors.Is(err, domain.ErrNotConnected) {
		t.Fatalf("err = %v, want ErrNotConnected", err)
	}
}

func TestConcurrentSameSyncRejected(t *testing.T) {
	fe := &fakeEtsy{block: make(chan struct{}), started: make(chan struct{}), created: 1}
	s := newService(fe, nil, &fakeSquare{}, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := s.EtsyOrders(context.Background(), 30); err != nil {
			t.Errorf("first sync: %v", err)
		}
	}()
	<-fe.started

	_, err := s.EtsyOrders(context.Background(), 30)
	if !errors.Is(err, ErrSyncInProgress) {
		t.Fatalf("second trigger err = %v, want ErrSyncInProgress", err)
	}

	close(fe.block)
	wg.Wait()

	// A fresh trigger succeeds once the first pass is done.
	if _, err := s.EtsyOrders(context.Background(), 30); err != nil {
		t.Fatalf("sync after completion: %v", err)
	}
}

func TestDifferentSyncsRunIndependently(t *testing.T) {
	fe := &fakeEtsy{block: make(chan struct{}), started: make(chan struct{})}
	fs := &fakeSquare{ordersCreated: 1, catalogCreated: 2}
	s := newService(fe, nil, fs, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = s.EtsyOrders(context.Background(), 30)
	}()
	<-fe.started

	// The etsy lock being held must not block square syncs.
	if _, err := s.SquareOrders(context.Background(), 7); err != nil {
		t.Fatalf("SquareOrders: %v", err)
	}
	if fs.lastDays != 7 {
		t.Fatalf("days back = %d, want 7", fs.lastDays)
	}
	if _, err := s.SquareCatalog(context.Background()); err != nil {
		t.Fatalf("SquareCatalog: %v", err)
	}

	close(fe.block)
	wg.Wait()
}

func TestDaysBackDefaulted(t *testing.T) {
	fs := &fakeSquare{}
	s := newService(&fakeEtsy{}, nil, fs, nil)
	if _, err := s.SquareOrders(context.Background(), 0); err != nil {
		t.Fatalf("SquareOrders: %v", err)
	}
	if fs.lastDays != DefaultDaysBack {
		t.Fatalf("days back = %d, want %d", fs.lastDays, DefaultDaysBack)
	}
}

func TestPushSquareFulfillment(t *testing.T) {
	fs := &fakeSquare{pushOK: true}
	s := newService(&fakeEtsy{}, nil, fs, nil)

	ok, err := s.PushSquareFulfillment(context.Background(), "sq-ord-1", "COMPLETED")
	if err != nil {
		t.Fatalf("PushSquareFulfillment: %v", err)
	}
	if !ok {
		t.Fatal("push = false, want true")
	}
	if fs.lastPush != [2]string{"sq-ord-1", "COMPLETED"} {
		t.Fatalf("push args = %v", fs.lastPush)
	}

	_, err = newService(&fakeEtsy{}, nil, nil, domain.ErrNotConfigured).PushSquareFulfillment(context.Background(), "x", "COMPLETED")
	if !errors.Is(err, domain.ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}
