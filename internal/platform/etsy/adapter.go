package etsy

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"beira/internal/domain"
	settingrepo "beira/internal/repository/setting"
	"beira/internal/store"
)

const receiptPageLimit = 100

// Adapter syncs Etsy receipts into the local store. Construction fails when
// the app credentials are missing or the shop has never been connected.
type Adapter struct {
	client   *Client
	settings settingrepo.Repository
	tx       store.TxRunner
	logger   *logrus.Logger
}

// New resolves the stored token set and builds a ready-to-sync Adapter. A
// token already past its expiry is refreshed eagerly so the first API call
// does not burn a round trip on a guaranteed 401.
func New(ctx context.Context, cfg Config, settings settingrepo.Repository, tx store.TxRunner, logger *logrus.Logger) (*Adapter, error) {
	if cfg.ClientID == "" || cfg.SharedSecret == "" {
		return nil, fmt.Errorf("etsy credentials: %w", domain.ErrNotConfigured)
	}

	access, err := settings.Get(ctx, settingrepo.KeyEtsyAccessToken)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("etsy account: %w", domain.ErrNotConnected)
		}
		return nil, err
	}
	refresh, err := settings.Get(ctx, settingrepo.KeyEtsyRefreshToken)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	client := NewClient(cfg, access, refresh, func(ctx context.Context, access, refresh string, expiry time.Time) error {
		return persistTokens(ctx, settings, access, refresh, expiry)
	})

	a := &Adapter{client: client, settings: settings, tx: tx, logger: logger}

	if expiryRaw, err := settings.Get(ctx, settingrepo.KeyEtsyTokenExpiry); err == nil {
		if expiry, err := time.Parse(time.RFC3339, expiryRaw); err == nil && !time.Now().Before(expiry) {
			if err := client.Refresh(ctx); err != nil {
				return nil, err
			}
		}
	}
	return a, nil
}

// Client exposes the underlying API client for the connect flow.
func (a *Adapter) Client() *Client { return a.client }

// SyncOrders pulls paid receipts created within the last daysBack days and
// upserts them as orders. All writes of one pass share a transaction; the
// last-sync timestamp is only advanced after a successful commit. Returns
// the number of newly created and updated orders.
func (a *Adapter) SyncOrders(ctx context.Context, daysBack int) (int, int, error) {
	a.logger.WithField("days_back", daysBack).Info("starting etsy order sync")

	shopID, err := a.client.ShopID(ctx)
	if err != nil {
		return 0, 0, err
	}

	var minCreated time.Time
	if daysBack > 0 {
		minCreated = time.Now().UTC().AddDate(0, 0, -daysBack)
	}
	receipts, err := a.client.GetReceipts(ctx, shopID, receiptPageLimit, minCreated)
	if err != nil {
		return 0, 0, err
	}

	var created, updated int
	err = a.tx.RunInTx(ctx, func(ts store.TxStores) error {
		created, updated = 0, 0
		for _, receipt := range receipts {
			wasNew, err := a.upsertReceipt(ctx, ts, receipt)
			if err != nil {
				return fmt.Errorf("receipt %d: %w", receipt.ReceiptID, err)
			}
			if wasNew {
				created++
			} else {
				updated++
			}
		}
		return nil
	})
	if err != nil {
		a.logger.WithError(err).Error("etsy order sync failed")
		return 0, 0, err
	}

	if err := a.settings.Set(ctx, settingrepo.KeyEtsyLastSync, time.Now().UTC().Format(time.RFC3339), false); err != nil {
		a.logger.WithError(err).Warn("could not record etsy last sync time")
	}
	a.logger.WithFields(logrus.Fields{"new": created, "updated": updated}).Info("etsy order sync complete")
	return created, updated, nil
}

func (a *Adapter) upsertReceipt(ctx context.Context, ts store.TxStores, receipt Receipt) (bool, error) {
	customerID, err := a.resolveCustomer(ctx, ts, receipt)
	if err != nil {
		return false, err
	}

	addr := &domain.Address{
		Name:     receipt.ShippingName,
		Address1: receipt.FirstLine,
		Address2: receipt.SecondLine,
		City:     receipt.City,
		State:    receipt.State,
		Zip:      receipt.Zip,
		Country:  receipt.CountryISO,
	}
	status := "pending"
	if receipt.WasShipped {
		status = "shipped"
	}

	platformOrderID := strconv.FormatInt(receipt.ReceiptID, 10)
	existing, err := ts.Orders.GetByPlatformID(ctx, domain.PlatformEtsy, platformOrderID)
	switch {
	case err == nil:
		if customerID != nil {
			existing.CustomerID = customerID
		}
		existing.Status = status
		existing.TotalAmount = receipt.TotalPrice.Decimal()
		existing.ShippingAddress = addr
		if receipt.WasShipped {
			existing.ShippingCarrier = strings.ToUpper(receipt.ShippingCarrier)
			existing.TrackingNumber = receipt.TrackingCode
			if existing.ShippingCarrier == "" || existing.TrackingNumber == "" {
				a.logger.WithField("order_id", existing.ID).Warn("shipped etsy order missing carrier or tracking")
			}
		}
		return false, ts.Orders.Update(ctx, *existing)

	case errors.Is(err, domain.ErrNotFound):
		order := domain.Order{
			Platform:        domain.PlatformEtsy,
			PlatformOrderID: platformOrderID,
			CustomerID:      customerID,
			OrderDate:       time.Unix(receipt.CreatedTimestamp, 0).UTC(),
			Status:          status,
			TotalAmount:     receipt.TotalPrice.Decimal(),
			ShippingAddress: addr,
		}
		if receipt.WasShipped {
			order.ShippingCarrier = strings.ToUpper(receipt.ShippingCarrier)
			order.TrackingNumber = receipt.TrackingCode
		}
		_, err := ts.Orders.Create(ctx, order)
		return true, err

	default:
		return false, err
	}
}

// resolveCustomer finds or creates the buyer by email. Receipts without a
// buyer email produce an unlinked order.
func (a *Adapter) resolveCustomer(ctx context.Context, ts store.TxStores, receipt Receipt) (*string, error) {
	if receipt.BuyerEmail == "" {
		return nil, nil
	}
	customer, err := ts.Customers.GetByEmail(ctx, receipt.BuyerEmail)
	if errors.Is(err, domain.ErrNotFound) {
		customer, err = ts.Customers.Create(ctx, domain.Customer{
			Email: receipt.BuyerEmail,
			Name:  strings.TrimSpace(receipt.BuyerFirstName + " " + receipt.BuyerLastName),
		})
	}
	if err != nil {
		return nil, err
	}
	return &customer.ID, nil
}
