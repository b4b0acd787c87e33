package square

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"beira/internal/domain"
	settingrepo "beira/internal/repository/setting"
	"beira/internal/store"
)

// Adapter syncs the Square catalog and orders into the local store and
// pushes fulfillment updates back.
type Adapter struct {
	client   *Client
	settings settingrepo.Repository
	tx       store.TxRunner
	logger   *logrus.Logger
}

// New resolves the access token (the settings store wins over the static
// config) and builds an Adapter.
func New(ctx context.Context, cfg Config, settings settingrepo.Repository, tx store.TxRunner, logger *logrus.Logger) (*Adapter, error) {
	if token, err := settings.Get(ctx, settingrepo.KeySquareAccessToken); err == nil && token != "" {
		cfg.AccessToken = token
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("square access token: %w", domain.ErrNotConfigured)
	}
	return &Adapter{client: NewClient(cfg), settings: settings, tx: tx, logger: logger}, nil
}

// SyncCatalog pulls all catalog items and upserts them as products. Items
// without a variation carry no price and are skipped. Returns the number of
// newly created and updated products.
func (a *Adapter) SyncCatalog(ctx context.Context) (int, int, error) {
	a.logger.Info("starting square catalog sync")

	items, err := a.client.ListCatalogItems(ctx)
	if err != nil {
		return 0, 0, err
	}

	var created, updated int
	err = a.tx.RunInTx(ctx, func(ts store.TxStores) error {
		created, updated = 0, 0
		for _, item := range items {
			if item.ItemData == nil || len(item.ItemData.Variations) == 0 {
				continue
			}
			variation := item.ItemData.Variations[0]
			price := decimal.Zero
			var sku string
			if variation.ItemVariationData != nil {
				price = variation.ItemVariationData.PriceMoney.Decimal()
				sku = variation.ItemVariationData.SKU
			}

			existing, err := ts.Products.GetByPlatformID(ctx, domain.PlatformSquare, item.ID)
			switch {
			case err == nil:
				existing.Name = item.ItemData.Name
				existing.Description = item.ItemData.Description
				existing.Price = price
				existing.SKU = sku
				if err := ts.Products.Update(ctx, *existing); err != nil {
					return fmt.Errorf("item %s: %w", item.ID, err)
				}
				updated++
			case errors.Is(err, domain.ErrNotFound):
				_, err := ts.Products.Create(ctx, domain.Product{
					Platform:          domain.PlatformSquare,
					PlatformProductID: item.ID,
					Name:              item.ItemData.Name,
					Description:       item.ItemData.Description,
					Price:             price,
					SKU:               sku,
				})
				if err != nil {
					return fmt.Errorf("item %s: %w", item.ID, err)
				}
				created++
			default:
				return fmt.Errorf("item %s: %w", item.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		a.logger.WithError(err).Error("square catalog sync failed")
		return 0, 0, err
	}

	a.logger.WithFields(logrus.Fields{"new": created, "updated": updated}).Info("square catalog sync complete")
	return created, updated, nil
}

// SyncOrders pulls COMPLETED orders created within the last daysBack days
// and upserts them together with their line items. Customer profile lookups
// that fail degrade to an unlinked order instead of failing the pass.
func (a *Adapter) SyncOrders(ctx context.Context, daysBack int) (int, int, error) {
	a.logger.WithField("days_back", daysBack).Info("starting square order sync")

	locationID, err := a.client.LocationID(ctx)
	if err != nil {
		return 0, 0, err
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -daysBack)
	orders, err := a.client.SearchOrders(ctx, locationID, start, end)
	if err != nil {
		return 0, 0, err
	}

	// Resolve customer profiles before opening the transaction so no API
	// round trips happen while it is held.
	profiles := a.fetchCustomers(ctx, orders)

	var created, updated int
	err = a.tx.RunInTx(ctx, func(ts store.TxStores) error {
		created, updated = 0, 0
		for _, sqOrder := range orders {
			wasNew, err := a.upsertOrder(ctx, ts, sqOrder, profiles[sqOrder.CustomerID])
			if err != nil {
				return fmt.Errorf("order %s: %w", sqOrder.ID, err)
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
		a.logger.WithError(err).Error("square order sync failed")
		return 0, 0, err
	}

	if err := a.settings.Set(ctx, settingrepo.KeySquareLastSync, time.Now().UTC().Format(time.RFC3339), false); err != nil {
		a.logger.WithError(err).Warn("could not record square last sync time")
	}
	a.logger.WithFields(logrus.Fields{"new": created, "updated": updated}).Info("square order sync complete")
	return created, updated, nil
}

func (a *Adapter) fetchCustomers(ctx context.Context, orders []Order) map[string]*Customer {
	profiles := make(map[string]*Customer)
	for _, o := range orders {
		if o.CustomerID == "" {
			continue
		}
		if _, seen := profiles[o.CustomerID]; seen {
			continue
		}
		profile, err := a.client.RetrieveCustomer(ctx, o.CustomerID)
		if err != nil {
			a.logger.WithError(err).WithField("customer_id", o.CustomerID).Warn("could not fetch square customer")
			profiles[o.CustomerID] = nil
			continue
		}
		profiles[o.CustomerID] = profile
	}
	return profiles
}

func (a *Adapter) upsertOrder(ctx context.Context, ts store.TxStores, sqOrder Order, profile *Customer) (bool, error) {
	customerID, err := a.resolveCustomer(ctx, ts, profile)
	if err != nil {
		return false, err
	}
	lineItems, err := a.resolveLineItems(ctx, ts, sqOrder)
	if err != nil {
		return false, err
	}

	var (
		addr              *domain.Address
		fulfillmentStatus string
		carrier           string
		tracking          string
	)
	for _, f := range sqOrder.Fulfillments {
		if f.Type != "SHIPMENT" {
			continue
		}
		state := f.State
		if state == "" {
			state = "PROPOSED"
		}
		fulfillmentStatus = strings.ToLower(state)
		if f.ShipmentDetails != nil {
			addr = shipmentAddress(f.ShipmentDetails)
			carrier = f.ShipmentDetails.Carrier
			tracking = f.ShipmentDetails.TrackingNumber
			if carrier == "" || tracking == "" {
				a.logger.WithField("order_id", sqOrder.ID).Warn("incomplete shipping info for square order")
			}
		}
		break
	}

	status := strings.ToLower(sqOrder.State)
	if status == "" {
		status = "unknown"
	}
	total := sqOrder.TotalMoney.Decimal()

	existing, err := ts.Orders.GetByPlatformID(ctx, domain.PlatformSquare, sqOrder.ID)
	switch {
	case err == nil:
		existing.Status = status
		existing.FulfillmentStatus = fulfillmentStatus
		existing.TotalAmount = total
		if addr != nil {
			existing.ShippingAddress = addr
		}
		if customerID != nil {
			existing.CustomerID = customerID
		}
		if carrier != "" && tracking != "" {
			existing.ShippingCarrier = strings.ToUpper(carrier)
			existing.TrackingNumber = tracking
		}
		if err := ts.Orders.Update(ctx, *existing); err != nil {
			return false, err
		}
		return false, ts.Orders.ReplaceLineItems(ctx, existing.ID, lineItems)

	case errors.Is(err, domain.ErrNotFound):
		order := domain.Order{
			Platform:          domain.PlatformSquare,
			PlatformOrderID:   sqOrder.ID,
			CustomerID:        customerID,
			OrderDate:         sqOrder.CreatedAt.UTC(),
			Status:            status,
			FulfillmentStatus: fulfillmentStatus,
			TotalAmount:       total,
			ShippingAddress:   addr,
			TrackingNumber:    tracking,
		}
		if carrier != "" {
			order.ShippingCarrier = strings.ToUpper(carrier)
		}
		createdOrder, err := ts.Orders.Create(ctx, order)
		if err != nil {
			return false, err
		}
		return true, ts.Orders.ReplaceLineItems(ctx, createdOrder.ID, lineItems)

	default:
		return false, err
	}
}

func (a *Adapter) resolveCustomer(ctx context.Context, ts store.TxStores, profile *Customer) (*string, error) {
	if profile == nil || profile.EmailAddress == "" {
		return nil, nil
	}
	customer, err := ts.Customers.GetByEmail(ctx, profile.EmailAddress)
	if errors.Is(err, domain.ErrNotFound) {
		customer, err = ts.Customers.Create(ctx, domain.Customer{
			Email: profile.EmailAddress,
			Name:  strings.TrimSpace(profile.GivenName + " " + profile.FamilyName),
		})
	}
	if err != nil {
		return nil, err
	}
	return &customer.ID, nil
}

// resolveLineItems maps order lines onto locally synced products. Lines
// whose catalog object has never been synced are dropped.
func (a *Adapter) resolveLineItems(ctx context.Context, ts store.TxStores, sqOrder Order) ([]domain.OrderLineItem, error) {
	var items []domain.OrderLineItem
	for _, line := range sqOrder.LineItems {
		if line.CatalogObjectID == "" {
			continue
		}
		product, err := ts.Products.GetByPlatformID(ctx, domain.PlatformSquare, line.CatalogObjectID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, domain.OrderLineItem{
			ProductID: product.ID,
			Quantity:  parseQuantity(line.Quantity),
			Price:     line.BasePriceMoney.Decimal(),
		})
	}
	return items, nil
}

// UpdateFulfillmentStatus pushes a fulfillment state to the first SHIPMENT
// fulfillment of the remote order. It reports success as a bool and never
// returns an error; failures are logged and swallowed so a push problem
// cannot break the caller's flow.
func (a *Adapter) UpdateFulfillmentStatus(ctx context.Context, orderID, status string) bool {
	sqOrder, err := a.client.RetrieveOrder(ctx, orderID)
	if err != nil {
		a.logger.WithError(err).WithField("order_id", orderID).Error("could not fetch square order")
		return false
	}

	fulfillmentUID := ""
	for _, f := range sqOrder.Fulfillments {
		if f.Type == "SHIPMENT" {
			fulfillmentUID = f.UID
			break
		}
	}
	if fulfillmentUID == "" {
		a.logger.WithField("order_id", orderID).Error("no shipment fulfillment found for square order")
		return false
	}

	if err := a.client.UpdateOrderFulfillment(ctx, orderID, fulfillmentUID, status, sqOrder.Version); err != nil {
		a.logger.WithError(err).WithField("order_id", orderID).Error("could not update square fulfillment")
		return false
	}
	return true
}

func shipmentAddress(details *ShipmentDetails) *domain.Address {
	addr := &domain.Address{Country: "US"}
	if details.Recipient != nil {
		addr.Name = details.Recipient.DisplayName
		if a := details.Recipient.Address; a != nil {
			addr.Address1 = a.AddressLine1
			addr.Address2 = a.AddressLine2
			addr.City = a.Locality
			addr.State = a.AdministrativeDistrictLevel1
			addr.Zip = a.PostalCode
			if a.Country != "" {
				addr.Country = a.Country
			}
		}
	}
	return addr
}

func parseQuantity(raw string) int {
	if raw == "" {
		return 1
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
