// Package storetest provides an in-memory Store implementation for unit
// tests of the platform adapters and HTTP handlers. RunInTx snapshots all
// state before the callback and restores it when the callback errors, so
// rollback semantics can be asserted without a database.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"beira/internal/domain"
	custrepo "beira/internal/repository/customer"
	msgrepo "beira/internal/repository/message"
	orderrepo "beira/internal/repository/order"
	productrepo "beira/internal/repository/product"
	settingrepo "beira/internal/repository/setting"
	"beira/internal/store"
)

// Store is an in-memory stand-in for store.Store.
type Store struct {
	mu        sync.Mutex
	nextID    int
	customers map[string]domain.Customer
	products  map[string]domain.Product
	orders    map[string]domain.Order
	lineItems map[string][]domain.OrderLineItem
	messages  map[string][]domain.Message
	settings  map[string]domain.Setting
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		customers: make(map[string]domain.Customer),
		products:  make(map[string]domain.Product),
		orders:    make(map[string]domain.Order),
		lineItems: make(map[string][]domain.OrderLineItem),
		messages:  make(map[string][]domain.Message),
		settings:  make(map[string]domain.Setting),
	}
}

// RunInTx implements store.TxRunner with snapshot/restore semantics.
func (s *Store) RunInTx(_ context.Context, fn func(store.TxStores) error) error {
	snap := s.snapshot()
	err := fn(store.TxStores{
		Customers: s.Customers(),
		Products:  s.Products(),
		Orders:    s.Orders(),
	})
	if err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) Customers() custrepo.Repository   { return (*customerRepo)(s) }
func (s *Store) Products() productrepo.Repository { return (*productRepo)(s) }
func (s *Store) Orders() orderrepo.Repository     { return (*orderRepo)(s) }
func (s *Store) Messages() msgrepo.Repository     { return (*messageRepo)(s) }
func (s *Store) Settings() settingrepo.Repository { return (*settingRepo)(s) }

// OrderCount reports the number of stored orders.
func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// CustomerCount reports the number of stored customers.
func (s *Store) CustomerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.customers)
}

// LineItems returns the stored line items of an order.
func (s *Store) LineItems(orderID string) []domain.OrderLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneLineItems(s.lineItems[orderID])
}

// SettingValue returns the stored value for key, or "" when absent.
func (s *Store) SettingValue(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings[key].Value
}

// AddMessage seeds a message for handler tests.
func (s *Store) AddMessage(m domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.id("msg")
	s.messages[m.CustomerID] = append(s.messages[m.CustomerID], m)
}

type snapshotState struct {
	customers map[string]domain.Customer
	products  map[string]domain.Product
	orders    map[string]domain.Order
	lineItems map[string][]domain.OrderLineItem
	nextID    int
}

func (s *Store) snapshot() snapshotState {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshotState{
		customers: make(map[string]domain.Customer, len(s.customers)),
		products:  make(map[string]domain.Product, len(s.products)),
		orders:    make(map[string]domain.Order, len(s.orders)),
		lineItems: make(map[string][]domain.OrderLineItem, len(s.lineItems)),
		nextID:    s.nextID,
	}
	for k, v := range s.customers {
		snap.customers[k] = v
	}
	for k, v := range s.products {
		snap.products[k] = v
	}
	for k, v := range s.orders {
		snap.orders[k] = cloneOrder(v)
	}
	for k, v := range s.lineItems {
		snap.lineItems[k] = cloneLineItems(v)
	}
	return snap
}

func (s *Store) restore(snap snapshotState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers = snap.customers
	s.products = snap.products
	s.orders = snap.orders
	s.lineItems = snap.lineItems
	s.nextID = snap.nextID
}

func (s *Store) id(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func cloneOrder(o domain.Order) domain.Order {
	c := o
	if o.CustomerID != nil {
		v := *o.CustomerID
		c.CustomerID = &v
	}
	if o.ShippingAddress != nil {
		a := *o.ShippingAddress
		c.ShippingAddress = &a
	}
	if o.TrackingUpdatedAt != nil {
		t := *o.TrackingUpdatedAt
		c.TrackingUpdatedAt = &t
	}
	if o.EstimatedDeliveryDate != nil {
		t := *o.EstimatedDeliveryDate
		c.EstimatedDeliveryDate = &t
	}
	c.LineItems = cloneLineItems(o.LineItems)
	return c
}

func cloneLineItems(items []domain.OrderLineItem) []domain.OrderLineItem {
	if items == nil {
		return nil
	}
	out := make([]domain.OrderLineItem, len(items))
	copy(out, items)
	return out
}

type customerRepo Store

func (r *customerRepo) Create(_ context.Context, c domain.Customer) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(c.Email))
	if email != "" {
		for _, existing := range r.customers {
			if strings.ToLower(existing.Email) == email {
				return nil, domain.ErrAlreadyExists
			}
		}
	}
	c.Email = email
	c.ID = (*Store)(r).id("cust")
	c.CreatedAt = time.Now().UTC()
	r.customers[c.ID] = c
	clone := c
	return &clone, nil
}

func (r *customerRepo) GetByEmail(_ context.Context, email string) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := strings.ToLower(strings.TrimSpace(email))
	for _, c := range r.customers {
		if c.Email != "" && strings.ToLower(c.Email) == want {
			clone := c
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *customerRepo) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.customers[id]; ok {
		clone := c
		return &clone, nil
	}
	return nil, domain.ErrNotFound
}

func (r *customerRepo) List(_ context.Context, search string) ([]domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	needle := strings.ToLower(strings.TrimSpace(search))
	var result []domain.Customer
	for _, c := range r.customers {
		if needle == "" || strings.Contains(strings.ToLower(c.Name), needle) || strings.Contains(strings.ToLower(c.Email), needle) {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type productRepo Store

func (r *productRepo) Create(_ context.Context, p domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.products {
		if existing.Platform == p.Platform && existing.PlatformProductID == p.PlatformProductID {
			return nil, domain.ErrAlreadyExists
		}
	}
	p.ID = (*Store)(r).id("prod")
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.products[p.ID] = p
	clone := p
	return &clone, nil
}

func (r *productRepo) Update(_ context.Context, p domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.products[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	existing.Name = p.Name
	existing.Description = p.Description
	existing.Price = p.Price
	existing.SKU = p.SKU
	existing.UpdatedAt = time.Now().UTC()
	r.products[p.ID] = existing
	return nil
}

func (r *productRepo) GetByPlatformID(_ context.Context, platform domain.Platform, platformProductID string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Platform == platform && p.PlatformProductID == platformProductID {
			clone := p
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *productRepo) List(_ context.Context, platform domain.Platform) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Product
	for _, p := range r.products {
		if platform == "" || p.Platform == platform {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type orderRepo Store

func (r *orderRepo) Create(_ context.Context, o domain.Order) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.orders {
		if existing.Platform == o.Platform && existing.PlatformOrderID == o.PlatformOrderID {
			return nil, domain.ErrAlreadyExists
		}
	}
	o.ID = (*Store)(r).id("ord")
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	o.LineItems = nil
	r.orders[o.ID] = cloneOrder(o)
	clone := cloneOrder(o)
	return &clone, nil
}

func (r *orderRepo) Update(_ context.Context, o domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.orders[o.ID]
	if !ok {
		return domain.ErrNotFound
	}
	existing.CustomerID = o.CustomerID
	existing.Status = o.Status
	existing.FulfillmentStatus = o.FulfillmentStatus
	existing.TotalAmount = o.TotalAmount
	existing.ShippingAddress = o.ShippingAddress
	existing.ShippingCarrier = o.ShippingCarrier
	existing.TrackingNumber = o.TrackingNumber
	existing.UpdatedAt = time.Now().UTC()
	r.orders[o.ID] = cloneOrder(existing)
	return nil
}

func (r *orderRepo) GetByPlatformID(_ context.Context, platform domain.Platform, platformOrderID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.Platform == platform && o.PlatformOrderID == platformOrderID {
			clone := cloneOrder(o)
			clone.LineItems = cloneLineItems(r.lineItems[o.ID])
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *orderRepo) ReplaceLineItems(_ context.Context, orderID string, items []domain.OrderLineItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[orderID]; !ok {
		return domain.ErrNotFound
	}
	stored := make([]domain.OrderLineItem, 0, len(items))
	for _, item := range items {
		item.ID = (*Store)(r).id("li")
		item.OrderID = orderID
		item.CreatedAt = time.Now().UTC()
		stored = append(stored, item)
	}
	r.lineItems[orderID] = stored
	return nil
}

func (r *orderRepo) List(_ context.Context, f orderrepo.Filter) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Order
	for _, o := range r.orders {
		if f.Platform != "" && o.Platform != f.Platform {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		result = append(result, cloneOrder(o))
	}
	sortOrders(result)
	return result, nil
}

func (r *orderRepo) Recent(ctx context.Context, limit int) ([]domain.Order, error) {
	all, err := r.List(ctx, orderrepo.Filter{})
	if err != nil {
		return nil, err
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *orderRepo) ListByCustomer(_ context.Context, customerID string) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Order
	for _, o := range r.orders {
		if o.CustomerID != nil && *o.CustomerID == customerID {
			result = append(result, cloneOrder(o))
		}
	}
	sortOrders(result)
	return result, nil
}

func (r *orderRepo) SetFulfillmentStatus(_ context.Context, orderID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	o.FulfillmentStatus = status
	o.UpdatedAt = time.Now().UTC()
	r.orders[orderID] = o
	return nil
}

func sortOrders(orders []domain.Order) {
	sort.Slice(orders, func(i, j int) bool { return orders[i].OrderDate.After(orders[j].OrderDate) })
}

type messageRepo Store

func (r *messageRepo) ListByCustomer(_ context.Context, customerID string) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Message, len(r.messages[customerID]))
	copy(out, r.messages[customerID])
	return out, nil
}

type settingRepo Store

func (r *settingRepo) Get(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.settings[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return s.Value, nil
}

func (r *settingRepo) Set(_ context.Context, key, value string, encrypted bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings[key] = domain.Setting{Key: key, Value: value, IsEncrypted: encrypted, UpdatedAt: time.Now().UTC()}
	return nil
}

func (r *settingRepo) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.settings, key)
	return nil
}
