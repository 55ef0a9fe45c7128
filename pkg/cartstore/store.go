package cartstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// Format is the purchasable edition selected for a cart entry.
type Format struct {
	ID         uuid.UUID        `json:"id"`
	Type       string           `json:"type"`
	Price      decimal.Decimal  `json:"price"`
	FinalPrice *decimal.Decimal `json:"finalPrice,omitempty"`
}

// Product is the locally held snapshot of a catalog entry.
type Product struct {
	ID             uuid.UUID        `json:"id"`
	Title          string           `json:"title"`
	SelectedFormat Format           `json:"selectedFormat"`
	Price          *decimal.Decimal `json:"price,omitempty"`
}

// Item is one local cart entry. At most one Item exists per Key.
type Item struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Key identifies a cart entry by product and selected format.
type Key struct {
	ProductID uuid.UUID
	FormatID  uuid.UUID
}

// KeyOf derives the composite key for a product.
func KeyOf(p Product) Key {
	return Key{ProductID: p.ID, FormatID: p.SelectedFormat.ID}
}

// ServerItem is a line item as reported by the cart service.
type ServerItem struct {
	ID         uuid.UUID
	ProductID  uuid.UUID
	FormatID   uuid.UUID
	Quantity   int
	Title      string
	FormatType string
	Price      decimal.Decimal
	FinalPrice *decimal.Decimal
}

// Service is the remote cart API the store reconciles against.
type Service interface {
	FetchCart(ctx context.Context) ([]ServerItem, error)
	CreateItem(ctx context.Context, item Item) (*ServerItem, error)
	UpdateItemQuantity(ctx context.Context, serverID uuid.UUID, quantity int) (*ServerItem, error)
	DeleteItem(ctx context.Context, serverID uuid.UUID) error
	ClearCart(ctx context.Context) error
}

// Store keeps the local cart, mirrors mutations to the server best-effort,
// and persists itself to a JSON file. Server failures on item mutations are
// reported through the returned error but never roll back the local change;
// Sync is the only operation whose failure leaves state fully untouched.
type Store struct {
	mu      sync.Mutex
	svc     Service
	path    string
	items   []Item
	mapping map[Key]uuid.UUID
	syncing bool
}

// New builds a store backed by the given service and persistence path.
// Call Load to pick up previously persisted state.
func New(svc Service, path string) *Store {
	return &Store{
		svc:     svc,
		path:    path,
		mapping: map[Key]uuid.UUID{},
	}
}

// AddItem adds quantity of the product to the cart. If the server already
// tracks the key the server quantity is updated to the local sum; otherwise a
// create call records the returned server id. The local entry is updated
// regardless of server outcome.
func (s *Store) AddItem(ctx context.Context, product Product, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := KeyOf(product)
	newQuantity := quantity
	if existing := s.find(key); existing != nil {
		newQuantity = existing.Quantity + quantity
	}

	var svcErr error
	if serverID, ok := s.mapping[key]; ok {
		if _, err := s.svc.UpdateItemQuantity(ctx, serverID, newQuantity); err != nil {
			svcErr = fmt.Errorf("update server cart item: %w", err)
		}
	} else {
		created, err := s.svc.CreateItem(ctx, Item{Product: product, Quantity: newQuantity})
		if err != nil {
			svcErr = fmt.Errorf("create server cart item: %w", err)
		} else if created != nil {
			s.mapping[key] = created.ID
		}
	}

	if existing := s.find(key); existing != nil {
		existing.Quantity = newQuantity
	} else {
		s.items = append(s.items, Item{Product: product, Quantity: newQuantity})
	}

	return multierr.Append(svcErr, s.save())
}

// RemoveItem drops the entry for the product. Unknown product ids are a
// no-op. The server delete is best-effort.
func (s *Store) RemoveItem(ctx context.Context, productID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(ctx, productID)
}

func (s *Store) removeLocked(ctx context.Context, productID uuid.UUID) error {
	idx := s.indexByProduct(productID)
	if idx < 0 {
		return nil
	}
	key := KeyOf(s.items[idx].Product)

	var svcErr error
	if serverID, ok := s.mapping[key]; ok {
		if err := s.svc.DeleteItem(ctx, serverID); err != nil {
			svcErr = fmt.Errorf("delete server cart item: %w", err)
		}
	}

	s.items = append(s.items[:idx], s.items[idx+1:]...)
	delete(s.mapping, key)

	return multierr.Append(svcErr, s.save())
}

// UpdateQuantity sets the quantity for the product's entry. A quantity of
// zero or less removes the entry. Unknown product ids are a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, productID uuid.UUID, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		return s.removeLocked(ctx, productID)
	}

	idx := s.indexByProduct(productID)
	if idx < 0 {
		return nil
	}
	key := KeyOf(s.items[idx].Product)

	var svcErr error
	if serverID, ok := s.mapping[key]; ok {
		if _, err := s.svc.UpdateItemQuantity(ctx, serverID, quantity); err != nil {
			svcErr = fmt.Errorf("update server cart item: %w", err)
		}
	}

	s.items[idx].Quantity = quantity

	return multierr.Append(svcErr, s.save())
}

// Clear empties the cart and the id mapping. The server clear is best-effort.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var svcErr error
	if err := s.svc.ClearCart(ctx); err != nil {
		svcErr = fmt.Errorf("clear server cart: %w", err)
	}

	s.items = nil
	s.mapping = map[Key]uuid.UUID{}

	return multierr.Append(svcErr, s.save())
}

// Sync reconciles the local cart against the server:
//
//  1. fetch the server cart and rebuild the id mapping from it
//  2. upload local entries whose key the server does not know yet
//  3. refetch and replace local state wholesale with the server's view
//
// Keys the server already tracks win over local quantities. Any server
// failure aborts the sync and leaves prior local state untouched.
func (s *Store) Sync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.syncing {
		return nil
	}
	s.syncing = true
	defer func() { s.syncing = false }()

	serverItems, err := s.svc.FetchCart(ctx)
	if err != nil {
		return fmt.Errorf("fetch server cart: %w", err)
	}

	serverKeys := map[Key]uuid.UUID{}
	for _, item := range serverItems {
		serverKeys[Key{ProductID: item.ProductID, FormatID: item.FormatID}] = item.ID
	}

	for _, local := range s.items {
		key := KeyOf(local.Product)
		if _, ok := serverKeys[key]; ok {
			continue
		}
		if _, err := s.svc.CreateItem(ctx, local); err != nil {
			return fmt.Errorf("upload local cart item: %w", err)
		}
	}

	merged, err := s.svc.FetchCart(ctx)
	if err != nil {
		return fmt.Errorf("refetch server cart: %w", err)
	}

	items := make([]Item, 0, len(merged))
	mapping := make(map[Key]uuid.UUID, len(merged))
	for _, item := range merged {
		items = append(items, fromServerItem(item))
		mapping[Key{ProductID: item.ProductID, FormatID: item.FormatID}] = item.ID
	}

	s.items = items
	s.mapping = mapping

	return s.save()
}

// TotalPrice sums unit price times quantity across the cart. The explicit
// product price wins over the format's final price, which wins over the
// format's list price.
func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(unitPrice(item.Product).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// TotalItems sums the quantities across the cart.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

// Items returns a copy of the local entries in insertion order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// ServerID reports the mapped server id for a key, if any.
func (s *Store) ServerID(key Key) (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.mapping[key]
	return id, ok
}

func (s *Store) find(key Key) *Item {
	for i := range s.items {
		if KeyOf(s.items[i].Product) == key {
			return &s.items[i]
		}
	}
	return nil
}

func (s *Store) indexByProduct(productID uuid.UUID) int {
	for i := range s.items {
		if s.items[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

func unitPrice(p Product) decimal.Decimal {
	if p.Price != nil {
		return *p.Price
	}
	if p.SelectedFormat.FinalPrice != nil {
		return *p.SelectedFormat.FinalPrice
	}
	return p.SelectedFormat.Price
}

func fromServerItem(item ServerItem) Item {
	return Item{
		Product: Product{
			ID:    item.ProductID,
			Title: item.Title,
			SelectedFormat: Format{
				ID:         item.FormatID,
				Type:       item.FormatType,
				Price:      item.Price,
				FinalPrice: item.FinalPrice,
			},
		},
		Quantity: item.Quantity,
	}
}
