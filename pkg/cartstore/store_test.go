package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	mu          sync.Mutex
	items       []ServerItem
	failFetch   bool
	failCreate  bool
	failUpdate  bool
	failDelete  bool
	failClear   bool
	fetchCalls  int
	createCalls int
}

var errServerDown = errors.New("server down")

func (f *fakeService) FetchCart(context.Context) ([]ServerItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if f.failFetch {
		return nil, errServerDown
	}
	out := make([]ServerItem, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeService) CreateItem(_ context.Context, item Item) (*ServerItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.failCreate {
		return nil, errServerDown
	}
	created := ServerItem{
		ID:         uuid.New(),
		ProductID:  item.Product.ID,
		FormatID:   item.Product.SelectedFormat.ID,
		Quantity:   item.Quantity,
		Title:      item.Product.Title,
		FormatType: item.Product.SelectedFormat.Type,
		Price:      item.Product.SelectedFormat.Price,
		FinalPrice: item.Product.SelectedFormat.FinalPrice,
	}
	f.items = append(f.items, created)
	return &created, nil
}

func (f *fakeService) UpdateItemQuantity(_ context.Context, serverID uuid.UUID, quantity int) (*ServerItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate {
		return nil, errServerDown
	}
	for i := range f.items {
		if f.items[i].ID == serverID {
			f.items[i].Quantity = quantity
			item := f.items[i]
			return &item, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeService) DeleteItem(_ context.Context, serverID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete {
		return errServerDown
	}
	for i := range f.items {
		if f.items[i].ID == serverID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeService) ClearCart(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failClear {
		return errServerDown
	}
	f.items = nil
	return nil
}

func productFixture(title string) Product {
	return Product{
		ID:    uuid.New(),
		Title: title,
		SelectedFormat: Format{
			ID:    uuid.New(),
			Type:  "paperback",
			Price: decimal.NewFromFloat(19.99),
		},
	}
}

func newTestStore(t *testing.T, svc Service) *Store {
	t.Helper()
	return New(svc, filepath.Join(t.TempDir(), "cart.json"))
}

func TestAddItemSumsQuantitiesForSameKey(t *testing.T) {
	svc := &fakeService{}
	store := newTestStore(t, svc)
	product := productFixture("Dune")
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, product, 2))
	require.NoError(t, store.AddItem(ctx, product, 3))
	require.NoError(t, store.AddItem(ctx, product, 1))

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 6, items[0].Quantity)
	assert.Equal(t, 6, store.TotalItems())

	// the server saw one create followed by updates, never a second row
	assert.Equal(t, 1, svc.createCalls)
	require.Len(t, svc.items, 1)
	assert.Equal(t, 6, svc.items[0].Quantity)
}

func TestUpdateQuantityZeroOrNegativeRemoves(t *testing.T) {
	svc := &fakeService{}
	store := newTestStore(t, svc)
	ctx := context.Background()

	keep := productFixture("Kept")
	dropZero := productFixture("Dropped at zero")
	dropNegative := productFixture("Dropped at negative")
	require.NoError(t, store.AddItem(ctx, keep, 1))
	require.NoError(t, store.AddItem(ctx, dropZero, 2))
	require.NoError(t, store.AddItem(ctx, dropNegative, 2))

	require.NoError(t, store.UpdateQuantity(ctx, dropZero.ID, 0))
	require.NoError(t, store.UpdateQuantity(ctx, dropNegative.ID, -4))

	assert.Equal(t, 1, store.TotalItems())
	require.Len(t, store.Items(), 1)
	assert.Equal(t, keep.ID, store.Items()[0].Product.ID)

	_, ok := store.ServerID(KeyOf(dropZero))
	assert.False(t, ok, "mapping entry should be gone after removal")
}

func TestClearEmptiesItemsAndMapping(t *testing.T) {
	svc := &fakeService{}
	store := newTestStore(t, svc)
	ctx := context.Background()

	first := productFixture("First")
	second := productFixture("Second")
	require.NoError(t, store.AddItem(ctx, first, 1))
	require.NoError(t, store.AddItem(ctx, second, 2))

	require.NoError(t, store.Clear(ctx))

	assert.Empty(t, store.Items())
	assert.Equal(t, 0, store.TotalItems())
	assert.True(t, store.TotalPrice().IsZero())
	_, ok := store.ServerID(KeyOf(first))
	assert.False(t, ok)
	assert.Empty(t, svc.items)
}

func TestTotalPriceIsOrderIndependentAndZeroWhenEmpty(t *testing.T) {
	ctx := context.Background()

	cheap := productFixture("Cheap")
	cheap.SelectedFormat.Price = decimal.NewFromFloat(5.50)
	pricey := productFixture("Pricey")
	pricey.SelectedFormat.Price = decimal.NewFromFloat(42.00)
	discounted := productFixture("Discounted")
	final := decimal.NewFromFloat(10.00)
	discounted.SelectedFormat.FinalPrice = &final

	forward := newTestStore(t, &fakeService{})
	require.NoError(t, forward.AddItem(ctx, cheap, 2))
	require.NoError(t, forward.AddItem(ctx, pricey, 1))
	require.NoError(t, forward.AddItem(ctx, discounted, 3))

	reverse := newTestStore(t, &fakeService{})
	require.NoError(t, reverse.AddItem(ctx, discounted, 3))
	require.NoError(t, reverse.AddItem(ctx, pricey, 1))
	require.NoError(t, reverse.AddItem(ctx, cheap, 2))

	want := decimal.NewFromFloat(5.50).Mul(decimal.NewFromInt(2)).
		Add(decimal.NewFromFloat(42.00)).
		Add(decimal.NewFromFloat(10.00).Mul(decimal.NewFromInt(3)))
	assert.True(t, forward.TotalPrice().Equal(want), "forward total %s", forward.TotalPrice())
	assert.True(t, forward.TotalPrice().Equal(reverse.TotalPrice()))

	empty := newTestStore(t, &fakeService{})
	assert.True(t, empty.TotalPrice().IsZero())
}

func TestTotalPricePrefersExplicitThenFinalThenListPrice(t *testing.T) {
	ctx := context.Background()

	product := productFixture("Layered pricing")
	final := decimal.NewFromFloat(8.00)
	explicit := decimal.NewFromFloat(6.00)
	product.SelectedFormat.FinalPrice = &final
	product.Price = &explicit

	store := newTestStore(t, &fakeService{})
	require.NoError(t, store.AddItem(ctx, product, 1))
	assert.True(t, store.TotalPrice().Equal(explicit))

	product2 := productFixture("Final price only")
	final2 := decimal.NewFromFloat(8.00)
	product2.SelectedFormat.FinalPrice = &final2
	store2 := newTestStore(t, &fakeService{})
	require.NoError(t, store2.AddItem(ctx, product2, 1))
	assert.True(t, store2.TotalPrice().Equal(final2))

	product3 := productFixture("List price only")
	store3 := newTestStore(t, &fakeService{})
	require.NoError(t, store3.AddItem(ctx, product3, 1))
	assert.True(t, store3.TotalPrice().Equal(product3.SelectedFormat.Price))
}

func TestRemoveItemUnknownProductIsNoOp(t *testing.T) {
	svc := &fakeService{}
	store := newTestStore(t, svc)
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, productFixture("Present"), 1))
	require.NoError(t, store.RemoveItem(ctx, uuid.New()))
	assert.Equal(t, 1, store.TotalItems())
}

func TestAddItemDegradesToLocalOnServerFailure(t *testing.T) {
	svc := &fakeService{failCreate: true}
	store := newTestStore(t, svc)
	product := productFixture("Offline add")

	err := store.AddItem(context.Background(), product, 2)
	require.Error(t, err)

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	_, ok := store.ServerID(KeyOf(product))
	assert.False(t, ok, "no mapping without a server id")
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "cart.json")
	svc := &fakeService{}
	store := New(svc, path)
	ctx := context.Background()

	product := productFixture("Persisted")
	require.NoError(t, store.AddItem(ctx, product, 4))
	serverID, ok := store.ServerID(KeyOf(product))
	require.True(t, ok)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var state struct {
		Mapping []struct {
			Key string    `json:"key"`
			ID  uuid.UUID `json:"id"`
		} `json:"cartItemIdMapping"`
	}
	require.NoError(t, json.Unmarshal(raw, &state))
	require.Len(t, state.Mapping, 1)
	assert.Equal(t, product.ID.String()+"_"+product.SelectedFormat.ID.String(), state.Mapping[0].Key)

	reloaded := New(svc, path)
	require.NoError(t, reloaded.Load())
	require.Len(t, reloaded.Items(), 1)
	assert.Equal(t, 4, reloaded.Items()[0].Quantity)
	gotID, ok := reloaded.ServerID(KeyOf(product))
	require.True(t, ok)
	assert.Equal(t, serverID, gotID)
}

func TestLoadMissingFileLeavesStoreEmpty(t *testing.T) {
	store := New(&fakeService{}, filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, store.Load())
	assert.Empty(t, store.Items())
}
