package cartstore

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncUploadsLocalOnlyItems(t *testing.T) {
	svc := &fakeService{}
	store := newTestStore(t, svc)
	ctx := context.Background()

	// item added before authentication: local only, server never saw it
	product := productFixture("Offline pick")
	svc.failCreate = true
	require.Error(t, store.AddItem(ctx, product, 2))
	svc.failCreate = false
	createsBefore := svc.createCalls

	require.NoError(t, store.Sync(ctx))

	require.Len(t, svc.items, 1)
	assert.Equal(t, product.ID, svc.items[0].ProductID)
	assert.Equal(t, 2, svc.items[0].Quantity)

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)

	gotID, ok := store.ServerID(KeyOf(product))
	require.True(t, ok)
	assert.Equal(t, svc.items[0].ID, gotID)
	assert.Equal(t, createsBefore+1, svc.createCalls)
}

func TestSyncServerWinsForKnownKeys(t *testing.T) {
	svc := &fakeService{}
	ctx := context.Background()

	product := productFixture("Contested")
	serverItem := ServerItem{
		ID:         uuid.New(),
		ProductID:  product.ID,
		FormatID:   product.SelectedFormat.ID,
		Quantity:   3,
		Title:      product.Title,
		FormatType: product.SelectedFormat.Type,
		Price:      product.SelectedFormat.Price,
	}
	svc.items = []ServerItem{serverItem}

	store := newTestStore(t, svc)
	// local quantity diverged while offline
	svc.failUpdate = true
	svc.failCreate = true
	require.Error(t, store.AddItem(ctx, product, 2))
	svc.failUpdate = false
	svc.failCreate = false
	createsBefore := svc.createCalls

	require.NoError(t, store.Sync(ctx))

	// the key was already known server-side, so nothing was re-uploaded
	assert.Equal(t, createsBefore, svc.createCalls)
	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity, "server quantity wins")
	gotID, ok := store.ServerID(KeyOf(product))
	require.True(t, ok)
	assert.Equal(t, serverItem.ID, gotID)
}

func TestSyncIsIdempotent(t *testing.T) {
	svc := &fakeService{}
	store := newTestStore(t, svc)
	ctx := context.Background()

	require.NoError(t, store.AddItem(ctx, productFixture("Stable"), 2))
	require.NoError(t, store.Sync(ctx))

	itemsAfterFirst := store.Items()
	createsAfterFirst := svc.createCalls

	require.NoError(t, store.Sync(ctx))

	assert.Equal(t, createsAfterFirst, svc.createCalls, "second sync uploads nothing")
	assert.Equal(t, itemsAfterFirst, store.Items())
	assert.Equal(t, 2, store.TotalItems())
}

func TestSyncFailureLeavesStateUntouched(t *testing.T) {
	svc := &fakeService{}
	store := newTestStore(t, svc)
	ctx := context.Background()

	product := productFixture("Sticky")
	require.NoError(t, store.AddItem(ctx, product, 5))
	before := store.Items()

	svc.failFetch = true
	require.Error(t, store.Sync(ctx))
	assert.Equal(t, before, store.Items())

	svc.failFetch = false
	svc.failCreate = true
	// force a local-only entry so the upload step runs
	orphan := productFixture("Orphan")
	require.Error(t, store.AddItem(ctx, orphan, 1))
	beforeUploadFailure := store.Items()

	require.Error(t, store.Sync(ctx))
	assert.Equal(t, beforeUploadFailure, store.Items())
}

func TestSyncReplacesLocalWithServerView(t *testing.T) {
	svc := &fakeService{}
	ctx := context.Background()

	final := decimal.NewFromFloat(12.50)
	remote := ServerItem{
		ID:         uuid.New(),
		ProductID:  uuid.New(),
		FormatID:   uuid.New(),
		Quantity:   1,
		Title:      "Added from another session",
		FormatType: "ebook",
		Price:      decimal.NewFromFloat(15.00),
		FinalPrice: &final,
	}
	svc.items = []ServerItem{remote}

	store := newTestStore(t, svc)
	require.NoError(t, store.Sync(ctx))

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, remote.Title, items[0].Product.Title)
	assert.Equal(t, "ebook", items[0].Product.SelectedFormat.Type)
	require.NotNil(t, items[0].Product.SelectedFormat.FinalPrice)
	assert.True(t, store.TotalPrice().Equal(final))
}
