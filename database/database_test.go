package database_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ashidadhich33-source/PINAK-ERP-sub005/database"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *database.Store {
	t.Helper()
	store, err := database.Open(filepath.Join(t.TempDir(), "erp.db"), zerolog.New(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSeedDemoData(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SeedDemoData(ctx))
	// Seeding twice must not duplicate.
	require.NoError(t, store.SeedDemoData(ctx))

	sum, err := store.Dashboard(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, sum.Companies)
	assert.EqualValues(t, 3, sum.Customers)
	assert.EqualValues(t, 2, sum.Suppliers)
	assert.EqualValues(t, 4, sum.Items)
	assert.EqualValues(t, 2, sum.Sales)
	assert.Positive(t, sum.Revenue)
	assert.Positive(t, sum.StockValue)
	assert.EqualValues(t, 1, sum.LowStock)
}

func TestCreateSale(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SeedDemoData(ctx))

	customers, err := store.ListCustomers(ctx)
	require.NoError(t, err)
	items, err := store.ListItems(ctx)
	require.NoError(t, err)

	var item database.Item
	for _, it := range items {
		if it.SKU == "TEX-002" {
			item = it
		}
	}
	require.NotEmpty(t, item.ID)

	customer := customers[0]
	before := customer.LoyaltyPoints
	stockBefore := item.StockQty

	sale, err := store.CreateSale(ctx, customer.ID, []database.SaleRequest{
		{ItemID: item.ID, Qty: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, item.UnitPrice*2, sale.TotalAmount)
	// One point per 10000 paise.
	assert.Equal(t, sale.TotalAmount/10000, sale.PointsEarned)
	assert.Contains(t, sale.ReceiptNo, "RCP-")
	require.Len(t, sale.Lines, 1)

	items, err = store.ListItems(ctx)
	require.NoError(t, err)
	for _, it := range items {
		if it.ID == item.ID {
			assert.Equal(t, stockBefore-2, it.StockQty)
		}
	}

	customers, err = store.ListCustomers(ctx)
	require.NoError(t, err)
	for _, c := range customers {
		if c.ID == customer.ID {
			assert.Equal(t, before+sale.PointsEarned, c.LoyaltyPoints)
		}
	}

	ledger, err := store.ListLedger(ctx)
	require.NoError(t, err)
	var debits, credits int64
	for _, entry := range ledger {
		debits += entry.Debit
		credits += entry.Credit
	}
	assert.Equal(t, debits, credits)
}

func TestCreateSale_Errors(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SeedDemoData(ctx))

	customers, err := store.ListCustomers(ctx)
	require.NoError(t, err)
	items, err := store.ListItems(ctx)
	require.NoError(t, err)

	_, err = store.CreateSale(ctx, "no-such-customer", []database.SaleRequest{
		{ItemID: items[0].ID, Qty: 1},
	})
	assert.ErrorIs(t, err, database.ErrCustomerNotFound)

	_, err = store.CreateSale(ctx, customers[0].ID, []database.SaleRequest{
		{ItemID: "no-such-item", Qty: 1},
	})
	assert.ErrorIs(t, err, database.ErrItemNotFound)

	_, err = store.CreateSale(ctx, customers[0].ID, []database.SaleRequest{
		{ItemID: items[0].ID, Qty: 1_000_000},
	})
	assert.ErrorIs(t, err, database.ErrInsufficient)

	_, err = store.CreateSale(ctx, customers[0].ID, nil)
	assert.Error(t, err)
}

func TestSnapshotAndReopen(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SeedDemoData(ctx))

	dest := filepath.Join(t.TempDir(), "snap.db")
	require.NoError(t, store.Snapshot(ctx, dest))

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	// The snapshot is itself a usable store.
	snap, err := database.Open(dest, zerolog.New(io.Discard))
	require.NoError(t, err)
	defer snap.Close()

	sum, err := snap.Dashboard(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, sum.Companies)

	require.NoError(t, store.Close())
	require.NoError(t, store.Reopen())

	sum, err = store.Dashboard(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, sum.Companies)
}
