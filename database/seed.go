package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// SeedDemoData loads a small demo data set the dashboard endpoints serve.
// It is a no-op when the store already has companies.
func (s *Store) SeedDemoData(ctx context.Context) error {
	cli := s.conn(ctx)

	var count int64
	if err := cli.Model(&Company{}).Count(&count).Error; err != nil {
		return fmt.Errorf("could not check for existing data: %w", err)
	}
	if count > 0 {
		s.logger.Debug().Msg("store already seeded")
		return nil
	}

	s.logger.Info().Msg("seeding demo data")

	companies := []Company{
		{ID: uuid.NewString(), Name: "Pinak Traders", GSTIN: "27AAAPL1234C1ZV", City: "Pune"},
		{ID: uuid.NewString(), Name: "Shree Distributors", GSTIN: "24AABCS9876D1Z2", City: "Ahmedabad"},
	}
	customers := []Customer{
		{ID: uuid.NewString(), Name: "Asha Patel", Phone: "9800000001", Email: "asha@example.com", LoyaltyPoints: 120},
		{ID: uuid.NewString(), Name: "Ravi Kumar", Phone: "9800000002", Email: "ravi@example.com", LoyaltyPoints: 45},
		{ID: uuid.NewString(), Name: "Meera Shah", Phone: "9800000003", Email: "meera@example.com"},
	}
	suppliers := []Supplier{
		{ID: uuid.NewString(), Name: "National Wholesale", Phone: "9810000001", City: "Mumbai"},
		{ID: uuid.NewString(), Name: "Gujarat Textiles", Phone: "9810000002", City: "Surat"},
	}
	items := []Item{
		{ID: uuid.NewString(), SKU: "TEX-001", Name: "Cotton Shirt", UnitPrice: 79900, StockQty: 140, ReorderLevel: 20},
		{ID: uuid.NewString(), SKU: "TEX-002", Name: "Silk Saree", UnitPrice: 349900, StockQty: 35, ReorderLevel: 10},
		{ID: uuid.NewString(), SKU: "GRO-010", Name: "Basmati Rice 5kg", UnitPrice: 64900, StockQty: 80, ReorderLevel: 25},
		{ID: uuid.NewString(), SKU: "GRO-011", Name: "Sunflower Oil 1L", UnitPrice: 17900, StockQty: 12, ReorderLevel: 15},
	}

	for _, batch := range []any{&companies, &customers, &suppliers, &items} {
		if err := cli.Create(batch).Error; err != nil {
			return fmt.Errorf("could not seed demo data: %w", err)
		}
	}

	// A couple of sales so revenue and ledger reports are non-empty.
	for _, sale := range []struct {
		customer int
		item     int
		qty      int64
	}{
		{0, 0, 2},
		{1, 2, 1},
	} {
		_, err := s.CreateSale(ctx, customers[sale.customer].ID, []SaleRequest{
			{ItemID: items[sale.item].ID, Qty: sale.qty},
		})
		if err != nil {
			return fmt.Errorf("could not seed demo sales: %w", err)
		}
	}

	return nil
}
