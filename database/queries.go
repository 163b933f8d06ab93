package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrItemNotFound     = errors.New("item not found")
	ErrInsufficient     = errors.New("insufficient stock")
)

// One loyalty point per 100 rupees (10000 paise) of sale value.
const paisePerLoyaltyPoint = 10000

type DashboardSummary struct {
	Companies     int64 `json:"companies"`
	Customers     int64 `json:"customers"`
	Suppliers     int64 `json:"suppliers"`
	Items         int64 `json:"items"`
	Sales         int64 `json:"sales"`
	Revenue       int64 `json:"revenue"`
	StockValue    int64 `json:"stock_value"`
	LoyaltyPoints int64 `json:"loyalty_points"`
	LowStock      int64 `json:"low_stock_items"`
}

func (s *Store) Dashboard(ctx context.Context) (*DashboardSummary, error) {
	cli := s.conn(ctx)
	sum := &DashboardSummary{}

	counts := []struct {
		model any
		dest  *int64
	}{
		{&Company{}, &sum.Companies},
		{&Customer{}, &sum.Customers},
		{&Supplier{}, &sum.Suppliers},
		{&Item{}, &sum.Items},
		{&Sale{}, &sum.Sales},
	}
	for _, c := range counts {
		if err := cli.Model(c.model).Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("could not count records: %w", err)
		}
	}

	row := cli.Model(&Sale{}).Select("COALESCE(SUM(total_amount), 0)").Row()
	if err := row.Scan(&sum.Revenue); err != nil {
		return nil, fmt.Errorf("could not sum revenue: %w", err)
	}
	row = cli.Model(&Item{}).Select("COALESCE(SUM(unit_price * stock_qty), 0)").Row()
	if err := row.Scan(&sum.StockValue); err != nil {
		return nil, fmt.Errorf("could not sum stock value: %w", err)
	}
	row = cli.Model(&Customer{}).Select("COALESCE(SUM(loyalty_points), 0)").Row()
	if err := row.Scan(&sum.LoyaltyPoints); err != nil {
		return nil, fmt.Errorf("could not sum loyalty points: %w", err)
	}
	err := cli.Model(&Item{}).Where("stock_qty <= reorder_level").Count(&sum.LowStock).Error
	if err != nil {
		return nil, fmt.Errorf("could not count low stock items: %w", err)
	}

	return sum, nil
}

func (s *Store) ListCompanies(ctx context.Context) ([]Company, error) {
	var out []Company
	err := s.conn(ctx).Order("name").Find(&out).Error
	return out, err
}

func (s *Store) ListCustomers(ctx context.Context) ([]Customer, error) {
	var out []Customer
	err := s.conn(ctx).Order("name").Find(&out).Error
	return out, err
}

func (s *Store) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	var out []Supplier
	err := s.conn(ctx).Order("name").Find(&out).Error
	return out, err
}

func (s *Store) ListItems(ctx context.Context) ([]Item, error) {
	var out []Item
	err := s.conn(ctx).Order("sku").Find(&out).Error
	return out, err
}

func (s *Store) ListSales(ctx context.Context) ([]Sale, error) {
	var out []Sale
	err := s.conn(ctx).Preload("Lines").Order("created_at DESC").Find(&out).Error
	return out, err
}

func (s *Store) ListLedger(ctx context.Context) ([]LedgerEntry, error) {
	var out []LedgerEntry
	err := s.conn(ctx).Order("id DESC").Find(&out).Error
	return out, err
}

// SaleRequest is one requested line of a new sale.
type SaleRequest struct {
	ItemID string `json:"item_id" binding:"required"`
	Qty    int64  `json:"qty" binding:"required"`
}

// CreateSale records a sale: decrements stock, books the revenue into the
// ledger and credits the customer's loyalty balance.
func (s *Store) CreateSale(ctx context.Context, customerID string, lines []SaleRequest) (*Sale, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("sale must have at least one line")
	}

	sale := &Sale{
		ID:         uuid.NewString(),
		ReceiptNo:  receiptNo(),
		CustomerID: customerID,
	}

	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		var customer Customer
		if err := tx.First(&customer, "id = ?", customerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCustomerNotFound
			}
			return err
		}

		for _, line := range lines {
			var item Item
			if err := tx.First(&item, "id = ?", line.ItemID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: %s", ErrItemNotFound, line.ItemID)
				}
				return err
			}
			if line.Qty <= 0 {
				return fmt.Errorf("qty must be positive for item %s", item.SKU)
			}
			if item.StockQty < line.Qty {
				return fmt.Errorf("%w: %s has %d, requested %d",
					ErrInsufficient, item.SKU, item.StockQty, line.Qty)
			}

			lineTotal := item.UnitPrice * line.Qty
			sale.Lines = append(sale.Lines, SaleLine{
				SaleID:    sale.ID,
				ItemID:    item.ID,
				Qty:       line.Qty,
				UnitPrice: item.UnitPrice,
				LineTotal: lineTotal,
			})
			sale.TotalAmount += lineTotal

			err := tx.Model(&item).Update("stock_qty", item.StockQty-line.Qty).Error
			if err != nil {
				return err
			}
		}

		sale.PointsEarned = sale.TotalAmount / paisePerLoyaltyPoint

		if err := tx.Create(sale).Error; err != nil {
			return err
		}

		entries := []LedgerEntry{
			{Account: "cash", Debit: sale.TotalAmount, Narration: "sale " + sale.ReceiptNo},
			{Account: "sales", Credit: sale.TotalAmount, Narration: "sale " + sale.ReceiptNo},
		}
		if err := tx.Create(&entries).Error; err != nil {
			return err
		}

		return tx.Model(&customer).
			Update("loyalty_points", customer.LoyaltyPoints+sale.PointsEarned).Error
	})
	if err != nil {
		return nil, err
	}

	return sale, nil
}

func receiptNo() string {
	return "RCP-" + strings.ToUpper(uuid.NewString()[:8])
}
