package database

import (
	"time"

	"github.com/rs/zerolog"
)

// Monetary amounts are stored in paise (1/100 rupee) to keep arithmetic
// integral.

type Company struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Name      string    `json:"name"`
	GSTIN     string    `json:"gstin"`
	City      string    `json:"city"`
	CreatedAt time.Time `json:"created_at"`
}

type Customer struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	LoyaltyPoints int64     `json:"loyalty_points"`
	CreatedAt     time.Time `json:"created_at"`
}

type Supplier struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	City      string    `json:"city"`
	CreatedAt time.Time `json:"created_at"`
}

type Item struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	SKU          string    `gorm:"uniqueIndex" json:"sku"`
	Name         string    `json:"name"`
	UnitPrice    int64     `json:"unit_price"`
	StockQty     int64     `json:"stock_qty"`
	ReorderLevel int64     `json:"reorder_level"`
	CreatedAt    time.Time `json:"created_at"`
}

type Sale struct {
	ID           string     `gorm:"primaryKey" json:"id"`
	ReceiptNo    string     `gorm:"uniqueIndex" json:"receipt_no"`
	CustomerID   string     `json:"customer_id"`
	Customer     Customer   `gorm:"foreignKey:CustomerID" json:"-"`
	TotalAmount  int64      `json:"total_amount"`
	PointsEarned int64      `json:"points_earned"`
	Lines        []SaleLine `gorm:"foreignKey:SaleID" json:"lines,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type SaleLine struct {
	SaleID    string `gorm:"primaryKey" json:"-"`
	ItemID    string `gorm:"primaryKey" json:"item_id"`
	Item      Item   `gorm:"foreignKey:ItemID" json:"-"`
	Qty       int64  `json:"qty"`
	UnitPrice int64  `json:"unit_price"`
	LineTotal int64  `json:"line_total"`
}

type LedgerEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Account   string    `json:"account"`
	Debit     int64     `json:"debit"`
	Credit    int64     `json:"credit"`
	Narration string    `json:"narration"`
	CreatedAt time.Time `json:"created_at"`
}

func (s Sale) MarshalZerologObject(e *zerolog.Event) {
	e.Str("id", s.ID)
	e.Str("receipt_no", s.ReceiptNo)
	e.Str("customer", s.CustomerID)
	e.Int64("total_amount", s.TotalAmount)
	e.Int64("points_earned", s.PointsEarned)
}
