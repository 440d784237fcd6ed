package domain

import "github.com/shopspring/decimal"

const (
	SaleTypeFull    = "full"
	SaleTypePartial = "partial"
)

// SoldItem is one checkout transaction. Line items are immutable after
// creation; only paid/remaining/debt_cleared move, and only via the debt
// ledger.
type SoldItem struct {
	ID           string          `db:"id" json:"id"`
	CustomerName string          `db:"customer_name" json:"customer_name"`
	ShopName     string          `db:"shop_name" json:"shop_name,omitempty"`
	City         string          `db:"city" json:"city"`
	Type         string          `db:"type" json:"type"`
	BatchNo      string          `db:"batch_no" json:"batch_no"`
	Total        decimal.Decimal `db:"total" json:"total"`
	Paid         decimal.Decimal `db:"paid" json:"paid"`
	Remaining    decimal.Decimal `db:"remaining" json:"remaining"`
	DebtCleared  bool            `db:"debt_cleared" json:"debt_cleared"`
	CreatedAt    string          `db:"created_at" json:"created_at"`
	Items        []SaleItem      `db:"-" json:"items"`
}

type SaleItem struct {
	ID          string          `db:"id" json:"id"`
	SoldItemID  string          `db:"sold_item_id" json:"sold_item_id"`
	ProductID   string          `db:"product_id" json:"product_id"`
	ProductName string          `db:"product_name" json:"product_name"`
	Quantity    int64           `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
	ItemTotal   decimal.Decimal `db:"item_total" json:"item_total"`
	BatchNo     string          `db:"batch_no" json:"batch_no"`
}
