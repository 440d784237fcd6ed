package domain

import "github.com/shopspring/decimal"

// Debt tracks the outstanding balance of a partially paid sale. It exists
// only while the balance is open; reaching zero deletes the record and the
// mirrored fields on the SoldItem keep the history.
type Debt struct {
	ID           string          `db:"id" json:"id"`
	SoldItemID   string          `db:"sold_item_id" json:"sold_item_id"`
	CustomerName string          `db:"customer_name" json:"customer_name"`
	ShopName     string          `db:"shop_name" json:"shop_name,omitempty"`
	City         string          `db:"city" json:"city"`
	Total        decimal.Decimal `db:"total" json:"total"`
	Paid         decimal.Decimal `db:"paid" json:"paid"`
	Remaining    decimal.Decimal `db:"remaining" json:"remaining"`
	Cleared      bool            `db:"cleared" json:"cleared"`
	CreatedAt    string          `db:"created_at" json:"created_at"`
	Items        []SaleItem      `db:"-" json:"items"`
	Payments     []DebtPayment   `db:"-" json:"payments"`
}

type DebtPayment struct {
	ID     string          `db:"id" json:"id"`
	DebtID string          `db:"debt_id" json:"debt_id"`
	Amount decimal.Decimal `db:"amount" json:"amount"`
	PaidAt string          `db:"paid_at" json:"paid_at"`
}
