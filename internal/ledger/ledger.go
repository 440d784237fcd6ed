// Package ledger implements the sale/debt/inventory workflow: recording
// sales against catalog stock, tracking partial-payment debts, and keeping
// product inventory, sold items and debts mutually consistent.
package ledger

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// Ledger runs the transactional core over the SQL store.
type Ledger struct {
	db          *sqlx.DB
	primaryCity string
}

func New(db *sqlx.DB, primaryCity string) *Ledger {
	return &Ledger{db: db, primaryCity: primaryCity}
}

// Fixed-width UTC so lexicographic and chronological order agree.
const timeFormat = "2006-01-02T15:04:05.000Z"

// Now returns the timestamp string written to every table.
func Now() string {
	return time.Now().UTC().Format(timeFormat)
}

// Balances within this tolerance of zero count as fully settled.
var settleTolerance = decimal.New(1, -2)

// ReportTotals are aggregate sums over a listed set, not the whole store.
type ReportTotals struct {
	Total       decimal.Decimal `json:"total"`
	Collected   decimal.Decimal `json:"collected"`
	Outstanding decimal.Decimal `json:"outstanding"`
}
