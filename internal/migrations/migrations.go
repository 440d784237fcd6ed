package migrations

import (
	"log"

	"github.com/jmoiron/sqlx"
)

// Run creates the database schema required for the POS backend. Statements
// stick to the dialect shared by SQLite and PostgreSQL: TEXT ids generated
// in Go, TEXT decimal columns, timestamps written by the application.
func Run(db *sqlx.DB) {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL,
            role TEXT NOT NULL,
            created_at TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS products (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            category TEXT NOT NULL,
            description TEXT NOT NULL,
            price_primary TEXT NOT NULL,
            price_other TEXT NOT NULL,
            inventory INTEGER NOT NULL CHECK (inventory >= 0),
            sold INTEGER NOT NULL DEFAULT 0,
            batch_no TEXT NOT NULL,
            created_at TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS sold_items (
            id TEXT PRIMARY KEY,
            customer_name TEXT NOT NULL,
            shop_name TEXT,
            city TEXT NOT NULL,
            type TEXT NOT NULL,
            batch_no TEXT NOT NULL,
            total TEXT NOT NULL,
            paid TEXT NOT NULL,
            remaining TEXT NOT NULL,
            debt_cleared BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS sale_items (
            id TEXT PRIMARY KEY,
            sold_item_id TEXT NOT NULL REFERENCES sold_items(id),
            product_id TEXT NOT NULL,
            product_name TEXT NOT NULL,
            quantity INTEGER NOT NULL,
            unit_price TEXT NOT NULL,
            item_total TEXT NOT NULL,
            batch_no TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS debts (
            id TEXT PRIMARY KEY,
            sold_item_id TEXT NOT NULL REFERENCES sold_items(id),
            customer_name TEXT NOT NULL,
            shop_name TEXT,
            city TEXT NOT NULL,
            total TEXT NOT NULL,
            paid TEXT NOT NULL,
            remaining TEXT NOT NULL,
            cleared BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS debt_payments (
            id TEXT PRIMARY KEY,
            debt_id TEXT NOT NULL REFERENCES debts(id),
            amount TEXT NOT NULL,
            paid_at TEXT NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_sale_items_sold_item ON sale_items(sold_item_id);`,
		`CREATE INDEX IF NOT EXISTS idx_debts_sold_item ON debts(sold_item_id);`,
		`CREATE INDEX IF NOT EXISTS idx_debt_payments_debt ON debt_payments(debt_id);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
	}
}
