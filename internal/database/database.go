package database

import (
	"log"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Connect opens the database behind the DSN. postgres:// DSNs use pgx;
// anything else is treated as a SQLite path.
func Connect(dsn string) *sqlx.DB {
	driver := "sqlite"
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		driver = "pgx"
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if driver == "sqlite" {
		// modernc sqlite handles one writer at a time.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
	}
	return db
}
