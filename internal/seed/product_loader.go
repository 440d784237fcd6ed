package seed

import (
	"encoding/csv"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"medimart/m/internal/ledger"
)

// LoadProducts ingests the CSV into the products table, skipping rows whose
// name and batch number are already present. Expected columns:
// name, category, description, price_primary, price_other, inventory, batch_no.
func LoadProducts(db *sqlx.DB, csvPath string) {
	file, err := os.Open(csvPath)
	if err != nil {
		log.Printf("unable to load product catalog %s: %v", csvPath, err)
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	// Skip header
	if _, err := reader.Read(); err != nil {
		log.Printf("unable to read product header: %v", err)
		return
	}

	tx, err := db.Beginx()
	if err != nil {
		log.Printf("unable to start product transaction: %v", err)
		return
	}

	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("unable to read product row: %v", err)
			continue
		}
		if len(record) < 7 {
			continue
		}
		name := strings.TrimSpace(record[0])
		category := strings.TrimSpace(record[1])
		description := strings.TrimSpace(record[2])
		batchNo := strings.TrimSpace(record[6])

		if name == "" || batchNo == "" {
			continue
		}
		pricePrimary, err := decimal.NewFromString(strings.TrimSpace(record[3]))
		if err != nil {
			log.Printf("skipping product %s: bad price %q", name, record[3])
			continue
		}
		priceOther, err := decimal.NewFromString(strings.TrimSpace(record[4]))
		if err != nil {
			log.Printf("skipping product %s: bad price %q", name, record[4])
			continue
		}
		inventory, err := strconv.ParseInt(strings.TrimSpace(record[5]), 10, 64)
		if err != nil || inventory < 0 {
			log.Printf("skipping product %s: bad inventory %q", name, record[5])
			continue
		}

		var exists bool
		if err := tx.Get(&exists, tx.Rebind(`SELECT EXISTS(SELECT 1 FROM products WHERE name = ? AND batch_no = ?)`), name, batchNo); err != nil {
			log.Printf("unable to check product %s: %v", name, err)
			continue
		}
		if exists {
			continue
		}

		_, err = tx.Exec(tx.Rebind(`INSERT INTO products (id, name, category, description, price_primary, price_other, inventory, sold, batch_no, created_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`),
			uuid.NewString(), name, category, description, pricePrimary, priceOther, inventory, batchNo, ledger.Now())
		if err != nil {
			log.Printf("unable to insert product %s: %v", name, err)
		} else {
			rows++
		}
	}

	if err := tx.Commit(); err != nil {
		log.Printf("unable to commit product seed: %v", err)
	} else if rows > 0 {
		log.Printf("seeded product catalog with %d rows", rows)
	}
}
