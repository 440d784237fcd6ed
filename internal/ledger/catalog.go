package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"medimart/m/domain"
)

type ProductInput struct {
	Name         string
	Category     string
	Description  string
	PricePrimary decimal.Decimal
	PriceOther   decimal.Decimal
	Inventory    int64
	BatchNo      string
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return validationf("name is required")
	}
	if strings.TrimSpace(in.Category) == "" {
		return validationf("category is required")
	}
	if strings.TrimSpace(in.BatchNo) == "" {
		return validationf("batch_no is required")
	}
	if in.PricePrimary.IsNegative() || in.PriceOther.IsNegative() {
		return validationf("prices cannot be negative")
	}
	if in.Inventory < 0 {
		return validationf("inventory cannot be negative")
	}
	return nil
}

func (l *Ledger) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p := domain.Product{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		Category:     strings.TrimSpace(in.Category),
		Description:  in.Description,
		PricePrimary: in.PricePrimary.Round(2),
		PriceOther:   in.PriceOther.Round(2),
		Inventory:    in.Inventory,
		Sold:         0,
		BatchNo:      strings.TrimSpace(in.BatchNo),
		CreatedAt:    Now(),
	}
	_, err := l.db.ExecContext(ctx, l.db.Rebind(`INSERT INTO products
        (id, name, category, description, price_primary, price_other, inventory, sold, batch_no, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.Name, p.Category, p.Description, p.PricePrimary, p.PriceOther, p.Inventory, p.Sold, p.BatchNo, p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return &p, nil
}

func (l *Ledger) UpdateProduct(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	res, err := l.db.ExecContext(ctx, l.db.Rebind(`UPDATE products
        SET name = ?, category = ?, description = ?, price_primary = ?, price_other = ?, inventory = ?, batch_no = ?
        WHERE id = ?`),
		strings.TrimSpace(in.Name), strings.TrimSpace(in.Category), in.Description,
		in.PricePrimary.Round(2), in.PriceOther.Round(2), in.Inventory, strings.TrimSpace(in.BatchNo), id)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, &NotFoundError{Resource: "product", ID: id}
	}
	return l.GetProduct(ctx, id)
}

func (l *Ledger) DeleteProduct(ctx context.Context, id string) error {
	res, err := l.db.ExecContext(ctx, l.db.Rebind(`DELETE FROM products WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Resource: "product", ID: id}
	}
	return nil
}

func (l *Ledger) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := l.db.GetContext(ctx, &p, l.db.Rebind(`SELECT * FROM products WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Resource: "product", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	return &p, nil
}

func (l *Ledger) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products := []domain.Product{}
	if err := l.db.SelectContext(ctx, &products, `SELECT * FROM products ORDER BY created_at DESC, id`); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// CheckAvailability reports whether the product can cover the requested
// quantity, along with its current stock.
func (l *Ledger) CheckAvailability(ctx context.Context, productID string, quantity int64) (bool, int64, error) {
	var inventory int64
	err := l.db.GetContext(ctx, &inventory, l.db.Rebind(`SELECT inventory FROM products WHERE id = ?`), productID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, 0, &NotFoundError{Resource: "product", ID: productID}
	}
	if err != nil {
		return false, 0, fmt.Errorf("check availability: %w", err)
	}
	return inventory >= quantity, inventory, nil
}

// reserveAndDecrement moves stock into a sale with a single guarded update,
// so two concurrent sales can never both decrement past zero. A zero row
// count after the stock was already validated means another sale won the
// race (or the product vanished).
func reserveAndDecrement(ctx context.Context, tx *sqlx.Tx, productID string, quantity int64) error {
	res, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE products
        SET inventory = inventory - ?, sold = sold + ?
        WHERE id = ? AND inventory >= ?`),
		quantity, quantity, productID, quantity)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if n == 0 {
		var exists bool
		if err := tx.GetContext(ctx, &exists, tx.Rebind(`SELECT EXISTS(SELECT 1 FROM products WHERE id = ?)`), productID); err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		if !exists {
			return &NotFoundError{Resource: "product", ID: productID}
		}
		return ErrConflict
	}
	return nil
}
