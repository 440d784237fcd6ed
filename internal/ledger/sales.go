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

type SaleLine struct {
	ProductID string
	Quantity  int64
}

type SaleInput struct {
	Items        []SaleLine
	Type         string
	PaidAmount   decimal.Decimal
	CustomerName string
	ShopName     string
	City         string
}

// SalesReport is the sales listing plus aggregate sums over the listed set.
type SalesReport struct {
	SoldItems []domain.SoldItem `json:"sold_items"`
	Totals    ReportTotals      `json:"totals"`
}

// RecordSale validates the whole cart against catalog stock, then applies
// the inventory decrements, the sold-item record and any debt as one
// transaction. A failure on any line leaves nothing applied.
func (l *Ledger) RecordSale(ctx context.Context, in SaleInput) (*domain.SoldItem, *domain.Debt, error) {
	if len(in.Items) == 0 {
		return nil, nil, validationf("at least one sale item is required")
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return nil, nil, validationf("customer_name is required")
	}
	if in.Type != domain.SaleTypeFull && in.Type != domain.SaleTypePartial {
		return nil, nil, validationf("type must be %q or %q", domain.SaleTypeFull, domain.SaleTypePartial)
	}
	for _, line := range in.Items {
		if line.Quantity <= 0 {
			return nil, nil, validationf("quantity must be positive for product %s", line.ProductID)
		}
	}
	city := strings.TrimSpace(in.City)
	if city == "" {
		city = l.primaryCity
	}

	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin sale: %w", err)
	}
	defer tx.Rollback()

	// Validate every line before touching inventory. Carts may repeat a
	// product, so the stock check runs against the accumulated quantity.
	required := make(map[string]int64, len(in.Items))
	order := make([]string, 0, len(in.Items))
	total := decimal.Zero
	items := make([]domain.SaleItem, 0, len(in.Items))
	for _, line := range in.Items {
		var p domain.Product
		err := tx.GetContext(ctx, &p, tx.Rebind(`SELECT * FROM products WHERE id = ?`), line.ProductID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, &NotFoundError{Resource: "product", ID: line.ProductID}
		}
		if err != nil {
			return nil, nil, fmt.Errorf("load product %s: %w", line.ProductID, err)
		}
		if _, seen := required[p.ID]; !seen {
			order = append(order, p.ID)
		}
		required[p.ID] += line.Quantity
		if p.Inventory < required[p.ID] {
			return nil, nil, &InsufficientStockError{ProductName: p.Name, Requested: required[p.ID], Available: p.Inventory}
		}

		unit := p.UnitPrice(city, l.primaryCity)
		lineTotal := unit.Mul(decimal.NewFromInt(line.Quantity)).Round(2)
		total = total.Add(lineTotal)
		items = append(items, domain.SaleItem{
			ID:          uuid.NewString(),
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    line.Quantity,
			UnitPrice:   unit,
			ItemTotal:   lineTotal,
			BatchNo:     p.BatchNo,
		})
	}
	total = total.Round(2)

	paid := total
	if in.Type == domain.SaleTypePartial {
		paid = in.PaidAmount.Round(2)
		if paid.IsNegative() {
			return nil, nil, validationf("paid_amount cannot be negative")
		}
		if paid.GreaterThan(total) {
			return nil, nil, validationf("paid_amount %s exceeds order total %s", paid, total)
		}
	}
	remaining := total.Sub(paid).Round(2)

	for _, productID := range order {
		if err := reserveAndDecrement(ctx, tx, productID, required[productID]); err != nil {
			return nil, nil, err
		}
	}

	now := Now()
	sold := &domain.SoldItem{
		ID:           uuid.NewString(),
		CustomerName: strings.TrimSpace(in.CustomerName),
		ShopName:     strings.TrimSpace(in.ShopName),
		City:         city,
		Type:         in.Type,
		BatchNo:      batchSummary(items),
		Total:        total,
		Paid:         paid,
		Remaining:    remaining,
		DebtCleared:  remaining.IsZero(),
		CreatedAt:    now,
	}
	_, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO sold_items
        (id, customer_name, shop_name, city, type, batch_no, total, paid, remaining, debt_cleared, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		sold.ID, sold.CustomerName, sold.ShopName, sold.City, sold.Type, sold.BatchNo,
		sold.Total, sold.Paid, sold.Remaining, sold.DebtCleared, sold.CreatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("insert sold item: %w", err)
	}

	for i := range items {
		items[i].SoldItemID = sold.ID
		_, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO sale_items
            (id, sold_item_id, product_id, product_name, quantity, unit_price, item_total, batch_no)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
			items[i].ID, items[i].SoldItemID, items[i].ProductID, items[i].ProductName,
			items[i].Quantity, items[i].UnitPrice, items[i].ItemTotal, items[i].BatchNo)
		if err != nil {
			return nil, nil, fmt.Errorf("insert sale item: %w", err)
		}
	}
	sold.Items = items

	var debt *domain.Debt
	if in.Type == domain.SaleTypePartial && remaining.IsPositive() {
		debt = &domain.Debt{
			ID:           uuid.NewString(),
			SoldItemID:   sold.ID,
			CustomerName: sold.CustomerName,
			ShopName:     sold.ShopName,
			City:         sold.City,
			Total:        total,
			Paid:         paid,
			Remaining:    remaining,
			Cleared:      false,
			CreatedAt:    now,
			Items:        items,
			Payments:     []domain.DebtPayment{},
		}
		_, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO debts
            (id, sold_item_id, customer_name, shop_name, city, total, paid, remaining, cleared, created_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			debt.ID, debt.SoldItemID, debt.CustomerName, debt.ShopName, debt.City,
			debt.Total, debt.Paid, debt.Remaining, debt.Cleared, debt.CreatedAt)
		if err != nil {
			return nil, nil, fmt.Errorf("insert debt: %w", err)
		}
		if paid.IsPositive() {
			posting := domain.DebtPayment{ID: uuid.NewString(), DebtID: debt.ID, Amount: paid, PaidAt: now}
			_, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO debt_payments (id, debt_id, amount, paid_at) VALUES (?, ?, ?, ?)`),
				posting.ID, posting.DebtID, posting.Amount, posting.PaidAt)
			if err != nil {
				return nil, nil, fmt.Errorf("insert debt payment: %w", err)
			}
			debt.Payments = append(debt.Payments, posting)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit sale: %w", err)
	}
	return sold, debt, nil
}

func batchSummary(items []domain.SaleItem) string {
	seen := make(map[string]bool, len(items))
	batches := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item.BatchNo] {
			seen[item.BatchNo] = true
			batches = append(batches, item.BatchNo)
		}
	}
	return strings.Join(batches, ",")
}

// ListSales returns all sold items, newest first, with their line snapshots
// and aggregate sums over the listing.
func (l *Ledger) ListSales(ctx context.Context) (*SalesReport, error) {
	soldItems := []domain.SoldItem{}
	if err := l.db.SelectContext(ctx, &soldItems, `SELECT * FROM sold_items ORDER BY created_at DESC, id`); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	report := &SalesReport{SoldItems: soldItems}
	if len(soldItems) == 0 {
		return report, nil
	}

	ids := make([]string, len(soldItems))
	for i, s := range soldItems {
		ids[i] = s.ID
	}
	itemsBySale, err := l.loadSaleItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range report.SoldItems {
		s := &report.SoldItems[i]
		s.Items = itemsBySale[s.ID]
		if s.Items == nil {
			s.Items = []domain.SaleItem{}
		}
		report.Totals.Total = report.Totals.Total.Add(s.Total)
		report.Totals.Collected = report.Totals.Collected.Add(s.Paid)
		report.Totals.Outstanding = report.Totals.Outstanding.Add(s.Remaining)
	}
	return report, nil
}

// DeleteSale removes a sold item with its line snapshots and any open debt.
// Inventory is never restocked on deletion.
func (l *Ledger) DeleteSale(ctx context.Context, id string) error {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete sale: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.GetContext(ctx, &exists, tx.Rebind(`SELECT EXISTS(SELECT 1 FROM sold_items WHERE id = ?)`), id); err != nil {
		return fmt.Errorf("load sold item: %w", err)
	}
	if !exists {
		return &NotFoundError{Resource: "sold item", ID: id}
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM debt_payments WHERE debt_id IN (SELECT id FROM debts WHERE sold_item_id = ?)`), id); err != nil {
		return fmt.Errorf("delete debt payments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM debts WHERE sold_item_id = ?`), id); err != nil {
		return fmt.Errorf("delete debt: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM sale_items WHERE sold_item_id = ?`), id); err != nil {
		return fmt.Errorf("delete sale items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM sold_items WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete sold item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete sale: %w", err)
	}
	return nil
}

func (l *Ledger) loadSaleItems(ctx context.Context, soldItemIDs []string) (map[string][]domain.SaleItem, error) {
	if len(soldItemIDs) == 0 {
		return map[string][]domain.SaleItem{}, nil
	}
	query, args, err := sqlx.In(`SELECT * FROM sale_items WHERE sold_item_id IN (?)`, soldItemIDs)
	if err != nil {
		return nil, fmt.Errorf("prepare sale items query: %w", err)
	}
	var rows []domain.SaleItem
	if err := l.db.SelectContext(ctx, &rows, l.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load sale items: %w", err)
	}
	grouped := make(map[string][]domain.SaleItem)
	for _, row := range rows {
		grouped[row.SoldItemID] = append(grouped[row.SoldItemID], row)
	}
	return grouped, nil
}
