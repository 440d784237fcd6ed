package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"medimart/m/domain"
)

// PaymentResult is the outcome of a payment posting. Debt is nil when the
// balance reached zero and the record was removed.
type PaymentResult struct {
	Debt     *domain.Debt     `json:"debt"`
	SoldItem *domain.SoldItem `json:"sold_item"`
	Closed   bool             `json:"closed"`
}

// DebtsReport is the debt listing plus aggregate sums over the listed set.
type DebtsReport struct {
	Debts  []domain.Debt `json:"debts"`
	Totals ReportTotals  `json:"totals"`
}

// PostPayment applies a payment to a debt and mirrors the new balance onto
// the owning sold item in the same transaction. Overpayments are capped to
// the remaining balance; a balance within the settle tolerance closes the
// debt, marks the sale cleared and deletes the debt record.
func (l *Ledger) PostPayment(ctx context.Context, debtID string, amount decimal.Decimal) (*PaymentResult, error) {
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return nil, validationf("payment must be positive")
	}

	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin payment: %w", err)
	}
	defer tx.Rollback()

	var d domain.Debt
	err = tx.GetContext(ctx, &d, tx.Rebind(`SELECT * FROM debts WHERE id = ?`), debtID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Resource: "debt", ID: debtID}
	}
	if err != nil {
		return nil, fmt.Errorf("load debt: %w", err)
	}

	capped := amount
	if capped.GreaterThan(d.Remaining) {
		capped = d.Remaining
	}
	newPaid := d.Paid.Add(capped).Round(2)
	newRemaining := d.Total.Sub(newPaid).Round(2)
	closed := newRemaining.LessThanOrEqual(settleTolerance)
	if closed {
		newRemaining = decimal.Zero
		newPaid = d.Total
	}

	// Guard on the balance that was read, so two concurrent payments on the
	// same debt cannot both apply against the old value.
	res, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE debts SET paid = ?, remaining = ? WHERE id = ? AND paid = ?`),
		newPaid, newRemaining, debtID, d.Paid)
	if err != nil {
		return nil, fmt.Errorf("update debt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrConflict
	}

	posting := domain.DebtPayment{ID: uuid.NewString(), DebtID: debtID, Amount: capped, PaidAt: Now()}
	_, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO debt_payments (id, debt_id, amount, paid_at) VALUES (?, ?, ?, ?)`),
		posting.ID, posting.DebtID, posting.Amount, posting.PaidAt)
	if err != nil {
		return nil, fmt.Errorf("insert debt payment: %w", err)
	}

	if closed {
		_, err = tx.ExecContext(ctx, tx.Rebind(`UPDATE sold_items SET paid = ?, remaining = ?, debt_cleared = ? WHERE id = ?`),
			newPaid, newRemaining, true, d.SoldItemID)
		if err != nil {
			return nil, fmt.Errorf("update sold item: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM debt_payments WHERE debt_id = ?`), debtID); err != nil {
			return nil, fmt.Errorf("remove debt payments: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM debts WHERE id = ?`), debtID); err != nil {
			return nil, fmt.Errorf("remove debt: %w", err)
		}
	} else {
		_, err = tx.ExecContext(ctx, tx.Rebind(`UPDATE sold_items SET paid = ?, remaining = ? WHERE id = ?`),
			newPaid, newRemaining, d.SoldItemID)
		if err != nil {
			return nil, fmt.Errorf("update sold item: %w", err)
		}
	}

	var sold domain.SoldItem
	if err := tx.GetContext(ctx, &sold, tx.Rebind(`SELECT * FROM sold_items WHERE id = ?`), d.SoldItemID); err != nil {
		return nil, fmt.Errorf("load sold item: %w", err)
	}

	result := &PaymentResult{SoldItem: &sold, Closed: closed}
	if !closed {
		d.Paid = newPaid
		d.Remaining = newRemaining
		payments := []domain.DebtPayment{}
		if err := tx.SelectContext(ctx, &payments, tx.Rebind(`SELECT * FROM debt_payments WHERE debt_id = ? ORDER BY paid_at, id`), debtID); err != nil {
			return nil, fmt.Errorf("load debt payments: %w", err)
		}
		d.Payments = payments
		result.Debt = &d
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit payment: %w", err)
	}
	return result, nil
}

// RemoveDebt is the administrative override: it deletes the debt regardless
// of its balance. The sold item keeps its recorded paid/remaining amounts
// and is not marked cleared; forgiving a debt is not paying it off.
func (l *Ledger) RemoveDebt(ctx context.Context, debtID string) error {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin remove debt: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.GetContext(ctx, &exists, tx.Rebind(`SELECT EXISTS(SELECT 1 FROM debts WHERE id = ?)`), debtID); err != nil {
		return fmt.Errorf("load debt: %w", err)
	}
	if !exists {
		return &NotFoundError{Resource: "debt", ID: debtID}
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM debt_payments WHERE debt_id = ?`), debtID); err != nil {
		return fmt.Errorf("remove debt payments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM debts WHERE id = ?`), debtID); err != nil {
		return fmt.Errorf("remove debt: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit remove debt: %w", err)
	}
	return nil
}

// GetDebtBySoldItem is the reverse lookup from a sale to its open debt.
func (l *Ledger) GetDebtBySoldItem(ctx context.Context, soldItemID string) (*domain.Debt, error) {
	var d domain.Debt
	err := l.db.GetContext(ctx, &d, l.db.Rebind(`SELECT * FROM debts WHERE sold_item_id = ?`), soldItemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Resource: "debt", ID: soldItemID}
	}
	if err != nil {
		return nil, fmt.Errorf("load debt: %w", err)
	}
	return &d, nil
}

// ListDebts returns all open debts, newest first, with the line snapshots of
// their sale, their payment history and aggregate sums over the listing.
func (l *Ledger) ListDebts(ctx context.Context) (*DebtsReport, error) {
	debts := []domain.Debt{}
	if err := l.db.SelectContext(ctx, &debts, `SELECT * FROM debts ORDER BY created_at DESC, id`); err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}

	report := &DebtsReport{Debts: debts}
	if len(debts) == 0 {
		return report, nil
	}

	soldItemIDs := make([]string, len(debts))
	debtIDs := make([]string, len(debts))
	for i, d := range debts {
		soldItemIDs[i] = d.SoldItemID
		debtIDs[i] = d.ID
	}

	itemsBySale, err := l.loadSaleItems(ctx, soldItemIDs)
	if err != nil {
		return nil, err
	}

	query, args, err := sqlx.In(`SELECT * FROM debt_payments WHERE debt_id IN (?) ORDER BY paid_at, id`, debtIDs)
	if err != nil {
		return nil, fmt.Errorf("prepare debt payments query: %w", err)
	}
	var postings []domain.DebtPayment
	if err := l.db.SelectContext(ctx, &postings, l.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load debt payments: %w", err)
	}
	paymentsByDebt := make(map[string][]domain.DebtPayment)
	for _, p := range postings {
		paymentsByDebt[p.DebtID] = append(paymentsByDebt[p.DebtID], p)
	}

	for i := range report.Debts {
		d := &report.Debts[i]
		d.Items = itemsBySale[d.SoldItemID]
		if d.Items == nil {
			d.Items = []domain.SaleItem{}
		}
		d.Payments = paymentsByDebt[d.ID]
		if d.Payments == nil {
			d.Payments = []domain.DebtPayment{}
		}
		report.Totals.Total = report.Totals.Total.Add(d.Total)
		report.Totals.Collected = report.Totals.Collected.Add(d.Paid)
		report.Totals.Outstanding = report.Totals.Outstanding.Add(d.Remaining)
	}
	return report, nil
}
