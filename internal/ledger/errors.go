package ledger

import (
	"errors"
	"fmt"
)

// ErrConflict reports a guarded update that found the row already changed by
// a concurrent request. Nothing was committed; the caller may retry the whole
// operation.
var ErrConflict = errors.New("conflicting concurrent update")

type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

type InsufficientStockError struct {
	ProductName string
	Requested   int64
	Available   int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for %s. Available: %d", e.ProductName, e.Available)
}
