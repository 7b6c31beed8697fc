package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/example/aclauto/internal/orders"
)

var (
	// ErrNotFound is returned when an order or condition does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrOutOfStock aborts an approval against a condition with no units left.
	// The order must remain untouched.
	ErrOutOfStock = errors.New("condition is out of stock")
	// ErrValidation covers local pre-store failures: missing buyer fields,
	// missing rejection reason. No store call is made.
	ErrValidation = errors.New("validation failed")
)

// TransitionError reports an illegal status move.
type TransitionError struct {
	From orders.Status
	To   orders.Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

// PaymentMismatchError carries the exact amount the deposit must equal, so
// the caller can show it verbatim.
type PaymentMismatchError struct {
	Required decimal.Decimal
}

func (e *PaymentMismatchError) Error() string {
	return fmt.Sprintf("deposited amount must equal %s exactly", e.Required.StringFixed(0))
}
