package ledger

import (
	"errors"
	"fmt"
)

// Ledger operation errors.
var (
	// ErrUserNotFound indicates the user row does not exist.
	ErrUserNotFound = errors.New("ledger: user not found")
	// ErrPackageNotFound indicates the package does not exist or is inactive.
	ErrPackageNotFound = errors.New("ledger: package not found")
	// ErrTopupNotFound indicates the topup row does not exist.
	ErrTopupNotFound = errors.New("ledger: topup not found")
	// ErrTopupReviewed indicates the pending topup was already approved or rejected.
	ErrTopupReviewed = errors.New("ledger: topup already reviewed")
	// ErrInvalidAmount indicates a non-positive credit amount or negative balance.
	ErrInvalidAmount = errors.New("ledger: invalid amount")
)

// InsufficientBalanceError reports a failed sufficiency check with the
// amounts needed to present an actionable message.
type InsufficientBalanceError struct {
	Required int64 // Package price.
	Current  int64 // Balance at the time of the check.
}

// Error implements the error interface.
func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("ledger: insufficient balance: required %d, current %d", e.Required, e.Current)
}
