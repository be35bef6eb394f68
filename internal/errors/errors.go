// Package errors defines the domain error taxonomy shared by services and
// handlers. Reads that find nothing return nil results, not errors.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCard is returned when a credit card number does not reduce
	// to exactly 16 digits.
	ErrInvalidCard = errors.New("invalid credit card number (must be 16 digits)")
	// ErrInsufficientStock is returned when a checkout would drive a
	// product's stock below zero.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrNothingToCheckout is returned when checkout resolves zero cart
	// items. It is a normal outcome, not a failure.
	ErrNothingToCheckout = errors.New("no cart items selected")
	// ErrBadCredentials is returned on any login failure.
	ErrBadCredentials = errors.New("invalid email or password")
	// ErrAccountInactive is returned when a deactivated account logs in.
	ErrAccountInactive = errors.New("account has been deactivated")
	// ErrInvalidRestock is returned for a non-positive restock amount.
	ErrInvalidRestock = errors.New("restock amount must be a positive number")
)

// CommitError reports a checkout transaction that failed partway and was
// rolled back. Callers see one opaque failure; the cause is kept for logging.
type CommitError struct {
	Cause error
}

func (e *CommitError) Error() string { return fmt.Sprintf("order commit failed: %v", e.Cause) }

func (e *CommitError) Unwrap() error { return e.Cause }

// Commit wraps err as a CommitError unless it already carries a domain
// meaning of its own.
func Commit(err error) error {
	if errors.Is(err, ErrInsufficientStock) {
		return err
	}
	return &CommitError{Cause: err}
}
