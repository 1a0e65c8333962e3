package skillcoin

import "errors"

var (
	// ErrInvalidAmount is returned when amount is <= 0
	ErrInvalidAmount = errors.New("invalid amount: must be greater than 0")

	// ErrInsufficientBalance is returned when a debit would drive the
	// balance below zero. The failed debit leaves no side effects.
	ErrInsufficientBalance = errors.New("insufficient skillcoin balance")

	// ErrAccountNotFound is returned when the account row doesn't exist
	ErrAccountNotFound = errors.New("account not found")

	ErrInternal = errors.New("internal error")
)
