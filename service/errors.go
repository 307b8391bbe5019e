package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientFunds is returned when a debit exceeds the balance
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidAmount is returned for negative credits and non-positive debits
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrUnknownItem is returned when a shop item does not exist
	ErrUnknownItem = errors.New("unknown shop item")

	// ErrInvalidModifier is returned for multipliers below 1, unknown kinds and non-positive durations
	ErrInvalidModifier = errors.New("invalid modifier")
)

// InsufficientFundsError carries the balance and the amount that was requested
type InsufficientFundsError struct {
	Have int64
	Need int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient balance: have %d, need %d", e.Have, e.Need)
}

func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}
