// Package domain provides definitions of all entities.
package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInsufficientFunds indicates that the account balance does not cover the debit.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrNegativeInitialBalance indicates a negative opening balance.
	ErrNegativeInitialBalance = errors.New("initial balance must not be negative")
	// ErrNameRequired indicates an empty account name.
	ErrNameRequired = errors.New("name is required")
)

// Account holds the current balance for a single ledger account.
//
// Balance is never negative in any state observable outside the store.
type Account struct {
	ID        int32           `json:"id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}
