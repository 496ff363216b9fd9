package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount indicates a non-positive operation amount.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrSameAccountTransfer indicates a transfer where sender and receiver match.
	ErrSameAccountTransfer = errors.New("sender and receiver are the same account")
)

// TransactionKind encodes the direction and origin of a balance change.
// The amount of a transaction is always a positive magnitude; the kind,
// never the sign, carries the direction.
type TransactionKind string

// All supported transaction kinds.
const (
	KindDeposit          TransactionKind = "deposit"
	KindWithdrawal       TransactionKind = "withdrawal"
	KindTransferSent     TransactionKind = "transfer_sent"
	KindTransferReceived TransactionKind = "transfer_received"
)

// Direction returns the signed effect of the kind on the account balance:
// +1 for credits, -1 for debits.
func (k TransactionKind) Direction() int32 {
	if k == KindWithdrawal || k == KindTransferSent {
		return -1
	}

	return 1
}

// Transaction is one immutable entry of an account's audit trail.
//
// IDs increase monotonically in append order and are never reused;
// CreatedAt is non-decreasing with ID within a single account's stream.
type Transaction struct {
	ID        int64           `json:"id"`
	AccountID int32           `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"` // positive magnitude
	Kind      TransactionKind `json:"kind"`
	CreatedAt time.Time       `json:"created_at"`
}

// SignedAmount returns the transaction's effect on the account balance.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Kind.Direction() < 0 {
		return t.Amount.Neg()
	}

	return t.Amount
}

// TransferResult is the result of an atomic two-account transfer.
// Sent and Received carry the same amount and adjacent IDs.
type TransferResult struct {
	Sender   Account     `json:"sender"`
	Receiver Account     `json:"receiver"`
	Sent     Transaction `json:"sent"`
	Received Transaction `json:"received"`
}
