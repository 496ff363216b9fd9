// Package ledgerservice manages business logic layer of the ledger.
package ledgerservice

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
)

// Store provides the account store interface needed by the ledger service layer.
//
// Implementations guarantee that a balance mutation and its audit record are
// committed as one atomic unit, and that a failed operation leaves both the
// balance and the log untouched.
//
//go:generate mockgen -source service.go -destination service_mock.go -package ledgerservice
type Store interface {
	CreateAccount(ctx context.Context, name string, balance decimal.Decimal) (domain.Account, error)
	GetAccount(ctx context.Context, id int32) (domain.Account, error)
	ApplySingle(ctx context.Context, id int32, delta decimal.Decimal, kind domain.TransactionKind) (domain.Account, domain.Transaction, error)
	ApplyPair(ctx context.Context, senderID, receiverID int32, amount decimal.Decimal) (domain.TransferResult, error)
	ListTransactions(ctx context.Context, accountID int32) ([]domain.Transaction, error)
}

// Service facilitates ledger service layer logic.
type Service struct {
	store Store
}

// New returns a ledger service backed by the given store.
func New(store Store) *Service {
	return &Service{store: store}
}

// CreateUser opens a new account with the given name and initial balance.
func (s *Service) CreateUser(ctx context.Context, name string, initialBalance decimal.Decimal) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	if strings.TrimSpace(name) == "" {
		return domain.Account{}, domain.ErrNameRequired
	}

	if initialBalance.IsNegative() {
		return domain.Account{}, domain.ErrNegativeInitialBalance
	}

	account, err := s.store.CreateAccount(ctx, name, initialBalance)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, err
	}

	return account, nil
}

// Balance returns the most recently committed balance of the account.
func (s *Service) Balance(ctx context.Context, id int32) (decimal.Decimal, error) {
	account, err := s.store.GetAccount(ctx, id)
	if err != nil {
		zerolog.Ctx(ctx).Info().Err(err).Int32("account_id", id).Send()
		return decimal.Decimal{}, err
	}

	return account.Balance, nil
}

// Deposit credits amount to the account and records a deposit.
func (s *Service) Deposit(ctx context.Context, id int32, amount decimal.Decimal) (domain.Account, error) {
	if !amount.IsPositive() {
		return domain.Account{}, domain.ErrInvalidAmount
	}

	account, _, err := s.store.ApplySingle(ctx, id, amount, domain.KindDeposit)
	if err != nil {
		zerolog.Ctx(ctx).Info().Err(err).Int32("account_id", id).Send()
		return domain.Account{}, err
	}

	return account, nil
}

// Withdraw debits amount from the account and records a withdrawal.
// The insufficient funds error from the store is surfaced unchanged.
func (s *Service) Withdraw(ctx context.Context, id int32, amount decimal.Decimal) (domain.Account, error) {
	if !amount.IsPositive() {
		return domain.Account{}, domain.ErrInvalidAmount
	}

	account, _, err := s.store.ApplySingle(ctx, id, amount.Neg(), domain.KindWithdrawal)
	if err != nil {
		zerolog.Ctx(ctx).Info().Err(err).Int32("account_id", id).Send()
		return domain.Account{}, err
	}

	return account, nil
}

// Transfer moves amount from the sender to the receiver as one atomic unit:
// either both balances change and both records are appended, or nothing is.
func (s *Service) Transfer(ctx context.Context, senderID, receiverID int32, amount decimal.Decimal) (domain.TransferResult, error) {
	if !amount.IsPositive() {
		return domain.TransferResult{}, domain.ErrInvalidAmount
	}

	if senderID == receiverID {
		return domain.TransferResult{}, domain.ErrSameAccountTransfer
	}

	result, err := s.store.ApplyPair(ctx, senderID, receiverID, amount)
	if err != nil {
		zerolog.Ctx(ctx).Info().Err(err).
			Int32("sender_id", senderID).
			Int32("receiver_id", receiverID).
			Send()

		return domain.TransferResult{}, err
	}

	return result, nil
}

// Transactions returns the account's audit trail in ascending id order.
// An existing account with no history yields an empty slice; an unknown
// account fails with domain.ErrAccountNotFound.
func (s *Service) Transactions(ctx context.Context, id int32) ([]domain.Transaction, error) {
	items, err := s.store.ListTransactions(ctx, id)
	if err != nil {
		zerolog.Ctx(ctx).Info().Err(err).Int32("account_id", id).Send()
		return nil, err
	}

	return items, nil
}
