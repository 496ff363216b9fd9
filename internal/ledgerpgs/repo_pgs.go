// Package ledgerpgs implements the account store on PostgreSQL.
//
// Every mutating operation runs inside a single database transaction, so the
// balance change and its audit record commit together or not at all.
package ledgerpgs

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

// Store facilitates ledger repository layer logic on Postgres.
type Store struct {
	conn *sql.DB
}

// New returns a Store with a connection to start transactions.
func New(conn *sql.DB) *Store {
	return &Store{conn: conn}
}

// mapError translates driver failures into the ledger error taxonomy.
func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrAccountNotFound
	}

	if errors.Is(err, driver.ErrBadConn) {
		return errorspkg.ErrUnavailable
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Constraint == "accounts_balance_check" {
			return domain.ErrInsufficientFunds
		}

		// Class 08 covers connection exceptions.
		if pqErr.Code.Class() == "08" {
			return errorspkg.ErrUnavailable
		}
	}

	return errorspkg.ErrInternal
}

const createAccountQuery = `
INSERT INTO
    accounts (name, balance)
VALUES
    ($1, $2)
RETURNING id, name, balance, created_at
`

// CreateAccount creates the account and then returns it.
func (s *Store) CreateAccount(ctx context.Context, name string, balance decimal.Decimal) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	if balance.IsNegative() {
		return domain.Account{}, domain.ErrNegativeInitialBalance
	}

	var a domain.Account

	err := s.conn.QueryRowContext(ctx, createAccountQuery, name, balance).
		Scan(&a.ID, &a.Name, &a.Balance, &a.CreatedAt)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, mapError(err)
	}

	return a, nil
}

const getAccountQuery = `
SELECT id, name, balance, created_at
FROM accounts
WHERE id = $1
`

// GetAccount returns the account with the given id.
func (s *Store) GetAccount(ctx context.Context, id int32) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	var a domain.Account

	err := s.conn.QueryRowContext(ctx, getAccountQuery, id).
		Scan(&a.ID, &a.Name, &a.Balance, &a.CreatedAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			l.Error().Err(err).Send()
		}

		return domain.Account{}, mapError(err)
	}

	return a, nil
}

const addBalanceQuery = `
UPDATE accounts
SET balance = balance + $1
WHERE id = $2
RETURNING id, name, balance, created_at
`

func addBalance(ctx context.Context, db dbpkg.SQLInterface, amount decimal.Decimal, id int32) (domain.Account, error) {
	var a domain.Account

	err := db.QueryRowContext(ctx, addBalanceQuery, amount, id).
		Scan(&a.ID, &a.Name, &a.Balance, &a.CreatedAt)
	if err != nil {
		return domain.Account{}, mapError(err)
	}

	return a, nil
}

const createRecordQuery = `
INSERT INTO
    transactions (account_id, amount, kind)
VALUES
    ($1, $2, $3)
RETURNING id, account_id, amount, kind, created_at
`

func createRecord(ctx context.Context, db dbpkg.SQLInterface, accountID int32, amount decimal.Decimal, kind domain.TransactionKind) (domain.Transaction, error) {
	var t domain.Transaction

	err := db.QueryRowContext(ctx, createRecordQuery, accountID, amount, kind).
		Scan(&t.ID, &t.AccountID, &t.Amount, &t.Kind, &t.CreatedAt)
	if err != nil {
		return domain.Transaction{}, mapError(err)
	}

	return t, nil
}

// ApplySingle adds delta to the account balance and appends the audit record
// within a single database transaction.
func (s *Store) ApplySingle(ctx context.Context, id int32, delta decimal.Decimal, kind domain.TransactionKind) (domain.Account, domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, domain.Transaction{}, mapError(err)
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			l.Error().Err(err).Send()
		}
	}()

	account, err := addBalance(ctx, tx, delta, id)
	if err != nil {
		l.Info().Err(err).Send()
		return domain.Account{}, domain.Transaction{}, err
	}

	record, err := createRecord(ctx, tx, id, delta.Abs(), kind)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, domain.Transaction{}, err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, domain.Transaction{}, mapError(err)
	}

	return account, record, nil
}

// ApplyPair debits the sender and credits the receiver within a single
// database transaction and appends both transfer records.
func (s *Store) ApplyPair(ctx context.Context, senderID, receiverID int32, amount decimal.Decimal) (domain.TransferResult, error) {
	l := zerolog.Ctx(ctx)

	if senderID == receiverID {
		return domain.TransferResult{}, domain.ErrSameAccountTransfer
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.TransferResult{}, mapError(err)
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			l.Error().Err(err).Send()
		}
	}()

	var result domain.TransferResult

	// To avoid deadlocks execute balance updates in consistent id order.
	if senderID < receiverID {
		result.Sender, err = addBalance(ctx, tx, amount.Neg(), senderID)
		if err == nil {
			result.Receiver, err = addBalance(ctx, tx, amount, receiverID)
		}
	} else {
		result.Receiver, err = addBalance(ctx, tx, amount, receiverID)
		if err == nil {
			result.Sender, err = addBalance(ctx, tx, amount.Neg(), senderID)
		}
	}

	if err != nil {
		l.Info().Err(err).Send()
		return domain.TransferResult{}, err
	}

	result.Sent, err = createRecord(ctx, tx, senderID, amount, domain.KindTransferSent)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.TransferResult{}, err
	}

	result.Received, err = createRecord(ctx, tx, receiverID, amount, domain.KindTransferReceived)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.TransferResult{}, err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return domain.TransferResult{}, mapError(err)
	}

	return result, nil
}

const existsQuery = `
SELECT id FROM accounts WHERE id = $1
`

const listRecordsQuery = `
SELECT id, account_id, amount, kind, created_at
FROM transactions
WHERE account_id = $1
ORDER BY id
`

// ListTransactions returns the account's records in ascending id order.
func (s *Store) ListTransactions(ctx context.Context, accountID int32) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	var id int32
	if err := s.conn.QueryRowContext(ctx, existsQuery, accountID).Scan(&id); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			l.Error().Err(err).Send()
		}

		return nil, mapError(err)
	}

	rows, err := s.conn.QueryContext(ctx, listRecordsQuery, accountID)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, mapError(err)
	}
	defer rows.Close()

	items := []domain.Transaction{}

	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Amount, &t.Kind, &t.CreatedAt); err != nil {
			l.Error().Err(err).Send()
			return nil, mapError(err)
		}

		items = append(items, t)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, mapError(err)
	}

	return items, nil
}
