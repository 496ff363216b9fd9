// Package ledgermem implements the account store in process memory.
//
// Each account carries its own mutex, so operations on different accounts
// never contend. Every balance mutation appends its audit record inside the
// same critical section, so no reader can observe a balance change without
// the matching record or vice versa.
package ledgermem

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
)

type account struct {
	mu   sync.Mutex
	data domain.Account
	log  []domain.Transaction
}

// Store holds all accounts and their transaction logs.
type Store struct {
	mu            sync.RWMutex // guards accounts map and account id allocation
	accounts      map[int32]*account
	nextAccountID int32

	idMu         sync.Mutex // guards record id allocation
	nextRecordID int64
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		accounts: make(map[int32]*account),
	}
}

// reserveRecordIDs allocates n consecutive record ids and returns the first.
// Callers hold the relevant account locks, so a pair reserved for a transfer
// ends up adjacent in the account streams as well.
func (s *Store) reserveRecordIDs(n int64) int64 {
	s.idMu.Lock()
	defer s.idMu.Unlock()

	first := s.nextRecordID + 1
	s.nextRecordID += n

	return first
}

// lookup returns the account holder for id. The returned pointer is stable
// because accounts are never deleted.
func (s *Store) lookup(id int32) (*account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	return a, nil
}

// CreateAccount allocates a new account id and stores the account with the
// given opening balance.
func (s *Store) CreateAccount(ctx context.Context, name string, balance decimal.Decimal) (domain.Account, error) {
	if balance.IsNegative() {
		return domain.Account{}, domain.ErrNegativeInitialBalance
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextAccountID++

	a := &account{
		data: domain.Account{
			ID:        s.nextAccountID,
			Name:      name,
			Balance:   balance,
			CreatedAt: time.Now(),
		},
	}

	s.accounts[a.data.ID] = a

	return a.data, nil
}

// GetAccount returns the account with the given id, reflecting the most
// recently committed mutation.
func (s *Store) GetAccount(ctx context.Context, id int32) (domain.Account, error) {
	a, err := s.lookup(id)
	if err != nil {
		return domain.Account{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	return a.data, nil
}

// ApplySingle atomically adds delta to the account balance and appends the
// audit record for it. The balance check, the mutation, and the append are a
// single step: no other operation on the account can run in between.
func (s *Store) ApplySingle(ctx context.Context, id int32, delta decimal.Decimal, kind domain.TransactionKind) (domain.Account, domain.Transaction, error) {
	a, err := s.lookup(id)
	if err != nil {
		return domain.Account{}, domain.Transaction{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	newBalance := a.data.Balance.Add(delta)
	if newBalance.IsNegative() {
		return domain.Account{}, domain.Transaction{}, domain.ErrInsufficientFunds
	}

	record := domain.Transaction{
		ID:        s.reserveRecordIDs(1),
		AccountID: id,
		Amount:    delta.Abs(),
		Kind:      kind,
		CreatedAt: time.Now(),
	}

	a.data.Balance = newBalance
	a.log = append(a.log, record)

	return a.data, record, nil
}

// ApplyPair atomically debits amount from the sender and credits it to the
// receiver, appending a transfer_sent and a transfer_received record with
// adjacent ids. Neither side is ever visible without the other: both account
// locks are held for the whole mutation, acquired in ascending id order so
// opposite transfers cannot deadlock.
func (s *Store) ApplyPair(ctx context.Context, senderID, receiverID int32, amount decimal.Decimal) (domain.TransferResult, error) {
	if senderID == receiverID {
		return domain.TransferResult{}, domain.ErrSameAccountTransfer
	}

	sender, err := s.lookup(senderID)
	if err != nil {
		return domain.TransferResult{}, err
	}

	receiver, err := s.lookup(receiverID)
	if err != nil {
		return domain.TransferResult{}, err
	}

	first, second := sender, receiver
	if receiverID < senderID {
		first, second = receiver, sender
	}

	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	newSenderBalance := sender.data.Balance.Sub(amount)
	if newSenderBalance.IsNegative() {
		return domain.TransferResult{}, domain.ErrInsufficientFunds
	}

	firstID := s.reserveRecordIDs(2)
	now := time.Now()

	sent := domain.Transaction{
		ID:        firstID,
		AccountID: senderID,
		Amount:    amount,
		Kind:      domain.KindTransferSent,
		CreatedAt: now,
	}
	received := domain.Transaction{
		ID:        firstID + 1,
		AccountID: receiverID,
		Amount:    amount,
		Kind:      domain.KindTransferReceived,
		CreatedAt: now,
	}

	sender.data.Balance = newSenderBalance
	receiver.data.Balance = receiver.data.Balance.Add(amount)
	sender.log = append(sender.log, sent)
	receiver.log = append(receiver.log, received)

	return domain.TransferResult{
		Sender:   sender.data,
		Receiver: receiver.data,
		Sent:     sent,
		Received: received,
	}, nil
}

// ListTransactions returns the account's records in ascending id order.
func (s *Store) ListTransactions(ctx context.Context, accountID int32) ([]domain.Transaction, error) {
	a, err := s.lookup(accountID)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	items := make([]domain.Transaction, len(a.log))
	copy(items, a.log)

	return items, nil
}
