package ledgerservice

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/ledgermem"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func TestCreateUser(t *testing.T) {
	testCases := []struct {
		name           string
		userName       string
		initialBalance decimal.Decimal
		wantErr        error
	}{
		{
			name:           "OK",
			userName:       "alice",
			initialBalance: dec(500),
		},
		{
			name:           "ZeroBalance",
			userName:       "bob",
			initialBalance: decimal.Zero,
		},
		{
			name:           "EmptyName",
			userName:       "",
			initialBalance: dec(500),
			wantErr:        domain.ErrNameRequired,
		},
		{
			name:           "BlankName",
			userName:       "   ",
			initialBalance: dec(500),
			wantErr:        domain.ErrNameRequired,
		},
		{
			name:           "NegativeBalance",
			userName:       "alice",
			initialBalance: dec(-1),
			wantErr:        domain.ErrNegativeInitialBalance,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			service := New(ledgermem.New())

			account, err := service.CreateUser(context.Background(), tc.userName, tc.initialBalance)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.userName, account.Name)
			require.True(t, account.Balance.Equal(tc.initialBalance))
		})
	}
}

func TestDepositValidation(t *testing.T) {
	service := New(ledgermem.New())

	account, err := service.CreateUser(context.Background(), "alice", dec(100))
	require.NoError(t, err)

	testCases := []struct {
		name    string
		id      int32
		amount  decimal.Decimal
		wantErr error
	}{
		{name: "OK", id: account.ID, amount: dec(50)},
		{name: "ZeroAmount", id: account.ID, amount: decimal.Zero, wantErr: domain.ErrInvalidAmount},
		{name: "NegativeAmount", id: account.ID, amount: dec(-50), wantErr: domain.ErrInvalidAmount},
		{name: "NotFound", id: account.ID + 1, amount: dec(50), wantErr: domain.ErrAccountNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Deposit(context.Background(), tc.id, tc.amount)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestWithdrawValidation(t *testing.T) {
	service := New(ledgermem.New())

	account, err := service.CreateUser(context.Background(), "alice", dec(100))
	require.NoError(t, err)

	testCases := []struct {
		name    string
		id      int32
		amount  decimal.Decimal
		wantErr error
	}{
		{name: "OK", id: account.ID, amount: dec(50)},
		{name: "ZeroAmount", id: account.ID, amount: decimal.Zero, wantErr: domain.ErrInvalidAmount},
		{name: "NegativeAmount", id: account.ID, amount: dec(-50), wantErr: domain.ErrInvalidAmount},
		{name: "InsufficientFunds", id: account.ID, amount: dec(10_000), wantErr: domain.ErrInsufficientFunds},
		{name: "NotFound", id: account.ID + 1, amount: dec(10), wantErr: domain.ErrAccountNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Withdraw(context.Background(), tc.id, tc.amount)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestTransferValidation(t *testing.T) {
	service := New(ledgermem.New())

	sender, err := service.CreateUser(context.Background(), "alice", dec(100))
	require.NoError(t, err)
	receiver, err := service.CreateUser(context.Background(), "bob", dec(0))
	require.NoError(t, err)

	testCases := []struct {
		name       string
		senderID   int32
		receiverID int32
		amount     decimal.Decimal
		wantErr    error
	}{
		{name: "OK", senderID: sender.ID, receiverID: receiver.ID, amount: dec(50)},
		{name: "ZeroAmount", senderID: sender.ID, receiverID: receiver.ID, amount: decimal.Zero, wantErr: domain.ErrInvalidAmount},
		{name: "NegativeAmount", senderID: sender.ID, receiverID: receiver.ID, amount: dec(-50), wantErr: domain.ErrInvalidAmount},
		{name: "SelfTransfer", senderID: sender.ID, receiverID: sender.ID, amount: dec(10), wantErr: domain.ErrSameAccountTransfer},
		{name: "SenderNotFound", senderID: receiver.ID + 1, receiverID: receiver.ID, amount: dec(10), wantErr: domain.ErrAccountNotFound},
		{name: "ReceiverNotFound", senderID: sender.ID, receiverID: receiver.ID + 1, amount: dec(10), wantErr: domain.ErrAccountNotFound},
		{name: "InsufficientFunds", senderID: sender.ID, receiverID: receiver.ID, amount: dec(10_000), wantErr: domain.ErrInsufficientFunds},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Transfer(context.Background(), tc.senderID, tc.receiverID, tc.amount)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
		})
	}
}

// TestLedgerScenario walks one account lifecycle end to end: balances after
// every operation, the audit trail each operation leaves behind, and the
// exact effect of failed operations.
func TestLedgerScenario(t *testing.T) {
	ctx := context.Background()
	service := New(ledgermem.New())

	alice, err := service.CreateUser(ctx, "Alice", dec(500))
	require.NoError(t, err)

	balance, err := service.Balance(ctx, alice.ID)
	require.NoError(t, err)
	require.True(t, balance.Equal(dec(500)))

	_, err = service.Deposit(ctx, alice.ID, dec(200))
	require.NoError(t, err)

	balance, err = service.Balance(ctx, alice.ID)
	require.NoError(t, err)
	require.True(t, balance.Equal(dec(700)))

	records, err := service.Transactions(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, domain.KindDeposit, records[0].Kind)
	require.True(t, records[0].Amount.Equal(dec(200)))

	_, err = service.Withdraw(ctx, alice.ID, dec(100))
	require.NoError(t, err)

	balance, err = service.Balance(ctx, alice.ID)
	require.NoError(t, err)
	require.True(t, balance.Equal(dec(600)))

	records, err = service.Transactions(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, domain.KindWithdrawal, records[1].Kind)
	require.True(t, records[1].Amount.Equal(dec(100)))

	// Overdraft attempt: balance and history unchanged.
	_, err = service.Withdraw(ctx, alice.ID, dec(10_000))
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	balance, err = service.Balance(ctx, alice.ID)
	require.NoError(t, err)
	require.True(t, balance.Equal(dec(600)))

	records, err = service.Transactions(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)

	bob, err := service.CreateUser(ctx, "Bob", dec(0))
	require.NoError(t, err)

	result, err := service.Transfer(ctx, alice.ID, bob.ID, dec(600))
	require.NoError(t, err)
	require.True(t, result.Sender.Balance.Equal(dec(0)))
	require.True(t, result.Receiver.Balance.Equal(dec(600)))

	records, err = service.Transactions(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, domain.KindTransferSent, records[2].Kind)
	require.True(t, records[2].Amount.Equal(dec(600)))

	records, err = service.Transactions(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, domain.KindTransferReceived, records[0].Kind)
	require.True(t, records[0].Amount.Equal(dec(600)))

	// Transfer from a drained account fails and changes nothing.
	_, err = service.Transfer(ctx, alice.ID, bob.ID, dec(1))
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	balance, err = service.Balance(ctx, alice.ID)
	require.NoError(t, err)
	require.True(t, balance.Equal(dec(0)))

	balance, err = service.Balance(ctx, bob.ID)
	require.NoError(t, err)
	require.True(t, balance.Equal(dec(600)))
}

func TestTransactionsUnknownAccount(t *testing.T) {
	service := New(ledgermem.New())

	_, err := service.Transactions(context.Background(), 42)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

// failingStore simulates an unreachable backing store.
type failingStore struct{}

func (failingStore) CreateAccount(ctx context.Context, name string, balance decimal.Decimal) (domain.Account, error) {
	return domain.Account{}, errorspkg.ErrUnavailable
}

func (failingStore) GetAccount(ctx context.Context, id int32) (domain.Account, error) {
	return domain.Account{}, errorspkg.ErrUnavailable
}

func (failingStore) ApplySingle(ctx context.Context, id int32, delta decimal.Decimal, kind domain.TransactionKind) (domain.Account, domain.Transaction, error) {
	return domain.Account{}, domain.Transaction{}, errorspkg.ErrUnavailable
}

func (failingStore) ApplyPair(ctx context.Context, senderID, receiverID int32, amount decimal.Decimal) (domain.TransferResult, error) {
	return domain.TransferResult{}, errorspkg.ErrUnavailable
}

func (failingStore) ListTransactions(ctx context.Context, accountID int32) ([]domain.Transaction, error) {
	return nil, errorspkg.ErrUnavailable
}

func TestUnavailableStorePassthrough(t *testing.T) {
	ctx := context.Background()
	service := New(failingStore{})

	_, err := service.CreateUser(ctx, "alice", dec(10))
	require.ErrorIs(t, err, errorspkg.ErrUnavailable)

	_, err = service.Balance(ctx, 1)
	require.ErrorIs(t, err, errorspkg.ErrUnavailable)

	_, err = service.Deposit(ctx, 1, dec(10))
	require.ErrorIs(t, err, errorspkg.ErrUnavailable)

	_, err = service.Withdraw(ctx, 1, dec(10))
	require.ErrorIs(t, err, errorspkg.ErrUnavailable)

	_, err = service.Transfer(ctx, 1, 2, dec(10))
	require.ErrorIs(t, err, errorspkg.ErrUnavailable)

	_, err = service.Transactions(ctx, 1)
	require.ErrorIs(t, err, errorspkg.ErrUnavailable)
}
