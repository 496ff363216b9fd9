package ledgerpgs

import (
	"context"
	"database/sql"
)

// Schema DDL. The balance check constraint backs the insufficient funds
// mapping in mapError, so its name must stay in sync.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id serial PRIMARY KEY,
		name text NOT NULL,
		balance numeric NOT NULL,
		created_at timestamptz NOT NULL DEFAULT now(),
		CONSTRAINT accounts_balance_check CHECK (balance >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id bigserial PRIMARY KEY,
		account_id integer NOT NULL REFERENCES accounts (id),
		amount numeric NOT NULL CHECK (amount > 0),
		kind text NOT NULL,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS transactions_account_id_idx ON transactions (account_id)`,
}

// Apply executes the schema migrations. Statements are idempotent, so Apply
// is safe to run on every startup.
func Apply(ctx context.Context, db *sql.DB) error {
	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}
