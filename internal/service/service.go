// Package service holds the marketplace core: account balances, the task
// slot engine, submission adjudication, withdrawals, and invoice tracking.
// Every operation either commits fully or leaves the store untouched.
package service

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// DB begins transactions. Satisfied by *pgxpool.Pool; tests substitute a fake.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
