package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/set-night/reviewcash/internal/domain"
	"github.com/shopspring/decimal"
)

// CommissionRepo manages the singleton platform commission pool row.
type CommissionRepo struct {
	db *pgxpool.Pool
}

func NewCommissionRepo(db *pgxpool.Pool) *CommissionRepo {
	return &CommissionRepo{db: db}
}

func (r *CommissionRepo) Add(ctx context.Context, tx pgx.Tx, amount decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := tx.QueryRow(ctx, `
		UPDATE commission_pool SET balance = balance + $1 WHERE id = 1
		RETURNING balance`, amount).Scan(&balance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("add commission: %w", err)
	}
	return balance, nil
}

func (r *CommissionRepo) Balance(ctx context.Context) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.QueryRow(ctx, `SELECT balance FROM commission_pool WHERE id = 1`).Scan(&balance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("get commission balance: %w", err)
	}
	return balance, nil
}

// JournalRepo records a transaction row per balance mutation.
type JournalRepo struct {
	db *pgxpool.Pool
}

func NewJournalRepo(db *pgxpool.Pool) *JournalRepo {
	return &JournalRepo{db: db}
}

func (r *JournalRepo) Insert(ctx context.Context, tx pgx.Tx, userID int64, amount decimal.Decimal, txType domain.TxType, description string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO transactions (user_id, amount, tx_type, description)
		VALUES ($1, $2, $3, $4)`, userID, amount, txType, description)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// ListByUser returns the newest journal rows for a user, latest first.
func (r *JournalRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.Transaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, amount, tx_type, description, created_at
		FROM transactions WHERE user_id = $1
		ORDER BY id DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.TxType, &t.Description, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}
