package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/set-night/reviewcash/internal/domain"
	"github.com/shopspring/decimal"
)

const withdrawalColumns = "id, user_id, amount, wallet, status, created_at, processed_at"

type WithdrawalRepo struct {
	db *pgxpool.Pool
}

func NewWithdrawalRepo(db *pgxpool.Pool) *WithdrawalRepo {
	return &WithdrawalRepo{db: db}
}

func scanWithdrawal(row pgx.Row) (*domain.Withdrawal, error) {
	var w domain.Withdrawal
	err := row.Scan(&w.ID, &w.UserID, &w.Amount, &w.Wallet, &w.Status, &w.CreatedAt, &w.ProcessedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WithdrawalRepo) Create(ctx context.Context, tx pgx.Tx, userID int64, amount decimal.Decimal, wallet string) (*domain.Withdrawal, error) {
	row := tx.QueryRow(ctx, `
		INSERT INTO withdrawals (user_id, amount, wallet, status)
		VALUES ($1, $2, $3, $4)
		RETURNING `+withdrawalColumns, userID, amount, wallet, domain.WithdrawalStatusPending)
	w, err := scanWithdrawal(row)
	if err != nil {
		return nil, fmt.Errorf("create withdrawal: %w", err)
	}
	return w, nil
}

func (r *WithdrawalRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Withdrawal, error) {
	row := tx.QueryRow(ctx, `SELECT `+withdrawalColumns+` FROM withdrawals WHERE id = $1 FOR UPDATE`, id)
	w, err := scanWithdrawal(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrWithdrawalNotFound
		}
		return nil, fmt.Errorf("lock withdrawal: %w", err)
	}
	return w, nil
}

func (r *WithdrawalRepo) SetStatus(ctx context.Context, tx pgx.Tx, id int64, status domain.WithdrawalStatus) error {
	tag, err := tx.Exec(ctx, `
		UPDATE withdrawals SET status = $2, processed_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("set withdrawal status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWithdrawalNotFound
	}
	return nil
}

func (r *WithdrawalRepo) ListPending(ctx context.Context) ([]domain.Withdrawal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+withdrawalColumns+` FROM withdrawals WHERE status = $1 ORDER BY id`,
		domain.WithdrawalStatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending withdrawals: %w", err)
	}
	defer rows.Close()

	var ws []domain.Withdrawal
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan withdrawal: %w", err)
		}
		ws = append(ws, *w)
	}
	return ws, rows.Err()
}
