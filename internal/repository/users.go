package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/set-night/reviewcash/internal/domain"
	"github.com/shopspring/decimal"
)

const userColumns = "id, telegram_id, username, balance, role, created_at, updated_at"

type UserRepo struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) *UserRepo {
	return &UserRepo{db: db}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.TelegramID, &u.Username, &u.Balance, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetOrCreate inserts the user on first contact and refreshes the username on
// every later one. Idempotent.
func (r *UserRepo) GetOrCreate(ctx context.Context, telegramID int64, username string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (telegram_id, username)
		VALUES ($1, $2)
		ON CONFLICT (telegram_id)
		DO UPDATE SET username = EXCLUDED.username, updated_at = now()
		RETURNING `+userColumns, telegramID, username)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("get or create user: %w", err)
	}
	return u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r *UserRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, telegramID)
	u, err := scanUser(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by telegram id: %w", err)
	}
	return u, nil
}

func (r *UserRepo) SetRole(ctx context.Context, id int64, role domain.Role) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET role = $2, updated_at = now() WHERE id = $1`, id, role)
	if err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// GetForUpdate locks the user row for the duration of tx. All balance
// mutations on the same user serialize on this lock.
func (r *UserRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.User, error) {
	row := tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
	u, err := scanUser(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("lock user: %w", err)
	}
	return u, nil
}

// AddBalance applies a signed delta to the locked user row and returns the
// new balance. Call after GetForUpdate within the same tx.
func (r *UserRepo) AddBalance(ctx context.Context, tx pgx.Tx, id int64, delta decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := tx.QueryRow(ctx, `
		UPDATE users SET balance = balance + $2, updated_at = now()
		WHERE id = $1
		RETURNING balance`, id, delta).Scan(&balance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("update balance: %w", err)
	}
	return balance, nil
}
