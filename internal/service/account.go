package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/set-night/reviewcash/internal/domain"
	"github.com/shopspring/decimal"
)

// AccountUserRepo is the user storage surface the account service needs.
type AccountUserRepo interface {
	GetOrCreate(ctx context.Context, telegramID int64, username string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
	SetRole(ctx context.Context, id int64, role domain.Role) error
	GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.User, error)
	AddBalance(ctx context.Context, tx pgx.Tx, id int64, delta decimal.Decimal) (decimal.Decimal, error)
}

// AccountJournal records one row per balance mutation.
type AccountJournal interface {
	Insert(ctx context.Context, tx pgx.Tx, userID int64, amount decimal.Decimal, txType domain.TxType, description string) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]domain.Transaction, error)
}

// AccountService owns user records and their balances. No other component
// mutates a balance except through it.
type AccountService struct {
	db      DB
	users   AccountUserRepo
	journal AccountJournal
}

func NewAccountService(db DB, users AccountUserRepo, journal AccountJournal) *AccountService {
	return &AccountService{db: db, users: users, journal: journal}
}

// GetOrCreate returns the user for a Telegram account, creating it with zero
// balance and no role on first contact.
func (s *AccountService) GetOrCreate(ctx context.Context, telegramID int64, username string) (*domain.User, error) {
	return s.users.GetOrCreate(ctx, telegramID, username)
}

func (s *AccountService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *AccountService) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	return s.users.GetByTelegramID(ctx, telegramID)
}

// History returns the newest balance mutations for a user, latest first.
func (s *AccountService) History(ctx context.Context, userID int64, limit int) ([]domain.Transaction, error) {
	return s.journal.ListByUser(ctx, userID, limit)
}

// SetRole switches the user between employer and worker. Last write wins.
func (s *AccountService) SetRole(ctx context.Context, userID int64, role domain.Role) error {
	if !domain.ValidRole(role) {
		return domain.ErrInvalidRole
	}
	return s.users.SetRole(ctx, userID, role)
}

// Credit adds amount to the user's balance in its own transaction.
func (s *AccountService) Credit(ctx context.Context, userID int64, amount decimal.Decimal, description string) (decimal.Decimal, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	balance, err := s.CreditTx(ctx, tx, userID, amount, description)
	if err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("commit: %w", err)
	}
	return balance, nil
}

// Debit removes amount from the user's balance in its own transaction.
func (s *AccountService) Debit(ctx context.Context, userID int64, amount decimal.Decimal, description string) (decimal.Decimal, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	balance, err := s.DebitTx(ctx, tx, userID, amount, description)
	if err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("commit: %w", err)
	}
	return balance, nil
}

// CreditTx credits within a caller-owned transaction, for operations that
// settle a balance together with other state (approvals, rejected withdrawals).
func (s *AccountService) CreditTx(ctx context.Context, tx pgx.Tx, userID int64, amount decimal.Decimal, description string) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, domain.ErrInvalidInput
	}

	if _, err := s.users.GetForUpdate(ctx, tx, userID); err != nil {
		return decimal.Zero, err
	}

	balance, err := s.users.AddBalance(ctx, tx, userID, amount)
	if err != nil {
		return decimal.Zero, err
	}

	if err := s.journal.Insert(ctx, tx, userID, amount, domain.TxTypeCredit, description); err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

// DebitTx debits within a caller-owned transaction. The row lock taken by
// GetForUpdate serializes concurrent mutations on the same user, so the
// balance check cannot be overtaken between read and write.
func (s *AccountService) DebitTx(ctx context.Context, tx pgx.Tx, userID int64, amount decimal.Decimal, description string) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, domain.ErrInvalidInput
	}

	user, err := s.users.GetForUpdate(ctx, tx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	if user.Balance.LessThan(amount) {
		return decimal.Zero, domain.ErrInsufficientBalance
	}

	balance, err := s.users.AddBalance(ctx, tx, userID, amount.Neg())
	if err != nil {
		return decimal.Zero, err
	}

	if err := s.journal.Insert(ctx, tx, userID, amount.Neg(), domain.TxTypeDebit, description); err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}
