package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/set-night/reviewcash/internal/domain"
	"github.com/shopspring/decimal"
)

// WithdrawalStore is the withdrawal storage surface.
type WithdrawalStore interface {
	Create(ctx context.Context, tx pgx.Tx, userID int64, amount decimal.Decimal, wallet string) (*domain.Withdrawal, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Withdrawal, error)
	SetStatus(ctx context.Context, tx pgx.Tx, id int64, status domain.WithdrawalStatus) error
	ListPending(ctx context.Context) ([]domain.Withdrawal, error)
}

// WithdrawalAccounts is the slice of the account service the flow needs.
type WithdrawalAccounts interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	DebitTx(ctx context.Context, tx pgx.Tx, userID int64, amount decimal.Decimal, description string) (decimal.Decimal, error)
	CreditTx(ctx context.Context, tx pgx.Tx, userID int64, amount decimal.Decimal, description string) (decimal.Decimal, error)
}

// WithdrawalService validates and records cash-outs. The debit and the
// pending record are one transaction: if the debit fails, no record exists.
type WithdrawalService struct {
	db       DB
	admins   Privileged
	minimum  decimal.Decimal
	store    WithdrawalStore
	accounts WithdrawalAccounts
}

func NewWithdrawalService(db DB, admins Privileged, minimum float64, store WithdrawalStore, accounts WithdrawalAccounts) *WithdrawalService {
	return &WithdrawalService{
		db:       db,
		admins:   admins,
		minimum:  decimal.NewFromFloat(minimum),
		store:    store,
		accounts: accounts,
	}
}

// Request debits the user up front and queues a pending withdrawal.
func (s *WithdrawalService) Request(ctx context.Context, userID int64, amount decimal.Decimal, wallet string) (*domain.Withdrawal, *domain.WithdrawalRequested, error) {
	if amount.LessThanOrEqual(decimal.Zero) || wallet == "" {
		return nil, nil, domain.ErrInvalidInput
	}
	if amount.LessThan(s.minimum) {
		return nil, nil, domain.ErrBelowMinimum
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := s.accounts.DebitTx(ctx, tx, userID, amount, fmt.Sprintf("Withdrawal to %s", wallet)); err != nil {
		return nil, nil, err
	}

	w, err := s.store.Create(ctx, tx, userID, amount, wallet)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit: %w", err)
	}

	note := &domain.WithdrawalRequested{
		WithdrawalID: w.ID,
		Amount:       w.Amount,
		Wallet:       w.Wallet,
	}
	if user, err := s.accounts.GetByID(ctx, userID); err == nil {
		note.UserTelegramID = user.TelegramID
	}
	return w, note, nil
}

// Settle finishes a pending withdrawal. Completed only stamps it; rejected
// also re-credits the user, compensating the up-front debit.
func (s *WithdrawalService) Settle(ctx context.Context, withdrawalID, adminTelegramID int64, outcome domain.WithdrawalStatus) (*domain.Withdrawal, error) {
	if !s.admins.IsAdmin(adminTelegramID) {
		return nil, domain.ErrForbidden
	}
	if outcome != domain.WithdrawalStatusCompleted && outcome != domain.WithdrawalStatusRejected {
		return nil, domain.ErrInvalidInput
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	w, err := s.store.GetForUpdate(ctx, tx, withdrawalID)
	if err != nil {
		return nil, err
	}
	if w.Status != domain.WithdrawalStatusPending {
		return nil, domain.ErrAlreadyProcessed
	}

	if err := s.store.SetStatus(ctx, tx, w.ID, outcome); err != nil {
		return nil, err
	}
	if outcome == domain.WithdrawalStatusRejected {
		if _, err := s.accounts.CreditTx(ctx, tx, w.UserID, w.Amount, fmt.Sprintf("Refund for rejected withdrawal #%d", w.ID)); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	w.Status = outcome
	return w, nil
}

func (s *WithdrawalService) ListPending(ctx context.Context) ([]domain.Withdrawal, error) {
	return s.store.ListPending(ctx)
}
