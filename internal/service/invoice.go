package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/set-night/reviewcash/internal/config"
	"github.com/set-night/reviewcash/internal/domain"
	"github.com/shopspring/decimal"
)

// InvoiceStore is the invoice storage surface.
type InvoiceStore interface {
	Create(ctx context.Context, code string, employerID int64, amount decimal.Decimal, phone string) (*domain.Invoice, error)
	GetByCode(ctx context.Context, code string) (*domain.Invoice, error)
	MarkPaid(ctx context.Context, code string) (*domain.Invoice, error)
}

// InvoiceService tracks employer top-up requests. Payment confirmation is an
// external fact: marking an invoice paid never touches a balance — the caller
// credits the employer when MarkPaid reports a fresh transition.
type InvoiceService struct {
	store InvoiceStore
}

func NewInvoiceService(store InvoiceStore) *InvoiceService {
	return &InvoiceService{store: store}
}

// Create issues an invoice with a fresh external-facing code.
func (s *InvoiceService) Create(ctx context.Context, employerID int64, amount decimal.Decimal, phone string) (*domain.Invoice, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	code := uuid.NewString()[:config.InvoiceCodeLen]
	return s.store.Create(ctx, code, employerID, amount, phone)
}

func (s *InvoiceService) GetByCode(ctx context.Context, code string) (*domain.Invoice, error) {
	return s.store.GetByCode(ctx, code)
}

// MarkPaid stamps a waiting invoice as paid. The boolean reports whether this
// call performed the transition; marking an already-paid invoice again is a
// no-op that returns it unchanged with false, so the caller credits the
// employer at most once.
func (s *InvoiceService) MarkPaid(ctx context.Context, code string) (*domain.Invoice, bool, error) {
	inv, err := s.store.MarkPaid(ctx, code)
	if err == nil {
		return inv, true, nil
	}
	if !errors.Is(err, domain.ErrInvoiceNotFound) {
		return nil, false, err
	}
	// Either the code is unknown or the invoice was paid earlier.
	existing, getErr := s.store.GetByCode(ctx, code)
	if getErr != nil {
		return nil, false, getErr
	}
	if existing.Status == domain.InvoiceStatusPaid {
		return existing, false, nil
	}
	return nil, false, err
}
