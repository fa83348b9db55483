package service

import (
	"context"
	"errors"
	"testing"

	"github.com/set-night/reviewcash/internal/config"
	"github.com/set-night/reviewcash/internal/domain"
	"github.com/shopspring/decimal"
)

func TestCreateInvoice(t *testing.T) {
	svc := NewInvoiceService(newMemInvoices())
	ctx := context.Background()

	if _, err := svc.Create(ctx, 1, decimal.Zero, "+70001112233"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("zero amount: got %v, want ErrInvalidInput", err)
	}

	inv, err := svc.Create(ctx, 1, decimal.NewFromInt(500), "+70001112233")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(inv.Code) != config.InvoiceCodeLen {
		t.Errorf("code length: got %d, want %d", len(inv.Code), config.InvoiceCodeLen)
	}
	if inv.Status != domain.InvoiceStatusWaiting {
		t.Errorf("status: got %q, want waiting", inv.Status)
	}

	other, _ := svc.Create(ctx, 1, decimal.NewFromInt(500), "+70001112233")
	if other.Code == inv.Code {
		t.Error("invoice codes must be unique")
	}
}

func TestMarkPaidIdempotent(t *testing.T) {
	svc := NewInvoiceService(newMemInvoices())
	ctx := context.Background()

	inv, err := svc.Create(ctx, 1, decimal.NewFromInt(500), "+70001112233")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	paid, fresh, err := svc.MarkPaid(ctx, inv.Code)
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if !fresh {
		t.Error("first mark must report a fresh transition")
	}
	if paid.Status != domain.InvoiceStatusPaid || paid.PaidAt == nil {
		t.Errorf("after mark: status=%q paidAt=%v", paid.Status, paid.PaidAt)
	}

	// Marking again is a no-op, not an error, and must not report fresh.
	again, fresh, err := svc.MarkPaid(ctx, inv.Code)
	if err != nil {
		t.Fatalf("MarkPaid again: %v", err)
	}
	if fresh {
		t.Error("repeated mark must not report a fresh transition")
	}
	if again.Status != domain.InvoiceStatusPaid {
		t.Errorf("repeated mark: status=%q", again.Status)
	}
	if !again.PaidAt.Equal(*paid.PaidAt) {
		t.Error("repeated mark must not restamp paid_at")
	}

	if _, _, err := svc.MarkPaid(ctx, "nope1234"); !errors.Is(err, domain.ErrInvoiceNotFound) {
		t.Errorf("unknown code: got %v, want ErrInvoiceNotFound", err)
	}
}
