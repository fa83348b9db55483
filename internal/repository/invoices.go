package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/set-night/reviewcash/internal/domain"
	"github.com/shopspring/decimal"
)

const invoiceColumns = "id, code, employer_id, amount, phone, status, created_at, paid_at"

type InvoiceRepo struct {
	db *pgxpool.Pool
}

func NewInvoiceRepo(db *pgxpool.Pool) *InvoiceRepo {
	return &InvoiceRepo{db: db}
}

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := row.Scan(&inv.ID, &inv.Code, &inv.EmployerID, &inv.Amount, &inv.Phone, &inv.Status, &inv.CreatedAt, &inv.PaidAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvoiceRepo) Create(ctx context.Context, code string, employerID int64, amount decimal.Decimal, phone string) (*domain.Invoice, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO invoices (code, employer_id, amount, phone, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+invoiceColumns, code, employerID, amount, phone, domain.InvoiceStatusWaiting)
	inv, err := scanInvoice(row)
	if err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	return inv, nil
}

func (r *InvoiceRepo) GetByCode(ctx context.Context, code string) (*domain.Invoice, error) {
	row := r.db.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE code = $1`, code)
	inv, err := scanInvoice(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// MarkPaid flips a waiting invoice to paid in one statement; an invoice that
// is already paid matches no row, which the service treats as a no-op.
func (r *InvoiceRepo) MarkPaid(ctx context.Context, code string) (*domain.Invoice, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE invoices SET status = $2, paid_at = now()
		WHERE code = $1 AND status = $3
		RETURNING `+invoiceColumns, code, domain.InvoiceStatusPaid, domain.InvoiceStatusWaiting)
	inv, err := scanInvoice(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("mark invoice paid: %w", err)
	}
	return inv, nil
}
