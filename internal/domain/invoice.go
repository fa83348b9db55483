package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusWaiting InvoiceStatus = "waiting"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

// Invoice is an employer top-up request. Payment confirmation is an external
// fact; marking an invoice paid never credits a balance by itself.
type Invoice struct {
	ID         int64
	Code       string
	EmployerID int64
	Amount     decimal.Decimal
	Phone      string
	Status     InvoiceStatus
	CreatedAt  time.Time
	PaidAt     *time.Time
}
