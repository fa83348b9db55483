package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type WithdrawalStatus string

const (
	WithdrawalStatusPending   WithdrawalStatus = "pending"
	WithdrawalStatusCompleted WithdrawalStatus = "completed"
	WithdrawalStatusRejected  WithdrawalStatus = "rejected"
)

// Withdrawal is a cash-out request. The amount is debited from the user at
// creation time, so a rejected withdrawal re-credits the user.
type Withdrawal struct {
	ID          int64
	UserID      int64
	Amount      decimal.Decimal
	Wallet      string
	Status      WithdrawalStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}
