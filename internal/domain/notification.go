package domain

import "github.com/shopspring/decimal"

// Notifications are returned by the core as plain values; the transport layer
// decides how (and whether) to deliver them.

// SubmissionDecided tells a worker the outcome of their proof review.
// Reward is zero unless the submission was approved.
type SubmissionDecided struct {
	WorkerTelegramID int64
	TaskID           int64
	Outcome          Outcome
	Reward           decimal.Decimal
}

// WithdrawalRequested tells the admins a cash-out is waiting.
type WithdrawalRequested struct {
	WithdrawalID     int64
	UserTelegramID   int64
	Amount           decimal.Decimal
	Wallet           string
}

// TaskClaimed tells a worker their claim succeeded and proof is expected.
// The task fields let the delivery render the assignment without a re-read.
type TaskClaimed struct {
	WorkerTelegramID int64
	TaskID           int64
	Platform         string
	ObjectName       string
	ObjectLink       string
}
