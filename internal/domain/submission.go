package domain

import "time"

type SubmissionStatus string

const (
	SubmissionStatusPending  SubmissionStatus = "pending"
	SubmissionStatusApproved SubmissionStatus = "approved"
	SubmissionStatusRejected SubmissionStatus = "rejected"
)

// Submission is worker-provided proof of a completed slot, waiting for an
// admin decision. Proof is an opaque reference (a Telegram photo file id).
type Submission struct {
	ID         int64
	TaskID     int64
	WorkerID   int64
	Proof      string
	Status     SubmissionStatus
	CreatedAt  time.Time
	ReviewedAt *time.Time
}

type Outcome string

const (
	OutcomeApprove Outcome = "approve"
	OutcomeReject  Outcome = "reject"
)
