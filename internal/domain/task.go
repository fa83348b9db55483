package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TaskStatus string

const (
	TaskStatusActive    TaskStatus = "active"
	TaskStatusExhausted TaskStatus = "exhausted"
	TaskStatusClosed    TaskStatus = "closed"
)

// Task is a unit of paid work an employer posts. It carries a fixed number
// of slots; each slot is one worker completing the task once.
type Task struct {
	ID             int64
	EmployerID     int64
	Platform       string
	ObjectName     string
	ObjectLink     string
	Price          decimal.Decimal
	TotalSlots     int
	RemainingSlots int
	Status         TaskStatus
	CreatedAt      time.Time
}

type ClaimStatus string

const (
	ClaimStatusOpen      ClaimStatus = "open"
	ClaimStatusSubmitted ClaimStatus = "submitted"
	ClaimStatusSettled   ClaimStatus = "settled"
)

// Claim is a worker's hold on one slot of a task, pending proof and review.
type Claim struct {
	ID        int64
	TaskID    int64
	WorkerID  int64
	Status    ClaimStatus
	CreatedAt time.Time
}
