package domain

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrUserNotFound        = errors.New("user not found")
	ErrTaskNotFound        = errors.New("task not found")
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrWithdrawalNotFound  = errors.New("withdrawal not found")
	ErrInvoiceNotFound     = errors.New("invoice not found")
	ErrTaskUnavailable     = errors.New("task is not available")
	ErrAlreadyClaimed      = errors.New("task already claimed by this worker")
	ErrNoActiveClaim       = errors.New("no active claim on this task")
	ErrProofAlreadySent    = errors.New("proof already submitted for this claim")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBelowMinimum        = errors.New("amount below withdrawal minimum")
	ErrAlreadyDecided      = errors.New("submission already decided")
	ErrAlreadyProcessed    = errors.New("withdrawal already processed")
	ErrForbidden           = errors.New("operation requires admin rights")
	ErrInvalidRole         = errors.New("invalid role")
)
