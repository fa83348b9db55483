package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/set-night/reviewcash/internal/domain"
	"github.com/shopspring/decimal"
)

// ReviewSubmissionRepo is the submission storage surface of adjudication.
type ReviewSubmissionRepo interface {
	Create(ctx context.Context, tx pgx.Tx, taskID, workerID int64, proof string) (*domain.Submission, error)
	GetByID(ctx context.Context, id int64) (*domain.Submission, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Submission, error)
	SetStatus(ctx context.Context, tx pgx.Tx, id int64, status domain.SubmissionStatus) error
	ListPending(ctx context.Context) ([]domain.Submission, error)
}

// ReviewClaimRepo settles claims alongside decisions.
type ReviewClaimRepo interface {
	GetUnsettledForUpdate(ctx context.Context, tx pgx.Tx, taskID, workerID int64) (*domain.Claim, error)
	SetStatus(ctx context.Context, tx pgx.Tx, id int64, status domain.ClaimStatus) error
}

// ReviewTaskEngine is the slice of the task engine adjudication needs.
type ReviewTaskEngine interface {
	Get(ctx context.Context, id int64) (*domain.Task, error)
	ReleaseSlotTx(ctx context.Context, tx pgx.Tx, taskID int64) (*domain.Task, error)
}

// ReviewAccounts is the slice of the account service adjudication needs.
type ReviewAccounts interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	CreditTx(ctx context.Context, tx pgx.Tx, userID int64, amount decimal.Decimal, description string) (decimal.Decimal, error)
}

// ReviewCommission accrues the platform's cut.
type ReviewCommission interface {
	Add(ctx context.Context, tx pgx.Tx, amount decimal.Decimal) (decimal.Decimal, error)
	Balance(ctx context.Context) (decimal.Decimal, error)
}

// Privileged answers whether an identity may adjudicate.
type Privileged interface {
	IsAdmin(telegramID int64) bool
}

// ReviewService records worker proof and applies admin decisions: an approve
// settles the worker's reward net of commission, a reject returns the slot.
type ReviewService struct {
	db          DB
	admins      Privileged
	rate        decimal.Decimal
	submissions ReviewSubmissionRepo
	claims      ReviewClaimRepo
	tasks       ReviewTaskEngine
	accounts    ReviewAccounts
	commission  ReviewCommission
}

func NewReviewService(db DB, admins Privileged, commissionRate float64, submissions ReviewSubmissionRepo, claims ReviewClaimRepo, tasks ReviewTaskEngine, accounts ReviewAccounts, commission ReviewCommission) *ReviewService {
	return &ReviewService{
		db:          db,
		admins:      admins,
		rate:        decimal.NewFromFloat(commissionRate),
		submissions: submissions,
		claims:      claims,
		tasks:       tasks,
		accounts:    accounts,
		commission:  commission,
	}
}

// SubmitProof attaches evidence to the worker's open claim and queues it for
// review. The claim must exist and must not already carry a pending proof.
func (s *ReviewService) SubmitProof(ctx context.Context, taskID, workerID int64, proof string) (*domain.Submission, error) {
	if proof == "" {
		return nil, domain.ErrInvalidInput
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	claim, err := s.claims.GetUnsettledForUpdate(ctx, tx, taskID, workerID)
	if err != nil {
		return nil, err
	}
	if claim.Status != domain.ClaimStatusOpen {
		return nil, domain.ErrProofAlreadySent
	}

	sub, err := s.submissions.Create(ctx, tx, taskID, workerID, proof)
	if err != nil {
		return nil, err
	}
	if err := s.claims.SetStatus(ctx, tx, claim.ID, domain.ClaimStatusSubmitted); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return sub, nil
}

// Decide applies an admin decision exactly once. Approve credits the worker
// price×(1−rate) and accrues price×rate to the commission pool; the slot
// stays consumed. Reject returns the slot to the task. The returned
// notification is for the transport to deliver to the worker.
func (s *ReviewService) Decide(ctx context.Context, submissionID, adminTelegramID int64, outcome domain.Outcome) (*domain.SubmissionDecided, error) {
	if !s.admins.IsAdmin(adminTelegramID) {
		return nil, domain.ErrForbidden
	}
	if outcome != domain.OutcomeApprove && outcome != domain.OutcomeReject {
		return nil, domain.ErrInvalidInput
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	sub, err := s.submissions.GetForUpdate(ctx, tx, submissionID)
	if err != nil {
		return nil, err
	}
	if sub.Status != domain.SubmissionStatusPending {
		return nil, domain.ErrAlreadyDecided
	}

	claim, err := s.claims.GetUnsettledForUpdate(ctx, tx, sub.TaskID, sub.WorkerID)
	if err != nil {
		return nil, err
	}

	task, err := s.tasks.Get(ctx, sub.TaskID)
	if err != nil {
		return nil, err
	}

	reward := decimal.Zero
	switch outcome {
	case domain.OutcomeApprove:
		fee := task.Price.Mul(s.rate)
		reward = task.Price.Sub(fee)
		if _, err := s.accounts.CreditTx(ctx, tx, sub.WorkerID, reward, fmt.Sprintf("Reward for task #%d", sub.TaskID)); err != nil {
			return nil, err
		}
		if _, err := s.commission.Add(ctx, tx, fee); err != nil {
			return nil, err
		}
		if err := s.submissions.SetStatus(ctx, tx, sub.ID, domain.SubmissionStatusApproved); err != nil {
			return nil, err
		}
	case domain.OutcomeReject:
		if err := s.submissions.SetStatus(ctx, tx, sub.ID, domain.SubmissionStatusRejected); err != nil {
			return nil, err
		}
		if _, err := s.tasks.ReleaseSlotTx(ctx, tx, sub.TaskID); err != nil {
			return nil, err
		}
	}

	if err := s.claims.SetStatus(ctx, tx, claim.ID, domain.ClaimStatusSettled); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	note := &domain.SubmissionDecided{
		TaskID:  sub.TaskID,
		Outcome: outcome,
		Reward:  reward,
	}
	if worker, err := s.accounts.GetByID(ctx, sub.WorkerID); err == nil {
		note.WorkerTelegramID = worker.TelegramID
	}
	return note, nil
}

func (s *ReviewService) Get(ctx context.Context, id int64) (*domain.Submission, error) {
	return s.submissions.GetByID(ctx, id)
}

func (s *ReviewService) ListPending(ctx context.Context) ([]domain.Submission, error) {
	return s.submissions.ListPending(ctx)
}

// CommissionBalance reports the platform's accrued cut. Admin only.
func (s *ReviewService) CommissionBalance(ctx context.Context, adminTelegramID int64) (decimal.Decimal, error) {
	if !s.admins.IsAdmin(adminTelegramID) {
		return decimal.Zero, domain.ErrForbidden
	}
	return s.commission.Balance(ctx)
}
