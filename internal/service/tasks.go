package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/set-night/reviewcash/internal/domain"
	"github.com/shopspring/decimal"
)

// TaskStore is the task storage surface of the engine. DecrementSlot must be
// a compare-and-swap: it fails with ErrTaskUnavailable instead of consuming a
// slot the guard no longer permits.
type TaskStore interface {
	Create(ctx context.Context, t *domain.Task) (*domain.Task, error)
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	ListActive(ctx context.Context) ([]domain.Task, error)
	ListByEmployer(ctx context.Context, employerID int64) ([]domain.Task, error)
	DecrementSlot(ctx context.Context, tx pgx.Tx, taskID int64) (*domain.Task, error)
	IncrementSlot(ctx context.Context, tx pgx.Tx, taskID int64) (*domain.Task, error)
	Close(ctx context.Context, id int64) error
}

// ClaimStore tracks live claims. Create must fail with ErrAlreadyClaimed for
// a duplicate unsettled (task, worker) pair.
type ClaimStore interface {
	Create(ctx context.Context, tx pgx.Tx, taskID, workerID int64) (*domain.Claim, error)
	GetUnsettled(ctx context.Context, taskID, workerID int64) (*domain.Claim, error)
	LatestOpenByWorker(ctx context.Context, workerID int64) (*domain.Claim, error)
}

// TaskUserGetter resolves users for claim notifications.
type TaskUserGetter interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// TaskService is the slot engine: task creation, listing, atomic claiming
// and slot release.
type TaskService struct {
	db     DB
	tasks  TaskStore
	claims ClaimStore
	users  TaskUserGetter
}

func NewTaskService(db DB, tasks TaskStore, claims ClaimStore, users TaskUserGetter) *TaskService {
	return &TaskService{db: db, tasks: tasks, claims: claims, users: users}
}

// Create posts a task with a fixed slot count.
func (s *TaskService) Create(ctx context.Context, employerID int64, platform, objectName, objectLink string, price decimal.Decimal, totalSlots int) (*domain.Task, error) {
	if price.LessThanOrEqual(decimal.Zero) || totalSlots <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if objectName == "" || objectLink == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.tasks.Create(ctx, &domain.Task{
		EmployerID: employerID,
		Platform:   platform,
		ObjectName: objectName,
		ObjectLink: objectLink,
		Price:      price,
		TotalSlots: totalSlots,
	})
}

func (s *TaskService) Get(ctx context.Context, id int64) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

// ListActive returns claimable tasks, recomputed from the store on each call.
func (s *TaskService) ListActive(ctx context.Context) ([]domain.Task, error) {
	return s.tasks.ListActive(ctx)
}

func (s *TaskService) ListByEmployer(ctx context.Context, employerID int64) ([]domain.Task, error) {
	return s.tasks.ListByEmployer(ctx, employerID)
}

func (s *TaskService) Close(ctx context.Context, id int64) error {
	return s.tasks.Close(ctx, id)
}

// ClaimSlot gives the worker an exclusive hold on one slot. The claim insert
// and the slot decrement commit as one unit: if the decrement loses the race
// the rollback also discards the claim.
func (s *TaskService) ClaimSlot(ctx context.Context, taskID, workerID int64) (*domain.Task, *domain.TaskClaimed, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := s.claims.Create(ctx, tx, taskID, workerID); err != nil {
		return nil, nil, err
	}

	task, err := s.tasks.DecrementSlot(ctx, tx, taskID)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit: %w", err)
	}

	note := &domain.TaskClaimed{
		TaskID:     task.ID,
		Platform:   task.Platform,
		ObjectName: task.ObjectName,
		ObjectLink: task.ObjectLink,
	}
	if worker, err := s.users.GetByID(ctx, workerID); err == nil {
		note.WorkerTelegramID = worker.TelegramID
	}
	return task, note, nil
}

// ReleaseSlotTx returns a slot to the pool within a caller-owned transaction.
// Called only by adjudication when a submission is rejected.
func (s *TaskService) ReleaseSlotTx(ctx context.Context, tx pgx.Tx, taskID int64) (*domain.Task, error) {
	return s.tasks.IncrementSlot(ctx, tx, taskID)
}

// OpenClaim returns the worker's claim still waiting for proof, used to route
// an incoming proof photo to its task.
func (s *TaskService) OpenClaim(ctx context.Context, workerID int64) (*domain.Claim, error) {
	return s.claims.LatestOpenByWorker(ctx, workerID)
}

// HasLiveClaim reports whether the worker currently holds a slot on the task.
func (s *TaskService) HasLiveClaim(ctx context.Context, taskID, workerID int64) bool {
	_, err := s.claims.GetUnsettled(ctx, taskID, workerID)
	return err == nil
}
