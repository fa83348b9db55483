package service

import (
	"context"
	"errors"
	"testing"

	"github.com/set-night/reviewcash/internal/domain"
	"github.com/shopspring/decimal"
)

const adminID = int64(999)

type reviewFixture struct {
	review   *ReviewService
	tasks    *TaskService
	accounts *AccountService
	users    *memUsers
	comm     *memCommission

	employer *domain.User
	worker   *domain.User
}

// newReviewFixture wires the real task engine and account service over
// in-memory stores, the same composition main uses over Postgres.
func newReviewFixture() *reviewFixture {
	users := newMemUsers()
	taskStore := newMemTasks()
	claims := newMemClaims()
	subs := newMemSubs()
	comm := &memCommission{}
	journal := &memJournal{}

	accounts := NewAccountService(fakeDB{}, users, journal)
	tasks := NewTaskService(fakeDB{}, taskStore, claims, users)
	review := NewReviewService(fakeDB{}, adminList{adminID}, 0.15, subs, claims, tasks, accounts, comm)

	return &reviewFixture{
		review:   review,
		tasks:    tasks,
		accounts: accounts,
		users:    users,
		comm:     comm,
		employer: users.seed(100, domain.RoleEmployer, decimal.Zero),
		worker:   users.seed(200, domain.RoleWorker, decimal.Zero),
	}
}

// claimAndSubmit walks a worker through claim and proof on a fresh task.
func (f *reviewFixture) claimAndSubmit(t *testing.T, price decimal.Decimal, slots int) (*domain.Task, *domain.Submission) {
	t.Helper()
	ctx := context.Background()
	task, err := f.tasks.Create(ctx, f.employer.ID, "tg", "Channel X", "http://x", price, slots)
	if err != nil {
		t.Fatalf("Create task: %v", err)
	}
	if _, _, err := f.tasks.ClaimSlot(ctx, task.ID, f.worker.ID); err != nil {
		t.Fatalf("ClaimSlot: %v", err)
	}
	sub, err := f.review.SubmitProof(ctx, task.ID, f.worker.ID, "photo1")
	if err != nil {
		t.Fatalf("SubmitProof: %v", err)
	}
	return task, sub
}

func TestSubmitProofRequiresClaim(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	task, err := f.tasks.Create(ctx, f.employer.ID, "google", "Cafe", "http://x", decimal.NewFromInt(10), 1)
	if err != nil {
		t.Fatalf("Create task: %v", err)
	}

	if _, err := f.review.SubmitProof(ctx, task.ID, f.worker.ID, "photo1"); !errors.Is(err, domain.ErrNoActiveClaim) {
		t.Errorf("proof without claim: got %v, want ErrNoActiveClaim", err)
	}
}

func TestSubmitProofTwice(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	task, _ := f.claimAndSubmit(t, decimal.NewFromInt(10), 1)

	if _, err := f.review.SubmitProof(ctx, task.ID, f.worker.ID, "photo2"); !errors.Is(err, domain.ErrProofAlreadySent) {
		t.Errorf("second proof: got %v, want ErrProofAlreadySent", err)
	}
}

func TestDecideGuards(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	_, sub := f.claimAndSubmit(t, decimal.NewFromInt(10), 1)

	if _, err := f.review.Decide(ctx, sub.ID, 12345, domain.OutcomeApprove); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("non-admin decide: got %v, want ErrForbidden", err)
	}
	if _, err := f.review.Decide(ctx, 9999, adminID, domain.OutcomeApprove); !errors.Is(err, domain.ErrSubmissionNotFound) {
		t.Errorf("missing submission: got %v, want ErrSubmissionNotFound", err)
	}
	if _, err := f.review.Decide(ctx, sub.ID, adminID, "maybe"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("bad outcome: got %v, want ErrInvalidInput", err)
	}
}

func TestApproveSettlesRewardAndCommission(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	// Price 10.0, rate 0.15: worker gets 8.5, pool gets 1.5.
	task, sub := f.claimAndSubmit(t, decimal.RequireFromString("10.0"), 1)

	note, err := f.review.Decide(ctx, sub.ID, adminID, domain.OutcomeApprove)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}

	if got := f.users.balance(f.worker.ID); !got.Equal(decimal.RequireFromString("8.5")) {
		t.Errorf("worker balance: got %s, want 8.5", got)
	}
	if got := f.comm.total(); !got.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("commission pool: got %s, want 1.5", got)
	}
	if note.Outcome != domain.OutcomeApprove || !note.Reward.Equal(decimal.RequireFromString("8.5")) {
		t.Errorf("notification: %+v", note)
	}
	if note.WorkerTelegramID != f.worker.TelegramID {
		t.Errorf("notification target: got %d, want %d", note.WorkerTelegramID, f.worker.TelegramID)
	}

	decided, _ := f.review.Get(ctx, sub.ID)
	if decided.Status != domain.SubmissionStatusApproved || decided.ReviewedAt == nil {
		t.Errorf("submission after approve: status=%q reviewedAt=%v", decided.Status, decided.ReviewedAt)
	}

	// Approval keeps the slot consumed.
	current, _ := f.tasks.Get(ctx, task.ID)
	if current.RemainingSlots != 0 || current.Status != domain.TaskStatusExhausted {
		t.Errorf("task after approve: remaining=%d status=%q", current.RemainingSlots, current.Status)
	}
}

func TestDecideIdempotent(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	_, sub := f.claimAndSubmit(t, decimal.RequireFromString("10.0"), 1)

	if _, err := f.review.Decide(ctx, sub.ID, adminID, domain.OutcomeApprove); err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if _, err := f.review.Decide(ctx, sub.ID, adminID, domain.OutcomeApprove); !errors.Is(err, domain.ErrAlreadyDecided) {
		t.Errorf("second decide: got %v, want ErrAlreadyDecided", err)
	}

	// Credited exactly once.
	if got := f.users.balance(f.worker.ID); !got.Equal(decimal.RequireFromString("8.5")) {
		t.Errorf("worker balance after duplicate decide: got %s, want 8.5", got)
	}
	if got := f.comm.total(); !got.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("commission after duplicate decide: got %s, want 1.5", got)
	}
}

func TestRejectRestoresSlot(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	task, sub := f.claimAndSubmit(t, decimal.RequireFromString("10.0"), 1)

	note, err := f.review.Decide(ctx, sub.ID, adminID, domain.OutcomeReject)
	if err != nil {
		t.Fatalf("Decide reject: %v", err)
	}
	if !note.Reward.IsZero() {
		t.Errorf("reject reward: got %s, want 0", note.Reward)
	}

	// No balance effect, slot returned, task reopened.
	if got := f.users.balance(f.worker.ID); !got.IsZero() {
		t.Errorf("worker balance after reject: got %s, want 0", got)
	}
	if got := f.comm.total(); !got.IsZero() {
		t.Errorf("commission after reject: got %s, want 0", got)
	}
	current, _ := f.tasks.Get(ctx, task.ID)
	if current.RemainingSlots != 1 || current.Status != domain.TaskStatusActive {
		t.Errorf("task after reject: remaining=%d status=%q", current.RemainingSlots, current.Status)
	}

	// The settled claim frees the worker to claim the reopened task again.
	if _, _, err := f.tasks.ClaimSlot(ctx, task.ID, f.worker.ID); err != nil {
		t.Errorf("re-claim after reject: %v", err)
	}
}
