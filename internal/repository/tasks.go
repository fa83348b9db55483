package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/set-night/reviewcash/internal/domain"
)

const taskColumns = "id, employer_id, platform, object_name, object_link, price, total_slots, remaining_slots, status, created_at"

type TaskRepo struct {
	db *pgxpool.Pool
}

func NewTaskRepo(db *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{db: db}
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	err := row.Scan(&t.ID, &t.EmployerID, &t.Platform, &t.ObjectName, &t.ObjectLink,
		&t.Price, &t.TotalSlots, &t.RemainingSlots, &t.Status, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepo) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO tasks (employer_id, platform, object_name, object_link, price, total_slots, remaining_slots, status)
		VALUES ($1, $2, $3, $4, $5, $6, $6, $7)
		RETURNING `+taskColumns,
		t.EmployerID, t.Platform, t.ObjectName, t.ObjectLink, t.Price, t.TotalSlots, domain.TaskStatusActive)
	created, err := scanTask(row)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return created, nil
}

func (r *TaskRepo) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	row := r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// ListActive returns claimable tasks, oldest first so early posters drain first.
func (r *TaskRepo) ListActive(ctx context.Context) ([]domain.Task, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE status = $1 AND remaining_slots > 0
		ORDER BY id`, domain.TaskStatusActive)
	if err != nil {
		return nil, fmt.Errorf("list active tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepo) ListByEmployer(ctx context.Context, employerID int64) ([]domain.Task, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE employer_id = $1 ORDER BY id`, employerID)
	if err != nil {
		return nil, fmt.Errorf("list employer tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// DecrementSlot is the claim compare-and-swap: it consumes one slot only if
// the task is still active with slots left, flipping to exhausted on the last
// one. Returns ErrTaskUnavailable when the guard fails (missing task, wrong
// status, or no slots) so concurrent claims on the last slot get exactly one
// winner.
func (r *TaskRepo) DecrementSlot(ctx context.Context, tx pgx.Tx, taskID int64) (*domain.Task, error) {
	row := tx.QueryRow(ctx, `
		UPDATE tasks
		SET remaining_slots = remaining_slots - 1,
		    status = CASE WHEN remaining_slots - 1 = 0 THEN $2::text ELSE status END
		WHERE id = $1 AND status = $3 AND remaining_slots > 0
		RETURNING `+taskColumns,
		taskID, domain.TaskStatusExhausted, domain.TaskStatusActive)
	t, err := scanTask(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrTaskUnavailable
		}
		return nil, fmt.Errorf("claim slot: %w", err)
	}
	return t, nil
}

// IncrementSlot returns one slot to the pool, capped at total_slots, and
// reopens an exhausted task.
func (r *TaskRepo) IncrementSlot(ctx context.Context, tx pgx.Tx, taskID int64) (*domain.Task, error) {
	row := tx.QueryRow(ctx, `
		UPDATE tasks
		SET remaining_slots = LEAST(remaining_slots + 1, total_slots),
		    status = CASE WHEN status = $2::text THEN $3::text ELSE status END
		WHERE id = $1
		RETURNING `+taskColumns,
		taskID, domain.TaskStatusExhausted, domain.TaskStatusActive)
	t, err := scanTask(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("release slot: %w", err)
	}
	return t, nil
}

// Close marks a task closed so it stops appearing in listings. Tasks are
// never deleted.
func (r *TaskRepo) Close(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE tasks SET status = $2 WHERE id = $1`, id, domain.TaskStatusClosed)
	if err != nil {
		return fmt.Errorf("close task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}
