package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/set-night/reviewcash/internal/domain"
)

const submissionColumns = "id, task_id, worker_id, proof, status, created_at, reviewed_at"

type SubmissionRepo struct {
	db *pgxpool.Pool
}

func NewSubmissionRepo(db *pgxpool.Pool) *SubmissionRepo {
	return &SubmissionRepo{db: db}
}

func scanSubmission(row pgx.Row) (*domain.Submission, error) {
	var s domain.Submission
	err := row.Scan(&s.ID, &s.TaskID, &s.WorkerID, &s.Proof, &s.Status, &s.CreatedAt, &s.ReviewedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubmissionRepo) Create(ctx context.Context, tx pgx.Tx, taskID, workerID int64, proof string) (*domain.Submission, error) {
	row := tx.QueryRow(ctx, `
		INSERT INTO submissions (task_id, worker_id, proof, status)
		VALUES ($1, $2, $3, $4)
		RETURNING `+submissionColumns, taskID, workerID, proof, domain.SubmissionStatusPending)
	s, err := scanSubmission(row)
	if err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}
	return s, nil
}

func (r *SubmissionRepo) GetByID(ctx context.Context, id int64) (*domain.Submission, error) {
	row := r.db.QueryRow(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id)
	s, err := scanSubmission(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return s, nil
}

// GetForUpdate locks the submission row so a duplicated decision call
// serializes behind the first and hits the AlreadyDecided guard.
func (r *SubmissionRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Submission, error) {
	row := tx.QueryRow(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = $1 FOR UPDATE`, id)
	s, err := scanSubmission(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("lock submission: %w", err)
	}
	return s, nil
}

func (r *SubmissionRepo) SetStatus(ctx context.Context, tx pgx.Tx, id int64, status domain.SubmissionStatus) error {
	tag, err := tx.Exec(ctx, `
		UPDATE submissions SET status = $2, reviewed_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("set submission status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubmissionNotFound
	}
	return nil
}

func (r *SubmissionRepo) ListPending(ctx context.Context) ([]domain.Submission, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+submissionColumns+` FROM submissions WHERE status = $1 ORDER BY id`,
		domain.SubmissionStatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending submissions: %w", err)
	}
	defer rows.Close()

	var subs []domain.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		subs = append(subs, *s)
	}
	return subs, rows.Err()
}
