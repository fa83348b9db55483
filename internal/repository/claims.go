package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/set-night/reviewcash/internal/domain"
)

const claimColumns = "id, task_id, worker_id, status, created_at"

// uniqueViolation is the Postgres error code raised by the partial unique
// index on unsettled (task_id, worker_id) pairs. foreignKeyViolation is the
// code raised by claims.task_id on an unknown task.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

type ClaimRepo struct {
	db *pgxpool.Pool
}

func NewClaimRepo(db *pgxpool.Pool) *ClaimRepo {
	return &ClaimRepo{db: db}
}

func scanClaim(row pgx.Row) (*domain.Claim, error) {
	var c domain.Claim
	err := row.Scan(&c.ID, &c.TaskID, &c.WorkerID, &c.Status, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create opens a claim. The unique index turns a duplicate live claim into
// ErrAlreadyClaimed without a read-then-write window.
func (r *ClaimRepo) Create(ctx context.Context, tx pgx.Tx, taskID, workerID int64) (*domain.Claim, error) {
	row := tx.QueryRow(ctx, `
		INSERT INTO claims (task_id, worker_id, status)
		VALUES ($1, $2, $3)
		RETURNING `+claimColumns, taskID, workerID, domain.ClaimStatusOpen)
	c, err := scanClaim(row)
	if err != nil {
		return nil, mapClaimInsertError(err)
	}
	return c, nil
}

// mapClaimInsertError turns the constraint violations of the claim INSERT
// into domain errors: a duplicate live claim into ErrAlreadyClaimed, an
// unknown task (FK on task_id) into ErrTaskUnavailable.
func mapClaimInsertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return domain.ErrAlreadyClaimed
		case foreignKeyViolation:
			return domain.ErrTaskUnavailable
		}
	}
	return fmt.Errorf("create claim: %w", err)
}

// GetUnsettled returns the live claim for (task, worker), if any.
func (r *ClaimRepo) GetUnsettled(ctx context.Context, taskID, workerID int64) (*domain.Claim, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+claimColumns+` FROM claims
		WHERE task_id = $1 AND worker_id = $2 AND status <> $3`,
		taskID, workerID, domain.ClaimStatusSettled)
	c, err := scanClaim(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNoActiveClaim
		}
		return nil, fmt.Errorf("get claim: %w", err)
	}
	return c, nil
}

// LatestOpenByWorker finds the claim an incoming proof photo belongs to:
// the worker's most recent claim still waiting for proof.
func (r *ClaimRepo) LatestOpenByWorker(ctx context.Context, workerID int64) (*domain.Claim, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+claimColumns+` FROM claims
		WHERE worker_id = $1 AND status = $2
		ORDER BY id DESC
		LIMIT 1`, workerID, domain.ClaimStatusOpen)
	c, err := scanClaim(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNoActiveClaim
		}
		return nil, fmt.Errorf("get open claim: %w", err)
	}
	return c, nil
}

// GetUnsettledForUpdate locks the live claim row within tx.
func (r *ClaimRepo) GetUnsettledForUpdate(ctx context.Context, tx pgx.Tx, taskID, workerID int64) (*domain.Claim, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+claimColumns+` FROM claims
		WHERE task_id = $1 AND worker_id = $2 AND status <> $3
		FOR UPDATE`,
		taskID, workerID, domain.ClaimStatusSettled)
	c, err := scanClaim(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNoActiveClaim
		}
		return nil, fmt.Errorf("lock claim: %w", err)
	}
	return c, nil
}

func (r *ClaimRepo) SetStatus(ctx context.Context, tx pgx.Tx, id int64, status domain.ClaimStatus) error {
	tag, err := tx.Exec(ctx, `UPDATE claims SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("set claim status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNoActiveClaim
	}
	return nil
}
