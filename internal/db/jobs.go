package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// JobsChannel is the LISTEN/NOTIFY channel used to wake dequeue workers.
const JobsChannel = "loopreel_jobs"

const jobColumns = `id, kind, payload, status, attempt, max_attempts, backoff_base_ms,
	run_after, last_error, locked_at, created_at, updated_at`

const enqueueJob = `
INSERT INTO jobs (id, kind, payload, max_attempts, backoff_base_ms)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + jobColumns

type EnqueueJobParams struct {
	ID            pgtype.UUID
	Kind          string
	Payload       []byte
	MaxAttempts   int32
	BackoffBaseMs int32
}

func (q *Queries) EnqueueJob(ctx context.Context, arg *EnqueueJobParams) (*Job, error) {
	row := q.db.QueryRow(ctx, enqueueJob,
		arg.ID, arg.Kind, arg.Payload, arg.MaxAttempts, arg.BackoffBaseMs)
	job, err := scanJob(row)
	if err != nil {
		return nil, err
	}
	_, err = q.db.Exec(ctx, "SELECT pg_notify($1, $2)", JobsChannel, arg.Kind)
	if err != nil {
		return nil, err
	}
	return job, nil
}

const dequeueJob = `
UPDATE jobs
SET status = 'running', attempt = attempt + 1, locked_at = now(), updated_at = now()
WHERE id = (
	SELECT id FROM jobs
	WHERE kind = $1 AND status = 'queued' AND run_after <= now()
	ORDER BY run_after
	FOR UPDATE SKIP LOCKED
	LIMIT 1
)
RETURNING ` + jobColumns

// DequeueJob claims the next runnable job of a kind, or pgx.ErrNoRows when
// the queue is drained.
func (q *Queries) DequeueJob(ctx context.Context, kind string) (*Job, error) {
	return scanJob(q.db.QueryRow(ctx, dequeueJob, kind))
}

const markJobSucceeded = `
UPDATE jobs
SET status = 'succeeded', locked_at = NULL, updated_at = now()
WHERE id = $1
`

func (q *Queries) MarkJobSucceeded(ctx context.Context, id pgtype.UUID) error {
	_, err := q.db.Exec(ctx, markJobSucceeded, id)
	return err
}

const markJobFailed = `
UPDATE jobs
SET status = CASE WHEN attempt >= max_attempts THEN 'failed' ELSE 'queued' END,
    run_after = now() + make_interval(secs => backoff_base_ms * power(2, GREATEST(attempt, 1) - 1) / 1000.0),
    last_error = $2,
    locked_at = NULL,
    updated_at = now()
WHERE id = $1
RETURNING status
`

type MarkJobFailedParams struct {
	ID        pgtype.UUID
	LastError *string
}

// MarkJobFailed either requeues with exponential backoff or, once the retry
// budget is spent, parks the job as failed. Returns the resulting status.
func (q *Queries) MarkJobFailed(ctx context.Context, arg *MarkJobFailedParams) (JobStatus, error) {
	var status JobStatus
	err := q.db.QueryRow(ctx, markJobFailed, arg.ID, arg.LastError).Scan(&status)
	return status, err
}

const recoverStuckJobs = `
UPDATE jobs
SET status = 'queued', locked_at = NULL, updated_at = now()
WHERE status = 'running' AND locked_at < now() - interval '10 minutes'
`

// RecoverStuckJobs requeues jobs orphaned by a crashed or restarted worker.
func (q *Queries) RecoverStuckJobs(ctx context.Context) (int64, error) {
	tag, err := q.db.Exec(ctx, recoverStuckJobs)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const failExcessiveRetryJobs = `
UPDATE jobs
SET status = 'failed', locked_at = NULL, updated_at = now()
WHERE status = 'queued' AND attempt >= max_attempts
`

// FailExcessiveRetryJobs parks jobs that somehow kept requeueing past their
// budget so they stop wasting workers.
func (q *Queries) FailExcessiveRetryJobs(ctx context.Context) (int64, error) {
	tag, err := q.db.Exec(ctx, failExcessiveRetryJobs)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListenJobs subscribes the connection to the job wake channel.
func (q *Queries) ListenJobs(ctx context.Context) error {
	_, err := q.db.Exec(ctx, "LISTEN "+JobsChannel)
	return err
}

const getJobByID = `
SELECT ` + jobColumns + `
FROM jobs
WHERE id = $1
`

func (q *Queries) GetJobByID(ctx context.Context, id pgtype.UUID) (*Job, error) {
	return scanJob(q.db.QueryRow(ctx, getJobByID, id))
}

func scanJob(row interface{ Scan(dest ...any) error }) (*Job, error) {
	var j Job
	err := row.Scan(&j.ID, &j.Kind, &j.Payload, &j.Status, &j.Attempt, &j.MaxAttempts, &j.BackoffBaseMs,
		&j.RunAfter, &j.LastError, &j.LockedAt, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}
