package queue

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loopreel/loopreel/internal/db"
)

// Handler executes one job's payload. An error triggers the kind's retry
// policy; a nil return marks the job succeeded.
type Handler func(ctx context.Context, payload []byte) error

// Worker drains one job kind with the kind's concurrency cap. onExhausted,
// if non-nil, runs once when a job burns its whole retry budget.
func Worker(ctx context.Context, dbc *db.DatabaseConnection, kind string, handler, onExhausted Handler, wake <-chan struct{}) {
	q := dbc.Queries(ctx)

	for {
		if ctx.Err() != nil {
			return
		}

		for {
			job, err := q.DequeueJob(ctx, kind)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					break
				}
				slog.Error("failed to dequeue job", "kind", kind, "error", err)
				time.Sleep(2 * time.Second)
				break
			}

			if err := handler(ctx, job.Payload); err != nil {
				slog.Error("job failed", "kind", kind, "job_id", job.ID, "attempt", job.Attempt, "error", err)
				jobsFailed.WithLabelValues(kind).Inc()
				errMsg := err.Error()
				status, markErr := q.MarkJobFailed(ctx, &db.MarkJobFailedParams{ID: job.ID, LastError: &errMsg})
				if markErr != nil {
					slog.Error("failed to mark job failed", "job_id", job.ID, "error", markErr)
				} else if status == db.JobStatusFailed {
					slog.Warn("job exhausted retry budget", "kind", kind, "job_id", job.ID)
					if onExhausted != nil {
						if err := onExhausted(ctx, job.Payload); err != nil {
							slog.Error("exhausted-job hook failed", "kind", kind, "job_id", job.ID, "error", err)
						}
					}
				}
				continue
			}

			jobsSucceeded.WithLabelValues(kind).Inc()
			if err := q.MarkJobSucceeded(ctx, job.ID); err != nil {
				slog.Error("failed to mark job succeeded", "job_id", job.ID, "error", err)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-wake:
		case <-time.After(5 * time.Second):
		}
	}
}

// ListenAndSignal holds a LISTEN connection open and forwards notifications
// as non-blocking wake signals. Reconnects on any failure.
func ListenAndSignal(ctx context.Context, dsn string, signalCh chan<- struct{}) {
	for {
		if ctx.Err() != nil {
			return
		}

		// Parse using pgxpool so pool_* DSN params are consumed client-side
		// (otherwise they get forwarded to Postgres as startup params and cause FATAL).
		poolConf, err := pgxpool.ParseConfig(dsn)
		if err != nil {
			slog.Error("listen parse config failed", "error", err)
			time.Sleep(2 * time.Second)
			continue
		}

		conn, err := pgx.ConnectConfig(ctx, poolConf.ConnConfig)
		if err != nil {
			slog.Error("listen connect failed", "error", err)
			time.Sleep(2 * time.Second)
			continue
		}

		if err := db.New(conn).ListenJobs(ctx); err != nil {
			slog.Error("LISTEN failed", "channel", db.JobsChannel, "error", err)
			_ = conn.Close(ctx)
			time.Sleep(2 * time.Second)
			continue
		}

		for {
			if ctx.Err() != nil {
				_ = conn.Close(ctx)
				return
			}

			err := conn.PgConn().WaitForNotification(ctx)
			if err != nil {
				slog.Error("wait for notification failed", "channel", db.JobsChannel, "error", err)
				_ = conn.Close(ctx)
				break
			}

			select {
			case signalCh <- struct{}{}:
			default:
			}
		}
	}
}
