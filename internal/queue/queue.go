// Package queue is a Postgres-backed durable job queue with a bounded
// in-process fallback for when the queue is unavailable at startup.
package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/loopreel/loopreel/internal/db"
)

const (
	KindProcessVideo    = "process_video"
	KindAfterVideoReady = "after_video_ready"
)

// ProcessVideoPayload drives one full pipeline run.
type ProcessVideoPayload struct {
	VideoID    string `json:"videoId"`
	TenantID   string `json:"tenantId"`
	SourcePath string `json:"sourcePath"`
}

// AfterVideoReadyPayload triggers the post-ready tagging hook.
type AfterVideoReadyPayload struct {
	VideoID  string `json:"videoId"`
	TenantID string `json:"tenantId"`
}

// Policy is the per-kind retry and concurrency budget.
type Policy struct {
	MaxAttempts int32
	BackoffBase time.Duration
	Concurrency int
}

func PolicyFor(kind string) Policy {
	switch kind {
	case KindProcessVideo:
		return Policy{MaxAttempts: 3, BackoffBase: 2 * time.Second, Concurrency: 2}
	case KindAfterVideoReady:
		return Policy{MaxAttempts: 2, BackoffBase: 1 * time.Second, Concurrency: 5}
	default:
		return Policy{MaxAttempts: 1, BackoffBase: time.Second, Concurrency: 1}
	}
}

// Dispatcher enqueues durable jobs. If the queue cannot be reached at
// startup it disables itself for the process lifetime and every Enqueue
// returns false; the caller must hand the work to a Fallback instead.
type Dispatcher struct {
	dbc      *db.DatabaseConnection
	disabled bool
}

func NewDispatcher(ctx context.Context, dbc *db.DatabaseConnection, disabled bool) *Dispatcher {
	d := &Dispatcher{dbc: dbc, disabled: disabled}
	if disabled {
		slog.Warn("job queue disabled by configuration; jobs will run inline")
		return d
	}
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := dbc.Exec(probeCtx, "SELECT 1 FROM jobs LIMIT 1"); err != nil {
		slog.Error("job queue unreachable at startup; disabling for process lifetime", "error", err)
		d.disabled = true
	}
	return d
}

// Enabled reports whether the durable queue accepted responsibility for jobs.
func (d *Dispatcher) Enabled() bool {
	return !d.disabled
}

// Enqueue persists a job with the kind's retry policy. Returns false when
// the queue is disabled; the caller then runs the work inline.
func (d *Dispatcher) Enqueue(ctx context.Context, kind string, payload any) bool {
	if d.disabled {
		return false
	}

	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("enqueue marshal failed", "kind", kind, "error", err)
		return false
	}

	policy := PolicyFor(kind)
	_, err = d.dbc.Queries(ctx).EnqueueJob(ctx, &db.EnqueueJobParams{
		ID:            db.NewUUID(),
		Kind:          kind,
		Payload:       body,
		MaxAttempts:   policy.MaxAttempts,
		BackoffBaseMs: int32(policy.BackoffBase.Milliseconds()),
	})
	if err != nil {
		slog.Error("enqueue failed", "kind", kind, "error", err)
		return false
	}

	jobsEnqueued.WithLabelValues(kind).Inc()
	return true
}
