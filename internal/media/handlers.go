package media

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/loopreel/loopreel/internal/db"
	"github.com/loopreel/loopreel/internal/queue"
)

// ProcessVideoHandler returns the queue handler for process_video jobs.
func (s *Service) ProcessVideoHandler() queue.Handler {
	return func(ctx context.Context, payload []byte) error {
		var p queue.ProcessVideoPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("unmarshal process_video payload: %w", err)
		}
		return s.pipeline.Process(ctx, p.VideoID, p.TenantID, p.SourcePath)
	}
}

// ProcessVideoExhausted runs when a process_video job burns its whole retry
// budget. A row still stuck in processing means the master never became
// durable, so it is flipped to failed and any blobs the aborted runs left
// behind are removed; a row that already reached ready keeps its playable
// master and stays ready.
func (s *Service) ProcessVideoExhausted() queue.Handler {
	return func(ctx context.Context, payload []byte) error {
		var p queue.ProcessVideoPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("unmarshal process_video payload: %w", err)
		}
		appID, err := db.ParseUUID(p.TenantID)
		if err != nil {
			return err
		}
		videoID, err := db.ParseUUID(p.VideoID)
		if err != nil {
			return err
		}
		slog.Warn("video processing exhausted retries", "video_id", p.VideoID, "app_id", p.TenantID)
		failed, err := s.dbc.Queries(ctx).MarkVideoFailed(ctx, appID, videoID)
		if err != nil {
			return err
		}
		if failed {
			s.cleanupOrphanedBlobs(ctx, p.TenantID, p.VideoID)
		}
		return nil
	}
}

// cleanupOrphanedBlobs removes the blobs partial pipeline runs left behind.
// Best effort; a leftover blob is unreferenced, not harmful.
func (s *Service) cleanupOrphanedBlobs(ctx context.Context, tenantID, videoID string) {
	if s.store == nil {
		return
	}
	for _, key := range orphanedPipelineKeys(tenantID, videoID) {
		if err := s.store.Delete(ctx, key); err != nil {
			slog.Warn("failed to remove orphaned blob", "key", key, "error", err)
		}
	}
}

// orphanedPipelineKeys lists the deterministic storage keys partial pipeline
// runs may have written for a video that never reached ready.
func orphanedPipelineKeys(tenantID, videoID string) []string {
	keys := []string{
		MasterKey(tenantID, videoID),
		HLSKey(tenantID, videoID, "master.m3u8"),
	}
	for _, sec := range thumbnailOffsetsSec {
		keys = append(keys, ThumbnailKey(tenantID, videoID, sec))
	}
	return keys
}

// AfterVideoReadyHandler returns the queue handler for the post-ready tagging
// hook: backfill a manual provenance default when nothing else set one.
func (s *Service) AfterVideoReadyHandler() queue.Handler {
	return func(ctx context.Context, payload []byte) error {
		var p queue.AfterVideoReadyPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("unmarshal after_video_ready payload: %w", err)
		}
		appID, err := db.ParseUUID(p.TenantID)
		if err != nil {
			return err
		}
		videoID, err := db.ParseUUID(p.VideoID)
		if err != nil {
			return err
		}
		return s.dbc.Queries(ctx).DefaultVideoTaggingSource(ctx, appID, videoID)
	}
}
