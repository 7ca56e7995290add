package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/microcosm-cc/bluemonday"

	"github.com/loopreel/loopreel/internal/db"
	"github.com/loopreel/loopreel/internal/queue"
	"github.com/loopreel/loopreel/internal/storage"
	"github.com/loopreel/loopreel/internal/taxonomy"
)

// ErrStorageUnavailable means object storage is not configured; uploads
// cannot be accepted.
var ErrStorageUnavailable = errors.New("object storage is not configured")

// ErrNotFound covers missing videos and, deliberately, videos the caller is
// not allowed to see or mutate.
var ErrNotFound = errors.New("video not found")

// Service owns video creation, mutation, and the queue handlers that drive
// the pipeline. Store may be nil when storage is unconfigured; every upload
// path then fails with ErrStorageUnavailable.
type Service struct {
	dbc        *db.DatabaseConnection
	store      storage.BlobStore
	dispatcher *queue.Dispatcher
	fallback   *queue.Fallback
	pipeline   *Pipeline
	tmpDir     string
	sanitizer  *bluemonday.Policy
}

func NewService(dbc *db.DatabaseConnection, store storage.BlobStore, dispatcher *queue.Dispatcher, fallback *queue.Fallback, pipeline *Pipeline, tmpDir string) *Service {
	return &Service{
		dbc:        dbc,
		store:      store,
		dispatcher: dispatcher,
		fallback:   fallback,
		pipeline:   pipeline,
		tmpDir:     tmpDir,
		sanitizer:  bluemonday.StrictPolicy(),
	}
}

type CreateVideoInput struct {
	AppID             pgtype.UUID
	CreatorID         pgtype.UUID
	Title             string
	Description       *string
	DurationMs        int64
	PrimaryCategoryID string
	CategoryIDs       []string
	TopicIDs          []string
	SubjectIDs        []string
	SecondaryLabels   []string
	IngestSource      *string
	VideoURL          string
	VideoBase64       string
	ThumbnailBase64   string
}

// Create validates classification, inserts the row as processing, acquires
// the source into local scratch, and hands the pipeline to the queue (or the
// inline fallback when the queue is down). Returns the freshly inserted row,
// still status processing.
func (s *Service) Create(ctx context.Context, in *CreateVideoInput) (*db.Video, error) {
	// Fast precondition, before any validation I/O or file writes.
	if in.VideoURL == "" && in.VideoBase64 == "" {
		return nil, ErrNoSource
	}
	if s.store == nil {
		return nil, ErrStorageUnavailable
	}

	q := s.dbc.Queries(ctx)

	sets, ve := parseSets(in.PrimaryCategoryID, in.CategoryIDs, in.TopicIDs, in.SubjectIDs)
	if !ve.Empty() {
		return nil, ve
	}

	taggingSource := db.TaggingSource("")
	var taggingSourcePtr *db.TaggingSource
	if len(sets.CategoryIDs) == 0 && len(sets.TopicIDs) == 0 && len(sets.SubjectIDs) == 0 && in.IngestSource != nil {
		rule, err := q.GetIngestDefaultRule(ctx, in.AppID, *in.IngestSource)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			// No rule for this source; proceed unclassified.
		case err != nil:
			return nil, fmt.Errorf("lookup ingest rule: %w", err)
		default:
			sets.CategoryIDs = rule.CategoryIDs
			sets.TopicIDs = rule.TopicIDs
			sets.SubjectIDs = rule.SubjectIDs
			taggingSource = db.TaggingSourceRule
			taggingSourcePtr = &taggingSource
		}
	}

	if err := taxonomy.Validate(ctx, q, in.AppID, sets); err != nil {
		return nil, err
	}

	dir, path, err := AcquireSource(ctx, in.VideoBase64, in.VideoURL, s.tmpDir)
	if err != nil {
		return nil, err
	}

	video, err := q.InsertVideo(ctx, &db.InsertVideoParams{
		ID:                db.NewUUID(),
		AppID:             in.AppID,
		CreatorID:         in.CreatorID,
		Title:             s.sanitizer.Sanitize(in.Title),
		Description:       s.sanitizeOptional(in.Description),
		DurationMs:        in.DurationMs,
		PrimaryCategoryID: sets.PrimaryCategoryID,
		CategoryIDs:       sets.CategoryIDs,
		TopicIDs:          sets.TopicIDs,
		SubjectIDs:        sets.SubjectIDs,
		SecondaryLabels:   in.SecondaryLabels,
		IngestSource:      in.IngestSource,
		TaggingSource:     taggingSourcePtr,
	})
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("insert video: %w", err)
	}

	if in.ThumbnailBase64 != "" {
		if err := s.attachThumbnail(ctx, q, video, in.ThumbnailBase64); err != nil {
			_ = os.RemoveAll(dir)
			if _, failErr := q.MarkVideoFailed(ctx, video.AppID, video.ID); failErr != nil {
				slog.Error("failed to mark video failed", "video_id", uuidStr(video.ID), "error", failErr)
			}
			return nil, err
		}
	}

	s.runPipeline(ctx, video, path)
	s.runTaggingHook(ctx, video)

	return video, nil
}

// runPipeline enqueues the transcode job, or runs it on the bounded inline
// fallback when the queue did not accept it. The request path never waits.
func (s *Service) runPipeline(ctx context.Context, video *db.Video, sourcePath string) {
	payload := queue.ProcessVideoPayload{
		VideoID:    uuidStr(video.ID),
		TenantID:   uuidStr(video.AppID),
		SourcePath: sourcePath,
	}
	if s.dispatcher.Enqueue(ctx, queue.KindProcessVideo, payload) {
		return
	}
	s.fallback.Go(queue.KindProcessVideo, func(ctx context.Context) error {
		return s.pipeline.Process(ctx, payload.VideoID, payload.TenantID, payload.SourcePath)
	})
}

func (s *Service) runTaggingHook(ctx context.Context, video *db.Video) {
	payload := queue.AfterVideoReadyPayload{
		VideoID:  uuidStr(video.ID),
		TenantID: uuidStr(video.AppID),
	}
	if s.dispatcher.Enqueue(ctx, queue.KindAfterVideoReady, payload) {
		return
	}
	s.fallback.Go(queue.KindAfterVideoReady, func(ctx context.Context) error {
		return s.dbc.Queries(ctx).DefaultVideoTaggingSource(ctx, video.AppID, video.ID)
	})
}

type UpdateVideoInput struct {
	AppID             pgtype.UUID
	VideoID           pgtype.UUID
	CallerID          pgtype.UUID
	Title             *string
	Description       *string
	PrimaryCategoryID *string
	CategoryIDs       []string
	TopicIDs          []string
	SubjectIDs        []string
	SecondaryLabels   []string
	VideoBase64       string
	ThumbnailBase64   string
}

// Update applies a metadata/classification subset and optionally replaces the
// primary asset or adds a thumbnail, owner-only. A non-owner's attempt is
// indistinguishable from a missing video.
func (s *Service) Update(ctx context.Context, in *UpdateVideoInput) (*db.Video, error) {
	q := s.dbc.Queries(ctx)

	video, err := q.GetVideoForCreator(ctx, in.AppID, in.VideoID, in.CallerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load video: %w", err)
	}

	primary := ""
	if in.PrimaryCategoryID != nil {
		primary = *in.PrimaryCategoryID
	}
	sets, ve := parseSets(primary, in.CategoryIDs, in.TopicIDs, in.SubjectIDs)
	if !ve.Empty() {
		return nil, ve
	}
	if err := taxonomy.Validate(ctx, q, in.AppID, sets); err != nil {
		return nil, err
	}

	video, err = q.UpdateVideoMetadata(ctx, &db.UpdateVideoMetadataParams{
		AppID:             in.AppID,
		ID:                in.VideoID,
		CreatorID:         in.CallerID,
		Title:             s.sanitizeOptional(in.Title),
		Description:       s.sanitizeOptional(in.Description),
		PrimaryCategoryID: sets.PrimaryCategoryID,
		CategoryIDs:       sets.CategoryIDs,
		TopicIDs:          sets.TopicIDs,
		SubjectIDs:        sets.SubjectIDs,
		SecondaryLabels:   in.SecondaryLabels,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update video: %w", err)
	}

	if in.VideoBase64 != "" {
		if err := s.replacePrimaryVideo(ctx, video, in.VideoBase64); err != nil {
			return nil, err
		}
		video, err = q.GetVideoByID(ctx, in.AppID, in.VideoID)
		if err != nil {
			return nil, fmt.Errorf("reload video: %w", err)
		}
	}
	if in.ThumbnailBase64 != "" {
		if err := s.attachThumbnail(ctx, q, video, in.ThumbnailBase64); err != nil {
			return nil, err
		}
	}

	return video, nil
}

// replacePrimaryVideo uploads the replacement and repoints the primary asset
// in one transaction, skipping the transcode pipeline.
func (s *Service) replacePrimaryVideo(ctx context.Context, video *db.Video, payload string) error {
	if s.store == nil {
		return ErrStorageUnavailable
	}
	data, err := DecodeInline(payload)
	if err != nil {
		return err
	}

	blobID := db.NewUUID()
	key := ReplacementVideoKey(uuidStr(video.AppID), uuidStr(blobID))
	url, err := s.store.Put(ctx, key, data, mimeMP4)
	if err != nil {
		return fmt.Errorf("upload replacement video: %w", err)
	}

	qtx, tx, err := s.dbc.NewWithTX(ctx)
	if err != nil {
		return fmt.Errorf("begin replacement tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := qtx.DemoteVideoAssets(ctx, video.ID); err != nil {
		return fmt.Errorf("demote assets: %w", err)
	}

	variant := uuidStr(blobID)
	asset, err := qtx.UpsertVideoAsset(ctx, &db.UpsertVideoAssetParams{
		ID:              blobID,
		AppID:           video.AppID,
		VideoID:         video.ID,
		AssetType:       db.AssetTypeMaster,
		StorageProvider: storageProviderS3,
		StorageKey:      key,
		CdnURL:          url,
		MimeType:        mimeMP4,
		VariantLabel:    &variant,
		IsPrimary:       true,
	})
	if err != nil {
		return fmt.Errorf("record replacement asset: %w", err)
	}

	if err := qtx.SetVideoPrimaryAsset(ctx, video.AppID, video.ID, asset.ID, nil); err != nil {
		return fmt.Errorf("point primary asset: %w", err)
	}
	return tx.Commit(ctx)
}

// attachThumbnail uploads a caller-supplied still as a non-primary thumbnail
// asset with a fresh variant label.
func (s *Service) attachThumbnail(ctx context.Context, q *db.Queries, video *db.Video, payload string) error {
	if s.store == nil {
		return ErrStorageUnavailable
	}
	data, err := DecodeInline(payload)
	if err != nil {
		return err
	}

	blobID := db.NewUUID()
	key := ReplacementThumbnailKey(uuidStr(video.AppID), uuidStr(blobID))
	url, err := s.store.Put(ctx, key, data, mimePNG)
	if err != nil {
		return fmt.Errorf("upload thumbnail: %w", err)
	}

	variant := uuidStr(blobID)
	_, err = q.UpsertVideoAsset(ctx, &db.UpsertVideoAssetParams{
		ID:              blobID,
		AppID:           video.AppID,
		VideoID:         video.ID,
		AssetType:       db.AssetTypeThumbnail,
		StorageProvider: storageProviderS3,
		StorageKey:      key,
		CdnURL:          url,
		MimeType:        mimePNG,
		VariantLabel:    &variant,
	})
	if err != nil {
		return fmt.Errorf("record thumbnail asset: %w", err)
	}
	return nil
}

type BulkTagInput struct {
	AppID         pgtype.UUID
	VideoIDs      []string
	CategoryIDs   []string
	TopicIDs      []string
	SubjectIDs    []string
	TaggingSource *db.TaggingSource
}

// BulkTag applies classification sets to many videos, tenant-scoped (not
// creator-scoped). Any invalid taxonomy id fails the whole request with zero
// rows updated. Zero matching videos is a silent success.
func (s *Service) BulkTag(ctx context.Context, in *BulkTagInput) (int64, error) {
	q := s.dbc.Queries(ctx)

	sets, ve := parseSets("", in.CategoryIDs, in.TopicIDs, in.SubjectIDs)
	if !ve.Empty() {
		return 0, ve
	}
	if err := taxonomy.Validate(ctx, q, in.AppID, sets); err != nil {
		return 0, err
	}

	videoIDs := make([]pgtype.UUID, 0, len(in.VideoIDs))
	for _, raw := range in.VideoIDs {
		id, err := db.ParseUUID(raw)
		if err != nil {
			continue // unknown ids simply match nothing, same as cross-tenant ids
		}
		videoIDs = append(videoIDs, id)
	}
	if len(videoIDs) == 0 {
		return 0, nil
	}

	return q.BulkTagVideos(ctx, &db.BulkTagVideosParams{
		AppID:         in.AppID,
		VideoIDs:      videoIDs,
		CategoryIDs:   sets.CategoryIDs,
		TopicIDs:      sets.TopicIDs,
		SubjectIDs:    sets.SubjectIDs,
		TaggingSource: in.TaggingSource,
	})
}

// Get returns a video scoped to the tenant.
func (s *Service) Get(ctx context.Context, appID, videoID pgtype.UUID) (*db.Video, error) {
	video, err := s.dbc.Queries(ctx).GetVideoByID(ctx, appID, videoID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return video, nil
}

// parseSets parses raw id strings; unparseable ids land in the matching
// invalid list so callers get one consolidated validation error.
func parseSets(primaryCategoryID string, categoryIDs, topicIDs, subjectIDs []string) (taxonomy.Sets, *taxonomy.ValidationError) {
	var sets taxonomy.Sets
	var ve taxonomy.ValidationError

	if primaryCategoryID != "" {
		id, err := db.ParseUUID(primaryCategoryID)
		if err != nil {
			ve.InvalidCategoryIDs = append(ve.InvalidCategoryIDs, primaryCategoryID)
		} else {
			sets.PrimaryCategoryID = id
		}
	}
	sets.CategoryIDs = parseIDList(categoryIDs, &ve.InvalidCategoryIDs)
	sets.TopicIDs = parseIDList(topicIDs, &ve.InvalidTopicIDs)
	sets.SubjectIDs = parseIDList(subjectIDs, &ve.InvalidSubjectIDs)
	return sets, &ve
}

func parseIDList(raw []string, invalid *[]string) []pgtype.UUID {
	if len(raw) == 0 {
		return nil
	}
	out := make([]pgtype.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := db.ParseUUID(s)
		if err != nil {
			*invalid = append(*invalid, s)
			continue
		}
		out = append(out, id)
	}
	return out
}

func (s *Service) sanitizeOptional(v *string) *string {
	if v == nil {
		return nil
	}
	clean := s.sanitizer.Sanitize(*v)
	return &clean
}
