package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const videoColumns = `id, app_id, creator_id, status, title, description, duration_ms,
	aspect_ratio, primary_category_id, category_ids, topic_ids, subject_ids,
	secondary_labels, ingest_source, tagging_source, primary_asset_id,
	like_count, up_vote_count, super_vote_count, ranking_score, created_at, updated_at`

func scanVideo(row interface{ Scan(dest ...any) error }) (*Video, error) {
	var v Video
	err := row.Scan(
		&v.ID, &v.AppID, &v.CreatorID, &v.Status, &v.Title, &v.Description, &v.DurationMs,
		&v.AspectRatio, &v.PrimaryCategoryID, &v.CategoryIDs, &v.TopicIDs, &v.SubjectIDs,
		&v.SecondaryLabels, &v.IngestSource, &v.TaggingSource, &v.PrimaryAssetID,
		&v.LikeCount, &v.UpVoteCount, &v.SuperVoteCount, &v.RankingScore, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

const insertVideo = `
INSERT INTO videos (
	id, app_id, creator_id, status, title, description, duration_ms,
	primary_category_id, category_ids, topic_ids, subject_ids,
	secondary_labels, ingest_source, tagging_source
)
VALUES ($1, $2, $3, 'processing', $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING ` + videoColumns

type InsertVideoParams struct {
	ID                pgtype.UUID
	AppID             pgtype.UUID
	CreatorID         pgtype.UUID
	Title             string
	Description       *string
	DurationMs        int64
	PrimaryCategoryID pgtype.UUID
	CategoryIDs       []pgtype.UUID
	TopicIDs          []pgtype.UUID
	SubjectIDs        []pgtype.UUID
	SecondaryLabels   []string
	IngestSource      *string
	TaggingSource     *TaggingSource
}

func (q *Queries) InsertVideo(ctx context.Context, arg *InsertVideoParams) (*Video, error) {
	row := q.db.QueryRow(ctx, insertVideo,
		arg.ID, arg.AppID, arg.CreatorID, arg.Title, arg.Description, arg.DurationMs,
		arg.PrimaryCategoryID, arg.CategoryIDs, arg.TopicIDs, arg.SubjectIDs,
		arg.SecondaryLabels, arg.IngestSource, arg.TaggingSource,
	)
	return scanVideo(row)
}

const getVideoByID = `
SELECT ` + videoColumns + `
FROM videos
WHERE app_id = $1 AND id = $2
`

func (q *Queries) GetVideoByID(ctx context.Context, appID, id pgtype.UUID) (*Video, error) {
	return scanVideo(q.db.QueryRow(ctx, getVideoByID, appID, id))
}

const getVideoForCreator = `
SELECT ` + videoColumns + `
FROM videos
WHERE app_id = $1 AND id = $2 AND creator_id = $3
`

// GetVideoForCreator scopes by creator so a non-owner lookup is
// indistinguishable from a missing row.
func (q *Queries) GetVideoForCreator(ctx context.Context, appID, id, creatorID pgtype.UUID) (*Video, error) {
	return scanVideo(q.db.QueryRow(ctx, getVideoForCreator, appID, id, creatorID))
}

const markVideoReady = `
UPDATE videos
SET status = 'ready', primary_asset_id = $3, updated_at = now()
WHERE app_id = $1 AND id = $2
RETURNING ` + videoColumns

// MarkVideoReady performs the fast-ready flip once the master asset is durable.
func (q *Queries) MarkVideoReady(ctx context.Context, appID, id, primaryAssetID pgtype.UUID) (*Video, error) {
	return scanVideo(q.db.QueryRow(ctx, markVideoReady, appID, id, primaryAssetID))
}

const markVideoFailed = `
UPDATE videos
SET status = 'failed', updated_at = now()
WHERE app_id = $1 AND id = $2 AND status = 'processing'
`

// MarkVideoFailed is only applied to rows still stuck in processing, so a
// video that already reached ready keeps its playable master. Reports whether
// the row was flipped.
func (q *Queries) MarkVideoFailed(ctx context.Context, appID, id pgtype.UUID) (bool, error) {
	tag, err := q.db.Exec(ctx, markVideoFailed, appID, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

const setVideoPrimaryAsset = `
UPDATE videos
SET primary_asset_id = $3,
    aspect_ratio = COALESCE($4, aspect_ratio),
    updated_at = now()
WHERE app_id = $1 AND id = $2
`

func (q *Queries) SetVideoPrimaryAsset(ctx context.Context, appID, id, assetID pgtype.UUID, aspectRatio *float64) error {
	_, err := q.db.Exec(ctx, setVideoPrimaryAsset, appID, id, assetID, aspectRatio)
	return err
}

const updateVideoMetadata = `
UPDATE videos
SET title = COALESCE($4, title),
    description = COALESCE($5, description),
    primary_category_id = COALESCE($6, primary_category_id),
    category_ids = COALESCE($7, category_ids),
    topic_ids = COALESCE($8, topic_ids),
    subject_ids = COALESCE($9, subject_ids),
    secondary_labels = COALESCE($10, secondary_labels),
    tagging_source = COALESCE($11, tagging_source),
    updated_at = now()
WHERE app_id = $1 AND id = $2 AND creator_id = $3
RETURNING ` + videoColumns

type UpdateVideoMetadataParams struct {
	AppID             pgtype.UUID
	ID                pgtype.UUID
	CreatorID         pgtype.UUID
	Title             *string
	Description       *string
	PrimaryCategoryID pgtype.UUID
	CategoryIDs       []pgtype.UUID
	TopicIDs          []pgtype.UUID
	SubjectIDs        []pgtype.UUID
	SecondaryLabels   []string
	TaggingSource     *TaggingSource
}

func (q *Queries) UpdateVideoMetadata(ctx context.Context, arg *UpdateVideoMetadataParams) (*Video, error) {
	var primaryCategory any
	if arg.PrimaryCategoryID.Valid {
		primaryCategory = arg.PrimaryCategoryID
	}
	row := q.db.QueryRow(ctx, updateVideoMetadata,
		arg.AppID, arg.ID, arg.CreatorID,
		arg.Title, arg.Description, primaryCategory,
		arg.CategoryIDs, arg.TopicIDs, arg.SubjectIDs,
		arg.SecondaryLabels, arg.TaggingSource,
	)
	return scanVideo(row)
}

const bulkTagVideos = `
UPDATE videos
SET category_ids = COALESCE($3, category_ids),
    topic_ids = COALESCE($4, topic_ids),
    subject_ids = COALESCE($5, subject_ids),
    tagging_source = COALESCE($6, tagging_source),
    updated_at = now()
WHERE app_id = $1 AND id = ANY($2)
`

type BulkTagVideosParams struct {
	AppID         pgtype.UUID
	VideoIDs      []pgtype.UUID
	CategoryIDs   []pgtype.UUID
	TopicIDs      []pgtype.UUID
	SubjectIDs    []pgtype.UUID
	TaggingSource *TaggingSource
}

// BulkTagVideos is tenant-scoped, not creator-scoped. Zero matches is not an error.
func (q *Queries) BulkTagVideos(ctx context.Context, arg *BulkTagVideosParams) (int64, error) {
	tag, err := q.db.Exec(ctx, bulkTagVideos,
		arg.AppID, arg.VideoIDs, arg.CategoryIDs, arg.TopicIDs, arg.SubjectIDs, arg.TaggingSource)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const defaultVideoTaggingSource = `
UPDATE videos
SET tagging_source = 'manual', updated_at = now()
WHERE app_id = $1 AND id = $2 AND tagging_source IS NULL
`

// DefaultVideoTaggingSource backfills manual provenance after a video becomes
// ready if nothing else populated it.
func (q *Queries) DefaultVideoTaggingSource(ctx context.Context, appID, id pgtype.UUID) error {
	_, err := q.db.Exec(ctx, defaultVideoTaggingSource, appID, id)
	return err
}

const listVideosByCreator = `
SELECT ` + videoColumns + `
FROM videos
WHERE app_id = $1 AND creator_id = $2
  AND ($3::timestamptz IS NULL OR (created_at, id) < ($3, $4))
ORDER BY created_at DESC, id DESC
LIMIT $5
`

type ListVideosByCreatorParams struct {
	AppID           pgtype.UUID
	CreatorID       pgtype.UUID
	CursorCreatedAt pgtype.Timestamptz
	CursorID        pgtype.UUID
	Limit           int32
}

func (q *Queries) ListVideosByCreator(ctx context.Context, arg *ListVideosByCreatorParams) ([]*Video, error) {
	rows, err := q.db.Query(ctx, listVideosByCreator,
		arg.AppID, arg.CreatorID, arg.CursorCreatedAt, arg.CursorID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []*Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

const listFeedVideos = `
SELECT ` + videoColumns + `
FROM videos
WHERE app_id = $1 AND status = 'ready'
  AND ($2::uuid[] IS NULL OR category_ids && $2 OR primary_category_id = ANY($2))
  AND ($3::uuid[] IS NULL OR topic_ids && $3)
  AND ($4::uuid[] IS NULL OR subject_ids && $4)
  AND ($5::double precision IS NULL OR (ranking_score, created_at, id) < ($5, $6, $7))
ORDER BY ranking_score DESC, created_at DESC, id DESC
LIMIT $8
`

type ListFeedVideosParams struct {
	AppID              pgtype.UUID
	CategoryIDs        []pgtype.UUID // nil = unconstrained
	TopicIDs           []pgtype.UUID
	SubjectIDs         []pgtype.UUID
	CursorRankingScore *float64
	CursorCreatedAt    pgtype.Timestamptz
	CursorID           pgtype.UUID
	Limit              int32
}

// ListFeedVideos only ever sees ready rows. Filters use array overlap per
// dimension, ANDed across dimensions.
func (q *Queries) ListFeedVideos(ctx context.Context, arg *ListFeedVideosParams) ([]*Video, error) {
	rows, err := q.db.Query(ctx, listFeedVideos,
		arg.AppID, arg.CategoryIDs, arg.TopicIDs, arg.SubjectIDs,
		arg.CursorRankingScore, arg.CursorCreatedAt, arg.CursorID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []*Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}
