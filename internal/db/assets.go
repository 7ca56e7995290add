package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const assetColumns = `id, app_id, video_id, asset_type, storage_provider, storage_key,
	cdn_url, mime_type, width, height, variant_label, is_primary, created_at`

func scanAsset(row interface{ Scan(dest ...any) error }) (*VideoAsset, error) {
	var a VideoAsset
	err := row.Scan(
		&a.ID, &a.AppID, &a.VideoID, &a.AssetType, &a.StorageProvider, &a.StorageKey,
		&a.CdnURL, &a.MimeType, &a.Width, &a.Height, &a.VariantLabel, &a.IsPrimary, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

const upsertVideoAsset = `
INSERT INTO video_assets (
	id, app_id, video_id, asset_type, storage_provider, storage_key,
	cdn_url, mime_type, width, height, variant_label, is_primary
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (video_id, asset_type, COALESCE(variant_label, ''))
DO UPDATE SET
	storage_key = EXCLUDED.storage_key,
	cdn_url = EXCLUDED.cdn_url,
	mime_type = EXCLUDED.mime_type,
	width = EXCLUDED.width,
	height = EXCLUDED.height,
	is_primary = EXCLUDED.is_primary
RETURNING ` + assetColumns

type UpsertVideoAssetParams struct {
	ID              pgtype.UUID
	AppID           pgtype.UUID
	VideoID         pgtype.UUID
	AssetType       AssetType
	StorageProvider string
	StorageKey      string
	CdnURL          string
	MimeType        string
	Width           *int32
	Height          *int32
	VariantLabel    *string
	IsPrimary       bool
}

// UpsertVideoAsset converges retried pipeline runs onto one row per
// (video, stage, variant) instead of duplicating assets.
func (q *Queries) UpsertVideoAsset(ctx context.Context, arg *UpsertVideoAssetParams) (*VideoAsset, error) {
	row := q.db.QueryRow(ctx, upsertVideoAsset,
		arg.ID, arg.AppID, arg.VideoID, arg.AssetType, arg.StorageProvider, arg.StorageKey,
		arg.CdnURL, arg.MimeType, arg.Width, arg.Height, arg.VariantLabel, arg.IsPrimary,
	)
	return scanAsset(row)
}

const demoteVideoAssets = `
UPDATE video_assets
SET is_primary = FALSE
WHERE video_id = $1 AND is_primary = TRUE
`

func (q *Queries) DemoteVideoAssets(ctx context.Context, videoID pgtype.UUID) error {
	_, err := q.db.Exec(ctx, demoteVideoAssets, videoID)
	return err
}

const listAssetsByVideo = `
SELECT ` + assetColumns + `
FROM video_assets
WHERE video_id = $1
ORDER BY created_at
`

func (q *Queries) ListAssetsByVideo(ctx context.Context, videoID pgtype.UUID) ([]*VideoAsset, error) {
	rows, err := q.db.Query(ctx, listAssetsByVideo, videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAssets(rows)
}

const listAssetsByVideos = `
SELECT ` + assetColumns + `
FROM video_assets
WHERE video_id = ANY($1)
ORDER BY video_id, created_at
`

// ListAssetsByVideos fetches assets for a whole feed page in one round trip.
func (q *Queries) ListAssetsByVideos(ctx context.Context, videoIDs []pgtype.UUID) ([]*VideoAsset, error) {
	rows, err := q.db.Query(ctx, listAssetsByVideos, videoIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAssets(rows)
}

const getAssetByID = `
SELECT ` + assetColumns + `
FROM video_assets
WHERE id = $1
`

func (q *Queries) GetAssetByID(ctx context.Context, id pgtype.UUID) (*VideoAsset, error) {
	return scanAsset(q.db.QueryRow(ctx, getAssetByID, id))
}

func collectAssets(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]*VideoAsset, error) {
	var assets []*VideoAsset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}
