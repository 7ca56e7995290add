package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/loopreel/loopreel/internal/db"
	"github.com/loopreel/loopreel/internal/storage"
	"github.com/loopreel/loopreel/pkg/ffmpeg"
)

const (
	mimeMP4      = "video/mp4"
	mimeManifest = "application/vnd.apple.mpegurl"
	mimeSegment  = "video/MP2T"
	mimePNG      = "image/png"

	storageProviderS3 = "s3"
)

// portraitAspect is the fixed target aspect ratio after segmented promotion.
const portraitAspect = 9.0 / 16.0

// thumbnailOffsetsSec are the fixed still-frame offsets.
var thumbnailOffsetsSec = []int{5, 15, 30}

// ThumbnailOffsets returns the offsets strictly inside the clip. A short
// source yields fewer than three stills; that is a valid outcome, not an
// error.
func ThumbnailOffsets(durationSeconds float64) []int {
	var out []int
	for _, sec := range thumbnailOffsetsSec {
		if float64(sec) < durationSeconds {
			out = append(out, sec)
		}
	}
	return out
}

// Pipeline runs the async transcode flow for one video: master upload and
// fast-ready flip, HLS transcode, thumbnail extraction, artifact upload, and
// segmented promotion. Steps run in order; a failure aborts later steps
// without rolling back earlier ones. Local scratch is always removed.
type Pipeline struct {
	dbc    *db.DatabaseConnection
	store  storage.BlobStore
	params ffmpeg.HLSParams
}

func NewPipeline(dbc *db.DatabaseConnection, store storage.BlobStore) *Pipeline {
	return &Pipeline{dbc: dbc, store: store, params: ffmpeg.DefaultHLSParams()}
}

func (p *Pipeline) Process(ctx context.Context, videoID, tenantID, sourcePath string) error {
	// The source file's parent directory is the cleanup unit, removed on
	// every exit path.
	defer func() {
		if err := os.RemoveAll(filepath.Dir(sourcePath)); err != nil {
			slog.Error("failed to remove scratch dir", "dir", filepath.Dir(sourcePath), "error", err)
		}
	}()

	appUUID, err := db.ParseUUID(tenantID)
	if err != nil {
		return fmt.Errorf("parse tenant id: %w", err)
	}
	videoUUID, err := db.ParseUUID(videoID)
	if err != nil {
		return fmt.Errorf("parse video id: %w", err)
	}

	q := p.dbc.Queries(ctx)
	video, err := q.GetVideoByID(ctx, appUUID, videoUUID)
	if err != nil {
		return fmt.Errorf("load video %s: %w", videoID, err)
	}

	log := slog.With("video_id", videoID, "app_id", tenantID)

	// Step 1: the master upload makes the video durable and feed-visible.
	if err := p.uploadMaster(ctx, q, appUUID, videoUUID, sourcePath); err != nil {
		return err
	}
	log.Info("video fast-ready with master asset")

	// Step 2: transcode to the portrait HLS rendition.
	hlsDir := filepath.Join(filepath.Dir(sourcePath), "hls")
	if _, err := ffmpeg.GenerateHLS(ctx, sourcePath, hlsDir, p.params); err != nil {
		return fmt.Errorf("transcode: %w", err)
	}

	// Step 3: extract stills. Probe the real duration; the client-supplied
	// one is a fallback.
	duration := float64(video.DurationMs) / 1000
	if d, probeErr := ffmpeg.ProbeDuration(ctx, sourcePath); probeErr == nil && d > 0 {
		duration = d
	}
	thumbs := make(map[int]string)
	for _, sec := range ThumbnailOffsets(duration) {
		out := filepath.Join(filepath.Dir(sourcePath), fmt.Sprintf("thumb_%d.png", sec))
		if err := ffmpeg.ExtractFrame(ctx, sourcePath, out, time.Duration(sec)*time.Second, p.params.Width, p.params.Height); err != nil {
			return fmt.Errorf("extract thumbnail at %ds: %w", sec, err)
		}
		thumbs[sec] = out
	}

	// Step 4: upload the manifest, every segment, and each extracted still.
	manifestURL, err := p.uploadHLS(ctx, tenantID, videoID, hlsDir)
	if err != nil {
		return err
	}
	if err := p.uploadThumbnails(ctx, q, appUUID, videoUUID, tenantID, videoID, thumbs); err != nil {
		return err
	}

	// Step 5: segmented promotion, transactional so readers never observe
	// zero or multiple primaries.
	if err := p.promoteSegmented(ctx, appUUID, videoUUID, tenantID, videoID, manifestURL); err != nil {
		return err
	}
	log.Info("video promoted to segmented stream", "thumbnails", len(thumbs))

	return nil
}

func (p *Pipeline) uploadMaster(ctx context.Context, q *db.Queries, appUUID, videoUUID pgtype.UUID, sourcePath string) error {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("read source file: %w", err)
	}

	key := MasterKey(uuidStr(appUUID), uuidStr(videoUUID))
	url, err := p.store.Put(ctx, key, data, mimeMP4)
	if err != nil {
		return fmt.Errorf("upload master: %w", err)
	}

	asset, err := q.UpsertVideoAsset(ctx, &db.UpsertVideoAssetParams{
		ID:              db.NewUUID(),
		AppID:           appUUID,
		VideoID:         videoUUID,
		AssetType:       db.AssetTypeMaster,
		StorageProvider: storageProviderS3,
		StorageKey:      key,
		CdnURL:          url,
		MimeType:        mimeMP4,
		IsPrimary:       true,
	})
	if err != nil {
		return fmt.Errorf("record master asset: %w", err)
	}

	if _, err := q.MarkVideoReady(ctx, appUUID, videoUUID, asset.ID); err != nil {
		return fmt.Errorf("mark video ready: %w", err)
	}
	return nil
}

func (p *Pipeline) uploadHLS(ctx context.Context, tenantID, videoID, hlsDir string) (string, error) {
	manifestPath := filepath.Join(hlsDir, "master.m3u8")
	manifest, err := os.ReadFile(manifestPath)
	if err != nil {
		return "", fmt.Errorf("read manifest: %w", err)
	}
	manifestURL, err := p.store.Put(ctx, HLSKey(tenantID, videoID, "master.m3u8"), manifest, mimeManifest)
	if err != nil {
		return "", fmt.Errorf("upload manifest: %w", err)
	}

	entries, err := os.ReadDir(hlsDir)
	if err != nil {
		return "", fmt.Errorf("read hls dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".ts") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(hlsDir, entry.Name()))
		if err != nil {
			return "", fmt.Errorf("read segment %s: %w", entry.Name(), err)
		}
		if _, err := p.store.Put(ctx, HLSKey(tenantID, videoID, entry.Name()), data, mimeSegment); err != nil {
			return "", fmt.Errorf("upload segment %s: %w", entry.Name(), err)
		}
	}
	return manifestURL, nil
}

func (p *Pipeline) uploadThumbnails(ctx context.Context, q *db.Queries, appUUID, videoUUID pgtype.UUID, tenantID, videoID string, thumbs map[int]string) error {
	for _, sec := range thumbnailOffsetsSec {
		path, ok := thumbs[sec]
		if !ok {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read thumbnail %ds: %w", sec, err)
		}

		key := ThumbnailKey(tenantID, videoID, sec)
		url, err := p.store.Put(ctx, key, data, mimePNG)
		if err != nil {
			return fmt.Errorf("upload thumbnail %ds: %w", sec, err)
		}

		variant := strconv.Itoa(sec)
		if _, err := q.UpsertVideoAsset(ctx, &db.UpsertVideoAssetParams{
			ID:              db.NewUUID(),
			AppID:           appUUID,
			VideoID:         videoUUID,
			AssetType:       db.AssetTypeThumbnail,
			StorageProvider: storageProviderS3,
			StorageKey:      key,
			CdnURL:          url,
			MimeType:        mimePNG,
			VariantLabel:    &variant,
		}); err != nil {
			return fmt.Errorf("record thumbnail %ds: %w", sec, err)
		}
	}
	return nil
}

func (p *Pipeline) promoteSegmented(ctx context.Context, appUUID, videoUUID pgtype.UUID, tenantID, videoID, manifestURL string) error {
	qtx, tx, err := p.dbc.NewWithTX(ctx)
	if err != nil {
		return fmt.Errorf("begin promotion tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := qtx.DemoteVideoAssets(ctx, videoUUID); err != nil {
		return fmt.Errorf("demote assets: %w", err)
	}

	width := int32(p.params.Width)
	height := int32(p.params.Height)
	asset, err := qtx.UpsertVideoAsset(ctx, &db.UpsertVideoAssetParams{
		ID:              db.NewUUID(),
		AppID:           appUUID,
		VideoID:         videoUUID,
		AssetType:       db.AssetTypeHLS,
		StorageProvider: storageProviderS3,
		StorageKey:      HLSKey(tenantID, videoID, "master.m3u8"),
		CdnURL:          manifestURL,
		MimeType:        mimeManifest,
		Width:           &width,
		Height:          &height,
		IsPrimary:       true,
	})
	if err != nil {
		return fmt.Errorf("record hls asset: %w", err)
	}

	aspect := portraitAspect
	if err := qtx.SetVideoPrimaryAsset(ctx, appUUID, videoUUID, asset.ID, &aspect); err != nil {
		return fmt.Errorf("point primary asset: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit promotion: %w", err)
	}
	return nil
}

func uuidStr(id pgtype.UUID) string {
	v, err := id.Value()
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
