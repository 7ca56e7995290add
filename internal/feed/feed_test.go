package feed

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loopreel/loopreel/internal/db"
)

func TestClampLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int32
		want  int32
	}{
		{"zero gets default", 0, 50},
		{"negative gets default", -3, 50},
		{"within range", 20, 20},
		{"at cap", 100, 100},
		{"above cap", 500, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampLimit(tt.limit))
		})
	}
}

func thumbAsset(t *testing.T, variant, url string) *db.VideoAsset {
	t.Helper()
	return &db.VideoAsset{
		AssetType:    db.AssetTypeThumbnail,
		VariantLabel: &variant,
		CdnURL:       url,
	}
}

func TestBestThumbnailURL(t *testing.T) {
	t.Run("prefers five seconds", func(t *testing.T) {
		assets := []*db.VideoAsset{
			thumbAsset(t, "30", "u30"),
			thumbAsset(t, "5", "u5"),
			thumbAsset(t, "15", "u15"),
		}
		assert.Equal(t, "u5", bestThumbnailURL(assets))
	})

	t.Run("falls back down the preference order", func(t *testing.T) {
		assets := []*db.VideoAsset{
			thumbAsset(t, "30", "u30"),
			thumbAsset(t, "15", "u15"),
		}
		assert.Equal(t, "u15", bestThumbnailURL(assets))
	})

	t.Run("any thumbnail beats none", func(t *testing.T) {
		assets := []*db.VideoAsset{
			{AssetType: db.AssetTypeMaster, CdnURL: "master"},
			thumbAsset(t, "custom-x", "ucustom"),
		}
		assert.Equal(t, "ucustom", bestThumbnailURL(assets))
	})

	t.Run("no thumbnails", func(t *testing.T) {
		assert.Empty(t, bestThumbnailURL([]*db.VideoAsset{{AssetType: db.AssetTypeHLS}}))
	})
}

func TestPrimaryAssetURL(t *testing.T) {
	primaryID := db.NewUUID()
	otherID := db.NewUUID()

	video := &db.Video{PrimaryAssetID: primaryID}
	assets := []*db.VideoAsset{
		{ID: otherID, CdnURL: "old", IsPrimary: false},
		{ID: primaryID, CdnURL: "current", IsPrimary: true},
	}
	assert.Equal(t, "current", primaryAssetURL(video, assets))

	t.Run("pointer lag falls back to the flag", func(t *testing.T) {
		stale := &db.Video{PrimaryAssetID: db.NewUUID()}
		assert.Equal(t, "current", primaryAssetURL(stale, assets))
	})

	t.Run("no assets", func(t *testing.T) {
		assert.Empty(t, primaryAssetURL(video, nil))
	})
}

func TestCategoryIDsOf(t *testing.T) {
	primary := db.NewUUID()
	secondary := db.NewUUID()

	t.Run("primary prepended when absent from the set", func(t *testing.T) {
		v := &db.Video{PrimaryCategoryID: primary, CategoryIDs: []pgtype.UUID{secondary}}
		got := categoryIDsOf(v)
		require.Len(t, got, 2)
		assert.Equal(t, primary, got[0])
	})

	t.Run("no duplicate when already present", func(t *testing.T) {
		v := &db.Video{PrimaryCategoryID: primary, CategoryIDs: []pgtype.UUID{primary, secondary}}
		assert.Len(t, categoryIDsOf(v), 2)
	})

	t.Run("no primary", func(t *testing.T) {
		v := &db.Video{CategoryIDs: []pgtype.UUID{secondary}}
		assert.Len(t, categoryIDsOf(v), 1)
	})
}
