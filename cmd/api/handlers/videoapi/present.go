// Package videoapi handles video creation, mutation, and voting.
package videoapi

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/loopreel/loopreel/internal/db"
	"github.com/loopreel/loopreel/internal/taxonomy"
)

type assetResponse struct {
	ID           string       `json:"id"`
	AssetType    db.AssetType `json:"assetType"`
	URL          string       `json:"url"`
	MimeType     string       `json:"mimeType"`
	VariantLabel *string      `json:"variantLabel,omitempty"`
	IsPrimary    bool         `json:"isPrimary"`
}

type videoResponse struct {
	ID              string             `json:"id"`
	AppID           string             `json:"appId"`
	CreatorID       string             `json:"creatorId"`
	Status          db.VideoStatus     `json:"status"`
	Title           string             `json:"title"`
	Description     *string            `json:"description,omitempty"`
	DurationMs      int64              `json:"durationMs"`
	AspectRatio     *float64           `json:"aspectRatio,omitempty"`
	PrimaryCategory *taxonomy.Display  `json:"primaryCategory,omitempty"`
	Categories      []taxonomy.Display `json:"categories"`
	Topics          []taxonomy.Display `json:"topics"`
	Subjects        []taxonomy.Display `json:"subjects"`
	SecondaryLabels []string           `json:"secondaryLabels,omitempty"`
	IngestSource    *string            `json:"ingestSource,omitempty"`
	TaggingSource   *db.TaggingSource  `json:"taggingSource,omitempty"`
	PrimaryAssetID  *string            `json:"primaryAssetId,omitempty"`
	Assets          []assetResponse    `json:"assets,omitempty"`
	LikeCount       int64              `json:"likeCount"`
	UpVoteCount     int64              `json:"upVoteCount"`
	SuperVoteCount  int64              `json:"superVoteCount"`
	RankingScore    float64            `json:"rankingScore"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

// presentVideo builds the enriched response: resolved taxonomy displays and,
// when withAssets is set, the asset rows.
func presentVideo(ctx context.Context, q *db.Queries, v *db.Video, withAssets bool) (*videoResponse, error) {
	resolved, err := taxonomy.ResolveAll(ctx, q, v.AppID, []*db.Video{v})
	if err != nil {
		return nil, err
	}

	resp := &videoResponse{
		ID:              uuidStr(v.ID),
		AppID:           uuidStr(v.AppID),
		CreatorID:       uuidStr(v.CreatorID),
		Status:          v.Status,
		Title:           v.Title,
		Description:     v.Description,
		DurationMs:      v.DurationMs,
		AspectRatio:     v.AspectRatio,
		Categories:      taxonomy.DisplayFor(resolved, v.CategoryIDs),
		Topics:          taxonomy.DisplayFor(resolved, v.TopicIDs),
		Subjects:        taxonomy.DisplayFor(resolved, v.SubjectIDs),
		SecondaryLabels: v.SecondaryLabels,
		IngestSource:    v.IngestSource,
		TaggingSource:   v.TaggingSource,
		LikeCount:       v.LikeCount,
		UpVoteCount:     v.UpVoteCount,
		SuperVoteCount:  v.SuperVoteCount,
		RankingScore:    v.RankingScore,
		CreatedAt:       v.CreatedAt.Time,
		UpdatedAt:       v.UpdatedAt.Time,
	}

	if v.PrimaryCategoryID.Valid {
		if d, ok := resolved[uuidStr(v.PrimaryCategoryID)]; ok {
			resp.PrimaryCategory = &d
		}
	}
	if v.PrimaryAssetID.Valid {
		id := uuidStr(v.PrimaryAssetID)
		resp.PrimaryAssetID = &id
	}

	if withAssets {
		assets, err := q.ListAssetsByVideo(ctx, v.ID)
		if err != nil {
			return nil, err
		}
		resp.Assets = make([]assetResponse, 0, len(assets))
		for _, a := range assets {
			resp.Assets = append(resp.Assets, assetResponse{
				ID:           uuidStr(a.ID),
				AssetType:    a.AssetType,
				URL:          a.CdnURL,
				MimeType:     a.MimeType,
				VariantLabel: a.VariantLabel,
				IsPrimary:    a.IsPrimary,
			})
		}
	}

	return resp, nil
}

func uuidStr(id pgtype.UUID) string {
	v, err := id.Value()
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
