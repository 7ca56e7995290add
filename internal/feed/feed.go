// Package feed assembles the ranked, filtered video feed with keyset
// pagination.
package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/loopreel/loopreel/internal/db"
	"github.com/loopreel/loopreel/internal/taxonomy"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// thumbnailPreference is the fixed variant order for picking a display still.
var thumbnailPreference = []string{"5", "15", "30"}

type Service struct {
	dbc *db.DatabaseConnection
}

func NewService(dbc *db.DatabaseConnection) *Service {
	return &Service{dbc: dbc}
}

// Params scopes one feed page. Nil id slices leave that dimension
// unconstrained. Cursor is the id of the previous page's last item.
type Params struct {
	AppID       pgtype.UUID
	CategoryIDs []pgtype.UUID
	TopicIDs    []pgtype.UUID
	SubjectIDs  []pgtype.UUID
	Limit       int32
	Cursor      string
	ViewerID    pgtype.UUID
}

// ViewerState is only attached when a viewer id was supplied.
type ViewerState struct {
	HasLiked      bool `json:"hasLiked"`
	HasUpVoted    bool `json:"hasUpVoted"`
	HasSuperVoted bool `json:"hasSuperVoted"`
}

type Item struct {
	ID              string             `json:"id"`
	Title           string             `json:"title"`
	Description     *string            `json:"description,omitempty"`
	DurationMs      int64              `json:"durationMs"`
	AspectRatio     *float64           `json:"aspectRatio,omitempty"`
	VideoURL        string             `json:"videoUrl"`
	ThumbnailURL    string             `json:"thumbnailUrl,omitempty"`
	Categories      []taxonomy.Display `json:"categories"`
	Topics          []taxonomy.Display `json:"topics"`
	Subjects        []taxonomy.Display `json:"subjects"`
	SecondaryLabels []string           `json:"secondaryLabels,omitempty"`
	LikeCount       int64              `json:"likeCount"`
	UpVoteCount     int64              `json:"upVoteCount"`
	SuperVoteCount  int64              `json:"superVoteCount"`
	RankingScore    float64            `json:"rankingScore"`
	CreatedAt       time.Time          `json:"createdAt"`
	Viewer          *ViewerState       `json:"viewer,omitempty"`
}

type Page struct {
	Items      []Item  `json:"items"`
	NextCursor *string `json:"nextCursor"`
	HasMore    bool    `json:"hasMore"`
}

// Get returns one feed page: ready videos only, ranked, keyset-paged.
func (s *Service) Get(ctx context.Context, p *Params) (*Page, error) {
	q := s.dbc.Queries(ctx)
	limit := ClampLimit(p.Limit)

	arg := &db.ListFeedVideosParams{
		AppID:       p.AppID,
		CategoryIDs: p.CategoryIDs,
		TopicIDs:    p.TopicIDs,
		SubjectIDs:  p.SubjectIDs,
		Limit:       limit + 1,
	}

	if p.Cursor != "" {
		if err := s.resolveCursor(ctx, q, p, arg); err != nil {
			return nil, err
		}
	}

	videos, err := q.ListFeedVideos(ctx, arg)
	if err != nil {
		return nil, fmt.Errorf("list feed videos: %w", err)
	}

	hasMore := len(videos) > int(limit)
	if hasMore {
		videos = videos[:limit]
	}

	items, err := s.enrich(ctx, q, p, videos)
	if err != nil {
		return nil, err
	}

	page := &Page{Items: items, HasMore: hasMore}
	if hasMore && len(items) > 0 {
		last := items[len(items)-1].ID
		page.NextCursor = &last
	}
	return page, nil
}

// resolveCursor turns the opaque last-item id into a keyset tuple. A cursor
// pointing at a row that no longer exists restarts from the top rather than
// erroring, so stale clients keep working.
func (s *Service) resolveCursor(ctx context.Context, q *db.Queries, p *Params, arg *db.ListFeedVideosParams) error {
	cursorID, err := db.ParseUUID(p.Cursor)
	if err != nil {
		return nil
	}
	row, err := q.GetVideoByID(ctx, p.AppID, cursorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("resolve cursor: %w", err)
	}
	score := row.RankingScore
	arg.CursorRankingScore = &score
	arg.CursorCreatedAt = row.CreatedAt
	arg.CursorID = row.ID
	return nil
}

func (s *Service) enrich(ctx context.Context, q *db.Queries, p *Params, videos []*db.Video) ([]Item, error) {
	items := make([]Item, 0, len(videos))
	if len(videos) == 0 {
		return items, nil
	}

	videoIDs := make([]pgtype.UUID, len(videos))
	for i, v := range videos {
		videoIDs[i] = v.ID
	}

	assets, err := q.ListAssetsByVideos(ctx, videoIDs)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	assetsByVideo := make(map[string][]*db.VideoAsset)
	for _, a := range assets {
		key := uuidStr(a.VideoID)
		assetsByVideo[key] = append(assetsByVideo[key], a)
	}

	resolved, err := taxonomy.ResolveAll(ctx, q, p.AppID, videos)
	if err != nil {
		return nil, err
	}

	var viewerVotes map[string]*ViewerState
	if p.ViewerID.Valid {
		viewerVotes, err = s.viewerVotes(ctx, q, p.ViewerID, videoIDs)
		if err != nil {
			return nil, err
		}
	}

	for _, v := range videos {
		id := uuidStr(v.ID)
		va := assetsByVideo[id]

		item := Item{
			ID:              id,
			Title:           v.Title,
			Description:     v.Description,
			DurationMs:      v.DurationMs,
			AspectRatio:     v.AspectRatio,
			VideoURL:        primaryAssetURL(v, va),
			ThumbnailURL:    bestThumbnailURL(va),
			Categories:      taxonomy.DisplayFor(resolved, categoryIDsOf(v)),
			Topics:          taxonomy.DisplayFor(resolved, v.TopicIDs),
			Subjects:        taxonomy.DisplayFor(resolved, v.SubjectIDs),
			SecondaryLabels: v.SecondaryLabels,
			LikeCount:       v.LikeCount,
			UpVoteCount:     v.UpVoteCount,
			SuperVoteCount:  v.SuperVoteCount,
			RankingScore:    v.RankingScore,
			CreatedAt:       v.CreatedAt.Time,
		}
		if viewerVotes != nil {
			state := viewerVotes[id]
			if state == nil {
				state = &ViewerState{}
			}
			item.Viewer = state
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *Service) viewerVotes(ctx context.Context, q *db.Queries, viewerID pgtype.UUID, videoIDs []pgtype.UUID) (map[string]*ViewerState, error) {
	votes, err := q.ListViewerVotes(ctx, viewerID, videoIDs)
	if err != nil {
		return nil, fmt.Errorf("list viewer votes: %w", err)
	}
	out := make(map[string]*ViewerState)
	for _, v := range votes {
		key := uuidStr(v.VideoID)
		state := out[key]
		if state == nil {
			state = &ViewerState{}
			out[key] = state
		}
		switch v.VoteType {
		case db.VoteTypeLike:
			state.HasLiked = true
		case db.VoteTypeUpVote:
			state.HasUpVoted = true
		case db.VoteTypeSuperVote:
			state.HasSuperVoted = true
		}
	}
	return out, nil
}

// ClampLimit applies the default and the hard cap.
func ClampLimit(limit int32) int32 {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// primaryAssetURL follows the video's primary-asset pointer, whatever stage
// the pipeline has reached, with an is_primary fallback for the narrow
// window where the pointer lags.
func primaryAssetURL(v *db.Video, assets []*db.VideoAsset) string {
	for _, a := range assets {
		if v.PrimaryAssetID.Valid && a.ID == v.PrimaryAssetID {
			return a.CdnURL
		}
	}
	for _, a := range assets {
		if a.IsPrimary {
			return a.CdnURL
		}
	}
	return ""
}

// bestThumbnailURL picks the preferred pipeline still (5s > 15s > 30s), then
// any other thumbnail asset.
func bestThumbnailURL(assets []*db.VideoAsset) string {
	for _, pref := range thumbnailPreference {
		for _, a := range assets {
			if a.AssetType == db.AssetTypeThumbnail && a.VariantLabel != nil && *a.VariantLabel == pref {
				return a.CdnURL
			}
		}
	}
	for _, a := range assets {
		if a.AssetType == db.AssetTypeThumbnail {
			return a.CdnURL
		}
	}
	return ""
}

func categoryIDsOf(v *db.Video) []pgtype.UUID {
	if !v.PrimaryCategoryID.Valid {
		return v.CategoryIDs
	}
	for _, id := range v.CategoryIDs {
		if id == v.PrimaryCategoryID {
			return v.CategoryIDs
		}
	}
	out := make([]pgtype.UUID, 0, len(v.CategoryIDs)+1)
	out = append(out, v.PrimaryCategoryID)
	return append(out, v.CategoryIDs...)
}

func uuidStr(id pgtype.UUID) string {
	v, err := id.Value()
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
