// Package vote handles vote submission and the per-kind weight table.
package vote

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/loopreel/loopreel/internal/db"
)

// ErrNotFound covers both missing and cross-tenant videos.
var ErrNotFound = errors.New("video not found")

// ErrUnknownVoteType rejects caller input outside the closed vote-kind set.
var ErrUnknownVoteType = errors.New("unknown vote type")

// Weights per vote kind. The set is closed; WeightFor is exhaustive.
const (
	weightLike      = 1
	weightUpVote    = 3
	weightSuperVote = 10
)

// DefaultGestureSources are the gesture mappings clients use when they do
// not send an explicit source.
var DefaultGestureSources = map[db.VoteType]string{
	db.VoteTypeLike:      "double_tap",
	db.VoteTypeUpVote:    "triple_tap",
	db.VoteTypeSuperVote: "s_gesture",
}

func WeightFor(voteType db.VoteType) (int32, error) {
	switch voteType {
	case db.VoteTypeLike:
		return weightLike, nil
	case db.VoteTypeUpVote:
		return weightUpVote, nil
	case db.VoteTypeSuperVote:
		return weightSuperVote, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownVoteType, voteType)
	}
}

// ParseVoteType validates caller input against the closed enum.
func ParseVoteType(raw string) (db.VoteType, error) {
	vt := db.VoteType(raw)
	if _, err := WeightFor(vt); err != nil {
		return "", err
	}
	return vt, nil
}

type Service struct {
	dbc *db.DatabaseConnection
}

func NewService(dbc *db.DatabaseConnection) *Service {
	return &Service{dbc: dbc}
}

type CastInput struct {
	AppID         pgtype.UUID
	VideoID       pgtype.UUID
	UserID        pgtype.UUID
	VoteType      db.VoteType
	GestureSource *string
	RequestID     *string
	RankPosition  *int32
	FeedMode      *string
}

// Counts is the readback of all three counters after the increment.
type Counts struct {
	LikeCount      int64 `json:"likeCount"`
	UpVoteCount    int64 `json:"upVoteCount"`
	SuperVoteCount int64 `json:"superVoteCount"`
}

// Cast records a vote and bumps the matching counter inside one transaction,
// so the counters and the vote rows stay consistent under concurrency.
func (s *Service) Cast(ctx context.Context, in *CastInput) (*db.Vote, Counts, error) {
	weight, err := WeightFor(in.VoteType)
	if err != nil {
		return nil, Counts{}, err
	}

	gestureSource := in.GestureSource
	if gestureSource == nil {
		if src, ok := DefaultGestureSources[in.VoteType]; ok {
			gestureSource = &src
		}
	}

	qtx, tx, err := s.dbc.NewWithTX(ctx)
	if err != nil {
		return nil, Counts{}, fmt.Errorf("begin vote tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// Tenant scoping happens here: a cross-tenant video id matches nothing.
	if _, err := qtx.GetVideoByID(ctx, in.AppID, in.VideoID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, Counts{}, ErrNotFound
		}
		return nil, Counts{}, fmt.Errorf("load video: %w", err)
	}

	v, err := qtx.InsertVote(ctx, &db.InsertVoteParams{
		ID:            db.NewUUID(),
		AppID:         in.AppID,
		VideoID:       in.VideoID,
		UserID:        in.UserID,
		VoteType:      in.VoteType,
		GestureSource: gestureSource,
		RequestID:     in.RequestID,
		RankPosition:  in.RankPosition,
		FeedMode:      in.FeedMode,
		Weight:        weight,
	})
	if err != nil {
		return nil, Counts{}, fmt.Errorf("insert vote: %w", err)
	}

	like, up, super, err := qtx.IncrementVoteCounter(ctx, in.AppID, in.VideoID, in.VoteType)
	if err != nil {
		return nil, Counts{}, fmt.Errorf("increment counter: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, Counts{}, fmt.Errorf("commit vote: %w", err)
	}
	return v, Counts{LikeCount: like, UpVoteCount: up, SuperVoteCount: super}, nil
}
