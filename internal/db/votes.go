package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
)

const insertVote = `
INSERT INTO votes (
	id, app_id, video_id, user_id, vote_type, gesture_source,
	request_id, rank_position, feed_mode, weight
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id, app_id, video_id, user_id, vote_type, gesture_source,
	request_id, rank_position, feed_mode, weight, is_denied, deny_reason, created_at
`

type InsertVoteParams struct {
	ID            pgtype.UUID
	AppID         pgtype.UUID
	VideoID       pgtype.UUID
	UserID        pgtype.UUID
	VoteType      VoteType
	GestureSource *string
	RequestID     *string
	RankPosition  *int32
	FeedMode      *string
	Weight        int32
}

func (q *Queries) InsertVote(ctx context.Context, arg *InsertVoteParams) (*Vote, error) {
	row := q.db.QueryRow(ctx, insertVote,
		arg.ID, arg.AppID, arg.VideoID, arg.UserID, arg.VoteType, arg.GestureSource,
		arg.RequestID, arg.RankPosition, arg.FeedMode, arg.Weight,
	)
	var v Vote
	err := row.Scan(&v.ID, &v.AppID, &v.VideoID, &v.UserID, &v.VoteType, &v.GestureSource,
		&v.RequestID, &v.RankPosition, &v.FeedMode, &v.Weight, &v.IsDenied, &v.DenyReason, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// The counter column per vote kind is a closed set; anything else is a
// programming error, not caller input.
func counterColumn(voteType VoteType) (string, error) {
	switch voteType {
	case VoteTypeLike:
		return "like_count", nil
	case VoteTypeUpVote:
		return "up_vote_count", nil
	case VoteTypeSuperVote:
		return "super_vote_count", nil
	default:
		return "", fmt.Errorf("unknown vote type %q", voteType)
	}
}

// IncrementVoteCounter atomically bumps the counter for the given vote kind
// and returns the current counts.
func (q *Queries) IncrementVoteCounter(ctx context.Context, appID, videoID pgtype.UUID, voteType VoteType) (like, up, super int64, err error) {
	col, err := counterColumn(voteType)
	if err != nil {
		return 0, 0, 0, err
	}
	sql := fmt.Sprintf(`
UPDATE videos
SET %s = %s + 1, updated_at = now()
WHERE app_id = $1 AND id = $2
RETURNING like_count, up_vote_count, super_vote_count
`, col, col)
	row := q.db.QueryRow(ctx, sql, appID, videoID)
	err = row.Scan(&like, &up, &super)
	return like, up, super, err
}

const listViewerVotes = `
SELECT DISTINCT video_id, vote_type
FROM votes
WHERE user_id = $1 AND video_id = ANY($2)
`

type ViewerVote struct {
	VideoID  pgtype.UUID
	VoteType VoteType
}

// ListViewerVotes fetches one viewer's votes across a page of videos in one query.
func (q *Queries) ListViewerVotes(ctx context.Context, userID pgtype.UUID, videoIDs []pgtype.UUID) ([]*ViewerVote, error) {
	rows, err := q.db.Query(ctx, listViewerVotes, userID, videoIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var votes []*ViewerVote
	for rows.Next() {
		var v ViewerVote
		if err := rows.Scan(&v.VideoID, &v.VoteType); err != nil {
			return nil, err
		}
		votes = append(votes, &v)
	}
	return votes, rows.Err()
}
