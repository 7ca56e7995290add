package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const insertEvent = `
INSERT INTO events (
	id, app_id, user_id, video_id, request_id, rank_position, feed_mode,
	event_type, event_name, schema_version, gesture_direction, gesture_source, properties
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING id, app_id, user_id, video_id, request_id, rank_position, feed_mode,
	event_type, event_name, schema_version, gesture_direction, gesture_source, properties, created_at
`

type InsertEventParams struct {
	ID               pgtype.UUID
	AppID            pgtype.UUID
	UserID           pgtype.UUID
	VideoID          pgtype.UUID
	RequestID        *string
	RankPosition     *int32
	FeedMode         *string
	EventType        string
	EventName        string
	SchemaVersion    int32
	GestureDirection *string
	GestureSource    *string
	Properties       []byte
}

func (q *Queries) InsertEvent(ctx context.Context, arg *InsertEventParams) (*Event, error) {
	row := q.db.QueryRow(ctx, insertEvent,
		arg.ID, arg.AppID, arg.UserID, arg.VideoID, arg.RequestID, arg.RankPosition, arg.FeedMode,
		arg.EventType, arg.EventName, arg.SchemaVersion, arg.GestureDirection, arg.GestureSource, arg.Properties,
	)
	return scanEvent(row)
}

const listEvents = `
SELECT id, app_id, user_id, video_id, request_id, rank_position, feed_mode,
	event_type, event_name, schema_version, gesture_direction, gesture_source, properties, created_at
FROM events
WHERE app_id = $1
  AND ($2::text IS NULL OR event_type = $2)
  AND ($3::text IS NULL OR event_name = $3)
  AND ($4::text IS NULL OR request_id = $4)
  AND ($5::uuid IS NULL OR video_id = $5)
  AND ($6::text IS NULL OR gesture_direction = $6)
ORDER BY created_at DESC
LIMIT $7
`

type ListEventsParams struct {
	AppID            pgtype.UUID
	EventType        *string
	EventName        *string
	RequestID        *string
	VideoID          pgtype.UUID
	GestureDirection *string
	Limit            int32
}

func (q *Queries) ListEvents(ctx context.Context, arg *ListEventsParams) ([]*Event, error) {
	var videoID any
	if arg.VideoID.Valid {
		videoID = arg.VideoID
	}
	rows, err := q.db.Query(ctx, listEvents,
		arg.AppID, arg.EventType, arg.EventName, arg.RequestID, videoID, arg.GestureDirection, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func scanEvent(row interface{ Scan(dest ...any) error }) (*Event, error) {
	var e Event
	err := row.Scan(&e.ID, &e.AppID, &e.UserID, &e.VideoID, &e.RequestID, &e.RankPosition, &e.FeedMode,
		&e.EventType, &e.EventName, &e.SchemaVersion, &e.GestureDirection, &e.GestureSource, &e.Properties, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
