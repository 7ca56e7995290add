// Package event records client telemetry: gesture interactions, feed
// impressions, playback markers.
package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/loopreel/loopreel/internal/db"
)

// GestureActions maps the eight swipe directions to their feed semantics.
// Unknown directions are stored as-is; the map exists for clients asking the
// backend what a direction means.
var GestureActions = map[string]string{
	"up":        "next",
	"down":      "previous",
	"left":      "back",
	"right":     "same_topic",
	"upLeft":    "restart",
	"upRight":   "same_category",
	"downLeft":  "inform",
	"downRight": "same_subject",
}

// ActionFor resolves a swipe direction to its feed action. Unknown directions
// resolve to nothing; the raw direction is still stored.
func ActionFor(direction string) (string, bool) {
	action, ok := GestureActions[direction]
	return action, ok
}

const defaultSchemaVersion = 1

type Service struct {
	dbc *db.DatabaseConnection
}

func NewService(dbc *db.DatabaseConnection) *Service {
	return &Service{dbc: dbc}
}

type LogInput struct {
	AppID            pgtype.UUID
	UserID           pgtype.UUID
	VideoID          pgtype.UUID
	EventType        string
	EventName        string
	SchemaVersion    int32
	RequestID        *string
	RankPosition     *int32
	FeedMode         *string
	GestureDirection *string
	GestureSource    *string
	Properties       map[string]any
}

// Log persists one telemetry event. EventType and EventName are required;
// everything else is optional context.
func (s *Service) Log(ctx context.Context, in *LogInput) (*db.Event, error) {
	if in.EventType == "" || in.EventName == "" {
		return nil, fmt.Errorf("event type and name are required")
	}

	schemaVersion := in.SchemaVersion
	if schemaVersion <= 0 {
		schemaVersion = defaultSchemaVersion
	}

	var properties []byte
	if len(in.Properties) > 0 {
		var err error
		properties, err = json.Marshal(in.Properties)
		if err != nil {
			return nil, fmt.Errorf("marshal event properties: %w", err)
		}
	}

	e, err := s.dbc.Queries(ctx).InsertEvent(ctx, &db.InsertEventParams{
		ID:               db.NewUUID(),
		AppID:            in.AppID,
		UserID:           in.UserID,
		VideoID:          in.VideoID,
		RequestID:        in.RequestID,
		RankPosition:     in.RankPosition,
		FeedMode:         in.FeedMode,
		EventType:        in.EventType,
		EventName:        in.EventName,
		SchemaVersion:    schemaVersion,
		GestureDirection: in.GestureDirection,
		GestureSource:    in.GestureSource,
		Properties:       properties,
	})
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return e, nil
}

type ListInput struct {
	AppID            pgtype.UUID
	EventType        *string
	EventName        *string
	RequestID        *string
	VideoID          pgtype.UUID
	GestureDirection *string
	Limit            int32
}

func (s *Service) List(ctx context.Context, in *ListInput) ([]*db.Event, error) {
	limit := in.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.dbc.Queries(ctx).ListEvents(ctx, &db.ListEventsParams{
		AppID:            in.AppID,
		EventType:        in.EventType,
		EventName:        in.EventName,
		RequestID:        in.RequestID,
		VideoID:          in.VideoID,
		GestureDirection: in.GestureDirection,
		Limit:            limit,
	})
}
