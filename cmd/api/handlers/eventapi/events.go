// Package eventapi ingests and queries client telemetry events.
package eventapi

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"

	"github.com/loopreel/loopreel/cmd/api/handlers/common"
	"github.com/loopreel/loopreel/internal/db"
	"github.com/loopreel/loopreel/internal/event"
)

type logEventRequest struct {
	AppID            string         `json:"appId"`
	VideoID          string         `json:"videoId"`
	EventType        string         `json:"type"`
	EventName        string         `json:"eventName"`
	SchemaVersion    int32          `json:"schemaVersion"`
	RequestID        *string        `json:"requestId"`
	RankPosition     *int32         `json:"rankPosition"`
	FeedMode         *string        `json:"feedMode"`
	GestureDirection *string        `json:"gestureDirection"`
	GestureSource    *string        `json:"gestureSource"`
	Properties       map[string]any `json:"properties"`
}

type eventResponse struct {
	ID               string    `json:"id"`
	AppID            string    `json:"appId"`
	UserID           *string   `json:"userId,omitempty"`
	VideoID          *string   `json:"videoId,omitempty"`
	EventType        string    `json:"type"`
	EventName        string    `json:"eventName"`
	SchemaVersion    int32     `json:"schemaVersion"`
	RequestID        *string   `json:"requestId,omitempty"`
	RankPosition     *int32    `json:"rankPosition,omitempty"`
	FeedMode         *string   `json:"feedMode,omitempty"`
	GestureDirection *string   `json:"gestureDirection,omitempty"`
	GestureAction    *string   `json:"gestureAction,omitempty"`
	GestureSource    *string   `json:"gestureSource,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// HandleLog records one telemetry event. Anonymous clients may post; the
// tenant comes from the body, the X-App-Id header, or the token.
func HandleLog(svc *event.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req logEventRequest
		if err := c.Bind(&req); err != nil {
			return common.ErrBadRequest("malformed request body")
		}
		if req.EventType == "" || req.EventName == "" {
			return common.ErrBadRequest("type and eventName are required")
		}

		appID, err := resolveApp(c, req.AppID)
		if err != nil {
			return err
		}

		var videoID pgtype.UUID
		if req.VideoID != "" {
			videoID, err = db.ParseUUID(req.VideoID)
			if err != nil {
				return common.ErrBadRequest("invalid videoId")
			}
		}

		e, err := svc.Log(c.Request().Context(), &event.LogInput{
			AppID:            appID,
			UserID:           common.OptionalUser(c),
			VideoID:          videoID,
			EventType:        req.EventType,
			EventName:        req.EventName,
			SchemaVersion:    req.SchemaVersion,
			RequestID:        req.RequestID,
			RankPosition:     req.RankPosition,
			FeedMode:         req.FeedMode,
			GestureDirection: req.GestureDirection,
			GestureSource:    req.GestureSource,
			Properties:       req.Properties,
		})
		if err != nil {
			slog.Error("failed to log event", "error", err)
			return common.ErrInternal("failed to log event")
		}
		return c.JSON(http.StatusCreated, presentEvent(e))
	}
}

// HandleList queries stored events with optional filters. Requires auth.
func HandleList(svc *event.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		_, appID, err := common.RequireUser(c)
		if err != nil {
			return err
		}

		in := &event.ListInput{AppID: appID}
		if v := c.QueryParam("type"); v != "" {
			in.EventType = &v
		}
		if v := c.QueryParam("event_name"); v != "" {
			in.EventName = &v
		}
		if v := c.QueryParam("request_id"); v != "" {
			in.RequestID = &v
		}
		if v := c.QueryParam("gesture_direction"); v != "" {
			in.GestureDirection = &v
		}
		if v := c.QueryParam("video_id"); v != "" {
			id, err := db.ParseUUID(v)
			if err != nil {
				return common.ErrBadRequest("invalid video_id")
			}
			in.VideoID = id
		}
		if raw := c.QueryParam("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return common.ErrBadRequest("invalid limit")
			}
			in.Limit = int32(n)
		}

		events, err := svc.List(c.Request().Context(), in)
		if err != nil {
			slog.Error("failed to list events", "error", err)
			return common.ErrInternal("failed to list events")
		}

		out := make([]*eventResponse, 0, len(events))
		for _, e := range events {
			out = append(out, presentEvent(e))
		}
		return c.JSON(http.StatusOK, map[string]any{"events": out})
	}
}

func resolveApp(c echo.Context, bodyAppID string) (pgtype.UUID, error) {
	if bodyAppID != "" {
		id, err := db.ParseUUID(bodyAppID)
		if err != nil {
			return pgtype.UUID{}, common.ErrBadRequest("invalid appId")
		}
		return id, nil
	}
	return common.AppFromRequest(c)
}

func presentEvent(e *db.Event) *eventResponse {
	resp := &eventResponse{
		ID:               uuidStr(e.ID),
		AppID:            uuidStr(e.AppID),
		EventType:        e.EventType,
		EventName:        e.EventName,
		SchemaVersion:    e.SchemaVersion,
		RequestID:        e.RequestID,
		RankPosition:     e.RankPosition,
		FeedMode:         e.FeedMode,
		GestureDirection: e.GestureDirection,
		GestureSource:    e.GestureSource,
		CreatedAt:        e.CreatedAt.Time,
	}
	if e.UserID.Valid {
		s := uuidStr(e.UserID)
		resp.UserID = &s
	}
	if e.VideoID.Valid {
		s := uuidStr(e.VideoID)
		resp.VideoID = &s
	}
	if e.GestureDirection != nil {
		if action, ok := event.ActionFor(*e.GestureDirection); ok {
			resp.GestureAction = &action
		}
	}
	return resp
}

func uuidStr(id pgtype.UUID) string {
	v, err := id.Value()
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
