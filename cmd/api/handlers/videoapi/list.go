package videoapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/loopreel/loopreel/cmd/api/handlers/common"
	"github.com/loopreel/loopreel/internal/db"
	"github.com/loopreel/loopreel/internal/feed"
)

// HandleList returns the caller's own videos, newest first, cursor-paged by
// the previous page's last id.
func HandleList(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, appID, err := common.RequireUser(c)
		if err != nil {
			return err
		}

		limit := int32(0)
		if raw := c.QueryParam("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return common.ErrBadRequest("invalid limit")
			}
			limit = int32(n)
		}
		limit = feed.ClampLimit(limit)

		q := dbc.Queries(c.Request().Context())
		arg := &db.ListVideosByCreatorParams{
			AppID:     appID,
			CreatorID: userID,
			Limit:     limit + 1,
		}

		if cursor := c.QueryParam("cursor"); cursor != "" {
			if cursorID, err := db.ParseUUID(cursor); err == nil {
				row, err := q.GetVideoByID(c.Request().Context(), appID, cursorID)
				switch {
				case err == nil:
					arg.CursorCreatedAt = row.CreatedAt
					arg.CursorID = row.ID
				case !errors.Is(err, pgx.ErrNoRows):
					slog.Error("failed to resolve cursor", "error", err)
					return common.ErrInternal("failed to list videos")
				}
			}
		}

		videos, err := q.ListVideosByCreator(c.Request().Context(), arg)
		if err != nil {
			slog.Error("failed to list videos", "error", err)
			return common.ErrInternal("failed to list videos")
		}

		hasMore := len(videos) > int(limit)
		if hasMore {
			videos = videos[:limit]
		}

		items := make([]*videoResponse, 0, len(videos))
		for _, v := range videos {
			resp, err := presentVideo(c.Request().Context(), q, v, false)
			if err != nil {
				slog.Error("failed to present video", "error", err)
				return common.ErrInternal("failed to list videos")
			}
			items = append(items, resp)
		}

		var nextCursor *string
		if hasMore && len(items) > 0 {
			nextCursor = &items[len(items)-1].ID
		}
		return c.JSON(http.StatusOK, map[string]any{
			"items":      items,
			"nextCursor": nextCursor,
			"hasMore":    hasMore,
		})
	}
}
