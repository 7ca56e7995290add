// Package feedapi serves the ranked consumption feed.
package feedapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"

	"github.com/loopreel/loopreel/cmd/api/handlers/common"
	"github.com/loopreel/loopreel/internal/db"
	"github.com/loopreel/loopreel/internal/feed"
)

// HandleGet serves one feed page. Anonymous access is allowed; a valid token
// additionally attaches per-item viewer vote state.
func HandleGet(svc *feed.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		appID, err := common.AppFromRequest(c)
		if err != nil {
			return err
		}

		categoryIDs, err := uuidListParam(c, "category_ids", "category_id")
		if err != nil {
			return err
		}
		topicIDs, err := uuidListParam(c, "topic_ids", "topic_id")
		if err != nil {
			return err
		}
		subjectIDs, err := uuidListParam(c, "subject_ids", "subject_id")
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

		page, err := svc.Get(c.Request().Context(), &feed.Params{
			AppID:       appID,
			CategoryIDs: categoryIDs,
			TopicIDs:    topicIDs,
			SubjectIDs:  subjectIDs,
			Limit:       limit,
			Cursor:      c.QueryParam("cursor"),
			ViewerID:    common.OptionalUser(c),
		})
		if err != nil {
			return common.MapServiceError(err)
		}
		return c.JSON(http.StatusOK, page)
	}
}

// uuidListParam reads a comma-separated plural query param, falling back to
// the singular form some clients send.
func uuidListParam(c echo.Context, plural, singular string) ([]pgtype.UUID, error) {
	raw := c.QueryParam(plural)
	if raw == "" {
		raw = c.QueryParam(singular)
	}
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	out := make([]pgtype.UUID, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := db.ParseUUID(part)
		if err != nil {
			return nil, common.ErrBadRequest("invalid " + plural)
		}
		out = append(out, id)
	}
	return out, nil
}
