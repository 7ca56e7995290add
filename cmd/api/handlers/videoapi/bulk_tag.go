package videoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/loopreel/loopreel/cmd/api/handlers/common"
	"github.com/loopreel/loopreel/internal/db"
	"github.com/loopreel/loopreel/internal/media"
)

type bulkTagRequest struct {
	VideoIDs      []string `json:"videoIds"`
	CategoryIDs   []string `json:"categoryIds"`
	TopicIDs      []string `json:"topicIds"`
	SubjectIDs    []string `json:"subjectIds"`
	TaggingSource *string  `json:"taggingSource"`
}

// HandleBulkTag applies classification to many videos at once, tenant-wide.
func HandleBulkTag(svc *media.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		_, appID, err := common.RequireUser(c)
		if err != nil {
			return err
		}

		var req bulkTagRequest
		if err := c.Bind(&req); err != nil {
			return common.ErrBadRequest("malformed request body")
		}
		if len(req.VideoIDs) == 0 {
			return common.ErrBadRequest("videoIds is required")
		}

		var taggingSource *db.TaggingSource
		if req.TaggingSource != nil {
			ts := db.TaggingSource(*req.TaggingSource)
			switch ts {
			case db.TaggingSourceManual, db.TaggingSourceRule, db.TaggingSourceAISuggested, db.TaggingSourceAIConfirmed:
				taggingSource = &ts
			default:
				return common.ErrBadRequest("invalid taggingSource")
			}
		}

		updated, err := svc.BulkTag(c.Request().Context(), &media.BulkTagInput{
			AppID:         appID,
			VideoIDs:      req.VideoIDs,
			CategoryIDs:   req.CategoryIDs,
			TopicIDs:      req.TopicIDs,
			SubjectIDs:    req.SubjectIDs,
			TaggingSource: taggingSource,
		})
		if err != nil {
			return common.MapServiceError(err)
		}

		return c.JSON(http.StatusOK, map[string]any{
			"updated": updated,
			"errors":  []string{},
		})
	}
}
