package videoapi

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/loopreel/loopreel/cmd/api/handlers/common"
	"github.com/loopreel/loopreel/internal/db"
	"github.com/loopreel/loopreel/internal/media"
)

type updateVideoRequest struct {
	Title             *string  `json:"title"`
	Description       *string  `json:"description"`
	PrimaryCategoryID *string  `json:"primaryCategoryId"`
	CategoryIDs       []string `json:"categoryIds"`
	TopicIDs          []string `json:"topicIds"`
	SubjectIDs        []string `json:"subjectIds"`
	SecondaryLabels   []string `json:"secondaryLabels"`
	VideoBase64       string   `json:"videoBase64"`
	ThumbnailBase64   string   `json:"thumbnailBase64"`
}

// HandleUpdate is owner-only; anyone else gets the same 404 as a missing id.
func HandleUpdate(dbc *db.DatabaseConnection, svc *media.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, appID, err := common.RequireUser(c)
		if err != nil {
			return err
		}
		videoID, err := common.RequireUUIDParam(c, "id")
		if err != nil {
			return err
		}

		var req updateVideoRequest
		if err := c.Bind(&req); err != nil {
			return common.ErrBadRequest("malformed request body")
		}

		video, err := svc.Update(c.Request().Context(), &media.UpdateVideoInput{
			AppID:             appID,
			VideoID:           videoID,
			CallerID:          userID,
			Title:             req.Title,
			Description:       req.Description,
			PrimaryCategoryID: req.PrimaryCategoryID,
			CategoryIDs:       req.CategoryIDs,
			TopicIDs:          req.TopicIDs,
			SubjectIDs:        req.SubjectIDs,
			SecondaryLabels:   req.SecondaryLabels,
			VideoBase64:       req.VideoBase64,
			ThumbnailBase64:   req.ThumbnailBase64,
		})
		if err != nil {
			return common.MapServiceError(err)
		}

		resp, err := presentVideo(c.Request().Context(), dbc.Queries(c.Request().Context()), video, true)
		if err != nil {
			slog.Error("failed to present video", "error", err)
			return common.ErrInternal("failed to render video")
		}
		return c.JSON(http.StatusOK, resp)
	}
}
