package videoapi

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/loopreel/loopreel/cmd/api/handlers/common"
	"github.com/loopreel/loopreel/internal/db"
	"github.com/loopreel/loopreel/internal/media"
)

type createVideoRequest struct {
	Title             string   `json:"title"`
	Description       *string  `json:"description"`
	DurationMs        int64    `json:"durationMs"`
	PrimaryCategoryID string   `json:"primaryCategoryId"`
	CategoryIDs       []string `json:"categoryIds"`
	TopicIDs          []string `json:"topicIds"`
	SubjectIDs        []string `json:"subjectIds"`
	SecondaryLabels   []string `json:"secondaryLabels"`
	IngestSource      *string  `json:"ingestSource"`
	VideoURL          string   `json:"videoUrl"`
	VideoBase64       string   `json:"videoBase64"`
	ThumbnailBase64   string   `json:"thumbnailBase64"`
}

func HandleCreate(dbc *db.DatabaseConnection, svc *media.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, appID, err := common.RequireUser(c)
		if err != nil {
			return err
		}

		var req createVideoRequest
		if err := c.Bind(&req); err != nil {
			return common.ErrBadRequest("malformed request body")
		}
		if req.DurationMs <= 0 {
			return common.ErrBadRequest("durationMs is required")
		}
		if req.PrimaryCategoryID == "" {
			return common.ErrBadRequest("primaryCategoryId is required")
		}

		video, err := svc.Create(c.Request().Context(), &media.CreateVideoInput{
			AppID:             appID,
			CreatorID:         userID,
			Title:             req.Title,
			Description:       req.Description,
			DurationMs:        req.DurationMs,
			PrimaryCategoryID: req.PrimaryCategoryID,
			CategoryIDs:       req.CategoryIDs,
			TopicIDs:          req.TopicIDs,
			SubjectIDs:        req.SubjectIDs,
			SecondaryLabels:   req.SecondaryLabels,
			IngestSource:      req.IngestSource,
			VideoURL:          req.VideoURL,
			VideoBase64:       req.VideoBase64,
			ThumbnailBase64:   req.ThumbnailBase64,
		})
		if err != nil {
			return common.MapServiceError(err)
		}

		resp, err := presentVideo(c.Request().Context(), dbc.Queries(c.Request().Context()), video, false)
		if err != nil {
			slog.Error("failed to present video", "error", err)
			return common.ErrInternal("failed to render video")
		}
		return c.JSON(http.StatusCreated, resp)
	}
}
