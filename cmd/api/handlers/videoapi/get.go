package videoapi

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/loopreel/loopreel/cmd/api/handlers/common"
	"github.com/loopreel/loopreel/internal/db"
	"github.com/loopreel/loopreel/internal/media"
)

func HandleGet(dbc *db.DatabaseConnection, svc *media.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		_, appID, err := common.RequireUser(c)
		if err != nil {
			return err
		}
		videoID, err := common.RequireUUIDParam(c, "id")
		if err != nil {
			return err
		}

		video, err := svc.Get(c.Request().Context(), appID, videoID)
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
