package videoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/loopreel/loopreel/cmd/api/handlers/common"
	"github.com/loopreel/loopreel/internal/vote"
)

type voteRequest struct {
	VoteType      string  `json:"voteType"`
	GestureSource *string `json:"gestureSource"`
	RequestID     *string `json:"requestId"`
	RankPosition  *int32  `json:"rankPosition"`
	FeedMode      *string `json:"feedMode"`
}

type voteResponse struct {
	ID            string    `json:"id"`
	VideoID       string    `json:"videoId"`
	VoteType      string    `json:"voteType"`
	Weight        int32     `json:"weight"`
	GestureSource *string   `json:"gestureSource,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func HandleVote(svc *vote.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, appID, err := common.RequireUser(c)
		if err != nil {
			return err
		}
		videoID, err := common.RequireUUIDParam(c, "id")
		if err != nil {
			return err
		}

		var req voteRequest
		if err := c.Bind(&req); err != nil {
			return common.ErrBadRequest("malformed request body")
		}
		voteType, err := vote.ParseVoteType(req.VoteType)
		if err != nil {
			return common.MapServiceError(err)
		}

		v, counts, err := svc.Cast(c.Request().Context(), &vote.CastInput{
			AppID:         appID,
			VideoID:       videoID,
			UserID:        userID,
			VoteType:      voteType,
			GestureSource: req.GestureSource,
			RequestID:     req.RequestID,
			RankPosition:  req.RankPosition,
			FeedMode:      req.FeedMode,
		})
		if err != nil {
			return common.MapServiceError(err)
		}

		return c.JSON(http.StatusCreated, map[string]any{
			"vote": &voteResponse{
				ID:            uuidStr(v.ID),
				VideoID:       uuidStr(v.VideoID),
				VoteType:      string(v.VoteType),
				Weight:        v.Weight,
				GestureSource: v.GestureSource,
				CreatedAt:     v.CreatedAt.Time,
			},
			"counts": counts,
		})
	}
}
