package authapi

import (
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"

	"github.com/loopreel/loopreel/cmd/api/handlers/common"
	"github.com/loopreel/loopreel/internal/auth"
	"github.com/loopreel/loopreel/internal/db"
)

type loginRequest struct {
	AppID    string `json:"appId"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func HandleLogin(dbc *db.DatabaseConnection, tokens *auth.Tokens) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req loginRequest
		if err := c.Bind(&req); err != nil {
			return common.ErrBadRequest("malformed request body")
		}

		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		appID, err := db.ParseUUID(req.AppID)
		if err != nil || req.Email == "" || req.Password == "" {
			return common.ErrBadRequest("appId, email and password are required")
		}

		user, err := dbc.Queries(c.Request().Context()).GetUserByEmail(c.Request().Context(), appID, req.Email)
		if err != nil {
			// Same response for unknown email and wrong password.
			return common.ErrUnauthorized()
		}

		ok, err := auth.VerifyPassword(req.Password, user.PasswordHash)
		if err != nil || !ok {
			return common.ErrUnauthorized()
		}

		return respondWithToken(c, http.StatusOK, tokens, user)
	}
}

func uuidStr(id pgtype.UUID) string {
	v, err := id.Value()
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
