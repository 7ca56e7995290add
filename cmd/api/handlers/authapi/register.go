// Package authapi handles registration and login for the JSON API.
package authapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/loopreel/loopreel/cmd/api/handlers/common"
	"github.com/loopreel/loopreel/internal/auth"
	"github.com/loopreel/loopreel/internal/db"
)

type registerRequest struct {
	AppID       string  `json:"appId"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	DisplayName *string `json:"displayName"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type userResponse struct {
	ID          string  `json:"id"`
	AppID       string  `json:"appId"`
	Email       string  `json:"email"`
	DisplayName *string `json:"displayName,omitempty"`
}

func HandleRegister(dbc *db.DatabaseConnection, tokens *auth.Tokens) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req registerRequest
		if err := c.Bind(&req); err != nil {
			return common.ErrBadRequest("malformed request body")
		}

		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if req.Email == "" {
			return common.ErrBadRequest("email is required")
		}

		appID, err := db.ParseUUID(req.AppID)
		if err != nil {
			return common.ErrBadRequest("invalid app id")
		}

		q := dbc.Queries(c.Request().Context())
		if _, err := q.GetAppByID(c.Request().Context(), appID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return common.ErrNotFound("app not found")
			}
			return common.ErrInternal("failed to look up app")
		}

		hash, err := auth.HashPassword(auth.PasswordInput{Password: req.Password})
		if err != nil {
			return common.ErrBadRequest("password must be between 8 and 512 characters")
		}

		user, err := q.InsertUser(c.Request().Context(), &db.InsertUserParams{
			ID:           db.NewUUID(),
			AppID:        appID,
			Email:        req.Email,
			PasswordHash: hash,
			DisplayName:  req.DisplayName,
		})
		if err != nil {
			if db.IsUniqueViolationErr(err) {
				return common.ErrBadRequest("email is already registered")
			}
			slog.Error("failed to insert user", "error", err)
			return common.ErrInternal("failed to register")
		}

		return respondWithToken(c, http.StatusCreated, tokens, user)
	}
}

func respondWithToken(c echo.Context, status int, tokens *auth.Tokens, user *db.User) error {
	token, err := tokens.Issue(uuidStr(user.ID), uuidStr(user.AppID))
	if err != nil {
		slog.Error("failed to issue token", "error", err)
		return common.ErrInternal("failed to issue token")
	}
	return c.JSON(status, authResponse{
		Token: token,
		User: userResponse{
			ID:          uuidStr(user.ID),
			AppID:       uuidStr(user.AppID),
			Email:       user.Email,
			DisplayName: user.DisplayName,
		},
	})
}
