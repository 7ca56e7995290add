package common

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"
)

// Context keys set by the server's JWT middleware.
const (
	CtxUserUUID = "currentUserUUID"
	CtxAppUUID  = "currentAppUUID"
)

// RequireUUIDParam extracts a UUID route parameter or returns a 400 error.
func RequireUUIDParam(c echo.Context, param string) (pgtype.UUID, error) {
	var u pgtype.UUID
	if err := u.Scan(c.Param(param)); err != nil {
		return u, echo.NewHTTPError(http.StatusBadRequest, "invalid "+param)
	}
	return u, nil
}

// RequireUser extracts the authenticated user and their app from the
// context. Returns 401 when the JWT middleware did not run or rejected the
// token.
func RequireUser(c echo.Context) (userID, appID pgtype.UUID, err error) {
	u, ok := c.Get(CtxUserUUID).(pgtype.UUID)
	if !ok || !u.Valid {
		return pgtype.UUID{}, pgtype.UUID{}, ErrUnauthorized()
	}
	a, ok := c.Get(CtxAppUUID).(pgtype.UUID)
	if !ok || !a.Valid {
		return pgtype.UUID{}, pgtype.UUID{}, ErrUnauthorized()
	}
	return u, a, nil
}

// OptionalUser returns the viewer id when a valid token was presented, or an
// invalid UUID otherwise. Never errors.
func OptionalUser(c echo.Context) pgtype.UUID {
	if u, ok := c.Get(CtxUserUUID).(pgtype.UUID); ok {
		return u
	}
	return pgtype.UUID{}
}

// AppFromRequest resolves the tenant for endpoints that allow anonymous
// access: the app_id query param, then the X-App-Id header, then the JWT.
func AppFromRequest(c echo.Context) (pgtype.UUID, error) {
	raw := c.QueryParam("app_id")
	if raw == "" {
		raw = c.Request().Header.Get("X-App-Id")
	}
	if raw != "" {
		var u pgtype.UUID
		if err := u.Scan(raw); err != nil {
			return u, ErrBadRequest("invalid app id")
		}
		return u, nil
	}
	if a, ok := c.Get(CtxAppUUID).(pgtype.UUID); ok && a.Valid {
		return a, nil
	}
	return pgtype.UUID{}, ErrBadRequest("app id is required")
}
