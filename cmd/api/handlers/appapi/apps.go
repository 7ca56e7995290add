// Package appapi manages the tenant registry.
package appapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/loopreel/loopreel/cmd/api/handlers/common"
	"github.com/loopreel/loopreel/internal/db"
	"github.com/loopreel/loopreel/internal/taxonomy"
)

type createAppRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type appResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func present(a *db.App) appResponse {
	id, _ := a.ID.Value()
	s, _ := id.(string)
	return appResponse{ID: s, Name: a.Name, Slug: a.Slug}
}

func HandleCreate(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req createAppRequest
		if err := c.Bind(&req); err != nil {
			return common.ErrBadRequest("malformed request body")
		}

		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			return common.ErrBadRequest("name is required")
		}
		if req.Slug == "" {
			req.Slug = taxonomy.Slugify(req.Name)
		}

		app, err := dbc.Queries(c.Request().Context()).InsertApp(c.Request().Context(), &db.InsertAppParams{
			ID:   db.NewUUID(),
			Name: req.Name,
			Slug: req.Slug,
		})
		if err != nil {
			if db.IsUniqueViolationErr(err) {
				return common.ErrBadRequest("slug is already taken")
			}
			slog.Error("failed to insert app", "error", err)
			return common.ErrInternal("failed to create app")
		}
		return c.JSON(http.StatusCreated, present(app))
	}
}

// HandleGet accepts either an id or a slug in the same path segment.
func HandleGet(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		q := dbc.Queries(c.Request().Context())
		idOrSlug := c.Param("idOrSlug")

		var app *db.App
		if id, err := db.ParseUUID(idOrSlug); err == nil {
			app, err = q.GetAppByID(c.Request().Context(), id)
			if err != nil && !errors.Is(err, pgx.ErrNoRows) {
				return common.ErrInternal("failed to look up app")
			}
		}
		if app == nil {
			var err error
			app, err = q.GetAppBySlug(c.Request().Context(), idOrSlug)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return common.ErrNotFound("app not found")
				}
				return common.ErrInternal("failed to look up app")
			}
		}
		return c.JSON(http.StatusOK, present(app))
	}
}
