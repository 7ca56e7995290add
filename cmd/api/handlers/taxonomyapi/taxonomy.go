// Package taxonomyapi serves and manages the tenant's classification nodes.
package taxonomyapi

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/loopreel/loopreel/cmd/api/handlers/common"
	"github.com/loopreel/loopreel/internal/db"
	"github.com/loopreel/loopreel/internal/taxonomy"
)

type nodeResponse struct {
	ID   string          `json:"id"`
	Kind db.TaxonomyKind `json:"kind"`
	Name string          `json:"name"`
	Slug string          `json:"slug"`
}

func presentNodes(nodes []*db.TaxonomyNode) []nodeResponse {
	out := make([]nodeResponse, 0, len(nodes))
	for _, n := range nodes {
		id, _ := n.ID.Value()
		s, _ := id.(string)
		out = append(out, nodeResponse{ID: s, Kind: n.Kind, Name: n.Name, Slug: n.Slug})
	}
	return out
}

// HandleList returns every node for the tenant, all kinds.
func HandleList(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		appID, err := common.AppFromRequest(c)
		if err != nil {
			return err
		}
		nodes, err := dbc.Queries(c.Request().Context()).ListTaxonomyByApp(c.Request().Context(), appID)
		if err != nil {
			slog.Error("failed to list taxonomy", "error", err)
			return common.ErrInternal("failed to list taxonomy")
		}
		return c.JSON(http.StatusOK, map[string]any{"nodes": presentNodes(nodes)})
	}
}

// HandleListCategories returns category nodes only.
func HandleListCategories(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		appID, err := common.AppFromRequest(c)
		if err != nil {
			return err
		}
		nodes, err := dbc.Queries(c.Request().Context()).ListTaxonomyByKind(c.Request().Context(), appID, db.TaxonomyKindCategory)
		if err != nil {
			slog.Error("failed to list categories", "error", err)
			return common.ErrInternal("failed to list categories")
		}
		return c.JSON(http.StatusOK, map[string]any{"categories": presentNodes(nodes)})
	}
}

type createNodeRequest struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func HandleCreate(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		_, appID, err := common.RequireUser(c)
		if err != nil {
			return err
		}

		var req createNodeRequest
		if err := c.Bind(&req); err != nil {
			return common.ErrBadRequest("malformed request body")
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			return common.ErrBadRequest("name is required")
		}

		kind := db.TaxonomyKind(req.Kind)
		switch kind {
		case db.TaxonomyKindCategory, db.TaxonomyKindTopic, db.TaxonomyKindSubject:
		default:
			return common.ErrBadRequest("kind must be category, topic or subject")
		}

		if req.Slug == "" {
			req.Slug = taxonomy.Slugify(req.Name)
		}

		node, err := dbc.Queries(c.Request().Context()).InsertTaxonomyNode(c.Request().Context(), &db.InsertTaxonomyNodeParams{
			ID:    db.NewUUID(),
			AppID: appID,
			Kind:  kind,
			Name:  req.Name,
			Slug:  req.Slug,
		})
		if err != nil {
			if db.IsUniqueViolationErr(err) {
				return common.ErrBadRequest("slug already exists for this kind")
			}
			slog.Error("failed to insert taxonomy node", "error", err)
			return common.ErrInternal("failed to create node")
		}
		return c.JSON(http.StatusCreated, presentNodes([]*db.TaxonomyNode{node})[0])
	}
}
