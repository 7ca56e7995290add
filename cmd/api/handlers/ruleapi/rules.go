// Package ruleapi manages per-tenant ingest default rules: the classification
// applied to incoming videos that arrive untagged from a known source.
package ruleapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"

	"github.com/loopreel/loopreel/cmd/api/handlers/common"
	"github.com/loopreel/loopreel/internal/db"
	"github.com/loopreel/loopreel/internal/taxonomy"
)

type upsertRuleRequest struct {
	CategoryIDs []string `json:"categoryIds"`
	TopicIDs    []string `json:"topicIds"`
	SubjectIDs  []string `json:"subjectIds"`
}

type ruleResponse struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	CategoryIDs []string  `json:"categoryIds"`
	TopicIDs    []string  `json:"topicIds"`
	SubjectIDs  []string  `json:"subjectIds"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// HandleUpsert creates or replaces the default rule for one ingest source.
func HandleUpsert(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		_, appID, err := common.RequireUser(c)
		if err != nil {
			return err
		}
		source := c.Param("source")
		if source == "" {
			return common.ErrBadRequest("source is required")
		}

		var req upsertRuleRequest
		if err := c.Bind(&req); err != nil {
			return common.ErrBadRequest("malformed request body")
		}

		sets, verr := parseSets(&req)
		if !verr.Empty() {
			return common.MapServiceError(&verr)
		}

		q := dbc.Queries(c.Request().Context())
		if err := taxonomy.Validate(c.Request().Context(), q, appID, sets); err != nil {
			return common.MapServiceError(err)
		}

		rule, err := q.UpsertIngestDefaultRule(c.Request().Context(), &db.UpsertIngestDefaultRuleParams{
			ID:          db.NewUUID(),
			AppID:       appID,
			Source:      source,
			CategoryIDs: sets.CategoryIDs,
			TopicIDs:    sets.TopicIDs,
			SubjectIDs:  sets.SubjectIDs,
		})
		if err != nil {
			slog.Error("failed to upsert ingest rule", "error", err)
			return common.ErrInternal("failed to save rule")
		}
		return c.JSON(http.StatusOK, presentRule(rule))
	}
}

// HandleList returns all ingest default rules for the caller's tenant.
func HandleList(dbc *db.DatabaseConnection) echo.HandlerFunc {
	return func(c echo.Context) error {
		_, appID, err := common.RequireUser(c)
		if err != nil {
			return err
		}

		rules, err := dbc.Queries(c.Request().Context()).ListIngestDefaultRules(c.Request().Context(), appID)
		if err != nil {
			slog.Error("failed to list ingest rules", "error", err)
			return common.ErrInternal("failed to list rules")
		}

		out := make([]*ruleResponse, 0, len(rules))
		for _, r := range rules {
			out = append(out, presentRule(r))
		}
		return c.JSON(http.StatusOK, map[string]any{"rules": out})
	}
}

// parseSets reports unparseable ids through the same validation error shape
// as unknown ids, so clients see one failure mode.
func parseSets(req *upsertRuleRequest) (taxonomy.Sets, taxonomy.ValidationError) {
	var sets taxonomy.Sets
	var verr taxonomy.ValidationError
	sets.CategoryIDs, verr.InvalidCategoryIDs = parseIDList(req.CategoryIDs)
	sets.TopicIDs, verr.InvalidTopicIDs = parseIDList(req.TopicIDs)
	sets.SubjectIDs, verr.InvalidSubjectIDs = parseIDList(req.SubjectIDs)
	return sets, verr
}

func parseIDList(raw []string) (ids []pgtype.UUID, invalid []string) {
	for _, s := range raw {
		id, err := db.ParseUUID(s)
		if err != nil {
			invalid = append(invalid, s)
			continue
		}
		ids = append(ids, id)
	}
	return ids, invalid
}

func presentRule(r *db.IngestDefaultRule) *ruleResponse {
	return &ruleResponse{
		ID:          uuidStr(r.ID),
		Source:      r.Source,
		CategoryIDs: uuidStrs(r.CategoryIDs),
		TopicIDs:    uuidStrs(r.TopicIDs),
		SubjectIDs:  uuidStrs(r.SubjectIDs),
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
	}
}

func uuidStrs(ids []pgtype.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, uuidStr(id))
	}
	return out
}

func uuidStr(id pgtype.UUID) string {
	v, err := id.Value()
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
