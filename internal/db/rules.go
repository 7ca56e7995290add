package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const ruleColumns = `id, app_id, source, category_ids, topic_ids, subject_ids, created_at, updated_at`

const upsertIngestDefaultRule = `
INSERT INTO ingest_default_rules (id, app_id, source, category_ids, topic_ids, subject_ids)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (app_id, source)
DO UPDATE SET
	category_ids = EXCLUDED.category_ids,
	topic_ids = EXCLUDED.topic_ids,
	subject_ids = EXCLUDED.subject_ids,
	updated_at = now()
RETURNING ` + ruleColumns

type UpsertIngestDefaultRuleParams struct {
	ID          pgtype.UUID
	AppID       pgtype.UUID
	Source      string
	CategoryIDs []pgtype.UUID
	TopicIDs    []pgtype.UUID
	SubjectIDs  []pgtype.UUID
}

func (q *Queries) UpsertIngestDefaultRule(ctx context.Context, arg *UpsertIngestDefaultRuleParams) (*IngestDefaultRule, error) {
	row := q.db.QueryRow(ctx, upsertIngestDefaultRule,
		arg.ID, arg.AppID, arg.Source, arg.CategoryIDs, arg.TopicIDs, arg.SubjectIDs)
	return scanRule(row)
}

const getIngestDefaultRule = `
SELECT ` + ruleColumns + `
FROM ingest_default_rules
WHERE app_id = $1 AND source = $2
`

func (q *Queries) GetIngestDefaultRule(ctx context.Context, appID pgtype.UUID, source string) (*IngestDefaultRule, error) {
	return scanRule(q.db.QueryRow(ctx, getIngestDefaultRule, appID, source))
}

const listIngestDefaultRules = `
SELECT ` + ruleColumns + `
FROM ingest_default_rules
WHERE app_id = $1
ORDER BY source
`

func (q *Queries) ListIngestDefaultRules(ctx context.Context, appID pgtype.UUID) ([]*IngestDefaultRule, error) {
	rows, err := q.db.Query(ctx, listIngestDefaultRules, appID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*IngestDefaultRule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

func scanRule(row interface{ Scan(dest ...any) error }) (*IngestDefaultRule, error) {
	var r IngestDefaultRule
	err := row.Scan(&r.ID, &r.AppID, &r.Source, &r.CategoryIDs, &r.TopicIDs, &r.SubjectIDs, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
