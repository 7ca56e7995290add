package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const insertTaxonomyNode = `
INSERT INTO taxonomy_nodes (id, app_id, kind, name, slug)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, app_id, kind, name, slug, created_at
`

type InsertTaxonomyNodeParams struct {
	ID    pgtype.UUID
	AppID pgtype.UUID
	Kind  TaxonomyKind
	Name  string
	Slug  string
}

func (q *Queries) InsertTaxonomyNode(ctx context.Context, arg *InsertTaxonomyNodeParams) (*TaxonomyNode, error) {
	row := q.db.QueryRow(ctx, insertTaxonomyNode, arg.ID, arg.AppID, arg.Kind, arg.Name, arg.Slug)
	var n TaxonomyNode
	err := row.Scan(&n.ID, &n.AppID, &n.Kind, &n.Name, &n.Slug, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

const listTaxonomyByApp = `
SELECT id, app_id, kind, name, slug, created_at
FROM taxonomy_nodes
WHERE app_id = $1
ORDER BY kind, name
`

func (q *Queries) ListTaxonomyByApp(ctx context.Context, appID pgtype.UUID) ([]*TaxonomyNode, error) {
	rows, err := q.db.Query(ctx, listTaxonomyByApp, appID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTaxonomyNodes(rows)
}

const listTaxonomyByKind = `
SELECT id, app_id, kind, name, slug, created_at
FROM taxonomy_nodes
WHERE app_id = $1 AND kind = $2
ORDER BY name
`

func (q *Queries) ListTaxonomyByKind(ctx context.Context, appID pgtype.UUID, kind TaxonomyKind) ([]*TaxonomyNode, error) {
	rows, err := q.db.Query(ctx, listTaxonomyByKind, appID, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTaxonomyNodes(rows)
}

const selectTaxonomyMembers = `
SELECT id
FROM taxonomy_nodes
WHERE app_id = $1 AND kind = $2 AND id = ANY($3)
`

// SelectTaxonomyMembers returns the subset of the supplied ids that are
// members of this tenant's vocabulary of the given kind.
func (q *Queries) SelectTaxonomyMembers(ctx context.Context, appID pgtype.UUID, kind TaxonomyKind, ids []pgtype.UUID) ([]pgtype.UUID, error) {
	rows, err := q.db.Query(ctx, selectTaxonomyMembers, appID, kind, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var found []pgtype.UUID
	for rows.Next() {
		var id pgtype.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found = append(found, id)
	}
	return found, rows.Err()
}

const getTaxonomyByIDs = `
SELECT id, app_id, kind, name, slug, created_at
FROM taxonomy_nodes
WHERE app_id = $1 AND id = ANY($2)
`

// GetTaxonomyByIDs resolves display forms for a batch of ids in one query.
func (q *Queries) GetTaxonomyByIDs(ctx context.Context, appID pgtype.UUID, ids []pgtype.UUID) ([]*TaxonomyNode, error) {
	rows, err := q.db.Query(ctx, getTaxonomyByIDs, appID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTaxonomyNodes(rows)
}

func scanTaxonomyNodes(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]*TaxonomyNode, error) {
	var nodes []*TaxonomyNode
	for rows.Next() {
		var n TaxonomyNode
		if err := rows.Scan(&n.ID, &n.AppID, &n.Kind, &n.Name, &n.Slug, &n.CreatedAt); err != nil {
			return nil, err
		}
		nodes = append(nodes, &n)
	}
	return nodes, rows.Err()
}
