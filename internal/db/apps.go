package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const insertApp = `
INSERT INTO apps (id, name, slug)
VALUES ($1, $2, $3)
RETURNING id, name, slug, created_at, updated_at
`

type InsertAppParams struct {
	ID   pgtype.UUID
	Name string
	Slug string
}

func (q *Queries) InsertApp(ctx context.Context, arg *InsertAppParams) (*App, error) {
	row := q.db.QueryRow(ctx, insertApp, arg.ID, arg.Name, arg.Slug)
	var a App
	err := row.Scan(&a.ID, &a.Name, &a.Slug, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

const getAppByID = `
SELECT id, name, slug, created_at, updated_at
FROM apps
WHERE id = $1
`

func (q *Queries) GetAppByID(ctx context.Context, id pgtype.UUID) (*App, error) {
	row := q.db.QueryRow(ctx, getAppByID, id)
	var a App
	err := row.Scan(&a.ID, &a.Name, &a.Slug, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

const getAppBySlug = `
SELECT id, name, slug, created_at, updated_at
FROM apps
WHERE slug = $1
`

func (q *Queries) GetAppBySlug(ctx context.Context, slug string) (*App, error) {
	row := q.db.QueryRow(ctx, getAppBySlug, slug)
	var a App
	err := row.Scan(&a.ID, &a.Name, &a.Slug, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
