package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const insertUser = `
INSERT INTO users (id, app_id, email, password_hash, display_name)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, app_id, email, password_hash, display_name, created_at, updated_at
`

type InsertUserParams struct {
	ID           pgtype.UUID
	AppID        pgtype.UUID
	Email        string
	PasswordHash string
	DisplayName  *string
}

func (q *Queries) InsertUser(ctx context.Context, arg *InsertUserParams) (*User, error) {
	row := q.db.QueryRow(ctx, insertUser,
		arg.ID, arg.AppID, arg.Email, arg.PasswordHash, arg.DisplayName)
	var u User
	err := row.Scan(&u.ID, &u.AppID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

const getUserByEmail = `
SELECT id, app_id, email, password_hash, display_name, created_at, updated_at
FROM users
WHERE app_id = $1 AND email = $2
`

func (q *Queries) GetUserByEmail(ctx context.Context, appID pgtype.UUID, email string) (*User, error) {
	row := q.db.QueryRow(ctx, getUserByEmail, appID, email)
	var u User
	err := row.Scan(&u.ID, &u.AppID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

const getUserByID = `
SELECT id, app_id, email, password_hash, display_name, created_at, updated_at
FROM users
WHERE id = $1
`

func (q *Queries) GetUserByID(ctx context.Context, id pgtype.UUID) (*User, error) {
	row := q.db.QueryRow(ctx, getUserByID, id)
	var u User
	err := row.Scan(&u.ID, &u.AppID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
