package store

import (
	"context"
	"time"
)

// Activity is a row of the local activity log.
type Activity struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Actor     string    `json:"actor"`
	IpAddress string    `json:"ip_address"`
	Client    string    `json:"client"`
	Country   string    `json:"country"`
	Metadata  string    `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}

const createActivity = `-- name: CreateActivity :one
INSERT INTO activity (level, category, message, actor, ip_address, client, country, metadata, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, level, category, message, actor, ip_address, client, country, metadata, created_at
`

type CreateActivityParams struct {
	Level     string    `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Actor     string    `json:"actor"`
	IpAddress string    `json:"ip_address"`
	Client    string    `json:"client"`
	Country   string    `json:"country"`
	Metadata  string    `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}

func (q *Queries) CreateActivity(ctx context.Context, arg CreateActivityParams) (Activity, error) {
	row := q.db.QueryRowContext(ctx, createActivity,
		arg.Level,
		arg.Category,
		arg.Message,
		arg.Actor,
		arg.IpAddress,
		arg.Client,
		arg.Country,
		arg.Metadata,
		arg.CreatedAt,
	)
	var i Activity
	err := row.Scan(
		&i.ID,
		&i.Level,
		&i.Category,
		&i.Message,
		&i.Actor,
		&i.IpAddress,
		&i.Client,
		&i.Country,
		&i.Metadata,
		&i.CreatedAt,
	)
	return i, err
}

const listActivity = `-- name: ListActivity :many
SELECT id, level, category, message, actor, ip_address, client, country, metadata, created_at FROM activity
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?
`

type ListActivityParams struct {
	Limit  int64 `json:"limit"`
	Offset int64 `json:"offset"`
}

func (q *Queries) ListActivity(ctx context.Context, arg ListActivityParams) ([]Activity, error) {
	rows, err := q.db.QueryContext(ctx, listActivity, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Activity
	for rows.Next() {
		var i Activity
		if err := rows.Scan(
			&i.ID,
			&i.Level,
			&i.Category,
			&i.Message,
			&i.Actor,
			&i.IpAddress,
			&i.Client,
			&i.Country,
			&i.Metadata,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countActivity = `-- name: CountActivity :one
SELECT COUNT(*) FROM activity
`

func (q *Queries) CountActivity(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countActivity)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const deleteActivityBefore = `-- name: DeleteActivityBefore :execrows
DELETE FROM activity WHERE created_at < ?
`

func (q *Queries) DeleteActivityBefore(ctx context.Context, createdAt time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteActivityBefore, createdAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
