package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPostStore answers post existence from the posts table.
type PostgresPostStore struct {
	pool *pgxpool.Pool
}

func NewPostgresPostStore(pool *pgxpool.Pool) *PostgresPostStore {
	return &PostgresPostStore{pool: pool}
}

func (s *PostgresPostStore) Exists(ctx context.Context, postID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, postID).Scan(&exists)
	return exists, err
}

// PostgresUserStore answers user existence and author projections from the
// users table.
type PostgresUserStore struct {
	pool *pgxpool.Pool
}

func NewPostgresUserStore(pool *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{pool: pool}
}

func (s *PostgresUserStore) Exists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	return exists, err
}

func (s *PostgresUserStore) Projections(ctx context.Context, userIDs []string) (map[string]Author, error) {
	if len(userIDs) == 0 {
		return map[string]Author{}, nil
	}

	const q = `SELECT id::text, username, COALESCE(avatar_url, ''), role FROM users WHERE id = ANY($1)`
	rows, err := s.pool.Query(ctx, q, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]Author, len(userIDs))
	for rows.Next() {
		var a Author
		if err := rows.Scan(&a.ID, &a.Username, &a.AvatarURL, &a.Role); err != nil {
			return nil, err
		}
		out[a.ID] = a
	}
	return out, rows.Err()
}
