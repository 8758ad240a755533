package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// commentColumns is the canonical select list shared by every query.
const commentColumns = `id::text, post_id, author_id, parent_id, content, depth, path, child_ids,
	status, like_count, report_count, is_edited, is_deleted, deleted_at,
	mentioned_user_ids, edit_history, created_at, updated_at`

// PostgresCommentStore persists comments in Postgres.
type PostgresCommentStore struct {
	pool *pgxpool.Pool
}

// NewPostgresCommentStore creates a store backed by Postgres.
func NewPostgresCommentStore(pool *pgxpool.Pool) *PostgresCommentStore {
	return &PostgresCommentStore{pool: pool}
}

func (s *PostgresCommentStore) FindByID(ctx context.Context, id string) (Comment, error) {
	q := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`
	c, err := scanComment(s.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Comment{}, ErrNotFound
	}
	return c, err
}

func (s *PostgresCommentStore) FindByPost(ctx context.Context, postID string, includeDeleted bool) ([]Comment, error) {
	q := `SELECT ` + commentColumns + ` FROM comments WHERE post_id = $1`
	if !includeDeleted {
		q += ` AND is_deleted = false`
	}
	q += ` ORDER BY created_at ASC, id ASC`

	rows, err := s.pool.Query(ctx, q, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresCommentStore) Insert(ctx context.Context, c Comment) (Comment, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = StatusActive
	}
	if c.Path == nil {
		c.Path = []string{}
	}
	if c.ChildIDs == nil {
		c.ChildIDs = []string{}
	}
	if c.MentionedUserIDs == nil {
		c.MentionedUserIDs = []string{}
	}
	if c.EditHistory == nil {
		c.EditHistory = []EditRecord{}
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}

	q := `INSERT INTO comments
	        (id, post_id, author_id, parent_id, content, depth, path, child_ids, status, mentioned_user_ids, edit_history, created_at, updated_at)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	      RETURNING ` + commentColumns
	return scanComment(s.pool.QueryRow(ctx, q,
		c.ID, c.PostID, c.AuthorID, c.ParentID, c.Content, c.Depth, c.Path, c.ChildIDs,
		c.Status, c.MentionedUserIDs, c.EditHistory, c.CreatedAt, c.UpdatedAt))
}

// AppendChild registers a new child on the parent. Single-statement
// array_append, so concurrent sibling creations never lose a registration.
func (s *PostgresCommentStore) AppendChild(ctx context.Context, parentID, childID string) error {
	const q = `UPDATE comments SET child_ids = array_append(child_ids, $2) WHERE id = $1`
	tag, err := s.pool.Exec(ctx, q, parentID, childID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementCounter atomically bumps like_count or report_count.
func (s *PostgresCommentStore) IncrementCounter(ctx context.Context, id, field string, delta int) (Comment, error) {
	switch field {
	case CounterLikes, CounterReports:
	default:
		return Comment{}, ErrBadCounter
	}
	q := fmt.Sprintf(`UPDATE comments SET %s = %s + $2 WHERE id = $1 RETURNING `+commentColumns, field, field)
	c, err := scanComment(s.pool.QueryRow(ctx, q, id, delta))
	if errors.Is(err, pgx.ErrNoRows) {
		return Comment{}, ErrNotFound
	}
	return c, err
}

func (s *PostgresCommentStore) ApplyEdit(ctx context.Context, id string, patch EditPatch) (Comment, error) {
	q := `UPDATE comments
	      SET content = $2, mentioned_user_ids = $3, edit_history = $4,
	          is_edited = true, status = '` + StatusEdited + `', updated_at = $5
	      WHERE id = $1
	      RETURNING ` + commentColumns
	mentioned := patch.MentionedUserIDs
	if mentioned == nil {
		mentioned = []string{}
	}
	c, err := scanComment(s.pool.QueryRow(ctx, q, id, patch.Content, mentioned, patch.EditHistory, patch.UpdatedAt))
	if errors.Is(err, pgx.ErrNoRows) {
		return Comment{}, ErrNotFound
	}
	return c, err
}

func (s *PostgresCommentStore) SoftDelete(ctx context.Context, id string, d Deletion) (Comment, error) {
	q := `UPDATE comments
	      SET content = $2, status = $3, is_deleted = true, deleted_at = $4, updated_at = $4
	      WHERE id = $1
	      RETURNING ` + commentColumns
	c, err := scanComment(s.pool.QueryRow(ctx, q, id, d.Content, d.Status, d.DeletedAt))
	if errors.Is(err, pgx.ErrNoRows) {
		return Comment{}, ErrNotFound
	}
	return c, err
}

func scanComment(row pgx.Row) (Comment, error) {
	var (
		c         Comment
		deletedAt *time.Time
	)
	err := row.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.ParentID, &c.Content, &c.Depth, &c.Path, &c.ChildIDs,
		&c.Status, &c.LikeCount, &c.ReportCount, &c.IsEdited, &c.IsDeleted, &deletedAt,
		&c.MentionedUserIDs, &c.EditHistory, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Comment{}, err
	}
	c.DeletedAt = deletedAt
	return c, nil
}
