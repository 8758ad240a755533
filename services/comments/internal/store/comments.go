package store

import (
	"context"
	"errors"
	"time"
)

// Comment lifecycle statuses.
const (
	StatusActive  = "active"
	StatusEdited  = "edited"
	StatusDeleted = "deleted"
)

// Tombstone replaces the content of a soft-deleted comment.
const Tombstone = "[deleted]"

// Counter columns accepted by IncrementCounter.
const (
	CounterLikes   = "like_count"
	CounterReports = "report_count"
)

// EditRecord is one entry of a comment's edit history, appended on every
// content edit with the content that was replaced.
type EditRecord struct {
	EditedAt        time.Time `json:"edited_at"`
	PreviousContent string    `json:"previous_content"`
}

// Comment is a single comment row. Threads are stored flat: every comment
// carries its parent id, the full ancestor chain (path, root first) and the
// ids of its direct children in registration order. Depth and path are fixed
// at creation; later operations only touch content, flags, counters and
// timestamps.
type Comment struct {
	ID               string       `json:"id"`
	PostID           string       `json:"post_id"`
	AuthorID         string       `json:"author_id"`
	ParentID         *string      `json:"parent_id,omitempty"`
	Content          string       `json:"content"`
	Depth            int          `json:"depth"`
	Path             []string     `json:"path"`
	ChildIDs         []string     `json:"child_ids"`
	Status           string       `json:"status"`
	LikeCount        int          `json:"like_count"`
	ReportCount      int          `json:"report_count"`
	IsEdited         bool         `json:"is_edited"`
	IsDeleted        bool         `json:"is_deleted"`
	DeletedAt        *time.Time   `json:"deleted_at,omitempty"`
	MentionedUserIDs []string     `json:"mentioned_user_ids,omitempty"`
	EditHistory      []EditRecord `json:"edit_history,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// EditPatch is the mutation applied by a content edit.
type EditPatch struct {
	Content          string
	MentionedUserIDs []string
	EditHistory      []EditRecord
	UpdatedAt        time.Time
}

// Deletion is the mutation applied by a soft delete. Children stay attached.
type Deletion struct {
	DeletedAt time.Time
	Status    string
	Content   string
}

// CommentStore defines the contract for comment persistence.
//
// AppendChild and IncrementCounter must be atomic single-statement updates:
// concurrent sibling creations and concurrent likes race only inside the
// store, never at the service layer.
type CommentStore interface {
	FindByID(ctx context.Context, id string) (Comment, error)
	FindByPost(ctx context.Context, postID string, includeDeleted bool) ([]Comment, error)
	Insert(ctx context.Context, c Comment) (Comment, error)
	AppendChild(ctx context.Context, parentID, childID string) error
	IncrementCounter(ctx context.Context, id, field string, delta int) (Comment, error)
	ApplyEdit(ctx context.Context, id string, patch EditPatch) (Comment, error)
	SoftDelete(ctx context.Context, id string, d Deletion) (Comment, error)
}

// Sentinel errors
var (
	ErrNotFound   = errors.New("not found")
	ErrBadCounter = errors.New("unknown counter field")
)
