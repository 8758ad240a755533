package threading

import (
	"time"

	"github.com/example/forum-platform/services/comments/internal/store"
)

// DefaultEditWindow is how long after creation the author may edit a comment.
const DefaultEditWindow = 24 * time.Hour

// Editable reports whether actorID may edit the comment at the given instant.
// Only the author, only while undeleted, and only within the window. Elapsed
// time exactly equal to the window still allows the edit.
func Editable(c store.Comment, actorID string, now time.Time, window time.Duration) bool {
	if c.AuthorID != actorID || c.IsDeleted {
		return false
	}
	return now.Sub(c.CreatedAt) <= window
}

// Deletable reports whether actorID may soft-delete the comment. Only the
// author, only once. Having children never blocks deletion: the tombstoned
// comment stays in the thread and keeps its children attached.
func Deletable(c store.Comment, actorID string) bool {
	return c.AuthorID == actorID && !c.IsDeleted
}
