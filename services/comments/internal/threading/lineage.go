// Package threading is the pure computational core of the comment service:
// lineage derivation, tree and thread assembly, and edit/delete permission
// checks. Nothing here touches I/O or shared state.
package threading

import (
	"github.com/example/forum-platform/services/comments/internal/store"
)

// MaxDepth is the deepest nesting level a comment may occupy. A parent at
// MaxDepth cannot accept children; the lifecycle service rejects such creates.
const MaxDepth = 5

// Depth derives a new comment's depth from its resolved parent: 0 for a root,
// parent depth + 1 otherwise, clamped at MaxDepth. The clamp makes Depth total
// over any stored comment; attachment under a MaxDepth parent is rejected
// earlier, at creation time.
func Depth(parent *store.Comment) int {
	if parent == nil {
		return 0
	}
	if parent.Depth+1 > MaxDepth {
		return MaxDepth
	}
	return parent.Depth + 1
}

// Path derives a new comment's ancestor chain from its resolved parent:
// the parent's own chain plus the parent id, oldest ancestor first. Roots get
// an empty chain. The result is always a fresh slice.
func Path(parent *store.Comment) []string {
	if parent == nil {
		return []string{}
	}
	p := make([]string, 0, len(parent.Path)+1)
	p = append(p, parent.Path...)
	return append(p, parent.ID)
}
