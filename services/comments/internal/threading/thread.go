package threading

import (
	"sort"

	"github.com/example/forum-platform/services/comments/internal/store"
)

// ThreadEntry is one line of the flat thread rendering. Indentation is
// derived from Depth alone; no nesting.
type ThreadEntry struct {
	Comment     store.Comment `json:"comment"`
	Author      *store.Author `json:"author,omitempty"`
	Depth       int           `json:"depth"`
	ParentID    *string       `json:"parent_id,omitempty"`
	IsRoot      bool          `json:"is_root"`
	HasChildren bool          `json:"has_children"`
}

// BuildThread orders a flat list of comments depth-major: depth ascending,
// then created_at ascending within equal depth (stable, oldest first).
// The input is never mutated.
func BuildThread(comments []store.Comment, authors map[string]store.Author) []ThreadEntry {
	ordered := make([]store.Comment, len(comments))
	copy(ordered, comments)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Depth != ordered[j].Depth {
			return ordered[i].Depth < ordered[j].Depth
		}
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	entries := make([]ThreadEntry, 0, len(ordered))
	for _, c := range ordered {
		entries = append(entries, ThreadEntry{
			Comment:     c,
			Author:      authorFor(authors, c.AuthorID),
			Depth:       c.Depth,
			ParentID:    c.ParentID,
			IsRoot:      c.ParentID == nil,
			HasChildren: len(c.ChildIDs) > 0,
		})
	}
	return entries
}
