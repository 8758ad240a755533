package threading

import (
	"github.com/example/forum-platform/services/comments/internal/store"
)

// TreeNode is a comment with its replies materialized recursively.
type TreeNode struct {
	Comment    store.Comment `json:"comment"`
	Author     *store.Author `json:"author,omitempty"`
	Children   []TreeNode    `json:"children"`
	ChildCount int           `json:"child_count"`
	IsRoot     bool          `json:"is_root"`
}

// BuildTree assembles a flat list of comments (one post's worth, any order)
// into a forest of root nodes. Children are resolved through the parent's
// child_ids registration order against the input set; ids that are not in the
// input are skipped, they belong to a different filter, not an error. Roots
// keep input order.
//
// A visited set guards the walk: each comment materializes at most once even
// if the stored parent_id/child_ids bookkeeping is inconsistent, so the walk
// always terminates and never duplicates a node.
func BuildTree(comments []store.Comment, authors map[string]store.Author) []TreeNode {
	byID := make(map[string]*store.Comment, len(comments))
	for i := range comments {
		byID[comments[i].ID] = &comments[i]
	}

	visited := make(map[string]bool, len(comments))

	var build func(c *store.Comment) TreeNode
	build = func(c *store.Comment) TreeNode {
		visited[c.ID] = true
		node := TreeNode{
			Comment:  *c,
			Author:   authorFor(authors, c.AuthorID),
			Children: []TreeNode{},
			IsRoot:   c.ParentID == nil,
		}
		for _, childID := range c.ChildIDs {
			child, ok := byID[childID]
			if !ok || visited[childID] {
				continue
			}
			node.Children = append(node.Children, build(child))
		}
		node.ChildCount = len(node.Children)
		return node
	}

	forest := []TreeNode{}
	for i := range comments {
		c := &comments[i]
		if c.ParentID != nil || visited[c.ID] {
			continue
		}
		forest = append(forest, build(c))
	}
	return forest
}

func authorFor(authors map[string]store.Author, authorID string) *store.Author {
	if a, ok := authors[authorID]; ok {
		return &a
	}
	return nil
}
