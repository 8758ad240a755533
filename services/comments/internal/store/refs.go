package store

import "context"

// Author is the trimmed user projection embedded in tree and thread views.
type Author struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Role      string `json:"role,omitempty"`
}

// PostStore is the post-existence collaborator. Post CRUD lives elsewhere.
type PostStore interface {
	Exists(ctx context.Context, postID string) (bool, error)
}

// UserStore is the user collaborator: existence checks for authors and
// trimmed projections for author hydration. User CRUD lives elsewhere.
type UserStore interface {
	Exists(ctx context.Context, userID string) (bool, error)
	Projections(ctx context.Context, userIDs []string) (map[string]Author, error)
}
