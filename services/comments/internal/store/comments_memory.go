package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryCommentStore is a development-only in-memory implementation.
type InMemoryCommentStore struct {
	mu       sync.RWMutex
	comments map[string]Comment // id -> comment
	order    []string           // insertion order of ids
}

func NewInMemoryCommentStore() *InMemoryCommentStore {
	return &InMemoryCommentStore{
		comments: make(map[string]Comment),
	}
}

func (s *InMemoryCommentStore) FindByID(_ context.Context, id string) (Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return Comment{}, ErrNotFound
	}
	return cloneComment(c), nil
}

func (s *InMemoryCommentStore) FindByPost(_ context.Context, postID string, includeDeleted bool) ([]Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Comment{}
	for _, id := range s.order {
		c := s.comments[id]
		if c.PostID != postID {
			continue
		}
		if c.IsDeleted && !includeDeleted {
			continue
		}
		out = append(out, cloneComment(c))
	}
	return out, nil
}

func (s *InMemoryCommentStore) Insert(_ context.Context, c Comment) (Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
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
	s.comments[c.ID] = cloneComment(c)
	s.order = append(s.order, c.ID)
	return c, nil
}

func (s *InMemoryCommentStore) AppendChild(_ context.Context, parentID, childID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.comments[parentID]
	if !ok {
		return ErrNotFound
	}
	p.ChildIDs = append(p.ChildIDs, childID)
	s.comments[parentID] = p
	return nil
}

func (s *InMemoryCommentStore) IncrementCounter(_ context.Context, id, field string, delta int) (Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return Comment{}, ErrNotFound
	}
	switch field {
	case CounterLikes:
		c.LikeCount += delta
	case CounterReports:
		c.ReportCount += delta
	default:
		return Comment{}, ErrBadCounter
	}
	s.comments[id] = c
	return cloneComment(c), nil
}

func (s *InMemoryCommentStore) ApplyEdit(_ context.Context, id string, patch EditPatch) (Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return Comment{}, ErrNotFound
	}
	c.Content = patch.Content
	c.MentionedUserIDs = patch.MentionedUserIDs
	c.EditHistory = patch.EditHistory
	c.IsEdited = true
	c.Status = StatusEdited
	c.UpdatedAt = patch.UpdatedAt
	s.comments[id] = cloneComment(c)
	return c, nil
}

func (s *InMemoryCommentStore) SoftDelete(_ context.Context, id string, d Deletion) (Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok {
		return Comment{}, ErrNotFound
	}
	deletedAt := d.DeletedAt
	c.Content = d.Content
	c.Status = d.Status
	c.IsDeleted = true
	c.DeletedAt = &deletedAt
	c.UpdatedAt = d.DeletedAt
	s.comments[id] = cloneComment(c)
	return c, nil
}

// cloneComment deep-copies the slices so callers never alias store state.
func cloneComment(c Comment) Comment {
	c.Path = append([]string{}, c.Path...)
	c.ChildIDs = append([]string{}, c.ChildIDs...)
	if c.MentionedUserIDs != nil {
		c.MentionedUserIDs = append([]string{}, c.MentionedUserIDs...)
	}
	if c.EditHistory != nil {
		c.EditHistory = append([]EditRecord{}, c.EditHistory...)
	}
	if c.DeletedAt != nil {
		t := *c.DeletedAt
		c.DeletedAt = &t
	}
	return c
}
