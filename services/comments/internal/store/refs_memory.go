package store

import (
	"context"
	"sync"
)

// InMemoryPostStore is a development-only post registry.
// With Open set, every post id is treated as existing (dev fallback mode
// where the real post service is not wired up).
type InMemoryPostStore struct {
	Open bool

	mu  sync.RWMutex
	ids map[string]struct{}
}

func NewInMemoryPostStore(seed ...string) *InMemoryPostStore {
	s := &InMemoryPostStore{ids: make(map[string]struct{})}
	for _, id := range seed {
		s.ids[id] = struct{}{}
	}
	return s
}

func (s *InMemoryPostStore) Add(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[id] = struct{}{}
}

func (s *InMemoryPostStore) Exists(_ context.Context, postID string) (bool, error) {
	if s.Open {
		return true, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[postID]
	return ok, nil
}

// InMemoryUserStore is a development-only user registry.
type InMemoryUserStore struct {
	Open bool

	mu    sync.RWMutex
	users map[string]Author
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{users: make(map[string]Author)}
}

func (s *InMemoryUserStore) Add(a Author) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[a.ID] = a
}

func (s *InMemoryUserStore) Exists(_ context.Context, userID string) (bool, error) {
	if s.Open {
		return true, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[userID]
	return ok, nil
}

func (s *InMemoryUserStore) Projections(_ context.Context, userIDs []string) (map[string]Author, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]Author, len(userIDs))
	for _, id := range userIDs {
		if a, ok := s.users[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}
