package auth

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// InMemoryStore keeps users in a mutex-guarded map keyed by username.
// Suitable for tests and single-process deployments; swap for the Postgres
// store when durability is needed.
type InMemoryStore struct {
	mu    sync.RWMutex
	users map[string]*User
}

var _ UserStore = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty user store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{users: make(map[string]*User)}
}

func (s *InMemoryStore) Create(ctx context.Context, u *User) error {
	if u == nil || strings.TrimSpace(u.Username) == "" {
		return ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Username]; ok {
		return ErrAlreadyExists
	}
	s.users[u.Username] = copyUser(u)
	return nil
}

func (s *InMemoryStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUser(u), nil
}

func (s *InMemoryStore) List(ctx context.Context) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, copyUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// copyUser returns a deep copy so callers never alias stored byte slices.
func copyUser(u *User) *User {
	out := *u
	out.Digest = append([]byte(nil), u.Digest...)
	out.Salt = append([]byte(nil), u.Salt...)
	return &out
}
