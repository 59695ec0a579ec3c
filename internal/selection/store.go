// Package selection keeps the ordered set of repositories a user monitors.
//
// A Store holds the in-memory list and writes it through a Persister on every
// change. The list is read once, when the Store is created.
package selection

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// DefaultKey is the storage key selections are kept under.
const DefaultKey = "github-utils:pull-requests-storage"

// Persister reads and writes the repository list stored under a key.
type Persister interface {
	Load(ctx context.Context, key string) ([]string, error)
	Save(ctx context.Context, key string, repos []string) error
}

// Store is an ordered, duplicate-free list of repository full names.
// It assumes it is the only writer for its key.
type Store struct {
	mu        sync.Mutex
	key       string
	persister Persister
	repos     []string
}

// New loads the list stored under key.
func New(ctx context.Context, p Persister, key string) (*Store, error) {
	repos, err := p.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load selection %q: %w", key, err)
	}
	return &Store{
		key:       key,
		persister: p,
		repos:     slices.Clone(repos),
	}, nil
}

// Key returns the storage key of the store.
func (s *Store) Key() string {
	return s.key
}

// Repositories returns a copy of the selected full names in insertion order.
func (s *Store) Repositories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.repos))
	copy(out, s.repos)
	return out
}

// Add appends name unless it is already selected. Adding an existing name is
// a no-op and does not write.
func (s *Store) Add(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.repos, name) {
		return nil
	}
	next := append(slices.Clone(s.repos), name)
	return s.commit(ctx, next)
}

// Remove drops every occurrence of name. Writes only when something changed.
func (s *Store) Remove(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := slices.DeleteFunc(slices.Clone(s.repos), func(r string) bool { return r == name })
	if len(next) == len(s.repos) {
		return nil
	}
	return s.commit(ctx, next)
}

// commit persists next and only then swaps it in. Caller holds mu.
func (s *Store) commit(ctx context.Context, next []string) error {
	if err := s.persister.Save(ctx, s.key, next); err != nil {
		return fmt.Errorf("failed to save selection %q: %w", s.key, err)
	}
	s.repos = next
	return nil
}

// Manager hands out one Store per key so that every caller for a key shares
// the same writer.
type Manager struct {
	mu        sync.Mutex
	persister Persister
	stores    map[string]*Store
}

// NewManager creates a Manager over p.
func NewManager(p Persister) *Manager {
	return &Manager{
		persister: p,
		stores:    make(map[string]*Store),
	}
}

// Open returns the Store for key, loading it on first use.
func (m *Manager) Open(ctx context.Context, key string) (*Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stores[key]; ok {
		return s, nil
	}
	s, err := New(ctx, m.persister, key)
	if err != nil {
		return nil, err
	}
	m.stores[key] = s
	return s, nil
}
