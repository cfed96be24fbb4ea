// Package history persists per-stream resume positions.
package history

import (
	"sort"
	"sync"
	"time"

	"github.com/metafates/gache"
	"github.com/panorama-cli/panorama/filesystem"
	"github.com/panorama-cli/panorama/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Store is a disk-backed map of stream ID to Entry.
type Store struct {
	internal *gache.Cache[map[string]Entry]
	mu       sync.RWMutex
}

// Open returns a store backed by the file at path on the active filesystem.
func Open(path string) *Store {
	return &Store{
		internal: gache.New[map[string]Entry](
			&gache.Options{
				Path:       path,
				FileSystem: &filesystem.GacheFs{},
			},
		),
	}
}

var defaultStore = sync.OnceValue(func() *Store {
	return Open(where.History())
})

// Default is the store under the configuration directory.
func Default() *Store {
	return defaultStore()
}

func (s *Store) load() (map[string]Entry, error) {
	cached, expired, err := s.internal.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]Entry), nil
	}
	return cached, nil
}

// Get returns the entry saved for id.
func (s *Store) Get(id string) mo.Option[Entry] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	saved, err := s.load()
	if err != nil {
		return mo.None[Entry]()
	}

	entry, ok := saved[id]
	if !ok {
		return mo.None[Entry]()
	}
	return mo.Some(entry)
}

// All returns every entry, most recently updated first.
func (s *Store) All() ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	saved, err := s.load()
	if err != nil {
		return nil, err
	}

	entries := lo.Values(saved)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})
	return entries, nil
}

// Save records entry, replacing any earlier one for the same stream.
func (s *Store) Save(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.load()
	if err != nil {
		return err
	}

	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = time.Now()
	}
	saved[entry.ID] = entry

	return s.internal.Set(saved)
}

// Remove forgets the entry for id.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.load()
	if err != nil {
		return err
	}

	delete(saved, id)
	return s.internal.Set(saved)
}
