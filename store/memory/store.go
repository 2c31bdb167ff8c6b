// Package memory provides an in-memory implementation of the activity store.
// It is intended for testing and development.
package memory

import (
	"context"
	"sync"

	"github.com/xraph/scribe/activity"
	"github.com/xraph/scribe/id"
)

// Compile-time interface check.
var _ activity.Store = (*Store)(nil)

// Store is a thread-safe in-memory activity store.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*activity.Entry
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{entries: make(map[string]*activity.Entry)}
}

// Initialize is a no-op for the memory store.
func (s *Store) Initialize(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }

func (s *Store) Store(_ context.Context, e *activity.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.ID.String()] = copyEntry(e)
	return nil
}

func (s *Store) StoreBatch(_ context.Context, entries []*activity.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		s.entries[e.ID.String()] = copyEntry(e)
	}
	return nil
}

func (s *Store) FindByID(_ context.Context, entryID id.EntryID) (*activity.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[entryID.String()]
	if !ok {
		return nil, nil
	}
	return copyEntry(e), nil
}

func (s *Store) Find(_ context.Context, filter *activity.Filter) ([]*activity.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*activity.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if filter.Matches(e) {
			result = append(result, copyEntry(e))
		}
	}
	activity.SortNewestFirst(result)
	if filter != nil {
		result = activity.Paginate(result, filter.Limit, filter.Offset)
	}
	return result, nil
}

func (s *Store) Count(ctx context.Context, filter *activity.Filter) (int64, error) {
	list, err := s.Find(ctx, filter.WithoutPagination())
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) Delete(_ context.Context, filter *activity.Filter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for key, e := range s.entries {
		if filter.Matches(e) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*activity.Entry)
	return nil
}

func (s *Store) Stats(_ context.Context) (*activity.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := &activity.Stats{TotalEntries: int64(len(s.entries))}
	for _, e := range s.entries {
		created := e.CreatedAt
		if stats.OldestEntry == nil || created.Before(*stats.OldestEntry) {
			t := created
			stats.OldestEntry = &t
		}
		if stats.NewestEntry == nil || created.After(*stats.NewestEntry) {
			t := created
			stats.NewestEntry = &t
		}
	}
	return stats, nil
}

// copyEntry returns a defensive copy so callers cannot mutate stored state.
func copyEntry(e *activity.Entry) *activity.Entry {
	c := *e
	if e.Subject != nil {
		subj := *e.Subject
		subj.Attributes = copyMap(e.Subject.Attributes)
		if e.Subject.Changes != nil {
			ch := activity.Changes{
				Before: copyMap(e.Subject.Changes.Before),
				After:  copyMap(e.Subject.Changes.After),
			}
			subj.Changes = &ch
		}
		c.Subject = &subj
	}
	if e.Causer != nil {
		causer := *e.Causer
		causer.Attributes = copyMap(e.Causer.Attributes)
		c.Causer = &causer
	}
	c.Properties = copyMap(e.Properties)
	return &c
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
