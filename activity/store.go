package activity

import (
	"context"
	"time"

	"github.com/xraph/scribe/id"
)

// Stats summarizes the contents of a backend. SizeBytes is best-effort and
// zero where the backend cannot report it.
type Stats struct {
	TotalEntries int64      `json:"total_entries"`
	OldestEntry  *time.Time `json:"oldest_entry,omitempty"`
	NewestEntry  *time.Time `json:"newest_entry,omitempty"`
	SizeBytes    int64      `json:"size_bytes,omitempty"`
}

// Store defines the persistence contract every backend implements. Filter
// semantics must behave identically regardless of backend; Matches is the
// reference.
type Store interface {
	// Initialize performs idempotent setup (connect, create schema and
	// indexes). It must be called before any other operation on backends
	// that require it.
	Initialize(ctx context.Context) error

	// Store persists one entry. Safe for concurrent use with other Store
	// and StoreBatch calls on the same instance.
	Store(ctx context.Context, e *Entry) error

	// StoreBatch persists a sequence of entries. Relational backends write
	// the batch in a single transaction; other backends are best-effort and
	// a partial failure may leave some entries written.
	StoreBatch(ctx context.Context, entries []*Entry) error

	// FindByID returns the entry with the given ID, or (nil, nil) when no
	// such entry exists. A missing entry is not an error.
	FindByID(ctx context.Context, entryID id.EntryID) (*Entry, error)

	// Find returns entries matching the filter, sorted by CreatedAt
	// descending, paginated by offset then limit.
	Find(ctx context.Context, filter *Filter) ([]*Entry, error)

	// Count returns the number of entries matching the filter, ignoring
	// Limit and Offset.
	Count(ctx context.Context, filter *Filter) (int64, error)

	// Delete removes entries matching the filter and returns the number
	// removed. Backends that cannot delete selectively return 0.
	Delete(ctx context.Context, filter *Filter) (int64, error)

	// Clear removes all entries and derived index structures, leaving the
	// backend ready for further writes without re-initialization.
	Clear(ctx context.Context) error

	// Stats reports entry count, the created-at range, and best-effort size.
	Stats(ctx context.Context) (*Stats, error)

	// Close releases the underlying connection or file handles.
	Close() error
}
