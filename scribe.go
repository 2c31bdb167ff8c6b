// Package scribe is an activity logging facade over pluggable storage
// backends. A Logger turns application events into immutable audit entries
// and writes them to a store, either one at a time or buffered into
// batches; reads go through the activity.Query builder or the store's
// Find/Count operations directly.
package scribe

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/scribe/activity"
	"github.com/xraph/scribe/id"
)

// Logger records activity entries against a storage backend.
//
// A Logger is safe for concurrent Log calls only while no batch is active;
// the batch buffer is not synchronized, so callers that batch from multiple
// goroutines must serialize access themselves.
type Logger struct {
	store  activity.Store
	logger *slog.Logger
	config Config
	now    func() time.Time

	batchID string
	buffer  []*activity.Entry
}

// New creates a new Logger with the given options. A store is required.
func New(opts ...Option) (*Logger, error) {
	l := &Logger{
		logger: slog.Default(),
		config: DefaultConfig(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.store == nil {
		return nil, ErrStoreRequired
	}
	defaults := DefaultConfig()
	if l.config.DefaultLevel == "" {
		l.config.DefaultLevel = defaults.DefaultLevel
	}
	if l.config.MaxProperties <= 0 {
		l.config.MaxProperties = defaults.MaxProperties
	}
	if l.config.BatchSize <= 0 {
		l.config.BatchSize = defaults.BatchSize
	}
	return l, nil
}

// Store returns the underlying storage backend.
func (l *Logger) Store() activity.Store { return l.store }

// Close closes the underlying storage backend.
func (l *Logger) Close() error { return l.store.Close() }

// Log records one activity entry. The entry gets a fresh ID, UTC creation
// timestamps, and the configured default level; options override the rest.
// A causer comes from the options or, failing that, from the context. With
// an active batch the entry is buffered instead of stored and flushes once
// the buffer reaches the configured batch size.
func (l *Logger) Log(ctx context.Context, name string, opts ...LogOption) (*activity.Entry, error) {
	now := l.now().UTC()
	d := &draft{entry: &activity.Entry{
		ID:        id.NewEntryID(),
		Name:      name,
		Level:     l.config.DefaultLevel,
		CreatedAt: now,
		UpdatedAt: now,
	}}
	for _, opt := range opts {
		opt(d)
	}
	e := d.entry
	if !e.Level.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLevel, e.Level)
	}
	if e.Causer == nil {
		e.Causer = causerFromContext(ctx)
	}
	l.capProperties(d)

	if l.batchID != "" {
		e.BatchID = l.batchID
		l.buffer = append(l.buffer, e)
		if len(l.buffer) >= l.config.BatchSize {
			if err := l.flush(ctx); err != nil {
				return nil, err
			}
		}
		return e, nil
	}

	if err := l.store.Store(ctx, e); err != nil {
		return nil, err
	}
	l.logger.Debug("activity logged",
		"id", e.ID.String(), "name", e.Name, "event", e.Event, "level", e.Level)
	return e, nil
}

// capProperties drops property keys beyond MaxProperties, keeping the
// earliest keys in the order the options added them.
func (l *Logger) capProperties(d *draft) {
	if len(d.propKeys) <= l.config.MaxProperties {
		return
	}
	dropped := d.propKeys[l.config.MaxProperties:]
	for _, k := range dropped {
		delete(d.entry.Properties, k)
	}
	d.propKeys = d.propKeys[:l.config.MaxProperties]
	l.logger.Warn("activity properties truncated",
		"kept", l.config.MaxProperties, "dropped", len(dropped))
}

// ──────────────────────────────────────────────────────────────────────────
// Convenience events
// ──────────────────────────────────────────────────────────────────────────

// Created logs a created event for the given subject.
func (l *Logger) Created(ctx context.Context, subjectType string, subjectID any, opts ...LogOption) (*activity.Entry, error) {
	opts = append([]LogOption{
		WithEvent(activity.EventCreated),
		WithSubject(subjectType, subjectID),
	}, opts...)
	return l.Log(ctx, activity.EventCreated, opts...)
}

// Updated logs an updated event for the given subject.
func (l *Logger) Updated(ctx context.Context, subjectType string, subjectID any, opts ...LogOption) (*activity.Entry, error) {
	opts = append([]LogOption{
		WithEvent(activity.EventUpdated),
		WithSubject(subjectType, subjectID),
	}, opts...)
	return l.Log(ctx, activity.EventUpdated, opts...)
}

// Deleted logs a deleted event for the given subject.
func (l *Logger) Deleted(ctx context.Context, subjectType string, subjectID any, opts ...LogOption) (*activity.Entry, error) {
	opts = append([]LogOption{
		WithEvent(activity.EventDeleted),
		WithSubject(subjectType, subjectID),
	}, opts...)
	return l.Log(ctx, activity.EventDeleted, opts...)
}

// LoggedIn logs a logged_in event for the given actor.
func (l *Logger) LoggedIn(ctx context.Context, causerType string, causerID any, opts ...LogOption) (*activity.Entry, error) {
	opts = append([]LogOption{
		WithEvent(activity.EventLoggedIn),
		WithCauser(causerType, causerID),
	}, opts...)
	return l.Log(ctx, activity.EventLoggedIn, opts...)
}

// LoggedOut logs a logged_out event for the given actor.
func (l *Logger) LoggedOut(ctx context.Context, causerType string, causerID any, opts ...LogOption) (*activity.Entry, error) {
	opts = append([]LogOption{
		WithEvent(activity.EventLoggedOut),
		WithCauser(causerType, causerID),
	}, opts...)
	return l.Log(ctx, activity.EventLoggedOut, opts...)
}

// ──────────────────────────────────────────────────────────────────────────
// Batching
// ──────────────────────────────────────────────────────────────────────────

// StartBatch opens a batch session and returns its id. Subsequent Log calls
// buffer entries tagged with that id until EndBatch or until the buffer
// reaches the configured batch size. Only one batch may be active at a time.
func (l *Logger) StartBatch() (string, error) {
	if l.batchID != "" {
		return "", ErrBatchActive
	}
	l.batchID = id.NewBatchID().String()
	return l.batchID, nil
}

// BatchID returns the active batch id, or "" when no batch is active.
func (l *Logger) BatchID() string { return l.batchID }

// EndBatch flushes any buffered entries and closes the batch session.
func (l *Logger) EndBatch(ctx context.Context) error {
	if l.batchID == "" {
		return ErrNoActiveBatch
	}
	err := l.flush(ctx)
	l.batchID = ""
	return err
}

func (l *Logger) flush(ctx context.Context) error {
	if len(l.buffer) == 0 {
		return nil
	}
	entries := l.buffer
	l.buffer = nil
	if err := l.store.StoreBatch(ctx, entries); err != nil {
		return fmt.Errorf("scribe: flush batch: %w", err)
	}
	l.logger.Debug("activity batch flushed",
		"batch_id", l.batchID, "entries", len(entries))
	return nil
}

// ──────────────────────────────────────────────────────────────────────────
// Reads
// ──────────────────────────────────────────────────────────────────────────

// Query returns a fresh query builder. Execute it with Find, Count, or
// Delete against this logger's store.
func (l *Logger) Query() *activity.Query { return activity.NewQuery() }

// Find returns entries matching the filter, newest first.
func (l *Logger) Find(ctx context.Context, filter *activity.Filter) ([]*activity.Entry, error) {
	return l.store.Find(ctx, filter)
}

// Count returns the number of entries matching the filter.
func (l *Logger) Count(ctx context.Context, filter *activity.Filter) (int64, error) {
	return l.store.Count(ctx, filter)
}

// Delete removes entries matching the filter and returns how many.
func (l *Logger) Delete(ctx context.Context, filter *activity.Filter) (int64, error) {
	return l.store.Delete(ctx, filter)
}

// Clear removes all entries.
func (l *Logger) Clear(ctx context.Context) error {
	return l.store.Clear(ctx)
}

// Stats reports storage statistics.
func (l *Logger) Stats(ctx context.Context) (*activity.Stats, error) {
	return l.store.Stats(ctx)
}
