package scribe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/scribe/activity"
	"github.com/xraph/scribe/store/memory"
)

func newTestLogger(t *testing.T, opts ...Option) *Logger {
	t.Helper()
	opts = append([]Option{WithStore(memory.New())}, opts...)
	l, err := New(opts...)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	return l
}

func TestNewRequiresStore(t *testing.T) {
	_, err := New()
	if !errors.Is(err, ErrStoreRequired) {
		t.Fatalf("err = %v, want ErrStoreRequired", err)
	}
}

func TestLogDefaults(t *testing.T) {
	ctx := context.Background()
	l := newTestLogger(t)

	e, err := l.Log(ctx, "something happened")
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if e.ID.IsNil() {
		t.Fatal("expected a generated id")
	}
	if e.Level != activity.LevelInfo {
		t.Fatalf("level = %q, want info", e.Level)
	}
	if e.CreatedAt.IsZero() || !e.CreatedAt.Equal(e.UpdatedAt) {
		t.Fatalf("timestamps: created=%v updated=%v", e.CreatedAt, e.UpdatedAt)
	}
	if e.CreatedAt.Location() != time.UTC {
		t.Fatalf("createdAt not UTC: %v", e.CreatedAt)
	}

	stored, err := l.Store().FindByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("findByID: %v", err)
	}
	if stored == nil || stored.Name != "something happened" {
		t.Fatalf("stored = %+v", stored)
	}
}

func TestLogOptions(t *testing.T) {
	ctx := context.Background()
	l := newTestLogger(t)

	e, err := l.Log(ctx, "order updated",
		WithEvent(activity.EventUpdated),
		WithLevel(activity.LevelWarning),
		WithDescription("price changed"),
		WithSubject("order", 42),
		WithChanges(map[string]any{"price": 10}, map[string]any{"price": 12}),
		WithCauser("user", "user-1"),
		WithCauserName("Sam"),
		WithProperty("source", "admin-ui"),
	)
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if e.Event != activity.EventUpdated || e.Level != activity.LevelWarning {
		t.Fatalf("event/level = %q/%q", e.Event, e.Level)
	}
	if e.Description != "price changed" {
		t.Fatalf("description = %q", e.Description)
	}
	if e.Subject == nil || e.Subject.Type != "order" || e.Subject.ID != "42" {
		t.Fatalf("subject = %+v", e.Subject)
	}
	if e.Subject.Changes == nil || e.Subject.Changes.After["price"] != 12 {
		t.Fatalf("changes = %+v", e.Subject.Changes)
	}
	if e.Causer == nil || e.Causer.ID != "user-1" || e.Causer.Name != "Sam" {
		t.Fatalf("causer = %+v", e.Causer)
	}
	if e.Properties["source"] != "admin-ui" {
		t.Fatalf("properties = %+v", e.Properties)
	}
}

func TestLogInvalidLevel(t *testing.T) {
	l := newTestLogger(t)
	_, err := l.Log(context.Background(), "n", WithLevel("critical"))
	if !errors.Is(err, ErrInvalidLevel) {
		t.Fatalf("err = %v, want ErrInvalidLevel", err)
	}
}

func TestCauserFromContext(t *testing.T) {
	l := newTestLogger(t)
	ctx := ContextWithCauser(context.Background(), &activity.Causer{Type: "user", ID: "ctx-user"})

	e, err := l.Log(ctx, "n")
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if e.Causer == nil || e.Causer.ID != "ctx-user" {
		t.Fatalf("causer = %+v, want context causer", e.Causer)
	}

	// An explicit causer option wins over the context.
	e, err = l.Log(ctx, "n", WithCauser("service", "svc-1"))
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if e.Causer == nil || e.Causer.ID != "svc-1" {
		t.Fatalf("causer = %+v, want explicit causer", e.Causer)
	}
}

func TestPropertyCapKeepsEarliestKeys(t *testing.T) {
	l := newTestLogger(t, WithConfig(Config{MaxProperties: 2}))

	e, err := l.Log(context.Background(), "n",
		WithProperty("a", 1),
		WithProperty("b", 2),
		WithProperty("c", 3),
	)
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if len(e.Properties) != 2 {
		t.Fatalf("got %d properties, want 2: %+v", len(e.Properties), e.Properties)
	}
	if _, ok := e.Properties["a"]; !ok {
		t.Fatal("property a dropped")
	}
	if _, ok := e.Properties["b"]; !ok {
		t.Fatal("property b dropped")
	}
	if _, ok := e.Properties["c"]; ok {
		t.Fatal("property c retained past the cap")
	}
}

func TestConvenienceEvents(t *testing.T) {
	ctx := context.Background()
	l := newTestLogger(t)

	e, err := l.Created(ctx, "post", 7)
	if err != nil {
		t.Fatalf("created: %v", err)
	}
	if e.Event != activity.EventCreated || e.Subject == nil || e.Subject.ID != "7" {
		t.Fatalf("created entry = %+v", e)
	}

	e, err = l.LoggedIn(ctx, "user", "user-3")
	if err != nil {
		t.Fatalf("loggedIn: %v", err)
	}
	if e.Event != activity.EventLoggedIn || e.Causer == nil || e.Causer.ID != "user-3" {
		t.Fatalf("loggedIn entry = %+v", e)
	}
}

func TestBatchBuffersUntilEnd(t *testing.T) {
	ctx := context.Background()
	l := newTestLogger(t)

	batchID, err := l.StartBatch()
	if err != nil {
		t.Fatalf("startBatch: %v", err)
	}
	if batchID == "" {
		t.Fatal("expected a batch id")
	}

	for i := 0; i < 3; i++ {
		if _, err := l.Log(ctx, "buffered"); err != nil {
			t.Fatalf("log: %v", err)
		}
	}
	count, err := l.Count(ctx, nil)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d before EndBatch, want 0", count)
	}

	if err := l.EndBatch(ctx); err != nil {
		t.Fatalf("endBatch: %v", err)
	}
	entries, err := l.Find(ctx, &activity.Filter{BatchID: batchID})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries in batch, want 3", len(entries))
	}
	if l.BatchID() != "" {
		t.Fatal("batch id not cleared after EndBatch")
	}
}

func TestBatchAutoFlush(t *testing.T) {
	ctx := context.Background()
	l := newTestLogger(t, WithConfig(Config{BatchSize: 2}))

	if _, err := l.StartBatch(); err != nil {
		t.Fatalf("startBatch: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := l.Log(ctx, "n"); err != nil {
			t.Fatalf("log: %v", err)
		}
	}

	// Buffer hit BatchSize and flushed; the batch stays open.
	count, err := l.Count(ctx, nil)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d after auto-flush, want 2", count)
	}
	if l.BatchID() == "" {
		t.Fatal("batch closed by auto-flush")
	}

	if _, err := l.Log(ctx, "n"); err != nil {
		t.Fatalf("log: %v", err)
	}
	if err := l.EndBatch(ctx); err != nil {
		t.Fatalf("endBatch: %v", err)
	}
	count, err = l.Count(ctx, nil)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Fatalf("count = %d after EndBatch, want 3", count)
	}
}

func TestBatchDiscipline(t *testing.T) {
	ctx := context.Background()
	l := newTestLogger(t)

	if err := l.EndBatch(ctx); !errors.Is(err, ErrNoActiveBatch) {
		t.Fatalf("err = %v, want ErrNoActiveBatch", err)
	}

	if _, err := l.StartBatch(); err != nil {
		t.Fatalf("startBatch: %v", err)
	}
	if _, err := l.StartBatch(); !errors.Is(err, ErrBatchActive) {
		t.Fatalf("err = %v, want ErrBatchActive", err)
	}
	if err := l.EndBatch(ctx); err != nil {
		t.Fatalf("endBatch: %v", err)
	}

	// A new batch can start once the previous one ended.
	if _, err := l.StartBatch(); err != nil {
		t.Fatalf("startBatch after end: %v", err)
	}
}

func TestQueryAgainstStore(t *testing.T) {
	ctx := context.Background()
	l := newTestLogger(t)

	if _, err := l.Created(ctx, "post", 1); err != nil {
		t.Fatalf("created: %v", err)
	}
	if _, err := l.Deleted(ctx, "post", 1); err != nil {
		t.Fatalf("deleted: %v", err)
	}

	entries, err := l.Query().
		WhereSubject("post", "1").
		WhereEvent(activity.EventDeleted).
		Find(ctx, l.Store())
	if err != nil {
		t.Fatalf("query find: %v", err)
	}
	if len(entries) != 1 || entries[0].Event != activity.EventDeleted {
		t.Fatalf("query results = %+v", entries)
	}
}
