package memory

import (
	"context"
	"testing"
	"time"

	"github.com/xraph/scribe/activity"
	"github.com/xraph/scribe/id"
)

func entryAt(name string, at time.Time) *activity.Entry {
	return &activity.Entry{
		ID:        id.NewEntryID(),
		Name:      name,
		Level:     activity.LevelInfo,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func TestStoreAndFindByID(t *testing.T) {
	ctx := context.Background()
	s := New()

	e := entryAt("n", time.Now().UTC())
	e.Subject = &activity.Subject{Type: "doc", ID: "d1", Attributes: map[string]any{"k": "v"}}
	if err := s.Store(ctx, e); err != nil {
		t.Fatalf("store: %v", err)
	}

	got, err := s.FindByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("findByID: %v", err)
	}
	if got == nil || got.Name != "n" || got.Subject == nil || got.Subject.ID != "d1" {
		t.Fatalf("got %+v", got)
	}

	// The returned entry is a copy; mutating it must not affect the store.
	got.Subject.Attributes["k"] = "mutated"
	again, err := s.FindByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("findByID: %v", err)
	}
	if again.Subject.Attributes["k"] != "v" {
		t.Fatal("stored entry mutated through a returned copy")
	}
}

func TestFindByIDMissingIsNotError(t *testing.T) {
	s := New()
	got, err := s.FindByID(context.Background(), id.NewEntryID())
	if err != nil {
		t.Fatalf("findByID: %v", err)
	}
	if got != nil {
		t.Fatalf("got %+v, want nil", got)
	}
}

func TestStoreBatchThenFindSortedDesc(t *testing.T) {
	ctx := context.Background()
	s := New()

	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	batch := []*activity.Entry{
		entryAt("a", base.Add(time.Minute)),
		entryAt("b", base.Add(3*time.Minute)),
		entryAt("c", base.Add(2*time.Minute)),
	}
	if err := s.StoreBatch(ctx, batch); err != nil {
		t.Fatalf("storeBatch: %v", err)
	}

	entries, err := s.Find(ctx, nil)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	for i, want := range []string{"b", "c", "a"} {
		if entries[i].Name != want {
			t.Fatalf("entries[%d] = %q, want %q", i, entries[i].Name, want)
		}
	}
}

func TestCountEqualsUnpaginatedFind(t *testing.T) {
	ctx := context.Background()
	s := New()

	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		e := entryAt("n", base.Add(time.Duration(i)*time.Second))
		if i%2 == 0 {
			e.Event = activity.EventCreated
		}
		if err := s.Store(ctx, e); err != nil {
			t.Fatalf("store: %v", err)
		}
	}

	filter := &activity.Filter{Event: activity.EventCreated, Limit: 2}
	count, err := s.Count(ctx, filter)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	all, err := s.Find(ctx, filter.WithoutPagination())
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if count != int64(len(all)) {
		t.Fatalf("count = %d, unpaginated find = %d", count, len(all))
	}
	if count != 4 {
		t.Fatalf("count = %d, want 4", count)
	}
}

func TestDeleteByFilter(t *testing.T) {
	ctx := context.Background()
	s := New()

	now := time.Now().UTC()
	keep := entryAt("keep", now)
	drop := entryAt("drop", now)
	drop.Subject = &activity.Subject{Type: "session", ID: "s1"}
	for _, e := range []*activity.Entry{keep, drop} {
		if err := s.Store(ctx, e); err != nil {
			t.Fatalf("store: %v", err)
		}
	}

	n, err := s.Delete(ctx, &activity.Filter{SubjectType: "session", SubjectID: "s1"})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 1 {
		t.Fatalf("deleted %d, want 1", n)
	}
	if got, _ := s.FindByID(ctx, drop.ID); got != nil {
		t.Fatal("deleted entry still present")
	}
	if got, _ := s.FindByID(ctx, keep.ID); got == nil {
		t.Fatal("unmatched entry was deleted")
	}
}

func TestClearAndStats(t *testing.T) {
	ctx := context.Background()
	s := New()

	first := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	last := first.Add(time.Hour)
	if err := s.Store(ctx, entryAt("a", first)); err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := s.Store(ctx, entryAt("b", last)); err != nil {
		t.Fatalf("store: %v", err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalEntries != 2 {
		t.Fatalf("totalEntries = %d, want 2", stats.TotalEntries)
	}
	if stats.OldestEntry == nil || !stats.OldestEntry.Equal(first) {
		t.Fatalf("oldestEntry = %v, want %v", stats.OldestEntry, first)
	}
	if stats.NewestEntry == nil || !stats.NewestEntry.Equal(last) {
		t.Fatalf("newestEntry = %v, want %v", stats.NewestEntry, last)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	stats, err = s.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalEntries != 0 || stats.OldestEntry != nil || stats.NewestEntry != nil {
		t.Fatalf("stats after clear = %+v, want empty", stats)
	}

	// The store stays usable after Clear.
	if err := s.Store(ctx, entryAt("c", last)); err != nil {
		t.Fatalf("store after clear: %v", err)
	}
}

// TestFindMatchesQueryApply checks that the store's native Find agrees with
// the query builder's in-memory evaluation over the same data and filter.
func TestFindMatchesQueryApply(t *testing.T) {
	ctx := context.Background()
	s := New()

	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	var all []*activity.Entry
	for i := 0; i < 12; i++ {
		e := entryAt("n", base.Add(time.Duration(i)*time.Minute))
		if i%3 == 0 {
			e.Event = activity.EventUpdated
			e.Level = activity.LevelWarning
		}
		if i%2 == 0 {
			e.Causer = &activity.Causer{Type: "user", ID: "u1"}
		}
		all = append(all, e)
		if err := s.Store(ctx, e); err != nil {
			t.Fatalf("store: %v", err)
		}
	}

	q := activity.NewQuery().
		WhereEvent(activity.EventUpdated).
		WhereLevel(activity.LevelWarning).
		Limit(2).
		Offset(1)

	fromStore, err := q.Find(ctx, s)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	fromApply := q.Apply(all)

	if len(fromStore) != len(fromApply) {
		t.Fatalf("store returned %d, apply returned %d", len(fromStore), len(fromApply))
	}
	for i := range fromStore {
		if fromStore[i].ID.String() != fromApply[i].ID.String() {
			t.Fatalf("result %d: store %s vs apply %s",
				i, fromStore[i].ID.String(), fromApply[i].ID.String())
		}
	}
}
