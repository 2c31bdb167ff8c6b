package activity

import (
	"testing"
	"time"

	"github.com/xraph/scribe/id"
)

func entryAt(name string, at time.Time) *Entry {
	return &Entry{
		ID:        id.NewEntryID(),
		Name:      name,
		Level:     LevelInfo,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func TestFilterMatchesConjunction(t *testing.T) {
	e := entryAt("n", time.Now())
	e.Event = EventCreated
	e.Level = LevelWarning
	e.Subject = &Subject{Type: "order", ID: "1"}

	cases := []struct {
		name   string
		filter *Filter
		want   bool
	}{
		{"nil filter", nil, true},
		{"empty filter", &Filter{}, true},
		{"matching event and level", &Filter{Event: EventCreated, Level: LevelWarning}, true},
		{"event matches level does not", &Filter{Event: EventCreated, Level: LevelError}, false},
		{"subject matches", &Filter{SubjectType: "order", SubjectID: "1"}, true},
		{"subject id mismatch", &Filter{SubjectType: "order", SubjectID: "2"}, false},
		{"causer filter on entry without causer", &Filter{CauserID: "u1"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.filter.Matches(e); got != tc.want {
				t.Fatalf("Matches = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFilterDateBoundsInclusive(t *testing.T) {
	at := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	e := entryAt("n", at)

	from, to := at, at
	f := &Filter{FromDate: &from, ToDate: &to}
	if !f.Matches(e) {
		t.Fatal("bounds equal to CreatedAt must match")
	}

	before := at.Add(-time.Second)
	f = &Filter{ToDate: &before}
	if f.Matches(e) {
		t.Fatal("entry after ToDate must not match")
	}

	after := at.Add(time.Second)
	f = &Filter{FromDate: &after}
	if f.Matches(e) {
		t.Fatal("entry before FromDate must not match")
	}
}

func TestQueryApplySortsNewestFirst(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := []*Entry{
		entryAt("old", base),
		entryAt("new", base.Add(2*time.Hour)),
		entryAt("mid", base.Add(time.Hour)),
	}

	got := NewQuery().Apply(entries)
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3", len(got))
	}
	for i, want := range []string{"new", "mid", "old"} {
		if got[i].Name != want {
			t.Fatalf("got[%d] = %q, want %q", i, got[i].Name, want)
		}
	}
}

func TestQueryApplyPagination(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := make([]*Entry, 10)
	for i := range entries {
		entries[i] = entryAt("n", base.Add(time.Duration(i)*time.Minute))
	}

	got := NewQuery().Limit(3).Offset(2).Apply(entries)
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3", len(got))
	}
	// 3rd through 5th newest: minutes 7, 6, 5.
	for i, m := range []int{7, 6, 5} {
		want := base.Add(time.Duration(m) * time.Minute)
		if !got[i].CreatedAt.Equal(want) {
			t.Fatalf("got[%d].CreatedAt = %v, want %v", i, got[i].CreatedAt, want)
		}
	}

	if got := NewQuery().Offset(20).Apply(entries); len(got) != 0 {
		t.Fatalf("offset past end returned %d entries", len(got))
	}
}

func TestQueryFluentSetters(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	f := NewQuery().
		WhereSubject("order", "1").
		WhereCauser("user", "u1").
		WhereEvent(EventUpdated).
		WhereLevel(LevelError).
		WhereBatch("b1").
		WhereDateRange(from, to).
		Limit(5).
		Offset(10).
		Filter()

	if f.SubjectType != "order" || f.SubjectID != "1" {
		t.Fatalf("subject = %q/%q", f.SubjectType, f.SubjectID)
	}
	if f.CauserType != "user" || f.CauserID != "u1" {
		t.Fatalf("causer = %q/%q", f.CauserType, f.CauserID)
	}
	if f.Event != EventUpdated || f.Level != LevelError || f.BatchID != "b1" {
		t.Fatalf("event/level/batch = %q/%q/%q", f.Event, f.Level, f.BatchID)
	}
	if f.FromDate == nil || !f.FromDate.Equal(from) || f.ToDate == nil || !f.ToDate.Equal(to) {
		t.Fatalf("dates = %v/%v", f.FromDate, f.ToDate)
	}
	if f.Limit != 5 || f.Offset != 10 {
		t.Fatalf("limit/offset = %d/%d", f.Limit, f.Offset)
	}
}

func TestQueryWhereDateRangeZeroLeavesBoundOpen(t *testing.T) {
	to := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f := NewQuery().WhereDateRange(time.Time{}, to).Filter()
	if f.FromDate != nil {
		t.Fatalf("fromDate = %v, want nil", f.FromDate)
	}
	if f.ToDate == nil || !f.ToDate.Equal(to) {
		t.Fatalf("toDate = %v", f.ToDate)
	}
}

func TestQueryGenericWhere(t *testing.T) {
	f := NewQuery().
		Where("event", EventDeleted).
		Where("level", "warning").
		Where("nonsense", "ignored").
		Filter()
	if f.Event != EventDeleted || f.Level != LevelWarning {
		t.Fatalf("event/level = %q/%q", f.Event, f.Level)
	}
}

func TestSubjectID(t *testing.T) {
	if got := SubjectID("abc"); got != "abc" {
		t.Fatalf("string: %q", got)
	}
	if got := SubjectID(42); got != "42" {
		t.Fatalf("int: %q", got)
	}
	if got := SubjectID(nil); got != "" {
		t.Fatalf("nil: %q", got)
	}
	eid := id.NewEntryID()
	if got := SubjectID(eid); got != eid.String() {
		t.Fatalf("stringer: %q, want %q", got, eid.String())
	}
}
