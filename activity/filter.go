package activity

import (
	"sort"
	"time"
)

// Filter is a sparse conjunction of criteria for querying entries. All
// present fields are ANDed; absent (zero-value) fields impose no constraint.
// FromDate and ToDate are inclusive bounds on CreatedAt. Limit and Offset
// apply to the result set after filtering and after the newest-first sort.
type Filter struct {
	SubjectType string     `json:"subject_type,omitempty"`
	SubjectID   string     `json:"subject_id,omitempty"`
	CauserType  string     `json:"causer_type,omitempty"`
	CauserID    string     `json:"causer_id,omitempty"`
	Event       string     `json:"event,omitempty"`
	Level       Level      `json:"level,omitempty"`
	BatchID     string     `json:"batch_id,omitempty"`
	FromDate    *time.Time `json:"from_date,omitempty"`
	ToDate      *time.Time `json:"to_date,omitempty"`
	Limit       int        `json:"limit,omitempty"`
	Offset      int        `json:"offset,omitempty"`
}

// Matches reports whether e satisfies every present criterion. This is the
// reference evaluation routine: in-process backends and the query builder
// share it, and native backend queries must agree with it.
func (f *Filter) Matches(e *Entry) bool {
	if f == nil {
		return true
	}
	if f.SubjectType != "" && (e.Subject == nil || e.Subject.Type != f.SubjectType) {
		return false
	}
	if f.SubjectID != "" && (e.Subject == nil || e.Subject.ID != f.SubjectID) {
		return false
	}
	if f.CauserType != "" && (e.Causer == nil || e.Causer.Type != f.CauserType) {
		return false
	}
	if f.CauserID != "" && (e.Causer == nil || e.Causer.ID != f.CauserID) {
		return false
	}
	if f.Event != "" && e.Event != f.Event {
		return false
	}
	if f.Level != "" && e.Level != f.Level {
		return false
	}
	if f.BatchID != "" && e.BatchID != f.BatchID {
		return false
	}
	if f.FromDate != nil && e.CreatedAt.Before(*f.FromDate) {
		return false
	}
	if f.ToDate != nil && e.CreatedAt.After(*f.ToDate) {
		return false
	}
	return true
}

// WithoutPagination returns a copy of f with Limit and Offset cleared.
// Count implementations use it so that counts ignore pagination.
func (f *Filter) WithoutPagination() *Filter {
	if f == nil {
		return nil
	}
	c := *f
	c.Limit = 0
	c.Offset = 0
	return &c
}

// SortNewestFirst sorts entries by CreatedAt descending, the mandated order
// for all Find results.
func SortNewestFirst(entries []*Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
}

// Paginate applies offset then limit to an already-sorted result set.
func Paginate(entries []*Entry, limit, offset int) []*Entry {
	if offset > 0 {
		if offset >= len(entries) {
			return nil
		}
		entries = entries[offset:]
	}
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries
}
