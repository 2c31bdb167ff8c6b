package activity

import (
	"context"
	"time"
)

// Query is a fluent accumulator of filter criteria. Apply evaluates the
// accumulated filter against an in-memory slice with the same semantics a
// backend's native Find must provide, which makes it the reference
// implementation for behavioral equivalence tests.
type Query struct {
	filter Filter
}

// NewQuery returns an empty query.
func NewQuery() *Query { return &Query{} }

// WhereSubject restricts results to entries whose subject matches the given
// type and ID. Empty arguments leave the corresponding field unconstrained.
func (q *Query) WhereSubject(subjectType, subjectID string) *Query {
	q.filter.SubjectType = subjectType
	q.filter.SubjectID = subjectID
	return q
}

// WhereCauser restricts results to entries caused by the given actor.
func (q *Query) WhereCauser(causerType, causerID string) *Query {
	q.filter.CauserType = causerType
	q.filter.CauserID = causerID
	return q
}

// WhereEvent restricts results to a single event type.
func (q *Query) WhereEvent(event string) *Query {
	q.filter.Event = event
	return q
}

// WhereLevel restricts results to a single severity level.
func (q *Query) WhereLevel(level Level) *Query {
	q.filter.Level = level
	return q
}

// WhereBatch restricts results to entries written in one batch session.
func (q *Query) WhereBatch(batchID string) *Query {
	q.filter.BatchID = batchID
	return q
}

// WhereDateRange restricts results to entries created within [from, to],
// inclusive on both ends. Zero times leave the corresponding bound open.
func (q *Query) WhereDateRange(from, to time.Time) *Query {
	if !from.IsZero() {
		f := from
		q.filter.FromDate = &f
	}
	if !to.IsZero() {
		t := to
		q.filter.ToDate = &t
	}
	return q
}

// Where is a generic escape hatch for criteria not covered by the typed
// setters. Recognized fields: subject_type, subject_id, causer_type,
// causer_id, event, level, batch_id. Unknown fields are ignored.
func (q *Query) Where(field, value string) *Query {
	switch field {
	case "subject_type":
		q.filter.SubjectType = value
	case "subject_id":
		q.filter.SubjectID = value
	case "causer_type":
		q.filter.CauserType = value
	case "causer_id":
		q.filter.CauserID = value
	case "event":
		q.filter.Event = value
	case "level":
		q.filter.Level = Level(value)
	case "batch_id":
		q.filter.BatchID = value
	}
	return q
}

// Limit caps the number of results returned.
func (q *Query) Limit(n int) *Query {
	q.filter.Limit = n
	return q
}

// Offset skips the first n results.
func (q *Query) Offset(n int) *Query {
	q.filter.Offset = n
	return q
}

// Filter returns a copy of the accumulated criteria.
func (q *Query) Filter() *Filter {
	f := q.filter
	return &f
}

// Apply evaluates the accumulated filter against an in-memory slice:
// conjunction of present fields, CreatedAt-descending sort, then offset and
// limit. The input slice is not modified.
func (q *Query) Apply(entries []*Entry) []*Entry {
	result := make([]*Entry, 0, len(entries))
	for _, e := range entries {
		if q.filter.Matches(e) {
			result = append(result, e)
		}
	}
	SortNewestFirst(result)
	return Paginate(result, q.filter.Limit, q.filter.Offset)
}

// Find executes the query against a backend.
func (q *Query) Find(ctx context.Context, s Store) ([]*Entry, error) {
	return s.Find(ctx, q.Filter())
}

// Count executes a count against a backend, ignoring pagination.
func (q *Query) Count(ctx context.Context, s Store) (int64, error) {
	return s.Count(ctx, q.Filter())
}

// Delete removes matching entries from a backend.
func (q *Query) Delete(ctx context.Context, s Store) (int64, error) {
	return s.Delete(ctx, q.Filter())
}
