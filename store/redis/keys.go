package redis

import "github.com/xraph/scribe/activity"

// DefaultPrefix is the key prefix used when none is configured.
const DefaultPrefix = "scribe"

// Keyspace layout:
//   {prefix}:entry:{id}         string, JSON-serialized entry (primary record)
//   {prefix}:timeline           zset, score = created_at epoch millis, member = id
//   {prefix}:idx:{field}:{val}  set of entry ids per categorical field value
//
// Index key names are derived deterministically from field name and value so
// that writers and readers resolve the same sets without coordination.

// Categorical field names used in index keys.
const (
	fieldSubjectType = "subject_type"
	fieldSubjectID   = "subject_id"
	fieldCauserType  = "causer_type"
	fieldCauserID    = "causer_id"
	fieldEvent       = "event"
	fieldLevel       = "level"
	fieldBatchID     = "batch_id"
)

type keyspace struct {
	prefix string
}

func newKeyspace(prefix string) keyspace {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return keyspace{prefix: prefix}
}

func (k keyspace) entry(entryID string) string {
	return k.prefix + ":entry:" + entryID
}

func (k keyspace) timeline() string {
	return k.prefix + ":timeline"
}

func (k keyspace) index(field, value string) string {
	return k.prefix + ":idx:" + field + ":" + value
}

// matchAll is the SCAN pattern covering every key in this keyspace.
func (k keyspace) matchAll() string {
	return k.prefix + ":*"
}

// entryIndexKeys returns the category-index keys an entry belongs to, derived
// from the entry's own field values. The same derivation serves both
// indexing on write and de-indexing on delete; there is no reverse index
// from id to memberships.
func (k keyspace) entryIndexKeys(e *activity.Entry) []string {
	keys := make([]string, 0, 7)
	if e.Subject != nil {
		if e.Subject.Type != "" {
			keys = append(keys, k.index(fieldSubjectType, e.Subject.Type))
		}
		if e.Subject.ID != "" {
			keys = append(keys, k.index(fieldSubjectID, e.Subject.ID))
		}
	}
	if e.Causer != nil {
		if e.Causer.Type != "" {
			keys = append(keys, k.index(fieldCauserType, e.Causer.Type))
		}
		if e.Causer.ID != "" {
			keys = append(keys, k.index(fieldCauserID, e.Causer.ID))
		}
	}
	if e.Event != "" {
		keys = append(keys, k.index(fieldEvent, e.Event))
	}
	if e.Level != "" {
		keys = append(keys, k.index(fieldLevel, string(e.Level)))
	}
	if e.BatchID != "" {
		keys = append(keys, k.index(fieldBatchID, e.BatchID))
	}
	return keys
}

// filterIndexKeys resolves the category-index keys for each categorical
// criterion present on the filter. Date bounds are handled separately via
// the timeline.
func (k keyspace) filterIndexKeys(f *activity.Filter) []string {
	if f == nil {
		return nil
	}
	keys := make([]string, 0, 7)
	if f.SubjectType != "" {
		keys = append(keys, k.index(fieldSubjectType, f.SubjectType))
	}
	if f.SubjectID != "" {
		keys = append(keys, k.index(fieldSubjectID, f.SubjectID))
	}
	if f.CauserType != "" {
		keys = append(keys, k.index(fieldCauserType, f.CauserType))
	}
	if f.CauserID != "" {
		keys = append(keys, k.index(fieldCauserID, f.CauserID))
	}
	if f.Event != "" {
		keys = append(keys, k.index(fieldEvent, f.Event))
	}
	if f.Level != "" {
		keys = append(keys, k.index(fieldLevel, string(f.Level)))
	}
	if f.BatchID != "" {
		keys = append(keys, k.index(fieldBatchID, f.BatchID))
	}
	return keys
}
