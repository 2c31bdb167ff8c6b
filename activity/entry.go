// Package activity defines the activity log Entry entity, the filter
// vocabulary shared by every storage backend, and the Store contract.
package activity

import (
	"fmt"
	"time"

	"github.com/xraph/scribe/id"
)

// Level is the severity classification of an entry.
type Level string

// Severity levels for activity entries.
const (
	LevelDebug   Level = "debug"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Valid reports whether l is one of the defined levels.
func (l Level) Valid() bool {
	switch l {
	case LevelDebug, LevelInfo, LevelWarning, LevelError:
		return true
	}
	return false
}

// Well-known event types. Event is a free-form string; these constants cover
// the common cases.
const (
	EventCreated   = "created"
	EventUpdated   = "updated"
	EventDeleted   = "deleted"
	EventLoggedIn  = "logged_in"
	EventLoggedOut = "logged_out"
)

// Changes captures the before/after state of a subject for update events.
type Changes struct {
	Before map[string]any `json:"before,omitempty" bson:"before,omitempty"`
	After  map[string]any `json:"after,omitempty"  bson:"after,omitempty"`
}

// Subject is a reference to the entity an activity was performed on.
type Subject struct {
	Type       string         `json:"type"                 bson:"type"`
	ID         string         `json:"id"                   bson:"id"`
	Attributes map[string]any `json:"attributes,omitempty" bson:"attributes,omitempty"`
	Changes    *Changes       `json:"changes,omitempty"    bson:"changes,omitempty"`
}

// Causer is a reference to the actor that performed an activity.
type Causer struct {
	Type       string         `json:"type"                 bson:"type"`
	ID         string         `json:"id"                   bson:"id"`
	Name       string         `json:"name,omitempty"       bson:"name,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty" bson:"attributes,omitempty"`
}

// Entry is a single immutable activity record. Entries are written once and
// thereafter only read or bulk-deleted; no backend supports partial updates.
type Entry struct {
	ID          id.EntryID     `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Level       Level          `json:"level"`
	Event       string         `json:"event,omitempty"`
	Subject     *Subject       `json:"subject,omitempty"`
	Causer      *Causer        `json:"causer,omitempty"`
	Properties  map[string]any `json:"properties,omitempty"`
	BatchID     string         `json:"batch_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// SubjectID normalizes a subject or causer identifier to its string form.
// Callers commonly hold integer primary keys; stored entries always carry
// string IDs.
func SubjectID(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", x)
	}
}
