package mongo

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/scribe/activity"
	"github.com/xraph/scribe/id"
)

// entryModel stores one document per entry keyed by the entry ID, with
// subject and causer embedded as sub-documents and the filterable fields
// duplicated at the top level for indexing.
type entryModel struct {
	grove.BaseModel `grove:"table:scribe_activity_log"`
	ID              string            `grove:"id,pk"        bson:"_id"`
	Name            string            `grove:"name"         bson:"name"`
	Description     string            `grove:"description"  bson:"description,omitempty"`
	Level           string            `grove:"level"        bson:"level"`
	Event           string            `grove:"event"        bson:"event,omitempty"`
	SubjectType     string            `grove:"subject_type" bson:"subject_type,omitempty"`
	SubjectID       string            `grove:"subject_id"   bson:"subject_id,omitempty"`
	Subject         *activity.Subject `grove:"subject"      bson:"subject,omitempty"`
	CauserType      string            `grove:"causer_type"  bson:"causer_type,omitempty"`
	CauserID        string            `grove:"causer_id"    bson:"causer_id,omitempty"`
	Causer          *activity.Causer  `grove:"causer"       bson:"causer,omitempty"`
	Properties      map[string]any    `grove:"properties"   bson:"properties,omitempty"`
	BatchID         string            `grove:"batch_id"     bson:"batch_id,omitempty"`
	CreatedAt       time.Time         `grove:"created_at"   bson:"created_at"`
	UpdatedAt       time.Time         `grove:"updated_at"   bson:"updated_at"`
}

func entryToModel(e *activity.Entry) *entryModel {
	m := &entryModel{
		ID:          e.ID.String(),
		Name:        e.Name,
		Description: e.Description,
		Level:       string(e.Level),
		Event:       e.Event,
		Subject:     e.Subject,
		Causer:      e.Causer,
		Properties:  e.Properties,
		BatchID:     e.BatchID,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	if e.Subject != nil {
		m.SubjectType = e.Subject.Type
		m.SubjectID = e.Subject.ID
	}
	if e.Causer != nil {
		m.CauserType = e.Causer.Type
		m.CauserID = e.Causer.ID
	}
	return m
}

func entryFromModel(m *entryModel) *activity.Entry {
	eid, _ := id.ParseEntryID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &activity.Entry{
		ID:          eid,
		Name:        m.Name,
		Description: m.Description,
		Level:       activity.Level(m.Level),
		Event:       m.Event,
		Subject:     m.Subject,
		Causer:      m.Causer,
		Properties:  m.Properties,
		BatchID:     m.BatchID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
