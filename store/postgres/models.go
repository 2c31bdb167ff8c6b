package postgres

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/scribe/activity"
	"github.com/xraph/scribe/id"
)

// entryModel flattens the filterable fields into indexed columns and keeps
// the full subject/causer references as jsonb payloads.
type entryModel struct {
	grove.BaseModel `grove:"table:scribe_activity_log"`
	ID              string            `grove:"id,pk"`
	Name            string            `grove:"name,notnull"`
	Description     string            `grove:"description"`
	Level           string            `grove:"level,notnull"`
	Event           string            `grove:"event"`
	SubjectType     string            `grove:"subject_type"`
	SubjectID       string            `grove:"subject_id"`
	Subject         *activity.Subject `grove:"subject,type:jsonb"`
	CauserType      string            `grove:"causer_type"`
	CauserID        string            `grove:"causer_id"`
	Causer          *activity.Causer  `grove:"causer,type:jsonb"`
	Properties      map[string]any    `grove:"properties,type:jsonb"`
	BatchID         string            `grove:"batch_id"`
	CreatedAt       time.Time         `grove:"created_at,notnull"`
	UpdatedAt       time.Time         `grove:"updated_at,notnull"`
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
