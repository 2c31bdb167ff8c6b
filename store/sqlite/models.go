package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/scribe/activity"
	"github.com/xraph/scribe/id"
)

// entryModel mirrors the Postgres layout with JSON payloads stored as TEXT.
type entryModel struct {
	grove.BaseModel `grove:"table:scribe_activity_log"`
	ID              string    `grove:"id,pk"`
	Name            string    `grove:"name,notnull"`
	Description     string    `grove:"description"`
	Level           string    `grove:"level,notnull"`
	Event           string    `grove:"event"`
	SubjectType     string    `grove:"subject_type"`
	SubjectID       string    `grove:"subject_id"`
	Subject         string    `grove:"subject"` // JSON text
	CauserType      string    `grove:"causer_type"`
	CauserID        string    `grove:"causer_id"`
	Causer          string    `grove:"causer"` // JSON text
	Properties      string    `grove:"properties"` // JSON text
	BatchID         string    `grove:"batch_id"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func entryToModel(e *activity.Entry) (*entryModel, error) {
	m := &entryModel{
		ID:          e.ID.String(),
		Name:        e.Name,
		Description: e.Description,
		Level:       string(e.Level),
		Event:       e.Event,
		BatchID:     e.BatchID,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	if e.Subject != nil {
		m.SubjectType = e.Subject.Type
		m.SubjectID = e.Subject.ID
		data, err := json.Marshal(e.Subject)
		if err != nil {
			return nil, fmt.Errorf("marshal entry subject: %w", err)
		}
		m.Subject = string(data)
	}
	if e.Causer != nil {
		m.CauserType = e.Causer.Type
		m.CauserID = e.Causer.ID
		data, err := json.Marshal(e.Causer)
		if err != nil {
			return nil, fmt.Errorf("marshal entry causer: %w", err)
		}
		m.Causer = string(data)
	}
	if e.Properties != nil {
		data, err := json.Marshal(e.Properties)
		if err != nil {
			return nil, fmt.Errorf("marshal entry properties: %w", err)
		}
		m.Properties = string(data)
	}
	return m, nil
}

func entryFromModel(m *entryModel) (*activity.Entry, error) {
	eid, _ := id.ParseEntryID(m.ID) //nolint:errcheck // stored IDs are always valid
	e := &activity.Entry{
		ID:          eid,
		Name:        m.Name,
		Description: m.Description,
		Level:       activity.Level(m.Level),
		Event:       m.Event,
		BatchID:     m.BatchID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.Subject != "" {
		var subj activity.Subject
		if err := json.Unmarshal([]byte(m.Subject), &subj); err != nil {
			return nil, fmt.Errorf("unmarshal entry subject: %w", err)
		}
		e.Subject = &subj
	}
	if m.Causer != "" {
		var causer activity.Causer
		if err := json.Unmarshal([]byte(m.Causer), &causer); err != nil {
			return nil, fmt.Errorf("unmarshal entry causer: %w", err)
		}
		e.Causer = &causer
	}
	if m.Properties != "" {
		var props map[string]any
		if err := json.Unmarshal([]byte(m.Properties), &props); err != nil {
			return nil, fmt.Errorf("unmarshal entry properties: %w", err)
		}
		e.Properties = props
	}
	return e, nil
}
