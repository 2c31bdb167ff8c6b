package file

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xraph/scribe/activity"
)

// Format selects the on-disk line encoding. Only FormatJSON can be parsed
// back into entries; CSV and text are write-only as far as queries go.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatText Format = "text"
)

// Valid reports whether f is one of the defined formats.
func (f Format) Valid() bool {
	switch f {
	case FormatJSON, FormatCSV, FormatText:
		return true
	}
	return false
}

// encodeLine serializes one entry as a single newline-terminated line.
func encodeLine(format Format, e *activity.Entry) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal entry: %w", err)
		}
		return append(data, '\n'), nil
	case FormatCSV:
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		record := []string{
			e.ID.String(),
			e.CreatedAt.Format(time.RFC3339Nano),
			string(e.Level),
			e.Event,
			e.Name,
			e.Description,
			subjectType(e), subjectID(e),
			causerType(e), causerID(e),
			e.BatchID,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("encode csv entry: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, fmt.Errorf("encode csv entry: %w", err)
		}
		return buf.Bytes(), nil
	case FormatText:
		line := fmt.Sprintf("%s [%s] %s", e.CreatedAt.Format(time.RFC3339), e.Level, e.Name)
		if e.Event != "" {
			line += " event=" + e.Event
		}
		if e.Subject != nil {
			line += " subject=" + e.Subject.Type + ":" + e.Subject.ID
		}
		if e.Causer != nil {
			line += " causer=" + e.Causer.Type + ":" + e.Causer.ID
		}
		if e.Description != "" {
			line += " " + e.Description
		}
		return append([]byte(line), '\n'), nil
	default:
		return nil, fmt.Errorf("unknown file format %q", format)
	}
}

// decodeLine parses one JSON-encoded line back into an entry. Other formats
// are write-only and never decoded.
func decodeLine(line []byte) (*activity.Entry, error) {
	var e activity.Entry
	if err := json.Unmarshal(line, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func subjectType(e *activity.Entry) string {
	if e.Subject == nil {
		return ""
	}
	return e.Subject.Type
}

func subjectID(e *activity.Entry) string {
	if e.Subject == nil {
		return ""
	}
	return e.Subject.ID
}

func causerType(e *activity.Entry) string {
	if e.Causer == nil {
		return ""
	}
	return e.Causer.Type
}

func causerID(e *activity.Entry) string {
	if e.Causer == nil {
		return ""
	}
	return e.Causer.ID
}
