package scribe

import (
	"log/slog"
	"sort"

	"github.com/xraph/scribe/activity"
)

// Option is a functional option for the Logger.
type Option func(*Logger)

// WithStore sets the storage backend.
func WithStore(s activity.Store) Option { return func(l *Logger) { l.store = s } }

// WithLogger sets the structured logger.
func WithLogger(lg *slog.Logger) Option { return func(l *Logger) { l.logger = lg } }

// WithConfig sets the logger configuration.
func WithConfig(c Config) Option { return func(l *Logger) { l.config = c } }

// draft is an entry under construction. Property keys are tracked in the
// order the options added them so the MaxProperties cap can retain the
// earliest keys.
type draft struct {
	entry    *activity.Entry
	propKeys []string
}

func (d *draft) setProperty(key string, value any) {
	if d.entry.Properties == nil {
		d.entry.Properties = make(map[string]any)
	}
	if _, ok := d.entry.Properties[key]; !ok {
		d.propKeys = append(d.propKeys, key)
	}
	d.entry.Properties[key] = value
}

// LogOption customizes a single logged entry.
type LogOption func(*draft)

// WithEvent sets the event type.
func WithEvent(event string) LogOption {
	return func(d *draft) { d.entry.Event = event }
}

// WithLevel overrides the configured default severity.
func WithLevel(level activity.Level) LogOption {
	return func(d *draft) { d.entry.Level = level }
}

// WithDescription sets the free-text description.
func WithDescription(description string) LogOption {
	return func(d *draft) { d.entry.Description = description }
}

// WithSubject sets the entity the activity was performed on. The ID may be
// a string, integer, or fmt.Stringer; it is normalized to its string form.
func WithSubject(subjectType string, subjectID any) LogOption {
	return func(d *draft) {
		d.entry.Subject = &activity.Subject{
			Type: subjectType,
			ID:   activity.SubjectID(subjectID),
		}
	}
}

// WithSubjectAttributes attaches a snapshot of the subject's attributes,
// creating the subject when WithSubject was not applied first.
func WithSubjectAttributes(attrs map[string]any) LogOption {
	return func(d *draft) {
		if d.entry.Subject == nil {
			d.entry.Subject = &activity.Subject{}
		}
		d.entry.Subject.Attributes = attrs
	}
}

// WithChanges records the before/after state of the subject, creating the
// subject when WithSubject was not applied first.
func WithChanges(before, after map[string]any) LogOption {
	return func(d *draft) {
		if d.entry.Subject == nil {
			d.entry.Subject = &activity.Subject{}
		}
		d.entry.Subject.Changes = &activity.Changes{Before: before, After: after}
	}
}

// WithCauser sets the actor that performed the activity, taking precedence
// over a causer carried by the context.
func WithCauser(causerType string, causerID any) LogOption {
	return func(d *draft) {
		d.entry.Causer = &activity.Causer{
			Type: causerType,
			ID:   activity.SubjectID(causerID),
		}
	}
}

// WithCauserName sets the display name on the causer, creating it when
// WithCauser was not applied first.
func WithCauserName(name string) LogOption {
	return func(d *draft) {
		if d.entry.Causer == nil {
			d.entry.Causer = &activity.Causer{}
		}
		d.entry.Causer.Name = name
	}
}

// WithProperty attaches one property key.
func WithProperty(key string, value any) LogOption {
	return func(d *draft) { d.setProperty(key, value) }
}

// WithProperties attaches a set of properties. Map iteration order is
// random, so keys are applied in sorted order to keep the MaxProperties
// cap deterministic; use WithProperty to control ordering exactly.
func WithProperties(props map[string]any) LogOption {
	return func(d *draft) {
		keys := make([]string, 0, len(props))
		for k := range props {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			d.setProperty(k, props[k])
		}
	}
}
