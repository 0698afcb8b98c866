// Package appdata holds each user's domain document (calendars, activity
// logs, profile overrides) and the store that persists the map of documents
// under a single substrate key.
package appdata

import "time"

// Status classifies an activity log entry.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
	StatusPostponed Status = "postponed"
	StatusMissed    Status = "missed"
)

// Valid reports whether s is one of the four known categories.
func (s Status) Valid() bool {
	switch s {
	case StatusCompleted, StatusSkipped, StatusPostponed, StatusMissed:
		return true
	}
	return false
}

// CalendarType selects the scheduling template shape of a calendar.
type CalendarType string

const (
	// CalendarWeekly templates are keyed by weekday index "0".."6";
	// all seven keys exist from creation.
	CalendarWeekly CalendarType = "weekly"

	// CalendarMonthly templates are keyed by day-of-month strings,
	// populated lazily on first write.
	CalendarMonthly CalendarType = "monthly"
)

// ActivityRef points a template slot at a routine.
type ActivityRef struct {
	RoutineID string `json:"routineId"`
}

// Calendar is one scheduling calendar. CreatedAt is immutable once set;
// UpdatedAt is refreshed on every mutation.
type Calendar struct {
	ID        string                   `json:"id"`
	Name      string                   `json:"name"`
	Type      CalendarType             `json:"type"`
	Color     string                   `json:"color"`
	Template  map[string][]ActivityRef `json:"template"`
	Events    map[string][]ActivityRef `json:"events"`
	CreatedAt time.Time                `json:"createdAt"`
	UpdatedAt time.Time                `json:"updatedAt"`
}

// CopyDeep returns an independent copy of c: mutating the copy's template
// or events never touches the original.
func (c Calendar) CopyDeep() Calendar {
	out := c
	out.Template = copyRefMap(c.Template)
	out.Events = copyRefMap(c.Events)
	return out
}

func copyRefMap(m map[string][]ActivityRef) map[string][]ActivityRef {
	out := make(map[string][]ActivityRef, len(m))
	for k, refs := range m {
		// Keep empty slots as empty, not nil, so they serialize as [] and
		// the "slot exists" invariant survives a round trip.
		out[k] = append(make([]ActivityRef, 0, len(refs)), refs...)
	}
	return out
}

// LogEntry is one appended activity record. Entries are immutable; the only
// bulk mutation is ClearLogs on the store.
type LogEntry struct {
	// Date is the ISO calendar date (YYYY-MM-DD) the activity refers to.
	Date      string `json:"date"`
	RoutineID string `json:"routineId"`
	Status    Status `json:"status"`
}

// ProfileOverrides carries per-user presentation fields edited on the
// profile page. All fields are optional overlays on the credential record.
type ProfileOverrides struct {
	Email    string   `json:"email,omitempty"`
	Username string   `json:"username,omitempty"`
	Purpose  []string `json:"purpose,omitempty"`
	Avatar   string   `json:"avatar,omitempty"`
}

// Document aggregates one user's domain data. ActiveCalendarID, when
// non-empty, always keys an existing entry of Calendars; both fields are
// updated in the same document write to keep that invariant.
type Document struct {
	Calendars        map[string]Calendar `json:"calendars"`
	ActiveCalendarID string              `json:"activeCalendarId,omitempty"`
	Logs             []LogEntry          `json:"logs"`
	Profile          ProfileOverrides    `json:"profile"`
}

// EmptyDocument returns the canonical empty document: non-nil calendar map,
// empty log slice, no active calendar.
func EmptyDocument() Document {
	return Document{
		Calendars: make(map[string]Calendar),
		Logs:      []LogEntry{},
	}
}

// normalized repairs nil collections after JSON decoding so callers never
// see a nil map or slice.
func (d Document) normalized() Document {
	if d.Calendars == nil {
		d.Calendars = make(map[string]Calendar)
	}
	if d.Logs == nil {
		d.Logs = []LogEntry{}
	}
	return d
}

// clone returns a document that shares no mutable structure with d, so a
// caller holding the result can never reach into stored state.
func (d Document) clone() Document {
	out := d
	out.Calendars = make(map[string]Calendar, len(d.Calendars))
	for id, cal := range d.Calendars {
		out.Calendars[id] = cal.CopyDeep()
	}
	out.Logs = append([]LogEntry(nil), d.Logs...)
	out.Profile.Purpose = append([]string(nil), d.Profile.Purpose...)
	return out
}
