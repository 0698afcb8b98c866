// Package calendar manages one user's calendars: creation, cloning,
// deletion, active selection, and patching. It holds no state of its own;
// every operation is a single document write through the appdata store, so
// the calendars map and the active pointer can never drift apart.
package calendar

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/LautaroLeall/Routine-Calendary/internal/appdata"
	"github.com/LautaroLeall/Routine-Calendary/internal/common"
)

// Creation defaults, matching the original client.
const (
	DefaultName  = "Nuevo calendario"
	DefaultColor = "#00c176"
)

// CloneSuffix is appended to a cloned calendar's name.
const CloneSuffix = " (copia)"

// Manager is a view over the calendars sub-map of one user's document.
// Operations referencing a missing calendar id fail with common.ErrNotFound.
type Manager struct {
	data   *appdata.Store
	userID string

	// test seams
	now   func() time.Time
	newID func() string
}

// NewManager binds a manager to the given user's document.
func NewManager(data *appdata.Store, userID string) *Manager {
	return &Manager{
		data:   data,
		userID: userID,
		now:    time.Now,
		newID:  func() string { return "cal_" + uuid.NewString() },
	}
}

// CreateParams configure a new calendar. Zero fields fall back to the
// defaults above; a nil Template is seeded by calendar type.
type CreateParams struct {
	Name     string
	Type     appdata.CalendarType
	Color    string
	Template map[string][]appdata.ActivityRef
}

// Create builds a calendar, persists it, and makes it the active one.
// Weekly calendars without an explicit template get all seven weekday
// slots ("0".."6") as empty lists; monthly templates start empty and fill
// lazily.
func (m *Manager) Create(ctx context.Context, p CreateParams) (appdata.Calendar, error) {
	if p.Name == "" {
		p.Name = DefaultName
	}
	if p.Type == "" {
		p.Type = appdata.CalendarWeekly
	}
	if p.Color == "" {
		p.Color = DefaultColor
	}
	if p.Type != appdata.CalendarWeekly && p.Type != appdata.CalendarMonthly {
		return appdata.Calendar{}, fmt.Errorf("unknown calendar type %q: %w", p.Type, common.ErrInvalidInput)
	}

	template := p.Template
	if template == nil {
		template = seedTemplate(p.Type)
	}

	now := m.now()
	cal := appdata.Calendar{
		ID:        m.newID(),
		Name:      p.Name,
		Type:      p.Type,
		Color:     p.Color,
		Template:  template,
		Events:    map[string][]appdata.ActivityRef{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	// Deep-copy the caller's template so later caller mutations cannot
	// reach into the stored document.
	cal = cal.CopyDeep()

	m.data.UpdateDocument(ctx, m.userID, func(doc appdata.Document) appdata.Document {
		doc.Calendars[cal.ID] = cal
		doc.ActiveCalendarID = cal.ID
		return doc
	})
	return cal, nil
}

// Clone deep-copies the calendar id into a new one with fresh timestamps
// and the clone suffix on its name, and makes the clone active.
func (m *Manager) Clone(ctx context.Context, id string) (appdata.Calendar, error) {
	var (
		cloned appdata.Calendar
		err    error
	)
	m.data.UpdateDocument(ctx, m.userID, func(doc appdata.Document) appdata.Document {
		original, ok := doc.Calendars[id]
		if !ok {
			err = fmt.Errorf("calendar %s: %w", id, common.ErrNotFound)
			return doc
		}
		now := m.now()
		cloned = original.CopyDeep()
		cloned.ID = m.newID()
		cloned.Name = original.Name + CloneSuffix
		cloned.CreatedAt = now
		cloned.UpdatedAt = now

		doc.Calendars[cloned.ID] = cloned
		doc.ActiveCalendarID = cloned.ID
		return doc
	})
	if err != nil {
		return appdata.Calendar{}, err
	}
	return cloned, nil
}

// Delete removes the calendar id. When it was the active one, the pointer
// is reassigned to an arbitrary remaining calendar (or cleared if none
// remain) in the same document write.
func (m *Manager) Delete(ctx context.Context, id string) error {
	var err error
	m.data.UpdateDocument(ctx, m.userID, func(doc appdata.Document) appdata.Document {
		if _, ok := doc.Calendars[id]; !ok {
			err = fmt.Errorf("calendar %s: %w", id, common.ErrNotFound)
			return doc
		}
		delete(doc.Calendars, id)
		if doc.ActiveCalendarID == id {
			doc.ActiveCalendarID = ""
			for remaining := range doc.Calendars {
				doc.ActiveCalendarID = remaining
				break
			}
		}
		return doc
	})
	return err
}

// SetActive points the active-calendar pointer at id and returns the
// calendar.
func (m *Manager) SetActive(ctx context.Context, id string) (appdata.Calendar, error) {
	var (
		cal appdata.Calendar
		err error
	)
	m.data.UpdateDocument(ctx, m.userID, func(doc appdata.Document) appdata.Document {
		c, ok := doc.Calendars[id]
		if !ok {
			err = fmt.Errorf("calendar %s: %w", id, common.ErrNotFound)
			return doc
		}
		cal = c
		doc.ActiveCalendarID = id
		return doc
	})
	if err != nil {
		return appdata.Calendar{}, err
	}
	return cal, nil
}

// Patch carries optional calendar mutations; nil fields stay untouched.
type Patch struct {
	Name     *string
	Color    *string
	Template *map[string][]appdata.ActivityRef
	Events   *map[string][]appdata.ActivityRef
}

// Update shallow-merges patch into the calendar id and refreshes its
// UpdatedAt stamp. CreatedAt is never touched.
func (m *Manager) Update(ctx context.Context, id string, patch Patch) (appdata.Calendar, error) {
	var (
		updated appdata.Calendar
		err     error
	)
	m.data.UpdateDocument(ctx, m.userID, func(doc appdata.Document) appdata.Document {
		cal, ok := doc.Calendars[id]
		if !ok {
			err = fmt.Errorf("calendar %s: %w", id, common.ErrNotFound)
			return doc
		}
		if patch.Name != nil {
			cal.Name = *patch.Name
		}
		if patch.Color != nil {
			cal.Color = *patch.Color
		}
		if patch.Template != nil {
			cal.Template = *patch.Template
		}
		if patch.Events != nil {
			cal.Events = *patch.Events
		}
		cal.UpdatedAt = m.now()
		cal = cal.CopyDeep()

		updated = cal
		doc.Calendars[id] = cal
		return doc
	})
	if err != nil {
		return appdata.Calendar{}, err
	}
	return updated, nil
}

// Calendars returns the user's calendars keyed by id.
func (m *Manager) Calendars(ctx context.Context) map[string]appdata.Calendar {
	return m.data.Document(ctx, m.userID).Calendars
}

// Active returns the active calendar, if any.
func (m *Manager) Active(ctx context.Context) (appdata.Calendar, bool) {
	doc := m.data.Document(ctx, m.userID)
	if doc.ActiveCalendarID == "" {
		return appdata.Calendar{}, false
	}
	cal, ok := doc.Calendars[doc.ActiveCalendarID]
	return cal, ok
}

// SeedDemo creates a demo weekly calendar (events on Mon/Wed/Fri) and a
// demo monthly calendar, but only when the user has none yet. The weekly
// one ends up active. It reports whether anything was created.
func (m *Manager) SeedDemo(ctx context.Context) (bool, error) {
	if len(m.Calendars(ctx)) > 0 {
		return false, nil
	}

	weekly, err := m.Create(ctx, CreateParams{
		Name: "Semana Demo",
		Type: appdata.CalendarWeekly,
		Template: map[string][]appdata.ActivityRef{
			"0": {},
			"1": {{RoutineID: "Rutina 1"}, {RoutineID: "Rutina 2"}},
			"2": {},
			"3": {{RoutineID: "Rutina 3"}},
			"4": {},
			"5": {{RoutineID: "Rutina 4"}, {RoutineID: "Rutina 5"}},
			"6": {},
		},
	})
	if err != nil {
		return false, err
	}

	day := m.now().Day()
	_, err = m.Create(ctx, CreateParams{
		Name: "Mes Demo",
		Type: appdata.CalendarMonthly,
		Template: map[string][]appdata.ActivityRef{
			strconv.Itoa(day):     {{RoutineID: "Rutina A"}, {RoutineID: "Rutina B"}},
			strconv.Itoa(day + 2): {{RoutineID: "Rutina C"}},
			strconv.Itoa(day + 5): {{RoutineID: "Rutina D"}, {RoutineID: "Rutina E"}},
		},
	})
	if err != nil {
		return false, err
	}

	if _, err := m.SetActive(ctx, weekly.ID); err != nil {
		return false, err
	}
	return true, nil
}

func seedTemplate(t appdata.CalendarType) map[string][]appdata.ActivityRef {
	template := make(map[string][]appdata.ActivityRef)
	if t == appdata.CalendarWeekly {
		for day := 0; day < 7; day++ {
			template[strconv.Itoa(day)] = []appdata.ActivityRef{}
		}
	}
	return template
}
