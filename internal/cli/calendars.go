package cli

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/LautaroLeall/Routine-Calendary/internal/appdata"
	"github.com/LautaroLeall/Routine-Calendary/internal/calendar"
)

// ListCalendars prints the user's calendars, marking the active one.
func (a *App) ListCalendars(ctx context.Context) error {
	m, err := a.manager(ctx)
	if err != nil {
		return err
	}

	calendars := m.Calendars(ctx)
	if len(calendars) == 0 {
		printlnFn("No calendars yet. Try 'addcal' or 'demo'.")
		return nil
	}

	active, _ := m.Active(ctx)

	ids := make([]string, 0, len(calendars))
	for id := range calendars {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		cal := calendars[id]
		marker := " "
		if cal.ID == active.ID {
			marker = "*"
		}
		printlnFn(fmt.Sprintf("%s %s  %-20s %-8s %s", marker, cal.ID, cal.Name, cal.Type, cal.Color))
	}
	return nil
}

// AddCalendar prompts for a name, type, and color and creates a calendar.
// Empty answers take the defaults.
func (a *App) AddCalendar(ctx context.Context) error {
	m, err := a.manager(ctx)
	if err != nil {
		return err
	}

	name, err := getSimpleText(a.reader, "Calendar name (empty for default)", os.Stdout)
	if err != nil {
		return err
	}
	kind, err := getSimpleText(a.reader, "Type: weekly or monthly (empty for weekly)", os.Stdout)
	if err != nil {
		return err
	}
	color, err := getSimpleText(a.reader, "Color, e.g. #00c176 (empty for default)", os.Stdout)
	if err != nil {
		return err
	}

	cal, err := m.Create(ctx, calendar.CreateParams{
		Name:  name,
		Type:  appdata.CalendarType(kind),
		Color: color,
	})
	if err != nil {
		return err
	}

	printlnFn("Created", cal.Name, "("+cal.ID+"), now active")
	return nil
}

// CloneCalendar prompts for a calendar id and clones it.
func (a *App) CloneCalendar(ctx context.Context) error {
	m, err := a.manager(ctx)
	if err != nil {
		return err
	}

	id, err := getSimpleText(a.reader, "Calendar id to clone", os.Stdout)
	if err != nil {
		return err
	}

	clone, err := m.Clone(ctx, id)
	if err != nil {
		return err
	}

	printlnFn("Cloned into", clone.Name, "("+clone.ID+"), now active")
	return nil
}

// DeleteCalendar prompts for a calendar id and deletes it.
func (a *App) DeleteCalendar(ctx context.Context) error {
	m, err := a.manager(ctx)
	if err != nil {
		return err
	}

	id, err := getSimpleText(a.reader, "Calendar id to delete", os.Stdout)
	if err != nil {
		return err
	}

	if err := m.Delete(ctx, id); err != nil {
		return err
	}

	printlnFn("Deleted", id)
	return nil
}

// UseCalendar prompts for a calendar id and makes it active.
func (a *App) UseCalendar(ctx context.Context) error {
	m, err := a.manager(ctx)
	if err != nil {
		return err
	}

	id, err := getSimpleText(a.reader, "Calendar id to activate", os.Stdout)
	if err != nil {
		return err
	}

	cal, err := m.SetActive(ctx, id)
	if err != nil {
		return err
	}

	printlnFn("Active calendar:", cal.Name)
	return nil
}

// SeedDemo creates the demo calendars when the user has none yet.
func (a *App) SeedDemo(ctx context.Context) error {
	m, err := a.manager(ctx)
	if err != nil {
		return err
	}

	created, err := m.SeedDemo(ctx)
	if err != nil {
		return err
	}
	if !created {
		printlnFn("You already have calendars; demo data was not seeded")
		return nil
	}

	printlnFn("Demo calendars created")
	return a.ListCalendars(ctx)
}
