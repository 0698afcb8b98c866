package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/LautaroLeall/Routine-Calendary/internal/appdata"
	"github.com/LautaroLeall/Routine-Calendary/internal/common"
	"github.com/LautaroLeall/Routine-Calendary/internal/metrics"
)

// AddLog prompts for a routine name, an outcome status, and a date, and
// appends the entry to the user's activity log.
func (a *App) AddLog(ctx context.Context) error {
	user := a.auth.CurrentUser(ctx)
	if user == nil {
		printlnFn("Not logged in")
		return nil
	}

	routine, err := getSimpleText(a.reader, "Routine name", os.Stdout)
	if err != nil {
		return err
	}
	if routine == "" {
		return fmt.Errorf("routine name is required: %w", common.ErrInvalidInput)
	}

	statusLine, err := getSimpleText(a.reader, "Status: completed, skipped, postponed, or missed", os.Stdout)
	if err != nil {
		return err
	}
	status := appdata.Status(strings.ToLower(strings.TrimSpace(statusLine)))
	if !status.Valid() {
		return fmt.Errorf("unknown status %q: %w", statusLine, common.ErrInvalidInput)
	}

	date, err := getSimpleText(a.reader, "Date YYYY-MM-DD (empty for today)", os.Stdout)
	if err != nil {
		return err
	}
	if date == "" {
		date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("date %q is not valid: %w", date, common.ErrInvalidInput)
	}

	a.data.AppendLog(ctx, user.ID, appdata.LogEntry{
		Date:      date,
		RoutineID: routine,
		Status:    status,
	})

	printlnFn("Logged", routine, "as", string(status), "on", date)
	return nil
}

// ClearLogs resets the user's activity log after confirmation.
func (a *App) ClearLogs(ctx context.Context) error {
	user := a.auth.CurrentUser(ctx)
	if user == nil {
		printlnFn("Not logged in")
		return nil
	}

	ok, err := GetConfirm(a.reader, "Clear the whole activity log?", os.Stdout)
	if err != nil {
		return err
	}
	if !ok {
		printlnFn("Aborted")
		return nil
	}

	a.data.ClearLogs(ctx, user.ID)
	printlnFn("Activity log cleared")
	return nil
}

// Stats prints the KPI comparison report over the configured window.
func (a *App) Stats(ctx context.Context) error {
	user := a.auth.CurrentUser(ctx)
	if user == nil {
		printlnFn("Not logged in")
		return nil
	}

	doc := a.data.Document(ctx, user.ID)
	report := metrics.ComputeWindow(doc.Logs, metrics.Options{WindowDays: a.config.WindowDays})

	printlnFn(fmt.Sprintf("Window %s .. %s (previous %s .. %s)",
		report.Current.Start, report.Current.End,
		report.Previous.Start, report.Previous.End))

	for _, s := range report.Summary {
		printlnFn(fmt.Sprintf("%-14s %3d (prev %3d, %s)", s.Title, s.Current, s.Previous, s.Delta))
	}

	printlnFn("Total:", report.TotalCurrent)
	for _, share := range report.Shares {
		printlnFn(fmt.Sprintf("  %-14s %s", share.Title, share.Pct))
	}
	return nil
}
