// Package metrics derives comparative KPI summaries from a user's activity
// log stream. ComputeWindow is pure: no stored state, no side effects, and
// identical inputs always produce identical reports.
package metrics

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/LautaroLeall/Routine-Calendary/internal/appdata"
)

const isoDate = "2006-01-02"

// DefaultWindowDays is the KPI comparison window used by the dashboard.
const DefaultWindowDays = 7

// NewSentinel marks a category that had no activity in the previous window
// but has some now, where a percentage delta is undefined.
const NewSentinel = "New"

// Category couples a status with its display metadata. Order is fixed so
// charts and summaries render stably.
type Category struct {
	Status appdata.Status
	Title  string
	Color  string
}

// Categories returns the fixed category order with display metadata.
func Categories() []Category {
	return []Category{
		{Status: appdata.StatusCompleted, Title: "Completadas", Color: "#00c176"},
		{Status: appdata.StatusSkipped, Title: "Saltadas", Color: "#ff8a65"},
		{Status: appdata.StatusPostponed, Title: "Pospuestas", Color: "#ffd54f"},
		{Status: appdata.StatusMissed, Title: "No cumplidas", Color: "#ff6b6b"},
	}
}

// Options select the comparison windows.
type Options struct {
	// WindowDays is the window length; zero or negative falls back to
	// DefaultWindowDays.
	WindowDays int

	// AsOf is the inclusive end of the current window. The zero value
	// falls back to today.
	AsOf time.Time
}

// Summary is the per-category comparison between the two windows.
type Summary struct {
	Status   appdata.Status
	Title    string
	Current  int
	Previous int
	// Delta renders the relative change: "0%", signed percents, or the
	// NewSentinel when the previous count was zero.
	Delta string
}

// Share is a category's slice of the current window total, for chart
// legends.
type Share struct {
	Status appdata.Status
	Title  string
	Color  string
	Value  int
	Pct    string
}

// Window is an inclusive ISO date range.
type Window struct {
	Start string
	End   string
}

// Report is the display-ready aggregate over both windows.
type Report struct {
	Summary       []Summary
	Shares        []Share
	Current       Window
	Previous      Window
	TotalCurrent  int
	TotalPrevious int
}

// ComputeWindow buckets logs into the current window (the WindowDays days
// ending at AsOf, inclusive) and the equally long window immediately before
// it, and summarizes the four status categories. Entries outside both
// windows, with unknown statuses, or with unparseable dates are skipped.
func ComputeWindow(logs []appdata.LogEntry, opts Options) Report {
	days := opts.WindowDays
	if days <= 0 {
		days = DefaultWindowDays
	}
	asOf := opts.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}
	end := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)

	curStart := end.AddDate(0, 0, -(days - 1))
	prevEnd := curStart.AddDate(0, 0, -1)
	prevStart := prevEnd.AddDate(0, 0, -(days - 1))

	current := Window{Start: curStart.Format(isoDate), End: end.Format(isoDate)}
	previous := Window{Start: prevStart.Format(isoDate), End: prevEnd.Format(isoDate)}

	countsCur := make(map[appdata.Status]int, 4)
	countsPrev := make(map[appdata.Status]int, 4)

	for _, entry := range logs {
		status := appdata.Status(strings.ToLower(strings.TrimSpace(string(entry.Status))))
		if !status.Valid() {
			continue
		}
		date, ok := normalizeDate(entry.Date)
		if !ok {
			continue
		}
		switch {
		case inRange(date, current):
			countsCur[status]++
		case inRange(date, previous):
			countsPrev[status]++
		}
	}

	report := Report{Current: current, Previous: previous}
	for _, c := range Categories() {
		report.TotalCurrent += countsCur[c.Status]
		report.TotalPrevious += countsPrev[c.Status]
	}
	for _, c := range Categories() {
		cur := countsCur[c.Status]
		prev := countsPrev[c.Status]
		report.Summary = append(report.Summary, Summary{
			Status:   c.Status,
			Title:    c.Title,
			Current:  cur,
			Previous: prev,
			Delta:    formatDelta(cur, prev),
		})
		report.Shares = append(report.Shares, Share{
			Status: c.Status,
			Title:  c.Title,
			Color:  c.Color,
			Value:  cur,
			Pct:    formatShare(cur, report.TotalCurrent),
		})
	}
	return report
}

// normalizeDate reduces a log date to its ISO calendar day. Plain dates and
// RFC 3339 timestamps are accepted; anything else is skipped.
func normalizeDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(isoDate, raw); err == nil {
		return t.Format(isoDate), true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.Format(isoDate), true
	}
	return "", false
}

// inRange uses string comparison: ISO dates order lexicographically.
func inRange(date string, w Window) bool {
	return date >= w.Start && date <= w.End
}

// formatDelta renders the relative change between the windows. Growth from
// zero has no defined percentage and yields the NewSentinel instead.
func formatDelta(cur, prev int) string {
	if prev == 0 {
		if cur == 0 {
			return "0%"
		}
		return NewSentinel
	}
	raw := float64(cur-prev) / float64(prev) * 100
	if raw == 0 {
		return "0%"
	}
	if math.Abs(raw) < 1 {
		return fmt.Sprintf("%+.1f%%", raw)
	}
	return fmt.Sprintf("%+d%%", int(math.Round(raw)))
}

// formatShare renders a category's percentage of the window total.
func formatShare(value, total int) string {
	if total == 0 || value == 0 {
		return "0%"
	}
	pct := float64(value) / float64(total) * 100
	if pct < 1 {
		return fmt.Sprintf("%.1f%%", pct)
	}
	return fmt.Sprintf("%d%%", int(math.Round(pct)))
}
