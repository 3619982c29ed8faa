package display

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/smokyabdulrahman/salat/internal/prayer"
)

// FallbackMarker is appended to times produced by a fallback rule.
const FallbackMarker = "*"

// TimeLayout maps a configured time format ("12h" or "24h") to a Go layout.
func TimeLayout(format string) string {
	if format == "12h" {
		return "3:04 PM"
	}
	return "15:04"
}

// FormatTime renders the time of p in s, marked when it came from a fallback.
func FormatTime(s prayer.Schedule, p prayer.Prayer, layout string) string {
	out := s.Time(p).Format(layout)
	if s.FellBack(p) {
		out += FallbackMarker
	}
	return out
}

// FallbackNotes describes every fallback rule used across the schedules,
// once per (prayer, rule) pair, in order of first appearance.
func FallbackNotes(days ...prayer.Schedule) []string {
	seen := map[prayer.Fallback]bool{}
	var notes []string
	for _, s := range days {
		for _, f := range s.Fallbacks {
			if seen[f] {
				continue
			}
			seen[f] = true
			notes = append(notes, fmt.Sprintf("%s %s estimated by %s", FallbackMarker, f.Prayer, f.Rule))
		}
	}
	return notes
}

// Today holds everything the daily view shows.
type Today struct {
	Location string // "City, Country" or coordinates
	Timezone string
	Method   string
	Hijri    string // formatted Hijri date; empty hides the line
	Schedule prayer.Schedule
	Status   prayer.Status
	Prayers  []prayer.Prayer
	Now      time.Time
	Layout   string // Go time layout
}

// RenderToday writes the daily view: a header, one line per prayer with the
// current prayer dimmed and the next one highlighted, then fallback notes.
func RenderToday(w io.Writer, v Today) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", Bold("Prayer Times"))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %s\n", v.Location)
	if v.Timezone != "" {
		fmt.Fprintf(w, "  %s\n", v.Timezone)
	}
	fmt.Fprintf(w, "  %s\n", v.Schedule.Date.Format("Monday, 02 January 2006"))
	if v.Hijri != "" {
		fmt.Fprintf(w, "  %s\n", v.Hijri)
	}
	if v.Method != "" {
		fmt.Fprintf(w, "  %s\n", Gray(v.Method))
	}
	fmt.Fprintln(w)

	maxNameLen := 0
	for _, p := range v.Prayers {
		if n := len(p.String()); n > maxNameLen {
			maxNameLen = n
		}
	}

	nextShown := false
	for _, p := range v.Prayers {
		line := fmt.Sprintf("  %s  %s", padRight(p.String(), maxNameLen), FormatTime(v.Schedule, p, v.Layout))

		switch {
		case p == v.Status.Current:
			fmt.Fprintln(w, Dim(line))
		case p == v.Status.Next && !v.Status.NextIsTomorrow:
			nextShown = true
			remaining := prayer.FormatRemaining(prayer.TimeRemaining(v.Status.NextEntry(), v.Now))
			fmt.Fprintln(w, Accent(line)+Accent(fmt.Sprintf("  <- next in %s", remaining)))
		default:
			fmt.Fprintln(w, line)
		}
	}

	if !nextShown && !v.Status.NextTime.IsZero() {
		when := v.Status.NextTime.Format(v.Layout)
		if v.Status.NextIsTomorrow {
			when = "tomorrow " + when
		}
		remaining := prayer.FormatRemaining(prayer.TimeRemaining(v.Status.NextEntry(), v.Now))
		fmt.Fprintf(w, "\n  %s\n", Accent(fmt.Sprintf("Next: %s %s (in %s)", v.Status.Next, when, remaining)))
	}

	if notes := FallbackNotes(v.Schedule); len(notes) > 0 {
		fmt.Fprintln(w)
		for _, n := range notes {
			fmt.Fprintf(w, "  %s\n", Gray(n))
		}
	}
	fmt.Fprintln(w)
}

// ScheduleTable builds a grid with one row per day and one column per
// prayer. The row for today's date is highlighted and earlier rows dimmed.
func ScheduleTable(days []prayer.Schedule, prayers []prayer.Prayer, today time.Time, layout string) *Table {
	headers := make([]string, 0, len(prayers)+1)
	headers = append(headers, "Date")
	for _, p := range prayers {
		headers = append(headers, p.String())
	}
	tbl := NewTable(headers)

	todayKey := today.Format("2006-01-02")
	for i, s := range days {
		row := make([]string, 0, len(headers))
		row = append(row, s.Date.Format("Mon 02 Jan"))
		for _, p := range prayers {
			row = append(row, FormatTime(s, p, layout))
		}
		tbl.AddRow(row)

		switch key := s.Date.Format("2006-01-02"); {
		case key == todayKey:
			tbl.SetRowStyle(i, StyleAccent)
		case key < todayKey:
			tbl.SetRowStyle(i, StyleDim)
		}
	}

	for _, n := range FallbackNotes(days...) {
		tbl.AddNote(n)
	}
	return tbl
}

// Title renders a bold section title, e.g. "Prayer Times - 7 Days".
func Title(parts ...string) string {
	return Bold(strings.Join(parts, " - "))
}
