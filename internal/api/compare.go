package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/smokyabdulrahman/salat/internal/prayer"
)

// Entries converts the timings to instants on date in loc, in prayer order.
func (t Timings) Entries(date time.Time, loc *time.Location) ([]prayer.Entry, error) {
	raw := []struct {
		p prayer.Prayer
		s string
	}{
		{prayer.Fajr, t.Fajr},
		{prayer.Sunrise, t.Sunrise},
		{prayer.Dhuhr, t.Dhuhr},
		{prayer.Asr, t.Asr},
		{prayer.Maghrib, t.Maghrib},
		{prayer.Isha, t.Isha},
	}

	entries := make([]prayer.Entry, 0, len(raw))
	for _, r := range raw {
		at, err := parseClock(r.s, date, loc)
		if err != nil {
			return nil, fmt.Errorf("failed to parse time for %s (%q): %w", r.p, r.s, err)
		}
		entries = append(entries, prayer.Entry{Prayer: r.p, Time: at})
	}
	return entries, nil
}

// Location loads the IANA zone the API reported for this day.
func (m Meta) Location() (*time.Location, error) {
	if m.Timezone == "" {
		return nil, fmt.Errorf("API response carries no timezone")
	}
	loc, err := time.LoadLocation(m.Timezone)
	if err != nil {
		return nil, fmt.Errorf("API timezone %q: %w", m.Timezone, err)
	}
	return loc, nil
}

// parseClock reads "15:02" or "15:02 (BST)" as that wall-clock time on
// date's calendar day in loc.
func parseClock(raw string, date time.Time, loc *time.Location) (time.Time, error) {
	clock, _, _ := strings.Cut(strings.TrimSpace(raw), " ")
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q", raw)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}

// Difference is one prayer computed locally and reported by the API.
type Difference struct {
	Prayer prayer.Prayer `json:"prayer"`
	Local  time.Time     `json:"local"`
	Remote time.Time     `json:"remote"`
	Delta  time.Duration `json:"delta"` // Local - Remote
}

// Minutes returns the delta in whole minutes, rounded.
func (d Difference) Minutes() int {
	return int(d.Delta.Round(time.Minute) / time.Minute)
}

// Compare pairs every remote entry with the local time of the same prayer.
func Compare(local prayer.Schedule, remote []prayer.Entry) []Difference {
	out := make([]Difference, 0, len(remote))
	for _, e := range remote {
		l := local.Time(e.Prayer)
		out = append(out, Difference{Prayer: e.Prayer, Local: l, Remote: e.Time, Delta: l.Sub(e.Time)})
	}
	return out
}

// MaxDelta returns the largest absolute difference.
func MaxDelta(diffs []Difference) time.Duration {
	var largest time.Duration
	for _, d := range diffs {
		abs := d.Delta
		if abs < 0 {
			abs = -abs
		}
		if abs > largest {
			largest = abs
		}
	}
	return largest
}
