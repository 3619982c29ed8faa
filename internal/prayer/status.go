package prayer

import (
	"fmt"
	"time"

	"github.com/smokyabdulrahman/salat/internal/solar"
)

// Status describes where a reference instant falls within a day's schedule.
type Status struct {
	Current        Prayer
	Next           Prayer
	NextTime       time.Time // zero when NextIsTomorrow and only one schedule was evaluated
	NextIsTomorrow bool
}

// NextEntry returns the next prayer as an Entry.
func (st Status) NextEntry() Entry {
	return Entry{Prayer: st.Next, Time: st.NextTime}
}

// Evaluate reports the current and next prayer at ref. An entry whose time
// equals ref has begun. Sunrise is never reported as current: between Sunrise
// and Dhuhr the current prayer is None, as it is before Fajr.
func Evaluate(s Schedule, ref time.Time) Status {
	entries := s.Entries()
	st := Status{Current: None}

	for i, e := range entries {
		if ref.Before(e.Time) {
			break
		}
		if i+1 == len(entries) || ref.Before(entries[i+1].Time) {
			if e.Prayer != Sunrise {
				st.Current = e.Prayer
			}
			break
		}
	}

	for _, e := range entries {
		if e.Time.After(ref) {
			st.Next = e.Prayer
			st.NextTime = e.Time
			return st
		}
	}

	st.Next = Fajr
	st.NextIsTomorrow = true
	return st
}

// StatusAt computes the schedule for ref's calendar date and evaluates it.
// After Isha the following day's schedule is computed to fill NextTime.
func StatusAt(c solar.Coordinates, ref time.Time, p Parameters) (Status, Schedule, error) {
	today, err := ComputeSchedule(c, ref, p)
	if err != nil {
		return Status{}, Schedule{}, err
	}

	st := Evaluate(today, ref)
	if st.NextIsTomorrow {
		y, m, d := ref.Date()
		tomorrow, err := ComputeSchedule(c, time.Date(y, m, d+1, 12, 0, 0, 0, ref.Location()), p)
		if err != nil {
			return Status{}, Schedule{}, fmt.Errorf("computing tomorrow's schedule: %w", err)
		}
		st.NextTime = tomorrow.Fajr
	}
	return st, today, nil
}

// TimeRemaining returns the duration until the entry's time.
func TimeRemaining(e Entry, now time.Time) time.Duration {
	return e.Time.Sub(now)
}

// FormatRemaining formats a duration as "Xh Ym" or "Ym" if less than an hour.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		return "0m"
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60

	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// FormatCountdown formats a duration as a zero-padded "HH:MM:SS" countdown.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total%3600/60, total%60)
}
