package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salat/internal/display"
	"github.com/smokyabdulrahman/salat/internal/prayer"
)

func runToday(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	prayers, err := s.prayers("")
	if err != nil {
		return err
	}

	now := s.now()
	st, sch, err := prayer.StatusAt(s.location.Coordinates(), now, s.params)
	if err != nil {
		return err
	}

	if FlagJSON {
		return printTodayJSON(stdout(cmd), s, sch, st, prayers, now)
	}

	display.RenderToday(stdout(cmd), display.Today{
		Location: s.location.Label(),
		Timezone: s.tz.String(),
		Method:   s.methodLabel(),
		Hijri:    s.hijri(now),
		Schedule: sch,
		Status:   st,
		Prayers:  prayers,
		Now:      now,
		Layout:   s.layout,
	})
	return nil
}

// todayJSON is the JSON output structure for the root command.
type todayJSON struct {
	Location  locationJSON      `json:"location"`
	Date      todayJSONDate     `json:"date"`
	Method    string            `json:"method"`
	School    string            `json:"school"`
	Timings   map[string]string `json:"timings"`
	Fallbacks []prayer.Fallback `json:"fallbacks,omitempty"`
	Current   string            `json:"current"`
	Next      *todayJSONNext    `json:"next"`
}

type todayJSONDate struct {
	Gregorian string `json:"gregorian"`
	Hijri     string `json:"hijri,omitempty"`
}

type todayJSONNext struct {
	Prayer    string `json:"prayer"`
	Time      string `json:"time"`
	Tomorrow  bool   `json:"tomorrow,omitempty"`
	Remaining string `json:"remaining"`
}

// timingsMap renders the selected prayers keyed by lower-case name.
func timingsMap(sch prayer.Schedule, prayers []prayer.Prayer, layout string) map[string]string {
	out := make(map[string]string, len(prayers))
	for _, e := range sch.Select(prayers) {
		out[e.Prayer.Key()] = e.Time.Format(layout)
	}
	return out
}

// printTodayJSON renders structured JSON output.
func printTodayJSON(w io.Writer, s *session, sch prayer.Schedule, st prayer.Status, prayers []prayer.Prayer, now time.Time) error {
	out := todayJSON{
		Location: s.locationJSON(),
		Date: todayJSONDate{
			Gregorian: now.Format("02 Jan 2006"),
			Hijri:     s.hijri(now),
		},
		Method:    s.params.Method.String(),
		School:    s.params.Madhab.String(),
		Timings:   timingsMap(sch, prayers, s.layout),
		Fallbacks: sch.Fallbacks,
	}
	if st.Current != prayer.None {
		out.Current = st.Current.Key()
	}
	if !st.NextTime.IsZero() {
		out.Next = &todayJSONNext{
			Prayer:    st.Next.Key(),
			Time:      st.NextTime.Format(s.layout),
			Tomorrow:  st.NextIsTomorrow,
			Remaining: prayer.FormatRemaining(prayer.TimeRemaining(st.NextEntry(), now)),
		}
	}
	return writeJSON(w, out)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// writeJSONLine writes v as a single compact line.
func writeJSONLine(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}
