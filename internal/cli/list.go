package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salat/internal/display"
	"github.com/smokyabdulrahman/salat/internal/prayer"
)

// maxDays bounds list and query ranges.
const maxDays = 366

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [days]",
		Short: "Show prayer times for multiple days",
		Long:  "Display a grid of prayer times for N days (default: 7).",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days := 7
			if len(args) > 0 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 || n > maxDays {
					return fmt.Errorf("invalid number of days: %q (must be between 1 and %d)", args[0], maxDays)
				}
				days = n
			}
			return runList(cmd, days)
		},
	}
}

func newWeekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "week",
		Short: "Show prayer times for the next 7 days",
		Long:  "Alias for 'list 7'. Display a grid of prayer times for 7 days.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, 7)
		},
	}
}

func newMonthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "month",
		Short: "Show prayer times for the next 30 days",
		Long:  "Alias for 'list 30'. Display a grid of prayer times for 30 days.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, 30)
		},
	}
}

// runList prints days schedules starting today.
func runList(cmd *cobra.Command, days int) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	prayers, err := s.prayers("")
	if err != nil {
		return err
	}

	now := s.now()
	schedules, err := s.days(now, days)
	if err != nil {
		return err
	}

	if FlagJSON {
		return printListJSON(stdout(cmd), s, schedules, prayers)
	}

	w := stdout(cmd)
	printHeader(w, display.Title("Prayer Times", fmt.Sprintf("%d Days", days)), s)
	tbl := display.ScheduleTable(schedules, prayers, now, s.layout)
	fmt.Fprint(w, tbl.Render())
	fmt.Fprintln(w)
	return nil
}

// printHeader writes the title block shared by the grid views.
func printHeader(w io.Writer, title string, s *session) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", s.location.Label())
	fmt.Fprintf(w, "  %s\n", display.Gray(s.tz.String()+", "+s.methodLabel()))
	fmt.Fprintln(w)
}

// listJSONOutput is the JSON structure for the list command.
type listJSONOutput struct {
	Location locationJSON  `json:"location"`
	Method   string        `json:"method"`
	Days     []listJSONDay `json:"days"`
}

type listJSONDay struct {
	Date      string            `json:"date"`
	Hijri     string            `json:"hijri,omitempty"`
	Timings   map[string]string `json:"timings"`
	Fallbacks []prayer.Fallback `json:"fallbacks,omitempty"`
}

func printListJSON(w io.Writer, s *session, schedules []prayer.Schedule, prayers []prayer.Prayer) error {
	out := listJSONOutput{
		Location: s.locationJSON(),
		Method:   s.params.Method.String(),
		Days:     make([]listJSONDay, 0, len(schedules)),
	}
	for _, sch := range schedules {
		out.Days = append(out.Days, listJSONDay{
			Date:      sch.Date.Format("02 Jan 2006"),
			Hijri:     s.hijri(sch.Date),
			Timings:   timingsMap(sch, prayers, s.layout),
			Fallbacks: sch.Fallbacks,
		})
	}
	return writeJSON(w, out)
}
