package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salat/internal/display"
	"github.com/smokyabdulrahman/salat/internal/prayer"
)

var flagQueryDays string

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <prayer>",
		Short: "Query a specific prayer time",
		Long:  "Query a specific prayer time for today, or across multiple days with --days.\n\nValid prayer names: Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha",
		Args:  cobra.ExactArgs(1),
		RunE:  runQuery,
	}

	cmd.Flags().StringVar(&flagQueryDays, "days", "", "Number of days to show (or 'week'/'month')")

	return cmd
}

// parseDays accepts a positive count, "week" or "month".
func parseDays(v string) (int, error) {
	switch v {
	case "":
		return 1, nil
	case "week":
		return 7, nil
	case "month":
		return 30, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > maxDays {
		return 0, fmt.Errorf("invalid --days value %q: must be a positive integer up to %d, 'week', or 'month'", v, maxDays)
	}
	return n, nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	p, err := prayer.ParsePrayer(args[0])
	if err != nil {
		return err
	}
	days, err := parseDays(flagQueryDays)
	if err != nil {
		return err
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	now := s.now()
	schedules, err := s.days(now, days)
	if err != nil {
		return err
	}

	if days == 1 {
		return printQuerySingle(stdout(cmd), s, p, schedules[0])
	}

	if FlagJSON {
		return printQueryJSON(stdout(cmd), s, p, schedules)
	}

	w := stdout(cmd)
	printHeader(w, display.Title(p.String()+" Times", fmt.Sprintf("%d Days", days)), s)
	tbl := display.ScheduleTable(schedules, []prayer.Prayer{p}, now, s.layout)
	fmt.Fprint(w, tbl.Render())
	fmt.Fprintln(w)
	return nil
}

type queryJSONSingle struct {
	Prayer   string `json:"prayer"`
	Time     string `json:"time"`
	Date     string `json:"date"`
	Hijri    string `json:"hijri,omitempty"`
	Fallback bool   `json:"fallback,omitempty"`
}

func printQuerySingle(w io.Writer, s *session, p prayer.Prayer, sch prayer.Schedule) error {
	if FlagJSON {
		return writeJSON(w, queryJSONSingle{
			Prayer:   p.Key(),
			Time:     sch.Time(p).Format(s.layout),
			Date:     sch.Date.Format("02 Jan 2006"),
			Hijri:    s.hijri(sch.Date),
			Fallback: sch.FellBack(p),
		})
	}
	fmt.Fprintf(w, "%s %s\n", p, display.FormatTime(sch, p, s.layout))
	return nil
}

type queryJSONMulti struct {
	Location locationJSON   `json:"location"`
	Prayer   string         `json:"prayer"`
	Days     []queryJSONDay `json:"days"`
}

type queryJSONDay struct {
	Date     string `json:"date"`
	Hijri    string `json:"hijri,omitempty"`
	Time     string `json:"time"`
	Fallback bool   `json:"fallback,omitempty"`
}

func printQueryJSON(w io.Writer, s *session, p prayer.Prayer, schedules []prayer.Schedule) error {
	out := queryJSONMulti{
		Location: s.locationJSON(),
		Prayer:   p.Key(),
		Days:     make([]queryJSONDay, 0, len(schedules)),
	}
	for _, sch := range schedules {
		out.Days = append(out.Days, queryJSONDay{
			Date:     sch.Date.Format("02 Jan 2006"),
			Hijri:    s.hijri(sch.Date),
			Time:     sch.Time(p).Format(s.layout),
			Fallback: sch.FellBack(p),
		})
	}
	return writeJSON(w, out)
}
