package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salat/internal/api"
	"github.com/smokyabdulrahman/salat/internal/display"
	"github.com/smokyabdulrahman/salat/internal/prayer"
	"github.com/smokyabdulrahman/salat/internal/resilience"
)

var (
	flagCompareDays      int
	flagCompareTolerance time.Duration
)

// newAPIClient is replaced in tests.
var newAPIClient = func() *api.Client {
	return api.NewClient(resilience.NewClient(lookupClientConfig("aladhan", logger)))
}

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare local times with the Al Adhan API",
		Long: "Compute today's schedule locally and fetch the same day from api.aladhan.com\n" +
			"with the same method and school. Exits with an error when any prayer differs\n" +
			"by more than --tolerance.",
		Args: cobra.NoArgs,
		RunE: runCompare,
	}
	cmd.Flags().IntVar(&flagCompareDays, "days", 1, "Number of days to compare, starting today (max 31)")
	cmd.Flags().DurationVar(&flagCompareTolerance, "tolerance", 2*time.Minute, "Largest accepted difference")
	return cmd
}

type compareDay struct {
	Date  time.Time
	Diffs []api.Difference
	// Hijri dates as converted locally and as reported by the API.
	HijriLocal  string
	HijriRemote string
}

func runCompare(cmd *cobra.Command, args []string) error {
	if FlagOffline {
		return fmt.Errorf("compare needs the network; drop --offline")
	}
	if flagCompareDays < 1 || flagCompareDays > 31 {
		return fmt.Errorf("invalid --days %d: must be between 1 and 31", flagCompareDays)
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	if s.cfg.FajrAngle != nil || s.cfg.IshaAngle != nil || s.cfg.IshaInterval != nil || s.cfg.Adjustments != nil {
		logger.Warn().Msg("custom angles and adjustments are not sent to the API; expect differences")
	}

	days, err := fetchComparison(cmd.Context(), newAPIClient(), s, s.now(), flagCompareDays)
	if err != nil {
		return err
	}

	var worst time.Duration
	for _, d := range days {
		if m := api.MaxDelta(d.Diffs); m > worst {
			worst = m
		}
	}

	if FlagJSON {
		err = printCompareJSON(stdout(cmd), s, days, worst)
	} else {
		printCompare(stdout(cmd), s, days, worst)
	}
	if err != nil {
		return err
	}

	if worst > flagCompareTolerance {
		return fmt.Errorf("local times differ from the API by up to %s (tolerance %s)", worst, flagCompareTolerance)
	}
	return nil
}

// fetchComparison fetches n days of reference timings and pairs them with
// the local schedules. A single day uses the timings endpoint, longer ranges
// the monthly calendar.
func fetchComparison(ctx context.Context, client *api.Client, s *session, start time.Time, n int) ([]compareDay, error) {
	q := api.QueryFor(s.location.Latitude, s.location.Longitude, s.params)

	remote := make(map[string]api.Data, n)
	if n == 1 {
		data, err := client.Day(ctx, start, q)
		if err != nil {
			return nil, err
		}
		remote[start.Format("2006-01-02")] = *data
	} else {
		fetched := map[string]bool{}
		for i := 0; i < n; i++ {
			d := start.AddDate(0, 0, i)
			if fetched[d.Format("2006-01")] {
				continue
			}
			fetched[d.Format("2006-01")] = true

			month, err := client.Month(ctx, d.Year(), d.Month(), q)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch calendar for %s: %w", d.Format("2006-01"), err)
			}
			for day, data := range month {
				date := time.Date(d.Year(), d.Month(), day+1, 0, 0, 0, 0, s.tz)
				remote[date.Format("2006-01-02")] = data
			}
		}
	}

	out := make([]compareDay, 0, n)
	for i := 0; i < n; i++ {
		date := start.AddDate(0, 0, i)
		data, ok := remote[date.Format("2006-01-02")]
		if !ok {
			return nil, fmt.Errorf("API returned no timings for %s", date.Format("2006-01-02"))
		}
		if id := data.Meta.Method.ID; id != q.Method {
			logger.Warn().Int("requested", q.Method).Int("used", id).Msg("API computed with a different method")
		}

		tz, err := data.Meta.Location()
		if err != nil {
			logger.Debug().Err(err).Msg("using local timezone for API timings")
			tz = s.tz
		}
		entries, err := data.Timings.Entries(date, tz)
		if err != nil {
			return nil, err
		}

		local, err := s.schedule(date)
		if err != nil {
			return nil, err
		}
		day := compareDay{
			Date:       local.Date,
			Diffs:      api.Compare(local, entries),
			HijriLocal: s.hijri(local.Date),
		}
		if h, err := data.Date.Hijri.Date(); err == nil {
			day.HijriRemote = h.Format()
		}
		out = append(out, day)
	}
	return out, nil
}

func printCompare(w io.Writer, s *session, days []compareDay, worst time.Duration) {
	printHeader(w, display.Title("Local vs Al Adhan API"), s)

	tbl := display.NewTable([]string{"Date", "Prayer", "Local", "API", "Delta"})
	for _, d := range days {
		for _, diff := range d.Diffs {
			delta := fmt.Sprintf("%+d min", diff.Minutes())
			abs := diff.Delta
			if abs < 0 {
				abs = -abs
			}
			if abs > flagCompareTolerance {
				delta += " !"
			}
			tbl.AddRow([]string{
				d.Date.Format("Mon 02 Jan"),
				diff.Prayer.String(),
				diff.Local.In(s.tz).Format(s.layout),
				diff.Remote.In(s.tz).Format(s.layout),
				delta,
			})
		}
	}
	for _, d := range days {
		if d.HijriRemote != "" && d.HijriRemote != d.HijriLocal {
			tbl.AddNote(fmt.Sprintf("%s Hijri: %s locally, %s from the API", d.Date.Format("Mon 02 Jan"), d.HijriLocal, d.HijriRemote))
		}
	}
	fmt.Fprint(w, tbl.Render())
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Largest difference: %s\n\n", worst)
}

type compareJSON struct {
	Location  locationJSON     `json:"location"`
	Method    string           `json:"method"`
	Tolerance string           `json:"tolerance"`
	Largest   string           `json:"largest"`
	Days      []compareJSONDay `json:"days"`
}

type compareJSONDay struct {
	Date        string              `json:"date"`
	HijriLocal  string              `json:"hijri_local,omitempty"`
	HijriRemote string              `json:"hijri_remote,omitempty"`
	Differences []compareJSONPrayer `json:"differences"`
}

type compareJSONPrayer struct {
	Prayer       prayer.Prayer `json:"prayer"`
	Local        time.Time     `json:"local"`
	Remote       time.Time     `json:"remote"`
	DeltaMinutes int           `json:"delta_minutes"`
}

func printCompareJSON(w io.Writer, s *session, days []compareDay, worst time.Duration) error {
	out := compareJSON{
		Location:  s.locationJSON(),
		Method:    s.params.Method.String(),
		Tolerance: flagCompareTolerance.String(),
		Largest:   worst.String(),
		Days:      make([]compareJSONDay, 0, len(days)),
	}
	for _, d := range days {
		day := compareJSONDay{
			Date:        d.Date.Format("2006-01-02"),
			HijriLocal:  d.HijriLocal,
			HijriRemote: d.HijriRemote,
		}
		for _, diff := range d.Diffs {
			day.Differences = append(day.Differences, compareJSONPrayer{
				Prayer:       diff.Prayer,
				Local:        diff.Local,
				Remote:       diff.Remote,
				DeltaMinutes: diff.Minutes(),
			})
		}
		out.Days = append(out.Days, day)
	}
	return writeJSON(w, out)
}
