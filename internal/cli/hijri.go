package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salat/internal/hijri"
)

var flagHijriAdjust int

func newHijriCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hijri [YYYY-MM-DD]",
		Short: "Convert a Gregorian date to the Hijri calendar",
		Long:  "Print the tabular Hijri date for today or the given Gregorian date.\nUse --adjust (or `config set hijri_adjust`) to shift by up to two days to match local moon sighting.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHijri,
	}
	cmd.Flags().IntVar(&flagHijriAdjust, "adjust", 0, "Days to add to the tabular date (-2..2, overrides config)")
	return cmd
}

type hijriJSON struct {
	Gregorian string     `json:"gregorian"`
	Adjust    int        `json:"adjust"`
	Hijri     hijri.Date `json:"hijri"`
	Month     string     `json:"month"`
	Formatted string     `json:"formatted"`
}

func runHijri(cmd *cobra.Command, args []string) error {
	cfg, err := effectiveConfig(cmd)
	if err != nil {
		return err
	}
	tz, err := cfg.Location()
	if err != nil {
		return err
	}

	adjust := cfg.HijriAdjust
	if cmd.Flags().Changed("adjust") {
		adjust = flagHijriAdjust
	}
	if adjust < -2 || adjust > 2 {
		return fmt.Errorf("invalid --adjust %d: must be between -2 and 2", adjust)
	}

	date := nowFunc().In(tz)
	if len(args) == 1 {
		if date, err = time.ParseInLocation("2006-01-02", args[0], tz); err != nil {
			return fmt.Errorf("invalid date %q: must be YYYY-MM-DD", args[0])
		}
	}

	d, err := hijri.FromGregorianAdjusted(date, adjust)
	if err != nil {
		return err
	}

	if FlagJSON {
		return writeJSON(stdout(cmd), hijriJSON{
			Gregorian: date.Format("2006-01-02"),
			Adjust:    adjust,
			Hijri:     d,
			Month:     d.MonthName(),
			Formatted: d.Format(),
		})
	}
	fmt.Fprintln(stdout(cmd), d.Format())
	return nil
}
