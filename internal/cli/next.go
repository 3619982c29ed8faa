package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salat/internal/prayer"
)

var (
	flagFormat  string
	flagPrayers string
)

func newNextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the next prayer with countdown",
		Long:  "Display the next upcoming prayer time with a countdown.\nSuitable for status bars such as tmux.",
		RunE:  runNext,
	}

	cmd.Flags().StringVar(&flagFormat, "format", "", "Display format: time-remaining, next-prayer-time, name-and-time, name-and-remaining, short-name-and-time, short-name-and-remaining, full, countdown, or a custom Go template")
	cmd.Flags().StringVar(&flagPrayers, "prayers", "", "Comma-separated list of prayers to track (overrides config)")

	return cmd
}

func runNext(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	// Priority: --prayers flag > config > all.
	override := ""
	if cmd.Flags().Changed("prayers") {
		override = flagPrayers
	}
	prayers, err := s.prayers(override)
	if err != nil {
		return err
	}

	// Format: --format flag > config > full.
	format := prayer.FormatFull
	if cmd.Flags().Changed("format") {
		format = flagFormat
	} else if s.cfg.Format != "" {
		format = s.cfg.Format
	}

	if err := prayer.ValidateFormat(format); err != nil {
		return err
	}

	now := s.now()
	next, err := nextEntry(s, prayers, now)
	if err != nil {
		return err
	}

	if FlagJSON {
		return writeJSON(stdout(cmd), nextJSON{
			Prayer:           next.Prayer.Key(),
			Time:             next.Time,
			RemainingSeconds: int64(prayer.TimeRemaining(next, now) / time.Second),
			Output:           prayer.FormatOutput(next, now, format, s.layout),
		})
	}

	fmt.Fprint(stdout(cmd), prayer.FormatOutput(next, now, format, s.layout))
	return nil
}

type nextJSON struct {
	Prayer           string    `json:"prayer"`
	Time             time.Time `json:"time"`
	RemainingSeconds int64     `json:"remaining_seconds"`
	Output           string    `json:"output"`
}

// nextEntry returns the earliest selected prayer after now. After the last
// one of the day it is the earliest selected prayer of tomorrow.
func nextEntry(s *session, prayers []prayer.Prayer, now time.Time) (prayer.Entry, error) {
	if len(prayers) == 0 {
		return prayer.Entry{}, fmt.Errorf("no prayers selected")
	}

	today, err := s.schedule(now)
	if err != nil {
		return prayer.Entry{}, err
	}
	if e, ok := earliestAfter(today.Select(prayers), now); ok {
		return e, nil
	}

	tomorrow, err := s.schedule(now.AddDate(0, 0, 1))
	if err != nil {
		return prayer.Entry{}, fmt.Errorf("failed to compute tomorrow's times: %w", err)
	}
	if e, ok := earliestAfter(tomorrow.Select(prayers), now); ok {
		return e, nil
	}
	return prayer.Entry{}, fmt.Errorf("could not determine next prayer")
}

func earliestAfter(entries []prayer.Entry, now time.Time) (prayer.Entry, bool) {
	var best prayer.Entry
	found := false
	for _, e := range entries {
		if e.Time.After(now) && (!found || e.Time.Before(best.Time)) {
			best, found = e, true
		}
	}
	return best, found
}
