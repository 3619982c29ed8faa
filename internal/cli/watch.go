package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salat/internal/notify"
	"github.com/smokyabdulrahman/salat/internal/prayer"
	"github.com/smokyabdulrahman/salat/internal/watch"
)

var (
	flagWatchInterval time.Duration
	flagWatchLead     time.Duration
	flagWatchMQTT     string
	flagWatchOnce     bool
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the current prayer and send reminders",
		Long: "Re-evaluate the current and next prayer on a timer and print a status line.\n" +
			"A reminder is sent once per prayer, --lead before it starts. Reminders are\n" +
			"printed and, when an MQTT broker is configured, published to <mqtt_topic>/<prayer>.",
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
	cmd.Flags().DurationVar(&flagWatchInterval, "interval", watch.DefaultInterval, "How often to re-evaluate")
	cmd.Flags().DurationVar(&flagWatchLead, "lead", 0, "Reminder lead time (default: notify_lead from config, 15m)")
	cmd.Flags().StringVar(&flagWatchMQTT, "mqtt", "", "MQTT broker URL, e.g. tcp://localhost:1883 (overrides config)")
	cmd.Flags().BoolVar(&flagWatchOnce, "once", false, "Evaluate a single time and exit")
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	var remind []prayer.Prayer
	if s.cfg.Prayers != "" {
		if remind, err = s.prayers(""); err != nil {
			return err
		}
	}

	lead := s.cfg.NotifyLeadOrDefault()
	if cmd.Flags().Changed("lead") {
		lead = flagWatchLead
	}

	format := prayer.FormatFull
	if s.cfg.Format != "" {
		format = s.cfg.Format
	}
	if err := prayer.ValidateFormat(format); err != nil {
		return err
	}

	w := stdout(cmd)
	notifiers := notify.Multi{
		printNotifier(w),
		notify.LogNotifier{Logger: logger},
	}

	broker := s.cfg.MQTTBroker
	if cmd.Flags().Changed("mqtt") {
		broker = flagWatchMQTT
	}
	if broker != "" && !flagWatchOnce {
		mqttNotifier, disconnect, err := notify.DialMQTT(notify.MQTTConfig{
			Broker:      broker,
			ClientID:    "prayer-times-" + uuid.New().String()[:8],
			TopicPrefix: s.cfg.MQTTTopic,
			Logger:      logger,
		})
		if err != nil {
			return err
		}
		defer disconnect()
		notifiers = append(notifiers, mqttNotifier)
	}

	loop, err := watch.New(watch.Config{
		Coordinates: s.location.Coordinates(),
		Location:    s.tz,
		Parameters:  s.params,
		Remind:      remind,
		Lead:        lead,
		Interval:    flagWatchInterval,
		Notifier:    notifiers,
		OnStatus: func(snap watch.Snapshot) {
			printSnapshot(w, snap, format, s.layout)
		},
		Logger: logger,
		Now:    nowFunc,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flagWatchOnce {
		_, err := loop.Step(ctx, nowFunc())
		return err
	}

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

type snapshotJSON struct {
	At               time.Time     `json:"at"`
	Current          prayer.Prayer `json:"current"`
	Next             prayer.Prayer `json:"next"`
	NextTime         time.Time     `json:"next_time"`
	RemainingSeconds int64         `json:"remaining_seconds"`
	Reminder         string        `json:"reminder,omitempty"`
}

// printSnapshot writes one line per evaluation: plain text, or one JSON
// object per line with --json.
func printSnapshot(w io.Writer, snap watch.Snapshot, format, layout string) {
	next := snap.Status.NextEntry()
	if FlagJSON {
		out := snapshotJSON{
			At:               snap.At,
			Current:          snap.Status.Current,
			Next:             next.Prayer,
			NextTime:         next.Time,
			RemainingSeconds: int64(prayer.TimeRemaining(next, snap.At) / time.Second),
		}
		if snap.Reminder != nil {
			out.Reminder = snap.Reminder.Body
		}
		if err := writeJSONLine(w, out); err != nil {
			logger.Warn().Err(err).Msg("could not write status")
		}
		return
	}
	fmt.Fprintf(w, "%s  %s\n", snap.At.Format("15:04:05"), prayer.FormatOutput(next, snap.At, format, layout))
}

// printNotifier writes reminders to w. With --json they are carried by the
// status line instead.
func printNotifier(w io.Writer) notify.Notifier {
	return notify.NotifierFunc(func(_ context.Context, r notify.Reminder) error {
		if FlagJSON {
			return nil
		}
		_, err := fmt.Fprintf(w, "reminder: %s\n", r.Body)
		return err
	})
}
