// Package notify delivers prayer reminders.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/salat/internal/prayer"
)

// Reminder announces that a prayer is about to begin.
type Reminder struct {
	ID     string        `json:"id"`
	Prayer prayer.Prayer `json:"prayer"`
	At     time.Time     `json:"at"`
	Lead   time.Duration `json:"-"`
	Title  string        `json:"title"`
	Body   string        `json:"body"`
}

// NewReminder builds the reminder for a prayer starting at at, lead ahead of time.
func NewReminder(p prayer.Prayer, at time.Time, lead time.Duration) Reminder {
	return Reminder{
		ID:     "rem_" + uuid.New().String(),
		Prayer: p,
		At:     at,
		Lead:   lead,
		Title:  fmt.Sprintf("%s Prayer Soon", p),
		Body:   fmt.Sprintf("%s prayer will begin in %s.", p, leadText(lead)),
	}
}

func leadText(d time.Duration) string {
	m := int(d.Round(time.Minute) / time.Minute)
	switch {
	case m <= 0:
		return "a moment"
	case m == 1:
		return "1 minute"
	case m%60 == 0 && m >= 60:
		if m == 60 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", m/60)
	default:
		return fmt.Sprintf("%d minutes", m)
	}
}

// Notifier delivers reminders.
type Notifier interface {
	Notify(ctx context.Context, r Reminder) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, r Reminder) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, r Reminder) error { return f(ctx, r) }

// LogNotifier writes reminders to a structured log.
type LogNotifier struct {
	Logger zerolog.Logger
}

// Notify logs r at info level.
func (n LogNotifier) Notify(_ context.Context, r Reminder) error {
	n.Logger.Info().
		Str("reminder_id", r.ID).
		Stringer("prayer", r.Prayer).
		Time("at", r.At).
		Dur("lead", r.Lead).
		Msg(r.Body)
	return nil
}

// Multi fans a reminder out to every notifier. All notifiers are tried; the
// returned error joins their failures.
type Multi []Notifier

// Notify delivers r to each notifier in order.
func (m Multi) Notify(ctx context.Context, r Reminder) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
