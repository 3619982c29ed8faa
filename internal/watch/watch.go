// Package watch keeps a prayer status current over time and fires reminders
// ahead of each prayer.
package watch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/salat/internal/notify"
	"github.com/smokyabdulrahman/salat/internal/prayer"
	"github.com/smokyabdulrahman/salat/internal/solar"
)

const (
	// DefaultInterval is how often the status is re-evaluated.
	DefaultInterval = time.Minute
	// DefaultLead is how long before a prayer its reminder fires.
	DefaultLead = 15 * time.Minute
	// maxReminderHorizon bounds how far ahead a reminder may point.
	maxReminderHorizon = 24 * time.Hour
)

// Config configures a Loop.
type Config struct {
	Coordinates solar.Coordinates
	Location    *time.Location // defaults to time.Local
	Parameters  prayer.Parameters

	// Remind lists the prayers that get reminders. Nil means the five
	// daily prayers.
	Remind   []prayer.Prayer
	Lead     time.Duration
	Interval time.Duration
	Notifier notify.Notifier // optional

	// OnStatus is called after every evaluation.
	OnStatus func(Snapshot)

	Logger zerolog.Logger
	Now    func() time.Time
}

// Snapshot is the result of one evaluation.
type Snapshot struct {
	At       time.Time
	Status   prayer.Status
	Schedule prayer.Schedule
	Reminder *notify.Reminder // set when this step fired a reminder
}

// Loop re-evaluates the prayer status on a ticker. The schedule is
// recomputed only when the calendar date changes or the coordinates do.
type Loop struct {
	cfg    Config
	remind map[prayer.Prayer]bool

	mu       sync.Mutex
	coords   solar.Coordinates
	today    *prayer.Schedule
	tomorrow *prayer.Schedule
	fired    map[string]time.Time // reminder key -> prayer time
}

// New validates cfg and returns a loop.
func New(cfg Config) (*Loop, error) {
	if err := cfg.Coordinates.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Parameters.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Lead <= 0 {
		cfg.Lead = DefaultLead
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Remind == nil {
		cfg.Remind = []prayer.Prayer{prayer.Fajr, prayer.Dhuhr, prayer.Asr, prayer.Maghrib, prayer.Isha}
	}

	l := &Loop{
		cfg:    cfg,
		remind: make(map[prayer.Prayer]bool, len(cfg.Remind)),
		coords: cfg.Coordinates,
		fired:  make(map[string]time.Time),
	}
	for _, p := range cfg.Remind {
		l.remind[p] = true
	}
	return l, nil
}

// SetCoordinates moves the loop to a new position. The next step recomputes
// the schedule. Safe to call while Run is active.
func (l *Loop) SetCoordinates(c solar.Coordinates) error {
	if err := c.Validate(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.coords = c
	l.today = nil
	l.tomorrow = nil
	return nil
}

// Coordinates returns the current position.
func (l *Loop) Coordinates() solar.Coordinates {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.coords
}

// Run evaluates immediately, then on every tick, until ctx is cancelled.
// It returns ctx.Err() on cancellation and the first computation error
// otherwise.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.cfg.Interval)
	defer ticker.Stop()

	l.cfg.Logger.Info().
		Stringer("coordinates", l.Coordinates()).
		Dur("interval", l.cfg.Interval).
		Dur("lead", l.cfg.Lead).
		Msg("watch started")

	for {
		if _, err := l.Step(ctx, l.cfg.Now()); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return err
		}

		select {
		case <-ctx.Done():
			l.cfg.Logger.Info().Msg("watch stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Step evaluates the status at now, fires a due reminder and reports the
// result to OnStatus. Notifier failures are logged, not returned.
func (l *Loop) Step(ctx context.Context, now time.Time) (Snapshot, error) {
	now = now.In(l.cfg.Location)

	l.mu.Lock()
	snap, due, err := l.evaluate(now)
	l.mu.Unlock()
	if err != nil {
		return Snapshot{}, err
	}

	if due != nil {
		snap.Reminder = due
		l.deliver(ctx, *due)
	}

	if l.cfg.OnStatus != nil {
		l.cfg.OnStatus(snap)
	}
	return snap, nil
}

// evaluate must be called with l.mu held.
func (l *Loop) evaluate(now time.Time) (Snapshot, *notify.Reminder, error) {
	if l.today == nil || !sameDay(l.today.Date, now) {
		if err := l.recompute(now); err != nil {
			return Snapshot{}, nil, err
		}
	}

	st := prayer.Evaluate(*l.today, now)
	if st.NextIsTomorrow {
		if l.tomorrow == nil {
			y, m, d := now.Date()
			s, err := prayer.ComputeSchedule(l.coords, time.Date(y, m, d+1, 12, 0, 0, 0, now.Location()), l.cfg.Parameters)
			if err != nil {
				return Snapshot{}, nil, fmt.Errorf("computing tomorrow's schedule: %w", err)
			}
			l.tomorrow = &s
		}
		st.NextTime = l.tomorrow.Fajr
	}

	snap := Snapshot{At: now, Status: st, Schedule: *l.today}
	return snap, l.dueReminder(st, now), nil
}

func (l *Loop) recompute(now time.Time) error {
	s, err := prayer.ComputeSchedule(l.coords, now, l.cfg.Parameters)
	if err != nil {
		return err
	}

	// Tomorrow's schedule becomes stale with today's.
	l.today = &s
	l.tomorrow = nil

	for key, at := range l.fired {
		if now.Sub(at) > maxReminderHorizon {
			delete(l.fired, key)
		}
	}

	l.cfg.Logger.Debug().
		Str("date", s.Date.Format("2006-01-02")).
		Int("fallbacks", len(s.Fallbacks)).
		Msg("schedule computed")
	return nil
}

// dueReminder returns the reminder to fire at now, if any. A reminder is due
// from lead before the prayer until the prayer begins, and fires once.
func (l *Loop) dueReminder(st prayer.Status, now time.Time) *notify.Reminder {
	if !l.remind[st.Next] || st.NextTime.IsZero() {
		return nil
	}

	until := st.NextTime.Sub(now)
	if until <= 0 || until > l.cfg.Lead || until > maxReminderHorizon {
		return nil
	}

	key := st.Next.Key() + "@" + st.NextTime.UTC().Format(time.RFC3339)
	if _, done := l.fired[key]; done {
		return nil
	}
	l.fired[key] = st.NextTime

	r := notify.NewReminder(st.Next, st.NextTime, l.cfg.Lead)
	return &r
}

func (l *Loop) deliver(ctx context.Context, r notify.Reminder) {
	log := l.cfg.Logger.With().Str("reminder_id", r.ID).Stringer("prayer", r.Prayer).Logger()
	if l.cfg.Notifier == nil {
		log.Debug().Msg("reminder due, no notifier configured")
		return
	}
	if err := l.cfg.Notifier.Notify(ctx, r); err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("reminder delivery failed")
		}
		return
	}
	log.Info().Time("at", r.At).Msg("reminder sent")
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}
