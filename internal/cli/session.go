package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/salat/internal/cache"
	"github.com/smokyabdulrahman/salat/internal/config"
	"github.com/smokyabdulrahman/salat/internal/display"
	"github.com/smokyabdulrahman/salat/internal/geo"
	"github.com/smokyabdulrahman/salat/internal/hijri"
	"github.com/smokyabdulrahman/salat/internal/prayer"
	"github.com/smokyabdulrahman/salat/internal/resilience"
)

// errNoLocation is returned when nothing tells us where the user is.
var errNoLocation = errors.New("no location configured: pass --latitude/--longitude or --city, or run `prayer-times config set latitude <deg>`")

// session is everything a command needs to compute schedules: where, in
// which zone, with which settings.
type session struct {
	cfg      *config.Config
	location geo.Location
	tz       *time.Location
	params   prayer.Parameters
	layout   string
}

// newSession merges flags into the config and resolves the location.
func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := effectiveConfig(cmd)
	if err != nil {
		return nil, err
	}

	params, err := cfg.Parameters()
	if err != nil {
		return nil, err
	}

	loc, err := resolveLocation(cmd.Context(), cfg, FlagOffline, logger)
	if err != nil {
		return nil, err
	}

	// Timezone: explicit > detected > system.
	tz := time.Local
	switch {
	case cfg.Timezone != "":
		if tz, err = cfg.Location(); err != nil {
			return nil, err
		}
	case loc.Timezone != "":
		if l, err := time.LoadLocation(loc.Timezone); err == nil {
			tz = l
		} else {
			logger.Warn().Err(err).Str("timezone", loc.Timezone).Msg("ignoring detected timezone")
		}
	}

	logger.Debug().
		Str("location", loc.Label()).
		Str("source", loc.Source).
		Str("timezone", tz.String()).
		Str("method", params.Method.String()).
		Msg("session resolved")

	return &session{
		cfg:      cfg,
		location: *loc,
		tz:       tz,
		params:   params,
		layout:   display.TimeLayout(cfg.TimeFormat),
	}, nil
}

// resolveLocation determines the effective location.
// Priority: coordinates (flags or config) > city search > cached IP detection.
func resolveLocation(ctx context.Context, cfg *config.Config, offline bool, log zerolog.Logger) (*geo.Location, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if c, ok := cfg.Coordinates(); ok {
		return geo.Static{
			Latitude:  c.Latitude,
			Longitude: c.Longitude,
			Elevation: c.Elevation,
			City:      cfg.City,
			Country:   cfg.Country,
			Source:    "config",
		}.Locate(ctx)
	}

	if offline {
		return nil, errNoLocation
	}

	client := resilience.NewClient(lookupClientConfig("geo", log))

	if cfg.City != "" {
		loc, err := geo.NewCitySearch(client, cfg.City, cfg.Country).Locate(ctx)
		if err != nil {
			return nil, err
		}
		loc.Elevation = cfg.Elevation
		return loc, nil
	}

	c, err := cache.New(cfg.CacheDir)
	if err != nil {
		log.Warn().Err(err).Msg("cache disabled")
		c = nil
	}

	var store geo.PlaceStore
	if c != nil {
		store = c
	}
	var provider geo.Provider = geo.Named{
		Provider: geo.NewIPProvider(client),
		Geocoder: geo.NewReverseGeocoder(client, store, log),
	}
	if c != nil {
		provider = geo.Cached{Provider: provider, Store: c, Logger: log}
	}

	loc, err := provider.Locate(ctx)
	if err != nil {
		return nil, fmt.Errorf("no location specified and auto-detection failed: %w", err)
	}
	loc.Elevation = cfg.Elevation
	return loc, nil
}

func lookupClientConfig(name string, log zerolog.Logger) resilience.ClientConfig {
	cc := resilience.DefaultClientConfig(name)
	cc.MaxRetries = 2
	cc.Timeout = 5 * time.Second
	cc.Logger = log
	return cc
}

// now returns the current time in the session's zone.
func (s *session) now() time.Time { return nowFunc().In(s.tz) }

// schedule computes the schedule for the calendar day containing date.
func (s *session) schedule(date time.Time) (prayer.Schedule, error) {
	return prayer.ComputeSchedule(s.location.Coordinates(), date.In(s.tz), s.params)
}

// days computes n consecutive schedules starting at start.
func (s *session) days(start time.Time, n int) ([]prayer.Schedule, error) {
	out := make([]prayer.Schedule, 0, n)
	for i := 0; i < n; i++ {
		sch, err := s.schedule(start.AddDate(0, 0, i))
		if err != nil {
			return nil, err
		}
		out = append(out, sch)
	}
	return out, nil
}

// prayers returns the configured prayer selection, or override if non-empty.
func (s *session) prayers(override string) ([]prayer.Prayer, error) {
	csv := s.cfg.Prayers
	if override != "" {
		csv = override
	}
	return prayer.ParseList(csv)
}

// hijri returns the configured Hijri date for t, or "" before the epoch.
func (s *session) hijri(t time.Time) string {
	d, err := hijri.FromGregorianAdjusted(t, s.cfg.HijriAdjust)
	if err != nil {
		return ""
	}
	return d.Format()
}

// locationJSON is the location block shared by every JSON output.
type locationJSON struct {
	City      string  `json:"city,omitempty"`
	Country   string  `json:"country,omitempty"`
	Timezone  string  `json:"timezone"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation,omitempty"`
	Source    string  `json:"source,omitempty"`
}

func (s *session) locationJSON() locationJSON {
	out := locationJSON{
		Timezone:  s.tz.String(),
		Latitude:  s.location.Latitude,
		Longitude: s.location.Longitude,
		Elevation: s.location.Elevation,
		Source:    s.location.Source,
	}
	if s.location.City != geo.Unknown {
		out.City = s.location.City
	}
	if s.location.Country != geo.Unknown {
		out.Country = s.location.Country
	}
	return out
}

// methodLabel describes the calculation settings in one line.
func (s *session) methodLabel() string {
	return fmt.Sprintf("%s, %s Asr", s.params.Method, s.params.Madhab)
}
