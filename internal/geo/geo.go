// Package geo resolves the observer's location: from explicit coordinates,
// from the public IP address, and from reverse geocoding for display names.
package geo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/salat/internal/solar"
)

// Unknown is used for place names that could not be resolved.
const Unknown = "Unknown"

// ErrNoProvider is returned by an empty Chain.
var ErrNoProvider = errors.New("no location provider configured")

// Location is a resolved observer position with optional display names.
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Elevation float64 `json:"elevation,omitempty"`
	City      string  `json:"city"`
	Country   string  `json:"country"`
	Timezone  string  `json:"timezone,omitempty"`
	Source    string  `json:"source,omitempty"`
}

// Coordinates returns the position for the solar calculations.
func (l Location) Coordinates() solar.Coordinates {
	return solar.Coordinates{Latitude: l.Latitude, Longitude: l.Longitude, Elevation: l.Elevation}
}

// Label returns "City, Country", or the coordinates when no name is known.
func (l Location) Label() string {
	var parts []string
	if l.City != "" && l.City != Unknown {
		parts = append(parts, l.City)
	}
	if l.Country != "" && l.Country != Unknown {
		parts = append(parts, l.Country)
	}
	if len(parts) == 0 {
		return l.Coordinates().String()
	}
	return strings.Join(parts, ", ")
}

// Provider resolves a location.
type Provider interface {
	Locate(ctx context.Context) (*Location, error)
}

// JSONGetter fetches a URL and decodes its JSON body. *resilience.Client implements it.
type JSONGetter interface {
	GetJSON(ctx context.Context, url string, v any) error
}

// Static always returns the same location.
type Static Location

// Locate returns a copy of the static location after validating it.
func (s Static) Locate(context.Context) (*Location, error) {
	loc := Location(s)
	if err := loc.Coordinates().Validate(); err != nil {
		return nil, err
	}
	if loc.Source == "" {
		loc.Source = "static"
	}
	return &loc, nil
}

// Chain tries each provider in order and returns the first success.
type Chain struct {
	Providers []Provider
	Logger    zerolog.Logger
}

// Locate returns the first location found, or all errors joined.
func (c Chain) Locate(ctx context.Context) (*Location, error) {
	if len(c.Providers) == 0 {
		return nil, ErrNoProvider
	}

	var errs []error
	for i, p := range c.Providers {
		loc, err := p.Locate(ctx)
		if err == nil {
			return loc, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.Logger.Debug().Err(err).Int("provider", i).Msg("location provider failed, trying next")
		errs = append(errs, err)
	}
	return nil, fmt.Errorf("all location providers failed: %w", errors.Join(errs...))
}
