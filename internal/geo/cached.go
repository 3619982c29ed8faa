package geo

import (
	"context"

	"github.com/rs/zerolog"
)

// LocationStore persists a detected location. *cache.Cache implements it.
type LocationStore interface {
	LoadGeo() *Location
	SaveGeo(loc *Location) error
}

// Cached serves a stored location while it is fresh and otherwise asks the
// wrapped provider, storing its answer.
type Cached struct {
	Provider Provider
	Store    LocationStore
	Logger   zerolog.Logger
}

// Locate returns the cached location or detects a new one.
func (c Cached) Locate(ctx context.Context) (*Location, error) {
	if loc := c.Store.LoadGeo(); loc != nil {
		c.Logger.Debug().Str("location", loc.Label()).Msg("using cached location")
		return loc, nil
	}

	loc, err := c.Provider.Locate(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.Store.SaveGeo(loc); err != nil {
		c.Logger.Warn().Err(err).Msg("could not cache location")
	}
	return loc, nil
}
