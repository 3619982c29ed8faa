package geo

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"
)

// DefaultNominatimURL is the OpenStreetMap reverse geocoding endpoint.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org/reverse"

// Place is a human-readable name for a coordinate.
type Place struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

type nominatimResponse struct {
	Address struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		Country string `json:"country"`
	} `json:"address"`
}

// PlaceStore caches reverse geocoding results. *cache.Cache implements it.
type PlaceStore interface {
	LoadPlace(lat, lon float64) *Place
	SavePlace(lat, lon float64, p Place) error
}

// ReverseGeocoder names coordinates with Nominatim.
type ReverseGeocoder struct {
	BaseURL string
	Client  JSONGetter
	Store   PlaceStore // optional
	Logger  zerolog.Logger
}

// NewReverseGeocoder returns a geocoder for the public Nominatim service.
func NewReverseGeocoder(client JSONGetter, store PlaceStore, logger zerolog.Logger) *ReverseGeocoder {
	return &ReverseGeocoder{BaseURL: DefaultNominatimURL, Client: client, Store: store, Logger: logger}
}

// Lookup returns the place at lat/lon. The city falls back to town, then
// village, then Unknown; the country falls back to Unknown.
func (g *ReverseGeocoder) Lookup(ctx context.Context, lat, lon float64) (Place, error) {
	if g.Store != nil {
		if p := g.Store.LoadPlace(lat, lon); p != nil {
			return *p, nil
		}
	}

	base := g.BaseURL
	if base == "" {
		base = DefaultNominatimURL
	}
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("zoom", "10")

	var resp nominatimResponse
	if err := g.Client.GetJSON(ctx, base+"?"+q.Encode(), &resp); err != nil {
		return Place{}, fmt.Errorf("reverse geocoding failed: %w", err)
	}

	p := Place{City: firstNonEmpty(resp.Address.City, resp.Address.Town, resp.Address.Village, Unknown)}
	p.Country = firstNonEmpty(resp.Address.Country, Unknown)

	if g.Store != nil {
		if err := g.Store.SavePlace(lat, lon, p); err != nil {
			g.Logger.Warn().Err(err).Msg("could not cache place name")
		}
	}
	return p, nil
}

// Name fills in missing city and country on loc. Lookup failures leave the
// names as Unknown rather than failing the caller.
func (g *ReverseGeocoder) Name(ctx context.Context, loc *Location) {
	if loc.City != "" && loc.Country != "" {
		return
	}
	p, err := g.Lookup(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		g.Logger.Warn().Err(err).Msg("could not resolve place name")
		p = Place{City: Unknown, Country: Unknown}
	}
	if loc.City == "" {
		loc.City = p.City
	}
	if loc.Country == "" {
		loc.Country = p.Country
	}
}

// Named decorates a provider so that every location carries place names.
type Named struct {
	Provider Provider
	Geocoder *ReverseGeocoder
}

// Locate resolves the location and names it.
func (n Named) Locate(ctx context.Context) (*Location, error) {
	loc, err := n.Provider.Locate(ctx)
	if err != nil {
		return nil, err
	}
	n.Geocoder.Name(ctx, loc)
	return loc, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
