package geo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// DefaultSearchURL is the OpenStreetMap forward geocoding endpoint.
const DefaultSearchURL = "https://nominatim.openstreetmap.org/search"

// ErrPlaceNotFound is returned when a city search has no results.
var ErrPlaceNotFound = errors.New("place not found")

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// CitySearch resolves a city and country name to coordinates.
type CitySearch struct {
	BaseURL string
	Client  JSONGetter
	City    string
	Country string
}

// NewCitySearch returns a provider for city, country using Nominatim.
func NewCitySearch(client JSONGetter, city, country string) *CitySearch {
	return &CitySearch{BaseURL: DefaultSearchURL, Client: client, City: city, Country: country}
}

// Locate returns the best match for the city. The names on the result are
// the ones the user asked for.
func (s *CitySearch) Locate(ctx context.Context) (*Location, error) {
	if strings.TrimSpace(s.City) == "" {
		return nil, fmt.Errorf("city search needs a city name")
	}

	base := s.BaseURL
	if base == "" {
		base = DefaultSearchURL
	}
	q := url.Values{}
	q.Set("format", "json")
	q.Set("limit", "1")
	q.Set("city", s.City)
	if s.Country != "" {
		q.Set("country", s.Country)
	}

	var results []searchResult
	if err := s.Client.GetJSON(ctx, base+"?"+q.Encode(), &results); err != nil {
		return nil, fmt.Errorf("city search failed: %w", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrPlaceNotFound, strings.Trim(s.City+", "+s.Country, ", "))
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("city search returned bad latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("city search returned bad longitude %q: %w", results[0].Lon, err)
	}

	loc := &Location{Latitude: lat, Longitude: lon, City: s.City, Country: s.Country, Source: "search"}
	if err := loc.Coordinates().Validate(); err != nil {
		return nil, fmt.Errorf("city search returned %w", err)
	}
	return loc, nil
}
