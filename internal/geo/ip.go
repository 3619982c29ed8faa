package geo

import (
	"context"
	"fmt"
)

// DefaultIPAPIURL is the ip-api.com endpoint; it is free and needs no API key.
const DefaultIPAPIURL = "http://ip-api.com/json/?fields=status,message,lat,lon,city,country,timezone"

// ipAPIResponse maps the response from ip-api.com.
type ipAPIResponse struct {
	Status   string  `json:"status"`
	Message  string  `json:"message"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	City     string  `json:"city"`
	Country  string  `json:"country"`
	Timezone string  `json:"timezone"`
}

// IPProvider locates the user from their public IP address.
type IPProvider struct {
	URL    string
	Client JSONGetter
}

// NewIPProvider returns a provider querying ip-api.com through client.
func NewIPProvider(client JSONGetter) *IPProvider {
	return &IPProvider{URL: DefaultIPAPIURL, Client: client}
}

// Locate queries the geolocation API.
func (p *IPProvider) Locate(ctx context.Context) (*Location, error) {
	url := p.URL
	if url == "" {
		url = DefaultIPAPIURL
	}

	var result ipAPIResponse
	if err := p.Client.GetJSON(ctx, url, &result); err != nil {
		return nil, fmt.Errorf("geolocation request failed: %w", err)
	}

	if result.Status != "success" {
		return nil, fmt.Errorf("geolocation failed: %s", result.Message)
	}

	loc := &Location{
		Latitude:  result.Lat,
		Longitude: result.Lon,
		City:      result.City,
		Country:   result.Country,
		Timezone:  result.Timezone,
		Source:    "ip",
	}
	if err := loc.Coordinates().Validate(); err != nil {
		return nil, fmt.Errorf("geolocation returned %w", err)
	}
	return loc, nil
}
