// Package api fetches reference timings from the Al Adhan API so that the
// local calculations can be cross-checked against them.
package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/smokyabdulrahman/salat/internal/prayer"
	"github.com/smokyabdulrahman/salat/internal/resilience"
)

const defaultBaseURL = "https://api.aladhan.com/v1"

// JSONGetter fetches a URL and decodes its JSON body.
type JSONGetter interface {
	GetJSON(ctx context.Context, url string, v any) error
}

// Client communicates with the Al Adhan prayer times API.
type Client struct {
	getter JSONGetter
	// BaseURL is the API base URL. Defaults to the Al Adhan API.
	// Exported for testing with httptest.
	BaseURL string
}

// NewClient creates a client on top of getter. A nil getter gets a
// resilience.Client with default retries and circuit breaker.
func NewClient(getter JSONGetter) *Client {
	if getter == nil {
		getter = resilience.NewClient(resilience.DefaultClientConfig("aladhan"))
	}
	return &Client{getter: getter, BaseURL: defaultBaseURL}
}

// Query is the location and calculation settings sent with a request.
type Query struct {
	Latitude  float64
	Longitude float64
	// Method and School are Al Adhan IDs; a negative value leaves the
	// choice to the API.
	Method int
	School int
	// LatitudeAdjustment is the API's latitudeAdjustmentMethod; zero omits it.
	LatitudeAdjustment int
}

// QueryFor builds the query matching p at lat, lon.
func QueryFor(lat, lon float64, p prayer.Parameters) Query {
	q := Query{
		Latitude:  lat,
		Longitude: lon,
		Method:    int(p.Method),
		School:    int(p.Madhab),
	}
	switch p.HighLatitudeRule {
	case prayer.MiddleOfTheNight:
		q.LatitudeAdjustment = 1
	case prayer.SeventhOfTheNight:
		q.LatitudeAdjustment = 2
	case prayer.TwilightAngle:
		q.LatitudeAdjustment = 3
	}
	return q
}

func (q Query) values() url.Values {
	v := url.Values{}
	v.Set("latitude", strconv.FormatFloat(q.Latitude, 'f', 6, 64))
	v.Set("longitude", strconv.FormatFloat(q.Longitude, 'f', 6, 64))
	if q.Method >= 0 {
		v.Set("method", strconv.Itoa(q.Method))
	}
	if q.School >= 0 {
		v.Set("school", strconv.Itoa(q.School))
	}
	if q.LatitudeAdjustment > 0 {
		v.Set("latitudeAdjustmentMethod", strconv.Itoa(q.LatitudeAdjustment))
	}
	return v
}

// Day fetches the timings of a single date.
func (c *Client) Day(ctx context.Context, date time.Time, q Query) (*Data, error) {
	var resp Response
	endpoint := fmt.Sprintf("%s/timings/%s", c.BaseURL, date.Format("02-01-2006"))
	if err := c.get(ctx, endpoint, q, &resp, &resp.envelope); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Month fetches one entry per day of the given month, in calendar order.
func (c *Client) Month(ctx context.Context, year int, month time.Month, q Query) ([]Data, error) {
	var resp CalendarResponse
	endpoint := fmt.Sprintf("%s/calendar/%d/%d", c.BaseURL, year, int(month))
	if err := c.get(ctx, endpoint, q, &resp, &resp.envelope); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) get(ctx context.Context, endpoint string, q Query, v any, env *envelope) error {
	if err := c.getter.GetJSON(ctx, endpoint+"?"+q.values().Encode(), v); err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	if env.Code != 200 {
		return fmt.Errorf("API error: code=%d status=%s", env.Code, env.Status)
	}
	return nil
}
