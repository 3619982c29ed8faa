// Package solar computes the sun's position for a calendar day and the clock
// times at which it crosses a given elevation.
//
// Times returned by Day are fractional hours in UTC, measured from 0h UT of the
// calendar date. They may be negative or exceed 24 for locations far from the
// prime meridian; callers add them to the UTC midnight of the date.
package solar

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidCoordinate is returned when latitude, longitude or elevation are out of range.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Coordinates is an observer's position on Earth.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation,omitempty"` // metres above sea level
}

// Validate reports whether the coordinates can be used for a calculation.
func (c Coordinates) Validate() error {
	switch {
	case math.IsNaN(c.Latitude) || c.Latitude < -90 || c.Latitude > 90:
		return fmt.Errorf("%w: latitude %v must be between -90 and 90", ErrInvalidCoordinate, c.Latitude)
	case math.IsNaN(c.Longitude) || c.Longitude < -180 || c.Longitude > 180:
		return fmt.Errorf("%w: longitude %v must be between -180 and 180", ErrInvalidCoordinate, c.Longitude)
	case math.IsNaN(c.Elevation) || math.IsInf(c.Elevation, 0) || c.Elevation < 0:
		return fmt.Errorf("%w: elevation %v must be a non-negative number of metres", ErrInvalidCoordinate, c.Elevation)
	}
	return nil
}

// String formats the coordinates as "lat, lon" with four decimals.
func (c Coordinates) String() string {
	return fmt.Sprintf("%.4f, %.4f", c.Latitude, c.Longitude)
}

// JulianDay returns the Julian day number at 0h UT of the given proleptic
// Gregorian calendar date.
func JulianDay(year int, month time.Month, day int) float64 {
	y := float64(year)
	m := float64(month)
	if month <= 2 {
		y--
		m += 12
	}
	a := math.Floor(y / 100)
	b := 2 - a + math.Floor(a/4)
	return math.Floor(365.25*(y+4716)) + math.Floor(30.6001*(m+1)) + float64(day) + b - 1524.5
}

// Position holds the sun's apparent position at one instant.
type Position struct {
	Declination    float64 // degrees
	RightAscension float64 // hours, [0, 24)
	EquationOfTime float64 // hours, apparent minus mean solar time
}

// PositionAt returns the sun's position at Julian day jd, using the
// low-precision almanac ephemeris (good to roughly 0.01 degrees between 1950
// and 2050, and to a minute of time well beyond that).
func PositionAt(jd float64) Position {
	d := jd - 2451545.0

	g := fixAngle(357.529 + 0.98560028*d) // mean anomaly
	q := fixAngle(280.459 + 0.98564736*d) // mean longitude
	l := fixAngle(q + 1.915*sinDeg(g) + 0.020*sinDeg(2*g))
	e := 23.439 - 0.00000036*d // obliquity of the ecliptic

	ra := fixHour(atan2Deg(cosDeg(e)*sinDeg(l), cosDeg(l)) / 15)

	eqt := q/15 - ra
	switch {
	case eqt > 12:
		eqt -= 24
	case eqt < -12:
		eqt += 24
	}

	return Position{
		Declination:    asinDeg(sinDeg(e) * sinDeg(l)),
		RightAscension: ra,
		EquationOfTime: eqt,
	}
}

// RiseSetAngle returns the depression of the sun's centre at sunrise and
// sunset: refraction plus semi-diameter, increased by the dip of the horizon
// for an observer at the given elevation.
func RiseSetAngle(elevation float64) float64 {
	if elevation <= 0 {
		return 0.833
	}
	return 0.833 + 0.0347*math.Sqrt(elevation)
}

// Day is the solar context of one calendar date at one location.
type Day struct {
	coords Coordinates
	jd     float64
}

// NewDay validates c and prepares the solar context for the given date.
func NewDay(c Coordinates, year int, month time.Month, day int) (Day, error) {
	if err := c.Validate(); err != nil {
		return Day{}, err
	}
	return Day{coords: c, jd: JulianDay(year, month, day)}, nil
}

// Coordinates returns the location this day was computed for.
func (d Day) Coordinates() Coordinates { return d.coords }

// JulianDay returns the Julian day at 0h UT of the date.
func (d Day) JulianDay() float64 { return d.jd }

// Position returns the sun's position at the given UTC hour of the date.
func (d Day) Position(hour float64) Position {
	return PositionAt(d.jd + hour/24)
}

// Declination returns the solar declination in degrees at the given UTC hour.
func (d Day) Declination(hour float64) float64 {
	return d.Position(hour).Declination
}

// EquationOfTime returns the equation of time in hours at the given UTC hour.
func (d Day) EquationOfTime(hour float64) float64 {
	return d.Position(hour).EquationOfTime
}

// Transit returns the UTC hour of solar noon, evaluating the equation of time
// near the approximate hour given.
func (d Day) Transit(approx float64) float64 {
	return 12 - d.EquationOfTime(approx) - d.coords.Longitude/15
}

// TimeForAngle returns the UTC hour at which the sun's centre is angle degrees
// below the horizon (negative angles are above it), before or after noon.
// ok is false when the sun never reaches that elevation on this date.
func (d Day) TimeForAngle(angle, approx float64, beforeNoon bool) (hour float64, ok bool) {
	pos := d.Position(approx)
	lat := d.coords.Latitude

	cosH := (-sinDeg(angle) - sinDeg(pos.Declination)*sinDeg(lat)) /
		(cosDeg(pos.Declination) * cosDeg(lat))
	if math.IsNaN(cosH) || math.IsInf(cosH, 0) || cosH < -1 || cosH > 1 {
		return math.NaN(), false
	}

	noon := 12 - pos.EquationOfTime - d.coords.Longitude/15
	t := acosDeg(cosH) / 15
	if beforeNoon {
		return noon - t, true
	}
	return noon + t, true
}

// AsrTime returns the UTC hour at which an object's shadow equals its noon
// shadow plus factor times its height (1 for the majority opinion, 2 for Hanafi).
func (d Day) AsrTime(factor, approx float64) (hour float64, ok bool) {
	decl := d.Declination(approx)
	altitude := acotDeg(factor + tanDeg(math.Abs(d.coords.Latitude-decl)))
	return d.TimeForAngle(-altitude, approx, false)
}

func sinDeg(d float64) float64 { return math.Sin(d * math.Pi / 180) }
func cosDeg(d float64) float64 { return math.Cos(d * math.Pi / 180) }
func tanDeg(d float64) float64 { return math.Tan(d * math.Pi / 180) }
func asinDeg(x float64) float64 { return math.Asin(x) * 180 / math.Pi }
func acosDeg(x float64) float64 { return math.Acos(x) * 180 / math.Pi }
func acotDeg(x float64) float64 { return math.Atan(1/x) * 180 / math.Pi }
func atan2Deg(y, x float64) float64 { return math.Atan2(y, x) * 180 / math.Pi }

func fixAngle(a float64) float64 { return fix(a, 360) }
func fixHour(h float64) float64 { return fix(h, 24) }

func fix(a, b float64) float64 {
	a = math.Mod(a, b)
	if a < 0 {
		a += b
	}
	return a
}
