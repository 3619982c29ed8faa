package solar

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/nathan-osman/go-sunrise"
)

// hourToTime places a UTC hour offset on the given calendar date.
func hourToTime(year int, month time.Month, day int, hour float64) time.Time {
	base := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return base.Add(time.Duration(hour * float64(time.Hour)))
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// ---------------------------------------------------------------------------
// Coordinates
// ---------------------------------------------------------------------------

func TestCoordinatesValidate(t *testing.T) {
	tests := []struct {
		name    string
		coords  Coordinates
		wantErr bool
	}{
		{"mecca", Coordinates{Latitude: 21.4225, Longitude: 39.8262}, false},
		{"north pole", Coordinates{Latitude: 90, Longitude: 0}, false},
		{"antimeridian", Coordinates{Latitude: -12, Longitude: -180}, false},
		{"with elevation", Coordinates{Latitude: 47, Longitude: 8, Elevation: 1500}, false},
		{"latitude too high", Coordinates{Latitude: 90.01, Longitude: 0}, true},
		{"latitude too low", Coordinates{Latitude: -91, Longitude: 0}, true},
		{"longitude too high", Coordinates{Latitude: 0, Longitude: 180.5}, true},
		{"longitude too low", Coordinates{Latitude: 0, Longitude: -200}, true},
		{"NaN latitude", Coordinates{Latitude: math.NaN(), Longitude: 0}, true},
		{"NaN longitude", Coordinates{Latitude: 0, Longitude: math.NaN()}, true},
		{"infinite longitude", Coordinates{Latitude: 0, Longitude: math.Inf(1)}, true},
		{"negative elevation", Coordinates{Latitude: 0, Longitude: 0, Elevation: -5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.coords.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Validate(%+v) expected error, got nil", tt.coords)
				}
				if !errors.Is(err, ErrInvalidCoordinate) {
					t.Errorf("Validate(%+v) error = %v, want ErrInvalidCoordinate", tt.coords, err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate(%+v) unexpected error: %v", tt.coords, err)
			}
		})
	}
}

func TestNewDay_InvalidCoordinates(t *testing.T) {
	_, err := NewDay(Coordinates{Latitude: 120}, 2024, time.March, 15)
	if !errors.Is(err, ErrInvalidCoordinate) {
		t.Fatalf("NewDay error = %v, want ErrInvalidCoordinate", err)
	}
}

// ---------------------------------------------------------------------------
// JulianDay / PositionAt
// ---------------------------------------------------------------------------

func TestJulianDay(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		day   int
		want  float64
	}{
		{2000, time.January, 1, 2451544.5},
		{1987, time.January, 27, 2446822.5},
		{1999, time.January, 1, 2451179.5},
		{2024, time.March, 11, 2460380.5},
	}

	for _, tt := range tests {
		got := JulianDay(tt.year, tt.month, tt.day)
		if got != tt.want {
			t.Errorf("JulianDay(%d, %d, %d) = %v, want %v", tt.year, tt.month, tt.day, got, tt.want)
		}
	}
}

func TestPositionAt_Declination(t *testing.T) {
	tests := []struct {
		name string
		jd   float64
		want float64
		tol  float64
	}{
		{"june solstice", JulianDay(2024, time.June, 20) + 0.85, 23.44, 0.1},
		{"december solstice", JulianDay(2024, time.December, 21) + 0.4, -23.44, 0.1},
		{"march equinox", JulianDay(2024, time.March, 20) + 0.13, 0, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PositionAt(tt.jd).Declination
			if math.Abs(got-tt.want) > tt.tol {
				t.Errorf("declination = %.3f, want %.2f ± %.2f", got, tt.want, tt.tol)
			}
		})
	}
}

func TestPositionAt_EquationOfTime(t *testing.T) {
	tests := []struct {
		name        string
		jd          float64
		wantMinutes float64
	}{
		{"early november maximum", JulianDay(2024, time.November, 3) + 0.5, 16.4},
		{"mid february minimum", JulianDay(2024, time.February, 11) + 0.5, -14.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PositionAt(tt.jd).EquationOfTime * 60
			if math.Abs(got-tt.wantMinutes) > 1 {
				t.Errorf("equation of time = %.2f min, want %.1f ± 1", got, tt.wantMinutes)
			}
		})
	}
}

func TestPositionAt_RightAscensionRange(t *testing.T) {
	start := JulianDay(2024, time.January, 1)
	for i := 0; i < 366; i++ {
		p := PositionAt(start + float64(i))
		if p.RightAscension < 0 || p.RightAscension >= 24 {
			t.Fatalf("day %d: right ascension %v out of [0, 24)", i, p.RightAscension)
		}
		if math.Abs(p.EquationOfTime) > 0.5 {
			t.Fatalf("day %d: equation of time %v h is not plausible", i, p.EquationOfTime)
		}
	}
}

// ---------------------------------------------------------------------------
// Day
// ---------------------------------------------------------------------------

func TestDay_TransitMatchesGoSunrise(t *testing.T) {
	places := []struct {
		name     string
		lat, lon float64
	}{
		{"mecca", 21.4225, 39.8262},
		{"london", 51.5074, -0.1278},
		{"sydney", -33.8688, 151.2093},
		{"new york", 40.7128, -74.0060},
	}
	dates := []time.Time{
		time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.June, 21, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.November, 3, 0, 0, 0, 0, time.UTC),
	}

	for _, p := range places {
		for _, date := range dates {
			y, m, d := date.Date()
			day, err := NewDay(Coordinates{Latitude: p.lat, Longitude: p.lon}, y, m, d)
			if err != nil {
				t.Fatalf("NewDay: %v", err)
			}

			got := hourToTime(y, m, d, day.Transit(12-p.lon/15))

			rise, set := sunrise.SunriseSunset(p.lat, p.lon, y, m, d)
			want := rise.Add(set.Sub(rise) / 2)

			if diff := absDuration(got.Sub(want)); diff > 2*time.Minute {
				t.Errorf("%s %s: transit %s, go-sunrise %s (diff %s)",
					p.name, date.Format("2006-01-02"), got.Format("15:04:05"), want.Format("15:04:05"), diff)
			}
		}
	}
}

func TestDay_SunriseMatchesGoSunrise(t *testing.T) {
	lat, lon := 51.5074, -0.1278
	day, err := NewDay(Coordinates{Latitude: lat, Longitude: lon}, 2024, time.March, 15)
	if err != nil {
		t.Fatalf("NewDay: %v", err)
	}

	riseHour, ok := day.TimeForAngle(RiseSetAngle(0), 6-lon/15, true)
	if !ok {
		t.Fatal("sunrise should be solvable in London in March")
	}
	setHour, ok := day.TimeForAngle(RiseSetAngle(0), 18-lon/15, false)
	if !ok {
		t.Fatal("sunset should be solvable in London in March")
	}

	wantRise, wantSet := sunrise.SunriseSunset(lat, lon, 2024, time.March, 15)
	gotRise := hourToTime(2024, time.March, 15, riseHour)
	gotSet := hourToTime(2024, time.March, 15, setHour)

	if diff := absDuration(gotRise.Sub(wantRise)); diff > 3*time.Minute {
		t.Errorf("sunrise %s, go-sunrise %s (diff %s)", gotRise.Format("15:04:05"), wantRise.Format("15:04:05"), diff)
	}
	if diff := absDuration(gotSet.Sub(wantSet)); diff > 3*time.Minute {
		t.Errorf("sunset %s, go-sunrise %s (diff %s)", gotSet.Format("15:04:05"), wantSet.Format("15:04:05"), diff)
	}
}

func TestDay_TimeForAngle_Unsolvable(t *testing.T) {
	tests := []struct {
		name   string
		coords Coordinates
		month  time.Month
		day    int
		angle  float64
	}{
		{"arctic summer sunrise", Coordinates{Latitude: 66.0, Longitude: 25.0}, time.June, 21, RiseSetAngle(0)},
		{"arctic winter sunrise", Coordinates{Latitude: 75.0, Longitude: 25.0}, time.December, 21, RiseSetAngle(0)},
		{"18 degree twilight at 60N in june", Coordinates{Latitude: 60.0, Longitude: 10.0}, time.June, 21, 18},
		{"north pole", Coordinates{Latitude: 90, Longitude: 0}, time.March, 1, 18},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day, err := NewDay(tt.coords, 2024, tt.month, tt.day)
			if err != nil {
				t.Fatalf("NewDay: %v", err)
			}
			h, ok := day.TimeForAngle(tt.angle, 6, true)
			if ok {
				t.Errorf("TimeForAngle(%v) = %v, want unsolvable", tt.angle, h)
			}
			if !math.IsNaN(h) {
				t.Errorf("unsolvable hour = %v, want NaN sentinel", h)
			}
		})
	}
}

func TestDay_AsrBetweenNoonAndSunset(t *testing.T) {
	c := Coordinates{Latitude: 21.4225, Longitude: 39.8262}
	day, err := NewDay(c, 2024, time.March, 15)
	if err != nil {
		t.Fatalf("NewDay: %v", err)
	}

	noon := day.Transit(12 - c.Longitude/15)
	sunset, ok := day.TimeForAngle(RiseSetAngle(0), 18-c.Longitude/15, false)
	if !ok {
		t.Fatal("sunset should be solvable")
	}

	shafi, ok := day.AsrTime(1, 13-c.Longitude/15)
	if !ok {
		t.Fatal("asr (factor 1) should be solvable")
	}
	hanafi, ok := day.AsrTime(2, 13-c.Longitude/15)
	if !ok {
		t.Fatal("asr (factor 2) should be solvable")
	}

	if !(noon < shafi && shafi < hanafi && hanafi < sunset) {
		t.Errorf("want noon < asr(1) < asr(2) < sunset, got %.3f %.3f %.3f %.3f", noon, shafi, hanafi, sunset)
	}
}

func TestRiseSetAngle(t *testing.T) {
	if got := RiseSetAngle(0); got != 0.833 {
		t.Errorf("RiseSetAngle(0) = %v, want 0.833", got)
	}
	if got := RiseSetAngle(100); math.Abs(got-1.18) > 0.001 {
		t.Errorf("RiseSetAngle(100) = %v, want 1.18", got)
	}
}
