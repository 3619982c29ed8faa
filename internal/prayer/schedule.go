package prayer

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/smokyabdulrahman/salat/internal/solar"
)

// ErrUnsolvable is wrapped by every *UnsolvableAngleError.
var ErrUnsolvable = errors.New("sun does not reach the required angle")

// UnsolvableAngleError reports a time that has no solution on the date and no
// fallback policy to replace it.
type UnsolvableAngleError struct {
	Prayer Prayer
	Date   time.Time
	Angle  float64
}

func (e *UnsolvableAngleError) Error() string {
	return fmt.Sprintf("cannot compute %s on %s: sun never reaches %.2f° below the horizon",
		e.Prayer, e.Date.Format("2006-01-02"), e.Angle)
}

func (e *UnsolvableAngleError) Unwrap() error { return ErrUnsolvable }

// Fallback records a time produced by a fallback policy rather than by the
// direct angle solution.
type Fallback struct {
	Prayer Prayer `json:"prayer"`
	Rule   string `json:"rule"`
}

// Entry is one prayer with its instant.
type Entry struct {
	Prayer Prayer
	Time   time.Time
}

// Schedule is the full set of times for one calendar day at one location.
type Schedule struct {
	Date        time.Time // midnight of the calendar day, in the caller's location
	Coordinates solar.Coordinates
	Parameters  Parameters

	Fajr    time.Time
	Sunrise time.Time
	Dhuhr   time.Time
	Asr     time.Time
	Maghrib time.Time
	Isha    time.Time

	Fallbacks []Fallback
}

// Time returns the instant of p, or the zero time for None.
func (s Schedule) Time(p Prayer) time.Time {
	switch p {
	case Fajr:
		return s.Fajr
	case Sunrise:
		return s.Sunrise
	case Dhuhr:
		return s.Dhuhr
	case Asr:
		return s.Asr
	case Maghrib:
		return s.Maghrib
	case Isha:
		return s.Isha
	default:
		return time.Time{}
	}
}

// Entries returns the six entries in chronological order.
func (s Schedule) Entries() []Entry {
	return s.Select(All)
}

// Select returns the entries for the given prayers, in the order given.
func (s Schedule) Select(prayers []Prayer) []Entry {
	out := make([]Entry, 0, len(prayers))
	for _, p := range prayers {
		out = append(out, Entry{Prayer: p, Time: s.Time(p)})
	}
	return out
}

// FellBack reports whether p was produced by a fallback policy.
func (s Schedule) FellBack(p Prayer) bool {
	for _, f := range s.Fallbacks {
		if f.Prayer == p {
			return true
		}
	}
	return false
}

// dayHours holds UTC hours relative to 0h UT of the calendar date.
type dayHours struct {
	fajr, sunrise, dhuhr, asr, sunset, maghrib, isha float64
}

type solution struct {
	hours     dayHours
	riseSetOK bool
	asrOK     bool
	fajrOK    bool
	ishaOK    bool
	maghribOK bool
}

// minAsrGap is the shortest Dhuhr to Asr interval that survives rounding.
const minAsrGap = 1.0 / 60

// daylit reports whether the sun rises, sets and stays up long enough for
// Asr to follow Dhuhr.
func (s solution) daylit() bool {
	return s.riseSetOK && s.asrOK && s.hours.asr-s.hours.dhuhr >= minAsrGap
}

// ComputeSchedule returns the prayer times at c on the calendar date of date,
// as instants in date's location.
func ComputeSchedule(c solar.Coordinates, date time.Time, p Parameters) (Schedule, error) {
	if err := c.Validate(); err != nil {
		return Schedule{}, err
	}
	if err := p.Validate(); err != nil {
		return Schedule{}, fmt.Errorf("invalid parameters: %w", err)
	}

	year, month, dayOfMonth := date.Date()
	loc := date.Location()
	midnight := time.Date(year, month, dayOfMonth, 0, 0, 0, 0, loc)

	day, err := solar.NewDay(c, year, month, dayOfMonth)
	if err != nil {
		return Schedule{}, err
	}

	var fallbacks []Fallback
	sol := solve(day, p)
	polar := !sol.daylit()
	if polar {
		resolved, rule, err := resolvePolar(c, year, month, dayOfMonth, p)
		if err != nil {
			if sol.riseSetOK {
				return Schedule{}, &UnsolvableAngleError{Prayer: Asr, Date: midnight}
			}
			return Schedule{}, err
		}
		sol = resolved
		fallbacks = append(fallbacks, Fallback{Sunrise, rule}, Fallback{Asr, rule}, Fallback{Maghrib, rule})
	}

	h := sol.hours

	if p.MaghribAngle > 0 && (!sol.maghribOK || h.maghrib < h.sunset) {
		h.maghrib = h.sunset
		if !polar {
			fallbacks = append(fallbacks, Fallback{Maghrib, "sunset"})
		}
	}

	night := 24 - (h.sunset - h.sunrise)
	doy := time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC).YearDay()

	if p.HighLatitudeRule == NoHighLatitudeRule {
		if !sol.fajrOK {
			return Schedule{}, &UnsolvableAngleError{Prayer: Fajr, Date: midnight, Angle: p.FajrAngle}
		}
		if p.IshaInterval == 0 && !sol.ishaOK {
			return Schedule{}, &UnsolvableAngleError{Prayer: Isha, Date: midnight, Angle: p.IshaAngle}
		}
	} else {
		var safeFajr, safeIsha float64
		var safeRule string
		// Rules that produced the current Fajr and Isha; empty while the
		// angle solution stands.
		var fajrRule, ishaRule string

		if p.Method == MoonsightingCommittee {
			if math.Abs(c.Latitude) >= 55 {
				h.fajr, sol.fajrOK = h.sunrise-night/7, true
				h.isha, sol.ishaOK = h.sunset+night/7, true
				fajrRule, ishaRule = SeventhOfTheNight.String(), SeventhOfTheNight.String()
			}
			safeFajr = h.sunrise - seasonalMorningTwilight(c.Latitude, doy, year)/60
			safeIsha = h.sunset + seasonalEveningTwilight(c.Latitude, doy, year, p.Shafaq)/60
			safeRule = "seasonal-twilight"
		} else {
			fajrPortion, ishaPortion := p.nightPortions()
			safeFajr = h.sunrise - fajrPortion*night
			safeIsha = h.sunset + ishaPortion*night
			safeRule = p.HighLatitudeRule.String()
		}

		if !sol.fajrOK || safeFajr > h.fajr {
			h.fajr, fajrRule = safeFajr, safeRule
		}
		if !sol.ishaOK || safeIsha < h.isha {
			h.isha, ishaRule = safeIsha, safeRule
		}
		if fajrRule != "" {
			fallbacks = append(fallbacks, Fallback{Fajr, fajrRule})
		}
		if p.IshaInterval == 0 && ishaRule != "" {
			fallbacks = append(fallbacks, Fallback{Isha, ishaRule})
		}
	}

	if p.IshaInterval > 0 {
		h.isha = h.maghrib + float64(p.IshaInterval)/60
	}

	base := time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
	at := func(pr Prayer, hour float64) time.Time {
		minutes := p.MethodAdjustments.For(pr) + p.Adjustments.For(pr)
		t := base.Add(time.Duration(hour * float64(time.Hour))).Add(time.Duration(minutes) * time.Minute)
		return round(t, p.Rounding).In(loc)
	}

	return Schedule{
		Date:        midnight,
		Coordinates: c,
		Parameters:  p,
		Fajr:        at(Fajr, h.fajr),
		Sunrise:     at(Sunrise, h.sunrise),
		Dhuhr:       at(Dhuhr, h.dhuhr),
		Asr:         at(Asr, h.asr),
		Maghrib:     at(Maghrib, h.maghrib),
		Isha:        at(Isha, h.isha),
		Fallbacks:   fallbacks,
	}, nil
}

// solve runs two passes of the hour-angle equations, starting from the local
// mean times and refining each estimate with the previous result.
func solve(d solar.Day, p Parameters) solution {
	c := d.Coordinates()
	lonHours := c.Longitude / 15
	approx := dayHours{
		fajr:    5 - lonHours,
		sunrise: 6 - lonHours,
		dhuhr:   12 - lonHours,
		asr:     13 - lonHours,
		sunset:  18 - lonHours,
		maghrib: 18 - lonHours,
		isha:    18 - lonHours,
	}
	riseSet := solar.RiseSetAngle(c.Elevation)

	var sol solution
	for pass := 0; pass < 2; pass++ {
		var h dayHours
		var sunriseOK, sunsetOK bool

		h.dhuhr = d.Transit(approx.dhuhr)
		h.sunrise, sunriseOK = d.TimeForAngle(riseSet, approx.sunrise, true)
		h.sunset, sunsetOK = d.TimeForAngle(riseSet, approx.sunset, false)
		h.maghrib = h.sunset

		sol = solution{riseSetOK: sunriseOK && sunsetOK}
		h.asr, sol.asrOK = d.AsrTime(p.Madhab.ShadowFactor(), approx.asr)
		h.fajr, sol.fajrOK = d.TimeForAngle(p.FajrAngle, approx.fajr, true)
		if p.IshaInterval == 0 {
			h.isha, sol.ishaOK = d.TimeForAngle(p.IshaAngle, approx.isha, false)
		}
		if p.MaghribAngle > 0 {
			h.maghrib, sol.maghribOK = d.TimeForAngle(p.MaghribAngle, approx.maghrib, false)
		}
		sol.hours = h

		approx = dayHours{
			fajr:    refine(approx.fajr, h.fajr),
			sunrise: refine(approx.sunrise, h.sunrise),
			dhuhr:   refine(approx.dhuhr, h.dhuhr),
			asr:     refine(approx.asr, h.asr),
			sunset:  refine(approx.sunset, h.sunset),
			maghrib: refine(approx.maghrib, h.maghrib),
			isha:    refine(approx.isha, h.isha),
		}
	}
	return sol
}

func refine(prev, next float64) float64 {
	if math.IsNaN(next) {
		return prev
	}
	return next
}

// resolvePolar finds substitute solar hours for a date on which the sun does
// not rise or set, according to p.PolarResolution.
func resolvePolar(c solar.Coordinates, year int, month time.Month, dayOfMonth int, p Parameters) (solution, string, error) {
	date := time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)

	switch p.PolarResolution {
	case NearestLatitude:
		sign := 1.0
		if c.Latitude < 0 {
			sign = -1
		}
		sub := c
		for step := 1; step <= 180; step++ {
			sub.Latitude = c.Latitude - sign*0.5*float64(step)
			if sub.Latitude*sign < 0 {
				sub.Latitude = 0
			}
			d, err := solar.NewDay(sub, year, month, dayOfMonth)
			if err != nil {
				return solution{}, "", err
			}
			if sol := solve(d, p); sol.daylit() {
				return sol, fmt.Sprintf("%s (%.1f°)", NearestLatitude, sub.Latitude), nil
			}
			if sub.Latitude == 0 {
				break
			}
		}

	case NearestDay:
		for k := 1; k <= 183; k++ {
			for _, dir := range []int{1, -1} {
				other := date.AddDate(0, 0, dir*k)
				y, m, dd := other.Date()
				d, err := solar.NewDay(c, y, m, dd)
				if err != nil {
					return solution{}, "", err
				}
				if sol := solve(d, p); sol.daylit() {
					return sol, fmt.Sprintf("%s (%s)", NearestDay, other.Format("2006-01-02")), nil
				}
			}
		}
	}

	return solution{}, "", &UnsolvableAngleError{
		Prayer: Sunrise,
		Date:   date,
		Angle:  solar.RiseSetAngle(c.Elevation),
	}
}

func round(t time.Time, r Rounding) time.Time {
	switch r {
	case RoundUp:
		rt := t.Truncate(time.Minute)
		if rt.Before(t) {
			rt = rt.Add(time.Minute)
		}
		return rt
	case RoundNone:
		return t.Round(time.Second)
	default:
		return t.Round(time.Minute)
	}
}
