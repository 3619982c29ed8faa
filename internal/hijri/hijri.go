// Package hijri converts Gregorian dates to the tabular Islamic calendar using
// the Kuwaiti algorithm.
//
// The result is arithmetic, not observational: it may differ by a day from the
// date announced by local moon sighting and must not be used to decide the
// start of religious observances. FromGregorianAdjusted lets callers apply a
// local correction.
package hijri

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrBeforeEpoch is returned for dates before 1 Muharram 1 AH
// (18 July 622, proleptic Gregorian).
var ErrBeforeEpoch = errors.New("date is before the Hijri epoch")

// epochJD is the Julian day number of 1 Muharram 1 AH in the tabular calendar.
const epochJD = 1948439

const (
	cycleDays = 10631 // days in a 30-year cycle
	shift1    = 8.01 / 60
)

var monthNames = [12]string{
	"Muharram", "Safar", "Rabi al-Awwal", "Rabi al-Thani",
	"Jumada al-Awwal", "Jumada al-Thani", "Rajab", "Shaban",
	"Ramadan", "Shawwal", "Dhu al-Qadah", "Dhu al-Hijjah",
}

// Date is a day of the Hijri calendar.
type Date struct {
	Day   int `json:"day"`
	Month int `json:"month"`
	Year  int `json:"year"`
}

// MonthName returns the transliterated month name, or "" for an invalid month.
func (d Date) MonthName() string {
	if d.Month < 1 || d.Month > 12 {
		return ""
	}
	return monthNames[d.Month-1]
}

// Format renders the date as "DD MonthName YYYY AH".
func (d Date) Format() string {
	return fmt.Sprintf("%02d %s %d AH", d.Day, d.MonthName(), d.Year)
}

func (d Date) String() string { return d.Format() }

// FromGregorian converts the calendar date of t (in t's location) to Hijri.
func FromGregorian(t time.Time) (Date, error) {
	jd := julianDayNumber(t.Date())
	if jd < epochJD {
		return Date{}, fmt.Errorf("%s: %w", t.Format("2006-01-02"), ErrBeforeEpoch)
	}
	return fromJulianDay(jd), nil
}

// FromGregorianAdjusted converts t shifted by days, the local moon-sighting correction.
func FromGregorianAdjusted(t time.Time, days int) (Date, error) {
	return FromGregorian(t.AddDate(0, 0, days))
}

// JulianDay returns the Julian day number (at noon) of d.
func (d Date) JulianDay() int {
	iyear := float64(cycleDays) / 30
	cyc := floorDiv(d.Year, 30)
	j := d.Year - 30*cyc

	z := cycleDays*cyc +
		int(math.Floor(float64(j)*iyear+shift1)) +
		int(math.Floor(29.5001*float64(d.Month)-29)) +
		d.Day
	return z + 1948084
}

// ToGregorian returns midnight of the Gregorian day corresponding to d in loc.
func (d Date) ToGregorian(loc *time.Location) time.Time {
	y, m, day := gregorianFromJulianDay(d.JulianDay())
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}

// Valid reports whether the fields are within calendar bounds.
func (d Date) Valid() bool {
	return d.Year >= 1 && d.Month >= 1 && d.Month <= 12 && d.Day >= 1 && d.Day <= 30
}

func fromJulianDay(jd int) Date {
	iyear := float64(cycleDays) / 30

	z := jd - 1948084
	cyc := floorDiv(z, cycleDays)
	z -= cycleDays * cyc
	j := int(math.Floor((float64(z) - shift1) / iyear))
	iy := 30*cyc + j
	z -= int(math.Floor(float64(j)*iyear + shift1))

	im := int(math.Floor((float64(z) + 28.5001) / 29.5))
	if im == 13 {
		im = 12
	}
	id := z - int(math.Floor(29.5001*float64(im)-29))

	return Date{Day: id, Month: im, Year: iy}
}

// julianDayNumber returns the Julian day number at noon of a proleptic
// Gregorian date.
func julianDayNumber(year int, month time.Month, day int) int {
	y, m := year, int(month)
	if m <= 2 {
		y--
		m += 12
	}
	a := floorDiv(y, 100)
	b := 2 - a + floorDiv(a, 4)
	return int(math.Floor(365.25*float64(y+4716))) + int(math.Floor(30.6001*float64(m+1))) + day + b - 1524
}

func gregorianFromJulianDay(jd int) (int, time.Month, int) {
	// Fliegel & Van Flandern.
	l := jd + 68569
	n := 4 * l / 146097
	l -= (146097*n + 3) / 4
	i := 4000 * (l + 1) / 1461001
	l = l - 1461*i/4 + 31
	j := 80 * l / 2447
	day := l - 2447*j/80
	l = j / 11
	month := j + 2 - 12*l
	year := 100*(n-49) + i + l
	return year, time.Month(month), day
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
