package prayer

import "math"

// Seasonal twilight of the Moonsighting Committee, in minutes before sunrise
// (morning) and after sunset (evening). Each table is a piecewise-linear
// curve through four values anchored at 0, 91, 137, 183, 229 and 275 days
// after the winter solstice of the hemisphere.

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func daysSinceSolstice(dayOfYear, year int, latitude float64) int {
	daysInYear := 365
	if isLeapYear(year) {
		daysInYear = 366
	}

	if latitude >= 0 {
		d := dayOfYear + 10
		if d >= daysInYear {
			d -= daysInYear
		}
		return d
	}

	southern := 172
	if isLeapYear(year) {
		southern = 173
	}
	d := dayOfYear - southern
	if d < 0 {
		d += daysInYear
	}
	return d
}

func seasonalMorningTwilight(latitude float64, dayOfYear, year int) float64 {
	lat := math.Abs(latitude)
	a := 75 + 28.65/55*lat
	b := 75 + 19.44/55*lat
	c := 75 + 32.74/55*lat
	d := 75 + 48.10/55*lat
	return interpolateSeason(a, b, c, d, daysSinceSolstice(dayOfYear, year, latitude))
}

func seasonalEveningTwilight(latitude float64, dayOfYear, year int, shafaq Shafaq) float64 {
	lat := math.Abs(latitude)
	var a, b, c, d float64
	switch shafaq {
	case ShafaqAhmer:
		a = 62 + 17.40/55*lat
		b = 62 - 7.16/55*lat
		c = 62 + 5.12/55*lat
		d = 62 + 19.44/55*lat
	case ShafaqAbyad:
		a = 75 + 25.60/55*lat
		b = 75 + 7.16/55*lat
		c = 75 + 36.84/55*lat
		d = 75 + 81.84/55*lat
	default:
		a = 75 + 25.60/55*lat
		b = 75 + 2.05/55*lat
		c = 75 - 9.21/55*lat
		d = 75 + 6.14/55*lat
	}
	return interpolateSeason(a, b, c, d, daysSinceSolstice(dayOfYear, year, latitude))
}

func interpolateSeason(a, b, c, d float64, dyy int) float64 {
	x := float64(dyy)
	switch {
	case dyy < 91:
		return a + (b-a)/91*x
	case dyy < 137:
		return b + (c-b)/46*(x-91)
	case dyy < 183:
		return c + (d-c)/46*(x-137)
	case dyy < 229:
		return d + (c-d)/46*(x-183)
	case dyy < 275:
		return c + (b-c)/46*(x-229)
	default:
		return b + (a-b)/91*(x-275)
	}
}
