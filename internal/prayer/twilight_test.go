package prayer

import (
	"math"
	"testing"
)

func TestDaysSinceSolstice(t *testing.T) {
	tests := []struct {
		name      string
		dayOfYear int
		year      int
		latitude  float64
		want      int
	}{
		{"north new year", 1, 2023, 51.5, 11},
		{"north wraps", 360, 2023, 51.5, 5},
		{"north leap wrap", 360, 2024, 51.5, 4},
		{"south solstice", 172, 2023, -33.9, 0},
		{"south solstice leap", 173, 2024, -33.9, 0},
		{"south wraps", 1, 2024, -33.9, 194},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := daysSinceSolstice(tt.dayOfYear, tt.year, tt.latitude); got != tt.want {
				t.Errorf("daysSinceSolstice(%d, %d, %v) = %d, want %d", tt.dayOfYear, tt.year, tt.latitude, got, tt.want)
			}
		})
	}
}

func TestInterpolateSeason_Anchors(t *testing.T) {
	a, b, c, d := 80.0, 70.0, 60.0, 90.0
	tests := []struct {
		dyy  int
		want float64
	}{
		{0, a},
		{91, b},
		{137, c},
		{183, d},
		{229, c},
		{275, b},
		{366, a},
	}

	for _, tt := range tests {
		if got := interpolateSeason(a, b, c, d, tt.dyy); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("interpolateSeason(dyy=%d) = %v, want %v", tt.dyy, got, tt.want)
		}
	}
}

func TestSeasonalTwilight_Equator(t *testing.T) {
	// At the equator every table collapses to its base value.
	for doy := 1; doy <= 365; doy += 30 {
		if got := seasonalMorningTwilight(0, doy, 2023); got != 75 {
			t.Errorf("morning(doy=%d) = %v, want 75", doy, got)
		}
		if got := seasonalEveningTwilight(0, doy, 2023, ShafaqGeneral); got != 75 {
			t.Errorf("evening general(doy=%d) = %v, want 75", doy, got)
		}
		if got := seasonalEveningTwilight(0, doy, 2023, ShafaqAhmer); got != 62 {
			t.Errorf("evening ahmer(doy=%d) = %v, want 62", doy, got)
		}
	}
}

func TestSeasonalTwilight_AbyadIsLongest(t *testing.T) {
	for doy := 1; doy <= 365; doy += 15 {
		general := seasonalEveningTwilight(45, doy, 2023, ShafaqGeneral)
		ahmer := seasonalEveningTwilight(45, doy, 2023, ShafaqAhmer)
		abyad := seasonalEveningTwilight(45, doy, 2023, ShafaqAbyad)
		if !(ahmer < general && general <= abyad) {
			t.Errorf("doy %d: want ahmer < general <= abyad, got %.1f %.1f %.1f", doy, ahmer, general, abyad)
		}
	}
}
