// Package prayer computes the daily prayer schedule for a location and date,
// and determines which prayer is current and which comes next.
package prayer

import (
	"fmt"
	"strings"
)

// Prayer identifies one entry of the daily schedule.
// Sunrise is a schedule marker, not a prayer; None means "no prayer".
type Prayer int

const (
	None Prayer = iota
	Fajr
	Sunrise
	Dhuhr
	Asr
	Maghrib
	Isha
)

// All lists every schedule entry in chronological order.
var All = []Prayer{Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha}

// String returns the display name of the prayer.
func (p Prayer) String() string {
	switch p {
	case None:
		return "None"
	case Fajr:
		return "Fajr"
	case Sunrise:
		return "Sunrise"
	case Dhuhr:
		return "Dhuhr"
	case Asr:
		return "Asr"
	case Maghrib:
		return "Maghrib"
	case Isha:
		return "Isha"
	default:
		return fmt.Sprintf("Prayer(%d)", int(p))
	}
}

// ShortName returns a single-character abbreviation for status lines.
func (p Prayer) ShortName() string {
	switch p {
	case Fajr:
		return "F"
	case Sunrise:
		return "S"
	case Dhuhr:
		return "D"
	case Asr:
		return "A"
	case Maghrib:
		return "M"
	case Isha:
		return "I"
	default:
		return "-"
	}
}

// Key returns the lower-case name used in JSON output and MQTT topics.
func (p Prayer) Key() string {
	return strings.ToLower(p.String())
}

// IsPrayer reports whether p is one of the five prayers.
func (p Prayer) IsPrayer() bool {
	switch p {
	case Fajr, Dhuhr, Asr, Maghrib, Isha:
		return true
	default:
		return false
	}
}

// ParsePrayer converts a case-insensitive name to a Prayer.
func ParsePrayer(name string) (Prayer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "fajr":
		return Fajr, nil
	case "sunrise", "shuruq":
		return Sunrise, nil
	case "dhuhr", "zuhr":
		return Dhuhr, nil
	case "asr":
		return Asr, nil
	case "maghrib":
		return Maghrib, nil
	case "isha":
		return Isha, nil
	default:
		return None, fmt.Errorf("unknown prayer %q; valid names: Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha", name)
	}
}

// MarshalText encodes p by its lowercase key, so JSON carries "fajr" rather than 1.
func (p Prayer) MarshalText() ([]byte, error) {
	return []byte(p.Key()), nil
}

// UnmarshalText accepts any name ParsePrayer accepts, and "none".
func (p *Prayer) UnmarshalText(b []byte) error {
	if strings.EqualFold(string(b), "none") {
		*p = None
		return nil
	}
	v, err := ParsePrayer(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ParseList parses a comma-separated list of prayer names, e.g. "Fajr,Dhuhr".
// An empty string selects every entry.
func ParseList(csv string) ([]Prayer, error) {
	if strings.TrimSpace(csv) == "" {
		return All, nil
	}

	var out []Prayer
	for _, name := range strings.Split(csv, ",") {
		p, err := ParsePrayer(name)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
