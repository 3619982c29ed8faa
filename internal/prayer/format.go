package prayer

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"
)

// Built-in status line formats.
const (
	FormatTimeRemaining      = "time-remaining"
	FormatNextPrayerTime     = "next-prayer-time"
	FormatNameAndTime        = "name-and-time"
	FormatNameAndRemaining   = "name-and-remaining"
	FormatShortNameAndTime   = "short-name-and-time"
	FormatShortNameAndRemain = "short-name-and-remaining"
	FormatFull               = "full"
	FormatCountdownMode      = "countdown"
)

// FormatData is the dot of a custom format template.
type FormatData struct {
	Name      string // "Asr"
	ShortName string // "A"
	Key       string // "asr"
	Time      string // "15:02" or "3:02 PM"
	Remaining string // "2h 15m"
	Countdown string // "02:15:00"
	Hours     int
	Minutes   int // after Hours
}

var formats = map[string]func(FormatData) string{
	FormatTimeRemaining:      func(d FormatData) string { return d.Remaining },
	FormatNextPrayerTime:     func(d FormatData) string { return d.Time },
	FormatNameAndTime:        func(d FormatData) string { return d.Name + " " + d.Time },
	FormatNameAndRemaining:   func(d FormatData) string { return d.Name + " " + d.Remaining },
	FormatShortNameAndTime:   func(d FormatData) string { return d.ShortName + " " + d.Time },
	FormatShortNameAndRemain: func(d FormatData) string { return d.ShortName + " " + d.Remaining },
	FormatFull:               func(d FormatData) string { return fmt.Sprintf("%s %s (%s)", d.Name, d.Time, d.Remaining) },
	FormatCountdownMode:      func(d FormatData) string { return d.Name + " " + d.Countdown },
}

// Formats lists the built-in format names.
var Formats = []string{
	FormatTimeRemaining, FormatNextPrayerTime, FormatNameAndTime, FormatNameAndRemaining,
	FormatShortNameAndTime, FormatShortNameAndRemain, FormatFull, FormatCountdownMode,
}

// isTemplate reports whether mode is a custom template rather than a name.
func isTemplate(mode string) bool { return strings.Contains(mode, "{{") }

// ValidateFormat accepts a built-in name or a template that parses and
// only refers to FormatData fields.
func ValidateFormat(mode string) error {
	if !isTemplate(mode) {
		if _, ok := formats[mode]; !ok {
			return fmt.Errorf("unknown format %q: use one of %s or a Go template", mode, strings.Join(Formats, ", "))
		}
		return nil
	}
	t, err := template.New("format").Parse(mode)
	if err != nil {
		return fmt.Errorf("invalid format template: %w", err)
	}
	if err := t.Execute(io.Discard, FormatData{}); err != nil {
		return fmt.Errorf("invalid format template: %w", err)
	}
	return nil
}

// NewFormatData describes e as seen at now. layout is a Go time layout.
func NewFormatData(e Entry, now time.Time, layout string) FormatData {
	d := TimeRemaining(e, now)
	if d < 0 {
		d = 0
	}
	return FormatData{
		Name:      e.Prayer.String(),
		ShortName: e.Prayer.ShortName(),
		Key:       e.Prayer.Key(),
		Time:      e.Time.Format(layout),
		Remaining: FormatRemaining(d),
		Countdown: FormatCountdown(d),
		Hours:     int(d.Hours()),
		Minutes:   int(d.Minutes()) % 60,
	}
}

// FormatOutput renders e for a status line. mode is a built-in format name
// or, when it contains "{{", a text/template over FormatData such as
// "{{.Name}} in {{.Remaining}}". Unknown names fall back to name-and-time;
// a broken template renders as "template-err: ...".
func FormatOutput(e Entry, now time.Time, mode string, layout string) string {
	data := NewFormatData(e, now, layout)
	if !isTemplate(mode) {
		if f, ok := formats[mode]; ok {
			return f(data)
		}
		return formats[FormatNameAndTime](data)
	}

	t, err := template.New("format").Parse(mode)
	if err != nil {
		return fmt.Sprintf("template-err: %v", err)
	}
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return fmt.Sprintf("template-err: %v", err)
	}
	return sb.String()
}
