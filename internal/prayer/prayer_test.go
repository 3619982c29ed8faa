package prayer

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/smokyabdulrahman/salat/internal/solar"
)

// helper to build a time.Time on a given date in UTC.
func makeTime(t *testing.T, hour, min int) time.Time {
	t.Helper()
	return time.Date(2026, 2, 28, hour, min, 0, 0, time.UTC)
}

// sampleSchedule mirrors a late-February day in London.
func sampleSchedule(t *testing.T) Schedule {
	t.Helper()
	return Schedule{
		Date:    time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		Fajr:    makeTime(t, 5, 17),
		Sunrise: makeTime(t, 6, 48),
		Dhuhr:   makeTime(t, 12, 13),
		Asr:     makeTime(t, 15, 2),
		Maghrib: makeTime(t, 17, 39),
		Isha:    makeTime(t, 19, 10),
	}
}

// ---------------------------------------------------------------------------
// Prayer enum
// ---------------------------------------------------------------------------

func TestPrayer_StringAndShortName(t *testing.T) {
	tests := []struct {
		p     Prayer
		name  string
		short string
	}{
		{None, "None", "-"},
		{Fajr, "Fajr", "F"},
		{Sunrise, "Sunrise", "S"},
		{Dhuhr, "Dhuhr", "D"},
		{Asr, "Asr", "A"},
		{Maghrib, "Maghrib", "M"},
		{Isha, "Isha", "I"},
	}

	for _, tt := range tests {
		if got := tt.p.String(); got != tt.name {
			t.Errorf("Prayer(%d).String() = %q, want %q", int(tt.p), got, tt.name)
		}
		if got := tt.p.ShortName(); got != tt.short {
			t.Errorf("Prayer(%d).ShortName() = %q, want %q", int(tt.p), got, tt.short)
		}
	}
}

func TestPrayer_IsPrayer(t *testing.T) {
	if None.IsPrayer() || Sunrise.IsPrayer() {
		t.Error("None and Sunrise must not be prayers")
	}
	for _, p := range []Prayer{Fajr, Dhuhr, Asr, Maghrib, Isha} {
		if !p.IsPrayer() {
			t.Errorf("%s.IsPrayer() = false", p)
		}
	}
}

func TestParsePrayer(t *testing.T) {
	tests := []struct {
		in      string
		want    Prayer
		wantErr bool
	}{
		{"Fajr", Fajr, false},
		{"fajr", Fajr, false},
		{"  ISHA ", Isha, false},
		{"zuhr", Dhuhr, false},
		{"sunrise", Sunrise, false},
		{"Tahajjud", None, true},
		{"", None, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePrayer(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParsePrayer(%q) expected error, got %v", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePrayer(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParsePrayer(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestPrayer_JSON(t *testing.T) {
	data, err := json.Marshal(Fallback{Prayer: Isha, Rule: "middle-of-the-night"})
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != `{"prayer":"isha","rule":"middle-of-the-night"}` {
		t.Errorf("Marshal = %s", got)
	}

	var back Fallback
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.Prayer != Isha {
		t.Errorf("Unmarshal prayer = %v, want Isha", back.Prayer)
	}

	var p Prayer
	if err := json.Unmarshal([]byte(`"none"`), &p); err != nil || p != None {
		t.Errorf("Unmarshal none = %v, %v", p, err)
	}
	if err := json.Unmarshal([]byte(`"witr"`), &p); err == nil {
		t.Error("Unmarshal of unknown prayer should fail")
	}
}

func TestParseList(t *testing.T) {
	got, err := ParseList("Fajr,Maghrib,Isha")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 || got[0] != Fajr || got[1] != Maghrib || got[2] != Isha {
		t.Errorf("ParseList = %v, want [Fajr Maghrib Isha]", got)
	}

	all, err := ParseList("")
	if err != nil || len(all) != len(All) {
		t.Errorf("ParseList(\"\") = %v, %v; want all entries", all, err)
	}

	if _, err := ParseList("Fajr,Tahajjud"); err == nil {
		t.Error("expected error for unknown prayer in list")
	}
}

// ---------------------------------------------------------------------------
// Schedule accessors
// ---------------------------------------------------------------------------

func TestSchedule_EntriesOrdered(t *testing.T) {
	s := sampleSchedule(t)
	entries := s.Entries()
	if len(entries) != 6 {
		t.Fatalf("expected 6 entries, got %d", len(entries))
	}
	for i, p := range All {
		if entries[i].Prayer != p {
			t.Errorf("entry[%d] = %s, want %s", i, entries[i].Prayer, p)
		}
		if !entries[i].Time.Equal(s.Time(p)) {
			t.Errorf("entry[%d] time = %v, want %v", i, entries[i].Time, s.Time(p))
		}
	}
	if !s.Time(None).IsZero() {
		t.Error("Time(None) should be the zero time")
	}
}

func TestSchedule_Select(t *testing.T) {
	s := sampleSchedule(t)
	got := s.Select([]Prayer{Maghrib, Fajr})
	if len(got) != 2 || got[0].Prayer != Maghrib || got[1].Prayer != Fajr {
		t.Errorf("Select = %v", got)
	}
}

// ---------------------------------------------------------------------------
// Evaluate
// ---------------------------------------------------------------------------

func TestEvaluate(t *testing.T) {
	s := sampleSchedule(t)

	tests := []struct {
		name         string
		ref          time.Time
		wantCurrent  Prayer
		wantNext     Prayer
		wantTomorrow bool
	}{
		{"before fajr", makeTime(t, 3, 0), None, Fajr, false},
		{"one second before fajr", makeTime(t, 5, 17).Add(-time.Second), None, Fajr, false},
		{"exactly fajr", makeTime(t, 5, 17), Fajr, Sunrise, false},
		{"between fajr and sunrise", makeTime(t, 6, 0), Fajr, Sunrise, false},
		{"exactly sunrise", makeTime(t, 6, 48), None, Dhuhr, false},
		{"between sunrise and dhuhr", makeTime(t, 9, 30), None, Dhuhr, false},
		{"exactly dhuhr", makeTime(t, 12, 13), Dhuhr, Asr, false},
		{"middle of day", makeTime(t, 13, 0), Dhuhr, Asr, false},
		{"exactly asr", makeTime(t, 15, 2), Asr, Maghrib, false},
		{"after maghrib", makeTime(t, 18, 0), Maghrib, Isha, false},
		{"exactly isha", makeTime(t, 19, 10), Isha, Fajr, true},
		{"late night", makeTime(t, 23, 59), Isha, Fajr, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Evaluate(s, tt.ref)
			if st.Current != tt.wantCurrent {
				t.Errorf("Current = %s, want %s", st.Current, tt.wantCurrent)
			}
			if st.Next != tt.wantNext {
				t.Errorf("Next = %s, want %s", st.Next, tt.wantNext)
			}
			if st.NextIsTomorrow != tt.wantTomorrow {
				t.Errorf("NextIsTomorrow = %v, want %v", st.NextIsTomorrow, tt.wantTomorrow)
			}
			if !tt.wantTomorrow && !st.NextTime.Equal(s.Time(tt.wantNext)) {
				t.Errorf("NextTime = %v, want %v", st.NextTime, s.Time(tt.wantNext))
			}
			if tt.wantTomorrow && !st.NextTime.IsZero() {
				t.Errorf("NextTime = %v, want zero after Isha", st.NextTime)
			}
		})
	}
}

func TestEvaluate_NextIsStrictlyAfterRef(t *testing.T) {
	s := sampleSchedule(t)
	for m := 0; m < 24*60; m += 7 {
		ref := s.Date.Add(time.Duration(m) * time.Minute)
		st := Evaluate(s, ref)
		if !st.NextIsTomorrow && !st.NextTime.After(ref) {
			t.Fatalf("at %s: next %s at %s is not after ref", ref.Format("15:04"), st.Next, st.NextTime.Format("15:04"))
		}
		if st.Current == Sunrise {
			t.Fatalf("at %s: Sunrise reported as current", ref.Format("15:04"))
		}
	}
}

func TestStatusAt_FillsTomorrowsFajr(t *testing.T) {
	c := mecca
	ref := time.Date(2024, time.March, 15, 23, 30, 0, 0, meccaZone)

	st, today, err := StatusAt(c, ref, DefaultParameters())
	if err != nil {
		t.Fatalf("StatusAt: %v", err)
	}
	if st.Current != Isha || st.Next != Fajr || !st.NextIsTomorrow {
		t.Fatalf("status = %+v, want current Isha, next Fajr tomorrow", st)
	}

	tomorrow, err := ComputeSchedule(c, ref.AddDate(0, 0, 1), DefaultParameters())
	if err != nil {
		t.Fatalf("ComputeSchedule: %v", err)
	}
	if !st.NextTime.Equal(tomorrow.Fajr) {
		t.Errorf("NextTime = %v, want tomorrow's Fajr %v", st.NextTime, tomorrow.Fajr)
	}
	if !st.NextTime.After(today.Isha) {
		t.Errorf("NextTime %v should be after today's Isha %v", st.NextTime, today.Isha)
	}
}

func TestStatusAt_InvalidCoordinates(t *testing.T) {
	if _, _, err := StatusAt(solar.Coordinates{Latitude: 95}, time.Now(), DefaultParameters()); err == nil {
		t.Fatal("expected error for invalid latitude")
	}
}

// ---------------------------------------------------------------------------
// TimeRemaining
// ---------------------------------------------------------------------------

func TestTimeRemaining(t *testing.T) {
	e := Entry{Prayer: Asr, Time: makeTime(t, 15, 2)}
	now := makeTime(t, 13, 0)

	d := TimeRemaining(e, now)
	if d.Hours() < 2.0 || d.Hours() > 2.1 {
		t.Errorf("expected ~2h, got %v", d)
	}
}

func TestTimeRemaining_Negative(t *testing.T) {
	e := Entry{Prayer: Fajr, Time: makeTime(t, 5, 0)}
	now := makeTime(t, 10, 0)

	d := TimeRemaining(e, now)
	if d >= 0 {
		t.Errorf("expected negative duration, got %v", d)
	}
}

// ---------------------------------------------------------------------------
// FormatRemaining / FormatCountdown
// ---------------------------------------------------------------------------

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     string
	}{
		{"hours and minutes", 2*time.Hour + 15*time.Minute, "2h 15m"},
		{"only minutes", 45 * time.Minute, "45m"},
		{"exactly one hour", 1 * time.Hour, "1h 0m"},
		{"zero", 0, "0m"},
		{"negative", -30 * time.Minute, "0m"},
		{"large", 10*time.Hour + 59*time.Minute, "10h 59m"},
		{"just over an hour", 1*time.Hour + 1*time.Minute, "1h 1m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatRemaining(tt.duration)
			if got != tt.want {
				t.Errorf("FormatRemaining(%v) = %q, want %q", tt.duration, got, tt.want)
			}
		})
	}
}

func TestFormatCountdown(t *testing.T) {
	tests := []struct {
		duration time.Duration
		want     string
	}{
		{0, "00:00:00"},
		{-5 * time.Second, "00:00:00"},
		{59 * time.Second, "00:00:59"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03"},
		{25*time.Hour + 1500*time.Millisecond, "25:00:01"},
	}

	for _, tt := range tests {
		if got := FormatCountdown(tt.duration); got != tt.want {
			t.Errorf("FormatCountdown(%v) = %q, want %q", tt.duration, got, tt.want)
		}
	}
}
