package prayer

import (
	"strings"
	"testing"
)

func TestMethods_PresetsAreValid(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Methods {
		p := m.Parameters()
		if err := p.Validate(); err != nil {
			t.Errorf("%s: %v", m, err)
		}
		if p.Method != m {
			t.Errorf("%s: Parameters().Method = %d", m, int(p.Method))
		}
		if seen[m.Slug()] {
			t.Errorf("duplicate slug %q", m.Slug())
		}
		seen[m.Slug()] = true
	}
	if len(Methods) != len(presets) {
		t.Errorf("Methods lists %d presets, table has %d", len(Methods), len(presets))
	}
}

func TestMethod_Defaults(t *testing.T) {
	p := DefaultParameters()
	if p.Method != MoonsightingCommittee {
		t.Errorf("default method = %s, want Moonsighting Committee", p.Method)
	}
	if p.FajrAngle != 18 || p.IshaAngle != 18 {
		t.Errorf("angles = %v/%v, want 18/18", p.FajrAngle, p.IshaAngle)
	}
	if p.MethodAdjustments.Dhuhr != 5 || p.MethodAdjustments.Maghrib != 3 {
		t.Errorf("adjustments = %+v, want dhuhr +5, maghrib +3", p.MethodAdjustments)
	}
	if p.Madhab != Shafi || p.HighLatitudeRule != MiddleOfTheNight || p.PolarResolution != NearestLatitude {
		t.Errorf("unexpected defaults: %+v", p)
	}
}

func TestMethod_KnownAngles(t *testing.T) {
	tests := []struct {
		m            Method
		fajr, isha   float64
		ishaInterval int
	}{
		{MuslimWorldLeague, 18, 17, 0},
		{ISNA, 15, 15, 0},
		{Egyptian, 19.5, 17.5, 0},
		{UmmAlQura, 18.5, 0, 90},
		{Karachi, 18, 18, 0},
		{Portugal, 18, 0, 77},
	}

	for _, tt := range tests {
		p := tt.m.Parameters()
		if p.FajrAngle != tt.fajr || p.IshaAngle != tt.isha || p.IshaInterval != tt.ishaInterval {
			t.Errorf("%s = %v/%v/%d, want %v/%v/%d", tt.m,
				p.FajrAngle, p.IshaAngle, p.IshaInterval, tt.fajr, tt.isha, tt.ishaInterval)
		}
	}
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    Method
		wantErr bool
	}{
		{"15", MoonsightingCommittee, false},
		{"3", MuslimWorldLeague, false},
		{"mwl", MuslimWorldLeague, false},
		{"ISNA", ISNA, false},
		{"Umm-Al-Qura", UmmAlQura, false},
		{"Moonsighting Committee Worldwide", MoonsightingCommittee, false},
		{" 0 ", Jafari, false},
		{"6", 0, true},
		{"99", 0, true},
		{"martian", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMethod(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseMethod(%q) expected error, got %v", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMethod(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseMethod(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseMadhab(t *testing.T) {
	for in, want := range map[string]Madhab{"0": Shafi, "shafi": Shafi, "1": Hanafi, "Hanafi": Hanafi} {
		got, err := ParseMadhab(in)
		if err != nil || got != want {
			t.Errorf("ParseMadhab(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseMadhab("2"); err == nil {
		t.Error("expected error for school 2")
	}
	if Hanafi.ShadowFactor() != 2 || Shafi.ShadowFactor() != 1 {
		t.Error("unexpected shadow factors")
	}
}

func TestParseRules_RoundTrip(t *testing.T) {
	for _, r := range []HighLatitudeRule{MiddleOfTheNight, SeventhOfTheNight, TwilightAngle, NoHighLatitudeRule} {
		got, err := ParseHighLatitudeRule(strings.ToUpper(r.String()))
		if err != nil || got != r {
			t.Errorf("ParseHighLatitudeRule(%q) = %v, %v", r, got, err)
		}
	}
	for _, r := range []PolarResolution{NearestLatitude, NearestDay, Unresolved} {
		got, err := ParsePolarResolution(r.String())
		if err != nil || got != r {
			t.Errorf("ParsePolarResolution(%q) = %v, %v", r, got, err)
		}
	}
	for _, s := range []Shafaq{ShafaqGeneral, ShafaqAhmer, ShafaqAbyad} {
		got, err := ParseShafaq(s.String())
		if err != nil || got != s {
			t.Errorf("ParseShafaq(%q) = %v, %v", s, got, err)
		}
	}
	if _, err := ParseHighLatitudeRule("angle-based"); err == nil {
		t.Error("expected error for unknown rule")
	}
	if _, err := ParsePolarResolution("skip"); err == nil {
		t.Error("expected error for unknown resolution")
	}
}

func TestParameters_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Parameters)
	}{
		{"unknown method", func(p *Parameters) { p.Method = 6 }},
		{"zero fajr angle", func(p *Parameters) { p.FajrAngle = 0 }},
		{"huge isha angle", func(p *Parameters) { p.IshaAngle = 45 }},
		{"negative interval", func(p *Parameters) { p.IshaInterval = -1 }},
		{"negative maghrib angle", func(p *Parameters) { p.MaghribAngle = -4 }},
		{"bad madhab", func(p *Parameters) { p.Madhab = 3 }},
		{"bad rule", func(p *Parameters) { p.HighLatitudeRule = 9 }},
		{"bad polar resolution", func(p *Parameters) { p.PolarResolution = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParameters()
			tt.mutate(&p)
			if err := p.Validate(); err == nil {
				t.Errorf("Validate() = nil for %+v", p)
			}
		})
	}

	// An interval makes the isha angle irrelevant.
	p := UmmAlQura.Parameters()
	if err := p.Validate(); err != nil {
		t.Errorf("UmmAlQura with zero isha angle: %v", err)
	}
}

func TestNightPortions(t *testing.T) {
	p := MuslimWorldLeague.Parameters()

	tests := []struct {
		rule       HighLatitudeRule
		fajr, isha float64
	}{
		{MiddleOfTheNight, 0.5, 0.5},
		{SeventhOfTheNight, 1.0 / 7, 1.0 / 7},
		{TwilightAngle, 18.0 / 60, 17.0 / 60},
	}
	for _, tt := range tests {
		p.HighLatitudeRule = tt.rule
		f, i := p.nightPortions()
		if f != tt.fajr || i != tt.isha {
			t.Errorf("%s: portions = %v/%v, want %v/%v", tt.rule, f, i, tt.fajr, tt.isha)
		}
	}
}

func TestParseAdjustments(t *testing.T) {
	tests := []struct {
		in      string
		want    Adjustments
		wantErr bool
	}{
		{in: "", want: Adjustments{}},
		{in: "fajr=2,isha=-1", want: Adjustments{Fajr: 2, Isha: -1}},
		{in: " Dhuhr = 3 , maghrib=1", want: Adjustments{Dhuhr: 3, Maghrib: 1}},
		{in: "sunrise=-60", want: Adjustments{Sunrise: -60}},
		{in: "fajr", wantErr: true},
		{in: "fajr=abc", wantErr: true},
		{in: "fajr=61", wantErr: true},
		{in: "tahajjud=5", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseAdjustments(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseAdjustments(%q) expected error, got %+v", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAdjustments(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAdjustments(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestAdjustments_StringRoundTrip(t *testing.T) {
	a := Adjustments{Fajr: 2, Asr: -3, Isha: 5}
	if got := a.String(); got != "fajr=2,asr=-3,isha=5" {
		t.Errorf("String() = %q", got)
	}
	back, err := ParseAdjustments(a.String())
	if err != nil || back != a {
		t.Errorf("round trip = %+v, %v; want %+v", back, err, a)
	}
}
