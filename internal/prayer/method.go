package prayer

import (
	"fmt"
	"strconv"
	"strings"
)

// Method is a named calculation convention. Values match the Al Adhan API
// method IDs so that configuration files stay interchangeable.
type Method int

const (
	Jafari                Method = 0
	Karachi               Method = 1
	ISNA                  Method = 2
	MuslimWorldLeague     Method = 3
	UmmAlQura             Method = 4
	Egyptian              Method = 5
	Tehran                Method = 7
	Gulf                  Method = 8
	Kuwait                Method = 9
	Qatar                 Method = 10
	Singapore             Method = 11
	France                Method = 12
	Turkey                Method = 13
	Russia                Method = 14
	MoonsightingCommittee Method = 15
	Dubai                 Method = 16
	JAKIM                 Method = 17
	Tunisia               Method = 18
	Algeria               Method = 19
	Kemenag               Method = 20
	Morocco               Method = 21
	Portugal              Method = 22
	Jordan                Method = 23
)

// DefaultMethod is used when no method is configured.
const DefaultMethod = MoonsightingCommittee

type preset struct {
	name         string
	slug         string
	fajr         float64
	isha         float64
	ishaInterval int
	maghrib      float64
	adjustments  Adjustments
	rounding     Rounding
}

var presets = map[Method]preset{
	Jafari:                {name: "Shia Ithna-Ashari (Jafari)", slug: "jafari", fajr: 16, isha: 14, maghrib: 4},
	Karachi:               {name: "University of Islamic Sciences, Karachi", slug: "karachi", fajr: 18, isha: 18, adjustments: Adjustments{Dhuhr: 1}},
	ISNA:                  {name: "Islamic Society of North America (ISNA)", slug: "isna", fajr: 15, isha: 15, adjustments: Adjustments{Dhuhr: 1}},
	MuslimWorldLeague:     {name: "Muslim World League (MWL)", slug: "mwl", fajr: 18, isha: 17, adjustments: Adjustments{Dhuhr: 1}},
	UmmAlQura:             {name: "Umm Al-Qura University, Makkah", slug: "umm-al-qura", fajr: 18.5, ishaInterval: 90},
	Egyptian:              {name: "Egyptian General Authority of Survey", slug: "egyptian", fajr: 19.5, isha: 17.5, adjustments: Adjustments{Dhuhr: 1}},
	Tehran:                {name: "Institute of Geophysics, University of Tehran", slug: "tehran", fajr: 17.7, isha: 14, maghrib: 4.5},
	Gulf:                  {name: "Gulf Region", slug: "gulf", fajr: 19.5, ishaInterval: 90},
	Kuwait:                {name: "Kuwait", slug: "kuwait", fajr: 18, isha: 17.5},
	Qatar:                 {name: "Qatar", slug: "qatar", fajr: 18, ishaInterval: 90},
	Singapore:             {name: "Majlis Ugama Islam Singapura (Singapore)", slug: "singapore", fajr: 20, isha: 18, adjustments: Adjustments{Dhuhr: 1}, rounding: RoundUp},
	France:                {name: "Union Organization Islamic de France", slug: "france", fajr: 12, isha: 12},
	Turkey:                {name: "Diyanet Isleri Baskanligi, Turkey", slug: "turkey", fajr: 18, isha: 17, adjustments: Adjustments{Sunrise: -7, Dhuhr: 5, Asr: 4, Maghrib: 7}},
	Russia:                {name: "Spiritual Administration of Muslims of Russia", slug: "russia", fajr: 16, isha: 15},
	MoonsightingCommittee: {name: "Moonsighting Committee Worldwide", slug: "moonsighting", fajr: 18, isha: 18, adjustments: Adjustments{Dhuhr: 5, Maghrib: 3}},
	Dubai:                 {name: "Dubai", slug: "dubai", fajr: 18.2, isha: 18.2, adjustments: Adjustments{Sunrise: -3, Dhuhr: 3, Asr: 3, Maghrib: 3}},
	JAKIM:                 {name: "JAKIM (Malaysia)", slug: "jakim", fajr: 20, isha: 18},
	Tunisia:               {name: "Tunisia", slug: "tunisia", fajr: 18, isha: 18},
	Algeria:               {name: "Algeria", slug: "algeria", fajr: 18, isha: 17},
	Kemenag:               {name: "KEMENAG (Indonesia)", slug: "kemenag", fajr: 20, isha: 18},
	Morocco:               {name: "Morocco", slug: "morocco", fajr: 19, isha: 17},
	Portugal:              {name: "Comunidade Islamica de Lisboa (Portugal)", slug: "portugal", fajr: 18, ishaInterval: 77},
	Jordan:                {name: "Ministry of Awqaf, Jordan", slug: "jordan", fajr: 18, isha: 18},
}

// Methods lists every supported method in ID order.
var Methods = []Method{
	Jafari, Karachi, ISNA, MuslimWorldLeague, UmmAlQura, Egyptian, Tehran, Gulf,
	Kuwait, Qatar, Singapore, France, Turkey, Russia, MoonsightingCommittee, Dubai,
	JAKIM, Tunisia, Algeria, Kemenag, Morocco, Portugal, Jordan,
}

// Valid reports whether m is a known preset.
func (m Method) Valid() bool {
	_, ok := presets[m]
	return ok
}

// String returns the descriptive name of the method.
func (m Method) String() string {
	if p, ok := presets[m]; ok {
		return p.name
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// Slug returns the short identifier accepted by ParseMethod.
func (m Method) Slug() string {
	if p, ok := presets[m]; ok {
		return p.slug
	}
	return strconv.Itoa(int(m))
}

// Parameters returns the preset parameters for m with default juristic and
// high-latitude settings.
func (m Method) Parameters() Parameters {
	p := presets[m]
	return Parameters{
		Method:            m,
		FajrAngle:         p.fajr,
		IshaAngle:         p.isha,
		IshaInterval:      p.ishaInterval,
		MaghribAngle:      p.maghrib,
		Madhab:            Shafi,
		HighLatitudeRule:  MiddleOfTheNight,
		PolarResolution:   NearestLatitude,
		Shafaq:            ShafaqGeneral,
		Rounding:          p.rounding,
		MethodAdjustments: p.adjustments,
	}
}

// ParseMethod accepts a numeric ID, a slug ("mwl", "moonsighting") or the
// method's full name, case-insensitively.
func ParseMethod(s string) (Method, error) {
	s = strings.TrimSpace(s)
	if id, err := strconv.Atoi(s); err == nil {
		m := Method(id)
		if !m.Valid() {
			return 0, fmt.Errorf("unknown calculation method %d", id)
		}
		return m, nil
	}

	for _, m := range Methods {
		p := presets[m]
		if strings.EqualFold(s, p.slug) || strings.EqualFold(s, p.name) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown calculation method %q; run 'prayer-times methods' for the list", s)
}

// Madhab selects the shadow length used for Asr.
type Madhab int

const (
	Shafi  Madhab = iota // shadow factor 1 (Shafi, Maliki, Hanbali)
	Hanafi               // shadow factor 2
)

// ShadowFactor returns the Asr shadow multiplier.
func (m Madhab) ShadowFactor() float64 {
	if m == Hanafi {
		return 2
	}
	return 1
}

func (m Madhab) String() string {
	if m == Hanafi {
		return "Hanafi"
	}
	return "Shafi"
}

// ParseMadhab accepts "0"/"1" (Al Adhan school IDs) or the school name.
func ParseMadhab(s string) (Madhab, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "shafi", "standard":
		return Shafi, nil
	case "1", "hanafi":
		return Hanafi, nil
	default:
		return 0, fmt.Errorf("invalid school %q: must be 0 (Shafi) or 1 (Hanafi)", s)
	}
}

// HighLatitudeRule bounds Fajr and Isha by a portion of the night when the
// twilight angle is never reached or lies too far from sunrise/sunset.
type HighLatitudeRule int

const (
	MiddleOfTheNight HighLatitudeRule = iota
	SeventhOfTheNight
	TwilightAngle
	NoHighLatitudeRule
)

var highLatitudeRuleNames = map[HighLatitudeRule]string{
	MiddleOfTheNight:   "middle-of-the-night",
	SeventhOfTheNight:  "seventh-of-the-night",
	TwilightAngle:      "twilight-angle",
	NoHighLatitudeRule: "none",
}

func (r HighLatitudeRule) String() string {
	if s, ok := highLatitudeRuleNames[r]; ok {
		return s
	}
	return fmt.Sprintf("HighLatitudeRule(%d)", int(r))
}

// ParseHighLatitudeRule parses the names printed by String.
func ParseHighLatitudeRule(s string) (HighLatitudeRule, error) {
	for r, name := range highLatitudeRuleNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("invalid high latitude rule %q: must be middle-of-the-night, seventh-of-the-night, twilight-angle or none", s)
}

// PolarResolution decides what happens on dates when the sun does not rise or set.
type PolarResolution int

const (
	// NearestLatitude computes the day at the closest latitude (in 0.5° steps
	// toward the equator) where the sun rises and sets.
	NearestLatitude PolarResolution = iota
	// NearestDay reuses the times of the closest date on which the sun rises and sets.
	NearestDay
	// Unresolved returns an *UnsolvableAngleError.
	Unresolved
)

var polarResolutionNames = map[PolarResolution]string{
	NearestLatitude: "nearest-latitude",
	NearestDay:      "nearest-day",
	Unresolved:      "unresolved",
}

func (r PolarResolution) String() string {
	if s, ok := polarResolutionNames[r]; ok {
		return s
	}
	return fmt.Sprintf("PolarResolution(%d)", int(r))
}

// ParsePolarResolution parses the names printed by String.
func ParsePolarResolution(s string) (PolarResolution, error) {
	for r, name := range polarResolutionNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("invalid polar resolution %q: must be nearest-latitude, nearest-day or unresolved", s)
}

// Shafaq selects the evening twilight table used by the Moonsighting Committee.
type Shafaq int

const (
	ShafaqGeneral Shafaq = iota
	ShafaqAhmer          // red twilight
	ShafaqAbyad          // white twilight
)

func (s Shafaq) String() string {
	switch s {
	case ShafaqAhmer:
		return "ahmer"
	case ShafaqAbyad:
		return "abyad"
	default:
		return "general"
	}
}

// ParseShafaq parses "general", "ahmer" or "abyad".
func ParseShafaq(s string) (Shafaq, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "general":
		return ShafaqGeneral, nil
	case "ahmer":
		return ShafaqAhmer, nil
	case "abyad":
		return ShafaqAbyad, nil
	default:
		return 0, fmt.Errorf("invalid shafaq %q: must be general, ahmer or abyad", s)
	}
}

// Rounding controls how computed instants are rounded.
type Rounding int

const (
	RoundNearest Rounding = iota // nearest minute
	RoundUp                      // next whole minute
	RoundNone                    // nearest second
)

// Adjustments are minute offsets added to each computed time.
type Adjustments struct {
	Fajr    int `json:"fajr,omitempty"`
	Sunrise int `json:"sunrise,omitempty"`
	Dhuhr   int `json:"dhuhr,omitempty"`
	Asr     int `json:"asr,omitempty"`
	Maghrib int `json:"maghrib,omitempty"`
	Isha    int `json:"isha,omitempty"`
}

// For returns the offset for p.
func (a Adjustments) For(p Prayer) int {
	switch p {
	case Fajr:
		return a.Fajr
	case Sunrise:
		return a.Sunrise
	case Dhuhr:
		return a.Dhuhr
	case Asr:
		return a.Asr
	case Maghrib:
		return a.Maghrib
	case Isha:
		return a.Isha
	default:
		return 0
	}
}

// set assigns the offset for p, reporting whether p carries one.
func (a *Adjustments) set(p Prayer, minutes int) bool {
	switch p {
	case Fajr:
		a.Fajr = minutes
	case Sunrise:
		a.Sunrise = minutes
	case Dhuhr:
		a.Dhuhr = minutes
	case Asr:
		a.Asr = minutes
	case Maghrib:
		a.Maghrib = minutes
	case Isha:
		a.Isha = minutes
	default:
		return false
	}
	return true
}

// String renders non-zero offsets as "fajr=2,isha=-1".
func (a Adjustments) String() string {
	var parts []string
	for _, p := range All {
		if v := a.For(p); v != 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", p.Key(), v))
		}
	}
	return strings.Join(parts, ",")
}

// ParseAdjustments parses the form printed by Adjustments.String. Offsets are
// limited to one hour either way.
func ParseAdjustments(s string) (Adjustments, error) {
	var a Adjustments
	if strings.TrimSpace(s) == "" {
		return a, nil
	}
	for _, part := range strings.Split(s, ",") {
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			return Adjustments{}, fmt.Errorf("invalid adjustment %q: want prayer=minutes", part)
		}
		p, err := ParsePrayer(name)
		if err != nil {
			return Adjustments{}, err
		}
		minutes, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || minutes < -60 || minutes > 60 {
			return Adjustments{}, fmt.Errorf("invalid adjustment for %s %q: must be minutes between -60 and 60", p, value)
		}
		a.set(p, minutes)
	}
	return a, nil
}

// Parameters fully describe how a schedule is computed.
type Parameters struct {
	Method       Method
	FajrAngle    float64 // degrees below the horizon
	IshaAngle    float64 // degrees below the horizon; ignored when IshaInterval > 0
	IshaInterval int     // minutes after Maghrib
	MaghribAngle float64 // degrees below the horizon; 0 means sunset

	Madhab           Madhab
	HighLatitudeRule HighLatitudeRule
	PolarResolution  PolarResolution
	Shafaq           Shafaq
	Rounding         Rounding

	MethodAdjustments Adjustments
	Adjustments       Adjustments
}

// DefaultParameters returns the parameters of DefaultMethod.
func DefaultParameters() Parameters {
	return DefaultMethod.Parameters()
}

// Validate reports whether the parameters can produce a schedule.
func (p Parameters) Validate() error {
	switch {
	case !p.Method.Valid():
		return fmt.Errorf("unknown calculation method %d", int(p.Method))
	case p.FajrAngle <= 0 || p.FajrAngle >= 30:
		return fmt.Errorf("invalid fajr angle %v: must be between 0 and 30 degrees", p.FajrAngle)
	case p.IshaInterval < 0 || p.IshaInterval > 240:
		return fmt.Errorf("invalid isha interval %d: must be between 0 and 240 minutes", p.IshaInterval)
	case p.IshaInterval == 0 && (p.IshaAngle <= 0 || p.IshaAngle >= 30):
		return fmt.Errorf("invalid isha angle %v: must be between 0 and 30 degrees", p.IshaAngle)
	case p.MaghribAngle < 0 || p.MaghribAngle >= 30:
		return fmt.Errorf("invalid maghrib angle %v: must be between 0 and 30 degrees", p.MaghribAngle)
	case p.Madhab != Shafi && p.Madhab != Hanafi:
		return fmt.Errorf("invalid madhab %d", int(p.Madhab))
	case p.HighLatitudeRule < MiddleOfTheNight || p.HighLatitudeRule > NoHighLatitudeRule:
		return fmt.Errorf("invalid high latitude rule %d", int(p.HighLatitudeRule))
	case p.PolarResolution < NearestLatitude || p.PolarResolution > Unresolved:
		return fmt.Errorf("invalid polar resolution %d", int(p.PolarResolution))
	}
	return nil
}

// nightPortions returns the fraction of the night bounding Fajr and Isha.
func (p Parameters) nightPortions() (fajr, isha float64) {
	switch p.HighLatitudeRule {
	case SeventhOfTheNight:
		return 1.0 / 7, 1.0 / 7
	case TwilightAngle:
		return p.FajrAngle / 60, p.IshaAngle / 60
	default:
		return 1.0 / 2, 1.0 / 2
	}
}
