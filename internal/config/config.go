// Package config provides persistent configuration for the prayer-times CLI.
//
// Configuration is stored as JSON at ~/.config/prayer-times/config.json
// (XDG-compliant). Environment variables named PRAYER_TIMES_<KEY>, optionally
// loaded from a .env file, override the file. The merge priority is:
// CLI flags > environment > config file > defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/smokyabdulrahman/salat/internal/prayer"
	"github.com/smokyabdulrahman/salat/internal/solar"
)

const (
	configDirName  = "prayer-times"
	configFileName = "config.json"

	// EnvPrefix prefixes the upper-cased config key in environment overrides,
	// e.g. PRAYER_TIMES_METHOD.
	EnvPrefix = "PRAYER_TIMES_"

	// DefaultNotifyLead is how long before a prayer reminders fire.
	DefaultNotifyLead = 15 * time.Minute
	// DefaultListen is the address `serve` binds when none is configured.
	DefaultListen = "127.0.0.1:8080"
)

// ValidKeys lists all config keys that can be set via `config set`.
var ValidKeys = []string{
	"city", "country",
	"latitude", "longitude", "elevation", "timezone",
	"method", "school",
	"fajr_angle", "isha_angle", "isha_interval",
	"high_lat_rule", "polar_resolution", "shafaq",
	"adjustments", "hijri_adjust",
	"time_format", "format",
	"prayers",
	"cache_dir",
	"notify_lead", "mqtt_broker", "mqtt_topic",
	"listen",
}

// Config holds all user-configurable settings.
// Zero values mean "not set" (use defaults or auto-detect).
type Config struct {
	City      string   `json:"city,omitempty"`
	Country   string   `json:"country,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`  // pointer so the equator is distinguishable from "not set"
	Longitude *float64 `json:"longitude,omitempty"` // pointer so the prime meridian is distinguishable from "not set"
	Elevation float64  `json:"elevation,omitempty"`
	Timezone  string   `json:"timezone,omitempty"` // IANA name; empty means the system zone

	Method          *int                `json:"method,omitempty"` // pointer so we can distinguish "not set" from 0
	School          *int                `json:"school,omitempty"` // pointer so we can distinguish "not set" from 0
	FajrAngle       *float64            `json:"fajr_angle,omitempty"`
	IshaAngle       *float64            `json:"isha_angle,omitempty"`
	IshaInterval    *int                `json:"isha_interval,omitempty"`
	HighLatRule     string              `json:"high_lat_rule,omitempty"`
	PolarResolution string              `json:"polar_resolution,omitempty"`
	Shafaq          string              `json:"shafaq,omitempty"`
	Adjustments     *prayer.Adjustments `json:"adjustments,omitempty"`
	HijriAdjust     int                 `json:"hijri_adjust,omitempty"`

	TimeFormat string `json:"time_format,omitempty"` // "12h" or "24h"
	Format     string `json:"format,omitempty"`      // status-line format or template
	Prayers    string `json:"prayers,omitempty"`     // comma-separated list
	CacheDir   string `json:"cache_dir,omitempty"`

	NotifyLead *int   `json:"notify_lead,omitempty"` // minutes
	MQTTBroker string `json:"mqtt_broker,omitempty"`
	MQTTTopic  string `json:"mqtt_topic,omitempty"`
	Listen     string `json:"listen,omitempty"`
}

// Defaults returns a Config with all default values applied.
func Defaults() Config {
	method := int(prayer.DefaultMethod)
	school := int(prayer.Shafi)
	lead := int(DefaultNotifyLead / time.Minute)
	return Config{
		Method:          &method,
		School:          &school,
		HighLatRule:     prayer.MiddleOfTheNight.String(),
		PolarResolution: prayer.NearestLatitude.String(),
		Shafaq:          prayer.ShafaqGeneral.String(),
		TimeFormat:      "24h",
		Format:          prayer.FormatNameAndTime,
		NotifyLead:      &lead,
		MQTTTopic:       "prayer-times",
		Listen:          DefaultListen,
	}
}

// Dir returns the config directory path.
// It respects $XDG_CONFIG_HOME if set, otherwise uses ~/.config/.
func Dir() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, configDirName), nil
}

// Path returns the full path to the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load reads the config file from disk.
// If the file does not exist, it returns an empty Config (not an error).
// If the file exists but is invalid JSON, it returns an error.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	return LoadFrom(path)
}

// LoadFrom reads the config from a specific file path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Config{}
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadEnv reads KEY=value files into the process environment. Variables that
// are already set win, and missing files are skipped. With no arguments it
// reads ./.env.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}
	return nil
}

// EnvName returns the environment variable that overrides key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(key)
}

// ApplyEnv overrides settings from PRAYER_TIMES_* environment variables.
// Values are validated exactly as `config set` validates them.
func (c *Config) ApplyEnv() error {
	for _, key := range ValidKeys {
		value, ok := os.LookupEnv(EnvName(key))
		if !ok {
			continue
		}
		if err := c.Set(key, value); err != nil {
			return fmt.Errorf("%s: %w", EnvName(key), err)
		}
	}
	return nil
}

// Save writes the config to disk, creating the directory if needed.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}

	return c.SaveTo(path)
}

// SaveTo writes the config to a specific file path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Reset deletes the config file.
func Reset() error {
	path, err := Path()
	if err != nil {
		return err
	}

	return ResetAt(path)
}

// ResetAt deletes the config file at a specific path.
func ResetAt(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete config file: %w", err)
	}
	return nil
}

// Set sets a config key to the given value.
// It validates the key name and parses the value into the correct type.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)

	switch key {
	case "city":
		c.City = value
	case "country":
		c.Country = value
	case "latitude":
		v, err := parseFloatIn(value, -90, 90)
		if err != nil {
			return fmt.Errorf("invalid latitude %q: %w", value, err)
		}
		c.Latitude = &v
	case "longitude":
		v, err := parseFloatIn(value, -180, 180)
		if err != nil {
			return fmt.Errorf("invalid longitude %q: %w", value, err)
		}
		c.Longitude = &v
	case "elevation":
		v, err := parseFloatIn(value, 0, 9000)
		if err != nil {
			return fmt.Errorf("invalid elevation %q: %w", value, err)
		}
		c.Elevation = v
	case "timezone":
		if value != "" {
			if _, err := time.LoadLocation(value); err != nil {
				return fmt.Errorf("invalid timezone %q: %w", value, err)
			}
		}
		c.Timezone = value
	case "method":
		m, err := prayer.ParseMethod(value)
		if err != nil {
			return err
		}
		v := int(m)
		c.Method = &v
	case "school":
		m, err := prayer.ParseMadhab(value)
		if err != nil {
			return err
		}
		v := int(m)
		c.School = &v
	case "fajr_angle":
		v, err := parseAngle(value)
		if err != nil {
			return fmt.Errorf("invalid fajr_angle %q: %w", value, err)
		}
		c.FajrAngle = &v
	case "isha_angle":
		v, err := parseAngle(value)
		if err != nil {
			return fmt.Errorf("invalid isha_angle %q: %w", value, err)
		}
		c.IshaAngle = &v
	case "isha_interval":
		v, err := strconv.Atoi(value)
		if err != nil || v < 0 || v > 240 {
			return fmt.Errorf("invalid isha_interval %q: must be minutes between 0 and 240", value)
		}
		c.IshaInterval = &v
	case "high_lat_rule":
		r, err := prayer.ParseHighLatitudeRule(value)
		if err != nil {
			return err
		}
		c.HighLatRule = r.String()
	case "polar_resolution":
		r, err := prayer.ParsePolarResolution(value)
		if err != nil {
			return err
		}
		c.PolarResolution = r.String()
	case "shafaq":
		s, err := prayer.ParseShafaq(value)
		if err != nil {
			return err
		}
		c.Shafaq = s.String()
	case "adjustments":
		a, err := prayer.ParseAdjustments(value)
		if err != nil {
			return err
		}
		c.Adjustments = &a
	case "hijri_adjust":
		v, err := strconv.Atoi(value)
		if err != nil || v < -2 || v > 2 {
			return fmt.Errorf("invalid hijri_adjust %q: must be a day offset between -2 and 2", value)
		}
		c.HijriAdjust = v
	case "time_format":
		if value != "12h" && value != "24h" {
			return fmt.Errorf("invalid time_format %q: must be \"12h\" or \"24h\"", value)
		}
		c.TimeFormat = value
	case "format":
		if err := prayer.ValidateFormat(value); err != nil {
			return err
		}
		c.Format = value
	case "prayers":
		if _, err := prayer.ParseList(value); err != nil {
			return fmt.Errorf("invalid prayers list: %w", err)
		}
		c.Prayers = value
	case "cache_dir":
		c.CacheDir = value
	case "notify_lead":
		v, err := strconv.Atoi(value)
		if err != nil || v < 0 || v > 180 {
			return fmt.Errorf("invalid notify_lead %q: must be minutes between 0 and 180", value)
		}
		c.NotifyLead = &v
	case "mqtt_broker":
		if value != "" && !strings.Contains(value, "://") {
			return fmt.Errorf("invalid mqtt_broker %q: must be a URL such as tcp://localhost:1883", value)
		}
		c.MQTTBroker = value
	case "mqtt_topic":
		c.MQTTTopic = strings.Trim(value, "/")
	case "listen":
		c.Listen = value
	default:
		return fmt.Errorf("unknown config key %q; valid keys: %s", key, strings.Join(ValidKeys, ", "))
	}

	return nil
}

// Unset clears key so that its default applies again.
func (c *Config) Unset(key string) error {
	switch key {
	case "city":
		c.City = ""
	case "country":
		c.Country = ""
	case "latitude":
		c.Latitude = nil
	case "longitude":
		c.Longitude = nil
	case "elevation":
		c.Elevation = 0
	case "timezone":
		c.Timezone = ""
	case "method":
		c.Method = nil
	case "school":
		c.School = nil
	case "fajr_angle":
		c.FajrAngle = nil
	case "isha_angle":
		c.IshaAngle = nil
	case "isha_interval":
		c.IshaInterval = nil
	case "high_lat_rule":
		c.HighLatRule = ""
	case "polar_resolution":
		c.PolarResolution = ""
	case "shafaq":
		c.Shafaq = ""
	case "adjustments":
		c.Adjustments = nil
	case "hijri_adjust":
		c.HijriAdjust = 0
	case "time_format":
		c.TimeFormat = ""
	case "format":
		c.Format = ""
	case "prayers":
		c.Prayers = ""
	case "cache_dir":
		c.CacheDir = ""
	case "notify_lead":
		c.NotifyLead = nil
	case "mqtt_broker":
		c.MQTTBroker = ""
	case "mqtt_topic":
		c.MQTTTopic = ""
	case "listen":
		c.Listen = ""
	default:
		return fmt.Errorf("unknown config key %q; valid keys: %s", key, strings.Join(ValidKeys, ", "))
	}
	return nil
}

// Get returns the string value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "city":
		return c.City, nil
	case "country":
		return c.Country, nil
	case "latitude":
		return formatFloatPtr(c.Latitude), nil
	case "longitude":
		return formatFloatPtr(c.Longitude), nil
	case "elevation":
		if c.Elevation == 0 {
			return "", nil
		}
		return strconv.FormatFloat(c.Elevation, 'f', -1, 64), nil
	case "timezone":
		return c.Timezone, nil
	case "method":
		if c.Method == nil {
			return "", nil
		}
		return strconv.Itoa(*c.Method), nil
	case "school":
		if c.School == nil {
			return "", nil
		}
		return strconv.Itoa(*c.School), nil
	case "fajr_angle":
		return formatFloatPtr(c.FajrAngle), nil
	case "isha_angle":
		return formatFloatPtr(c.IshaAngle), nil
	case "isha_interval":
		return formatIntPtr(c.IshaInterval), nil
	case "high_lat_rule":
		return c.HighLatRule, nil
	case "polar_resolution":
		return c.PolarResolution, nil
	case "shafaq":
		return c.Shafaq, nil
	case "adjustments":
		if c.Adjustments == nil {
			return "", nil
		}
		return c.Adjustments.String(), nil
	case "hijri_adjust":
		if c.HijriAdjust == 0 {
			return "", nil
		}
		return strconv.Itoa(c.HijriAdjust), nil
	case "time_format":
		return c.TimeFormat, nil
	case "format":
		return c.Format, nil
	case "prayers":
		return c.Prayers, nil
	case "cache_dir":
		return c.CacheDir, nil
	case "notify_lead":
		return formatIntPtr(c.NotifyLead), nil
	case "mqtt_broker":
		return c.MQTTBroker, nil
	case "mqtt_topic":
		return c.MQTTTopic, nil
	case "listen":
		return c.Listen, nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}

// Coordinates returns the configured position, and false unless both
// latitude and longitude are set.
func (c *Config) Coordinates() (solar.Coordinates, bool) {
	if c.Latitude == nil || c.Longitude == nil {
		return solar.Coordinates{}, false
	}
	return solar.Coordinates{Latitude: *c.Latitude, Longitude: *c.Longitude, Elevation: c.Elevation}, true
}

// Location returns the configured time zone, falling back to time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Parameters builds calculation parameters: the configured method's preset,
// then every explicit override on top of it.
func (c *Config) Parameters() (prayer.Parameters, error) {
	m := prayer.Method(c.MethodOrDefault(int(prayer.DefaultMethod)))
	if !m.Valid() {
		return prayer.Parameters{}, fmt.Errorf("unknown calculation method %d", int(m))
	}
	p := m.Parameters()
	p.Madhab = prayer.Madhab(c.SchoolOrDefault(int(prayer.Shafi)))

	if c.FajrAngle != nil {
		p.FajrAngle = *c.FajrAngle
	}
	if c.IshaAngle != nil {
		p.IshaAngle = *c.IshaAngle
		p.IshaInterval = 0
	}
	if c.IshaInterval != nil {
		p.IshaInterval = *c.IshaInterval
	}

	var err error
	if c.HighLatRule != "" {
		if p.HighLatitudeRule, err = prayer.ParseHighLatitudeRule(c.HighLatRule); err != nil {
			return prayer.Parameters{}, err
		}
	}
	if c.PolarResolution != "" {
		if p.PolarResolution, err = prayer.ParsePolarResolution(c.PolarResolution); err != nil {
			return prayer.Parameters{}, err
		}
	}
	if c.Shafaq != "" {
		if p.Shafaq, err = prayer.ParseShafaq(c.Shafaq); err != nil {
			return prayer.Parameters{}, err
		}
	}
	if c.Adjustments != nil {
		p.Adjustments = *c.Adjustments
	}

	if err := p.Validate(); err != nil {
		return prayer.Parameters{}, fmt.Errorf("invalid calculation settings: %w", err)
	}
	return p, nil
}

// MethodOrDefault returns the method value, falling back to the given default.
func (c *Config) MethodOrDefault(def int) int {
	if c.Method != nil {
		return *c.Method
	}
	return def
}

// SchoolOrDefault returns the school value, falling back to the given default.
func (c *Config) SchoolOrDefault(def int) int {
	if c.School != nil {
		return *c.School
	}
	return def
}

// NotifyLeadOrDefault returns the reminder lead time.
func (c *Config) NotifyLeadOrDefault() time.Duration {
	if c.NotifyLead != nil {
		return time.Duration(*c.NotifyLead) * time.Minute
	}
	return DefaultNotifyLead
}

// ListenOrDefault returns the HTTP listen address.
func (c *Config) ListenOrDefault() string {
	if c.Listen != "" {
		return c.Listen
	}
	return DefaultListen
}

func parseFloatIn(s string, lo, hi float64) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New("must be a number")
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("must be between %v and %v", lo, hi)
	}
	return v, nil
}

func parseAngle(s string) (float64, error) {
	v, err := parseFloatIn(s, 0, 30)
	if err != nil {
		return 0, err
	}
	if v == 0 || v == 30 {
		return 0, errors.New("must be between 0 and 30 degrees, exclusive")
	}
	return v, nil
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
