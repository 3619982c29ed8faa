// Package cache stores lookups that are slow or rate-limited upstream: the
// IP-detected location and reverse-geocoded place names. Prayer times are
// never cached; they are recomputed locally on every run.
package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/smokyabdulrahman/salat/internal/geo"
)

const (
	placeCacheFile = "place_%s.json" // keyed by hash of the rounded coordinates
	geoCacheFile   = "geolocation.json"
	geoTTL         = 24 * time.Hour
	placeTTL       = 30 * 24 * time.Hour
)

// Cache provides file-based caching for location data.
type Cache struct {
	dir string
	now func() time.Time
}

// GeoCacheEntry stores a cached geolocation result with a timestamp.
type GeoCacheEntry struct {
	Location geo.Location `json:"location"`
	CachedAt time.Time    `json:"cached_at"`
}

// PlaceCacheEntry stores a reverse-geocoded name for a coordinate.
type PlaceCacheEntry struct {
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lon"`
	Place     geo.Place `json:"place"`
	CachedAt  time.Time `json:"cached_at"`
}

// New creates a Cache rooted at the given directory.
// If dir is empty, it defaults to ~/.cache/prayer-times/.
func New(dir string) (*Cache, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".cache", "prayer-times")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create cache directory %s: %w", dir, err)
	}

	return &Cache{dir: dir, now: time.Now}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// placeKey hashes coordinates rounded to about a kilometre, so that small GPS
// jitter reuses the same entry.
func placeKey(lat, lon float64) string {
	raw := fmt.Sprintf("%.2f|%.2f", lat, lon)
	h := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%x", h[:8]) // 16 hex chars is plenty for uniqueness
}

// LoadPlace returns the cached place name near lat/lon, or nil if missing or expired.
func (c *Cache) LoadPlace(lat, lon float64) *geo.Place {
	var entry PlaceCacheEntry
	if !c.read(fmt.Sprintf(placeCacheFile, placeKey(lat, lon)), &entry) {
		return nil
	}
	if c.now().Sub(entry.CachedAt) > placeTTL {
		return nil
	}
	return &entry.Place
}

// SavePlace stores a place name for lat/lon.
func (c *Cache) SavePlace(lat, lon float64, p geo.Place) error {
	entry := PlaceCacheEntry{Latitude: lat, Longitude: lon, Place: p, CachedAt: c.now()}
	if err := c.write(fmt.Sprintf(placeCacheFile, placeKey(lat, lon)), entry); err != nil {
		return fmt.Errorf("failed to write place cache: %w", err)
	}
	return nil
}

// LoadGeo attempts to read a cached geolocation result.
// Returns nil if the cache is missing or older than the TTL (24 hours).
func (c *Cache) LoadGeo() *geo.Location {
	var entry GeoCacheEntry
	if !c.read(geoCacheFile, &entry) {
		return nil
	}
	if c.now().Sub(entry.CachedAt) > geoTTL {
		return nil
	}
	return &entry.Location
}

// SaveGeo writes a geolocation result to the cache.
func (c *Cache) SaveGeo(loc *geo.Location) error {
	entry := GeoCacheEntry{Location: *loc, CachedAt: c.now()}
	if err := c.write(geoCacheFile, entry); err != nil {
		return fmt.Errorf("failed to write geo cache: %w", err)
	}
	return nil
}

// Clear removes every cache file.
func (c *Cache) Clear() error {
	matches, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", m, err)
		}
	}
	return nil
}

func (c *Cache) read(name string, v any) bool {
	data, err := os.ReadFile(filepath.Join(c.dir, name))
	if err != nil {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

func (c *Cache) write(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, name), data, 0o644)
}
