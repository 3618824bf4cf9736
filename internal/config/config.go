package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
)

// maxConfigFileBytes caps the size of a YAML config file.
const maxConfigFileBytes = 1 << 20

type Config struct {
	Port string `yaml:"port"`

	// Content cache written by `manview fetch`.
	CacheDir         string `yaml:"cacheDir"`
	MaxDocumentBytes int64  `yaml:"maxDocumentBytes"`
	WatchCache       bool   `yaml:"watchCache"`

	// Auth for the fetch endpoint. Empty disables it.
	APIKey string `yaml:"apiKey"`

	// Rendering
	Theme               string `yaml:"theme"`
	LightStyle          string `yaml:"lightStyle"`
	DarkStyle           string `yaml:"darkStyle"`
	DisambiguateAnchors bool   `yaml:"disambiguateAnchors"`

	// Active-section tracking
	ScrollOffset float64 `yaml:"scrollOffset"`

	// View state
	ViewTTL     time.Duration `yaml:"viewTTL"`
	StatsWindow time.Duration `yaml:"statsWindow"`
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		CacheDir:         envOr("MANVIEW_CACHE_DIR", defaultCacheDir()),
		MaxDocumentBytes: envInt64("MANVIEW_MAX_DOCUMENT_BYTES", 8<<20), // 8MB
		WatchCache:       envBool("MANVIEW_WATCH_CACHE", true),

		APIKey: os.Getenv("MANVIEW_API_KEY"),

		Theme:               envOr("MANVIEW_THEME", "light"),
		LightStyle:          envOr("MANVIEW_LIGHT_STYLE", "github"),
		DarkStyle:           envOr("MANVIEW_DARK_STYLE", "monokai"),
		DisambiguateAnchors: envBool("MANVIEW_DISAMBIGUATE_ANCHORS", false),

		ScrollOffset: envFloat("MANVIEW_SCROLL_OFFSET", 100),

		ViewTTL:     envDuration("MANVIEW_VIEW_TTL", 30*time.Minute),
		StatsWindow: envDuration("MANVIEW_STATS_WINDOW", 1*time.Hour),
	}
	cfg.applyDefaults()
	return cfg
}

// LoadFile overlays the YAML file at path onto cfg. Keys absent from the
// file keep their current values.
func (c *Config) LoadFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("config file: %w", err)
	}
	if info.Size() > maxConfigFileBytes {
		return fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := yaml.UnmarshalWithOptions(data, c, yaml.Strict()); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	c.applyDefaults()
	return nil
}

func (c *Config) applyDefaults() {
	if c.Port == "" {
		c.Port = "8090"
	}
	if c.CacheDir == "" {
		c.CacheDir = defaultCacheDir()
	}
	if c.MaxDocumentBytes <= 0 {
		c.MaxDocumentBytes = 8 << 20
	}
	if c.Theme == "" {
		c.Theme = "light"
	}
	if c.LightStyle == "" {
		c.LightStyle = "github"
	}
	if c.DarkStyle == "" {
		c.DarkStyle = "monokai"
	}
	if c.ScrollOffset < 0 {
		c.ScrollOffset = 100
	}
	if c.ViewTTL <= 0 {
		c.ViewTTL = 30 * time.Minute
	}
	if c.StatsWindow <= 0 {
		c.StatsWindow = 1 * time.Hour
	}
}

func (c Config) Validate() error {
	if c.CacheDir == "" {
		return errors.New("cache directory is required (set MANVIEW_CACHE_DIR)")
	}
	if c.Theme != "light" && c.Theme != "dark" {
		return fmt.Errorf("MANVIEW_THEME must be light or dark, got %q", c.Theme)
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", c.Port)
	}
	return nil
}

// defaultCacheDir is where `fetch` has always written pages.
func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "fetchman")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
