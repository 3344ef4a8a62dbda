package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/ramonehamilton/rugby-stats/internal/anomaly"
	"github.com/ramonehamilton/rugby-stats/internal/scoring"
	"github.com/ramonehamilton/rugby-stats/internal/storage"
)

// Config represents the application configuration.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Scoring  ScoringConfig  `toml:"scoring"`
	Anomaly  AnomalyConfig  `toml:"anomaly"`
	API      APIConfig      `toml:"api"`
	Log      LogConfig      `toml:"log"`
}

// DatabaseConfig contains storage settings.
type DatabaseConfig struct {
	Path        string `toml:"path"`         // SQLite file
	AutoMigrate bool   `toml:"auto_migrate"` // Apply migrations on open
}

// ScoringConfig contains score normalization and ranking defaults.
type ScoringConfig struct {
	StandardMatchDuration float64 `toml:"standard_match_duration"`
	MinMinutesFloor       float64 `toml:"min_minutes_floor"`
	MinMinutesForRanking  float64 `toml:"min_minutes_for_ranking"`
	DefaultRankingLimit   int     `toml:"default_ranking_limit"`
}

// AnomalyConfig contains alert thresholds in percent, per statistic tier.
type AnomalyConfig struct {
	RecentWindow        int     `toml:"recent_window"`
	InclusiveBoundary   bool    `toml:"inclusive_boundary"`
	ConsistentThreshold float64 `toml:"consistent_threshold"`
	ModerateThreshold   float64 `toml:"moderate_threshold"`
	VolatileThreshold   float64 `toml:"volatile_threshold"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port                int      `toml:"port"`
	RecalculateInterval string   `toml:"recalculate_interval"` // Minimum gap between recalculations (e.g., "10s")
	AllowedOrigins      []string `toml:"allowed_origins"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // text or json
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:        DefaultDBPath(),
			AutoMigrate: true,
		},
		Scoring: ScoringConfig{
			StandardMatchDuration: scoring.StandardMatchDuration,
			MinMinutesFloor:       scoring.MinMinutesFloor,
			MinMinutesForRanking:  20,
			DefaultRankingLimit:   20,
		},
		Anomaly: AnomalyConfig{
			RecentWindow:        5,
			InclusiveBoundary:   true,
			ConsistentThreshold: 25,
			ModerateThreshold:   30,
			VolatileThreshold:   50,
		},
		API: APIConfig{
			Port:                8080,
			RecalculateInterval: "10s",
			AllowedOrigins:      []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// configDir returns the per-user configuration directory.
func configDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".rugby-stats"), nil
}

// DefaultDBPath returns ~/.rugby-stats/rugby.db, or rugby.db in the working
// directory when there is no home directory.
func DefaultDBPath() string {
	dir, err := configDir()
	if err != nil {
		return "rugby.db"
	}
	return filepath.Join(dir, "rugby.db")
}

// DefaultPath returns the path of the configuration file.
func DefaultPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads the configuration from the default path.
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from path. A missing file yields the
// defaults; keys absent from the file keep their default values.
func LoadFrom(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	path, err := DefaultPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to path, creating its directory.
func (c *Config) SaveTo(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	if c.Scoring.StandardMatchDuration <= 0 {
		return fmt.Errorf("standard match duration must be positive: %v", c.Scoring.StandardMatchDuration)
	}
	if c.Scoring.MinMinutesFloor <= 0 {
		return fmt.Errorf("minimum minutes floor must be positive: %v", c.Scoring.MinMinutesFloor)
	}
	if c.Scoring.MinMinutesForRanking < 0 {
		return fmt.Errorf("ranking minimum minutes cannot be negative: %v", c.Scoring.MinMinutesForRanking)
	}
	if c.Scoring.DefaultRankingLimit < 1 {
		return fmt.Errorf("default ranking limit must be at least 1: %d", c.Scoring.DefaultRankingLimit)
	}

	if c.Anomaly.RecentWindow < 1 {
		return fmt.Errorf("recent window must be at least 1: %d", c.Anomaly.RecentWindow)
	}
	for name, v := range map[string]float64{
		"consistent": c.Anomaly.ConsistentThreshold,
		"moderate":   c.Anomaly.ModerateThreshold,
		"volatile":   c.Anomaly.VolatileThreshold,
	} {
		if v <= 0 {
			return fmt.Errorf("%s threshold must be positive: %v", name, v)
		}
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("invalid API port: %d", c.API.Port)
	}
	if _, err := time.ParseDuration(c.API.RecalculateInterval); err != nil {
		return fmt.Errorf("invalid recalculate interval %q: %w", c.API.RecalculateInterval, err)
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("invalid log format %q: want text or json", c.Log.Format)
	}
	return nil
}

// GetRecalculateInterval returns the recalculation rate limit as a duration.
func (c *Config) GetRecalculateInterval() (time.Duration, error) {
	return time.ParseDuration(c.API.RecalculateInterval)
}

// ScoringParams returns the engine parameters.
func (c *Config) ScoringParams() scoring.Params {
	return scoring.Params{
		StandardMatchDuration: c.Scoring.StandardMatchDuration,
		MinMinutesFloor:       c.Scoring.MinMinutesFloor,
	}
}

// DetectorConfig returns the anomaly detector configuration.
func (c *Config) DetectorConfig() anomaly.Config {
	return anomaly.Config{
		RecentWindow: c.Anomaly.RecentWindow,
		Thresholds: anomaly.Thresholds{
			Consistent: c.Anomaly.ConsistentThreshold,
			Moderate:   c.Anomaly.ModerateThreshold,
			Volatile:   c.Anomaly.VolatileThreshold,
		},
		InclusiveBoundary: c.Anomaly.InclusiveBoundary,
	}
}

// StorageConfig returns the database configuration.
func (c *Config) StorageConfig() *storage.Config {
	dbConfig := storage.DefaultConfig(c.Database.Path)
	dbConfig.AutoMigrate = c.Database.AutoMigrate
	return dbConfig
}

// ServiceConfig builds the storage service configuration, with calculators
// tuned by this configuration.
func (c *Config) ServiceConfig(logger *slog.Logger) storage.ServiceConfig {
	return storage.ServiceConfig{
		Engine:            scoring.NewEngine(c.ScoringParams(), logger),
		Detector:          anomaly.NewDetector(c.DetectorConfig()),
		Logger:            logger,
		RankingLimit:      c.Scoring.DefaultRankingLimit,
		RankingMinMinutes: c.Scoring.MinMinutesForRanking,
	}
}
