package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines archive and capture configuration.
type Config struct {
	DB      DBConfig      `yaml:"db"`
	Log     LogConfig     `yaml:"log"`
	Archive ArchiveConfig `yaml:"archive"`
	Capture CaptureConfig `yaml:"capture"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type ArchiveConfig struct {
	MaxClipMiB      int `yaml:"max_clip_mib"`
	MaxStoreMiB     int `yaml:"max_store_mib"`
	MaxClipAgeDays  int `yaml:"max_clip_age_days"`
	SweepIntervalMn int `yaml:"sweep_interval_minutes"`
}

type CaptureConfig struct {
	MaxSeconds  int      `yaml:"max_seconds"`
	BitrateHint int      `yaml:"bitrate_hint"`
	Formats     []string `yaml:"formats"`
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		DB: DBConfig{
			Path: "recital.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Archive: ArchiveConfig{
			MaxClipMiB:      5,
			MaxStoreMiB:     50,
			MaxClipAgeDays:  7,
			SweepIntervalMn: 60,
		},
		Capture: CaptureConfig{
			MaxSeconds:  300,
			BitrateHint: 64000,
		},
	}

	if path := os.Getenv("RECITAL_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if dbPath := os.Getenv("RECITAL_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("RECITAL_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if ageStr := os.Getenv("RECITAL_MAX_CLIP_AGE_DAYS"); ageStr != "" {
		days, err := strconv.Atoi(ageStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RECITAL_MAX_CLIP_AGE_DAYS: %w", err)
		}
		cfg.Archive.MaxClipAgeDays = days
	}
	if storeStr := os.Getenv("RECITAL_MAX_STORE_MIB"); storeStr != "" {
		mib, err := strconv.Atoi(storeStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RECITAL_MAX_STORE_MIB: %w", err)
		}
		cfg.Archive.MaxStoreMiB = mib
	}

	return cfg, nil
}

// MaxClipAge returns the age ceiling as a duration.
func (a ArchiveConfig) MaxClipAge() time.Duration {
	return time.Duration(a.MaxClipAgeDays) * 24 * time.Hour
}

// SweepInterval returns the expiry sweep cadence.
func (a ArchiveConfig) SweepInterval() time.Duration {
	return time.Duration(a.SweepIntervalMn) * time.Minute
}

// MaxDuration returns the capture deadline.
func (c CaptureConfig) MaxDuration() time.Duration {
	return time.Duration(c.MaxSeconds) * time.Second
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
