package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	DataDir  string `koanf:"data_dir"`  // overrides the XDG data location for the database
	CacheDir string `koanf:"cache_dir"` // overrides the XDG cache location for audio blobs

	Playback PlaybackConfig `koanf:"playback"`
	Speech   SpeechConfig   `koanf:"speech"`
	Log      LogConfig      `koanf:"log"`
}

// PlaybackConfig tunes the playback engine.
type PlaybackConfig struct {
	FetchTimeoutSeconds int `koanf:"fetch_timeout_seconds"` // voice endpoint pre-fetch timeout (default: 15)
	SkipGraceMs         int `koanf:"skip_grace_ms"`         // delay before auto-skipping a failed track (default: 500)
	FailureThreshold    int `koanf:"failure_threshold"`     // consecutive failures before the breaker trips (default: 3)
}

// SpeechConfig holds speech synthesis settings.
type SpeechConfig struct {
	Binary string `koanf:"binary"` // synthesis command (default: "espeak-ng")
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `koanf:"level"` // "debug", "info", "warn", "error" (default: "info")
	File  string `koanf:"file"`  // log file path; empty logs to stderr
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	configPaths := getConfigPaths()

	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.DataDir = expandPath(cfg.DataDir)
	cfg.CacheDir = expandPath(cfg.CacheDir)
	cfg.Log.File = expandPath(cfg.Log.File)

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/sutra/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "sutra", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetPlaybackConfig returns the playback configuration with defaults applied.
func (c *Config) GetPlaybackConfig() PlaybackConfig {
	cfg := c.Playback

	if cfg.FetchTimeoutSeconds <= 0 {
		cfg.FetchTimeoutSeconds = 15
	}
	if cfg.SkipGraceMs <= 0 {
		cfg.SkipGraceMs = 500
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}

	return cfg
}

// FetchTimeout returns the configured pre-fetch timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.GetPlaybackConfig().FetchTimeoutSeconds) * time.Second
}

// SkipGrace returns the configured auto-skip grace as a duration.
func (c *Config) SkipGrace() time.Duration {
	return time.Duration(c.GetPlaybackConfig().SkipGraceMs) * time.Millisecond
}

// SpeechBinary returns the synthesis command with the default applied.
func (c *Config) SpeechBinary() string {
	if c.Speech.Binary == "" {
		return "espeak-ng"
	}
	return c.Speech.Binary
}

// LogLevel returns the configured level with the default applied.
func (c *Config) LogLevel() string {
	if c.Log.Level == "" {
		return "info"
	}
	return c.Log.Level
}
