// Package config loads modplay settings from TOML files.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/llehouerou/modplay/internal/player"
)

const appName = "modplay"

// Defaults.
const (
	DefaultRate          = 44100
	DefaultInterpolation = player.DefaultInterpolation
	DefaultPauseMode     = "block"
	DefaultBufferMS      = 100
	DefaultLogLevel      = "warn"
)

var (
	ErrInvalidRate     = errors.New("sample rate out of range")
	ErrInvalidBuffer   = errors.New("buffer length out of range")
	ErrInvalidLogLevel = errors.New("invalid log level")
	ErrInvalidPause    = errors.New("invalid pause mode")
	ErrInvalidPlayer   = errors.New("unknown player")
	ErrInvalidInterp   = errors.New("unknown interpolation mode")
)

type Config struct {
	Rate          int    `koanf:"rate"`          // output sample rate in Hz
	Player        string `koanf:"player"`        // decoder to force; empty detects
	Interpolation string `koanf:"interpolation"` // linear, cubic, spline or sinc
	Shuffle       bool   `koanf:"shuffle"`
	Mute          string `koanf:"mute"` // channel list, e.g. "0,2-4"
	Solo          string `koanf:"solo"`
	PauseMode     string `koanf:"pause_mode"` // "block" or "silence"
	BufferMS      int    `koanf:"buffer_ms"`  // audio device buffer
	LogLevel      string `koanf:"log_level"`

	// Run the key reader even when stdin is not a terminal.
	ForceInput bool `koanf:"force_input"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Rate:          DefaultRate,
		Interpolation: DefaultInterpolation,
		PauseMode:     DefaultPauseMode,
		BufferMS:      DefaultBufferMS,
		LogLevel:      DefaultLogLevel,
	}
}

// Load reads the user and local config files, then extra if not empty.
// Missing user or local files are skipped; a missing extra file is an error.
func Load(extra string) (*Config, error) {
	paths := getConfigPaths()
	if extra != "" {
		if _, err := os.Stat(extra); err != nil {
			return nil, err
		}
		paths = append(paths, expandPath(extra))
	}
	return load(paths)
}

func load(paths []string) (*Config, error) {
	k := koanf.New(".")

	// Last wins
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	return cfg, nil
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/modplay/config.toml
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		// 2. ./modplay.toml (pwd, highest priority)
		appName + ".toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

func (c *Config) normalize() {
	c.Player = strings.ToLower(strings.TrimSpace(c.Player))
	c.Interpolation = strings.ToLower(strings.TrimSpace(c.Interpolation))
	c.PauseMode = strings.ToLower(strings.TrimSpace(c.PauseMode))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.Interpolation == "" {
		c.Interpolation = DefaultInterpolation
	}
	if c.PauseMode == "" {
		c.PauseMode = DefaultPauseMode
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	c.normalize()
	if c.Rate < 8000 || c.Rate > 192000 {
		return fmt.Errorf("%w: %d", ErrInvalidRate, c.Rate)
	}
	if c.BufferMS < 10 || c.BufferMS > 2000 {
		return fmt.Errorf("%w: %d ms", ErrInvalidBuffer, c.BufferMS)
	}
	if c.PauseMode != "block" && c.PauseMode != "silence" {
		return fmt.Errorf("%w: %q", ErrInvalidPause, c.PauseMode)
	}
	if c.Player != "" && c.Player != "auto" && !slices.Contains(player.Players(), c.Player) {
		return fmt.Errorf("%w %q (want one of %s)", ErrInvalidPlayer, c.Player, strings.Join(player.Players(), ", "))
	}
	if !slices.Contains(player.Interpolations(), c.Interpolation) {
		return fmt.Errorf("%w %q (want one of %s)", ErrInvalidInterp, c.Interpolation, strings.Join(player.Interpolations(), ", "))
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// Buffer returns the audio buffer length.
func (c *Config) Buffer() time.Duration {
	return time.Duration(c.BufferMS) * time.Millisecond
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelWarn, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	return level, nil
}
