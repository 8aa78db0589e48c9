// Package config loads calculator defaults and service settings.
//
// Values are resolved in order: built-in defaults, an optional YAML file,
// then ABCALC_* environment variables. Command-line flags are applied on top
// by the cli package.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/eyupmaiden/sample-size-and-significance-calculators/internal/stats"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "ABCALC_"

type Config struct {
	Confidence stats.ConfidenceLevel `yaml:"confidence"`
	Power      stats.Power           `yaml:"power"`
	Variants   int                   `yaml:"variants"`
	DBPath     string                `yaml:"db"`
	Server     ServerConfig          `yaml:"server"`
	Log        LogConfig             `yaml:"log"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	Token          string   `yaml:"token"` // optional bearer token for /api
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Confidence: stats.DefaultConfidence,
		Power:      stats.DefaultPower,
		Variants:   2,
		DBPath:     "./abcalc.db",
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"*"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path (if non-empty) over the defaults and applies environment
// overrides. A missing file is an error; an empty path is not.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPrefix + "CONFIDENCE"); ok {
		level, err := stats.ParseConfidenceLevel(v)
		if err != nil {
			return fmt.Errorf("%sCONFIDENCE: %w", EnvPrefix, err)
		}
		c.Confidence = level
	}
	if v, ok := lookup(EnvPrefix + "POWER"); ok {
		power, err := stats.ParsePower(v)
		if err != nil {
			return fmt.Errorf("%sPOWER: %w", EnvPrefix, err)
		}
		c.Power = power
	}
	if v, ok := lookup(EnvPrefix + "VARIANTS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sVARIANTS: not a number: %q", EnvPrefix, v)
		}
		c.Variants = n
	}
	if v, ok := lookup(EnvPrefix + "DB_PATH"); ok && v != "" {
		c.DBPath = v
	}
	if v, ok := lookup(EnvPrefix + "PORT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sPORT: not a number: %q", EnvPrefix, v)
		}
		c.Server.Port = n
	}
	if v, ok := lookup(EnvPrefix + "TOKEN"); ok {
		c.Server.Token = v
	}
	if v, ok := lookup(EnvPrefix + "ALLOWED_ORIGINS"); ok && v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	if v, ok := lookup(EnvPrefix + "LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvPrefix + "LOG_FORMAT"); ok && v != "" {
		c.Log.Format = v
	}
	return nil
}

// Validate checks the settings that can't be fixed up by a fallback.
// Confidence and power outside the z tables are allowed; they use the
// documented 95%/80% constants.
func (c Config) Validate() error {
	var errs []error
	if c.Variants < 2 {
		errs = append(errs, fmt.Errorf("variants must be at least 2, got %d", c.Variants))
	}
	if c.Confidence <= 0 || c.Confidence >= 100 {
		errs = append(errs, fmt.Errorf("confidence must be between 0 and 100, got %d", c.Confidence))
	}
	if c.Power <= 0 || c.Power >= 100 {
		errs = append(errs, fmt.Errorf("power must be between 0 and 100, got %d", c.Power))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
