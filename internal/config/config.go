// Package config loads clut settings from a YAML file, a .env file and
// CLUT_* environment variables, in increasing order of precedence.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/clut/internal/logging"
	"github.com/cwbudde/clut/internal/query"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CLUT_"

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds every setting.
type Config struct {
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
	// ExtraBuildFlags are appended to the default build options. nil means
	// none; an empty string still adds the separating space.
	ExtraBuildFlags  *string `yaml:"extra_build_flags"`
	NormalizedImages bool    `yaml:"normalized_images"`
	MaxQueryBytes    int     `yaml:"max_query_bytes"`
	ReportDir        string  `yaml:"report_dir"`
	Color            string  `yaml:"color"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel:      "info",
		MaxQueryBytes: query.DefaultMaxValueSize,
		ReportDir:     "./data",
		Color:         ColorAuto,
	}
}

// Load reads path (optional, may be empty) and .env from the working
// directory, then applies environment overrides.
func Load(path string) (*Config, error) {
	return load(path, ".env", os.LookupEnv)
}

func load(path, envFile string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read config")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse %s", path)
		}
	}

	dotenv := map[string]string{}
	if envFile != "" {
		m, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			dotenv = m
		case !os.IsNotExist(errors.Cause(err)):
			return nil, errors.Wrapf(err, "read %s", envFile)
		}
	}
	env := func(key string) (string, bool) {
		if v, ok := lookup(EnvPrefix + key); ok {
			return v, true
		}
		v, ok := dotenv[EnvPrefix+key]
		return v, ok
	}

	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(env func(string) (string, bool)) error {
	if v, ok := env("LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := env("LOG_FILE"); ok {
		c.LogFile = v
	}
	if v, ok := env("EXTRA_BUILD_FLAGS"); ok {
		c.ExtraBuildFlags = &v
	}
	if v, ok := env("NORMALIZED_IMAGES"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrapf(err, "%sNORMALIZED_IMAGES", EnvPrefix)
		}
		c.NormalizedImages = b
	}
	if v, ok := env("MAX_QUERY_BYTES"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrapf(err, "%sMAX_QUERY_BYTES", EnvPrefix)
		}
		c.MaxQueryBytes = n
	}
	if v, ok := env("REPORT_DIR"); ok {
		c.ReportDir = v
	}
	if v, ok := env("COLOR"); ok {
		c.Color = v
	}
	return nil
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.MaxQueryBytes <= 0 {
		return errors.Errorf("max_query_bytes must be positive, got %d", c.MaxQueryBytes)
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return errors.Errorf("color must be auto, always or never, got %q", c.Color)
	}
	if c.ReportDir == "" {
		return errors.New("report_dir cannot be empty")
	}
	return nil
}

// Apply installs the process-wide limits of c.
func (c *Config) Apply() {
	query.MaxValueSize = c.MaxQueryBytes
}
