// Package config loads CLI settings from .env files and PROVMAP_*
// environment variables. Command-line flags override the result.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ErrInvalid is returned when a variable cannot be parsed.
var ErrInvalid = errors.New("config: invalid value")

// Environment variables read by FromEnv.
const (
	EnvInput        = "PROVMAP_INPUT"
	EnvOutputDir    = "PROVMAP_OUTPUT_DIR"
	EnvStageOutput  = "PROVMAP_STAGE_OUTPUT"
	EnvMinShapeSize = "PROVMAP_MIN_SHAPE_SIZE"
	EnvCompress     = "PROVMAP_COMPRESS"
	EnvMetricsFile  = "PROVMAP_METRICS_FILE"
	EnvWorkers      = "PROVMAP_WORKERS"
	EnvLogLevel     = "PROVMAP_LOG_LEVEL"
	EnvLogFormat    = "PROVMAP_LOG_FORMAT"
	EnvLogFile      = "PROVMAP_LOG_FILE"
)

// Config holds the CLI settings.
type Config struct {
	Input        string
	OutputDir    string
	StageOutput  bool
	MinShapeSize int
	Compress     bool
	MetricsFile  string
	Workers      int

	LogLevel  slog.Level
	LogFormat string // "text" or "json"
	LogFile   string
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		OutputDir:    ".",
		MinShapeSize: 8,
		LogLevel:     slog.LevelInfo,
		LogFormat:    "text",
	}
}

// Load reads the given .env files (missing files are skipped; variables
// already set win) and then the environment.
func Load(files ...string) (Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: %s: %w", f, err)
		}
	}

	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, starting at Default.
func FromEnv(getenv func(string) string) (Config, error) {
	c := Default()
	var errs []error

	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %s=%q", ErrInvalid, key, v))
				return
			}
			*dst = b
		}
	}
	integer := func(key string, dst *int) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				errs = append(errs, fmt.Errorf("%w: %s=%q", ErrInvalid, key, v))
				return
			}
			*dst = n
		}
	}

	str(EnvInput, &c.Input)
	str(EnvOutputDir, &c.OutputDir)
	boolean(EnvStageOutput, &c.StageOutput)
	integer(EnvMinShapeSize, &c.MinShapeSize)
	boolean(EnvCompress, &c.Compress)
	str(EnvMetricsFile, &c.MetricsFile)
	integer(EnvWorkers, &c.Workers)
	str(EnvLogFile, &c.LogFile)

	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		if err := c.LogLevel.UnmarshalText([]byte(v)); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s=%q", ErrInvalid, EnvLogLevel, v))
		}
	}
	if v := strings.ToLower(strings.TrimSpace(getenv(EnvLogFormat))); v != "" {
		if v != "text" && v != "json" {
			errs = append(errs, fmt.Errorf("%w: %s=%q", ErrInvalid, EnvLogFormat, v))
		} else {
			c.LogFormat = v
		}
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}

	return c, nil
}
