package main

import (
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/alnah/go-mathdown/internal/config"
)

// envPrefix marks the environment variables read by mathdown.
const envPrefix = "MATHDOWN_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // MATHDOWN_CONFIG: config file name or path
	InputDir   string        // MATHDOWN_INPUT_DIR: default input directory
	OutputDir  string        // MATHDOWN_OUTPUT_DIR: default output directory
	Workers    int           // MATHDOWN_WORKERS: parallel workers
	Timeout    time.Duration // MATHDOWN_TIMEOUT: per-file rendering timeout
	NoMath     bool          // MATHDOWN_NO_MATH: disable math preservation
}

// knownEnvVars lists valid MATHDOWN_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MATHDOWN_CONFIG":     true,
	"MATHDOWN_INPUT_DIR":  true,
	"MATHDOWN_OUTPUT_DIR": true,
	"MATHDOWN_WORKERS":    true,
	"MATHDOWN_TIMEOUT":    true,
	"MATHDOWN_NO_MATH":    true,
}

// loadEnvConfig reads configuration from environment variables.
// Malformed numbers and durations are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath: getenv("MATHDOWN_CONFIG"),
		InputDir:   getenv("MATHDOWN_INPUT_DIR"),
		OutputDir:  getenv("MATHDOWN_OUTPUT_DIR"),
	}

	if timeout := getenv("MATHDOWN_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := getenv("MATHDOWN_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	if noMath := getenv("MATHDOWN_NO_MATH"); noMath != "" {
		if b, err := strconv.ParseBool(noMath); err == nil {
			cfg.NoMath = b
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized MATHDOWN_* variables.
// Helps catch typos like MATHDOWN_WORKER instead of MATHDOWN_WORKERS.
func warnUnknownEnvVars(logger *logrus.Logger, environ []string) {
	for _, env := range environ {
		if !strings.HasPrefix(env, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(env, "=")
		if !knownEnvVars[name] {
			logger.WithField("variable", name).Warn("unknown environment variable (typo?)")
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Only sets values if the env var is set AND the config value is empty/zero.
// This ensures: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.InputDir != "" && cfg.Input.DefaultDir == "" {
		cfg.Input.DefaultDir = env.InputDir
	}
	if env.OutputDir != "" && cfg.Output.DefaultDir == "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.NoMath {
		cfg.Render.NoMath = true
	}
}
