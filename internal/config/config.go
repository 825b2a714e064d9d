// Package config loads mathdown YAML configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/alnah/go-mathdown/internal/fileutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidTOCDepth = errors.New("invalid TOC depth")
)

// MaxInputSize limits config files to prevent memory exhaustion.
const MaxInputSize = 1 << 20

// Field length limits.
const (
	MaxPathLength  = 4096 // PATH_MAX on Linux
	MaxURLLength   = 2048 // Browser limit
	MaxTitleLength = 200  // Document <title>
)

// AppDir is the directory name under the user config directory.
const AppDir = "go-mathdown"

// Config holds all configuration for document rendering.
type Config struct {
	Input  InputConfig  `yaml:"input"`
	Output OutputConfig `yaml:"output"`
	Render RenderConfig `yaml:"render"`
	TOC    TOCConfig    `yaml:"toc"`
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default input directory (empty = must specify)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = same as source)
}

// RenderConfig selects rendering features. Zero values match the library
// defaults, so math preservation is opted out of rather than into.
type RenderConfig struct {
	NoMath       bool   `yaml:"noMath"`
	MathJaxURL   string `yaml:"mathJaxURL"` // Empty = library default
	Title        string `yaml:"title"`      // Empty = first H1, then file name
	Smart        bool   `yaml:"smart"`
	FilterHTML   bool   `yaml:"filterHTML"`
	FilterStyles bool   `yaml:"filterStyles"`
	NoImage      bool   `yaml:"noImage"`
	NoLinks      bool   `yaml:"noLinks"`
	NoTables     bool   `yaml:"noTables"`
	Autolink     bool   `yaml:"autolink"`
	Safelink     bool   `yaml:"safelink"`
	Highlight    bool   `yaml:"highlight"`
	HardWraps    bool   `yaml:"hardWraps"`
}

// TOCConfig defines table of contents options.
type TOCConfig struct {
	Enabled  bool `yaml:"enabled"`
	MinDepth int  `yaml:"minDepth"` // 1-6, default 1
	MaxDepth int  `yaml:"maxDepth"` // 1-6, default 6
}

// Validate checks field lengths and ranges.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("input.defaultDir", c.Input.DefaultDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("render.mathJaxURL", c.Render.MathJaxURL, MaxURLLength); err != nil {
		return err
	}
	if err := validateFieldLength("render.title", c.Render.Title, MaxTitleLength); err != nil {
		return err
	}

	if err := validateDepth("toc.minDepth", c.TOC.MinDepth); err != nil {
		return err
	}
	if err := validateDepth("toc.maxDepth", c.TOC.MaxDepth); err != nil {
		return err
	}
	if c.TOC.MinDepth != 0 && c.TOC.MaxDepth != 0 && c.TOC.MinDepth > c.TOC.MaxDepth {
		return fmt.Errorf("%w: toc.minDepth %d is greater than toc.maxDepth %d", ErrInvalidTOCDepth, c.TOC.MinDepth, c.TOC.MaxDepth)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// validateDepth accepts 0 (unset) or a heading level.
func validateDepth(fieldName string, depth int) error {
	if depth != 0 && (depth < 1 || depth > 6) {
		return fmt.Errorf("%w: %s must be between 1 and 6, got %d", ErrInvalidTOCDepth, fieldName, depth)
	}
	return nil
}

// DefaultConfig returns a neutral configuration: math preserved, every
// other feature disabled.
func DefaultConfig() *Config {
	return &Config{
		Input:  InputConfig{DefaultDir: ""},
		Output: OutputConfig{DefaultDir: ""},
		Render: RenderConfig{NoMath: false},
		TOC:    TOCConfig{Enabled: false},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML strictly (unknown fields are errors) and validates
// the result. Empty input yields DefaultConfig.
func Parse(data []byte) (*Config, error) {
	if len(data) > MaxInputSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrConfigParse, len(data), MaxInputSize)
	}

	cfg := DefaultConfig()
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-mathdown/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, AppDir, name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", &NotFoundError{Tried: triedPaths}
}

// NotFoundError lists the locations searched for a named config.
// It matches ErrConfigNotFound with errors.Is.
type NotFoundError struct {
	Tried []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: tried %s", ErrConfigNotFound, strings.Join(e.Tried, ", "))
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrConfigNotFound
}
