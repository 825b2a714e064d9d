package main

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	mathdown "github.com/alnah/go-mathdown"
	"github.com/alnah/go-mathdown/internal/config"
)

// Sentinel errors for the convert command.
var (
	ErrInvalidTimeout    = errors.New("invalid timeout")
	ErrConversionsFailed = errors.New("conversions failed")
)

// runConvert loads configuration, discovers files, and renders them.
func runConvert(ctx context.Context, positionalArgs []string, flags *cliFlags, env *Environment) error {
	// Validate worker count early
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	envCfg := loadEnvConfig(env.Getenv)
	warnUnknownEnvVars(env.Logger, env.Environ())

	// Load configuration: --config wins over MATHDOWN_CONFIG
	cfg := config.DefaultConfig()
	configName := flags.config
	if configName == "" {
		configName = envCfg.ConfigPath
	}
	if configName != "" {
		var err error
		cfg, err = config.LoadConfig(configName)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		env.Logger.WithField("config", configName).Debug("loaded config")
	}

	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	timeout, err := resolveTimeout(flags.timeout, envCfg.Timeout)
	if err != nil {
		return err
	}

	inputPath, err := resolveInputPath(positionalArgs, cfg)
	if err != nil {
		return err
	}
	outputDir := resolveOutputDir(flags.output, cfg)

	files, err := collectSources(inputPath, outputDir)
	if err != nil {
		return fmt.Errorf("collecting sources: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no markdown files found in %s", ErrNoInput, inputPath)
	}

	workers := resolveWorkers(flags.workers, envCfg.Workers)
	env.Logger.WithFields(logrus.Fields{
		"files":   len(files),
		"workers": workers,
	}).Debug("starting conversion")

	renderer := newRenderer(cfg, timeout)
	params := &conversionParams{
		title: cfg.Render.Title,
		toc:   buildTOC(cfg),
	}

	results := convertBatch(ctx, renderer, files, params, workers)

	failed, firstErr := printResults(results, flags.quiet, flags.verbose, env)
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d: %w", ErrConversionsFailed, failed, len(results), firstErr)
	}

	return nil
}

// mergeFlags applies CLI flags to config. Boolean flags only switch
// features on; the config cannot be overridden back to off from the CLI.
func mergeFlags(flags *cliFlags, cfg *config.Config) {
	r := flags.render
	if r.noMath {
		cfg.Render.NoMath = true
	}
	if r.mathJaxURL != "" {
		cfg.Render.MathJaxURL = r.mathJaxURL
	}
	if r.title != "" {
		cfg.Render.Title = r.title
	}
	cfg.Render.Smart = cfg.Render.Smart || r.smart
	cfg.Render.FilterHTML = cfg.Render.FilterHTML || r.filterHTML
	cfg.Render.FilterStyles = cfg.Render.FilterStyles || r.filterStyles
	cfg.Render.NoImage = cfg.Render.NoImage || r.noImage
	cfg.Render.NoLinks = cfg.Render.NoLinks || r.noLinks
	cfg.Render.NoTables = cfg.Render.NoTables || r.noTables
	cfg.Render.Autolink = cfg.Render.Autolink || r.autolink
	cfg.Render.Safelink = cfg.Render.Safelink || r.safelink
	cfg.Render.Highlight = cfg.Render.Highlight || r.highlight
	cfg.Render.HardWraps = cfg.Render.HardWraps || r.hardWraps

	// TOC depth flags imply --toc
	if flags.toc.enabled || flags.toc.minDepth != 0 || flags.toc.maxDepth != 0 {
		cfg.TOC.Enabled = true
	}
	if flags.toc.minDepth != 0 {
		cfg.TOC.MinDepth = flags.toc.minDepth
	}
	if flags.toc.maxDepth != 0 {
		cfg.TOC.MaxDepth = flags.toc.maxDepth
	}
}

// resolveTimeout parses the --timeout flag, falling back to the env value.
// Returns 0 when neither is set (renderer default applies).
func resolveTimeout(flagValue string, envValue time.Duration) (time.Duration, error) {
	if flagValue == "" {
		return envValue, nil
	}
	d, err := time.ParseDuration(flagValue)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidTimeout, flagValue, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %s (must be positive)", ErrInvalidTimeout, flagValue)
	}
	return d, nil
}

// resolveInputPath determines the input path from args or config.
func resolveInputPath(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Input.DefaultDir != "" {
		return cfg.Input.DefaultDir, nil
	}
	return "", ErrNoInput
}

// resolveOutputDir determines the output directory from flag or config.
func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.DefaultDir
}

// buildOptions maps the merged config to renderer options.
func buildOptions(cfg *config.Config) mathdown.Options {
	return mathdown.Options{
		PreserveMath: !cfg.Render.NoMath,
		Smart:        cfg.Render.Smart,
		FilterHTML:   cfg.Render.FilterHTML,
		FilterStyles: cfg.Render.FilterStyles,
		NoImage:      cfg.Render.NoImage,
		NoLinks:      cfg.Render.NoLinks,
		NoTables:     cfg.Render.NoTables,
		Autolink:     cfg.Render.Autolink,
		Safelink:     cfg.Render.Safelink,
		GenerateTOC:  cfg.TOC.Enabled,
		Highlight:    cfg.Render.Highlight,
		HardWraps:    cfg.Render.HardWraps,
	}
}

// buildTOC returns the TOC depth range, or nil for the full range.
func buildTOC(cfg *config.Config) *mathdown.TOC {
	if !cfg.TOC.Enabled || (cfg.TOC.MinDepth == 0 && cfg.TOC.MaxDepth == 0) {
		return nil
	}
	toc := &mathdown.TOC{MinDepth: mathdown.MinTOCDepth, MaxDepth: mathdown.MaxTOCDepth}
	if cfg.TOC.MinDepth != 0 {
		toc.MinDepth = cfg.TOC.MinDepth
	}
	if cfg.TOC.MaxDepth != 0 {
		toc.MaxDepth = cfg.TOC.MaxDepth
	}
	return toc
}

// newRenderer builds a renderer shared by all workers.
func newRenderer(cfg *config.Config, timeout time.Duration) *mathdown.Renderer {
	opts := []mathdown.Option{mathdown.WithOptions(buildOptions(cfg))}
	if cfg.Render.MathJaxURL != "" {
		opts = append(opts, mathdown.WithMathJaxURL(cfg.Render.MathJaxURL))
	}
	if timeout > 0 {
		opts = append(opts, mathdown.WithTimeout(timeout))
	}
	return mathdown.New(opts...)
}

// firstHeadingPattern matches an ATX level-1 heading.
var firstHeadingPattern = regexp.MustCompile(`(?m)^#[ \t]+(.+)$`)

// extractFirstHeading returns the text of the first H1, or "".
func extractFirstHeading(markdown string) string {
	matches := firstHeadingPattern.FindStringSubmatch(markdown)
	if len(matches) >= 2 {
		return strings.TrimSpace(matches[1])
	}
	return ""
}
