package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	mathdown "github.com/alnah/go-mathdown"
	"github.com/alnah/go-mathdown/internal/fileutil"
	"github.com/alnah/go-mathdown/internal/hints"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Sentinel errors for batch operations.
var (
	ErrNoInput      = errors.New("no input specified")
	ErrReadMarkdown = errors.New("failed to read markdown file")
	ErrWriteHTML    = errors.New("failed to write HTML file")
	ErrOutputDir    = errors.New("failed to create output directory")
)

// Renderer is the interface for the rendering service.
type Renderer interface {
	Render(ctx context.Context, input mathdown.Input) (*mathdown.Result, error)
}

// Compile-time interface implementation check.
var _ Renderer = (*mathdown.Renderer)(nil)

// conversionParams holds per-batch rendering inputs derived from config.
type conversionParams struct {
	title string        // fixed title; empty = first H1, then file name
	toc   *mathdown.TOC // nil = full depth range
}

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath   string
	OutputPath  string
	Diagnostics []mathdown.Diagnostic
	Skipped     bool // empty file found in a directory input
	Err         error
	Duration    time.Duration
}

// convertBatch renders files concurrently with a fixed number of workers.
// Results keep the order of files.
func convertBatch(ctx context.Context, r Renderer, files []sourceFile, params *conversionParams, workers int) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := max(min(workers, len(files)), 1)

	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{
						InputPath: files[idx].InputPath,
						Err:       ctx.Err(),
					}
					continue
				}
				results[idx] = convertFile(ctx, r, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile renders a single file and writes the HTML document.
func convertFile(ctx context.Context, r Renderer, f sourceFile, params *conversionParams) ConversionResult {
	start := time.Now()
	result := ConversionResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}

	content, err := readMarkdown(f.InputPath)
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrReadMarkdown, err)
		result.Duration = time.Since(start)
		return result
	}

	// An empty file given by name is a usage error from Render; inside a
	// directory it is only skipped.
	if content == "" && f.FromDir {
		result.Skipped = true
		result.Duration = time.Since(start)
		return result
	}

	outDir := filepath.Dir(f.OutputPath)
	if err := os.MkdirAll(outDir, dirPermissions); err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrOutputDir, err)
		result.Duration = time.Since(start)
		return result
	}

	res, err := r.Render(ctx, mathdown.Input{
		Markdown:  content,
		SourceDir: filepath.Dir(f.InputPath),
		Title:     resolveTitle(params.title, content, f.InputPath),
		TOC:       params.toc,
	})
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}
	result.Diagnostics = res.Diagnostics

	if err := fileutil.WriteFileAtomic(f.OutputPath, []byte(res.Document), filePermissions); err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrWriteHTML, err)
		result.Duration = time.Since(start)
		return result
	}

	result.Duration = time.Since(start)
	return result
}

// readMarkdown reads a file as UTF-8 text. A UTF-8 byte order mark is
// stripped and UTF-16 files with a byte order mark are transcoded.
func readMarkdown(path string) (string, error) {
	raw, err := os.ReadFile(path) // #nosec G304 -- discovered path
	if err != nil {
		return "", err
	}

	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	decoded, _, err := transform.Bytes(decoder, raw)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", path, err)
	}
	return string(decoded), nil
}

// resolveTitle picks the document title: fixed title, first H1, file name.
func resolveTitle(fixed, markdown, path string) string {
	if fixed != "" {
		return fixed
	}
	if h1 := extractFirstHeading(markdown); h1 != "" {
		return h1
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// ResultSummary tallies the outcomes of a batch.
type ResultSummary struct {
	Succeeded   int
	Failed      int
	Skipped     int
	Diagnostics int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		switch {
		case r.Err != nil:
			summary.Failed++
		case r.Skipped:
			summary.Skipped++
		default:
			summary.Succeeded++
		}
		summary.Diagnostics += len(r.Diagnostics)
	}
	return summary
}

// printResults reports each conversion and logs math diagnostics.
// Returns the failure count and the first failure.
func printResults(results []ConversionResult, quiet, verbose bool, env *Environment) (int, error) {
	summary := countResults(results)
	var firstErr error

	for _, r := range results {
		for _, d := range r.Diagnostics {
			env.Logger.WithFields(logrus.Fields{
				"file":      r.InputPath,
				"line":      d.Line,
				"open_line": d.OpenLine,
			}).Warn("$$ block may be unterminated: " + d.Text)
		}

		if r.Err != nil {
			env.Logger.WithField("file", r.InputPath).WithError(r.Err).Error("FAILED")
			if firstErr == nil {
				firstErr = r.Err
			}
			continue
		}

		if r.Skipped {
			env.Logger.WithField("file", r.InputPath).Warn("skipped empty file")
			continue
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if summary.Diagnostics > 0 {
		env.Logger.Warn(fmt.Sprintf("%d math diagnostic(s)", summary.Diagnostics) + hints.ForUnterminatedMath())
	}

	if !quiet && len(results) > 1 {
		if summary.Skipped > 0 {
			fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed, %d skipped\n", summary.Succeeded, summary.Failed, summary.Skipped)
		} else {
			fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
		}
	}

	return summary.Failed, firstErr
}

// resolveWorkers determines the worker count.
// Priority: explicit flag > env > GOMAXPROCS (adjusted by automaxprocs for containers).
func resolveWorkers(flagWorkers, envWorkers int) int {
	if flagWorkers > 0 {
		return flagWorkers
	}
	if envWorkers > 0 {
		return min(envWorkers, MaxWorkers)
	}
	return min(max(runtime.GOMAXPROCS(0), 1), MaxWorkers)
}
