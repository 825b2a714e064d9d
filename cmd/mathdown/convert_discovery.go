package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// MaxWorkers bounds --workers and MATHDOWN_WORKERS.
const MaxWorkers = 32

// Sentinel errors for source collection.
var (
	ErrInvalidExtension   = errors.New("file must have .md or .markdown extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// sourceFile is one Markdown file and the HTML document rendered from it.
type sourceFile struct {
	InputPath  string
	OutputPath string
	FromDir    bool // found by walking a directory input
}

// outputLayout places the HTML document for each Markdown source.
// The zero value writes every document next to its source.
type outputLayout struct {
	target  string // explicit .html path for a single-file input
	outDir  string // root for every document
	srcRoot string // directory input whose tree is mirrored under outDir
}

// newOutputLayout reads the output setting against the input kind. An
// output ending in .html names the document itself, but only for a single
// file; a directory input always treats output as a directory.
func newOutputLayout(input string, inputIsDir bool, output string) outputLayout {
	switch {
	case output == "":
		return outputLayout{}
	case inputIsDir:
		return outputLayout{outDir: output, srcRoot: input}
	case strings.EqualFold(filepath.Ext(output), ".html"):
		return outputLayout{target: output}
	default:
		return outputLayout{outDir: output}
	}
}

// htmlPath returns where the document rendered from src is written.
func (l outputLayout) htmlPath(src string) string {
	if l.target != "" {
		return l.target
	}

	name := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + ".html"
	switch {
	case l.outDir == "":
		return filepath.Join(filepath.Dir(src), name)
	case l.srcRoot != "":
		if rel, err := filepath.Rel(l.srcRoot, filepath.Dir(src)); err == nil {
			return filepath.Join(l.outDir, rel, name)
		}
	}
	return filepath.Join(l.outDir, name)
}

// collectSources lists the Markdown files under input with their output
// paths. A file input must carry a Markdown extension; a directory input
// is walked in lexical order, skipping hidden directories.
func collectSources(input, output string) ([]sourceFile, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}
	layout := newOutputLayout(input, info.IsDir(), output)

	if !info.IsDir() {
		if !isMarkdownFile(input) {
			return nil, fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(input))
		}
		return []sourceFile{{InputPath: input, OutputPath: layout.htmlPath(input)}}, nil
	}

	var sources []sourceFile
	err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() {
			if path != input && isHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if isMarkdownFile(path) {
			sources = append(sources, sourceFile{
				InputPath:  path,
				OutputPath: layout.htmlPath(path),
				FromDir:    true,
			})
		}
		return nil
	})
	return sources, err
}

// isMarkdownFile reports whether path has a .md or .markdown extension.
func isMarkdownFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// isHidden reports whether a directory name starts with a dot, like .git.
func isHidden(name string) bool {
	return len(name) > 1 && name[0] == '.' && name != ".."
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > MaxWorkers {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, MaxWorkers)
	}
	return nil
}
