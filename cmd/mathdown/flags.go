package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// renderFlags holds flags that toggle rendering features.
type renderFlags struct {
	noMath       bool
	mathJaxURL   string
	title        string
	smart        bool
	filterHTML   bool
	filterStyles bool
	noImage      bool
	noLinks      bool
	noTables     bool
	autolink     bool
	safelink     bool
	highlight    bool
	hardWraps    bool
}

// tocFlags holds table of contents flags.
type tocFlags struct {
	enabled  bool
	minDepth int
	maxDepth int
}

// cliFlags holds all flags of the mathdown command.
type cliFlags struct {
	config  string
	output  string
	workers int
	timeout string
	quiet   bool
	verbose bool
	version bool
	render  renderFlags
	toc     tocFlags
}

// addRenderFlags adds rendering feature flags to a FlagSet.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.BoolVar(&f.noMath, "no-math", false, "do not preserve $...$ and $$...$$ math")
	fs.StringVar(&f.mathJaxURL, "mathjax-url", "", "MathJax script URL (default: jsDelivr CDN)")
	fs.StringVar(&f.title, "title", "", "document title (\"\" = first H1, then file name)")
	fs.BoolVar(&f.smart, "smart", false, "typographic quotes and dashes")
	fs.BoolVar(&f.filterHTML, "filter-html", false, "drop raw HTML from the source")
	fs.BoolVar(&f.filterStyles, "filter-styles", false, "remove <style> elements")
	fs.BoolVar(&f.noImage, "no-image", false, "remove images")
	fs.BoolVar(&f.noLinks, "no-links", false, "render links as plain text")
	fs.BoolVar(&f.noTables, "no-tables", false, "do not parse tables")
	fs.BoolVar(&f.autolink, "autolink", false, "link bare URLs")
	fs.BoolVar(&f.safelink, "safelink", false, "drop links with unknown URL schemes")
	fs.BoolVar(&f.highlight, "highlight", false, "syntax highlighting for fenced code")
	fs.BoolVar(&f.hardWraps, "hard-wraps", false, "render newlines as <br>")
}

// addTOCFlags adds TOC flags to a FlagSet.
func addTOCFlags(fs *flag.FlagSet, f *tocFlags) {
	fs.BoolVar(&f.enabled, "toc", false, "generate a table of contents")
	fs.IntVar(&f.minDepth, "toc-min-depth", 0, "min heading depth for TOC (1-6, default: 1)")
	fs.IntVar(&f.maxDepth, "toc-max-depth", 0, "max heading depth for TOC (1-6, default: 6)")
}

// parseFlags parses command flags and returns positional args.
// Usage goes to w on --help or a parse error.
func parseFlags(args []string, w io.Writer) (*cliFlags, []string, error) {
	fs := flag.NewFlagSet("mathdown", flag.ContinueOnError)
	fs.SetOutput(w)
	f := &cliFlags{}

	// I/O flags
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-file rendering timeout (e.g., 10s, 1m)")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug output and timing")
	fs.BoolVar(&f.version, "version", false, "print version and exit")

	addRenderFlags(fs, &f.render)
	addTOCFlags(fs, &f.toc)

	fs.Usage = func() { printUsage(w, fs) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
