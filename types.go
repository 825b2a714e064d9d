package mathdown

import (
	"fmt"
	"time"

	"github.com/alnah/go-mathdown/internal/pipeline"
)

// Diagnostic reports a line inside an open $$ block that neither continues
// nor closes it. Line and OpenLine are 1-based.
type Diagnostic = pipeline.Diagnostic

// DefaultMathJaxURL is the MathJax build loaded by rendered documents.
const DefaultMathJaxURL = pipeline.DefaultMathJaxURL

// Options selects the rendering features of a Renderer.
type Options struct {
	PreserveMath bool // keep $...$ and $$...$$ spans intact for MathJax
	Smart        bool // typographic quotes and dashes, never inside math
	FilterHTML   bool // drop raw HTML from the source
	FilterStyles bool // remove <style> elements
	NoImage      bool // remove <img> elements
	NoLinks      bool // unwrap <a> elements
	NoTables     bool // do not parse GFM tables
	Autolink     bool // link bare URLs
	Safelink     bool // unwrap links with an unknown URL scheme
	GenerateTOC  bool // heading ids plus Result.TOC
	Highlight    bool // chroma syntax highlighting for fenced code
	HardWraps    bool // render newlines as <br>
}

// DefaultOptions returns the options used by New: math preservation only.
func DefaultOptions() Options {
	return Options{PreserveMath: true}
}

// TOC depth bounds, as heading levels.
const (
	MinTOCDepth = 1
	MaxTOCDepth = 6
)

// TOC limits the heading levels listed in Result.TOC.
type TOC struct {
	MinDepth int // shallowest heading level (default: 1)
	MaxDepth int // deepest heading level (default: 6)
}

// Validate checks that the depth range is within 1-6 and ordered.
// Returns nil if t is nil (nil means use defaults).
func (t *TOC) Validate() error {
	if t == nil {
		return nil
	}
	if t.MinDepth < MinTOCDepth || t.MinDepth > MaxTOCDepth {
		return fmt.Errorf("%w: min %d (must be between %d and %d)", ErrInvalidTOCDepth, t.MinDepth, MinTOCDepth, MaxTOCDepth)
	}
	if t.MaxDepth < MinTOCDepth || t.MaxDepth > MaxTOCDepth {
		return fmt.Errorf("%w: max %d (must be between %d and %d)", ErrInvalidTOCDepth, t.MaxDepth, MinTOCDepth, MaxTOCDepth)
	}
	if t.MinDepth > t.MaxDepth {
		return fmt.Errorf("%w: min %d is greater than max %d", ErrInvalidTOCDepth, t.MinDepth, t.MaxDepth)
	}
	return nil
}

// depths returns the range to list, falling back to all levels.
func (t *TOC) depths() (int, int) {
	if t == nil {
		return MinTOCDepth, MaxTOCDepth
	}
	return t.MinDepth, t.MaxDepth
}

// Input contains rendering parameters.
type Input struct {
	Markdown  string // Markdown content (required)
	SourceDir string // rewrite relative img/a paths against this directory (optional)
	Title     string // <title> of Result.Document (default: "Document")
	TOC       *TOC   // TOC depth range (optional, used with Options.GenerateTOC)
}

// Result holds the rendered output.
type Result struct {
	HTML        string       // HTML fragment
	Document    string       // standalone HTML5 page
	TOC         string       // nested <ul class="toc">, empty unless GenerateTOC
	Diagnostics []Diagnostic // unterminated $$ block warnings
}

// Option configures a Renderer.
type Option func(*Renderer)

// rendererConfig holds internal configuration for Renderer.
type rendererConfig struct {
	timeout      time.Duration
	opts         Options
	mathJaxURL   string
	onDiagnostic func(Diagnostic)
}

// defaultTimeout is used when no timeout is specified.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the rendering timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("mathdown: WithTimeout duration must be positive")
	}
	return func(r *Renderer) {
		r.cfg.timeout = d
	}
}

// WithOptions replaces the rendering features.
func WithOptions(opts Options) Option {
	return func(r *Renderer) {
		r.cfg.opts = opts
	}
}

// WithMathJaxURL sets the MathJax script loaded by Result.Document.
// An empty URL leaves the script out.
func WithMathJaxURL(url string) Option {
	return func(r *Renderer) {
		r.cfg.mathJaxURL = url
	}
}

// WithDiagnosticHandler registers fn to be called for each diagnostic as it
// is found, in addition to Result.Diagnostics. fn must be safe for concurrent
// use if the Renderer is.
func WithDiagnosticHandler(fn func(Diagnostic)) Option {
	return func(r *Renderer) {
		r.cfg.onDiagnostic = fn
	}
}
