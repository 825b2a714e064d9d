package mathdown

import (
	"context"
	"fmt"
	"strings"

	"github.com/alnah/go-mathdown/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.CommonMarkPreprocessor)(nil)
	_ pipeline.HTMLConverter        = (*pipeline.GoldmarkConverter)(nil)
)

// Renderer orchestrates the Markdown-to-HTML pipeline.
// Create with New and use Render for each document. A Renderer holds no
// per-document state and is safe for concurrent use.
type Renderer struct {
	cfg           rendererConfig
	preprocessor  pipeline.MarkdownPreprocessor
	htmlConverter pipeline.HTMLConverter
}

// New creates a Renderer with default configuration.
// Use options to customize behavior (e.g., WithOptions, WithTimeout).
func New(opts ...Option) *Renderer {
	r := &Renderer{
		cfg: rendererConfig{
			timeout:    defaultTimeout,
			opts:       DefaultOptions(),
			mathJaxURL: DefaultMathJaxURL,
		},
	}

	for _, opt := range opts {
		opt(r)
	}

	o := r.cfg.opts
	pre := &pipeline.CommonMarkPreprocessor{}
	if o.PreserveMath {
		pre.Math = &pipeline.MathPreprocessor{
			OnDiagnostic: r.cfg.onDiagnostic,
			Typographic:  o.Smart,
		}
	}
	r.preprocessor = pre
	r.htmlConverter = pipeline.NewGoldmarkConverter(pipeline.ConverterOptions{
		Smart:      o.Smart,
		FilterHTML: o.FilterHTML,
		NoTables:   o.NoTables,
		Autolink:   o.Autolink,
		HeadingIDs: o.GenerateTOC,
		Highlight:  o.Highlight,
		HardWraps:  o.HardWraps,

		KeepDollarEntity: o.PreserveMath,
	})

	return r
}

// Render runs the full pipeline and returns the HTML fragment, the
// standalone document, the optional TOC, and any math diagnostics.
// The context is used for cancellation and timeout.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (r *Renderer) Render(ctx context.Context, input Input) (result *Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("internal error: %v", rec)
		}
	}()

	if err := r.validateInput(input); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.timeout)
	defer cancel()

	// Preprocess markdown
	mdContent, diags := r.preprocessor.PreprocessMarkdown(ctx, input.Markdown)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// Convert to HTML
	htmlContent, err := r.htmlConverter.ToHTML(ctx, mdContent)
	if err != nil {
		return nil, fmt.Errorf("converting to HTML: %w", err)
	}

	// Apply element filters and rewrite relative paths
	htmlContent, err = pipeline.FilterHTML(htmlContent, r.filterOptions(input))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHTMLFilter, err)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	res := &Result{
		HTML:        htmlContent,
		Diagnostics: diags,
	}

	if r.cfg.opts.GenerateTOC {
		minDepth, maxDepth := input.TOC.depths()
		res.TOC = pipeline.GenerateTOC(htmlContent, minDepth, maxDepth)
	}

	var mathJaxURL string
	if r.cfg.opts.PreserveMath && strings.Contains(input.Markdown, "$") {
		mathJaxURL = r.cfg.mathJaxURL
	}
	res.Document = pipeline.WrapDocument(input.Title, res.TOC+res.HTML, mathJaxURL)

	return res, nil
}

// filterOptions maps renderer options to the HTML filter stage.
func (r *Renderer) filterOptions(input Input) pipeline.FilterOptions {
	return pipeline.FilterOptions{
		SourceDir:    input.SourceDir,
		FilterStyles: r.cfg.opts.FilterStyles,
		NoImage:      r.cfg.opts.NoImage,
		NoLinks:      r.cfg.opts.NoLinks,
		Safelink:     r.cfg.opts.Safelink,
	}
}

// validateInput checks that required fields are present and valid.
func (r *Renderer) validateInput(input Input) error {
	if input.Markdown == "" {
		return ErrEmptyMarkdown
	}
	return input.TOC.Validate()
}

// PreserveMath escapes Markdown metacharacters inside $...$ and $$...$$
// spans so a Markdown renderer passes them through to MathJax unchanged.
// It is the preprocessing step of Render on its own.
func PreserveMath(markdown string) (string, []Diagnostic) {
	return pipeline.PreserveMath(pipeline.NormalizeLineEndings(markdown))
}
