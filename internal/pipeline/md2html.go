package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	goldhtml "github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// DefaultMathJaxURL is the MathJax build loaded by documents that contain
// preserved math.
const DefaultMathJaxURL = "https://cdn.jsdelivr.net/npm/mathjax@3/es5/tex-chtml.js"

// htmlTemplate wraps Goldmark's fragment output in a complete HTML5 document.
// Arguments: title, head extras, body.
const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
%s</head>
<body>
%s
</body>
</html>`

// mathJaxConfig makes MathJax look for the same delimiters the math
// preprocessor preserves. Arguments: script URL.
const mathJaxConfig = `<script>
window.MathJax = {tex: {inlineMath: [['$', '$']], displayMath: [['$$', '$$']], processEscapes: true}};
</script>
<script id="MathJax-script" async src="%s"></script>
`

// ConverterOptions selects the goldmark extensions and renderer behavior.
type ConverterOptions struct {
	Smart      bool // typographic quotes and dashes
	FilterHTML bool // drop raw HTML from the source
	NoTables   bool // do not parse GFM tables
	Autolink   bool // link bare URLs
	HeadingIDs bool // generate heading ids (needed for a TOC)
	Highlight  bool // chroma syntax highlighting for fenced code
	HardWraps  bool // render newlines as <br>

	// KeepDollarEntity writes &#36; from the source as-is instead of
	// decoding it to $.
	KeepDollarEntity bool
}

// HTMLConverter abstracts Markdown to HTML conversion.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// GoldmarkConverter converts Markdown to HTML using goldmark (pure Go).
// It is safe for concurrent use.
type GoldmarkConverter struct {
	md goldmark.Markdown
}

// NewGoldmarkConverter creates a GoldmarkConverter for the given options.
func NewGoldmarkConverter(opts ConverterOptions) *GoldmarkConverter {
	extensions := []goldmark.Extender{
		extension.Strikethrough,
		extension.TaskList,
		extension.Footnote, // [^1] footnotes
	}
	if !opts.NoTables {
		extensions = append(extensions, extension.Table)
	}
	if opts.Autolink {
		extensions = append(extensions, extension.Linkify)
	}
	if opts.Smart {
		extensions = append(extensions, extension.Typographer)
	}
	if opts.Highlight {
		extensions = append(extensions, highlighting.NewHighlighting(
			highlighting.WithFormatOptions(
				chromahtml.WithClasses(true), // CSS classes for smaller HTML and external stylesheet control
			),
		))
	}

	var parserOpts []parser.Option
	if opts.HeadingIDs {
		parserOpts = append(parserOpts, parser.WithAutoHeadingID())
	}
	if opts.KeepDollarEntity {
		parserOpts = append(parserOpts, dollarEntityOption())
	}

	rendererOpts := []renderer.Option{goldhtml.WithXHTML()}
	if !opts.FilterHTML {
		rendererOpts = append(rendererOpts, goldhtml.WithUnsafe())
	}
	if opts.HardWraps {
		rendererOpts = append(rendererOpts, goldhtml.WithHardWraps())
	}

	md := goldmark.New(
		goldmark.WithExtensions(extensions...),
		goldmark.WithParserOptions(parserOpts...),
		goldmark.WithRendererOptions(rendererOpts...),
	)
	return &GoldmarkConverter{md: md}
}

// ToHTML converts Markdown content to an HTML fragment.
// Supports context cancellation via goroutine + select pattern since
// Goldmark doesn't natively support context.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string) (string, error) {
	// Fast path: check context before starting
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: buf.String()}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// WrapDocument places an HTML fragment in a standalone HTML5 page. When
// mathJaxURL is non-empty the page loads MathJax configured for $ and $$.
func WrapDocument(title, body, mathJaxURL string) string {
	if title == "" {
		title = "Document"
	}
	var head string
	if mathJaxURL != "" {
		head = fmt.Sprintf(mathJaxConfig, html.EscapeString(mathJaxURL))
	}
	return fmt.Sprintf(htmlTemplate, html.EscapeString(title), head, body)
}
