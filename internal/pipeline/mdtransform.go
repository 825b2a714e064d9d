package pipeline

import (
	"context"
	"regexp"
)

// Line ending normalization
var crlfOrCR = regexp.MustCompile(`\r\n?`)

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) (string, []Diagnostic)
}

// CommonMarkPreprocessor applies transformations before CommonMark conversion.
type CommonMarkPreprocessor struct {
	// Math preserves $...$ and $$...$$ spans. Nil leaves math to goldmark.
	Math *MathPreprocessor
}

// PreprocessMarkdown normalizes line endings, then preserves math.
// Line endings go first: the math scanner splits on \n only.
func (p *CommonMarkPreprocessor) PreprocessMarkdown(ctx context.Context, content string) (string, []Diagnostic) {
	// Check for cancellation before processing
	if ctx.Err() != nil {
		return content, nil
	}

	content = NormalizeLineEndings(content)
	if p.Math == nil {
		return content, nil
	}
	return p.Math.Preprocess(content)
}

// NormalizeLineEndings converts \r\n and \r to \n.
func NormalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}
