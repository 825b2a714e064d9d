package pipeline

import (
	"fmt"
	"strings"
)

// codeIndent marks an indented code block line, which is never scanned.
const codeIndent = "    "

// trailingSpace is stripped from lines buffered inside a multi-line block.
const trailingSpace = " \t\n\v\f\r\x00"

// Diagnostic reports a line that looks like it belongs to a $$ block that
// was never closed. Diagnostics never stop processing.
type Diagnostic struct {
	Line     int    // 1-based line being processed
	OpenLine int    // 1-based line where the $$ block opened
	Text     string // offending line, trailing whitespace removed
}

// String formats the diagnostic for logs.
func (d Diagnostic) String() string {
	return fmt.Sprintf(`line %d: %s: $$ block opened at line %d may be unterminated (end lines with \\ or close with $$)`,
		d.Line, d.Text, d.OpenLine)
}

// scanMode is the state of the line classifier.
type scanMode int

const (
	modeNormal scanMode = iota
	modeInMultilineMath
)

func (m scanMode) String() string {
	switch m {
	case modeNormal:
		return "normal"
	case modeInMultilineMath:
		return "in-multiline-math"
	default:
		return fmt.Sprintf("scanMode(%d)", int(m))
	}
}

// scanState lives for one document. buffer is non-empty exactly when mode
// is modeInMultilineMath.
type scanState struct {
	mode     scanMode
	buffer   []string // raw fragments of the open $$ block, opening $$ included
	openLine int
	lineNo   int
}

// sourceLine is one physical line and its terminator ("" on a final line
// without one).
type sourceLine struct {
	text string
	eol  string
}

// splitLines cuts content after every newline. Empty content has no lines.
func splitLines(content string) []sourceLine {
	lines := make([]sourceLine, 0, strings.Count(content, "\n")+1)
	for content != "" {
		i := strings.IndexByte(content, '\n')
		if i < 0 {
			lines = append(lines, sourceLine{text: content})
			break
		}
		lines = append(lines, sourceLine{text: content[:i], eol: "\n"})
		content = content[i+1:]
	}
	return lines
}

// MathPreprocessor escapes Markdown metacharacters inside $...$ and
// $$...$$ spans so goldmark leaves the notation to the math renderer.
// It is safe for concurrent use as long as OnDiagnostic is.
type MathPreprocessor struct {
	// OnDiagnostic, if set, is called for each diagnostic as it is found.
	OnDiagnostic func(Diagnostic)

	// Typographic also escapes quotes, dashes, periods, commas, and angle
	// brackets inside math, so goldmark's typographer leaves primes such as
	// f'(x) and -- alone.
	Typographic bool
}

// Preprocess returns content with math spans escaped, along with any
// diagnostics. It never fails.
func (p *MathPreprocessor) Preprocess(content string) (string, []Diagnostic) {
	s := newMathScanner(p)
	return s.run(content), s.diagnostics
}

// PreserveMath is MathPreprocessor.Preprocess without a diagnostic callback.
func PreserveMath(content string) (string, []Diagnostic) {
	return (&MathPreprocessor{}).Preprocess(content)
}

// mathScanner owns the state of a single preprocessing call.
type mathScanner struct {
	state        scanState
	diagnostics  []Diagnostic
	onDiagnostic func(Diagnostic)
	escapeChars  string // bytes escaped inside math bodies
}

func newMathScanner(p *MathPreprocessor) *mathScanner {
	s := &mathScanner{onDiagnostic: p.OnDiagnostic, escapeChars: mathMetaChars}
	if p.Typographic {
		s.escapeChars += typographicChars
	}
	return s
}

func (s *mathScanner) run(content string) string {
	var out strings.Builder
	out.Grow(len(content) + len(content)/8)

	for _, line := range splitLines(content) {
		s.state.lineNo++
		if text, ok := s.classify(line); ok {
			out.WriteString(text)
		}
	}

	s.flush(&out)
	return out.String()
}

// classify produces the output for one line. ok is false when the line was
// absorbed into an open $$ block.
func (s *mathScanner) classify(line sourceLine) (string, bool) {
	switch s.state.mode {
	case modeInMultilineMath:
		return s.continueBlock(line)
	case modeNormal:
		if strings.HasPrefix(line.text, codeIndent) {
			return line.text + line.eol, true
		}
		text, opened := s.scanLine(line.text)
		if opened {
			return text, true
		}
		return text + line.eol, true
	}
	return line.text + line.eol, true
}

// openBlock starts buffering a $$ block left open at the end of a line.
func (s *mathScanner) openBlock(span mathSpan) {
	s.state.buffer = []string{span.delim + span.body}
	s.state.mode = modeInMultilineMath
	s.state.openLine = s.state.lineNo
}

// continueBlock handles a line while a $$ block is open. The first $$ on
// the line closes the block: the buffered fragments and the text before it
// are joined with single spaces and escaped as one body. Without a $$ the
// whole line joins the buffer.
func (s *mathScanner) continueBlock(line sourceLine) (string, bool) {
	mathPart, rest, closed := strings.Cut(line.text, displayDelim)
	if !closed {
		trimmed := strings.TrimRight(line.text, trailingSpace)
		if !strings.HasSuffix(trimmed, continuationMarker) {
			s.report(Diagnostic{Line: s.state.lineNo, OpenLine: s.state.openLine, Text: trimmed})
		}
		s.state.buffer = append(s.state.buffer, trimmed)
		return "", false
	}

	body := strings.Join(append(s.state.buffer, mathPart), " ")
	s.state.buffer = nil
	s.state.mode = modeNormal

	tail, opened := s.scanLine(rest)
	if opened {
		return escapeChars(body, s.escapeChars) + displayDelim + tail, true
	}
	return escapeChars(body, s.escapeChars) + displayDelim + tail + line.eol, true
}

// flush writes a block still open at the end of the document, raw and
// without a closing $$, one fragment per line.
func (s *mathScanner) flush(out *strings.Builder) {
	if s.state.mode != modeInMultilineMath {
		return
	}
	for _, fragment := range s.state.buffer {
		out.WriteString(fragment)
		out.WriteByte('\n')
	}
	s.state.buffer = nil
	s.state.mode = modeNormal
}

func (s *mathScanner) report(d Diagnostic) {
	s.diagnostics = append(s.diagnostics, d)
	if s.onDiagnostic != nil {
		s.onDiagnostic(d)
	}
}
