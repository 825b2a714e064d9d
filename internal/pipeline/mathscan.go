package pipeline

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	inlineDelim  = "$"
	displayDelim = "$$"

	// continuationMarker ends a line whose $$ block goes on to the next line.
	continuationMarker = `\\`

	// dollarEntity replaces an escaped dollar outside math, so that neither
	// this scanner nor a later pass can take it for a delimiter.
	dollarEntity = "&#36;"
)

var (
	// Inline code: a backtick, at least one character, then the next backtick.
	codeSpanPattern = regexp.MustCompile("^`.+?`")

	// Unclosed $$ on a line ending with the continuation marker.
	multilineOpenPattern = regexp.MustCompile(`^\$\$.+\\\\$`)
)

// mathSpan is a math region recognized on a single line. An unclosed span
// is the opening of a multi-line $$ block and runs to the end of the line.
type mathSpan struct {
	delim  string
	body   string
	closed bool
}

// escaped renders the span with the body bytes in chars escaped and the
// delimiters untouched.
func (m mathSpan) escaped(chars string) string {
	return m.delim + escapeChars(m.body, chars) + m.delim
}

// scanLine resolves a line left to right. If a multi-line $$ block opens,
// scanning stops there and the remainder of the line is dropped; opened
// reports that case so the caller also drops the line terminator.
func (s *mathScanner) scanLine(text string) (out string, opened bool) {
	var b strings.Builder
	b.Grow(len(text))
	closings := newClosingTable(text)

	for pos := 0; pos < len(text); {
		if text[pos] == '`' {
			if loc := codeSpanPattern.FindStringIndex(text[pos:]); loc != nil {
				b.WriteString(text[pos : pos+loc[1]])
				pos += loc[1]
				continue
			}
		}

		if span, end, ok := scanMath(closings, pos); ok {
			if !span.closed {
				s.openBlock(span)
				return b.String(), true
			}
			b.WriteString(span.escaped(s.escapeChars))
			pos = end
			continue
		}

		unit := charUnit(text, pos)
		if unit == `\$` {
			b.WriteString(dollarEntity)
		} else {
			b.WriteString(unit)
		}
		pos += len(unit)
	}

	return b.String(), false
}

// scanMath looks for a math span at pos. A same-line $$ span is tried
// first, then a same-line $ span, then the opening of a multi-line block.
// end is the position just past the span.
func scanMath(closings *closingTable, pos int) (span mathSpan, end int, ok bool) {
	text := closings.text
	rest := text[pos:]
	if !strings.HasPrefix(rest, inlineDelim) {
		return mathSpan{}, pos, false
	}

	for _, delim := range [...]string{displayDelim, inlineDelim} {
		if !strings.HasPrefix(rest, delim) {
			continue
		}
		start := pos + len(delim)
		if closing, found := closings.find(start, delim); found {
			return mathSpan{delim: delim, body: text[start:closing], closed: true}, closing + len(delim), true
		}
	}

	if multilineOpenPattern.MatchString(rest) {
		return mathSpan{delim: displayDelim, body: rest[len(displayDelim):]}, len(text), true
	}
	return mathSpan{}, pos, false
}

// closingTable answers, for one line, where a math body starting at a given
// offset closes. A body is read unit by unit: \\ and \$ are single units so
// escaped dollars do not close the span, and a lone backslash is only
// considered when no closing delimiter is reachable that way. The closing
// delimiter is tried after each unit, so the first match is the shortest
// along that order.
//
// The answers for a delimiter are computed in one right-to-left sweep on
// first use and shared by every later lookup on the line.
type closingTable struct {
	text    string
	base    int              // offset of the first entry in each table
	byDelim map[string][]int // closing offset+1 per body start, 0 = never closes
}

func newClosingTable(text string) *closingTable {
	return &closingTable{text: text}
}

// find returns the offset of the delimiter closing a body that starts at
// start, just past an opening delim. The body holds at least one unit.
// Lookups on a line must not move left of the first opening delimiter.
func (c *closingTable) find(start int, delim string) (int, bool) {
	table, ok := c.byDelim[delim]
	if !ok {
		if c.byDelim == nil {
			c.base = start - len(delim)
			c.byDelim = make(map[string][]int, 2)
		}
		table = c.sweep(delim)
		c.byDelim[delim] = table
	}
	if start < c.base {
		return 0, false
	}
	if r := table[start-c.base]; r != 0 {
		return r - 1, true
	}
	return 0, false
}

// sweep fills the table for delim from the end of the line back to base.
// Entry i depends only on entries to its right, so one pass suffices.
func (c *closingTable) sweep(delim string) []int {
	text := c.text
	table := make([]int, len(text)-c.base+1)

	// closeOrContinue is the answer once a unit ends at j: the delimiter
	// right there, or whatever the body continuing from j reaches.
	closeOrContinue := func(j int) int {
		if strings.HasPrefix(text[j:], delim) {
			return j + 1
		}
		return table[j-c.base]
	}

	for i := len(text) - 1; i >= c.base; i-- {
		if isEscapeUnit(text, i) {
			if r := closeOrContinue(i + 2); r != 0 {
				table[i-c.base] = r
				continue
			}
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		table[i-c.base] = closeOrContinue(i + size)
	}
	return table
}

// isEscapeUnit reports whether text[i:] starts with \\ or \$.
func isEscapeUnit(text string, i int) bool {
	return i+1 < len(text) && text[i] == '\\' && (text[i+1] == '\\' || text[i+1] == '$')
}

// charUnit returns the unit at pos: an escaped backslash, backtick, or
// dollar, or else a single character.
func charUnit(text string, pos int) string {
	if pos+1 < len(text) && text[pos] == '\\' && strings.IndexByte("\\`$", text[pos+1]) >= 0 {
		return text[pos : pos+2]
	}
	_, size := utf8.DecodeRuneInString(text[pos:])
	return text[pos : pos+size]
}
