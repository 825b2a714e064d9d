package pipeline

import "strings"

// mathMetaChars are the characters goldmark would otherwise read as
// emphasis, code, link, or escape syntax inside a math span.
const mathMetaChars = "\\[*_`^"

// typographicChars are the characters goldmark's typographer turns into
// curly quotes, dashes, ellipses, or angle quotes.
const typographicChars = "'\"-.,<>"

// EscapeMath inserts a backslash before every Markdown metacharacter in a
// math body. It makes a single left-to-right pass: inserted backslashes are
// never escaped again, so it must run exactly once per body.
func EscapeMath(body string) string {
	return escapeChars(body, mathMetaChars)
}

// escapeChars backslash-escapes every byte of body found in chars.
func escapeChars(body, chars string) string {
	if !strings.ContainsAny(body, chars) {
		return body
	}

	var b strings.Builder
	b.Grow(len(body) + len(body)/4)
	for i := 0; i < len(body); i++ {
		c := body[i]
		if strings.IndexByte(chars, c) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}
