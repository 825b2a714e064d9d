package pipeline

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

// headingInfo represents an extracted heading from HTML.
type headingInfo struct {
	Level int    // 1-6
	ID    string // anchor ID
	Text  string // heading text content
}

// headingPattern matches h1-h6 tags with id attribute.
// Captures: 1=level, 2=id, 3=inner HTML (may contain inline tags)
var headingPattern = regexp.MustCompile(`(?is)<h([1-6])[^>]*\bid="([^"]*)"[^>]*>(.*?)</h[1-6]>`)

// htmlTagPattern matches HTML tags for stripping from heading text.
var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// stripHTMLTags removes tags and decodes entities so the text is not
// double-encoded when escaped again for the TOC.
func stripHTMLTags(s string) string {
	s = htmlTagPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.TrimSpace(s)
}

// extractHeadings returns headings between minDepth and maxDepth.
// Headings without IDs are skipped.
func extractHeadings(htmlContent string, minDepth, maxDepth int) []headingInfo {
	matches := headingPattern.FindAllStringSubmatch(htmlContent, -1)
	if len(matches) == 0 {
		return nil
	}

	var headings []headingInfo
	for _, m := range matches {
		level, _ := strconv.Atoi(m[1])
		if level < minDepth || level > maxDepth {
			continue
		}
		headings = append(headings, headingInfo{
			Level: level,
			ID:    m[2],
			Text:  stripHTMLTags(m[3]),
		})
	}
	return headings
}

// depthTracker maps heading levels to list nesting depths. A heading nests
// under the nearest preceding heading of a lower level, so the first heading
// sits at depth 1 and a jump of several levels nests only one deeper.
type depthTracker struct {
	open []int // levels of the enclosing headings, outermost first
}

// next returns the nesting depth for a heading of the given level.
func (d *depthTracker) next(level int) int {
	for len(d.open) > 0 && d.open[len(d.open)-1] >= level {
		d.open = d.open[:len(d.open)-1]
	}
	d.open = append(d.open, level)
	return len(d.open)
}

// GenerateTOC builds a nested <ul class="toc"> list linking to the headings
// of htmlContent between minDepth and maxDepth. Headings need ids, so the
// converter must run with HeadingIDs. Returns "" when nothing matches.
func GenerateTOC(htmlContent string, minDepth, maxDepth int) string {
	headings := extractHeadings(htmlContent, minDepth, maxDepth)
	if len(headings) == 0 {
		return ""
	}

	var buf strings.Builder
	var tracker depthTracker
	open := 0

	for _, h := range headings {
		depth := tracker.next(h.Level)

		switch {
		case depth > open:
			for ; open < depth; open++ {
				if open == 0 {
					buf.WriteString(`<ul class="toc">`)
				} else {
					buf.WriteString("\n<ul>")
				}
				buf.WriteString("\n<li>")
			}
		default:
			for ; open > depth; open-- {
				buf.WriteString("</li>\n</ul>")
			}
			buf.WriteString("</li>\n<li>")
		}

		buf.WriteString(`<a href="#`)
		buf.WriteString(html.EscapeString(h.ID))
		buf.WriteString(`">`)
		buf.WriteString(html.EscapeString(h.Text))
		buf.WriteString(`</a>`)
	}

	for ; open > 0; open-- {
		buf.WriteString("</li>\n</ul>")
	}
	buf.WriteString("\n")
	return buf.String()
}
