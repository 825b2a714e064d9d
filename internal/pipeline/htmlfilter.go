package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// entitySentinel stands in for &#36; while HTML goes through x/net/html,
// which decodes entities in text and attributes. U+FDD0 is a Unicode
// noncharacter and does not occur in rendered Markdown.
const entitySentinel = "\uFDD0"

// FilterOptions selects the post-processing applied to rendered HTML.
type FilterOptions struct {
	SourceDir    string // rewrite relative img/a paths against this directory
	FilterStyles bool   // remove <style> elements
	NoImage      bool   // remove <img> elements
	NoLinks      bool   // unwrap <a> elements, keeping their content
	Safelink     bool   // unwrap links with an unknown URL scheme
}

// active reports whether any filter would change the document.
func (o FilterOptions) active() bool {
	return o.SourceDir != "" || o.FilterStyles || o.NoImage || o.NoLinks || o.Safelink
}

// safeSchemes are the URL schemes kept when Safelink is set. Links without
// a scheme (relative paths, anchors) are always safe.
var safeSchemes = map[string]bool{
	"http":   true,
	"https":  true,
	"ftp":    true,
	"mailto": true,
	"news":   true,
}

// FilterHTML applies opts to an HTML fragment or document.
// If no option is set, returns the HTML unchanged.
//
// Relative paths are rewritten for:
//   - img[src]
//   - a[href] (not anchors, not URLs)
//
// Paths escaping SourceDir are left alone.
func FilterHTML(htmlContent string, opts FilterOptions) (string, error) {
	if !opts.active() {
		return htmlContent, nil
	}

	sourceDir := opts.SourceDir
	if sourceDir != "" {
		// Make sourceDir absolute for consistent path resolution
		abs, err := filepath.Abs(sourceDir)
		if err != nil {
			return "", err
		}
		opts.SourceDir = abs
	}

	keepEntity := strings.Contains(htmlContent, dollarEntity) && !strings.Contains(htmlContent, entitySentinel)
	if keepEntity {
		htmlContent = strings.ReplaceAll(htmlContent, dollarEntity, entitySentinel)
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}

	filterChildren(doc, opts)

	out, err := renderHTML(doc, isFragment)
	if err != nil {
		return "", err
	}
	if keepEntity {
		out = strings.ReplaceAll(out, entitySentinel, dollarEntity)
	}
	return out, nil
}

// parseHTML parses HTML content, handling both full documents and fragments.
// Returns the parsed node, whether it was a fragment, and any error.
func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))

	// Full document: starts with <!DOCTYPE or <html
	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	// Fragment: parse with body context to avoid wrapping
	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, true, err
	}

	// Wrap nodes in a container for uniform traversal
	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	return container, true, nil
}

// renderHTML renders the document back to string.
// For fragments, only renders the children (avoids adding <html><body> wrapper).
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder

	if !isFragment {
		if err := html.Render(&buf, doc); err != nil {
			return "", err
		}
		return buf.String(), nil
	}

	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// filterChildren filters the subtree below n. Children are handled before
// their parent so unwrapped content has already been filtered.
func filterChildren(n *html.Node, opts FilterOptions) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		filterChildren(c, opts)
		if c.Type == html.ElementNode {
			filterElement(c, opts)
		}
		c = next
	}
}

// filterElement removes, unwraps, or rewrites a single element.
func filterElement(n *html.Node, opts FilterOptions) {
	switch n.DataAtom {
	case atom.Style:
		if opts.FilterStyles {
			n.Parent.RemoveChild(n)
		}
	case atom.Img:
		if opts.NoImage {
			n.Parent.RemoveChild(n)
			return
		}
		rewriteAttr(n, "src", opts.SourceDir)
	case atom.A:
		if opts.NoLinks || (opts.Safelink && !isSafeLink(attrValue(n, "href"))) {
			unwrap(n)
			return
		}
		rewriteAttr(n, "href", opts.SourceDir)
	}
}

// unwrap replaces n with its children.
func unwrap(n *html.Node) {
	parent := n.Parent
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
		c = next
	}
	parent.RemoveChild(n)
}

// attrValue returns the value of attribute key, or "".
func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// isSafeLink reports whether href is relative or uses a known scheme.
func isSafeLink(href string) bool {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return false
	}
	return u.Scheme == "" || safeSchemes[strings.ToLower(u.Scheme)]
}

// rewriteAttr rewrites a single attribute if it's a relative path.
func rewriteAttr(n *html.Node, attrName, sourceDir string) {
	if sourceDir == "" {
		return
	}
	for i, attr := range n.Attr {
		if attr.Key != attrName || !isRelativePath(attr.Val) {
			continue
		}

		absPath := filepath.Join(sourceDir, attr.Val)

		// Security: validate path is under sourceDir (prevent traversal)
		if !isPathUnderDir(absPath, sourceDir) {
			continue
		}

		n.Attr[i].Val = pathToFileURL(absPath)
	}
}

// isRelativePath returns true if the path should be rewritten.
func isRelativePath(path string) bool {
	if path == "" || strings.HasPrefix(path, "#") || strings.HasPrefix(path, "//") {
		return false
	}
	if u, err := url.Parse(path); err == nil && u.Scheme != "" {
		return false
	}
	return !filepath.IsAbs(path)
}

// isPathUnderDir checks if absPath is under dir (prevents path traversal).
func isPathUnderDir(absPath, dir string) bool {
	cleanDir := filepath.Clean(dir)
	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}
	return strings.HasPrefix(filepath.Clean(absPath)+string(filepath.Separator), cleanDir)
}

// pathToFileURL converts an absolute path to a file:// URL.
func pathToFileURL(absPath string) string {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(absPath),
	}
	return u.String()
}
