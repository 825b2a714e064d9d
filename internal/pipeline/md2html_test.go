package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestGoldmarkConverter_ToHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		opts         ConverterOptions
		input        string
		wantContains []string
		wantNot      []string
	}{
		{
			name:         "basic heading without ids",
			input:        "# Hello World",
			wantContains: []string{"<h1>Hello World</h1>"},
			wantNot:      []string{`id="`, "<!DOCTYPE html>"},
		},
		{
			name:         "heading ids",
			opts:         ConverterOptions{HeadingIDs: true},
			input:        "# Hello World",
			wantContains: []string{`<h1 id="hello-world">`},
		},
		{
			name:         "GFM table",
			input:        "| A | B |\n|---|---|\n| 1 | 2 |",
			wantContains: []string{"<table>", "<th>", "<td>"},
		},
		{
			name:    "tables disabled",
			opts:    ConverterOptions{NoTables: true},
			input:   "| A | B |\n|---|---|\n| 1 | 2 |",
			wantNot: []string{"<table>"},
		},
		{
			name:         "GFM strikethrough",
			input:        "~~deleted~~",
			wantContains: []string{"<del>deleted</del>"},
		},
		{
			name:         "raw HTML passes by default",
			input:        "<div class=\"note\">hi</div>\n",
			wantContains: []string{`<div class="note">hi</div>`},
		},
		{
			name:    "raw HTML filtered",
			opts:    ConverterOptions{FilterHTML: true},
			input:   "<div class=\"note\">hi</div>\n",
			wantNot: []string{"<div"},
		},
		{
			name:    "bare URL not linked by default",
			input:   "Visit https://example.com for more",
			wantNot: []string{"<a "},
		},
		{
			name:         "autolink",
			opts:         ConverterOptions{Autolink: true},
			input:        "Visit https://example.com for more",
			wantContains: []string{`<a href="https://example.com">`},
		},
		{
			name:         "smart quotes",
			opts:         ConverterOptions{Smart: true},
			input:        `say "hello"`,
			wantContains: []string{"&ldquo;hello&rdquo;"},
		},
		{
			name:         "hard wraps",
			opts:         ConverterOptions{HardWraps: true},
			input:        "Line one\nLine two",
			wantContains: []string{"Line one<br />"},
		},
		{
			name:         "syntax highlighting",
			opts:         ConverterOptions{Highlight: true},
			input:        "```go\nfunc main() {}\n```",
			wantContains: []string{`class="chroma"`},
		},
		{
			name:         "escaped metacharacters render literally",
			input:        `$a\*b\*c \[a](b)$`,
			wantContains: []string{"<p>$a*b*c [a](b)$</p>"},
			wantNot:      []string{"<em>", "<a "},
		},
		{
			name:         "dollar entity kept",
			opts:         ConverterOptions{KeepDollarEntity: true},
			input:        "&#36;a*b*c [a](b)&#36;",
			wantContains: []string{`<p>&#36;a<em>b</em>c <a href="b">a</a>&#36;</p>`},
		},
		{
			name:         "dollar entity decoded by default",
			input:        "&#36;x",
			wantContains: []string{"<p>$x</p>"},
		},
		{
			name:         "other entities still decoded",
			opts:         ConverterOptions{KeepDollarEntity: true},
			input:        "&#37; &amp",
			wantContains: []string{"<p>% &amp;amp</p>"},
		},
		{
			name:         "smart leaves escaped math punctuation alone",
			opts:         ConverterOptions{Smart: true},
			input:        `$f\'(x) \-\- y$ don't`,
			wantContains: []string{"$f'(x) -- y$ don&rsquo;t"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			conv := NewGoldmarkConverter(tt.opts)
			got, err := conv.ToHTML(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("ToHTML() unexpected error: %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("ToHTML() missing %q in:\n%s", want, got)
				}
			}
			for _, notWant := range tt.wantNot {
				if strings.Contains(got, notWant) {
					t.Errorf("ToHTML() should not contain %q in:\n%s", notWant, got)
				}
			}
		})
	}
}

func TestGoldmarkConverter_ToHTML_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	conv := NewGoldmarkConverter(ConverterOptions{})
	_, err := conv.ToHTML(ctx, "# Hello")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ToHTML() error = %v, want %v", err, context.Canceled)
	}
}

func TestWrapDocument(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		title        string
		mathJaxURL   string
		wantContains []string
		wantNot      []string
	}{
		{
			name:         "default title without math",
			wantContains: []string{"<!DOCTYPE html>", "<title>Document</title>", "<p>body</p>"},
			wantNot:      []string{"MathJax"},
		},
		{
			name:         "title is escaped",
			title:        "A & <B>",
			wantContains: []string{"<title>A &amp; &lt;B&gt;</title>"},
		},
		{
			name:       "math loads MathJax",
			mathJaxURL: DefaultMathJaxURL,
			wantContains: []string{
				"window.MathJax",
				`inlineMath: [['$', '$']]`,
				`src="` + DefaultMathJaxURL + `"`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := WrapDocument(tt.title, "<p>body</p>", tt.mathJaxURL)
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("WrapDocument() missing %q in:\n%s", want, got)
				}
			}
			for _, notWant := range tt.wantNot {
				if strings.Contains(got, notWant) {
					t.Errorf("WrapDocument() should not contain %q", notWant)
				}
			}
		})
	}
}
