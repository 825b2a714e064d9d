package pipeline

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractHeadings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		html     string
		minDepth int
		maxDepth int
		want     []headingInfo
	}{
		{
			name:     "empty HTML returns nil",
			minDepth: 1,
			maxDepth: 6,
		},
		{
			name:     "heading without id is skipped",
			html:     "<h1>No ID</h1>",
			minDepth: 1,
			maxDepth: 6,
		},
		{
			name:     "respects depth range",
			html:     `<h1 id="a">A</h1><h2 id="b">B</h2><h3 id="c">C</h3><h4 id="d">D</h4>`,
			minDepth: 2,
			maxDepth: 3,
			want: []headingInfo{
				{Level: 2, ID: "b", Text: "B"},
				{Level: 3, ID: "c", Text: "C"},
			},
		},
		{
			name:     "inline tags stripped and entities decoded",
			html:     `<h2 id="x">Use <code>a &amp; b</code></h2>`,
			minDepth: 1,
			maxDepth: 6,
			want:     []headingInfo{{Level: 2, ID: "x", Text: "Use a & b"}},
		},
		{
			name:     "case insensitive tags",
			html:     `<H2 id="mixed">Mixed</H2>`,
			minDepth: 1,
			maxDepth: 6,
			want:     []headingInfo{{Level: 2, ID: "mixed", Text: "Mixed"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := extractHeadings(tt.html, tt.minDepth, tt.maxDepth)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("extractHeadings() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDepthTracker_Next(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		levels []int
		want   []int
	}{
		{
			name:   "sequential levels",
			levels: []int{1, 2, 3, 2, 1},
			want:   []int{1, 2, 3, 2, 1},
		},
		{
			name:   "first heading normalized to depth 1",
			levels: []int{2, 3, 2},
			want:   []int{1, 2, 1},
		},
		{
			name:   "gaps nest one level",
			levels: []int{1, 4, 4, 2},
			want:   []int{1, 2, 2, 2},
		},
		{
			name:   "deeper sibling after gap",
			levels: []int{2, 4, 3},
			want:   []int{1, 2, 2},
		},
		{
			name:   "shallower than first starts a new top level",
			levels: []int{3, 1, 2},
			want:   []int{1, 1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var d depthTracker
			got := make([]int, 0, len(tt.levels))
			for _, level := range tt.levels {
				got = append(got, d.next(level))
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("depthTracker.next() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGenerateTOC(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		html     string
		minDepth int
		maxDepth int
		want     string
	}{
		{
			name:     "no headings",
			html:     "<p>text</p>",
			minDepth: 1,
			maxDepth: 6,
			want:     "",
		},
		{
			name:     "flat list",
			html:     `<h2 id="a">A</h2><p>x</p><h2 id="b">B</h2>`,
			minDepth: 1,
			maxDepth: 6,
			want: `<ul class="toc">
<li><a href="#a">A</a></li>
<li><a href="#b">B</a></li>
</ul>
`,
		},
		{
			name:     "nested list",
			html:     `<h1 id="a">A</h1><h2 id="b">B</h2><h1 id="c">C</h1>`,
			minDepth: 1,
			maxDepth: 6,
			want: `<ul class="toc">
<li><a href="#a">A</a>
<ul>
<li><a href="#b">B</a></li>
</ul></li>
<li><a href="#c">C</a></li>
</ul>
`,
		},
		{
			name:     "ends deep",
			html:     `<h1 id="a">A</h1><h2 id="b">B</h2><h3 id="c">C</h3>`,
			minDepth: 1,
			maxDepth: 6,
			want: `<ul class="toc">
<li><a href="#a">A</a>
<ul>
<li><a href="#b">B</a>
<ul>
<li><a href="#c">C</a></li>
</ul></li>
</ul></li>
</ul>
`,
		},
		{
			name:     "text escaped",
			html:     `<h2 id="q">a &lt; b</h2>`,
			minDepth: 1,
			maxDepth: 6,
			want: `<ul class="toc">
<li><a href="#q">a &lt; b</a></li>
</ul>
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := GenerateTOC(tt.html, tt.minDepth, tt.maxDepth)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("GenerateTOC() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
