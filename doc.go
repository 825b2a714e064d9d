// Package mathdown renders Markdown to HTML while keeping TeX math intact
// for MathJax.
//
// # Quick Start
//
//	r := mathdown.New()
//	result, err := r.Render(ctx, mathdown.Input{
//	    Markdown: "The area is $\\pi r^2$.",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("out.html", []byte(result.Document), 0644)
//
// result.HTML is the body fragment; result.Document is a standalone page
// that loads MathJax when the source contains math.
//
// # Math Preservation
//
// Markdown treats characters such as *, _ and [ as markup, which corrupts
// TeX. Before conversion, every $...$ and $$...$$ span has those characters
// backslash-escaped so the Markdown engine emits them literally:
//
//	$a_1 * b_2$   becomes   $a\_1 \* b\_2$
//
// Code spans and indented code blocks are left alone. An escaped \$ outside
// math becomes the &#36; entity. A $$ block may span several lines when each
// line but the last ends with \\; a line inside an open block that does
// neither produces a Diagnostic.
//
// # Conversion Pipeline
//
//  1. Markdown preprocessing (line normalization, math preservation)
//  2. Markdown to HTML conversion via Goldmark (GFM, optional highlighting)
//  3. HTML filtering (styles, images, links, relative paths)
//  4. Table of contents generation
//  5. Document wrapping with the MathJax script
//
// # Configuration
//
// Use functional options to customize the renderer:
//
//	r := mathdown.New(
//	    mathdown.WithTimeout(10 * time.Second),
//	    mathdown.WithOptions(mathdown.Options{PreserveMath: true, Smart: true}),
//	    mathdown.WithDiagnosticHandler(func(d mathdown.Diagnostic) {
//	        log.Println(d)
//	    }),
//	)
//
// A Renderer is safe for concurrent use.
package mathdown
