// Package pipeline implements the Markdown-to-HTML conversion stages.
//
// A document moves through these stages in order:
//   - Markdown preprocessing: line ending normalization, then math
//     preservation ($...$ and $$...$$ spans escaped so Markdown leaves them
//     intact for a client-side math renderer)
//   - Markdown to HTML conversion via Goldmark
//   - HTML filtering (styles, images, links, relative paths) via x/net/html
//   - Table of contents generation from heading ids
//   - Wrapping the fragment in a standalone page that loads MathJax
//
// The math preprocessor is a line-oriented state machine whose state lives
// for a single Preprocess call, so one MathPreprocessor can serve many
// documents concurrently.
package pipeline
