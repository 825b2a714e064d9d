package main

import (
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// printUsage prints the command usage and flag defaults.
func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, `mathdown - render Markdown with TeX math to HTML

Usage:
  mathdown [flags] <file.md | directory>

Math between $...$ or $$...$$ is passed through untouched for MathJax.
A $$ block may span lines when each line but the last ends with \\.

Flags:
%s
Environment:
  MATHDOWN_CONFIG       config file name or path
  MATHDOWN_INPUT_DIR    default input directory
  MATHDOWN_OUTPUT_DIR   default output directory
  MATHDOWN_WORKERS      parallel workers
  MATHDOWN_TIMEOUT      per-file rendering timeout
  MATHDOWN_NO_MATH      set to 1 or true to disable math preservation

Exit codes:
  0 success, 1 error, 2 usage or config, 3 input/output
`, fs.FlagUsages())
}
