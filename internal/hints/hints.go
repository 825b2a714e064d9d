// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("for large documents, use --timeout flag")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-mathdown/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	// Suggest the first user config path
	for _, p := range searchedPaths {
		if strings.Contains(filepath.ToSlash(p), "/go-mathdown/") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForNoInput returns hints when no input path was given.
func ForNoInput() string {
	return format("pass a .md file or directory, or set input.defaultDir in the config")
}

// ForWorkers returns hints for an out-of-range worker count.
func ForWorkers(maxWorkers int) string {
	return format(fmt.Sprintf("use a value between 1 and %d, or 0 for one per CPU", maxWorkers))
}

// ForUnterminatedMath returns hints for math diagnostics.
func ForUnterminatedMath() string {
	return format(`end each line of a multi-line $$ block with \\ or close it with $$`)
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}
