package mathdown

import (
	"errors"

	"github.com/alnah/go-mathdown/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	ErrEmptyMarkdown  = errors.New("markdown content cannot be empty")
	ErrHTMLConversion = pipeline.ErrHTMLConversion
	ErrHTMLFilter     = errors.New("HTML filtering failed")

	// TOC validation errors.
	ErrInvalidTOCDepth = errors.New("invalid TOC depth")
)
