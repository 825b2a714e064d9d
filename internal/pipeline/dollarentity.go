package pipeline

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// dollarEntityPriority runs ahead of goldmark's own inline parsers.
const dollarEntityPriority = 90

// dollarEntityParser passes the &#36; written for an escaped dollar through
// goldmark as an entity. goldmark would otherwise decode it to a bare $,
// which MathJax reads as a delimiter.
type dollarEntityParser struct{}

var dollarEntityBytes = []byte(dollarEntity)

// NewDollarEntityParser returns the inline parser for &#36;.
func NewDollarEntityParser() parser.InlineParser {
	return dollarEntityParser{}
}

func (dollarEntityParser) Trigger() []byte {
	return []byte{'&'}
}

func (dollarEntityParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if !bytes.HasPrefix(line, dollarEntityBytes) {
		return nil
	}
	block.Advance(len(dollarEntityBytes))
	node := ast.NewString(dollarEntityBytes)
	node.SetCode(true)
	return node
}

// dollarEntityOption registers the parser with a goldmark parser.
func dollarEntityOption() parser.Option {
	return parser.WithInlineParsers(util.Prioritized(NewDollarEntityParser(), dollarEntityPriority))
}
