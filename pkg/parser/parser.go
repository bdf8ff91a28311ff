// Package parser is the Java front end: it turns source files into
// declaration trees with statement blocks, and resolves the names each
// declaration uses into a reverse usage graph.
package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

// Parser wraps tree-sitter configured for Java. It is not safe for
// concurrent use; create one per goroutine.
type Parser struct {
	parser *sitter.Parser
}

// ParseResult contains the parsed AST and metadata.
type ParseResult struct {
	Tree   *sitter.Tree
	Source []byte
	Path   string
}

// New creates a new parser instance.
func New() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(java.GetLanguage())
	return &Parser{parser: p}
}

// Parse parses Java source code.
func (p *Parser) Parse(ctx context.Context, source []byte, path string) (*ParseResult, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &ParseResult{
		Tree:   tree,
		Source: source,
		Path:   path,
	}, nil
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// IsSource reports whether path has one of the given extensions. With no
// extensions only .java files match.
func IsSource(path string, extensions ...string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if len(extensions) == 0 {
		return ext == ".java"
	}
	for _, e := range extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// NodeVisitor is a function that visits AST nodes.
type NodeVisitor func(node *sitter.Node, source []byte) bool

// Walk traverses the AST calling visitor for each node. Returning false
// from visitor skips the node's children.
func Walk(node *sitter.Node, source []byte, visitor NodeVisitor) {
	if node == nil {
		return
	}
	if !visitor(node, source) {
		return
	}
	for i := range int(node.ChildCount()) {
		Walk(node.Child(i), source, visitor)
	}
}

// FindNodesByType returns all nodes of a specific type.
func FindNodesByType(root *sitter.Node, source []byte, nodeType string) []*sitter.Node {
	var results []*sitter.Node
	Walk(root, source, func(n *sitter.Node, _ []byte) bool {
		if n.Type() == nodeType {
			results = append(results, n)
		}
		return true
	})
	return results
}

// GetNodeText extracts the source text for a node.
// Returns empty string if node is nil or byte offsets are out of bounds.
func GetNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}

func sameNode(a, b *sitter.Node) bool {
	return a != nil && b != nil && a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

func childOfType(n *sitter.Node, typ string) *sitter.Node {
	if n == nil {
		return nil
	}
	for i := range int(n.NamedChildCount()) {
		if c := n.NamedChild(i); c.Type() == typ {
			return c
		}
	}
	return nil
}

func namedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, n.NamedChildCount())
	for i := range int(n.NamedChildCount()) {
		out = append(out, n.NamedChild(i))
	}
	return out
}
