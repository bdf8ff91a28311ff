package parser

import (
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"
)

// atoms are nodes kept as a single token.
var atoms = map[string]bool{
	"string_literal":    true,
	"character_literal": true,
	"text_block":        true,
}

func isComment(typ string) bool {
	return typ == "line_comment" || typ == "block_comment" || typ == "comment"
}

// tokens returns the leaf tokens of n with comments removed.
func tokens(n *sitter.Node, src []byte) []string {
	return tokensExcept(n, src)
}

// tokensExcept is tokens without the subtrees in skip.
func tokensExcept(n *sitter.Node, src []byte, skip ...*sitter.Node) []string {
	var out []string
	Walk(n, src, func(c *sitter.Node, src []byte) bool {
		for _, s := range skip {
			if sameNode(c, s) {
				return false
			}
		}
		typ := c.Type()
		if isComment(typ) {
			return false
		}
		if atoms[typ] || c.ChildCount() == 0 {
			if t := strings.TrimSpace(GetNodeText(c, src)); t != "" {
				out = append(out, t)
			}
			return false
		}
		return true
	})
	return out
}

// compact joins tokens without spaces except between two word tokens, so
// "Map < String , Integer >" renders as "Map<String,Integer>".
func compact(toks []string) string {
	var b strings.Builder
	for i, t := range toks {
		if i > 0 && isWordEnd(toks[i-1]) && isWordStart(t) {
			b.WriteByte(' ')
		}
		b.WriteString(t)
	}
	return b.String()
}

func compactNode(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return compact(tokens(n, src))
}

func isWordEnd(s string) bool {
	r := []rune(s)
	return len(r) > 0 && isWord(r[len(r)-1])
}

func isWordStart(s string) bool {
	r := []rune(s)
	return len(r) > 0 && isWord(r[0])
}

func isWord(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
