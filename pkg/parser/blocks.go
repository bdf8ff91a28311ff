package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/remapper/pkg/decl"
)

// bodyBlocks records the statement blocks nested in a method or initializer
// body. The body itself is not a block: it is matched with its owner.
func (b *builder) bodyBlocks(owner *decl.Node, body *sitter.Node, method string) {
	if body == nil {
		return
	}
	w := &blockWalker{b: b, owner: owner, method: method}
	for _, c := range namedChildren(body) {
		w.visit(c, nil)
	}
}

type blockWalker struct {
	b      *builder
	owner  *decl.Node
	method string
}

func (w *blockWalker) attach(blk, parent *decl.Block) {
	if parent == nil {
		w.owner.AddBlock(blk)
		return
	}
	parent.AddChild(blk)
}

func (w *blockWalker) newBlock(n *sitter.Node, typ decl.BlockType, expr string) *decl.Block {
	toks := tokens(n, w.b.src)
	return &decl.Block{
		Type:       typ,
		Expression: expr,
		Text:       strings.Join(toks, " "),
		Tokens:     toks,
		Location:   w.b.loc(n),
		Method:     w.method,
	}
}

func (w *blockWalker) visit(n *sitter.Node, parent *decl.Block) {
	switch n.Type() {
	case "block":
		typ, expr := w.classify(n)
		blk := w.newBlock(n, typ, expr)
		w.attach(blk, parent)
		w.visitChildren(n, blk)
	case "class_body":
		if p := n.Parent(); p != nil && p.Type() == "object_creation_expression" {
			blk := w.newBlock(n, decl.BlockAnonymous, "")
			w.attach(blk, parent)
			w.visitMembers(n, blk)
			return
		}
		// local classes are not entities; their bodies still hold blocks
		w.visitMembers(n, parent)
	case "lambda_expression":
		body := n.ChildByFieldName("body")
		if body != nil && body.Type() == "block" {
			blk := w.newBlock(body, decl.BlockLambda, "")
			w.attach(blk, parent)
			w.visitChildren(body, blk)
			return
		}
		w.visitChildren(n, parent)
	case "switch_block_statement_group":
		w.switchGroup(n, parent)
	case "switch_rule":
		w.switchRule(n, parent)
	default:
		w.visitChildren(n, parent)
	}
}

func (w *blockWalker) visitChildren(n *sitter.Node, parent *decl.Block) {
	for _, c := range namedChildren(n) {
		w.visit(c, parent)
	}
}

// visitMembers walks the bodies of methods declared in an anonymous or
// local class.
func (w *blockWalker) visitMembers(body *sitter.Node, parent *decl.Block) {
	for _, m := range namedChildren(body) {
		switch m.Type() {
		case "method_declaration", "constructor_declaration":
			if mb := m.ChildByFieldName("body"); mb != nil {
				w.visitChildren(mb, parent)
			}
		default:
			w.visit(m, parent)
		}
	}
}

func (w *blockWalker) labels(n *sitter.Node) string {
	var toks []string
	for _, c := range namedChildren(n) {
		if c.Type() == "switch_label" {
			toks = append(toks, tokens(c, w.b.src)...)
		}
	}
	return compact(toks)
}

// switchGroup records a case label and re-parents the block that directly
// follows the label under it.
func (w *blockWalker) switchGroup(n *sitter.Node, parent *decl.Block) {
	label := w.labels(n)
	sc := w.newBlock(n, decl.BlockSwitchCase, label)
	w.attach(sc, parent)

	first := true
	for _, c := range namedChildren(n) {
		if c.Type() == "switch_label" {
			continue
		}
		if first && c.Type() == "block" {
			blk := w.newBlock(c, decl.BlockCase, label)
			sc.AddChild(blk)
			w.visitChildren(c, blk)
		} else {
			w.visit(c, sc)
		}
		first = false
	}
}

func (w *blockWalker) switchRule(n *sitter.Node, parent *decl.Block) {
	label := w.labels(n)
	sc := w.newBlock(n, decl.BlockSwitchCase, label)
	w.attach(sc, parent)
	for _, c := range namedChildren(n) {
		switch c.Type() {
		case "switch_label":
		case "block":
			blk := w.newBlock(c, decl.BlockCase, label)
			sc.AddChild(blk)
			w.visitChildren(c, blk)
		default:
			w.visit(c, sc)
		}
	}
}

// classify derives the role of a block from the statement that owns it.
func (w *blockWalker) classify(n *sitter.Node) (decl.BlockType, string) {
	p := n.Parent()
	if p == nil {
		return decl.BlockOther, ""
	}
	src := w.b.src
	switch p.Type() {
	case "if_statement":
		expr := "if" + compactNode(p.ChildByFieldName("condition"), src)
		if sameNode(p.ChildByFieldName("alternative"), n) {
			return decl.BlockElse, expr
		}
		return decl.BlockIf, expr
	case "try_statement", "try_with_resources_statement":
		return decl.BlockTry, tryExpression(p, src)
	case "catch_clause":
		return decl.BlockCatch, "catch(" + compactNode(childOfType(p, "catch_formal_parameter"), src) + ")"
	case "finally_clause":
		if t := p.Parent(); t != nil {
			return decl.BlockFinally, tryExpression(t, src)
		}
		return decl.BlockFinally, "try"
	case "for_statement":
		return decl.BlockFor, forExpression(p, src)
	case "enhanced_for_statement":
		return decl.BlockEnhancedFor, "for(" + compactNode(p.ChildByFieldName("name"), src) + ": " +
			compactNode(p.ChildByFieldName("value"), src) + ")"
	case "while_statement":
		return decl.BlockWhile, "while" + compactNode(p.ChildByFieldName("condition"), src)
	case "do_statement":
		return decl.BlockDo, "do" + compactNode(p.ChildByFieldName("condition"), src)
	case "block", "switch_block_statement_group", "constructor_body":
		return decl.BlockPlain, ""
	case "lambda_expression":
		return decl.BlockLambda, ""
	default:
		return decl.BlockOther, ""
	}
}

// forExpression renders the header of a classic for loop as
// for(init; condition; update), joining repeated clauses with commas.
func forExpression(f *sitter.Node, src []byte) string {
	var init, update []string
	for i := range int(f.ChildCount()) {
		switch f.FieldNameForChild(i) {
		case "init":
			init = append(init, strings.TrimSuffix(compactNode(f.Child(i), src), ";"))
		case "update":
			update = append(update, compactNode(f.Child(i), src))
		}
	}
	return "for(" + strings.Join(init, ", ") + "; " + compactNode(f.ChildByFieldName("condition"), src) +
		"; " + strings.Join(update, ", ") + ")"
}

func tryExpression(try *sitter.Node, src []byte) string {
	res := try.ChildByFieldName("resources")
	if res == nil {
		return "try"
	}
	return "try" + compactNode(res, src)
}
