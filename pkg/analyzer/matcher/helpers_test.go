package matcher

import (
	"strings"

	"github.com/panbanda/remapper/pkg/decl"
	"github.com/panbanda/remapper/pkg/models"
)

const ns = "p"

func tokens(text string) []string { return strings.Fields(text) }

func field(container, name, typ, text string) *decl.Node {
	d := decl.NewDeclaration(tokens(text))
	d.FieldType = typ
	return decl.NewNode(models.Descriptor{
		Kind: models.KindField, Name: name, Container: container, Namespace: ns,
	}, d)
}

func method(container, name, ret, text string, params ...string) *decl.Node {
	d := decl.NewDeclaration(tokens(text))
	d.ReturnType = ret
	d.HasReturnType = ret != ""
	for _, p := range params {
		d.Params = append(d.Params, decl.Param{Type: p})
	}
	return decl.NewNode(models.Descriptor{
		Kind: models.KindMethod, Name: name, Container: container, Namespace: ns, Params: params,
	}, d)
}

func typeDecl(kind models.Kind, container, name string, members ...*decl.Node) *decl.Node {
	texts := []string{"public", strings.ToLower(string(kind)), name, "{"}
	for _, m := range members {
		texts = append(texts, m.Text())
	}
	texts = append(texts, "}")
	d := decl.NewDeclaration(tokens(strings.Join(texts, " ")))
	d.HeaderTokens = tokens("public " + strings.ToLower(string(kind)) + " " + name)
	d.Public = true
	n := decl.NewNode(models.Descriptor{
		Kind: kind, Name: name, Container: container, Namespace: ns,
	}, d)
	for _, m := range members {
		n.AddChild(m)
	}
	return n
}

func class(name string, members ...*decl.Node) *decl.Node {
	return typeDecl(models.KindType, ns, name, members...)
}

func file(path string, children ...*decl.Node) *decl.Node {
	r := decl.NewRoot(path, ns)
	for _, c := range children {
		r.AddChild(c)
	}
	return r
}

func names(pairs []EntityPair) []string {
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.Before.Entity().Name + "->" + p.After.Entity().Name
	}
	return out
}

func nodeNames(nodes []*decl.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Entity().Name
	}
	return out
}

func modified(before, after *decl.Node) Input {
	path := before.Path()
	return Input{
		Before:  map[string]*decl.Node{path: before},
		After:   map[string]*decl.Node{path: after},
		Changes: models.FileChanges{Modified: []string{path}},
	}
}

func withBlocks(n *decl.Node, blocks ...*decl.Block) *decl.Node {
	for _, b := range blocks {
		n.AddBlock(b)
	}
	return n
}

func blk(typ decl.BlockType, expr, text string, line int) *decl.Block {
	return &decl.Block{
		Type: typ, Expression: expr, Text: text, Tokens: tokens(text),
		Location: models.Location{FilePath: "A.java", StartLine: line},
	}
}
