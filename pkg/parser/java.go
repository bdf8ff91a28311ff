package parser

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/remapper/pkg/decl"
	"github.com/panbanda/remapper/pkg/models"
)

// Initializer names.
const (
	StaticInitializer   = "static initializer"
	InstanceInitializer = "instance initializer"
)

// File is the front end output for one source file.
type File struct {
	Path    string
	Package string
	Root    *decl.Node
	Usages  []Usage
	// Syntax is set when tree-sitter recovered from syntax errors.
	Syntax bool
}

// ParseFile builds the declaration tree and raw usages of one Java file.
func (p *Parser) ParseFile(ctx context.Context, path string, src []byte) (*File, error) {
	res, err := p.Parse(ctx, src, path)
	if err != nil {
		return nil, err
	}
	defer res.Tree.Close()

	root := res.Tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("empty syntax tree for %s", path)
	}
	b := &builder{src: src, path: path}
	b.pkg = packageName(root, src)
	b.file = &File{
		Path:    path,
		Package: b.pkg,
		Root:    decl.NewRoot(path, b.pkg),
		Syntax:  root.HasError(),
	}
	for _, c := range namedChildren(root) {
		b.member(c, b.file.Root, b.pkg)
	}
	return b.file, nil
}

func packageName(root *sitter.Node, src []byte) string {
	pkg := childOfType(root, "package_declaration")
	if pkg == nil {
		return ""
	}
	for _, c := range namedChildren(pkg) {
		if c.Type() == "scoped_identifier" || c.Type() == "identifier" {
			return GetNodeText(c, src)
		}
	}
	return ""
}

type builder struct {
	src  []byte
	path string
	pkg  string
	file *File
}

func (b *builder) loc(n *sitter.Node) models.Location {
	start, end := n.StartPoint(), n.EndPoint()
	return models.Location{
		FilePath:    b.path,
		StartLine:   int(start.Row) + 1,
		EndLine:     int(end.Row) + 1,
		StartColumn: int(start.Column) + 1,
		EndColumn:   int(end.Column) + 1,
	}
}

func (b *builder) text(n *sitter.Node) string { return GetNodeText(n, b.src) }

func qualify(container, name string) string {
	if container == "" {
		return name
	}
	return container + "." + name
}

var typeKinds = map[string]models.Kind{
	"class_declaration":           models.KindType,
	"interface_declaration":       models.KindInterface,
	"enum_declaration":            models.KindEnum,
	"record_declaration":          models.KindRecord,
	"annotation_type_declaration": models.KindAnnotationType,
}

// member dispatches one declaration found in a file or type body.
func (b *builder) member(n *sitter.Node, parent *decl.Node, container string) {
	typ := n.Type()
	if kind, ok := typeKinds[typ]; ok {
		b.typeDecl(n, kind, parent, container)
		return
	}
	switch typ {
	case "field_declaration", "constant_declaration":
		b.fields(n, parent, container)
	case "method_declaration", "constructor_declaration", "compact_constructor_declaration":
		b.method(n, parent, container)
	case "annotation_type_element_declaration":
		b.annotationMember(n, parent, container)
	case "static_initializer":
		b.initializer(n, StaticInitializer, parent, container)
	case "block":
		b.initializer(n, InstanceInitializer, parent, container)
	case "enum_constant":
		b.enumConstant(n, parent, container)
	case "enum_body_declarations":
		for _, c := range namedChildren(n) {
			b.member(c, parent, container)
		}
	}
}

func hasModifier(n *sitter.Node, keyword string) bool {
	mods := childOfType(n, "modifiers")
	if mods == nil {
		return false
	}
	for i := range int(mods.ChildCount()) {
		if mods.Child(i).Type() == keyword {
			return true
		}
	}
	return false
}

func (b *builder) typeParams(n *sitter.Node) []string {
	tp := n.ChildByFieldName("type_parameters")
	if tp == nil {
		tp = childOfType(n, "type_parameters")
	}
	var out []string
	for _, c := range namedChildren(tp) {
		if c.Type() == "type_parameter" {
			out = append(out, compactNode(c, b.src))
		}
	}
	return out
}

func (b *builder) typeDecl(n *sitter.Node, kind models.Kind, parent *decl.Node, container string) {
	name := b.text(n.ChildByFieldName("name"))
	body := n.ChildByFieldName("body")

	d := decl.NewDeclaration(tokens(n, b.src))
	d.HeaderTokens = tokensExcept(n, b.src, body)
	d.TypeParams = b.typeParams(n)
	d.Public = hasModifier(n, "public")

	entity := models.Descriptor{
		Kind:      kind,
		Name:      name,
		Container: container,
		Namespace: b.pkg,
		Location:  b.loc(n),
	}
	node := decl.NewNode(entity, d)
	parent.AddChild(node)
	b.use(entity, b.refs(n, body))

	qualified := qualify(container, name)
	for _, c := range namedChildren(body) {
		b.member(c, node, qualified)
	}
}

func (b *builder) fields(n *sitter.Node, parent *decl.Node, container string) {
	typ := n.ChildByFieldName("type")
	mods := childOfType(n, "modifiers")
	declarators := make([]*sitter.Node, 0, 1)
	for _, c := range namedChildren(n) {
		if c.Type() == "variable_declarator" {
			declarators = append(declarators, c)
		}
	}
	public := hasModifier(n, "public")
	typeRefs := b.refs(typ, nil)
	if mods != nil {
		typeRefs = append(typeRefs, b.refs(mods, nil)...)
	}

	for _, v := range declarators {
		name := b.text(v.ChildByFieldName("name"))
		var toks []string
		if mods != nil {
			toks = append(toks, tokens(mods, b.src)...)
		}
		toks = append(toks, tokens(typ, b.src)...)
		toks = append(toks, tokens(v, b.src)...)
		toks = append(toks, ";")

		d := decl.NewDeclaration(toks)
		d.FieldType = compactNode(typ, b.src) + compactNode(v.ChildByFieldName("dimensions"), b.src)
		d.Public = public

		at := n
		if len(declarators) > 1 {
			at = v
		}
		entity := models.Descriptor{
			Kind:      models.KindField,
			Name:      name,
			Container: container,
			Namespace: b.pkg,
			Location:  b.loc(at),
		}
		parent.AddChild(decl.NewNode(entity, d))

		refs := append([]Ref(nil), typeRefs...)
		if value := v.ChildByFieldName("value"); value != nil {
			refs = append(refs, b.refs(value, nil)...)
		}
		b.use(entity, refs)
	}
}

func (b *builder) params(n *sitter.Node) []decl.Param {
	var out []decl.Param
	for _, c := range namedChildren(n.ChildByFieldName("parameters")) {
		switch c.Type() {
		case "formal_parameter":
			t := compactNode(c.ChildByFieldName("type"), b.src) + compactNode(c.ChildByFieldName("dimensions"), b.src)
			out = append(out, decl.Param{Type: t})
		case "spread_parameter":
			for _, sc := range namedChildren(c) {
				if sc.Type() != "modifiers" && sc.Type() != "variable_declarator" {
					out = append(out, decl.Param{Type: compactNode(sc, b.src), Varargs: true})
					break
				}
			}
		}
	}
	return out
}

func (b *builder) method(n *sitter.Node, parent *decl.Node, container string) {
	name := b.text(n.ChildByFieldName("name"))
	body := n.ChildByFieldName("body")

	d := decl.NewDeclaration(tokens(n, b.src))
	d.HeaderTokens = tokensExcept(n, b.src, body)
	d.Params = b.params(n)
	d.TypeParams = b.typeParams(n)
	d.Public = hasModifier(n, "public")
	if n.Type() == "method_declaration" {
		d.HasReturnType = true
		d.ReturnType = compactNode(n.ChildByFieldName("type"), b.src) + compactNode(n.ChildByFieldName("dimensions"), b.src)
	}

	entity := models.Descriptor{
		Kind:      models.KindMethod,
		Name:      name,
		Container: container,
		Namespace: b.pkg,
		Params:    d.ParamTypes(),
		Location:  b.loc(n),
	}
	node := decl.NewNode(entity, d)
	parent.AddChild(node)
	b.use(entity, b.refs(n, nil))
	b.bodyBlocks(node, body, name+"("+strings.Join(entity.Params, ",")+")")
}

func (b *builder) annotationMember(n *sitter.Node, parent *decl.Node, container string) {
	d := decl.NewDeclaration(tokens(n, b.src))
	d.FieldType = compactNode(n.ChildByFieldName("type"), b.src) + compactNode(n.ChildByFieldName("dimensions"), b.src)
	d.Public = true

	entity := models.Descriptor{
		Kind:      models.KindAnnotationMember,
		Name:      b.text(n.ChildByFieldName("name")),
		Container: container,
		Namespace: b.pkg,
		Location:  b.loc(n),
	}
	parent.AddChild(decl.NewNode(entity, d))
	b.use(entity, b.refs(n, nil))
}

func (b *builder) initializer(n *sitter.Node, name string, parent *decl.Node, container string) {
	d := decl.NewDeclaration(tokens(n, b.src))
	entity := models.Descriptor{
		Kind:      models.KindInitializer,
		Name:      name,
		Container: container,
		Namespace: b.pkg,
		Location:  b.loc(n),
	}
	node := decl.NewNode(entity, d)
	parent.AddChild(node)
	b.use(entity, b.refs(n, nil))

	body := n
	if n.Type() == "static_initializer" {
		body = childOfType(n, "block")
	}
	b.bodyBlocks(node, body, name)
}

func (b *builder) enumConstant(n *sitter.Node, parent *decl.Node, container string) {
	name := b.text(n.ChildByFieldName("name"))
	body := n.ChildByFieldName("body")

	d := decl.NewDeclaration(tokens(n, b.src))
	d.HeaderTokens = tokensExcept(n, b.src, body)
	d.Public = true

	entity := models.Descriptor{
		Kind:      models.KindEnumConstant,
		Name:      name,
		Container: container,
		Namespace: b.pkg,
		Location:  b.loc(n),
	}
	node := decl.NewNode(entity, d)
	parent.AddChild(node)
	b.use(entity, b.refs(n, body))

	qualified := qualify(container, name)
	for _, c := range namedChildren(body) {
		b.member(c, node, qualified)
	}
}
