package parser

import (
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/panbanda/remapper/pkg/analyzer/graph"
	"github.com/panbanda/remapper/pkg/decl"
	"github.com/panbanda/remapper/pkg/models"
)

// RefKind is what a raw reference names.
type RefKind int

const (
	RefType RefKind = iota
	RefMethod
	RefField
)

// Ref is an unresolved reference found in a declaration. Arity is the
// argument count of method and constructor references.
type Ref struct {
	Kind  RefKind
	Name  string
	Arity int
}

// Usage lists the raw references made by one declaration.
type Usage struct {
	User models.Descriptor
	Refs []Ref
}

func (b *builder) use(user models.Descriptor, refs []Ref) {
	if len(refs) == 0 {
		return
	}
	b.file.Usages = append(b.file.Usages, Usage{User: user, Refs: refs})
}

// declNames are the parents whose "name" field declares rather than uses an
// identifier.
var declNames = map[string]bool{
	"variable_declarator":                 true,
	"formal_parameter":                    true,
	"catch_formal_parameter":              true,
	"spread_parameter":                    true,
	"method_declaration":                  true,
	"constructor_declaration":             true,
	"compact_constructor_declaration":     true,
	"annotation_type_element_declaration": true,
	"class_declaration":                   true,
	"interface_declaration":               true,
	"enum_declaration":                    true,
	"record_declaration":                  true,
	"annotation_type_declaration":         true,
	"enum_constant":                       true,
	"element_value_pair":                  true,
	"enhanced_for_statement":              true,
	"labeled_statement":                   true,
	"resource":                            true,
}

// localDecls introduce names that shadow fields inside a body.
var localDecls = map[string]bool{
	"variable_declarator":    true,
	"formal_parameter":       true,
	"catch_formal_parameter": true,
	"enhanced_for_statement": true,
	"resource":               true,
}

type refWalker struct {
	src    []byte
	skip   *sitter.Node
	refs   []Ref
	seen   map[Ref]bool
	locals map[string]bool
	// fields collects identifiers that may name fields; locals shadow them.
	fields []string
	member map[string]bool
}

// refs walks n, excluding the subtree skip, and returns the deduplicated
// references it contains.
func (b *builder) refs(n, skip *sitter.Node) []Ref {
	if n == nil {
		return nil
	}
	w := &refWalker{
		src:    b.src,
		skip:   skip,
		seen:   make(map[Ref]bool),
		locals: make(map[string]bool),
		member: make(map[string]bool),
	}
	w.walk(n)
	for _, name := range w.fields {
		if w.locals[name] && !w.member[name] {
			continue
		}
		w.add(Ref{Kind: RefField, Name: name})
	}
	return w.refs
}

func (w *refWalker) add(r Ref) {
	if r.Name == "" || w.seen[r] {
		return
	}
	w.seen[r] = true
	w.refs = append(w.refs, r)
}

func arity(args *sitter.Node) int {
	if args == nil {
		return 0
	}
	n := 0
	for _, c := range namedChildren(args) {
		if !isComment(c.Type()) {
			n++
		}
	}
	return n
}

// simpleTypeName is the last identifier of a possibly scoped or generic type.
func simpleTypeName(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	switch n.Type() {
	case "type_identifier", "identifier":
		return GetNodeText(n, src)
	case "generic_type":
		if c := n.NamedChild(0); c != nil {
			return simpleTypeName(c, src)
		}
	case "scoped_type_identifier", "scoped_identifier":
		if c := n.NamedChild(int(n.NamedChildCount()) - 1); c != nil {
			return simpleTypeName(c, src)
		}
	}
	return ""
}

func (w *refWalker) walk(n *sitter.Node) {
	if n == nil || sameNode(n, w.skip) || isComment(n.Type()) {
		return
	}
	switch n.Type() {
	case "type_identifier":
		w.add(Ref{Kind: RefType, Name: GetNodeText(n, w.src)})
		return
	case "method_invocation":
		args := n.ChildByFieldName("arguments")
		w.add(Ref{Kind: RefMethod, Name: GetNodeText(n.ChildByFieldName("name"), w.src), Arity: arity(args)})
		w.walk(n.ChildByFieldName("object"))
		w.walk(n.ChildByFieldName("type_arguments"))
		w.walk(args)
		return
	case "object_creation_expression":
		typ := n.ChildByFieldName("type")
		args := n.ChildByFieldName("arguments")
		w.add(Ref{Kind: RefMethod, Name: simpleTypeName(typ, w.src), Arity: arity(args)})
		for _, c := range namedChildren(n) {
			if !sameNode(c, args) {
				w.walk(c)
			}
		}
		w.walk(args)
		return
	case "marker_annotation", "annotation":
		w.add(Ref{Kind: RefType, Name: simpleTypeName(n.ChildByFieldName("name"), w.src)})
		w.walk(n.ChildByFieldName("arguments"))
		return
	case "field_access":
		w.walk(n.ChildByFieldName("object"))
		if f := n.ChildByFieldName("field"); f != nil {
			name := GetNodeText(f, w.src)
			w.member[name] = true
			w.fields = append(w.fields, name)
		}
		return
	case "identifier":
		w.identifier(n)
		return
	case "inferred_parameters":
		for _, c := range namedChildren(n) {
			w.locals[GetNodeText(c, w.src)] = true
		}
		return
	case "lambda_expression":
		if p := n.ChildByFieldName("parameters"); p != nil && p.Type() == "identifier" {
			w.locals[GetNodeText(p, w.src)] = true
			w.walk(n.ChildByFieldName("body"))
			return
		}
	}
	for i := range int(n.NamedChildCount()) {
		w.walk(n.NamedChild(i))
	}
}

func (w *refWalker) identifier(n *sitter.Node) {
	name := GetNodeText(n, w.src)
	p := n.Parent()
	if p != nil && declNames[p.Type()] && sameNode(p.ChildByFieldName("name"), n) {
		if localDecls[p.Type()] {
			w.locals[name] = true
		}
		return
	}
	w.fields = append(w.fields, name)
}

// resolver maps simple names onto the declarations of one code version.
type resolver struct {
	types   map[string][]models.Descriptor
	methods map[string][]models.Descriptor
	fields  map[string][]models.Descriptor
}

func newResolver(files []*File) *resolver {
	r := &resolver{
		types:   make(map[string][]models.Descriptor),
		methods: make(map[string][]models.Descriptor),
		fields:  make(map[string][]models.Descriptor),
	}
	for _, f := range files {
		for _, n := range f.Root.Descendants() {
			r.index(n)
		}
	}
	return r
}

func (r *resolver) index(n *decl.Node) {
	d := n.Entity()
	switch d.Kind {
	case models.KindType, models.KindInterface, models.KindEnum, models.KindRecord, models.KindAnnotationType:
		r.types[d.Name] = append(r.types[d.Name], d)
	case models.KindMethod, models.KindAnnotationMember:
		r.methods[d.Name] = append(r.methods[d.Name], d)
	case models.KindField, models.KindEnumConstant:
		r.fields[d.Name] = append(r.fields[d.Name], d)
	}
}

func (r *resolver) candidates(ref Ref) []models.Descriptor {
	switch ref.Kind {
	case RefType:
		return r.types[ref.Name]
	case RefField:
		return r.fields[ref.Name]
	}
	var out []models.Descriptor
	for _, m := range r.methods[ref.Name] {
		if m.Kind == models.KindAnnotationMember && ref.Arity == 0 {
			out = append(out, m)
			continue
		}
		if len(m.Params) == ref.Arity || (len(m.Params) > 0 && ref.Arity >= len(m.Params)-1 && strings.HasSuffix(m.Params[len(m.Params)-1], "[]")) {
			out = append(out, m)
		}
	}
	return out
}

// scope ranks how close a candidate declaration sits to its user: 3 for
// the user's own container chain, 2 for the same namespace, 1 otherwise.
func scope(user, cand models.Descriptor) int {
	own := user.QualifiedName()
	if cand.Container != "" && (own == cand.Container || strings.HasPrefix(own, cand.Container+".")) {
		return 3
	}
	if cand.Namespace == user.Namespace {
		return 2
	}
	return 1
}

// resolve returns the unique best candidate for ref, or false when the
// reference is unknown or ambiguous.
func (r *resolver) resolve(user models.Descriptor, ref Ref) (models.Descriptor, bool) {
	cands := r.candidates(ref)
	best, bestScope, ties := models.Descriptor{}, 0, 0
	for _, c := range cands {
		s := scope(user, c)
		switch {
		case s > bestScope:
			best, bestScope, ties = c, s, 1
		case s == bestScope:
			ties++
		}
	}
	return best, ties == 1
}

// BuildGraph resolves the raw usages of all files of one code version into
// a reverse usage graph. References that cannot be resolved to exactly one
// declaration are dropped.
func BuildGraph(files []*File) *graph.Graph {
	sorted := append([]*File(nil), files...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	r := newResolver(sorted)
	b := graph.NewBuilder()
	for _, f := range sorted {
		for _, u := range f.Usages {
			var used []models.Descriptor
			for _, ref := range u.Refs {
				if d, ok := r.resolve(u.User, ref); ok {
					used = append(used, d)
				}
			}
			if len(used) > 0 {
				b.Add(u.User, used...)
			}
		}
	}
	return b.Build()
}
