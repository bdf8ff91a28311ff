package decl

import (
	"github.com/panbanda/remapper/pkg/models"
)

// Variant is the shape of a declaration node.
type Variant int

const (
	VariantRoot Variant = iota
	VariantInternal
	VariantLeaf
)

func (v Variant) String() string {
	switch v {
	case VariantRoot:
		return "root"
	case VariantInternal:
		return "internal"
	case VariantLeaf:
		return "leaf"
	default:
		return "unknown"
	}
}

// Node is one position in a declaration tree.
type Node struct {
	id       uint32
	variant  Variant
	entity   models.Descriptor
	decl     Declaration
	path     string
	parent   *Node
	children []*Node
	archived []*Node
	matched  bool
	height   int
	deps     []models.Descriptor
	blocks   []*Block
}

// NewRoot creates the root node of the file at path.
func NewRoot(path, namespace string) *Node {
	return &Node{
		variant: VariantRoot,
		path:    path,
		entity: models.Descriptor{
			Container: namespace,
			Namespace: namespace,
			Location:  models.Location{FilePath: path},
		},
	}
}

// NewNode creates an internal or leaf node for entity depending on its kind.
func NewNode(entity models.Descriptor, d Declaration) *Node {
	v := VariantLeaf
	if entity.Kind.IsContainer() {
		v = VariantInternal
	}
	return &Node{
		variant: v,
		entity:  entity,
		decl:    d,
		path:    entity.Location.FilePath,
	}
}

// AddChild appends c to n's children.
func (n *Node) AddChild(c *Node) {
	c.parent = n
	n.children = append(n.children, c)
	c.setHeight(n.height + 1)
}

func (n *Node) setHeight(h int) {
	n.height = h
	for _, c := range n.children {
		c.setHeight(h + 1)
	}
}

func (n *Node) ID() uint32 { return n.id }
func (n *Node) Variant() Variant { return n.variant }
func (n *Node) IsRoot() bool { return n.variant == VariantRoot }
func (n *Node) IsInternal() bool { return n.variant == VariantInternal }
func (n *Node) IsLeaf() bool { return n.variant == VariantLeaf }
func (n *Node) Entity() models.Descriptor { return n.entity }
func (n *Node) Kind() models.Kind { return n.entity.Kind }
func (n *Node) Declaration() Declaration { return n.decl }
func (n *Node) Text() string { return n.decl.Text }
func (n *Node) Namespace() string { return n.entity.Namespace }
func (n *Node) Path() string { return n.path }
func (n *Node) Parent() *Node { return n.parent }
func (n *Node) Height() int { return n.height }
func (n *Node) Matched() bool { return n.matched }
func (n *Node) SetMatched(m bool) { n.matched = m }
func (n *Node) Dependencies() []models.Descriptor { return n.deps }
func (n *Node) Blocks() []*Block { return n.blocks }

// SetDependencies records the referencers of this entity.
func (n *Node) SetDependencies(deps []models.Descriptor) { n.deps = deps }

// AddBlock appends a top-level statement block of the node's body.
func (n *Node) AddBlock(b *Block) { n.blocks = append(n.blocks, b) }

// Children returns the live children.
func (n *Node) Children() []*Node { return n.children }

// HasChildren reports whether n has live children.
func (n *Node) HasChildren() bool { return len(n.children) > 0 }

// Equal reports whether n and o denote the same entity. For files that were
// renamed, containers are compared relative to each file's namespace.
func (n *Node) Equal(o *Node, renamed bool) bool {
	if n.variant != o.variant {
		return false
	}
	switch n.variant {
	case VariantRoot:
		return true
	case VariantInternal, VariantLeaf:
		if renamed {
			return n.entity.EqualRelocated(o.entity)
		}
		return n.entity.Equal(o.entity)
	default:
		return false
	}
}

// Prune removes the given children. Non-root nodes first archive their full
// child list so that ArchivedDescendants still reports the removed nodes.
// Pruning a node that has no children is a no-op.
func (n *Node) Prune(removed []*Node) {
	if len(removed) == 0 {
		return
	}
	if n.variant != VariantRoot {
		n.archive(n.children)
	}
	drop := make(map[*Node]struct{}, len(removed))
	for _, r := range removed {
		drop[r] = struct{}{}
	}
	kept := n.children[:0:0]
	for _, c := range n.children {
		if _, ok := drop[c]; !ok {
			kept = append(kept, c)
		}
	}
	n.children = kept
}

func (n *Node) archive(nodes []*Node) {
	seen := make(map[*Node]struct{}, len(n.archived))
	for _, a := range n.archived {
		seen[a] = struct{}{}
	}
	for _, c := range nodes {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		n.archived = append(n.archived, c)
	}
}

// ArchivedDescendants returns the live children together with the children
// removed by pruning, without duplicates, archived ones first.
func (n *Node) ArchivedDescendants() []*Node {
	if len(n.archived) == 0 {
		return n.children
	}
	out := make([]*Node, 0, len(n.archived)+len(n.children))
	seen := make(map[*Node]struct{}, len(n.archived))
	for _, a := range n.archived {
		seen[a] = struct{}{}
		out = append(out, a)
	}
	for _, c := range n.children {
		if _, ok := seen[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// Descendants returns every node below n, including pruned ones, in
// preorder.
func (n *Node) Descendants() []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(p *Node) {
		for _, c := range p.ArchivedDescendants() {
			out = append(out, c)
			walk(c)
		}
	}
	walk(n)
	return out
}

// AllNodes returns the live nodes below n in preorder.
func (n *Node) AllNodes() []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(p *Node) {
		for _, c := range p.children {
			out = append(out, c)
			walk(c)
		}
	}
	walk(n)
	return out
}

// UnmatchedNodes returns the live nodes below n that are not matched.
func (n *Node) UnmatchedNodes() []*Node {
	return n.filter(func(c *Node) bool { return !c.matched })
}

// LeafNodes returns the unmatched live leaves below n.
func (n *Node) LeafNodes() []*Node {
	return n.filter(func(c *Node) bool { return !c.matched && c.variant == VariantLeaf })
}

// InternalNodes returns the unmatched live internal nodes below n.
func (n *Node) InternalNodes() []*Node {
	return n.filter(func(c *Node) bool { return !c.matched && c.variant == VariantInternal })
}

func (n *Node) filter(keep func(*Node) bool) []*Node {
	var out []*Node
	for _, c := range n.AllNodes() {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// Subtree returns n and every node below it, pruned ones included.
func (n *Node) Subtree() []*Node {
	return append([]*Node{n}, n.Descendants()...)
}

// AssignIDs numbers the given trees in preorder starting at next and returns
// the next free id.
func AssignIDs(next uint32, roots ...*Node) uint32 {
	for _, r := range roots {
		for _, n := range r.Subtree() {
			n.id = next
			next++
		}
	}
	return next
}
