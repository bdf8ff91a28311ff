// Package graph stores the reverse usage edges of one code version: for every
// declared entity, the entities whose declarations reference it.
package graph

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/panbanda/remapper/pkg/decl"
	"github.com/panbanda/remapper/pkg/models"
)

// Builder accumulates usage edges. It is not safe for concurrent use.
type Builder struct {
	directed *simple.DirectedGraph
	keyToID  map[string]int64
	idToDesc map[int64]models.Descriptor
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		directed: simple.NewDirectedGraph(),
		keyToID:  make(map[string]int64),
		idToDesc: make(map[int64]models.Descriptor),
	}
}

func (b *Builder) node(d models.Descriptor) int64 {
	key := d.Key()
	if id, ok := b.keyToID[key]; ok {
		return id
	}
	id := int64(len(b.keyToID))
	b.keyToID[key] = id
	b.idToDesc[id] = d
	b.directed.AddNode(simple.Node(id))
	return id
}

// Add records that user references each of used. References from an entity
// to itself are dropped.
func (b *Builder) Add(user models.Descriptor, used ...models.Descriptor) {
	for _, u := range used {
		if u.Equal(user) {
			continue
		}
		from := b.node(u)
		to := b.node(user)
		if b.directed.HasEdgeFromTo(from, to) {
			continue
		}
		b.directed.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
	}
}

// Build freezes the builder into a Graph. The builder must not be used
// afterwards.
func (b *Builder) Build() *Graph {
	g := &Graph{
		directed: b.directed,
		keyToID:  b.keyToID,
		idToDesc: b.idToDesc,
	}
	b.directed, b.keyToID, b.idToDesc = nil, nil, nil
	return g
}

// Graph is an immutable reverse usage graph. A nil *Graph has no edges.
type Graph struct {
	directed *simple.DirectedGraph
	keyToID  map[string]int64
	idToDesc map[int64]models.Descriptor
}

// Referencers returns the entities that reference d, sorted by key.
func (g *Graph) Referencers(d models.Descriptor) []models.Descriptor {
	if g == nil {
		return nil
	}
	id, ok := g.keyToID[d.Key()]
	if !ok {
		return nil
	}
	it := g.directed.From(id)
	out := make([]models.Descriptor, 0, it.Len())
	for it.Next() {
		out = append(out, g.idToDesc[it.Node().ID()])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// Nodes returns the number of entities known to the graph.
func (g *Graph) Nodes() int {
	if g == nil {
		return 0
	}
	return len(g.keyToID)
}

// Edges returns the number of usage edges.
func (g *Graph) Edges() int {
	if g == nil {
		return 0
	}
	return g.directed.Edges().Len()
}

// Attach stores the referencers of every entity on its declaration node.
func (g *Graph) Attach(roots map[string]*decl.Node) {
	for _, root := range roots {
		for _, n := range root.Subtree() {
			if n.IsRoot() {
				continue
			}
			n.SetDependencies(g.Referencers(n.Entity()))
		}
	}
}
