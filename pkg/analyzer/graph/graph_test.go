package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/remapper/pkg/decl"
	"github.com/panbanda/remapper/pkg/models"
)

func desc(kind models.Kind, container, name string) models.Descriptor {
	return models.Descriptor{Kind: kind, Container: container, Name: name, Namespace: "p"}
}

func TestReferencers(t *testing.T) {
	typeA := desc(models.KindType, "p", "A")
	field := desc(models.KindField, "p.B", "a")
	method := desc(models.KindMethod, "p.B", "useA")

	b := NewBuilder()
	b.Add(field, typeA)
	b.Add(method, typeA)
	b.Add(method, typeA) // duplicate edge
	g := b.Build()

	refs := g.Referencers(typeA)
	require.Len(t, refs, 2)
	assert.Equal(t, "a", refs[0].Name, "referencers are sorted by key")
	assert.Equal(t, "useA", refs[1].Name)
	assert.Empty(t, g.Referencers(field))
	assert.Equal(t, 3, g.Nodes())
	assert.Equal(t, 2, g.Edges())
}

func TestSelfReferenceExcluded(t *testing.T) {
	m := desc(models.KindMethod, "p.A", "recurse")
	redeclared := m
	redeclared.Location = models.Location{FilePath: "A.java", StartLine: 10}

	b := NewBuilder()
	b.Add(m, redeclared)
	g := b.Build()

	assert.Empty(t, g.Referencers(m))
	assert.Equal(t, 0, g.Edges())
}

func TestNilGraph(t *testing.T) {
	var g *Graph
	assert.Nil(t, g.Referencers(desc(models.KindType, "p", "A")))
	assert.Equal(t, 0, g.Nodes())
	assert.Equal(t, 0, g.Edges())
}

func TestAttach(t *testing.T) {
	typeA := desc(models.KindType, "p", "A")
	user := desc(models.KindMethod, "p.B", "make")

	root := decl.NewRoot("A.java", "p")
	a := decl.NewNode(typeA, decl.Declaration{})
	root.AddChild(a)

	b := NewBuilder()
	b.Add(user, typeA)
	g := b.Build()
	g.Attach(map[string]*decl.Node{"A.java": root})

	require.Len(t, a.Dependencies(), 1)
	assert.True(t, a.Dependencies()[0].Equal(user))
	assert.Empty(t, root.Dependencies())
}

func TestVersionsDoNotLeak(t *testing.T) {
	typeA := desc(models.KindType, "p", "A")
	before := NewBuilder()
	before.Add(desc(models.KindField, "p.B", "a"), typeA)
	after := NewBuilder()

	gb, ga := before.Build(), after.Build()
	assert.Len(t, gb.Referencers(typeA), 1)
	assert.Empty(t, ga.Referencers(typeA))
}
