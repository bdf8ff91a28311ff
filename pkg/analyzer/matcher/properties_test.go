package matcher

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/remapper/pkg/decl"
	"github.com/panbanda/remapper/pkg/models"
)

// scenario builds a commit touching several files: a modified file with a
// rename, a changed body and a removal, a renamed file, a deleted and an
// added file.
func scenario() Input {
	before := map[string]*decl.Node{
		"Account.java": file("Account.java", class("Account",
			field("p.Account", "balance", "long", "private long balance ;"),
			field("p.Account", "owner", "String", "private String owner ;"),
			method("p.Account", "deposit", "", "void deposit ( long v ) { balance += v ; }", "long"),
			method("p.Account", "withdraw", "", "void withdraw ( long v ) { balance -= v ; }", "long"),
			method("p.Account", "audit", "", "void audit ( ) { log ( balance ) ; }"),
		)),
		"Util.java": file("Util.java", class("Util",
			method("p.Util", "clamp", "int", "static int clamp ( int v ) { return v < 0 ? 0 : v ; }", "int"),
		)),
		"Legacy.java": file("Legacy.java", class("Legacy",
			method("p.Legacy", "old", "", "void old ( ) { }"),
		)),
	}
	after := map[string]*decl.Node{
		"Account.java": file("Account.java", class("Account",
			field("p.Account", "balance", "long", "private long balance ;"),
			method("p.Account", "credit", "", "void credit ( long v ) { balance += v ; }", "long"),
			method("p.Account", "withdraw", "", "void withdraw ( long v ) { check ( v ) ; balance -= v ; }", "long"),
			method("p.Account", "audit", "", "void audit ( ) { log ( balance ) ; }"),
		)),
		"Utils.java": file("Utils.java", class("Util",
			method("p.Util", "clamp", "int", "static int clamp ( int v ) { return v < 0 ? 0 : v ; }", "int"),
		)),
		"Fresh.java": file("Fresh.java", class("Fresh",
			field("p.Fresh", "flag", "boolean", "boolean flag ;"),
		)),
	}
	return Input{
		Before: before,
		After:  after,
		Changes: models.FileChanges{
			Modified: []string{"Account.java"},
			Renamed:  map[string]string{"Util.java": "Utils.java"},
			Deleted:  []string{"Legacy.java"},
			Added:    []string{"Fresh.java"},
		},
	}
}

func allEntities(trees map[string]*decl.Node) []*decl.Node {
	var out []*decl.Node
	for _, r := range trees {
		out = append(out, r.Descendants()...)
	}
	return out
}

func TestPartitionInvariant(t *testing.T) {
	in := scenario()
	befores, afters := allEntities(in.Before), allEntities(in.After)

	mp, err := New().Match(context.Background(), in)
	require.NoError(t, err)
	assertPartition(t, befores, afters, mp)

	assert.Contains(t, names(mp.MatchedEntities()), "deposit->credit")
	assert.Contains(t, names(mp.MatchedEntities()), "withdraw->withdraw")
	assert.Contains(t, nodeNames(mp.DeletedEntities()), "owner")
	assert.Contains(t, nodeNames(mp.AddedEntities()), "flag")
}

// assertPartition checks that every entity of both versions sits in exactly
// one relation and that the relation sizes add up.
func assertPartition(t *testing.T, befores, afters []*decl.Node, mp *MatchPair) {
	t.Helper()
	counts := map[Status]int{}
	for _, n := range befores {
		s := mp.Status(n)
		assert.Contains(t, []Status{StatusMatched, StatusUnchanged, StatusDeleted}, s, n.Entity().String())
		counts[s]++
	}
	for _, n := range afters {
		s := mp.Status(n)
		assert.Contains(t, []Status{StatusMatched, StatusUnchanged, StatusAdded}, s, n.Entity().String())
	}

	assert.Equal(t, len(mp.MatchedEntities()), counts[StatusMatched])
	assert.Equal(t, len(mp.UnchangedEntities()), counts[StatusUnchanged])
	assert.Equal(t, len(mp.DeletedEntities()), counts[StatusDeleted])
	assert.Empty(t, mp.CandidateEntities())
	assert.Equal(t, len(befores)+len(afters),
		2*len(mp.MatchedEntities())+2*len(mp.UnchangedEntities())+len(mp.DeletedEntities())+len(mp.AddedEntities()))
}

func TestBrokenTreeOnlyStopsItsOwnFile(t *testing.T) {
	x := field("p.A", "x", "int", "int x ;")
	beforeA := file("A.java", class("A", x,
		method("p.A", "y", "", "void y ( ) { }"),
	))
	// x stays listed under A but now points at another parent.
	class("Stray").AddChild(x)
	afterA := file("A.java", class("A",
		field("p.A", "x", "int", "int x ;"),
		method("p.A", "y", "", "void y ( ) { run ( ) ; }"),
	))

	q := field("p.B", "q", "int", "int q ;")
	beforeB := file("B.java", class("B", q,
		method("p.B", "m", "", "void m ( ) { }"),
	))
	afterB := file("B.java", class("B",
		field("p.B", "q", "int", "int q ;"),
		method("p.B", "m", "", "void m ( ) { stop ( ) ; }"),
	))

	in := Input{
		Before:  map[string]*decl.Node{"A.java": beforeA, "B.java": beforeB},
		After:   map[string]*decl.Node{"A.java": afterA, "B.java": afterB},
		Changes: models.FileChanges{Modified: []string{"A.java", "B.java"}},
	}
	befores, afters := allEntities(in.Before), allEntities(in.After)

	var afterPrune map[*decl.Node]Status
	hook := func(p Phase, mp *MatchPair) {
		if p == PhasePrune {
			afterPrune = map[*decl.Node]Status{x: mp.Status(x), q: mp.Status(q)}
		}
	}
	mp, err := New(WithPhaseHook(hook)).Match(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, StatusUnchanged, afterPrune[q], "B prunes normally")
	assert.NotEqual(t, StatusUnchanged, afterPrune[x], "A is left to the later phases")
	assertPartition(t, befores, afters, mp)
	assert.Contains(t, names(mp.UnchangedEntities()), "x->x")
	assert.Contains(t, names(mp.MatchedEntities()), "y->y")
	assert.Empty(t, mp.DeletedEntities())
	assert.Empty(t, mp.AddedEntities())
}

func TestDeterminism(t *testing.T) {
	snapshot := func() string {
		mp, err := New().Match(context.Background(), scenario())
		require.NoError(t, err)
		return fmt.Sprint(
			names(mp.MatchedEntities()),
			names(mp.UnchangedEntities()),
			nodeNames(mp.DeletedEntities()),
			nodeNames(mp.AddedEntities()),
		)
	}
	first := snapshot()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, snapshot())
	}
}

func TestMonotonicNarrowing(t *testing.T) {
	var unresolved []int
	hook := func(_ Phase, mp *MatchPair) { unresolved = append(unresolved, mp.Unresolved()) }

	_, err := New(WithPhaseHook(hook)).Match(context.Background(), scenario())
	require.NoError(t, err)

	require.Len(t, unresolved, 8)
	for i := 1; i < len(unresolved); i++ {
		assert.LessOrEqual(t, unresolved[i], unresolved[i-1], "phase %d", i)
	}
}

func TestPendingNeverGrowsAfterPooling(t *testing.T) {
	var pending []int
	hook := func(p Phase, mp *MatchPair) {
		switch p {
		case PhaseDice, PhaseFixpoint, PhaseByName, PhaseByDice, PhaseFilter:
			pending = append(pending, mp.Pending())
		}
	}
	_, err := New(WithPhaseHook(hook)).Match(context.Background(), scenario())
	require.NoError(t, err)
	for i := 1; i < len(pending); i++ {
		assert.LessOrEqual(t, pending[i], pending[i-1])
	}
}

func TestFixpointBound(t *testing.T) {
	for _, max := range []int{1, 3, DefaultMaxIterations} {
		t.Run(fmt.Sprint(max), func(t *testing.T) {
			mp, err := New(WithMaxIterations(max)).Match(context.Background(), scenario())
			require.NoError(t, err)
			assert.GreaterOrEqual(t, mp.Iterations, 1)
			assert.LessOrEqual(t, mp.Iterations, max)
		})
	}
}

func TestAssignTieBreak(t *testing.T) {
	root := file("A.java", method("p", "a", "", "a"), method("p", "b", "", "b"), method("p", "c", "", "c"))
	decl.AssignIDs(1, root)
	n := root.Children()

	cands := []scored[*decl.Node]{
		{before: n[1], after: n[2], score: 0.9},
		{before: n[0], after: n[2], score: 0.9},
		{before: n[0], after: n[1], score: 0.7},
		{before: n[1], after: n[0], score: 0.95},
	}
	got := assignNodes(cands)
	require.Len(t, got, 2)
	assert.Equal(t, n[1], got[0].before)
	assert.Equal(t, n[0], got[0].after)
	assert.Equal(t, n[0], got[1].before, "equal scores fall back to the lower before id")
	assert.Equal(t, n[2], got[1].after)
}

func TestEnumEvidence(t *testing.T) {
	enum := func(container string, consts ...string) *decl.Node {
		var members []*decl.Node
		members = append(members, method(container+".Color", "hex", "String", "String hex ( ) { return code ; }"))
		for _, c := range consts {
			members = append(members, decl.NewNode(models.Descriptor{
				Kind: models.KindEnumConstant, Name: c, Container: container + ".Color", Namespace: container,
			}, decl.NewDeclaration([]string{c})))
		}
		return typeDecl(models.KindEnum, container, "Color", members...)
	}
	b := enum("p", "RED", "GREEN")
	a := enum("q", "RED", "BLUE")
	decl.AssignIDs(1, b, a)

	r := &run{m: New(), mp: NewMatchPair(0)}
	_, ok := r.enumEvidence(b, a)
	assert.False(t, ok, "nothing paired yet")

	bc, ac := b.Children(), a.Children()
	r.mp.addMatched(bc[0], ac[0])
	_, ok = r.enumEvidence(b, a)
	assert.False(t, ok, "no constant paired")

	r.mp.addCandidate(bc[1], ac[1])
	score, ok := r.enumEvidence(b, a)
	assert.True(t, ok)
	assert.Equal(t, 1.0, score)

	other := typeDecl(models.KindEnum, "q", "Shade")
	_, ok = r.enumEvidence(b, other)
	assert.False(t, ok, "names differ")
}

func TestTrivialTypes(t *testing.T) {
	marker := func(name string) *decl.Node { return class(name) }
	r1, r2 := file("A.java", marker("A")), file("B.java", marker("B"))
	a, b := r1.Children()[0], r2.Children()[0]
	assert.True(t, trivialTypes(a, b))

	withMember := class("C", field("p.C", "f", "int", "int f ;"))
	file("C.java", withMember)
	assert.False(t, trivialTypes(a, withMember))

	nested := class("D")
	file("O.java", class("Outer", nested))
	assert.False(t, trivialTypes(a, nested), "height must be 1")
}

func TestTrivialTypesIgnorePrunedMembers(t *testing.T) {
	f := field("p.C", "f", "int", "int f ;")
	withPruned := class("C", f)
	file("C.java", withPruned)
	marker := class("M")
	file("M.java", marker)
	require.False(t, trivialTypes(marker, withPruned))

	withPruned.Prune([]*decl.Node{f})
	require.Len(t, withPruned.ArchivedDescendants(), 1)
	assert.True(t, trivialTypes(marker, withPruned), "only live members count")
}

func TestEnumEvidenceIgnoresPrunedMembers(t *testing.T) {
	enum := func(container string) *decl.Node {
		return typeDecl(models.KindEnum, container, "Color",
			method(container+".Color", "hex", "String", "String hex ( ) { return code ; }"),
			method(container+".Color", "name", "String", "String name ( ) { return n ; }"),
			decl.NewNode(models.Descriptor{
				Kind: models.KindEnumConstant, Name: "RED", Container: container + ".Color", Namespace: container,
			}, decl.NewDeclaration([]string{"RED"})),
		)
	}
	b, a := enum("p"), enum("q")
	decl.AssignIDs(1, b, a)
	bc, ac := b.Children(), a.Children()

	r := &run{m: New(), mp: NewMatchPair(0)}
	r.mp.addMatched(bc[0], ac[0])
	r.mp.addMatched(bc[2], ac[2])
	_, ok := r.enumEvidence(b, a)
	require.False(t, ok, "name() is not paired")

	// name() was pruned as unchanged in both versions.
	b.Prune([]*decl.Node{bc[1]})
	a.Prune([]*decl.Node{ac[1]})
	score, ok := r.enumEvidence(b, a)
	assert.True(t, ok)
	assert.Equal(t, 1.0, score)
}

func TestFallbackDiceAcceptsTrivialTypes(t *testing.T) {
	mkMarker := func(path, name, header string) *decl.Node {
		d := decl.NewDeclaration(tokens(header + " { }"))
		d.HeaderTokens = tokens(header)
		d.Public = true
		n := decl.NewNode(models.Descriptor{Kind: models.KindType, Name: name, Container: ns, Namespace: ns}, d)
		return file(path, n)
	}
	mp, err := New().Match(context.Background(), Input{
		Before:  map[string]*decl.Node{"Tag.java": mkMarker("Tag.java", "Tag", "@ Deprecated public final class Tag")},
		After:   map[string]*decl.Node{"Label.java": mkMarker("Label.java", "Label", "public class Label implements Serializable")},
		Changes: models.FileChanges{Deleted: []string{"Tag.java"}, Added: []string{"Label.java"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Tag->Label"}, names(mp.MatchedEntities()))
}
