package matcher

import (
	"sort"

	"github.com/panbanda/remapper/pkg/decl"
)

// Status is the relation an entity belongs to.
type Status string

const (
	StatusNone      Status = ""
	StatusMatched   Status = "matched"
	StatusCandidate Status = "candidate"
	StatusUnchanged Status = "unchanged"
	StatusDeleted   Status = "deleted"
	StatusAdded     Status = "added"
)

// EntityPair is a before/after entity correspondence.
type EntityPair struct {
	Before *decl.Node
	After  *decl.Node
}

// StatementPair is a before/after statement block correspondence.
type StatementPair struct {
	Before *decl.Block
	After  *decl.Block
}

type relation struct {
	fwd map[*decl.Node]*decl.Node
	rev map[*decl.Node]*decl.Node
}

func newRelation() relation {
	return relation{
		fwd: make(map[*decl.Node]*decl.Node),
		rev: make(map[*decl.Node]*decl.Node),
	}
}

func (r relation) put(b, a *decl.Node) {
	r.fwd[b] = a
	r.rev[a] = b
}

func (r relation) drop(b, a *decl.Node) {
	delete(r.fwd, b)
	delete(r.rev, a)
}

func (r relation) pairs() []EntityPair {
	out := make([]EntityPair, 0, len(r.fwd))
	for b, a := range r.fwd {
		out = append(out, EntityPair{Before: b, After: a})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before.ID() < out[j].Before.ID() })
	return out
}

type nodeSet map[*decl.Node]struct{}

func (s nodeSet) sorted() []*decl.Node {
	out := make([]*decl.Node, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sortNodes(out)
	return out
}

func sortNodes(nodes []*decl.Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
}

// MatchPair is the working set threaded through every matching phase. It is
// not safe for concurrent use.
type MatchPair struct {
	matched   relation
	candidate relation
	unchanged relation
	deleted   nodeSet
	added     nodeSet

	stmtMatched   map[*decl.Block]*decl.Block
	stmtUnchanged map[*decl.Block]*decl.Block
	stmtDeleted   map[*decl.Block]struct{}
	stmtAdded     map[*decl.Block]struct{}

	universe int
	// Iterations is the number of fine matching rounds that ran.
	Iterations int
}

// NewMatchPair creates an empty aggregate over universe entities.
func NewMatchPair(universe int) *MatchPair {
	return &MatchPair{
		matched:       newRelation(),
		candidate:     newRelation(),
		unchanged:     newRelation(),
		deleted:       make(nodeSet),
		added:         make(nodeSet),
		stmtMatched:   make(map[*decl.Block]*decl.Block),
		stmtUnchanged: make(map[*decl.Block]*decl.Block),
		stmtDeleted:   make(map[*decl.Block]struct{}),
		stmtAdded:     make(map[*decl.Block]struct{}),
		universe:      universe,
	}
}

// Status returns the relation n currently belongs to.
func (mp *MatchPair) Status(n *decl.Node) Status {
	switch {
	case mp.matched.fwd[n] != nil || mp.matched.rev[n] != nil:
		return StatusMatched
	case mp.unchanged.fwd[n] != nil || mp.unchanged.rev[n] != nil:
		return StatusUnchanged
	case mp.candidate.fwd[n] != nil || mp.candidate.rev[n] != nil:
		return StatusCandidate
	}
	if _, ok := mp.deleted[n]; ok {
		return StatusDeleted
	}
	if _, ok := mp.added[n]; ok {
		return StatusAdded
	}
	return StatusNone
}

// Partner returns the entity paired with n by the matched, unchanged or
// candidate relation, or nil.
func (mp *MatchPair) Partner(n *decl.Node) *decl.Node {
	for _, r := range []relation{mp.matched, mp.unchanged, mp.candidate} {
		if p := r.fwd[n]; p != nil {
			return p
		}
		if p := r.rev[n]; p != nil {
			return p
		}
	}
	return nil
}

func (mp *MatchPair) resolved(n *decl.Node) bool {
	s := mp.Status(n)
	return s == StatusMatched || s == StatusUnchanged
}

func (mp *MatchPair) release(b, a *decl.Node) {
	delete(mp.deleted, b)
	delete(mp.added, a)
	if p := mp.candidate.fwd[b]; p != nil {
		mp.candidate.drop(b, p)
	}
	if p := mp.candidate.rev[a]; p != nil {
		mp.candidate.drop(p, a)
	}
}

func (mp *MatchPair) addMatched(b, a *decl.Node) {
	mp.release(b, a)
	mp.matched.put(b, a)
	b.SetMatched(true)
	a.SetMatched(true)
}

func (mp *MatchPair) addUnchanged(b, a *decl.Node) {
	mp.release(b, a)
	mp.unchanged.put(b, a)
	b.SetMatched(true)
	a.SetMatched(true)
}

func (mp *MatchPair) addCandidate(b, a *decl.Node) {
	mp.release(b, a)
	mp.candidate.put(b, a)
}

func (mp *MatchPair) addDeleted(b *decl.Node) {
	if mp.Status(b) == StatusNone {
		mp.deleted[b] = struct{}{}
	}
}

func (mp *MatchPair) addAdded(a *decl.Node) {
	if mp.Status(a) == StatusNone {
		mp.added[a] = struct{}{}
	}
}

// clearCandidates returns every candidate to the deleted and added pools.
func (mp *MatchPair) clearCandidates() {
	for b, a := range mp.candidate.fwd {
		mp.candidate.drop(b, a)
		mp.deleted[b] = struct{}{}
		mp.added[a] = struct{}{}
	}
}

func (mp *MatchPair) promoteCandidates() {
	for _, p := range mp.candidate.pairs() {
		mp.addMatched(p.Before, p.After)
	}
}

func (mp *MatchPair) unchange(b, a *decl.Node) {
	mp.matched.drop(b, a)
	mp.unchanged.put(b, a)
}

func (mp *MatchPair) MatchedEntities() []EntityPair { return mp.matched.pairs() }
func (mp *MatchPair) UnchangedEntities() []EntityPair { return mp.unchanged.pairs() }
func (mp *MatchPair) CandidateEntities() []EntityPair { return mp.candidate.pairs() }
func (mp *MatchPair) DeletedEntities() []*decl.Node { return mp.deleted.sorted() }
func (mp *MatchPair) AddedEntities() []*decl.Node { return mp.added.sorted() }

// Unresolved counts the entities that are neither matched nor unchanged.
// It never grows as phases run.
func (mp *MatchPair) Unresolved() int {
	return mp.universe - 2*(len(mp.matched.fwd)+len(mp.unchanged.fwd))
}

// Pending counts entities sitting in the deleted, added or candidate
// relations.
func (mp *MatchPair) Pending() int {
	return len(mp.deleted) + len(mp.added) + 2*len(mp.candidate.fwd)
}

func (mp *MatchPair) addStatementMatched(b, a *decl.Block) { mp.stmtMatched[b] = a }
func (mp *MatchPair) addStatementUnchanged(b, a *decl.Block) { mp.stmtUnchanged[b] = a }
func (mp *MatchPair) addStatementDeleted(b *decl.Block) { mp.stmtDeleted[b] = struct{}{} }
func (mp *MatchPair) addStatementAdded(a *decl.Block) { mp.stmtAdded[a] = struct{}{} }

// MatchedStatements returns changed statement block pairs.
func (mp *MatchPair) MatchedStatements() []StatementPair { return blockPairs(mp.stmtMatched) }

// UnchangedStatements returns identical statement block pairs.
func (mp *MatchPair) UnchangedStatements() []StatementPair { return blockPairs(mp.stmtUnchanged) }

// DeletedStatements returns before blocks with no counterpart.
func (mp *MatchPair) DeletedStatements() []*decl.Block { return blockSet(mp.stmtDeleted) }

// AddedStatements returns after blocks with no counterpart.
func (mp *MatchPair) AddedStatements() []*decl.Block { return blockSet(mp.stmtAdded) }

func blockPairs(m map[*decl.Block]*decl.Block) []StatementPair {
	out := make([]StatementPair, 0, len(m))
	for b, a := range m {
		out = append(out, StatementPair{Before: b, After: a})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before.Location.Less(out[j].Before.Location) })
	return out
}

func blockSet(m map[*decl.Block]struct{}) []*decl.Block {
	out := make([]*decl.Block, 0, len(m))
	for b := range m {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Location.Less(out[j].Location) })
	return out
}
