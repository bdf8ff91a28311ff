package matcher

import "github.com/panbanda/remapper/pkg/decl"

func (r *run) matchByDice() {
	for _, path := range r.in.Changes.Modified {
		r.matchFile(r.in.Before[path], r.in.After[path])
	}
	for _, path := range r.in.Changes.RenamedBefore() {
		r.matchFile(r.in.Before[path], r.in.After[r.in.Changes.Renamed[path]])
	}

	// Whatever is left, including every entity of added and deleted files,
	// is pooled to catch moves across files.
	r.sweep()

	r.matchPool(r.mp.DeletedEntities(), r.mp.AddedEntities(), (*decl.Node).IsLeaf)
	r.matchPool(r.mp.DeletedEntities(), r.mp.AddedEntities(), (*decl.Node).IsInternal)
}

// matchFile proposes candidates among the unmatched entities of one changed
// file, leaves first so containers can build on them.
func (r *run) matchFile(b, a *decl.Node) {
	if b == nil || a == nil {
		return
	}
	r.matchPool(r.unresolved(b.LeafNodes()), r.unresolved(a.LeafNodes()), nil)
	r.matchPool(r.unresolved(b.InternalNodes()), r.unresolved(a.InternalNodes()), nil)
}

func (r *run) unresolved(nodes []*decl.Node) []*decl.Node {
	out := nodes[:0:0]
	for _, n := range nodes {
		if s := r.mp.Status(n); s == StatusNone || s == StatusDeleted || s == StatusAdded {
			out = append(out, n)
		}
	}
	return out
}

// matchPool scores every same-kind pair, keeps those reaching the minimum
// score, assigns them greedily as candidates and sends whatever is left to
// deleted or added.
func (r *run) matchPool(before, after []*decl.Node, keep func(*decl.Node) bool) {
	if keep != nil {
		before = filterNodes(before, keep)
		after = filterNodes(after, keep)
	}
	var cands []scored[*decl.Node]
	for _, b := range before {
		for _, a := range after {
			s := r.sc.similarity(b, a)
			if s >= r.m.minDice {
				cands = append(cands, scored[*decl.Node]{before: b, after: a, score: s})
			}
		}
	}
	for _, c := range assignNodes(cands) {
		r.mp.addCandidate(c.before, c.after)
	}
	for _, b := range before {
		r.mp.addDeleted(b)
	}
	for _, a := range after {
		r.mp.addAdded(a)
	}
}

func filterNodes(nodes []*decl.Node, keep func(*decl.Node) bool) []*decl.Node {
	var out []*decl.Node
	for _, n := range nodes {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}
