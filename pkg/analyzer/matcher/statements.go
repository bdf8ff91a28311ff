package matcher

import "github.com/panbanda/remapper/pkg/decl"

// matchStatements pairs the statement blocks of every entity pair. Identical
// blocks are unchanged, similar blocks of the same type are matched, and the
// rest are deleted or added. Blocks of deleted and added entities follow
// their owner.
func (r *run) matchStatements() {
	for _, p := range r.mp.MatchedEntities() {
		r.matchBlocks(p.Before.AllBlocks(), p.After.AllBlocks())
	}
	for _, p := range r.mp.UnchangedEntities() {
		r.matchBlocks(p.Before.AllBlocks(), p.After.AllBlocks())
	}
	for _, n := range r.mp.DeletedEntities() {
		for _, b := range n.AllBlocks() {
			r.mp.addStatementDeleted(b)
		}
	}
	for _, n := range r.mp.AddedEntities() {
		for _, a := range n.AllBlocks() {
			r.mp.addStatementAdded(a)
		}
	}
}

func (r *run) matchBlocks(before, after []*decl.Block) {
	claimedB := make(map[*decl.Block]struct{})
	claimedA := make(map[*decl.Block]struct{})
	for _, b := range before {
		for _, a := range after {
			if _, ok := claimedA[a]; ok {
				continue
			}
			if b.Same(a) {
				claimedB[b] = struct{}{}
				claimedA[a] = struct{}{}
				r.mp.addStatementUnchanged(b, a)
				break
			}
		}
	}

	var cands []scored[*decl.Block]
	for _, b := range before {
		if _, ok := claimedB[b]; ok {
			continue
		}
		for _, a := range after {
			if _, ok := claimedA[a]; ok || a.Type != b.Type {
				continue
			}
			if s := blockDice(b, a); s >= r.m.minStatementDice {
				cands = append(cands, scored[*decl.Block]{before: b, after: a, score: s})
			}
		}
	}
	for _, c := range assign(cands, blockLess) {
		claimedB[c.before] = struct{}{}
		claimedA[c.after] = struct{}{}
		r.mp.addStatementMatched(c.before, c.after)
	}

	for _, b := range before {
		if _, ok := claimedB[b]; !ok {
			r.mp.addStatementDeleted(b)
		}
	}
	for _, a := range after {
		if _, ok := claimedA[a]; !ok {
			r.mp.addStatementAdded(a)
		}
	}
}
