package matcher

import "github.com/panbanda/remapper/pkg/decl"

// fineMatch re-scores every unresolved pair until the candidate set stops
// changing or the iteration cap is hit, then promotes the survivors.
func (r *run) fineMatch() {
	for i := 1; i <= r.m.maxIterations; i++ {
		r.mp.Iterations = i
		before, after := r.pools()

		var cands []scored[*decl.Node]
		for _, b := range before {
			for _, a := range after {
				if !b.Kind().Compatible(a.Kind()) {
					continue
				}
				s := r.sc.combined(b, a)
				if s >= r.m.minDice {
					cands = append(cands, scored[*decl.Node]{before: b, after: a, score: s})
				}
			}
		}
		next := assignNodes(cands)

		if r.sameCandidates(next) {
			break
		}
		r.mp.clearCandidates()
		for _, c := range next {
			r.mp.addCandidate(c.before, c.after)
		}
	}
	r.mp.promoteCandidates()
}

// pools returns candidate ∪ deleted and candidate ∪ added, ordered by id.
func (r *run) pools() (before, after []*decl.Node) {
	for b, a := range r.mp.candidate.fwd {
		before = append(before, b)
		after = append(after, a)
	}
	for b := range r.mp.deleted {
		before = append(before, b)
	}
	for a := range r.mp.added {
		after = append(after, a)
	}
	sortNodes(before)
	sortNodes(after)
	return before, after
}

func (r *run) sameCandidates(next []scored[*decl.Node]) bool {
	if len(next) != len(r.mp.candidate.fwd) {
		return false
	}
	for _, c := range next {
		if r.mp.candidate.fwd[c.before] != c.after {
			return false
		}
	}
	return true
}
