package matcher

import (
	"github.com/panbanda/remapper/pkg/decl"
	"github.com/panbanda/remapper/pkg/models"
)

// matchByName pairs leftover entities that share a descriptor, and enums
// of the same name whose members are already paired.
func (r *run) matchByName() {
	before, after := r.mp.DeletedEntities(), r.mp.AddedEntities()
	var cands []scored[*decl.Node]
	for _, b := range before {
		for _, a := range after {
			if b.Equal(a, false) {
				cands = append(cands, scored[*decl.Node]{before: b, after: a, score: r.sc.similarity(b, a)})
				continue
			}
			if score, ok := r.enumEvidence(b, a); ok {
				cands = append(cands, scored[*decl.Node]{before: b, after: a, score: score})
			}
		}
	}
	for _, c := range assignNodes(cands) {
		r.mp.addMatched(c.before, c.after)
	}
}

// enumEvidence accepts two same-named enums when every member that is not
// a constant is paired across them and at least one constant is. The score
// is the number of paired constants.
func (r *run) enumEvidence(b, a *decl.Node) (float64, bool) {
	if b.Kind() != models.KindEnum || a.Kind() != models.KindEnum || b.Entity().Name != a.Entity().Name {
		return 0, false
	}
	bMembers, bConsts := splitEnum(b)
	aMembers, aConsts := splitEnum(a)
	if len(bMembers) == 0 || len(bMembers) != len(aMembers) {
		return 0, false
	}
	inA := make(map[*decl.Node]struct{}, len(aMembers)+len(aConsts))
	for _, n := range aMembers {
		inA[n] = struct{}{}
	}
	for _, n := range aConsts {
		inA[n] = struct{}{}
	}
	for _, m := range bMembers {
		p := r.mp.Partner(m)
		if p == nil {
			return 0, false
		}
		if _, ok := inA[p]; !ok {
			return 0, false
		}
	}
	paired := 0
	for _, c := range bConsts {
		if p := r.mp.Partner(c); p != nil {
			if _, ok := inA[p]; ok {
				paired++
			}
		}
	}
	if paired == 0 {
		return 0, false
	}
	return float64(paired), true
}

func splitEnum(n *decl.Node) (members, consts []*decl.Node) {
	for _, c := range n.Children() {
		if c.Kind() == models.KindEnumConstant {
			consts = append(consts, c)
		} else {
			members = append(members, c)
		}
	}
	return members, consts
}

// matchByFallbackDice pairs leftover same-kind entities that score above the
// fallback threshold. Trivial top-level public types in the same namespace
// are accepted outright.
func (r *run) matchByFallbackDice() {
	before, after := r.mp.DeletedEntities(), r.mp.AddedEntities()
	var cands []scored[*decl.Node]
	for _, b := range before {
		for _, a := range after {
			if b.Kind() != a.Kind() {
				continue
			}
			if trivialTypes(b, a) {
				cands = append(cands, scored[*decl.Node]{before: b, after: a, score: 1})
				continue
			}
			if s := r.sc.similarity(b, a); s > r.m.fallbackDice {
				cands = append(cands, scored[*decl.Node]{before: b, after: a, score: s})
			}
		}
	}
	for _, c := range assignNodes(cands) {
		r.mp.addMatched(c.before, c.after)
	}
}

func trivialTypes(b, a *decl.Node) bool {
	for _, n := range []*decl.Node{b, a} {
		if !n.IsInternal() || n.HasChildren() || len(n.Dependencies()) > 0 ||
			n.Height() != 1 || !n.Declaration().Public {
			return false
		}
	}
	return b.Namespace() == a.Namespace()
}
