package matcher

import (
	"sort"

	"github.com/panbanda/remapper/pkg/decl"
)

type scored[T comparable] struct {
	before T
	after  T
	score  float64
}

// assign is the greedy one-to-one assignment used by every phase: highest
// score first, ties broken by less on the before side and then on the after
// side, skipping anything already claimed.
func assign[T comparable](cands []scored[T], less func(a, b T) bool) []scored[T] {
	sort.SliceStable(cands, func(i, j int) bool {
		ci, cj := cands[i], cands[j]
		if ci.score != cj.score {
			return ci.score > cj.score
		}
		if ci.before != cj.before {
			return less(ci.before, cj.before)
		}
		return less(ci.after, cj.after)
	})

	claimedB := make(map[T]struct{})
	claimedA := make(map[T]struct{})
	var out []scored[T]
	for _, c := range cands {
		if _, ok := claimedB[c.before]; ok {
			continue
		}
		if _, ok := claimedA[c.after]; ok {
			continue
		}
		claimedB[c.before] = struct{}{}
		claimedA[c.after] = struct{}{}
		out = append(out, c)
	}
	return out
}

func nodeLess(a, b *decl.Node) bool { return a.ID() < b.ID() }

func blockLess(a, b *decl.Block) bool { return a.Location.Less(b.Location) }

func assignNodes(cands []scored[*decl.Node]) []scored[*decl.Node] {
	return assign(cands, nodeLess)
}
