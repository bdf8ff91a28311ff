package matcher

import (
	"errors"
	"fmt"

	"github.com/panbanda/remapper/pkg/decl"
)

// ErrPruneContract is returned when a child does not point back at the
// parent it is listed under.
var ErrPruneContract = errors.New("declaration tree child without parent")

func (r *run) prune() {
	for _, path := range r.in.Changes.Modified {
		b, a := r.in.Before[path], r.in.After[path]
		if b == nil || a == nil {
			continue
		}
		p := &pruner{mp: r.mp}
		if err := p.tree(b, a); err != nil {
			r.m.logger.Warn("pruning aborted", "file", path, "error", err)
		}
	}
	for _, path := range r.in.Changes.RenamedBefore() {
		renamed := r.in.Changes.Renamed[path]
		b, a := r.in.Before[path], r.in.After[renamed]
		if b == nil || a == nil {
			continue
		}
		p := &pruner{mp: r.mp, renamed: true}
		if err := p.tree(b, a); err != nil {
			r.m.logger.Warn("pruning aborted", "file", path, "renamed", renamed, "error", err)
		}
	}
}

// pruner removes textually identical subtrees from one pair of file trees.
// In modified files identical pairs become unchanged; in renamed files they
// become matched since the file identity changed.
type pruner struct {
	mp      *MatchPair
	renamed bool
}

func (p *pruner) tree(b, a *decl.Node) error {
	if b.HasChildren() && a.HasChildren() {
		return p.children(b, a, false)
	}
	return nil
}

// node reports whether b and a are identical. Differing nodes with children
// on both sides are searched further.
func (p *pruner) node(b, a *decl.Node, relaxed bool) (bool, error) {
	if b.Text() == a.Text() {
		return true, nil
	}
	if b.HasChildren() && a.HasChildren() {
		return false, p.children(b, a, relaxed)
	}
	return false, nil
}

func (p *pruner) same(b, a *decl.Node, relaxed bool) bool {
	if relaxed {
		return b.Variant() == a.Variant() && b.Entity().EqualLocal(a.Entity())
	}
	return b.Equal(a, p.renamed)
}

// children prunes the children of pb against those of pa. relaxed is set
// when the parents themselves do not share an identity, in which case the
// children are compared without their container.
func (p *pruner) children(pb, pa *decl.Node, relaxed bool) error {
	for _, c := range pb.Children() {
		if c.Parent() != pb {
			return fmt.Errorf("%w: %s", ErrPruneContract, c.Entity())
		}
	}
	for _, c := range pa.Children() {
		if c.Parent() != pa {
			return fmt.Errorf("%w: %s", ErrPruneContract, c.Entity())
		}
	}

	var delB, delA []*decl.Node
	claimed := make(map[*decl.Node]struct{})
	searched := make(map[*decl.Node]struct{})
	for _, n1 := range pb.Children() {
		for _, n2 := range pa.Children() {
			if _, ok := claimed[n2]; ok {
				continue
			}
			if !p.same(n1, n2, relaxed) {
				continue
			}
			searched[n1] = struct{}{}
			searched[n2] = struct{}{}
			equal, err := p.node(n1, n2, false)
			if err != nil {
				return err
			}
			if !equal {
				continue
			}
			claimed[n2] = struct{}{}
			delB = append(delB, n1)
			delA = append(delA, n2)
			p.record(n1, n2)
			break
		}
	}

	// Containers that did not line up by identity, such as a renamed class,
	// are searched against the sibling sharing the most identical members.
	for _, n1 := range pb.Children() {
		if _, ok := searched[n1]; ok || !n1.IsInternal() || !n1.HasChildren() {
			continue
		}
		var best *decl.Node
		bestShared := 0
		for _, n2 := range pa.Children() {
			if _, ok := searched[n2]; ok {
				continue
			}
			if !n2.IsInternal() || !n2.HasChildren() || !n1.Kind().Compatible(n2.Kind()) {
				continue
			}
			if s := sharedMembers(n1, n2); s > bestShared {
				best, bestShared = n2, s
			}
		}
		if best == nil {
			continue
		}
		searched[n1] = struct{}{}
		searched[best] = struct{}{}
		if err := p.children(n1, best, true); err != nil {
			return err
		}
	}

	pb.Prune(delB)
	pa.Prune(delA)
	return nil
}

func sharedMembers(b, a *decl.Node) int {
	texts := make(map[string]int)
	for _, c := range a.Children() {
		texts[c.Text()]++
	}
	n := 0
	for _, c := range b.Children() {
		if texts[c.Text()] > 0 {
			texts[c.Text()]--
			n++
		}
	}
	return n
}

// record pairs an identical subtree node by node. Identical text implies an
// identical child structure.
func (p *pruner) record(b, a *decl.Node) {
	if p.renamed {
		p.mp.addMatched(b, a)
	} else {
		p.mp.addUnchanged(b, a)
	}
	bc, ac := b.Children(), a.Children()
	if len(bc) != len(ac) {
		return
	}
	for i := range bc {
		if bc[i].Variant() == ac[i].Variant() && bc[i].Kind() == ac[i].Kind() {
			p.record(bc[i], ac[i])
		}
	}
}
