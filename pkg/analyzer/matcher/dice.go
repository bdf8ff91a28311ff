package matcher

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/cespare/xxhash/v2"

	"github.com/panbanda/remapper/pkg/decl"
	"github.com/panbanda/remapper/pkg/models"
)

// bag is a multiset of hashed features.
type bag map[uint64]int

func (b bag) size() int {
	n := 0
	for _, c := range b {
		n += c
	}
	return n
}

func (b bag) common(o bag) int {
	if len(o) < len(b) {
		b, o = o, b
	}
	n := 0
	for k, c := range b {
		n += min(c, o[k])
	}
	return n
}

// tokenBigrams hashes adjacent token pairs, leaving out tokens equal to skip.
// A single remaining token is used on its own.
func tokenBigrams(tokens []string, skip string, into bag) bag {
	if into == nil {
		into = make(bag)
	}
	kept := tokens
	if skip != "" {
		kept = make([]string, 0, len(tokens))
		for _, t := range tokens {
			if t != skip {
				kept = append(kept, t)
			}
		}
	}
	if len(kept) == 1 {
		into[xxhash.Sum64String(kept[0])]++
		return into
	}
	for i := 0; i+1 < len(kept); i++ {
		into[xxhash.Sum64String(kept[i]+"\x00"+kept[i+1])]++
	}
	return into
}

// charBigrams hashes adjacent character pairs of s, prefixed so they never
// collide with token features.
func charBigrams(s string, into bag) bag {
	if into == nil {
		into = make(bag)
	}
	r := []rune(s)
	if len(r) == 1 {
		into[xxhash.Sum64String("\x01"+s)]++
		return into
	}
	for i := 0; i+1 < len(r); i++ {
		into[xxhash.Sum64String("\x01"+string(r[i:i+2]))]++
	}
	return into
}

// leafFeatures derives the textual features of a leaf entity.
//
// Methods use the token bigrams of their declaration with the method name
// removed, so a rename with an untouched body scores 1.0. Fields and
// annotation members add the character bigrams of the name to the bigrams
// of the remaining tokens, so unrelated names of the same type stay apart.
func leafFeatures(n *decl.Node) bag {
	d := n.Declaration()
	name := n.Entity().Name
	switch n.Kind() {
	case models.KindMethod:
		return tokenBigrams(d.Tokens, name, nil)
	case models.KindField, models.KindAnnotationMember:
		b := charBigrams(name, nil)
		return tokenBigrams(d.Tokens, name, b)
	default:
		return tokenBigrams(d.Tokens, "", nil)
	}
}

// scorer computes similarities against the current state of a MatchPair.
// Feature bags and descendant bitmaps are cached; both are stable once
// pruning has finished.
type scorer struct {
	mp *MatchPair
	// byKey indexes before entities by descriptor key. Scores are always
	// taken with the before entity first.
	byKey    map[string]*decl.Node
	features map[*decl.Node]bag
	headers  map[*decl.Node]bag
	desc     map[*decl.Node]*roaring.Bitmap
}

func newScorer(mp *MatchPair, index map[string]*decl.Node) *scorer {
	return &scorer{
		mp:       mp,
		byKey:    index,
		features: make(map[*decl.Node]bag),
		headers:  make(map[*decl.Node]bag),
		desc:     make(map[*decl.Node]*roaring.Bitmap),
	}
}

func (s *scorer) leafBag(n *decl.Node) bag {
	b, ok := s.features[n]
	if !ok {
		b = leafFeatures(n)
		s.features[n] = b
	}
	return b
}

func (s *scorer) headerBag(n *decl.Node) bag {
	b, ok := s.headers[n]
	if !ok {
		tokens := n.Declaration().HeaderTokens
		if len(tokens) == 0 {
			tokens = n.Declaration().Tokens
		}
		b = tokenBigrams(tokens, n.Entity().Name, nil)
		s.headers[n] = b
	}
	return b
}

func (s *scorer) descendants(n *decl.Node) *roaring.Bitmap {
	bm, ok := s.desc[n]
	if !ok {
		bm = roaring.New()
		for _, d := range n.Descendants() {
			bm.Add(d.ID())
		}
		s.desc[n] = bm
	}
	return bm
}

// commonDependencies counts referencers of a that also reference b: either
// the same descriptor or an entity paired with one of b's referencers.
func (s *scorer) commonDependencies(a, b *decl.Node) int {
	da, db := a.Dependencies(), b.Dependencies()
	if len(da) == 0 || len(db) == 0 {
		return 0
	}
	remaining := make(map[string]int, len(db))
	for _, d := range db {
		remaining[d.Key()]++
	}
	n := 0
	for _, d := range da {
		key := d.Key()
		if remaining[key] > 0 {
			remaining[key]--
			n++
			continue
		}
		node := s.byKey[key]
		if node == nil {
			continue
		}
		p := s.mp.Partner(node)
		if p == nil {
			continue
		}
		pk := p.Entity().Key()
		if remaining[pk] > 0 {
			remaining[pk]--
			n++
		}
	}
	return n
}

// leaf scores two leaves of the same kind by text and shared referencers.
func (s *scorer) leaf(a, b *decl.Node) float64 {
	fa, fb := s.leafBag(a), s.leafBag(b)
	num := fa.common(fb) + s.commonDependencies(a, b)
	den := fa.size() + fb.size() + len(a.Dependencies()) + len(b.Dependencies())
	if den == 0 {
		return 0
	}
	return 2 * float64(num) / float64(den)
}

// internal scores two containers by the share of their descendants already
// paired with each other and by shared referencers. Containers with neither
// descendants nor referencers fall back to the text of their headers.
func (s *scorer) internal(a, b *decl.Node) float64 {
	descA := a.Descendants()
	descB := s.descendants(b)
	den := len(descA) + int(descB.GetCardinality()) + len(a.Dependencies()) + len(b.Dependencies())
	if den == 0 {
		ha, hb := s.headerBag(a), s.headerBag(b)
		total := ha.size() + hb.size()
		if total == 0 {
			return 0
		}
		return 2 * float64(ha.common(hb)) / float64(total)
	}
	common := 0
	for _, d := range descA {
		p := s.mp.Partner(d)
		if p != nil && descB.Contains(p.ID()) {
			common++
		}
	}
	common += s.commonDependencies(a, b)
	return 2 * float64(common) / float64(den)
}

// similarity is the kind-checked score used by the fuzzy phases.
func (s *scorer) similarity(a, b *decl.Node) float64 {
	if a.Kind() != b.Kind() {
		return 0
	}
	return s.combined(a, b)
}

// combined scores a pair whose kinds are equal or both type-like.
func (s *scorer) combined(a, b *decl.Node) float64 {
	if !a.Kind().Compatible(b.Kind()) || a.Variant() != b.Variant() {
		return 0
	}
	switch a.Variant() {
	case decl.VariantLeaf:
		return s.leaf(a, b)
	case decl.VariantInternal:
		return s.internal(a, b)
	default:
		return 0
	}
}

// blockDice compares two statement blocks by their token bigrams.
func blockDice(a, b *decl.Block) float64 {
	fa := tokenBigrams(a.Tokens, "", nil)
	fb := tokenBigrams(b.Tokens, "", nil)
	total := fa.size() + fb.size()
	if total == 0 {
		if a.Expression == b.Expression {
			return 1
		}
		return 0
	}
	return 2 * float64(fa.common(fb)) / float64(total)
}
