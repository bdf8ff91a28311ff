// Package matcher pairs the declared entities and statement blocks of two
// versions of a code base.
//
// Matching runs in fixed phases over one MatchPair: pruning of identical
// subtrees, exact signature matching, Dice based fuzzy matching, a bounded
// fine matching fixpoint, two fallback heuristics and a final filter that
// reclassifies textually identical pairs as unchanged. Statement blocks are
// then matched inside every changed entity pair.
package matcher

import (
	"context"
	"io"
	"log/slog"
	"sort"

	"github.com/panbanda/remapper/pkg/analyzer/graph"
	"github.com/panbanda/remapper/pkg/decl"
	"github.com/panbanda/remapper/pkg/models"
)

// Phase names a step of the pipeline.
type Phase string

const (
	PhasePrune      Phase = "prune"
	PhaseSignature  Phase = "signature"
	PhaseDice       Phase = "dice"
	PhaseFixpoint   Phase = "fixpoint"
	PhaseByName     Phase = "by_name"
	PhaseByDice     Phase = "by_dice"
	PhaseFilter     Phase = "filter"
	PhaseStatements Phase = "statements"
)

// Default thresholds.
const (
	DefaultMinDice          = 0.5
	DefaultFallbackDice     = 0.8
	DefaultMaxIterations    = 10
	DefaultMinStatementDice = 0.5
)

// Input is everything one run needs. Trees are keyed by file path.
type Input struct {
	Before      map[string]*decl.Node
	After       map[string]*decl.Node
	Changes     models.FileChanges
	BeforeGraph *graph.Graph
	AfterGraph  *graph.Graph
}

// Matcher runs the matching pipeline.
type Matcher struct {
	minDice          float64
	fallbackDice     float64
	maxIterations    int
	minStatementDice float64
	logger           *slog.Logger
	hook             func(Phase, *MatchPair)
}

// Option is a functional option for configuring a Matcher.
type Option func(*Matcher)

// WithMinDice sets the minimum score for a fuzzy candidate.
func WithMinDice(v float64) Option {
	return func(m *Matcher) { m.minDice = v }
}

// WithFallbackDice sets the score a late by-Dice pair must exceed.
func WithFallbackDice(v float64) Option {
	return func(m *Matcher) { m.fallbackDice = v }
}

// WithMaxIterations caps the fine matching rounds.
func WithMaxIterations(n int) Option {
	return func(m *Matcher) {
		if n > 0 {
			m.maxIterations = n
		}
	}
}

// WithMinStatementDice sets the minimum score for pairing changed blocks.
func WithMinStatementDice(v float64) Option {
	return func(m *Matcher) { m.minStatementDice = v }
}

// WithLogger sets the logger used for phase diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(m *Matcher) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithPhaseHook registers a function called after every phase.
func WithPhaseHook(fn func(Phase, *MatchPair)) Option {
	return func(m *Matcher) { m.hook = fn }
}

// New creates a matcher with the given options.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		minDice:          DefaultMinDice,
		fallbackDice:     DefaultFallbackDice,
		maxIterations:    DefaultMaxIterations,
		minStatementDice: DefaultMinStatementDice,
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// run holds the state of one Match call.
type run struct {
	m       *Matcher
	in      Input
	mp      *MatchPair
	sc      *scorer
	befores []*decl.Node
	afters  []*decl.Node
}

// Match pairs the entities of in.Before with those of in.After. The trees in
// in are pruned in place. Cancellation is observed between phases.
func (m *Matcher) Match(ctx context.Context, in Input) (*MatchPair, error) {
	in.Changes.Normalize()
	r := &run{m: m, in: in}
	r.prepare()

	phases := []struct {
		phase Phase
		fn    func()
	}{
		{PhasePrune, r.prune},
		{PhaseSignature, r.matchBySignature},
		{PhaseDice, r.matchByDice},
		{PhaseFixpoint, r.fineMatch},
		{PhaseByName, r.matchByName},
		{PhaseByDice, r.matchByFallbackDice},
		{PhaseFilter, r.filter},
		{PhaseStatements, r.matchStatements},
	}
	for _, p := range phases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.fn()
		m.logger.Debug("phase complete",
			"phase", string(p.phase),
			"matched", len(r.mp.matched.fwd),
			"unchanged", len(r.mp.unchanged.fwd),
			"candidates", len(r.mp.candidate.fwd),
			"deleted", len(r.mp.deleted),
			"added", len(r.mp.added),
			"unresolved", r.mp.Unresolved())
		if m.hook != nil {
			m.hook(p.phase, r.mp)
		}
	}
	return r.mp, nil
}

// prepare numbers every node, attaches dependencies and sizes the aggregate.
func (r *run) prepare() {
	beforePaths := sortedKeys(r.in.Before)
	afterPaths := sortedKeys(r.in.After)

	next := uint32(1)
	for _, p := range beforePaths {
		next = decl.AssignIDs(next, r.in.Before[p])
	}
	for _, p := range afterPaths {
		next = decl.AssignIDs(next, r.in.After[p])
	}

	if r.in.BeforeGraph != nil {
		r.in.BeforeGraph.Attach(r.in.Before)
	}
	if r.in.AfterGraph != nil {
		r.in.AfterGraph.Attach(r.in.After)
	}

	index := make(map[string]*decl.Node)
	for _, p := range beforePaths {
		for _, n := range r.in.Before[p].Descendants() {
			r.befores = append(r.befores, n)
			if _, ok := index[n.Entity().Key()]; !ok {
				index[n.Entity().Key()] = n
			}
		}
	}
	for _, p := range afterPaths {
		r.afters = append(r.afters, r.in.After[p].Descendants()...)
	}

	r.mp = NewMatchPair(len(r.befores) + len(r.afters))
	r.sc = newScorer(r.mp, index)
}

// sweep puts every entity that has no relation yet into deleted or added.
func (r *run) sweep() {
	for _, n := range r.befores {
		r.mp.addDeleted(n)
	}
	for _, n := range r.afters {
		r.mp.addAdded(n)
	}
}

func sortedKeys(m map[string]*decl.Node) []string {
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if v != nil {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
