// Package tree projects a scoped, presentation-ready view of the effective
// dependency tree: the corpus nodes selected by a scope filter, expanded
// with enough context (ancestors and siblings) to stay structurally
// connected, plus the effective mother edges between them.
package tree

import (
	"sort"

	"github.com/hebraica/mothertree/pkg/corpus"
	"github.com/hebraica/mothertree/pkg/overlay"
)

// EffectiveTree is a projection result. Nodes holds every clause needed to
// render the view (in-scope clauses, their ancestors, and the siblings of
// anything included); Mothers holds the effective mother of each included
// clause (NoMother for roots); InScope marks which clauses matched the
// scope filter itself.
type EffectiveTree struct {
	Nodes   map[corpus.NodeID]*corpus.ClauseNode
	Mothers map[corpus.NodeID]corpus.NodeID
	InScope map[corpus.NodeID]bool
	Scope   string
}

// Edge is one effective mother link. To is NoMother for roots.
type Edge struct {
	From corpus.NodeID
	To   corpus.NodeID
}

// Projector computes EffectiveTrees from the corpus and the overlay store.
// It reads both and mutates neither.
type Projector struct {
	snap  *corpus.Snapshot
	store *overlay.Store
}

// NewProjector creates a projector over the given corpus and overlay.
func NewProjector(snap *corpus.Snapshot, store *overlay.Store) *Projector {
	return &Projector{snap: snap, store: store}
}

// Project computes the visible tree for a scope string. An empty scope
// selects the whole corpus. An unparseable scope or one matching nothing
// yields an empty tree; projection is a query and never fails.
//
// Context expansion runs in two phases:
//
//  1. Ancestor closure: every in-scope clause's effective-mother chain is
//     walked to its root, pulling in ancestors even when they fall outside
//     the scope filter. This keeps the rendered sub-tree connected.
//  2. Sibling inclusion: for every clause now present, all other clauses
//     sharing its effective mother are added. Siblings are added once and
//     not expanded further.
func (p *Projector) Project(scope string) *EffectiveTree {
	t := &EffectiveTree{
		Nodes:   make(map[corpus.NodeID]*corpus.ClauseNode),
		Mothers: make(map[corpus.NodeID]corpus.NodeID),
		InScope: make(map[corpus.NodeID]bool),
		Scope:   scope,
	}

	if scope == "" {
		for _, n := range p.snap.Nodes() {
			t.Nodes[n.ID] = n
			t.InScope[n.ID] = true
			t.Mothers[n.ID] = p.store.EffectiveMother(n.ID)
		}
		return t
	}

	sc, err := p.snap.ParseScope(scope)
	if err != nil {
		return t
	}
	selected := p.snap.FilterScope(sc)
	if len(selected) == 0 {
		return t
	}

	mothers := p.store.EffectiveMothers()
	children := p.store.ChildrenMap()

	queue := make([]corpus.NodeID, 0, len(selected))
	for _, n := range selected {
		t.Nodes[n.ID] = n
		t.InScope[n.ID] = true
		queue = append(queue, n.ID)
	}

	// Phase 1: ancestor closure.
	for len(queue) > 0 {
		id := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		m := mothers[id]
		if m == corpus.NoMother {
			continue
		}
		if _, present := t.Nodes[m]; present {
			continue
		}
		if mn, ok := p.snap.Node(m); ok {
			t.Nodes[m] = mn
			queue = append(queue, m)
		}
	}

	// Phase 2: sibling inclusion over everything gathered so far.
	present := make([]corpus.NodeID, 0, len(t.Nodes))
	for id := range t.Nodes {
		present = append(present, id)
	}
	for _, id := range present {
		m := mothers[id]
		if m == corpus.NoMother {
			continue
		}
		for _, sib := range children[m] {
			if _, ok := t.Nodes[sib]; ok {
				continue
			}
			if sn, ok := p.snap.Node(sib); ok {
				t.Nodes[sib] = sn
			}
		}
	}

	for id := range t.Nodes {
		t.Mothers[id] = mothers[id]
	}
	return t
}

// OrderedNodes returns the tree's clauses sorted by slotsStart, i.e. in
// document order.
func (t *EffectiveTree) OrderedNodes() []*corpus.ClauseNode {
	out := make([]*corpus.ClauseNode, 0, len(t.Nodes))
	for _, n := range t.Nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SlotsStart < out[j].SlotsStart
	})
	return out
}

// OrderedEdges returns one edge per included clause, sorted by the source
// clause's slotsStart. Every non-root target is itself in the node set;
// the ancestor closure guarantees it.
func (t *EffectiveTree) OrderedEdges() []Edge {
	edges := make([]Edge, 0, len(t.Mothers))
	for _, n := range t.OrderedNodes() {
		edges = append(edges, Edge{From: n.ID, To: t.Mothers[n.ID]})
	}
	return edges
}

// Len returns the number of clauses in the projection.
func (t *EffectiveTree) Len() int { return len(t.Nodes) }
