package mother

import (
	"github.com/hebraica/mothertree/pkg/corpus"
	"github.com/hebraica/mothertree/pkg/overlay"
)

// Rules are the configurable structural policies enforced on mutations.
type Rules struct {
	// EnforceContainer requires child and new mother to share the same
	// enclosing container (verse-level unit) on reparent.
	EnforceContainer bool
	// AllowRootify permits detaching a clause to become a root.
	AllowRootify bool
	// MaxDepth bounds the mother-chain length including the child itself.
	// Zero or negative means unbounded.
	MaxDepth int
}

// DefaultRules matches the engine's permissive defaults: cross-container
// reparenting allowed, rootify allowed, no depth bound.
func DefaultRules() Rules {
	return Rules{AllowRootify: true}
}

// Validator checks mutations against the current effective tree before they
// are committed. It only reads the overlay store, never mutates it, and
// rebuilds its traversal maps per call, so a failed check leaves no trace.
type Validator struct {
	snap  *corpus.Snapshot
	store *overlay.Store
	rules Rules
}

// NewValidator creates a validator over the given corpus and overlay.
func NewValidator(snap *corpus.Snapshot, store *overlay.Store, rules Rules) *Validator {
	return &Validator{snap: snap, store: store, rules: rules}
}

// ValidateReparent checks whether child may be re-attached under newMother.
// Checks run in a fixed order and stop at the first failure:
// existence, mother kind, id ordering, container containment (if enforced),
// same-node, cycle, depth.
//
// The id-ordering check stands in for a document-order comparison: ids grow
// with text position (enforced at corpus load), so requiring the new
// mother's id to be strictly smaller both forbids attaching under later
// text and makes the cycle check sound: a clause can only gain ancestors
// with smaller ids.
func (v *Validator) ValidateReparent(child, newMother corpus.NodeID) error {
	childNode, ok := v.snap.Node(child)
	if !ok {
		return ErrNodeNotFound
	}
	motherNode, ok := v.snap.Node(newMother)
	if !ok {
		return ErrNodeNotFound
	}

	if motherNode.Kind != corpus.KindClause {
		return ErrMotherNotClause
	}
	if newMother >= child {
		return ErrMotherIDNotSmaller
	}
	if v.rules.EnforceContainer && childNode.ContainerID != motherNode.ContainerID {
		return ErrContainerMismatch
	}
	if child == newMother {
		// Unreachable behind the ordering check; kept as defense in depth.
		return ErrSameNode
	}

	// Cycle check over the current effective tree, not the corpus tree:
	// an earlier overlay edit may already have moved parts of child's
	// subtree around.
	if _, isDescendant := v.descendants(child)[newMother]; isDescendant {
		return ErrCycle
	}

	return v.checkDepth(newMother)
}

// ValidateRootify checks whether child may be detached into a root.
func (v *Validator) ValidateRootify(child corpus.NodeID) error {
	if !v.snap.Contains(child) {
		return ErrNodeNotFound
	}
	if !v.rules.AllowRootify {
		return ErrRootifyDisabled
	}
	// Depth with an implicit nil mother: the chain is just the child, so
	// this cannot fail. Kept for symmetry with reparent.
	return v.checkDepth(corpus.NoMother)
}

// descendants collects the full descendant set of id under the effective
// tree, via an iterative DFS over a freshly built children map.
func (v *Validator) descendants(id corpus.NodeID) map[corpus.NodeID]struct{} {
	children := v.store.ChildrenMap()
	seen := make(map[corpus.NodeID]struct{})
	stack := []corpus.NodeID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range children[cur] {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			stack = append(stack, c)
		}
	}
	return seen
}

// checkDepth walks upward from the proposed new mother and fails when the
// resulting chain, child included, would exceed the configured bound.
func (v *Validator) checkDepth(newMother corpus.NodeID) error {
	if v.rules.MaxDepth <= 0 {
		return nil
	}
	depth := 0
	for cur := newMother; cur != corpus.NoMother; cur = v.store.EffectiveMother(cur) {
		depth++
		if depth > v.rules.MaxDepth {
			return ErrDepthLimit
		}
	}
	if depth+1 > v.rules.MaxDepth {
		return ErrDepthLimit
	}
	return nil
}
