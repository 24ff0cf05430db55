package mother

import (
	"github.com/hebraica/mothertree/pkg/corpus"
	"github.com/hebraica/mothertree/pkg/overlay"
	"github.com/hebraica/mothertree/pkg/tree"
)

// EdgeSource tells a consumer whether an edge comes from the corpus or from
// a user edit.
type EdgeSource string

const (
	SourceOriginal EdgeSource = "original"
	SourceUser     EdgeSource = "user"
)

// Edge is the effective mother link of one clause as reported by mutation
// results. To is NoMother for roots.
type Edge struct {
	From   corpus.NodeID
	To     corpus.NodeID
	Source EdgeSource
}

// Result is the outcome of a successful mutation: the edge now in force for
// the affected clause, and the store's new version token.
type Result struct {
	Edge    Edge
	Version string
}

// BatchOp is one step of a batch: reparent Child under NewMother, or
// detach it when NewMother is NoMother.
type BatchOp struct {
	Child     corpus.NodeID
	NewMother corpus.NodeID
}

// Service wires the corpus, overlay store, validator and projector into the
// operation set the transport layer exposes. One Service per process; the
// hosting layer serializes calls (single-writer model, no internal locking).
type Service struct {
	snap      *corpus.Snapshot
	store     *overlay.Store
	validator *Validator
	projector *tree.Projector
}

// NewService builds a Service with a fresh, empty overlay.
func NewService(snap *corpus.Snapshot, rules Rules) *Service {
	store := overlay.NewStore(snap)
	return &Service{
		snap:      snap,
		store:     store,
		validator: NewValidator(snap, store, rules),
		projector: tree.NewProjector(snap, store),
	}
}

// Corpus returns the immutable corpus snapshot.
func (s *Service) Corpus() *corpus.Snapshot { return s.snap }

// Store returns the overlay store. Exposed for status reporting and tests;
// mutate through the Service, not directly.
func (s *Service) Store() *overlay.Store { return s.store }

// Version returns the current change marker.
func (s *Service) Version() string { return s.store.Version() }

// Tree projects the effective tree for a scope. Read-only; never fails.
func (s *Service) Tree(scope string) *tree.EffectiveTree {
	return s.projector.Project(scope)
}

// Reparent validates and commits a new mother for child.
func (s *Service) Reparent(child, newMother corpus.NodeID) (Result, error) {
	if err := s.validator.ValidateReparent(child, newMother); err != nil {
		return Result{}, err
	}
	s.store.SetMother(child, newMother)
	return s.result(child), nil
}

// Rootify validates and commits detaching child into a root.
func (s *Service) Rootify(child corpus.NodeID) (Result, error) {
	if err := s.validator.ValidateRootify(child); err != nil {
		return Result{}, err
	}
	s.store.SetMother(child, corpus.NoMother)
	return s.result(child), nil
}

// Undo reverts the most recent commit. Returns ErrNoHistory when the undo
// stack is empty.
func (s *Service) Undo() (Result, error) {
	child, _, ok := s.store.Undo()
	if !ok {
		return Result{}, ErrNoHistory
	}
	return s.result(child), nil
}

// Redo re-applies the most recently undone commit. Returns ErrNoHistory
// when the redo stack is empty.
func (s *Service) Redo() (Result, error) {
	child, _, ok := s.store.Redo()
	if !ok {
		return Result{}, ErrNoHistory
	}
	return s.result(child), nil
}

// ReparentBatch applies the operations in order with all-or-nothing
// semantics. Each operation is validated against the state left by its
// predecessors in the same batch. On the first failure the pre-batch state
// (overlay, both history stacks, version token) is restored and that
// operation's error is returned unchanged.
func (s *Service) ReparentBatch(ops []BatchOp) error {
	before := s.store.Snapshot()
	for _, op := range ops {
		var err error
		if op.NewMother == corpus.NoMother {
			_, err = s.Rootify(op.Child)
		} else {
			_, err = s.Reparent(op.Child, op.NewMother)
		}
		if err != nil {
			s.store.Restore(before)
			return err
		}
	}
	return nil
}

// EdgeFor reports the effective mother edge of a clause without mutating
// anything. Used by the transport layer to describe tree edges.
func (s *Service) EdgeFor(child corpus.NodeID) Edge {
	return s.result(child).Edge
}

// result builds the post-commit view of a clause's edge.
func (s *Service) result(child corpus.NodeID) Result {
	src := SourceOriginal
	if s.store.HasOverride(child) {
		src = SourceUser
	}
	return Result{
		Edge: Edge{
			From:   child,
			To:     s.store.EffectiveMother(child),
			Source: src,
		},
		Version: s.store.Version(),
	}
}
