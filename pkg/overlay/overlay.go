// Package overlay owns the mutable state of the mother-editing engine: a
// sparse map of user-overridden mother links on top of the immutable corpus,
// the undo/redo history, and the version token.
//
// A Store is the single source of truth for the effective mother of any
// clause. It commits unconditionally; validation happens before a commit, in
// the mother package. That split lets undo/redo and batch replay re-apply
// known-good values without re-checking them.
//
// Stores are not safe for concurrent use. The engine is single-writer by
// design; the hosting layer serializes access (the HTTP server holds one
// lock across every operation).
package overlay

import (
	"github.com/google/uuid"

	"github.com/hebraica/mothertree/pkg/corpus"
)

// Record is one committed mutation: the child whose mother changed, the
// effective mother before the change, and the one after. Undo applies Prev,
// redo applies Next.
type Record struct {
	Child corpus.NodeID
	Prev  corpus.NodeID
	Next  corpus.NodeID
}

// State is a full, independent copy of a Store's mutable state, used for
// all-or-nothing batch rollback. Opaque to callers.
type State struct {
	overlay map[corpus.NodeID]corpus.NodeID
	undo    []Record
	redo    []Record
	version string
}

// Store tracks user mother edits over a corpus snapshot.
type Store struct {
	snap    *corpus.Snapshot
	overlay map[corpus.NodeID]corpus.NodeID
	undo    []Record
	redo    []Record
	version string
}

// NewStore creates an empty overlay over the given corpus.
func NewStore(snap *corpus.Snapshot) *Store {
	return &Store{
		snap:    snap,
		overlay: make(map[corpus.NodeID]corpus.NodeID),
		version: newVersion(),
	}
}

// newVersion returns a fresh opaque change marker. Consumers only compare
// tokens for equality; this is not a concurrency guard.
func newVersion() string {
	return uuid.NewString()
}

// EffectiveMother returns the mother currently in force for the clause:
// the overlay value if the clause has been edited, the corpus value
// otherwise. Unknown ids report NoMother.
func (s *Store) EffectiveMother(id corpus.NodeID) corpus.NodeID {
	if m, ok := s.overlay[id]; ok {
		return m
	}
	return s.snap.OriginalMother(id)
}

// HasOverride reports whether the clause has an active overlay entry, i.e.
// whether its effective mother differs from the corpus.
func (s *Store) HasOverride(id corpus.NodeID) bool {
	_, ok := s.overlay[id]
	return ok
}

// Overlay returns a copy of the overlay map. The internal map is never
// exposed by reference.
func (s *Store) Overlay() map[corpus.NodeID]corpus.NodeID {
	out := make(map[corpus.NodeID]corpus.NodeID, len(s.overlay))
	for k, v := range s.overlay {
		out[k] = v
	}
	return out
}

// SetMother commits a new effective mother for the child. It does not
// validate — callers run the mutation validator first. The commit records a
// history entry, clears the redo stack, and bumps the version token.
func (s *Store) SetMother(child, mother corpus.NodeID) {
	prev := s.EffectiveMother(child)
	s.apply(child, mother)
	s.undo = append(s.undo, Record{Child: child, Prev: prev, Next: mother})
	s.redo = s.redo[:0]
	s.version = newVersion()
}

// apply updates the overlay under the minimal-overlay rule: setting a
// clause back to its corpus mother removes the entry instead of storing a
// redundant one.
func (s *Store) apply(child, mother corpus.NodeID) {
	if mother == s.snap.OriginalMother(child) {
		delete(s.overlay, child)
	} else {
		s.overlay[child] = mother
	}
}

// Undo reverts the most recent commit, returning the child and the mother
// now in force for it. ok is false when there is nothing to undo.
//
// Undo does not re-validate: the restored value was valid when committed,
// and replaying it into a graph altered by unrelated later edits is
// intentionally permitted (mutation is single-writer and serialized).
func (s *Store) Undo() (child, mother corpus.NodeID, ok bool) {
	if len(s.undo) == 0 {
		return 0, 0, false
	}
	rec := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.apply(rec.Child, rec.Prev)
	s.redo = append(s.redo, rec)
	s.version = newVersion()
	return rec.Child, rec.Prev, true
}

// Redo re-applies the most recently undone commit. ok is false when there
// is nothing to redo.
func (s *Store) Redo() (child, mother corpus.NodeID, ok bool) {
	if len(s.redo) == 0 {
		return 0, 0, false
	}
	rec := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.apply(rec.Child, rec.Next)
	s.undo = append(s.undo, rec)
	s.version = newVersion()
	return rec.Child, rec.Next, true
}

// UndoDepth returns the number of undoable commits.
func (s *Store) UndoDepth() int { return len(s.undo) }

// RedoDepth returns the number of redoable commits.
func (s *Store) RedoDepth() int { return len(s.redo) }

// Version returns the current change marker.
func (s *Store) Version() string { return s.version }

// Snapshot captures a deep copy of the full mutable state. Cheap in
// practice: the overlay is bounded by the number of edited clauses, not by
// corpus size.
func (s *Store) Snapshot() *State {
	st := &State{
		overlay: make(map[corpus.NodeID]corpus.NodeID, len(s.overlay)),
		undo:    make([]Record, len(s.undo)),
		redo:    make([]Record, len(s.redo)),
		version: s.version,
	}
	for k, v := range s.overlay {
		st.overlay[k] = v
	}
	copy(st.undo, s.undo)
	copy(st.redo, s.redo)
	return st
}

// Restore replaces the store's state with a snapshot taken earlier. The
// snapshot's copies become the live state; the caller must not reuse it.
func (s *Store) Restore(st *State) {
	s.overlay = st.overlay
	s.undo = st.undo
	s.redo = st.redo
	s.version = st.version
}

// EffectiveMothers returns the effective mother of every clause in the
// corpus. Freshly built on each call.
func (s *Store) EffectiveMothers() map[corpus.NodeID]corpus.NodeID {
	out := make(map[corpus.NodeID]corpus.NodeID, s.snap.Len())
	for _, n := range s.snap.Nodes() {
		out[n.ID] = s.EffectiveMother(n.ID)
	}
	return out
}

// ChildrenMap inverts the effective mothers into mother -> children lists.
// Lists come out in document order because the corpus iterates in document
// order. Freshly built on each call; for this corpus size that beats
// maintaining an incremental index.
func (s *Store) ChildrenMap() map[corpus.NodeID][]corpus.NodeID {
	children := make(map[corpus.NodeID][]corpus.NodeID)
	for _, n := range s.snap.Nodes() {
		m := s.EffectiveMother(n.ID)
		if m == corpus.NoMother {
			continue
		}
		children[m] = append(children[m], n.ID)
	}
	return children
}
