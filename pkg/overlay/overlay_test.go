package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hebraica/mothertree/pkg/corpus"
)

// testStore builds a store over a small Genesis 1 chain:
//
//	427553 (root) <- 427554, 427559
//	427559 <- 427560
//	427560 <- 427566
//	427566 <- 427567, 427568
func testStore(t *testing.T) *Store {
	t.Helper()
	snap, err := corpus.NewSnapshot([]*corpus.ClauseNode{
		{ID: 427553, SlotsStart: 1, ContainerID: "Genesis.1.1", Book: "Genesis", Chapter: 1, Verse: 1},
		{ID: 427554, SlotsStart: 5, ContainerID: "Genesis.1.1", OriginalMother: 427553, Book: "Genesis", Chapter: 1, Verse: 1},
		{ID: 427559, SlotsStart: 10, ContainerID: "Genesis.1.2", OriginalMother: 427553, Book: "Genesis", Chapter: 1, Verse: 2},
		{ID: 427560, SlotsStart: 15, ContainerID: "Genesis.1.2", OriginalMother: 427559, Book: "Genesis", Chapter: 1, Verse: 2},
		{ID: 427566, SlotsStart: 20, ContainerID: "Genesis.1.3", OriginalMother: 427560, Book: "Genesis", Chapter: 1, Verse: 3},
		{ID: 427567, SlotsStart: 25, ContainerID: "Genesis.1.3", OriginalMother: 427566, Book: "Genesis", Chapter: 1, Verse: 3},
		{ID: 427568, SlotsStart: 30, ContainerID: "Genesis.1.3", OriginalMother: 427566, Book: "Genesis", Chapter: 1, Verse: 3},
	})
	require.NoError(t, err)
	return NewStore(snap)
}

func TestEffectiveMother(t *testing.T) {
	s := testStore(t)

	t.Run("falls back to corpus", func(t *testing.T) {
		assert.Equal(t, corpus.NodeID(427559), s.EffectiveMother(427560))
		assert.Equal(t, corpus.NoMother, s.EffectiveMother(427553))
	})

	t.Run("overlay wins", func(t *testing.T) {
		s.SetMother(427560, 427553)
		assert.Equal(t, corpus.NodeID(427553), s.EffectiveMother(427560))
		assert.True(t, s.HasOverride(427560))
	})

	t.Run("unknown id reports no mother", func(t *testing.T) {
		assert.Equal(t, corpus.NoMother, s.EffectiveMother(999999))
	})
}

func TestMinimalOverlay(t *testing.T) {
	s := testStore(t)

	s.SetMother(427560, 427553)
	require.Len(t, s.Overlay(), 1)

	// Setting the clause back to its corpus mother removes the entry rather
	// than storing a redundant one.
	s.SetMother(427560, 427559)
	assert.Empty(t, s.Overlay())
	assert.False(t, s.HasOverride(427560))

	// Both commits still count as history.
	assert.Equal(t, 2, s.UndoDepth())
}

func TestUndoRedo(t *testing.T) {
	s := testStore(t)

	t.Run("empty history", func(t *testing.T) {
		_, _, ok := s.Undo()
		assert.False(t, ok)
		_, _, ok = s.Redo()
		assert.False(t, ok)
	})

	t.Run("undo restores previous mother", func(t *testing.T) {
		s.SetMother(427560, 427553)

		child, mother, ok := s.Undo()
		require.True(t, ok)
		assert.Equal(t, corpus.NodeID(427560), child)
		assert.Equal(t, corpus.NodeID(427559), mother)
		assert.Equal(t, corpus.NodeID(427559), s.EffectiveMother(427560))
		assert.Equal(t, 0, s.UndoDepth())
		assert.Equal(t, 1, s.RedoDepth())
	})

	t.Run("redo re-applies", func(t *testing.T) {
		child, mother, ok := s.Redo()
		require.True(t, ok)
		assert.Equal(t, corpus.NodeID(427560), child)
		assert.Equal(t, corpus.NodeID(427553), mother)
		assert.Equal(t, corpus.NodeID(427553), s.EffectiveMother(427560))
		assert.Equal(t, 1, s.UndoDepth())
		assert.Equal(t, 0, s.RedoDepth())
	})
}

func TestCommitClearsRedo(t *testing.T) {
	s := testStore(t)

	s.SetMother(427560, 427553)
	_, _, ok := s.Undo()
	require.True(t, ok)
	require.Equal(t, 1, s.RedoDepth())

	// A fresh commit forks history; the undone branch is gone.
	s.SetMother(427567, 427553)
	assert.Equal(t, 0, s.RedoDepth())
	assert.Equal(t, 1, s.UndoDepth())
}

func TestVersionChanges(t *testing.T) {
	s := testStore(t)
	v0 := s.Version()
	require.NotEmpty(t, v0)

	s.SetMother(427560, 427553)
	v1 := s.Version()
	assert.NotEqual(t, v0, v1)

	s.Undo()
	v2 := s.Version()
	assert.NotEqual(t, v1, v2)

	s.Redo()
	assert.NotEqual(t, v2, s.Version())
}

func TestSnapshotRestore(t *testing.T) {
	s := testStore(t)
	s.SetMother(427560, 427553)
	s.SetMother(427567, 427553)
	s.Undo()

	before := s.Snapshot()
	wantOverlay := s.Overlay()
	wantUndo := s.UndoDepth()
	wantRedo := s.RedoDepth()
	wantVersion := s.Version()

	// Diverge, then roll back.
	s.SetMother(427568, 427553)
	s.SetMother(427554, corpus.NoMother)
	require.NotEqual(t, wantVersion, s.Version())

	s.Restore(before)
	assert.Equal(t, wantOverlay, s.Overlay())
	assert.Equal(t, wantUndo, s.UndoDepth())
	assert.Equal(t, wantRedo, s.RedoDepth())
	assert.Equal(t, wantVersion, s.Version())
}

func TestEffectiveMothersAndChildren(t *testing.T) {
	s := testStore(t)
	s.SetMother(427567, 427560)

	mothers := s.EffectiveMothers()
	assert.Len(t, mothers, 7)
	assert.Equal(t, corpus.NodeID(427560), mothers[427567])
	assert.Equal(t, corpus.NoMother, mothers[427553])

	children := s.ChildrenMap()
	assert.Equal(t, []corpus.NodeID{427554, 427559}, children[427553])
	assert.Equal(t, []corpus.NodeID{427566, 427567}, children[427560])
	assert.Equal(t, []corpus.NodeID{427568}, children[427566])
	assert.NotContains(t, children, corpus.NodeID(427567))
}
