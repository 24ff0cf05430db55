package mother

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hebraica/mothertree/pkg/corpus"
)

func testService(t *testing.T, rules Rules) *Service {
	t.Helper()
	return NewService(testCorpus(t), rules)
}

func TestReparent(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := testService(t, DefaultRules())
		v0 := svc.Version()

		res, err := svc.Reparent(427560, 427553)
		require.NoError(t, err)
		assert.Equal(t, corpus.NodeID(427560), res.Edge.From)
		assert.Equal(t, corpus.NodeID(427553), res.Edge.To)
		assert.Equal(t, SourceUser, res.Edge.Source)
		assert.NotEqual(t, v0, res.Version)
		assert.Equal(t, corpus.NodeID(427553), svc.Store().EffectiveMother(427560))
	})

	t.Run("rejection leaves state untouched", func(t *testing.T) {
		svc := testService(t, DefaultRules())
		v0 := svc.Version()

		_, err := svc.Reparent(427554, 427559)
		assert.ErrorIs(t, err, ErrMotherIDNotSmaller)
		assert.Empty(t, svc.Store().Overlay())
		assert.Equal(t, 0, svc.Store().UndoDepth())
		assert.Equal(t, v0, svc.Version())
	})

	t.Run("back to original reports original source", func(t *testing.T) {
		svc := testService(t, DefaultRules())
		_, err := svc.Reparent(427560, 427553)
		require.NoError(t, err)

		res, err := svc.Reparent(427560, 427559)
		require.NoError(t, err)
		assert.Equal(t, SourceOriginal, res.Edge.Source)
		assert.Empty(t, svc.Store().Overlay())
	})
}

func TestRootify(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := testService(t, DefaultRules())

		res, err := svc.Rootify(427560)
		require.NoError(t, err)
		assert.Equal(t, corpus.NoMother, res.Edge.To)
		assert.Equal(t, SourceUser, res.Edge.Source)
	})

	t.Run("disabled", func(t *testing.T) {
		svc := testService(t, Rules{AllowRootify: false})
		_, err := svc.Rootify(427560)
		assert.ErrorIs(t, err, ErrRootifyDisabled)
	})
}

func TestUndoRedoService(t *testing.T) {
	svc := testService(t, DefaultRules())

	t.Run("empty history", func(t *testing.T) {
		_, err := svc.Undo()
		assert.ErrorIs(t, err, ErrNoHistory)
		_, err = svc.Redo()
		assert.ErrorIs(t, err, ErrNoHistory)
	})

	t.Run("undo then redo", func(t *testing.T) {
		_, err := svc.Reparent(427560, 427553)
		require.NoError(t, err)

		res, err := svc.Undo()
		require.NoError(t, err)
		assert.Equal(t, corpus.NodeID(427560), res.Edge.From)
		assert.Equal(t, corpus.NodeID(427559), res.Edge.To)
		assert.Equal(t, SourceOriginal, res.Edge.Source)

		res, err = svc.Redo()
		require.NoError(t, err)
		assert.Equal(t, corpus.NodeID(427553), res.Edge.To)
		assert.Equal(t, SourceUser, res.Edge.Source)
	})

	t.Run("undo is not re-validated", func(t *testing.T) {
		// Tighten nothing here; the point is that undo replays the recorded
		// value straight into the store even after unrelated edits.
		_, err := svc.Reparent(427567, 427553)
		require.NoError(t, err)
		_, err = svc.Undo()
		require.NoError(t, err)
		assert.Equal(t, corpus.NodeID(427566), svc.Store().EffectiveMother(427567))
	})
}

func TestReparentBatch(t *testing.T) {
	t.Run("applies all in order", func(t *testing.T) {
		svc := testService(t, DefaultRules())

		err := svc.ReparentBatch([]BatchOp{
			{Child: 427560, NewMother: 427553},
			{Child: 427566, NewMother: 427554},
			{Child: 427567, NewMother: corpus.NoMother}, // rootify
		})
		require.NoError(t, err)
		assert.Equal(t, corpus.NodeID(427553), svc.Store().EffectiveMother(427560))
		assert.Equal(t, corpus.NodeID(427554), svc.Store().EffectiveMother(427566))
		assert.Equal(t, corpus.NoMother, svc.Store().EffectiveMother(427567))
		assert.Equal(t, 3, svc.Store().UndoDepth())
	})

	t.Run("later ops validate against earlier ops", func(t *testing.T) {
		svc := testService(t, Rules{AllowRootify: true, MaxDepth: 2})

		// Attaching under 427560 exceeds the depth bound against the corpus
		// tree, but the first op detaches 427560 into a root, so the second
		// op sees a one-deep chain and passes.
		err := svc.ReparentBatch([]BatchOp{
			{Child: 427560, NewMother: corpus.NoMother},
			{Child: 427566, NewMother: 427560},
		})
		require.NoError(t, err)
		assert.Equal(t, corpus.NodeID(427560), svc.Store().EffectiveMother(427566))
	})

	t.Run("rollback restores everything", func(t *testing.T) {
		svc := testService(t, DefaultRules())
		_, err := svc.Reparent(427560, 427553)
		require.NoError(t, err)

		overlayBefore := svc.Store().Overlay()
		undoBefore := svc.Store().UndoDepth()
		versionBefore := svc.Version()

		err = svc.ReparentBatch([]BatchOp{
			{Child: 427566, NewMother: 427554}, // fine
			{Child: 427554, NewMother: 427559}, // ordering violation
		})
		assert.ErrorIs(t, err, ErrMotherIDNotSmaller)

		assert.Equal(t, overlayBefore, svc.Store().Overlay())
		assert.Equal(t, undoBefore, svc.Store().UndoDepth())
		assert.Equal(t, 0, svc.Store().RedoDepth())
		assert.Equal(t, versionBefore, svc.Version())
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		svc := testService(t, DefaultRules())
		v0 := svc.Version()
		require.NoError(t, svc.ReparentBatch(nil))
		assert.Equal(t, v0, svc.Version())
	})
}

func TestEdgeFor(t *testing.T) {
	svc := testService(t, DefaultRules())

	e := svc.EdgeFor(427560)
	assert.Equal(t, Edge{From: 427560, To: 427559, Source: SourceOriginal}, e)

	_, err := svc.Reparent(427560, 427553)
	require.NoError(t, err)
	e = svc.EdgeFor(427560)
	assert.Equal(t, Edge{From: 427560, To: 427553, Source: SourceUser}, e)
}

func TestTreeProjection(t *testing.T) {
	svc := testService(t, DefaultRules())

	tr := svc.Tree("")
	assert.Equal(t, svc.Corpus().Len(), tr.Len())

	_, err := svc.Reparent(427560, 427553)
	require.NoError(t, err)
	tr = svc.Tree("")
	assert.Equal(t, corpus.NodeID(427553), tr.Mothers[427560])
}
