package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(StoreOptions{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	store := openTestStore(t)
	snap := testSnapshot(t)

	require.NoError(t, store.WriteSnapshot(snap))

	got, err := store.ReadSnapshot()
	require.NoError(t, err)
	assert.Equal(t, snap.Len(), got.Len())
	assert.Equal(t, snap.Books(), got.Books())

	for _, n := range snap.Nodes() {
		gn, ok := got.Node(n.ID)
		require.True(t, ok, "clause %d missing after round trip", n.ID)
		assert.Equal(t, n.OriginalMother, gn.OriginalMother)
		assert.Equal(t, n.SlotsStart, gn.SlotsStart)
		assert.Equal(t, n.ContainerID, gn.ContainerID)
		assert.Equal(t, n.Label, gn.Label)
	}
}

func TestStoreCount(t *testing.T) {
	store := openTestStore(t)
	snap := testSnapshot(t)

	require.NoError(t, store.WriteSnapshot(snap))

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(snap.Len()), count)
}

func TestStoreEmpty(t *testing.T) {
	store := openTestStore(t)

	_, err := store.ReadSnapshot()
	assert.ErrorIs(t, err, ErrEmptyCorpus)
}

func TestStoreRewrite(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.WriteSnapshot(testSnapshot(t)))

	// A second import replaces the previous contents wholesale.
	small, err := NewSnapshot([]*ClauseNode{
		{ID: 10, SlotsStart: 1, SlotsEnd: 2, Book: "Genesis", Chapter: 1, Verse: 1},
	})
	require.NoError(t, err)
	require.NoError(t, store.WriteSnapshot(small))

	got, err := store.ReadSnapshot()
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())
}
