package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScope(t *testing.T) {
	snap := testSnapshot(t)

	t.Run("book only", func(t *testing.T) {
		sc, err := snap.ParseScope("Genesis")
		require.NoError(t, err)
		assert.Equal(t, &Scope{Book: "Genesis"}, sc)
	})

	t.Run("abbreviated book and chapter", func(t *testing.T) {
		sc, err := snap.ParseScope("gen.1")
		require.NoError(t, err)
		assert.Equal(t, &Scope{Book: "Genesis", Chapter: 1}, sc)
	})

	t.Run("single verse", func(t *testing.T) {
		sc, err := snap.ParseScope("Genesis.1.2")
		require.NoError(t, err)
		assert.Equal(t, &Scope{Book: "Genesis", Chapter: 1, VerseStart: 2, VerseEnd: 2}, sc)
	})

	t.Run("verse range", func(t *testing.T) {
		sc, err := snap.ParseScope("Genesis.1.1-3")
		require.NoError(t, err)
		assert.Equal(t, &Scope{Book: "Genesis", Chapter: 1, VerseStart: 1, VerseEnd: 3}, sc)
	})

	t.Run("whitespace trimmed", func(t *testing.T) {
		sc, err := snap.ParseScope("  Genesis.1  ")
		require.NoError(t, err)
		assert.Equal(t, "Genesis", sc.Book)
	})

	t.Run("errors", func(t *testing.T) {
		for _, raw := range []string{
			"",
			"Leviticus",
			"Genesis.x",
			"Genesis.1.x",
			"Genesis.1.3-1",
			"Genesis.1.1-x",
		} {
			_, err := snap.ParseScope(raw)
			assert.Error(t, err, "scope %q", raw)
		}
	})

	t.Run("unknown book wraps sentinel", func(t *testing.T) {
		_, err := snap.ParseScope("Leviticus.1")
		assert.ErrorIs(t, err, ErrUnknownBook)
	})
}

func TestScopeMatchesAndFilter(t *testing.T) {
	snap := testSnapshot(t)

	t.Run("book scope", func(t *testing.T) {
		sc, err := snap.ParseScope("Genesis")
		require.NoError(t, err)
		assert.Len(t, snap.FilterScope(sc), 7)
	})

	t.Run("chapter scope", func(t *testing.T) {
		sc, err := snap.ParseScope("Exodus.1")
		require.NoError(t, err)
		assert.Len(t, snap.FilterScope(sc), 1)
	})

	t.Run("verse scope", func(t *testing.T) {
		sc, err := snap.ParseScope("Genesis.1.3")
		require.NoError(t, err)
		got := snap.FilterScope(sc)
		require.Len(t, got, 3)
		assert.Equal(t, NodeID(427566), got[0].ID)
		assert.Equal(t, NodeID(427567), got[1].ID)
		assert.Equal(t, NodeID(427568), got[2].ID)
	})

	t.Run("verse range scope", func(t *testing.T) {
		sc, err := snap.ParseScope("Genesis.1.1-2")
		require.NoError(t, err)
		assert.Len(t, snap.FilterScope(sc), 4)
	})

	t.Run("no matches", func(t *testing.T) {
		sc, err := snap.ParseScope("Genesis.40")
		require.NoError(t, err)
		assert.Empty(t, snap.FilterScope(sc))
	})
}
