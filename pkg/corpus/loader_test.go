package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exportJSON = `[
	{"id": 427553, "slotsStart": 1, "slotsEnd": 4, "label": "In the beginning", "containerId": "Genesis.1.1", "originalMother": null, "book": "Genesis", "chapter": 1, "verse": 1, "typ": "xQtX", "reference": "Genesis 1:1"},
	{"id": 427554, "slotsStart": 5, "slotsEnd": 9, "label": "the heavens", "containerId": "Genesis.1.1", "originalMother": 427553, "book": "Genesis", "chapter": 1, "verse": 1, "rela": "Objc", "coreFunctions": ["Pred", "Subj"]}
]`

func TestLoadExport(t *testing.T) {
	t.Run("decodes array", func(t *testing.T) {
		snap, err := LoadExport(strings.NewReader(exportJSON))
		require.NoError(t, err)
		assert.Equal(t, 2, snap.Len())

		root, ok := snap.Node(427553)
		require.True(t, ok)
		assert.Equal(t, NoMother, root.OriginalMother)
		assert.Equal(t, KindClause, root.Kind)
		assert.Equal(t, "xQtX", root.Tags.Typ)
		assert.Equal(t, "Genesis 1:1", root.Reference)

		child, ok := snap.Node(427554)
		require.True(t, ok)
		assert.Equal(t, NodeID(427553), child.OriginalMother)
		assert.Equal(t, []string{"Pred", "Subj"}, child.Tags.CoreFunctions)
	})

	t.Run("rejects non-array", func(t *testing.T) {
		_, err := LoadExport(strings.NewReader(`{"id": 1}`))
		assert.Error(t, err)
	})

	t.Run("rejects malformed element", func(t *testing.T) {
		_, err := LoadExport(strings.NewReader(`[{"id": "nope"}]`))
		assert.Error(t, err)
	})

	t.Run("empty array is an empty corpus", func(t *testing.T) {
		_, err := LoadExport(strings.NewReader(`[]`))
		assert.ErrorIs(t, err, ErrEmptyCorpus)
	})
}

func TestLoadExportDir(t *testing.T) {
	t.Run("reads clauses.json", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "clauses.json"), []byte(exportJSON), 0644))

		snap, err := LoadExportDir(dir)
		require.NoError(t, err)
		assert.Equal(t, 2, snap.Len())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadExportDir(t.TempDir())
		assert.Error(t, err)
	})
}

func TestLoadExportMetadata(t *testing.T) {
	dir := t.TempDir()
	meta := `{"exportDate": "2025-11-02", "source": "bhsa", "statistics": {"totalClauses": 88101, "books": 39}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata.json"), []byte(meta), 0644))

	md, err := LoadExportMetadata(dir)
	require.NoError(t, err)
	assert.Equal(t, "bhsa", md.Source)
	assert.Equal(t, 88101, md.Statistics.TotalClauses)
	assert.Equal(t, 39, md.Statistics.Books)
}

func TestExportRoundTrip(t *testing.T) {
	snap := testSnapshot(t)

	for _, n := range snap.Nodes() {
		back := exportNode(n).clause()
		assert.Equal(t, n.ID, back.ID)
		assert.Equal(t, n.OriginalMother, back.OriginalMother)
		assert.Equal(t, n.ContainerID, back.ContainerID)
		assert.Equal(t, n.Tags, back.Tags)
	}
}
