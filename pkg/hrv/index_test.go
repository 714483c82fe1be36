package hrv_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalsum/vitalsum/pkg/hrv"
)

func writeHistogram(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBuildIndexRecursive(t *testing.T) {
	dir := t.TempDir()
	writeHistogram(t, dir, "a.binning_data.json", "{}")
	writeHistogram(t, dir, filepath.Join("nested", "deeper", "b.binning_data.json"), "{}")
	writeHistogram(t, dir, "notes.txt", "not indexed")

	idx := hrv.BuildIndex(dir)
	assert.Equal(t, 2, idx.Len())

	_, ok := idx.Resolve("a.binning_data.json")
	assert.True(t, ok)
	path, ok := idx.Resolve("b.binning_data.json")
	require.True(t, ok)
	assert.Contains(t, path, "deeper")
}

func TestBuildIndexMissingDir(t *testing.T) {
	idx := hrv.BuildIndex(filepath.Join(t.TempDir(), "absent"))
	assert.Equal(t, 0, idx.Len())
	_, ok := idx.Resolve("anything.binning_data.json")
	assert.False(t, ok)
}

func TestResolveSubstringFallback(t *testing.T) {
	// Naming-convention drift: the reference lacks the device prefix
	// the indexed file carries.
	dir := t.TempDir()
	want := writeHistogram(t, dir, "device1_abc123.binning_data.json", "{}")

	idx := hrv.BuildIndex(dir)
	path, ok := idx.Resolve("abc123.binning_data.json")
	require.True(t, ok)
	assert.Equal(t, want, path)

	// And the other containment direction.
	path, ok = idx.Resolve("exported_device1_abc123.binning_data.json.bak")
	require.True(t, ok)
	assert.Equal(t, want, path)
}

func TestResolveDeterministicOnMultipleMatches(t *testing.T) {
	dir := t.TempDir()
	writeHistogram(t, dir, "b_token.binning_data.json", "{}")
	first := writeHistogram(t, dir, "a_token.binning_data.json", "{}")

	idx := hrv.BuildIndex(dir)
	for i := 0; i < 5; i++ {
		path, ok := idx.Resolve("token.binning_data.json")
		require.True(t, ok)
		assert.Equal(t, first, path, "sorted-name order keeps resolution stable")
	}
}

func TestResolveEmptyReference(t *testing.T) {
	idx := hrv.BuildIndex(t.TempDir())
	_, ok := idx.Resolve("   ")
	assert.False(t, ok)
}
