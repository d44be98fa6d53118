// internal/fsutil/finder_test.go
package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		path := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}
	return root
}

func TestFindFilesByExtension(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := writeTree(t, "b.csv", "a.CSV", "notes.txt", "chains/c.yaml")

	// --- Act ---
	files, err := FindFilesByExtension(root, ".csv", ".yaml")

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.CSV"),
		filepath.Join(root, "b.csv"),
		filepath.Join(root, "chains", "c.yaml"),
	}, files)
}

func TestExpandPaths(t *testing.T) {
	t.Parallel()

	root := writeTree(t, "fit/output_1.csv", "fit/output_2.csv", "fit/output.log", "extra.yaml")

	files, err := ExpandPaths([]string{filepath.Join(root, "extra.yaml"), filepath.Join(root, "fit")}, ".csv")

	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "extra.yaml"),
		filepath.Join(root, "fit", "output_1.csv"),
		filepath.Join(root, "fit", "output_2.csv"),
	}, files)

	_, err = ExpandPaths([]string{filepath.Join(root, "missing")}, ".csv")
	assert.Error(t, err)
}

func TestFindFilesByExtension_PanicsWithoutExtension(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { _, _ = FindFilesByExtension(t.TempDir()) })
}
