package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiscoverTablesBasic(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "iris-a.csv"), "")
	mustWrite(t, filepath.Join(dir, "nested", "iris-b.CSV"), "")
	mustWrite(t, filepath.Join(dir, "ignore.txt"), "")
	mustWrite(t, filepath.Join(dir, ".hidden.csv"), "")

	tables, err := DiscoverTables(dir)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "iris-a.csv"),
		filepath.Join(dir, "nested", "iris-b.CSV"),
	}, tables)
}

func TestDiscoverTablesMissingRoot(t *testing.T) {
	_, err := DiscoverTables(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
