package download

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackageFile_CommitReplacesDestination(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	destination := filepath.Join(dir, "zk_stable")
	require.NoError(t, os.WriteFile(destination, []byte("old"), 0o600))

	file, err := createPackageFile(destination, packageFileMode)
	require.NoError(t, err)

	_, err = file.Write([]byte("new contents"))
	require.NoError(t, err)

	contents, err := os.ReadFile(destination)
	require.NoError(t, err)
	require.Equal(t, "old", string(contents), "destination changes only on commit")

	require.NoError(t, file.Commit())
	require.NoError(t, file.Cleanup())

	contents, err = os.ReadFile(destination)
	require.NoError(t, err)
	require.Equal(t, "new contents", string(contents))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestPackageFile_CleanupLeavesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	file, err := createPackageFile(filepath.Join(dir, "zk_stable"), packageFileMode)
	require.NoError(t, err)

	_, err = file.Write([]byte("partial"))
	require.NoError(t, err)
	require.NoError(t, file.Cleanup())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}
