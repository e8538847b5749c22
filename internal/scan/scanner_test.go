package scan

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("PK"), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestFindDumpsWalksDirectory(t *testing.T) {
	root := t.TempDir()
	old := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	touch(t, filepath.Join(root, "facebook-2022.zip"), old)
	touch(t, filepath.Join(root, "nested", "facebook-2024.ZIP"), recent)
	touch(t, filepath.Join(root, "notes.txt"), recent)
	touch(t, filepath.Join(root, ".cache", "hidden.zip"), recent)

	files, err := FindDumps(root)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(root, "nested", "facebook-2024.ZIP"), files[0].Path)
	assert.Equal(t, filepath.Join(root, "facebook-2022.zip"), files[1].Path)
	assert.Equal(t, old.Unix(), files[1].Mtime)
	assert.Equal(t, int64(2), files[1].Size)
}

func TestFindDumpsSingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.zip")
	touch(t, path, time.Now())

	files, err := FindDumps(path)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, path, files[0].Path)
}

func TestFindDumpsMissingRoot(t *testing.T) {
	_, err := FindDumps(filepath.Join(t.TempDir(), "absent"))
	assert.True(t, os.IsNotExist(err))

	files, err := FindDumps("")
	assert.NoError(t, err)
	assert.Empty(t, files)
}
