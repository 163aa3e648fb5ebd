package fsx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetPathTypeDoesNotExist(t *testing.T) {
	require.Equal(t, DoesNotExist, GetPathType(filepath.Join(t.TempDir(), "missing")))
}

func TestGetPathTypeFileAndDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	require.Equal(t, Directory, GetPathType(dir))
	require.Equal(t, File, GetPathType(file))
}

func populate(t *testing.T, root string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(root, "f"+string(rune('a'+i))), []byte("x"), 0o644))
	}
}

func TestDeleteBatchRemovesEverythingAcrossSeveralCalls(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "victim")
	require.NoError(t, os.Mkdir(target, 0o755))
	populate(t, target, 7)

	for i := 0; i < 20 && Exists(target); i++ {
		require.NoError(t, DeleteBatch(target, 2))
	}

	require.False(t, Exists(target))
}

func TestDeleteBatchOnNonDirectoryIsNoop(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	require.NoError(t, DeleteBatch(file, 2))
	require.True(t, Exists(file))
}

func TestDeleteBatchRecursesIntoSubdirectories(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "victim")
	nested := filepath.Join(target, "nested")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	populate(t, nested, 3)

	for i := 0; i < 20 && Exists(target); i++ {
		require.NoError(t, DeleteBatch(target, 10))
	}

	require.False(t, Exists(target))
}
