package archive

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func drain(t *testing.T, state *ExtractState, batchSize int) {
	t.Helper()
	for i := 0; i < 1000; i++ {
		status, err := state.Advance(batchSize)
		require.NoError(t, err)
		if status == StatusFinished {
			return
		}
	}
	t.Fatal("extraction did not finish within 1000 batches")
}

func TestExtractStateWritesAllEntries(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "dest")
	data := buildZip(t, map[string]string{
		"a.txt":        "hello",
		"dir/b.txt":    "world",
		"dir/sub/c.txt": "!",
	})

	state, err := NewExtractState(data, dest)
	require.NoError(t, err)
	drain(t, state, 2)

	contents, err := os.ReadFile(filepath.Join(dest, "a.txt"))
	require.NoError(t, err)
	require.Equal(t, "hello", string(contents))

	contents, err = os.ReadFile(filepath.Join(dest, "dir", "sub", "c.txt"))
	require.NoError(t, err)
	require.Equal(t, "!", string(contents))
}

func TestExtractStateSkipsMultiDotEntries(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "dest")
	data := buildZip(t, map[string]string{
		"ok.txt":         "kept",
		"weird.v2.1.txt": "skipped",
	})

	state, err := NewExtractState(data, dest)
	require.NoError(t, err)
	drain(t, state, 10)

	require.FileExists(t, filepath.Join(dest, "ok.txt"))
	require.NoFileExists(t, filepath.Join(dest, "weird.v2.1.txt"))
}

func TestExtractStateCleansExistingDestinationFirst(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "dest")
	require.NoError(t, os.MkdirAll(dest, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "stale.txt"), []byte("old"), 0o644))

	data := buildZip(t, map[string]string{"fresh.txt": "new"})

	state, err := NewExtractState(data, dest)
	require.NoError(t, err)
	drain(t, state, 1)

	require.NoFileExists(t, filepath.Join(dest, "stale.txt"))
	require.FileExists(t, filepath.Join(dest, "fresh.txt"))
}

func TestExtractStateBatchSizeIndependentOfResult(t *testing.T) {
	dest1 := filepath.Join(t.TempDir(), "dest1")
	dest2 := filepath.Join(t.TempDir(), "dest2")
	entries := map[string]string{"a.txt": "1", "b.txt": "2", "c.txt": "3", "d.txt": "4"}
	data1 := buildZip(t, entries)
	data2 := buildZip(t, entries)

	s1, err := NewExtractState(data1, dest1)
	require.NoError(t, err)
	drain(t, s1, 1)

	s2, err := NewExtractState(data2, dest2)
	require.NoError(t, err)
	drain(t, s2, 100)

	for name := range entries {
		b1, err := os.ReadFile(filepath.Join(dest1, name))
		require.NoError(t, err)
		b2, err := os.ReadFile(filepath.Join(dest2, name))
		require.NoError(t, err)
		require.Equal(t, b1, b2)
	}
}

func TestEnclosedNameRejectsEscape(t *testing.T) {
	require.Equal(t, "", enclosedName("../../etc/passwd"))
	require.Equal(t, "", enclosedName("/etc/passwd"))
	require.Equal(t, "a/b.txt", enclosedName("a/b.txt"))
}
