package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/lineage/pkg/types"
)

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "national.csv")
	c := branching(t)

	require.NoError(t, Save(path, c))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, branchingCSV, string(data))

	back, err := Load(path)
	require.NoError(t, err)
	assertSameCatalog(t, c, back)
}

func TestSaveOverwritesAndLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "national.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	require.NoError(t, Save(path, branching(t)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "national.csv", entries[0].Name())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, types.ErrIO)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveIntoMissingDirectory(t *testing.T) {
	err := Save(filepath.Join(t.TempDir(), "nope", "national.csv"), branching(t))
	assert.ErrorIs(t, err, types.ErrIO)
}

func TestLoadMalformedFileNamesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("3\n1,Alpha\n"), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, types.ErrMalformedRecord)
	assert.Contains(t, err.Error(), path)
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "kanto.csv"), nil)
	c := branching(t)

	require.NoError(t, store.Save(ctx, c))
	back, err := store.Load(ctx)
	require.NoError(t, err)
	assertSameCatalog(t, c, back)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = store.Load(cancelled)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, store.Save(cancelled, c), context.Canceled)
}
