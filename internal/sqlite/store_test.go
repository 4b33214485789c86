package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/lineage/internal/snapshot"
	"github.com/mesh-intelligence/lineage/pkg/catalog"
	"github.com/mesh-intelligence/lineage/pkg/types"
)

func newCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(10)
	require.NoError(t, err)

	add := func(id int, name string, primary, secondary types.Kind) {
		e := types.NewEntry(id, name)
		e.Primary, e.Secondary = primary, secondary
		require.NoError(t, c.Add(e))
	}
	add(1, "Bulbasaur", types.KindGrass, types.KindPoison)
	add(2, "Ivysaur", types.KindGrass, types.KindPoison)
	add(3, "Venusaur", types.KindGrass, types.KindPoison)
	add(7, "Eevee", types.KindNormal, types.KindNone)
	add(8, "Vaporeon", types.KindWater, types.KindNone)
	add(9, "Jolteon", types.KindElectric, types.KindNone)
	add(10, "Missingno", types.KindUnknown, types.KindNone)

	require.NoError(t, c.Link(1, 2))
	require.NoError(t, c.Link(2, 3))
	require.NoError(t, c.Link(7, 9))
	require.NoError(t, c.Link(7, 8))
	return c
}

func openRaw(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	empty, err := catalog.New(4)
	require.NoError(t, err)

	tests := []struct {
		name    string
		catalog *catalog.Catalog
	}{
		{name: "empty", catalog: empty},
		{name: "branching", catalog: newCatalog(t)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore(filepath.Join(t.TempDir(), "national.db"), nil)
			require.NoError(t, store.Save(ctx, tt.catalog))

			back, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.catalog.Capacity(), back.Capacity())
			assert.Equal(t, tt.catalog.Entries(), back.Entries())
			require.NoError(t, back.Verify())
		})
	}
}

func TestStoreMatchesCSVRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newCatalog(t)

	var buf bytes.Buffer
	require.NoError(t, snapshot.Write(&buf, c))
	fromCSV, err := snapshot.Read(&buf)
	require.NoError(t, err)

	store := NewStore(filepath.Join(t.TempDir(), "national.db"), nil)
	require.NoError(t, store.Save(ctx, c))
	fromSQLite, err := store.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, fromCSV.Capacity(), fromSQLite.Capacity())
	assert.Equal(t, fromCSV.Entries(), fromSQLite.Entries())
}

func TestStoreSaveReplacesContent(t *testing.T) {
	ctx := context.Background()
	store := NewStore(filepath.Join(t.TempDir(), "national.db"), nil)

	c := newCatalog(t)
	require.NoError(t, store.Save(ctx, c))
	first, err := store.Info(ctx)
	require.NoError(t, err)

	require.NoError(t, c.Delete(2))
	require.NoError(t, store.Save(ctx, c))
	second, err := store.Info(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, first.SnapshotID, second.SnapshotID)
	assert.Equal(t, 7, first.Entries)
	assert.Equal(t, 4, first.Links)
	assert.Equal(t, 6, second.Entries)
	assert.Equal(t, 2, second.Links)

	back, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, c.Entries(), back.Entries())

	var rows int
	require.NoError(t, openRaw(t, store.Path).QueryRow(`SELECT COUNT(*) FROM snapshot`).Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestStoreInfo(t *testing.T) {
	ctx := context.Background()
	store := NewStore(filepath.Join(t.TempDir(), "national.db"), nil)
	before := time.Now().UTC().Add(-time.Second)
	require.NoError(t, store.Save(ctx, newCatalog(t)))

	info, err := store.Info(ctx)
	require.NoError(t, err)

	id, err := uuid.Parse(info.SnapshotID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.Equal(t, 10, info.Capacity)
	assert.False(t, info.WrittenAt.Before(before.Truncate(time.Second)))
}

func TestStoreLoadErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		_, err := NewStore(filepath.Join(t.TempDir(), "missing.db"), nil).Load(ctx)
		assert.ErrorIs(t, err, types.ErrIO)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("no snapshot row", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "blank.db")
		db := openRaw(t, path)
		for _, ddl := range schemaDDL {
			_, err := db.Exec(ddl)
			require.NoError(t, err)
		}

		_, err := NewStore(path, nil).Load(ctx)
		assert.ErrorIs(t, err, types.ErrMalformedRecord)
	})

	t.Run("unknown kind", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "kinds.db")
		store := NewStore(path, nil)
		require.NoError(t, store.Save(ctx, newCatalog(t)))
		_, err := openRaw(t, path).Exec(`UPDATE entries SET primary_kind = 'PLASMA' WHERE id = 1`)
		require.NoError(t, err)

		_, err = store.Load(ctx)
		assert.ErrorIs(t, err, types.ErrMalformedRecord)
		assert.ErrorIs(t, err, types.ErrInvalidKind)
	})

	t.Run("dangling link is skipped", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dangling.db")
		store := NewStore(path, nil)
		require.NoError(t, store.Save(ctx, newCatalog(t)))
		_, err := openRaw(t, path).Exec(`INSERT INTO links (from_id, to_id, ordinal) VALUES (3, 6, 0)`)
		require.NoError(t, err)

		back, err := store.Load(ctx)
		require.NoError(t, err)
		e, err := back.Get(3)
		require.NoError(t, err)
		assert.Empty(t, e.Successors)
	})

	t.Run("cyclic links", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cycle.db")
		store := NewStore(path, nil)
		require.NoError(t, store.Save(ctx, newCatalog(t)))
		_, err := openRaw(t, path).Exec(`INSERT INTO links (from_id, to_id, ordinal) VALUES (3, 1, 0)`)
		require.NoError(t, err)

		_, err = store.Load(ctx)
		assert.ErrorIs(t, err, types.ErrCycle)
	})
}

func TestStoreCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := NewStore(filepath.Join(t.TempDir(), "national.db"), nil)

	assert.ErrorIs(t, store.Save(ctx, newCatalog(t)), context.Canceled)
	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStoreSaveIntoMissingDirectory(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope", "national.db"), nil)
	err := store.Save(context.Background(), newCatalog(t))
	assert.ErrorIs(t, err, types.ErrIO)
}
