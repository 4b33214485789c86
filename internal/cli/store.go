package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"

	"github.com/mesh-intelligence/lineage/internal/paths"
	"github.com/mesh-intelligence/lineage/internal/snapshot"
	"github.com/mesh-intelligence/lineage/internal/sqlite"
	"github.com/mesh-intelligence/lineage/pkg/catalog"
	"github.com/mesh-intelligence/lineage/pkg/types"
)

// snapshotPath is the file the configured backend reads and writes.
func (a *app) snapshotPath() string {
	return paths.SnapshotPath(a.config.DataDir, a.config.SnapshotFile())
}

// store returns the catalog.Store for the configured backend.
func (a *app) store() catalog.Store {
	return openStore(a.config.Backend, a.snapshotPath(), a.logger)
}

func openStore(backend, path string, logger *slog.Logger) catalog.Store {
	if backend == types.BackendSQLite {
		return sqlite.NewStore(path, logger)
	}
	return snapshot.NewFileStore(path, logger)
}

// load reads the configured snapshot.
func (a *app) load(ctx context.Context) (*catalog.Catalog, error) {
	c, err := a.store().Load(ctx)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("no snapshot at %s (run 'lineage init'): %w", a.snapshotPath(), err)
	}
	return c, err
}

// update loads the snapshot, applies fn and saves the result. Nothing is
// written when fn fails.
func (a *app) update(ctx context.Context, fn func(c *catalog.Catalog) error) error {
	c, err := a.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(c); err != nil {
		return err
	}
	return a.store().Save(ctx, c)
}

// parseID converts a positional argument to an entry ID.
func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
