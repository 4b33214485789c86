// Package sqlite provides the public API for the SQLite snapshot store.
// This package exposes the factory function while keeping the schema and
// load logic internal.
package sqlite

import (
	"log/slog"

	"github.com/mesh-intelligence/lineage/internal/sqlite"
	"github.com/mesh-intelligence/lineage/pkg/catalog"
)

// NewStore returns a catalog.Store backed by the SQLite database at path.
// A nil logger discards diagnostics.
//
// Example:
//
//	store := sqlite.NewStore("national.db", nil)
//	c, err := store.Load(ctx)
func NewStore(path string, logger *slog.Logger) catalog.Store {
	return sqlite.NewStore(path, logger)
}
