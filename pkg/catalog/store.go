package catalog

import "context"

// Store persists and restores a whole Catalog. Implementations write the
// complete snapshot on every Save; there are no incremental updates.
type Store interface {
	// Load reads the snapshot and returns a populated, linked Catalog.
	Load(ctx context.Context) (*Catalog, error)

	// Save replaces the stored snapshot with the current state of c.
	Save(ctx context.Context, c *Catalog) error
}
