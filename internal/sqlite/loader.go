package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/lineage/pkg/catalog"
	"github.com/mesh-intelligence/lineage/pkg/types"
)

// loadSnapshot builds a Catalog from the database in one read transaction.
// Returns the catalog and the stored snapshot ID.
func loadSnapshot(ctx context.Context, db *sql.DB, opts ...catalog.Option) (*catalog.Catalog, string, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, "", ioError("beginning load transaction", err)
	}
	defer tx.Rollback()

	var snapshotID string
	var capacity int
	err = tx.QueryRowContext(ctx,
		`SELECT snapshot_id, capacity FROM snapshot`,
	).Scan(&snapshotID, &capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("%w: no snapshot row", types.ErrMalformedRecord)
	}
	if err != nil {
		return nil, "", ioError("reading snapshot row", err)
	}

	c, err := catalog.New(capacity, opts...)
	if err != nil {
		return nil, "", fmt.Errorf("%w: snapshot row: %w", types.ErrMalformedRecord, err)
	}

	// Pass one: entries.
	if err := loadEntries(ctx, tx, c); err != nil {
		return nil, "", err
	}

	// Pass two: links.
	records, err := loadLinks(ctx, tx)
	if err != nil {
		return nil, "", err
	}
	if err := c.Resolve(records); err != nil {
		return nil, "", err
	}

	if err := tx.Commit(); err != nil {
		return nil, "", ioError("committing load transaction", err)
	}
	return c, snapshotID, nil
}

func loadEntries(ctx context.Context, tx *sql.Tx, c *catalog.Catalog) error {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, name, primary_kind, secondary_kind FROM entries ORDER BY id`)
	if err != nil {
		return ioError("querying entries", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e types.Entry
		var primary, secondary string
		if err := rows.Scan(&e.ID, &e.Name, &primary, &secondary); err != nil {
			return ioError("scanning entry", err)
		}
		if e.Primary, err = types.ParseKind(primary); err != nil {
			return fmt.Errorf("%w: entry %d: %w", types.ErrMalformedRecord, e.ID, err)
		}
		if e.Secondary, err = types.ParseKind(secondary); err != nil {
			return fmt.Errorf("%w: entry %d: %w", types.ErrMalformedRecord, e.ID, err)
		}
		if err := c.Add(e); err != nil {
			return fmt.Errorf("entry %d: %w", e.ID, err)
		}
	}
	if err := rows.Err(); err != nil {
		return ioError("reading entries", err)
	}
	return nil
}

// loadLinks groups the stored edges by precursor, in ordinal order, as
// records for catalog.Resolve.
func loadLinks(ctx context.Context, tx *sql.Tx) ([]types.Entry, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT from_id, to_id FROM links ORDER BY from_id, ordinal`)
	if err != nil {
		return nil, ioError("querying links", err)
	}
	defer rows.Close()

	var records []types.Entry
	for rows.Next() {
		var from, to int
		if err := rows.Scan(&from, &to); err != nil {
			return nil, ioError("scanning link", err)
		}
		if n := len(records); n == 0 || records[n-1].ID != from {
			records = append(records, types.Entry{ID: from})
		}
		last := &records[len(records)-1]
		last.Successors = append(last.Successors, to)
	}
	if err := rows.Err(); err != nil {
		return nil, ioError("reading links", err)
	}
	return records, nil
}
