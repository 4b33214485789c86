// Package sqlite implements a catalog.Store that keeps the snapshot in a
// SQLite database file. Every Save replaces the whole content inside one
// transaction and stamps it with a fresh UUID v7 snapshot ID.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/lineage/pkg/catalog"
	"github.com/mesh-intelligence/lineage/pkg/types"
)

// Store persists a Catalog into the SQLite database at Path.
type Store struct {
	Path   string
	Logger *slog.Logger
}

var _ catalog.Store = (*Store)(nil)

// Info describes the snapshot held by a database.
type Info struct {
	SnapshotID string
	Capacity   int
	WrittenAt  time.Time
	Entries    int
	Links      int
}

// NewStore returns a store for the database at path. A nil logger discards.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{Path: path, Logger: logger}
}

// Save replaces the stored snapshot with c.
func (s *Store) Save(ctx context.Context, c *catalog.Catalog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return ioError("beginning save transaction", err)
	}
	defer tx.Rollback()

	for _, table := range snapshotTables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return ioError("clearing "+table, err)
		}
	}

	snapshotID := generateUUID()
	writtenAt := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshot (snapshot_id, capacity, written_at) VALUES (?, ?, ?)`,
		snapshotID, c.Capacity(), writtenAt,
	); err != nil {
		return ioError("writing snapshot row", err)
	}

	entries := c.Entries()
	if err := insertEntries(ctx, tx, entries); err != nil {
		return err
	}
	links, err := insertLinks(ctx, tx, entries)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return ioError("committing save transaction", err)
	}

	s.logger().Debug("sqlite snapshot saved",
		slog.String("path", s.Path),
		slog.String("snapshot_id", snapshotID),
		slog.Int("entries", len(entries)),
		slog.Int("links", links),
	)
	return nil
}

// Load reads the stored snapshot. Entries are added first and the links are
// replayed afterwards, so the stored row order does not matter.
func (s *Store) Load(ctx context.Context) (*catalog.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(s.Path); err != nil {
		return nil, ioError("opening "+s.Path, err)
	}
	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	c, snapshotID, err := loadSnapshot(ctx, db, catalog.WithLogger(s.Logger))
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", s.Path, err)
	}

	s.logger().Debug("sqlite snapshot loaded",
		slog.String("path", s.Path),
		slog.String("snapshot_id", snapshotID),
		slog.Int("entries", c.Size()),
	)
	return c, nil
}

// Info reports the snapshot metadata without building a Catalog.
func (s *Store) Info(ctx context.Context) (Info, error) {
	if _, err := os.Stat(s.Path); err != nil {
		return Info{}, ioError("opening "+s.Path, err)
	}
	db, err := s.open(ctx)
	if err != nil {
		return Info{}, err
	}
	defer db.Close()

	var info Info
	var writtenAt string
	err = db.QueryRowContext(ctx,
		`SELECT snapshot_id, capacity, written_at FROM snapshot`,
	).Scan(&info.SnapshotID, &info.Capacity, &writtenAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Info{}, fmt.Errorf("%w: no snapshot row", types.ErrMalformedRecord)
	}
	if err != nil {
		return Info{}, ioError("reading snapshot row", err)
	}
	if info.WrittenAt, err = time.Parse(time.RFC3339, writtenAt); err != nil {
		return Info{}, fmt.Errorf("%w: written_at: %w", types.ErrMalformedRecord, err)
	}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&info.Entries); err != nil {
		return Info{}, ioError("counting entries", err)
	}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM links`).Scan(&info.Links); err != nil {
		return Info{}, ioError("counting links", err)
	}
	return info, nil
}

// open opens the database and makes sure the schema exists.
func (s *Store) open(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("sqlite", s.Path)
	if err != nil {
		return nil, ioError("opening "+s.Path, err)
	}
	for _, ddl := range schemaDDL {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			db.Close()
			return nil, ioError("creating schema", err)
		}
	}
	return db, nil
}

func (s *Store) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

func insertEntries(ctx context.Context, tx *sql.Tx, entries []types.Entry) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entries (id, name, primary_kind, secondary_kind) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return ioError("preparing entry insert", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.ID, e.Name, e.Primary.String(), e.Secondary.String()); err != nil {
			return ioError(fmt.Sprintf("writing entry %d", e.ID), err)
		}
	}
	return nil
}

// insertLinks writes one row per successor edge. ordinal keeps the position
// in the precursor's successor list.
func insertLinks(ctx context.Context, tx *sql.Tx, entries []types.Entry) (int, error) {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO links (from_id, to_id, ordinal) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, ioError("preparing link insert", err)
	}
	defer stmt.Close()

	n := 0
	for _, e := range entries {
		for i, s := range e.Successors {
			if _, err := stmt.ExecContext(ctx, e.ID, s, i); err != nil {
				return n, ioError(fmt.Sprintf("writing link %d -> %d", e.ID, s), err)
			}
			n++
		}
	}
	return n, nil
}

// generateUUID generates a new UUID v7 for snapshot IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}

func ioError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", types.ErrIO, op, err)
}
