package snapshot

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/lineage/pkg/catalog"
	"github.com/mesh-intelligence/lineage/pkg/types"
)

// Load reads the snapshot file at path.
func Load(path string, opts ...catalog.Option) (*catalog.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrIO, err)
	}
	defer f.Close()

	c, err := Read(bufio.NewReader(f), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return c, nil
}

// Save writes the snapshot of c to path using the temp-file, fsync, rename
// pattern, so readers never observe a half-written file.
func Save(path string, c *catalog.Catalog) error {
	return writeAtomic(path, func(w io.Writer) error {
		return Write(w, c)
	})
}

// writeAtomic writes path through a temp file in the same directory that is
// synced and renamed over the target.
func writeAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %w", types.ErrIO, err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	if err := write(w); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: flushing buffer: %w", types.ErrIO, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: syncing temp file: %w", types.ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: closing temp file: %w", types.ErrIO, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: renaming temp file: %w", types.ErrIO, err)
	}
	return nil
}

// FileStore is a catalog.Store backed by a CSV snapshot file.
type FileStore struct {
	Path   string
	Logger *slog.Logger
}

var _ catalog.Store = (*FileStore)(nil)

// NewFileStore returns a store for the snapshot at path.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{Path: path, Logger: logger}
}

// Load implements catalog.Store.
func (s *FileStore) Load(ctx context.Context) (*catalog.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.logger().Debug("loading snapshot", slog.String("path", s.Path))
	return Load(s.Path, catalog.WithLogger(s.Logger))
}

// Save implements catalog.Store.
func (s *FileStore) Save(ctx context.Context, c *catalog.Catalog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := Save(s.Path, c); err != nil {
		return err
	}
	s.logger().Debug("snapshot saved", slog.String("path", s.Path), slog.Int("entries", c.Size()))
	return nil
}

func (s *FileStore) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}
