// Package snapshot reads and writes a Catalog as a flat CSV snapshot.
//
// The first record holds the capacity. Every following record is one entry:
//
//	id,name,primary,secondary,precursor,successor...
//
// precursor is empty for a root and the successor column count varies.
// Records are written in ascending ID order. Reading is two-pass: all
// entries are added first, then chain references are resolved, so rows may
// reference entries that appear later in the file.
package snapshot

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/lineage/pkg/catalog"
	"github.com/mesh-intelligence/lineage/pkg/types"
)

// Fixed columns of an entry record.
const (
	colID = iota
	colName
	colPrimary
	colSecondary
	colPrecursor
	colSuccessors
)

// Read parses a snapshot and returns the populated, linked catalog. opts are
// passed to catalog.New.
//
// Rows that cannot be parsed return ErrMalformedRecord with the line number.
// Catalog errors from adding a row (duplicates, range, capacity) are returned
// wrapped with the line number. Reader failures return ErrIO.
func Read(r io.Reader, opts ...catalog.Option) (*catalog.Catalog, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: missing capacity header", types.ErrMalformedRecord)
	}
	if err != nil {
		return nil, readError(err)
	}
	capacity, err := parseHeader(header)
	if err != nil {
		return nil, fmt.Errorf("%w: line 1: %w", types.ErrMalformedRecord, err)
	}
	c, err := catalog.New(capacity, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: line 1: %w", types.ErrMalformedRecord, err)
	}

	// Pass one: construct and register.
	var records []types.Entry
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, readError(err)
		}
		line, _ := cr.FieldPos(0)

		e, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", types.ErrMalformedRecord, line, err)
		}
		if err := c.Add(e); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, e)
	}

	// Pass two: resolve and link.
	if err := c.Resolve(records); err != nil {
		return nil, err
	}

	c.Logger().Debug("snapshot read",
		slog.Int("capacity", capacity),
		slog.Int("entries", len(records)),
	)
	return c, nil
}

// Write emits the snapshot of c. Write failures return ErrIO.
func Write(w io.Writer, c *catalog.Catalog) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{strconv.Itoa(c.Capacity())}); err != nil {
		return fmt.Errorf("%w: writing header: %w", types.ErrIO, err)
	}

	slots, err := c.List(types.FilterKnown)
	if err != nil {
		return err
	}
	for _, slot := range slots {
		if err := cw.Write(formatRecord(*slot.Entry)); err != nil {
			return fmt.Errorf("%w: writing entry %d: %w", types.ErrIO, slot.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("%w: flushing: %w", types.ErrIO, err)
	}

	c.Logger().Debug("snapshot written",
		slog.Int("capacity", c.Capacity()),
		slog.Int("entries", len(slots)),
	)
	return nil
}

func parseHeader(rec []string) (int, error) {
	if len(rec) != 1 {
		return 0, fmt.Errorf("header has %d fields, want 1", len(rec))
	}
	capacity, err := parseInt(rec[0])
	if err != nil {
		return 0, fmt.Errorf("capacity: %w", err)
	}
	return capacity, nil
}

// parseRecord converts one entry row. The returned entry carries the stored
// precursor and successor IDs unresolved.
func parseRecord(rec []string) (types.Entry, error) {
	if len(rec) < colSuccessors {
		return types.Entry{}, fmt.Errorf("%d fields, want at least %d", len(rec), colSuccessors)
	}

	var e types.Entry
	var err error
	if e.ID, err = parseInt(rec[colID]); err != nil {
		return types.Entry{}, fmt.Errorf("id: %w", err)
	}
	e.Name = rec[colName]
	if e.Primary, err = types.ParseKind(rec[colPrimary]); err != nil {
		return types.Entry{}, err
	}
	if e.Secondary, err = types.ParseKind(rec[colSecondary]); err != nil {
		return types.Entry{}, err
	}
	if p := strings.TrimSpace(rec[colPrecursor]); p != "" {
		if e.Precursor, err = parseInt(p); err != nil {
			return types.Entry{}, fmt.Errorf("precursor: %w", err)
		}
	}
	for _, field := range rec[colSuccessors:] {
		if strings.TrimSpace(field) == "" {
			continue
		}
		s, err := parseInt(field)
		if err != nil {
			return types.Entry{}, fmt.Errorf("successor: %w", err)
		}
		e.Successors = append(e.Successors, s)
	}
	return e, nil
}

func formatRecord(e types.Entry) []string {
	rec := make([]string, colSuccessors, colSuccessors+len(e.Successors))
	rec[colID] = strconv.Itoa(e.ID)
	rec[colName] = e.Name
	rec[colPrimary] = e.Primary.String()
	rec[colSecondary] = e.Secondary.String()
	if e.HasPrecursor() {
		rec[colPrecursor] = strconv.Itoa(e.Precursor)
	}
	for _, s := range e.Successors {
		rec = append(rec, strconv.Itoa(s))
	}
	return rec
}

func parseInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return n, nil
}

// readError classifies a csv reader failure: syntax errors are malformed
// records, anything else is an I/O failure.
func readError(err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return fmt.Errorf("%w: %w", types.ErrMalformedRecord, err)
	}
	return fmt.Errorf("%w: %w", types.ErrIO, err)
}
