package snapshot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mesh-intelligence/lineage/pkg/catalog"
	"github.com/mesh-intelligence/lineage/pkg/types"
)

// jsonlHeader is the first line of a JSONL export.
type jsonlHeader struct {
	Capacity int `json:"capacity"`
}

// WriteJSONL emits c as JSON lines: a {"capacity":N} header followed by one
// entry object per line in ascending ID order. Kinds are written by name.
func WriteJSONL(w io.Writer, c *catalog.Catalog) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(jsonlHeader{Capacity: c.Capacity()}); err != nil {
		return fmt.Errorf("%w: writing header: %w", types.ErrIO, err)
	}
	for _, e := range c.Entries() {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("%w: writing entry %d: %w", types.ErrIO, e.ID, err)
		}
	}
	return nil
}

// ReadJSONL parses a JSONL export. Empty lines are skipped; a line that is not
// valid JSON returns ErrMalformedRecord with its line number. Chains are
// resolved after all entries are added, as with Read.
func ReadJSONL(r io.Reader, opts ...catalog.Option) (*catalog.Catalog, error) {
	scanner := bufio.NewScanner(r)
	line := 0
	var c *catalog.Catalog
	var records []types.Entry

	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		if c == nil {
			var h jsonlHeader
			if err := json.Unmarshal(raw, &h); err != nil {
				return nil, fmt.Errorf("%w: line %d: %w", types.ErrMalformedRecord, line, err)
			}
			var err error
			if c, err = catalog.New(h.Capacity, opts...); err != nil {
				return nil, fmt.Errorf("%w: line %d: %w", types.ErrMalformedRecord, line, err)
			}
			continue
		}

		var e types.Entry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", types.ErrMalformedRecord, line, err)
		}
		if err := c.Add(e); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrIO, err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: missing capacity header", types.ErrMalformedRecord)
	}

	if err := c.Resolve(records); err != nil {
		return nil, err
	}
	return c, nil
}

// Export writes c to path atomically as JSONL.
func Export(path string, c *catalog.Catalog) error {
	return writeAtomic(path, func(w io.Writer) error {
		return WriteJSONL(w, c)
	})
}
