package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/mesh-intelligence/lineage/pkg/types"
)

// Link makes to a successor of from. Linking an existing successor is a
// no-op. If to already has a different precursor it is moved under from.
// Returns ErrNotFound for unknown IDs, ErrSelfLink when from equals to, and
// ErrCycle when to is from or one of its ancestors.
func (c *Catalog) Link(from, to int) error {
	if from == to {
		return fmt.Errorf("%w: %d", types.ErrSelfLink, from)
	}
	parent, err := c.lookup(from)
	if err != nil {
		return err
	}
	child, err := c.lookup(to)
	if err != nil {
		return err
	}
	if slices.Contains(parent.Successors, to) {
		return nil
	}
	if c.isAncestor(to, from) {
		return fmt.Errorf("%w: %d -> %d", types.ErrCycle, from, to)
	}
	c.attach(parent, child)
	return nil
}

// Unlink removes to from the successors of from. The precursor of to is
// cleared only when it points at from. Unlinking a pair that is not linked
// is a no-op.
func (c *Catalog) Unlink(from, to int) error {
	parent, err := c.lookup(from)
	if err != nil {
		return err
	}
	if _, err := c.lookup(to); err != nil {
		return err
	}
	c.detach(parent, to)
	return nil
}

// SetPrecursor makes precursorID the precursor of id. A precursorID of 0
// clears the precursor. Errors are those of Link.
func (c *Catalog) SetPrecursor(id, precursorID int) error {
	if precursorID == 0 {
		return c.ClearPrecursor(id)
	}
	return c.Link(precursorID, id)
}

// ClearPrecursor detaches id from its precursor, making it a root.
func (c *Catalog) ClearPrecursor(id int) error {
	e, err := c.lookup(id)
	if err != nil {
		return err
	}
	c.clearPrecursor(e)
	return nil
}

// Resolve replays stored chain references against the catalog. It is the
// second pass of a snapshot load: every entry in records must already be in
// the catalog. Only edges are added; a zero Precursor never clears one.
// References to IDs that are not in the catalog are skipped with a warning.
// A reference that would form a cycle returns ErrMalformedRecord.
func (c *Catalog) Resolve(records []types.Entry) error {
	skipped := 0
	for _, rec := range records {
		if rec.Precursor != 0 {
			if err := c.resolveEdge(rec.Precursor, rec.ID); err != nil {
				if !errors.Is(err, types.ErrNotFound) {
					return err
				}
				skipped++
			}
		}
		for _, s := range rec.Successors {
			if err := c.resolveEdge(rec.ID, s); err != nil {
				if !errors.Is(err, types.ErrNotFound) {
					return err
				}
				skipped++
			}
		}
	}
	if skipped > 0 {
		c.logger.Warn("dangling chain references skipped", slog.Int("count", skipped))
	}
	return nil
}

func (c *Catalog) resolveEdge(from, to int) error {
	err := c.Link(from, to)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, types.ErrNotFound):
		c.logger.Warn("chain reference to missing entry",
			slog.Int("from", from),
			slog.Int("to", to),
		)
		return err
	default:
		return fmt.Errorf("%w: entry %d: %w", types.ErrMalformedRecord, to, err)
	}
}

// RelinkAll re-asserts the precursor of every successor from its
// precursor's successor list, visiting entries in ascending ID order.
// Successor references to missing entries are dropped. Lists are not
// re-sorted. Returns how many pointers were changed or dropped.
func (c *Catalog) RelinkAll() int {
	changed := 0
	for _, id := range c.ids() {
		parent := c.byID[id]
		kept := parent.Successors[:0]
		for _, s := range parent.Successors {
			child, ok := c.byID[s]
			if !ok {
				changed++
				continue
			}
			kept = append(kept, s)
			if child.Precursor != id {
				child.Precursor = id
				changed++
			}
		}
		if len(kept) == 0 {
			kept = nil
		}
		parent.Successors = kept
	}
	c.logger.Debug("chains relinked", slog.Int("changed", changed))
	return changed
}

// Chain returns the whole chain containing id, depth first from its root,
// with successors in ID order.
func (c *Catalog) Chain(id int) ([]types.ChainLink, error) {
	e, err := c.lookup(id)
	if err != nil {
		return nil, err
	}
	root := e
	for steps := 0; root.Precursor != 0 && steps < len(c.byID); steps++ {
		p, ok := c.byID[root.Precursor]
		if !ok {
			break
		}
		root = p
	}

	var out []types.ChainLink
	seen := make(map[int]bool)
	var walk func(e *types.Entry, depth int)
	walk = func(e *types.Entry, depth int) {
		seen[e.ID] = true
		out = append(out, types.ChainLink{Depth: depth, Entry: e.Clone()})
		for _, s := range e.Successors {
			if child, ok := c.byID[s]; ok && !seen[s] && child.Precursor == e.ID {
				walk(child, depth+1)
			}
		}
	}
	walk(root, 0)
	return out, nil
}

// attach makes child a successor of parent, updating both ends and removing
// child from any previous precursor.
func (c *Catalog) attach(parent, child *types.Entry) {
	if child.Precursor != 0 && child.Precursor != parent.ID {
		if old, ok := c.byID[child.Precursor]; ok {
			old.Successors = removeID(old.Successors, child.ID)
		}
	}
	child.Precursor = parent.ID
	parent.Successors = insertSorted(parent.Successors, child.ID)
}

// detach removes childID from parent's successors and clears the child's
// precursor if it points at parent.
func (c *Catalog) detach(parent *types.Entry, childID int) {
	parent.Successors = removeID(parent.Successors, childID)
	if child, ok := c.byID[childID]; ok && child.Precursor == parent.ID {
		child.Precursor = 0
	}
}

func (c *Catalog) clearPrecursor(e *types.Entry) {
	if e.Precursor == 0 {
		return
	}
	if p, ok := c.byID[e.Precursor]; ok {
		c.detach(p, e.ID)
		return
	}
	e.Precursor = 0
}

// isAncestor reports whether candidate is id itself or reachable by
// following precursors from id.
func (c *Catalog) isAncestor(candidate, id int) bool {
	cur := id
	for steps := 0; cur != 0 && steps <= len(c.byID); steps++ {
		if cur == candidate {
			return true
		}
		e, ok := c.byID[cur]
		if !ok {
			return false
		}
		cur = e.Precursor
	}
	return false
}

// insertSorted inserts id before the first strictly greater element, keeping
// ids ascending. An id already present is not inserted again.
func insertSorted(ids []int, id int) []int {
	for i, v := range ids {
		if v == id {
			return ids
		}
		if v > id {
			return slices.Insert(ids, i, id)
		}
	}
	return append(ids, id)
}

// removeID removes the first occurrence of id.
func removeID(ids []int, id int) []int {
	i := slices.Index(ids, id)
	if i < 0 {
		return ids
	}
	ids = slices.Delete(ids, i, i+1)
	if len(ids) == 0 {
		return nil
	}
	return ids
}
