package catalog

import (
	"fmt"
	"slices"

	"github.com/mesh-intelligence/lineage/pkg/types"
)

// Verify checks every catalog invariant and returns ErrCorrupt describing the
// first violation found, or nil.
//
// Checked: both indices agree, IDs lie in [1, Capacity], size is within
// capacity, successor lists are ascending and duplicate-free, precursor and
// successor pointers are symmetric, and no precursor chain loops.
func (c *Catalog) Verify() error {
	if len(c.byID) > c.capacity {
		return corrupt("size %d exceeds capacity %d", len(c.byID), c.capacity)
	}
	if len(c.byName) != len(c.byID) {
		return corrupt("name index has %d keys, id index has %d", len(c.byName), len(c.byID))
	}
	for key, id := range c.byName {
		e, ok := c.byID[id]
		if !ok {
			return corrupt("name %q points at missing id %d", key, id)
		}
		if nameKey(e.Name) != key {
			return corrupt("name %q points at entry %d named %q", key, id, e.Name)
		}
	}

	for _, id := range c.ids() {
		e := c.byID[id]
		if e.ID != id {
			return corrupt("entry indexed at %d has id %d", id, e.ID)
		}
		if id < 1 || id > c.capacity {
			return corrupt("entry %d outside 1-%d", id, c.capacity)
		}
		for i, s := range e.Successors {
			if i > 0 && e.Successors[i-1] >= s {
				return corrupt("successors of %d not strictly ascending: %v", id, e.Successors)
			}
			child, ok := c.byID[s]
			if !ok {
				return corrupt("entry %d lists missing successor %d", id, s)
			}
			if child.Precursor != id {
				return corrupt("entry %d lists successor %d whose precursor is %d", id, s, child.Precursor)
			}
		}
		if e.Precursor != 0 {
			p, ok := c.byID[e.Precursor]
			if !ok {
				return corrupt("entry %d has missing precursor %d", id, e.Precursor)
			}
			if !slices.Contains(p.Successors, id) {
				return corrupt("entry %d has precursor %d that does not list it", id, e.Precursor)
			}
		}
		if err := c.checkAcyclic(id); err != nil {
			return err
		}
	}
	return nil
}

func (c *Catalog) checkAcyclic(start int) error {
	seen := map[int]bool{start: true}
	cur := c.byID[start].Precursor
	for cur != 0 {
		if seen[cur] {
			return corrupt("precursor chain from %d revisits %d", start, cur)
		}
		seen[cur] = true
		e, ok := c.byID[cur]
		if !ok {
			return nil
		}
		cur = e.Precursor
	}
	return nil
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{types.ErrCorrupt}, args...)...)
}
