// Package catalog implements the Lineage storage engine: an arena of entries
// keyed by ID, a case-insensitive name index, a capacity bound, and the
// precursor/successor forest linking entries into evolutionary chains.
//
// The Catalog is the only authority allowed to change chain topology. Edges
// are stored as entry IDs on both ends and every public operation updates
// both ends before returning, so the relation stays symmetric.
//
// A Catalog is not safe for concurrent use.
package catalog

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/lineage/pkg/types"
)

// Catalog owns a set of entries indexed by ID and by lower-cased name.
type Catalog struct {
	byID     map[int]*types.Entry
	byName   map[string]int
	capacity int
	logger   *slog.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger used for diagnostics. A nil logger discards.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New returns an empty catalog holding at most capacity entries with IDs in
// [1, capacity]. Returns ErrInvalidCapacity when capacity is not positive.
func New(capacity int, opts ...Option) (*Catalog, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", types.ErrInvalidCapacity, capacity)
	}
	c := &Catalog{
		byID:     make(map[int]*types.Entry),
		byName:   make(map[string]int),
		capacity: capacity,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Logger returns the catalog's logger.
func (c *Catalog) Logger() *slog.Logger {
	return c.logger
}

// Size returns the number of entries.
func (c *Catalog) Size() int {
	return len(c.byID)
}

// Capacity returns the maximum number of entries and the largest valid ID.
func (c *Catalog) Capacity() int {
	return c.capacity
}

// SetCapacity changes the capacity. Returns ErrInvalidCapacity if n is not
// positive, is below the current size, or is below the largest ID in use.
func (c *Catalog) SetCapacity(n int) error {
	if n <= 0 || n < len(c.byID) {
		return fmt.Errorf("%w: %d (size %d)", types.ErrInvalidCapacity, n, len(c.byID))
	}
	if maxID := c.maxID(); n < maxID {
		return fmt.Errorf("%w: %d (entry %d would fall outside)", types.ErrInvalidCapacity, n, maxID)
	}
	c.logger.Debug("capacity changed", slog.Int("from", c.capacity), slog.Int("to", n))
	c.capacity = n
	return nil
}

// Add inserts an unlinked copy of e. Precursor and Successors on e are
// ignored; use the linking methods to build chains.
//
// Checks run in this order: ErrInvalidName, ErrFull, ErrDuplicateID,
// ErrDuplicateName, ErrOutOfRange, ErrInvalidKind.
func (c *Catalog) Add(e types.Entry) error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: entry %d", types.ErrInvalidName, e.ID)
	}
	if len(c.byID) >= c.capacity {
		return fmt.Errorf("%w: capacity %d", types.ErrFull, c.capacity)
	}
	if _, ok := c.byID[e.ID]; ok {
		return fmt.Errorf("%w: %d", types.ErrDuplicateID, e.ID)
	}
	if _, ok := c.byName[nameKey(e.Name)]; ok {
		return fmt.Errorf("%w: %q", types.ErrDuplicateName, e.Name)
	}
	if e.ID < 1 || e.ID > c.capacity {
		return fmt.Errorf("%w: %d not in 1-%d", types.ErrOutOfRange, e.ID, c.capacity)
	}
	if !e.Primary.Valid() || !e.Secondary.Valid() {
		return fmt.Errorf("%w: entry %d", types.ErrInvalidKind, e.ID)
	}

	c.byID[e.ID] = &types.Entry{
		ID:        e.ID,
		Name:      e.Name,
		Primary:   e.Primary,
		Secondary: e.Secondary,
	}
	c.byName[nameKey(e.Name)] = e.ID
	return nil
}

// Delete removes the entry with the given ID. Its successors become roots
// and it is removed from its precursor's successors.
// Returns ErrEmpty on an empty catalog and ErrNotFound when no entry has
// the ID; in both cases nothing changes.
func (c *Catalog) Delete(id int) error {
	if len(c.byID) == 0 {
		return types.ErrEmpty
	}
	e, ok := c.byID[id]
	if !ok {
		return fmt.Errorf("%w: %d", types.ErrNotFound, id)
	}

	orphaned := len(e.Successors)
	for len(e.Successors) > 0 {
		c.detach(e, e.Successors[0])
	}
	if e.Precursor != 0 {
		c.clearPrecursor(e)
	}

	delete(c.byID, id)
	delete(c.byName, nameKey(e.Name))
	c.logger.Debug("entry deleted",
		slog.Int("id", id),
		slog.String("name", e.Name),
		slog.Int("orphaned", orphaned),
	)
	return nil
}

// Get returns a copy of the entry with the given ID.
func (c *Catalog) Get(id int) (types.Entry, error) {
	e, err := c.lookup(id)
	if err != nil {
		return types.Entry{}, err
	}
	return e.Clone(), nil
}

// GetByName returns a copy of the entry whose name matches case-insensitively.
func (c *Catalog) GetByName(name string) (types.Entry, error) {
	id, ok := c.byName[nameKey(name)]
	if !ok {
		return types.Entry{}, fmt.Errorf("%w: %q", types.ErrNotFound, name)
	}
	return c.Get(id)
}

// Find resolves a query typed by a user. A query made only of ASCII digits is
// an ID; anything else is a name.
func (c *Catalog) Find(query string) (types.Entry, error) {
	if isNumeric(query) {
		id, err := strconv.Atoi(query)
		if err != nil {
			return types.Entry{}, fmt.Errorf("%w: %s", types.ErrNotFound, query)
		}
		return c.Get(id)
	}
	return c.GetByName(query)
}

// RenameID moves an entry to a new ID. Links follow the entry and the
// precursor's successor list is kept in ID order.
func (c *Catalog) RenameID(id, newID int) error {
	e, err := c.lookup(id)
	if err != nil {
		return err
	}
	if newID == id {
		return nil
	}
	if _, ok := c.byID[newID]; ok {
		return fmt.Errorf("%w: %d", types.ErrDuplicateID, newID)
	}
	if newID < 1 || newID > c.capacity {
		return fmt.Errorf("%w: %d not in 1-%d", types.ErrOutOfRange, newID, c.capacity)
	}

	delete(c.byID, id)
	e.ID = newID
	c.byID[newID] = e
	c.byName[nameKey(e.Name)] = newID

	if e.Precursor != 0 {
		if p, ok := c.byID[e.Precursor]; ok {
			p.Successors = removeID(p.Successors, id)
			p.Successors = insertSorted(p.Successors, newID)
		}
	}
	for _, s := range e.Successors {
		if child, ok := c.byID[s]; ok {
			child.Precursor = newID
		}
	}
	return nil
}

// RenameName changes an entry's name. Changing only the letter case of the
// current name is allowed.
func (c *Catalog) RenameName(id int, newName string) error {
	e, err := c.lookup(id)
	if err != nil {
		return err
	}
	if strings.TrimSpace(newName) == "" {
		return fmt.Errorf("%w: entry %d", types.ErrInvalidName, id)
	}
	if other, ok := c.byName[nameKey(newName)]; ok && other != id {
		return fmt.Errorf("%w: %q", types.ErrDuplicateName, newName)
	}

	delete(c.byName, nameKey(e.Name))
	e.Name = newName
	c.byName[nameKey(newName)] = id
	return nil
}

// SetKinds replaces an entry's classification tags.
func (c *Catalog) SetKinds(id int, primary, secondary types.Kind) error {
	e, err := c.lookup(id)
	if err != nil {
		return err
	}
	if !primary.Valid() || !secondary.Valid() {
		return fmt.Errorf("%w: entry %d", types.ErrInvalidKind, id)
	}
	e.Primary = primary
	e.Secondary = secondary
	return nil
}

// List returns one slot per ID from 1 to Capacity for FilterAll, or only the
// occupied slots for FilterKnown.
func (c *Catalog) List(filter types.Filter) ([]types.Slot, error) {
	if _, err := types.ParseFilter(string(filter)); err != nil {
		return nil, err
	}
	var slots []types.Slot
	for id := 1; id <= c.capacity; id++ {
		e, ok := c.byID[id]
		switch {
		case ok:
			cp := e.Clone()
			slots = append(slots, types.Slot{ID: id, Entry: &cp})
		case filter == types.FilterAll:
			slots = append(slots, types.Slot{ID: id})
		}
	}
	return slots, nil
}

// Entries returns copies of all entries in ascending ID order.
func (c *Catalog) Entries() []types.Entry {
	out := make([]types.Entry, 0, len(c.byID))
	for _, id := range c.ids() {
		out = append(out, c.byID[id].Clone())
	}
	return out
}

func (c *Catalog) lookup(id int) (*types.Entry, error) {
	e, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", types.ErrNotFound, id)
	}
	return e, nil
}

// ids returns the IDs in use, ascending.
func (c *Catalog) ids() []int {
	ids := make([]int, 0, len(c.byID))
	for id := range c.byID {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (c *Catalog) maxID() int {
	m := 0
	for id := range c.byID {
		m = max(m, id)
	}
	return m
}

func nameKey(name string) string {
	return strings.ToLower(name)
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
