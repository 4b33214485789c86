package types

import (
	"fmt"
	"slices"
)

// Entry is one catalog item: identity, two classification tags and its
// position in an evolutionary chain.
//
// Precursor and Successors hold entry IDs. Precursor is 0 for a root.
// Successors is kept in ascending ID order without duplicates by the catalog.
type Entry struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Primary    Kind   `json:"primary"`
	Secondary  Kind   `json:"secondary"`
	Precursor  int    `json:"precursor,omitempty"`
	Successors []int  `json:"successors,omitempty"`
}

// NewEntry returns an unlinked entry with the default tags
// (KindUnknown, KindNone).
func NewEntry(id int, name string) Entry {
	return Entry{
		ID:        id,
		Name:      name,
		Primary:   KindUnknown,
		Secondary: KindNone,
	}
}

// HasPrecursor reports whether the entry has a precursor.
func (e Entry) HasPrecursor() bool {
	return e.Precursor != 0
}

// Clone returns a copy that shares no memory with e.
func (e Entry) Clone() Entry {
	e.Successors = slices.Clone(e.Successors)
	return e
}

// String renders the entry as "<id> <name>".
func (e Entry) String() string {
	return fmt.Sprintf("%d %s", e.ID, e.Name)
}

// Filter selects which slots List returns.
type Filter string

// List filters.
const (
	FilterAll   Filter = "all"
	FilterKnown Filter = "known"
)

// ParseFilter validates a filter name.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case FilterAll, FilterKnown:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q (want %q or %q)", ErrInvalidFilter, s, FilterAll, FilterKnown)
	}
}

// Slot is one numbered position in the catalog. Entry is nil when no entry
// holds the ID.
type Slot struct {
	ID    int
	Entry *Entry
}

// Known reports whether an entry occupies the slot.
func (s Slot) Known() bool {
	return s.Entry != nil
}

// ChainLink is one entry of a chain listing together with its distance from
// the chain's root.
type ChainLink struct {
	Depth int
	Entry Entry
}
