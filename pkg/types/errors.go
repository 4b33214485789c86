package types

import "errors"

// Catalog errors. All of them are recoverable; callers match with errors.Is.
var (
	ErrFull            = errors.New("catalog is full")
	ErrEmpty           = errors.New("catalog is empty")
	ErrDuplicateID     = errors.New("an entry already exists with that id")
	ErrDuplicateName   = errors.New("an entry already exists with that name")
	ErrOutOfRange      = errors.New("id out of range")
	ErrInvalidCapacity = errors.New("invalid capacity")
	ErrNotFound        = errors.New("entry not found")
	ErrInvalidName     = errors.New("name must not be empty")
	ErrInvalidKind     = errors.New("unknown kind")
	ErrInvalidFilter   = errors.New("invalid list filter")
)

// Chain errors.
var (
	// ErrSelfLink is returned when an entry would become its own successor.
	ErrSelfLink = errors.New("entry cannot link to itself")

	// ErrCycle is returned when a link would make an entry its own ancestor.
	ErrCycle = errors.New("link would create a cycle")

	// ErrCorrupt is returned by Verify when an invariant no longer holds.
	ErrCorrupt = errors.New("catalog invariant violated")
)

// Snapshot errors.
var (
	// ErrIO wraps any failure to read or write a snapshot.
	ErrIO = errors.New("snapshot i/o failed")

	// ErrMalformedRecord is returned when a snapshot row does not have the
	// expected shape.
	ErrMalformedRecord = errors.New("malformed snapshot record")
)
