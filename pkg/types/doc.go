// Package types defines the entry, classification and view types shared by
// the Lineage catalog, its stores and the CLI, together with the standard
// error values every layer returns.
//
// Entries are plain values. The catalog owns the live entries and hands out
// copies, so nothing in this package enforces the catalog's invariants.
package types
