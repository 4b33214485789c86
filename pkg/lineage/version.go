// Package lineage holds build metadata for the lineage module.
package lineage

// Version is the released version of the lineage CLI.
const Version = "0.1.0"
