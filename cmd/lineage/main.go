// Command lineage manages a catalog of numbered entries and their
// evolution chains.
package main

import "github.com/mesh-intelligence/lineage/internal/cli"

func main() {
	cli.Execute()
}
