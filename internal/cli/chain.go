package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/lineage/pkg/catalog"
	"github.com/mesh-intelligence/lineage/pkg/types"
)

// chainIndent is the indent per depth level in evos output.
const chainIndent = 4

func newEvosCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "evos <id|name>",
		Short: "Print the whole evolution chain containing an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			e, err := c.Find(args[0])
			if err != nil {
				return err
			}
			chain, err := c.Chain(e.ID)
			if err != nil {
				return err
			}
			for _, link := range chain {
				fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", strings.Repeat(" ", link.Depth*chainIndent), link.Entry)
			}
			return nil
		},
	}
}

// pairCmd builds a command that applies op to two queried entries and
// reports the pair with arrow.
func pairCmd(a *app, use, short, arrow string, op func(c *catalog.Catalog, from, to int) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <from> <to>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var from, to types.Entry
			err := a.update(cmd.Context(), func(c *catalog.Catalog) error {
				var err error
				if from, err = c.Find(args[0]); err != nil {
					return err
				}
				if to, err = c.Find(args[1]); err != nil {
					return err
				}
				return op(c, from.ID, to.ID)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", from, arrow, to)
			return nil
		},
	}
}

func newLinkCmd(a *app) *cobra.Command {
	return pairCmd(a, "link", "Make <to> a successor of <from>", "----->", (*catalog.Catalog).Link)
}

func newUnlinkCmd(a *app) *cobra.Command {
	return pairCmd(a, "unlink", "Remove <to> from the successors of <from>", "--/-->", (*catalog.Catalog).Unlink)
}

func newRelinkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "relink",
		Short: "Re-derive every precursor from the successor lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var changed int
			err := a.update(cmd.Context(), func(c *catalog.Catalog) error {
				changed = c.RelinkAll()
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Relinked all evolution chains (%d changed)\n", changed)
			return nil
		},
	}
}
