package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/lineage/pkg/catalog"
	"github.com/mesh-intelligence/lineage/pkg/types"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "list all|known",
		Short:     "List every slot, or only the known entries",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(types.FilterAll), string(types.FilterKnown)},
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := types.ParseFilter(args[0])
			if err != nil {
				return err
			}
			c, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			slots, err := c.List(filter)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, slot := range slots {
				if slot.Known() {
					fmt.Fprintln(out, slot.Entry)
				} else {
					fmt.Fprintf(out, "%d UNKNOWN/UNSEEN\n", slot.ID)
				}
			}
			return nil
		},
	}
}

func newGetMaxCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "getmax",
		Short: "Print the catalog capacity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "The catalog max size is %d.\n", c.Capacity())
			return nil
		},
	}
}

func newSetMaxCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "setmax <n>",
		Short: "Change the catalog capacity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseID(args[0])
			if err != nil {
				return err
			}
			err = a.update(cmd.Context(), func(c *catalog.Catalog) error {
				return c.SetCapacity(n)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "New max size of the catalog is set to %d.\n", n)
			return nil
		},
	}
}

func newGetSizeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "getsize",
		Short: "Print the number of entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "The current catalog size is %d.\n", c.Size())
			return nil
		},
	}
}
