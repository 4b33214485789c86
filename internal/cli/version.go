package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/lineage/pkg/lineage"
)

const modulePath = "github.com/mesh-intelligence/lineage"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the lineage version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "lineage v%s\nmodule: %s\n", lineage.Version, modulePath)
			return nil
		},
	}
}
