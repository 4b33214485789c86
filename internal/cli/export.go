package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/lineage/internal/snapshot"
	"github.com/mesh-intelligence/lineage/pkg/types"
)

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Write the snapshot to another file",
		Long: "Write the current snapshot to path. The format follows the extension:\n" +
			".db writes a SQLite database, .jsonl writes JSON lines, anything\n" +
			"else writes CSV.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.load(cmd.Context())
			if err != nil {
				return err
			}

			path := args[0]
			switch strings.ToLower(filepath.Ext(path)) {
			case ".jsonl":
				err = snapshot.Export(path, c)
			case ".db":
				err = openStore(types.BackendSQLite, path, a.logger).Save(cmd.Context(), c)
			default:
				err = openStore(types.BackendCSV, path, a.logger).Save(cmd.Context(), c)
			}
			if err != nil {
				return err
			}

			a.logger.Debug("snapshot exported", slog.String("path", path), slog.Int("entries", c.Size()))
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d entries to %s\n", c.Size(), path)
			return nil
		},
	}
}

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the snapshot's indexes and chains for consistency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			if err := c.Verify(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK: %d entries, capacity %d\n", c.Size(), c.Capacity())
			return nil
		},
	}
}
