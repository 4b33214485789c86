package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/lineage/internal/paths"
	"github.com/mesh-intelligence/lineage/pkg/catalog"
	"github.com/mesh-intelligence/lineage/pkg/types"
)

var errSnapshotExists = errors.New("snapshot already exists")

// configFile holds the structure written to config.yaml.
type configFile struct {
	Backend  string `yaml:"backend"`
	DataDir  string `yaml:"data_dir,omitempty"`
	Snapshot string `yaml:"snapshot"`
	Capacity int    `yaml:"capacity"`
}

func newInitCmd(a *app) *cobra.Command {
	var capacity int
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the configuration and an empty snapshot",
		Long: "Create the configuration directory with a default config.yaml if it\n" +
			"is missing, then write an empty snapshot to the data directory.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if capacity == 0 {
				capacity = a.config.Capacity
			}
			if capacity == 0 {
				capacity = types.DefaultCapacity
			}

			if err := os.MkdirAll(a.configDir, 0o755); err != nil {
				return systemError{fmt.Errorf("create config directory: %w", err)}
			}
			file := configFile{
				Backend:  a.config.Backend,
				Snapshot: a.config.Snapshot,
				Capacity: capacity,
			}
			if a.flags.dataDir != "" {
				file.DataDir = a.config.DataDir
			}
			if err := writeConfigIfMissing(paths.ConfigFile(a.configDir), file); err != nil {
				return systemError{fmt.Errorf("write config: %w", err)}
			}
			if err := os.MkdirAll(a.config.DataDir, 0o755); err != nil {
				return systemError{fmt.Errorf("create data directory: %w", err)}
			}

			path := a.snapshotPath()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%w: %s (use --force to overwrite)", errSnapshotExists, path)
			}

			c, err := catalog.New(capacity, catalog.WithLogger(a.logger))
			if err != nil {
				return err
			}
			if err := a.store().Save(cmd.Context(), c); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Initialized empty snapshot %s (capacity %d)\n", path, capacity)
			return nil
		},
	}

	cmd.Flags().IntVar(&capacity, "capacity", 0, "maximum number of entries (default: config capacity)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing snapshot")
	return cmd
}

// writeConfigIfMissing creates config.yaml if the file does not exist. An
// existing file is left untouched.
func writeConfigIfMissing(path string, cfg configFile) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
