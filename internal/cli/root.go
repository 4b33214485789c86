// Package cli implements the lineage command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/lineage/internal/paths"
	"github.com/mesh-intelligence/lineage/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	snapshot  string
	backend   string
	verbose   bool
}

// app is the state shared by one command invocation. setup fills config and
// logger before any subcommand runs.
type app struct {
	flags     rootFlags
	configDir string
	config    types.Config
	logger    *slog.Logger
}

// NewRootCmd creates the top-level "lineage" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "lineage",
		Short: "Catalog numbered entries and their evolution chains",
		Long: "Lineage keeps a fixed-capacity catalog of numbered, named entries\n" +
			"linked into evolution chains, persisted as a CSV or SQLite snapshot.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.lineage-db)")
	pf.StringVar(&a.flags.snapshot, "snapshot", "", "snapshot name (default: national)")
	pf.StringVar(&a.flags.backend, "backend", "", "storage backend: csv or sqlite")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newAddCmd(a), newDeleteCmd(a), newFindCmd(a), newEditCmd(a))
	root.AddCommand(newEvosCmd(a), newLinkCmd(a), newUnlinkCmd(a), newRelinkCmd(a))
	root.AddCommand(newListCmd(a), newGetMaxCmd(a), newSetMaxCmd(a), newGetSizeCmd(a))
	root.AddCommand(newExportCmd(a), newVerifyCmd(a))

	return root
}

// Run executes the CLI with args and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "lineage:", err)
	}
	return exitCode(err)
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	os.Exit(Run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// setup installs the logger and resolves configuration.
func (a *app) setup(cmd *cobra.Command) error {
	level := slog.LevelInfo
	if a.flags.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	if cmd.Name() == "version" {
		return nil
	}

	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return systemError{fmt.Errorf("resolve config dir: %w", err)}
	}
	v, err := loadConfig(configDir, cmd.Root().PersistentFlags())
	if err != nil {
		return systemError{err}
	}
	cfg, err := decodeConfig(v, a.flags.dataDir)
	if err != nil {
		return err
	}

	a.configDir = configDir
	a.config = cfg
	a.logger.Debug("config resolved",
		slog.String("config_dir", configDir),
		slog.String("backend", cfg.Backend),
		slog.String("data_dir", cfg.DataDir),
		slog.String("snapshot", cfg.SnapshotFile()),
	)
	return nil
}

// systemError marks failures outside the user's control.
type systemError struct{ err error }

func (e systemError) Error() string { return e.err.Error() }
func (e systemError) Unwrap() error { return e.err }

// exitCode maps an error to the process exit code: I/O and environment
// failures are system errors, everything else is a user error.
func exitCode(err error) int {
	var sys systemError
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, types.ErrIO), errors.As(err, &sys):
		return exitSysError
	default:
		return exitUserError
	}
}
