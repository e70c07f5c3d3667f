// Package cli wires configuration, storage and identity together and
// exposes them as the planr command tree.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sadopc/planr/internal/config"
	"github.com/sadopc/planr/internal/tui"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

// NewRootCmd builds the command tree. Running it without a subcommand
// starts the terminal UI.
func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "planr",
		Short: "planr - local-first tasks, notes, plans and focus timers",
		Long: `planr keeps your tasks, notes, calendar plans and focus sessions on this
device and mirrors them to your account when you are signed in.

Run without arguments to open the terminal UI.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath(), "config file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newTaskCmd(opts),
		newNoteCmd(opts),
		newPlanCmd(opts),
		newStatsCmd(opts),
		newSyncCmd(opts),
		newExportCmd(opts),
	)
	return root
}

// Execute runs the root command.
func Execute(version string) error {
	if err := NewRootCmd(version).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func runTUI(ctx context.Context, opts *rootOptions) error {
	e, err := openEnv(ctx, opts)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.watchSession(ctx); err != nil {
		return err
	}
	return tui.Run(ctx, e.app, e.device)
}
