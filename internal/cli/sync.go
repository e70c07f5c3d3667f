package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Exchange data with your account",
		Long: `pull replaces local data with the account copy; push overwrites the
account copy with local data. Guests have nothing to sync.`,
	}

	pull := &cobra.Command{
		Use:   "pull",
		Short: "Replace local data with the account copy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd.Context(), opts, func(e *env) error {
				if e.ident.Current() == nil {
					return fmt.Errorf("not signed in")
				}
				if err := e.app.Pull(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pulled %d tasks, %d notes, %d plans, %d sessions\n",
					len(e.app.Tasks.Items()), len(e.app.Notes.Items()), len(e.app.Plans.Items()), len(e.app.Sessions.Items()))
				return nil
			})
		},
	}

	push := &cobra.Command{
		Use:   "push",
		Short: "Overwrite the account copy with local data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd.Context(), opts, func(e *env) error {
				if e.ident.Current() == nil {
					return fmt.Errorf("not signed in")
				}
				if err := e.app.Push(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Pushed local data")
				return nil
			})
		},
	}

	cmd.AddCommand(pull, push)
	return cmd
}
