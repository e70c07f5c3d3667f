package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/planr/internal/identity"
	"github.com/sadopc/planr/internal/syncstore"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login <user-id> [email]",
		Short: "Sign in and replace local data with your account's copy",
		Long: `Sign in as the given user. Every store switches to the user's storage
and is replaced by the copy held remotely. Data created as a guest stays
in guest storage and is not merged.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			u := &identity.User{ID: strings.TrimSpace(args[0])}
			if u.ID == "" || u.ID == identity.GuestID {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			if len(args) == 2 {
				u.Email = args[1]
			}
			return withEnv(cmd.Context(), opts, func(e *env) error {
				err := e.ident.Set(cmd.Context(), u)
				if err != nil && !errors.Is(err, syncstore.ErrSync) {
					return err
				}
				if werr := identity.WriteSession(e.cfg.SessionPath(), u); werr != nil {
					return werr
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Signed in as %s\n", u.ID)
				if err != nil {
					fmt.Fprintf(out, "Warning: could not fetch your data, showing this device's copy: %v\n", err)
				}
				return nil
			})
		},
	}
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and switch to guest storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd.Context(), opts, func(e *env) error {
				prev := e.ident.Current()
				if err := e.ident.Set(cmd.Context(), nil); err != nil {
					return err
				}
				if err := identity.WriteSession(e.cfg.SessionPath(), nil); err != nil {
					return err
				}
				if prev == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "Already signed out")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Signed out %s\n", prev.ID)
				return nil
			})
		},
	}
}

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	var keys bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd.Context(), opts, func(e *env) error {
				u := e.ident.Current()
				out := cmd.OutOrStdout()
				switch {
				case u == nil:
					fmt.Fprintln(out, "guest")
				case u.Email != "":
					fmt.Fprintf(out, "%s <%s>\n", u.ID, u.Email)
				default:
					fmt.Fprintln(out, u.ID)
				}
				if !keys {
					return nil
				}
				all, err := e.device.Keys("")
				if err != nil {
					return err
				}
				suffix := "-storage-" + identity.KeyID(u)
				for _, k := range all {
					if strings.HasSuffix(k, suffix) {
						fmt.Fprintln(out, "  "+k)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&keys, "keys", false, "also list this identity's on-device storage keys")
	return cmd
}
