package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/planr/internal/store"
)

func newNoteCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Manage notes",
	}

	var date string
	add := &cobra.Command{
		Use:   "add <text>",
		Short: "Write a note",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), opts, func(e *env) error {
				day := ""
				if date != "" {
					var err error
					if day, err = e.app.Calendar().ParseNatural(date); err != nil {
						return err
					}
				}
				n, err := e.app.Notes.Add(cmd.Context(), strings.Join(args, " "), day)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added note %d\n", n.ID)
				return nil
			})
		},
	}
	add.Flags().StringVarP(&date, "date", "d", "", "attach the note to a day")

	var search string
	list := &cobra.Command{
		Use:   "list",
		Short: "List notes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd.Context(), opts, func(e *env) error {
				var notes []store.Note
				if search != "" {
					notes = e.app.Notes.Search(search)
				} else {
					notes = e.app.Notes.Newest()
				}
				rows := make([][]string, 0, len(notes))
				for _, n := range notes {
					rows = append(rows, []string{strconv.FormatInt(n.ID, 10), n.DateISO, n.Text})
				}
				printTable(cmd.OutOrStdout(), "No notes.", []string{"ID", "Date", "Text"}, rows)
				return nil
			})
		},
	}
	list.Flags().StringVarP(&search, "search", "s", "", "only notes containing this text")

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withEnv(cmd.Context(), opts, func(e *env) error {
				if err := e.app.Notes.Remove(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted note %d\n", id)
				return nil
			})
		},
	}

	cmd.AddCommand(add, list, rm)
	return cmd
}
