package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/planr/internal/store"
)

func newTaskCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}

	var date string
	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), opts, func(e *env) error {
				day, err := e.app.Calendar().ParseNatural(date)
				if err != nil {
					return err
				}
				t, err := e.app.Tasks.Add(cmd.Context(), strings.Join(args, " "), day)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added task %d for %s\n", t.ID, t.DateISO)
				return nil
			})
		},
	}
	add.Flags().StringVarP(&date, "date", "d", "today", "day of the task (YYYY-MM-DD, tomorrow, next friday...)")

	var listDate string
	var all, week bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List tasks for a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd.Context(), opts, func(e *env) error {
				out := cmd.OutOrStdout()
				day, err := e.app.Calendar().ParseNatural(listDate)
				if err != nil {
					return err
				}
				var tasks []store.Task
				switch {
				case all:
					tasks = e.app.Tasks.Items()
				case week:
					w, err := e.app.Tasks.Week(day)
					if err != nil {
						return err
					}
					for _, d := range w.Days {
						tasks = append(tasks, d.Tasks...)
					}
				default:
					tasks = e.app.Tasks.ForDate(day)
				}
				rows := make([][]string, 0, len(tasks))
				for _, t := range tasks {
					rows = append(rows, []string{strconv.FormatInt(t.ID, 10), t.DateISO, check(t.Done), t.Title})
				}
				printTable(out, "No tasks.", []string{"ID", "Date", "Done", "Title"}, rows)
				return nil
			})
		},
	}
	list.Flags().StringVarP(&listDate, "date", "d", "today", "day to list")
	list.Flags().BoolVar(&week, "week", false, "list the whole week containing --date")
	list.Flags().BoolVar(&all, "all", false, "list every task")

	done := &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task's completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withEnv(cmd.Context(), opts, func(e *env) error {
				if _, ok := e.app.Tasks.Get(id); !ok {
					return fmt.Errorf("no task %d", id)
				}
				if err := e.app.Tasks.Toggle(cmd.Context(), id); err != nil {
					return err
				}
				t, _ := e.app.Tasks.Get(id)
				state := "open"
				if t.Done {
					state = "done"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Task %d is %s\n", id, state)
				return nil
			})
		},
	}

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withEnv(cmd.Context(), opts, func(e *env) error {
				if _, ok := e.app.Tasks.Get(id); !ok {
					return fmt.Errorf("no task %d", id)
				}
				if err := e.app.Tasks.Remove(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %d\n", id)
				return nil
			})
		},
	}

	cmd.AddCommand(add, list, done, rm)
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
