package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/planr/internal/planner"
	"github.com/sadopc/planr/internal/store"
)

func newPlanCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage calendar plans",
	}

	var date, at, priority, typ string
	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Schedule a plan",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), opts, func(e *env) error {
				day, err := e.app.Calendar().ParseNatural(date)
				if err != nil {
					return err
				}
				p, err := e.app.Plans.Add(cmd.Context(), planner.PlanInput{
					Title:    strings.Join(args, " "),
					Time:     at,
					Priority: store.Priority(priority),
					Type:     typ,
					DateISO:  day,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added plan %s for %s\n", p.ID, p.DateISO)
				return nil
			})
		},
	}
	add.Flags().StringVarP(&date, "date", "d", "today", "day of the plan")
	add.Flags().StringVarP(&at, "time", "t", "", "time of day, HH:MM")
	add.Flags().StringVarP(&priority, "priority", "p", string(store.PriorityMedium), "low, medium or high")
	add.Flags().StringVar(&typ, "type", planner.DefaultPlanType, "category")

	var listDate string
	var onlyDates bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List the plans of a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd.Context(), opts, func(e *env) error {
				out := cmd.OutOrStdout()
				if onlyDates {
					days := e.app.Plans.DatesWithPlans()
					if len(days) == 0 {
						fmt.Fprintln(out, "No plans.")
					}
					for _, d := range days {
						fmt.Fprintln(out, d)
					}
					return nil
				}
				day, err := e.app.Calendar().ParseNatural(listDate)
				if err != nil {
					return err
				}
				plans := e.app.Plans.ByDate(day)
				rows := make([][]string, 0, len(plans))
				for _, p := range plans {
					rows = append(rows, []string{shortID(p.ID), p.Time, string(p.Priority), p.Type, check(p.Completed), p.Title})
				}
				printTable(out, "No plans for "+day+".", []string{"ID", "Time", "Priority", "Type", "Done", "Title"}, rows)
				return nil
			})
		},
	}
	list.Flags().StringVarP(&listDate, "date", "d", "today", "day to list")
	list.Flags().BoolVar(&onlyDates, "dates", false, "list the days that have plans")

	done := &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a plan's completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), opts, func(e *env) error {
				p, err := findPlan(e, args[0])
				if err != nil {
					return err
				}
				if err := e.app.Plans.Toggle(cmd.Context(), p.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Toggled plan %s\n", p.Title)
				return nil
			})
		},
	}

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), opts, func(e *env) error {
				p, err := findPlan(e, args[0])
				if err != nil {
					return err
				}
				if err := e.app.Plans.Remove(cmd.Context(), p.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted plan %s\n", p.Title)
				return nil
			})
		},
	}

	cmd.AddCommand(add, list, done, rm)
	return cmd
}

// findPlan resolves a full id or a unique id prefix, as printed by list.
func findPlan(e *env, prefix string) (store.CalendarPlan, error) {
	if p, ok := e.app.Plans.Get(prefix); ok {
		return p, nil
	}
	var found []store.CalendarPlan
	for _, p := range e.app.Plans.Items() {
		if strings.HasPrefix(p.ID, prefix) {
			found = append(found, p)
		}
	}
	switch len(found) {
	case 0:
		return store.CalendarPlan{}, fmt.Errorf("no plan %q", prefix)
	case 1:
		return found[0], nil
	}
	return store.CalendarPlan{}, fmt.Errorf("plan id %q is ambiguous", prefix)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
