package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/planr/internal/analytics"
	"github.com/sadopc/planr/internal/dates"
	"github.com/sadopc/planr/internal/store"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var date string
	var month bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show focus time and task completion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd.Context(), opts, func(e *env) error {
				day, err := e.app.Calendar().ParseNatural(date)
				if err != nil {
					return err
				}
				sessions := e.app.Sessions.Items()
				tasks := e.app.Tasks.Items()
				if month {
					return printMonth(cmd, day, sessions, tasks)
				}
				return printWeek(cmd, day, sessions, tasks, e.device)
			})
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "today", "reference day")
	cmd.Flags().BoolVarP(&month, "month", "m", false, "summarise the month of --date")
	return cmd
}

func printWeek(cmd *cobra.Command, day string, sessions []store.TimerSession, tasks []store.Task, s *store.Store) error {
	out := cmd.OutOrStdout()
	days, err := analytics.WeeklyRollup(sessions, day)
	if err != nil {
		return err
	}
	goal := int64(s.SettingDuration(store.SettingDailyGoal, 2*time.Hour).Seconds())

	fmt.Fprintf(out, "%s: %s focused over %d sessions (avg %s), goal %s\n",
		day,
		analytics.FormatDuration(analytics.TotalDurationOnDate(sessions, day)),
		analytics.SessionCountOnDate(sessions, day),
		analytics.FormatDuration(analytics.AverageDurationOnDate(sessions, day)),
		analytics.FormatDuration(goal),
	)

	rows := make([][]string, 0, len(days))
	for _, d := range days {
		rows = append(rows, []string{d.Label, d.Date, strconv.Itoa(d.Count), analytics.FormatDuration(d.Total)})
	}
	printTable(out, "", []string{"Day", "Date", "Sessions", "Focus"}, rows)

	stats := analytics.TaskCompletionStats(tasks, analytics.DateRange{From: days[0].Date, To: days[len(days)-1].Date})
	fmt.Fprintf(out, "Week: %s focused, %d/%d tasks done (%.0f%%)\n",
		analytics.FormatDuration(analytics.WeekTotal(days)), stats.Completed, stats.Total, stats.Rate)
	return nil
}

func printMonth(cmd *cobra.Command, day string, sessions []store.TimerSession, tasks []store.Task) error {
	out := cmd.OutOrStdout()
	t, err := dates.Parse(day)
	if err != nil {
		return err
	}
	ms := analytics.MonthlyStats(sessions, tasks, t.Year(), t.Month())
	fmt.Fprintf(out, "%s %d: %d sessions, %s focused (avg %s), %d/%d tasks done (%.0f%%)\n",
		t.Month(), t.Year(), ms.TotalPomodoros,
		analytics.FormatDuration(ms.TotalPomodoroTime), analytics.FormatDuration(int64(ms.AvgPomodoroTime)),
		ms.CompletedTasks, ms.TotalTasks, ms.CompletionRate)

	var rows [][]string
	for _, span := range analytics.WeeksInMonth(t.Year(), t.Month()) {
		breakdown, err := analytics.WeekBreakdown(span, sessions, tasks)
		if err != nil {
			return err
		}
		p, ok := analytics.Performance(breakdown)
		if !ok {
			rows = append(rows, []string{span.Label, "-", "-", "-"})
			continue
		}
		rows = append(rows, []string{
			span.Label,
			strconv.Itoa(p.Pomodoros),
			fmt.Sprintf("%.0fm", p.FocusMinutes),
			fmt.Sprintf("%d/%d (%.0f%%)", p.TasksCompleted, p.TotalTasks, p.CompletionRate),
		})
	}
	printTable(out, "", []string{"Week", "Sessions", "Focus", "Tasks"}, rows)
	return nil
}
