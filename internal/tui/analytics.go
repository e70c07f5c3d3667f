package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/planr/internal/analytics"
	"github.com/sadopc/planr/internal/dates"
	"github.com/sadopc/planr/internal/planner"
	"github.com/sadopc/planr/internal/store"
)

type reportMode int

const (
	reportWeekly reportMode = iota
	reportMonthly
)

type analyticsModel struct {
	app    *planner.App
	store  *store.Store
	width  int
	height int

	mode   reportMode
	offset int // weeks or months back from the current one
	week   int // selected week of the month

	today    string
	sessions []store.TimerSession
	tasks    []store.Task
	goal     int64 // daily focus goal, seconds

	chart barchart.Model
}

func newAnalyticsModel(app *planner.App, s *store.Store) analyticsModel {
	return analyticsModel{
		app:   app,
		store: s,
		chart: barchart.New(60, 12),
	}
}

func (r *analyticsModel) setSize(w, h int) {
	r.width = w
	r.height = h
	r.buildChart()
}

type analyticsDataMsg struct {
	today    string
	sessions []store.TimerSession
	tasks    []store.Task
	goal     int64
}

func (r analyticsModel) refresh() tea.Cmd {
	app, st := r.app, r.store
	return func() tea.Msg {
		return analyticsDataMsg{
			today:    app.Calendar().Today(),
			sessions: app.Sessions.Items(),
			tasks:    app.Tasks.Items(),
			goal:     int64(st.SettingDuration(store.SettingDailyGoal, 2*time.Hour).Seconds()),
		}
	}
}

func (r analyticsModel) update(msg tea.Msg) (analyticsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case analyticsDataMsg:
		r.today = msg.today
		r.sessions = msg.sessions
		r.tasks = msg.tasks
		r.goal = msg.goal
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
			r.week = 0
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
				r.week = 0
			}
		case key.Matches(msg, keys.Up):
			if r.week > 0 {
				r.week--
			}
		case key.Matches(msg, keys.Down):
			if r.mode == reportMonthly && r.week < len(r.monthWeeks())-1 {
				r.week++
			}
		case key.Matches(msg, keys.Toggle):
			if r.mode == reportWeekly {
				r.mode = reportMonthly
			} else {
				r.mode = reportWeekly
			}
			r.offset = 0
			r.week = 0
		default:
			return r, nil
		}
		r.buildChart()
	}
	return r, nil
}

// refDate is the last day of the displayed week.
func (r analyticsModel) refDate() string {
	if r.today == "" {
		return ""
	}
	d, err := dates.AddDays(r.today, -7*r.offset)
	if err != nil {
		return r.today
	}
	return d
}

func (r analyticsModel) month() (int, time.Month) {
	t, err := dates.Parse(r.today)
	if err != nil {
		t = r.app.Calendar().Now()
	}
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -r.offset, 0)
	return first.Year(), first.Month()
}

func (r analyticsModel) monthWeeks() []analytics.WeekSpan {
	y, m := r.month()
	return analytics.WeeksInMonth(y, m)
}

func (r *analyticsModel) buildChart() {
	chartWidth := max(r.width-8, 20)
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}
	r.chart = barchart.New(chartWidth, chartHeight)
	if r.today == "" {
		return
	}

	var bars []barchart.BarData
	switch r.mode {
	case reportWeekly:
		days, err := analytics.WeeklyRollup(r.sessions, r.refDate())
		if err != nil {
			return
		}
		for _, d := range days {
			bars = append(bars, r.bar(fmt.Sprintf("%s %s", d.Label, d.Date[8:]), d.Total))
		}
	case reportMonthly:
		days, ok := r.selectedBreakdown()
		if !ok {
			return
		}
		for _, d := range days {
			bars = append(bars, r.bar(fmt.Sprintf("%s %s", d.Label, d.Date[8:]), d.PomodoroTotal))
		}
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r analyticsModel) bar(label string, secs int64) barchart.BarData {
	style := lipgloss.NewStyle().Foreground(colorPrimary)
	if r.goal > 0 && secs >= r.goal {
		style = lipgloss.NewStyle().Foreground(colorSuccess)
	}
	if secs == 0 {
		style = lipgloss.NewStyle().Foreground(colorSubtle)
	}
	return barchart.BarData{
		Label:  label,
		Values: []barchart.BarValue{{Name: "focus", Value: float64(secs) / 3600, Style: style}},
	}
}

func (r analyticsModel) selectedBreakdown() ([]analytics.DayBreakdown, bool) {
	weeks := r.monthWeeks()
	if r.week >= len(weeks) {
		return nil, false
	}
	days, err := analytics.WeekBreakdown(weeks[r.week], r.sessions, r.tasks)
	if err != nil {
		return nil, false
	}
	return days, true
}

func (r analyticsModel) view() string {
	w := r.width - 4

	weeklyTab := inactiveTabStyle.Render("Weekly")
	monthlyTab := inactiveTabStyle.Render("Monthly")
	if r.mode == reportWeekly {
		weeklyTab = activeTabStyle.Render("Weekly")
	} else {
		monthlyTab = activeTabStyle.Render("Monthly")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, weeklyTab, monthlyTab)

	var label, body string
	if r.mode == reportWeekly {
		label, body = r.renderWeekly()
	} else {
		label, body = r.renderMonthly()
	}

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Analytics"), "  ", modeTabs, "  ", mutedStyle.Render(label),
	)
	nav := mutedStyle.Render("  ←/→: navigate  space: switch mode")
	if r.mode == reportMonthly {
		nav = mutedStyle.Render("  ←/→: month  ↑/↓: week  space: switch mode")
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", r.chart.View(), "", body, "", nav),
	)
}

func (r analyticsModel) renderWeekly() (string, string) {
	ref := r.refDate()
	days, err := analytics.WeeklyRollup(r.sessions, ref)
	if err != nil || len(days) == 0 {
		return ref, mutedStyle.Render("  No data for this period")
	}
	from, to := days[0].Date, days[len(days)-1].Date
	label := fmt.Sprintf("%s to %s", from, to)

	total := analytics.WeekTotal(days)
	count := 0
	for _, d := range days {
		count += d.Count
	}
	stats := analytics.TaskCompletionStats(r.tasks, analytics.DateRange{From: from, To: to})

	rows := []string{
		fmt.Sprintf("  Focus      %s over %d sessions", highlightStyle.Render(analytics.FormatDuration(total)), count),
		fmt.Sprintf("  Tasks      %d/%d completed (%.0f%%)", stats.Completed, stats.Total, stats.Rate),
	}
	if r.offset == 0 {
		today := analytics.TotalDurationOnDate(r.sessions, r.today)
		rows = append(rows, fmt.Sprintf("  Today      %s of %s goal  %s",
			highlightStyle.Render(analytics.FormatDuration(today)),
			analytics.FormatDuration(r.goal),
			r.goalBar(today)))
	}
	return label, strings.Join(rows, "\n")
}

func (r analyticsModel) goalBar(secs int64) string {
	const width = 20
	if r.goal <= 0 {
		return ""
	}
	filled := int(secs * width / r.goal)
	filled = min(filled, width)
	return successStyle.Render(strings.Repeat("█", filled)) + mutedStyle.Render(strings.Repeat("░", width-filled))
}

func (r analyticsModel) renderMonthly() (string, string) {
	y, m := r.month()
	label := fmt.Sprintf("%s %d", m, y)
	ms := analytics.MonthlyStats(r.sessions, r.tasks, y, m)

	rows := []string{
		fmt.Sprintf("  Month      %d pomodoros, %s focused, avg %s",
			ms.TotalPomodoros, analytics.FormatDuration(ms.TotalPomodoroTime), analytics.FormatDuration(int64(ms.AvgPomodoroTime))),
		fmt.Sprintf("  Tasks      %d/%d completed, %d open (%.0f%%)",
			ms.CompletedTasks, ms.TotalTasks, ms.IncompleteTasks, ms.CompletionRate),
		"",
	}

	weeks := r.monthWeeks()
	for i, span := range weeks {
		cursor := "  "
		style := normalItemStyle
		if i == r.week {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s", cursor, span.Label)))
	}

	if days, ok := r.selectedBreakdown(); ok {
		if p, ok := analytics.Performance(days); ok {
			rows = append(rows, "",
				fmt.Sprintf("  Week       %d pomodoros, %.0f min focused, %d/%d tasks (%.0f%%)",
					p.Pomodoros, p.FocusMinutes, p.TasksCompleted, p.TotalTasks, p.CompletionRate))
		} else {
			rows = append(rows, "", mutedStyle.Render("  No activity this week"))
		}
	}
	return label, strings.Join(rows, "\n")
}
