package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/planr/internal/analytics"
	"github.com/sadopc/planr/internal/planner"
	"github.com/sadopc/planr/internal/store"
)

type todayModel struct {
	app    *planner.App
	focus  focusModel
	width  int
	height int

	today    string
	tasks    []store.Task
	sessions []store.TimerSession
	cursor   int

	formActive bool
	form       *huh.Form
	editingID  int64

	// Form field pointers (survive value copies)
	formTitle *string
	formDate  *string
}

func newTodayModel(app *planner.App) todayModel {
	title, date := "", ""
	return todayModel{
		app:       app,
		focus:     newFocusModel(app.Calendar().Now),
		formTitle: &title,
		formDate:  &date,
	}
}

func (d *todayModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

type todayDataMsg struct {
	today    string
	tasks    []store.Task
	sessions []store.TimerSession
}

func (d todayModel) refresh() tea.Cmd {
	app := d.app
	return func() tea.Msg {
		today := app.Calendar().Today()
		return todayDataMsg{
			today:    today,
			tasks:    app.Tasks.ForDate(today),
			sessions: app.Sessions.OnDate(today),
		}
	}
}

func (d todayModel) update(msg tea.Msg) (todayModel, tea.Cmd) {
	if d.formActive && d.form != nil {
		return d.updateForm(msg)
	}

	switch msg := msg.(type) {
	case todayDataMsg:
		d.today = msg.today
		d.tasks = msg.tasks
		d.sessions = msg.sessions
		d.cursor = clampCursor(d.cursor, len(d.tasks))
		return d, nil

	case tickMsg:
		d.focus.tick()
		return d, nil

	case tea.KeyMsg:
		d.focus.recordActivity()

		switch {
		case key.Matches(msg, keys.Up):
			if d.cursor > 0 {
				d.cursor--
			}
		case key.Matches(msg, keys.Down):
			if d.cursor < len(d.tasks)-1 {
				d.cursor++
			}
		case key.Matches(msg, keys.Start):
			if !d.focus.running() {
				d.focus.start()
				return d, func() tea.Msg { return statusMsg{text: "Focus started"} }
			}
		case key.Matches(msg, keys.Stop):
			return d.stopFocus()
		case key.Matches(msg, keys.Reset):
			d.focus.toggle()
		case key.Matches(msg, keys.Toggle), key.Matches(msg, keys.Enter):
			if t, ok := d.selected(); ok {
				return d, mutation("Task updated", func() error {
					return d.app.Tasks.Toggle(context.Background(), t.ID)
				})
			}
		case key.Matches(msg, keys.Delete):
			if t, ok := d.selected(); ok {
				return d, mutation("Task deleted", func() error {
					return d.app.Tasks.Remove(context.Background(), t.ID)
				})
			}
		case key.Matches(msg, keys.New):
			return d.showTaskForm(nil)
		case key.Matches(msg, keys.Edit):
			if t, ok := d.selected(); ok {
				return d.showTaskForm(&t)
			}
		}
	}
	return d, nil
}

func (d todayModel) selected() (store.Task, bool) {
	if d.cursor < len(d.tasks) {
		return d.tasks[d.cursor], true
	}
	return store.Task{}, false
}

func (d todayModel) stopFocus() (todayModel, tea.Cmd) {
	if !d.focus.running() {
		return d, nil
	}
	elapsed := d.focus.stop()
	sessions := d.app.Sessions
	return d, mutation("Focus recorded: "+formatDuration(elapsed), func() error {
		_, err := sessions.Record(context.Background(), elapsed)
		return err
	})
}

// showTaskForm opens the add form, or the rename form when editing is set.
func (d todayModel) showTaskForm(editing *store.Task) (todayModel, tea.Cmd) {
	*d.formTitle = ""
	*d.formDate = "today"
	d.editingID = 0

	fields := []huh.Field{huh.NewInput().Title("Task").Value(d.formTitle)}
	if editing != nil {
		*d.formTitle = editing.Title
		d.editingID = editing.ID
	} else {
		fields = append(fields, huh.NewInput().
			Title("Date").
			Description("YYYY-MM-DD, today, tomorrow, next friday...").
			Value(d.formDate))
	}

	d.form = huh.NewForm(huh.NewGroup(fields...)).WithShowHelp(true).WithShowErrors(true)
	d.formActive = true
	return d, d.form.Init()
}

func (d todayModel) updateForm(msg tea.Msg) (todayModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		d.formActive = false
		d.form = nil
		return d, nil
	}

	form, cmd := d.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		d.form = f
	}

	if d.form.State == huh.StateCompleted {
		d.formActive = false
		title, dateText, id := *d.formTitle, *d.formDate, d.editingID
		tasks, cal := d.app.Tasks, d.app.Calendar()
		if id != 0 {
			return d, mutation("Task renamed", func() error {
				return tasks.Rename(context.Background(), id, title)
			})
		}
		return d, mutation("Task added", func() error {
			date, err := cal.ParseNatural(dateText)
			if err != nil {
				return err
			}
			_, err = tasks.Add(context.Background(), title, date)
			return err
		})
	}
	return d, cmd
}

func (d todayModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}
	w := d.width - 4

	if d.formActive && d.form != nil {
		title := titleStyle.Render("New Task")
		if d.editingID != 0 {
			title = titleStyle.Render("Rename Task")
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", d.form.View()))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		d.renderFocusPanel(w),
		d.renderSummaryPanel(w),
		d.renderTaskPanel(w),
	)
}

func (d todayModel) renderFocusPanel(w int) string {
	if !d.focus.running() {
		content := lipgloss.JoinVertical(lipgloss.Center,
			timerStyle.Width(w-6).Render("00:00:00"),
			mutedStyle.Render("■  IDLE"),
			mutedStyle.Render("Press s to start a focus block"),
		)
		return panelStyle.Width(w).Render(content)
	}

	timeStr := formatDuration(d.focus.elapsed())
	var timeDisplay, indicator string
	if d.focus.paused() {
		timeDisplay = timerPausedStyle.Width(w - 6).Render(timeStr)
		indicator = warningStyle.Render("⏸  PAUSED")
		if d.focus.isIdle {
			indicator = warningStyle.Render("⏸  IDLE")
		}
	} else {
		timeDisplay = timerRunningStyle.Width(w - 6).Render(timeStr)
		indicator = successStyle.Render("●  FOCUSING")
	}
	hint := mutedStyle.Render("x: stop and record  r: pause/resume")
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Center, timeDisplay, indicator, hint))
}

func (d todayModel) renderSummaryPanel(w int) string {
	total := analytics.TotalDurationOnDate(d.sessions, d.today)
	count := analytics.SessionCountOnDate(d.sessions, d.today)
	avg := analytics.AverageDurationOnDate(d.sessions, d.today)
	stats := analytics.TaskCompletionStats(d.tasks, analytics.DateRange{From: d.today, To: d.today})

	header := fmt.Sprintf("%s  %s", titleStyle.Render("Today"), subtitleStyle.Render(d.today))
	rows := []string{
		header,
		fmt.Sprintf("  Focus   %s  (%d sessions, avg %s)", highlightStyle.Render(formatSeconds(total)), count, formatSeconds(avg)),
		fmt.Sprintf("  Tasks   %d/%d done  %s", stats.Completed, stats.Total, mutedStyle.Render(fmt.Sprintf("%.0f%%", stats.Rate))),
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d todayModel) renderTaskPanel(w int) string {
	title := titleStyle.Render("Tasks")
	if len(d.tasks) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("Nothing planned today. Press n to add a task."),
		))
	}

	rows := []string{title}
	for i, t := range d.tasks {
		cursor := "  "
		style := normalItemStyle
		if i == d.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		box := "[ ]"
		if t.Done {
			box = "[x]"
			if i != d.cursor {
				style = doneItemStyle
			}
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %s", cursor, box, t.Title)))
	}
	rows = append(rows, "", mutedStyle.Render("  n: new  e: rename  space: done  d: delete"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
