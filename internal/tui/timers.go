package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/planr/internal/planner"
	"github.com/sadopc/planr/internal/store"
	"github.com/sadopc/planr/internal/timer"
)

type pomodoroPhase int

const (
	pomodoroIdle pomodoroPhase = iota
	pomodoroWork
	pomodoroShortBreak
	pomodoroLongBreak
)

var phaseNames = map[pomodoroPhase]string{
	pomodoroIdle:       "IDLE",
	pomodoroWork:       "WORK",
	pomodoroShortBreak: "SHORT BREAK",
	pomodoroLongBreak:  "LONG BREAK",
}

// roundsPerCycle is the number of work phases before a long break.
const roundsPerCycle = 4

// timerPanel selects which part of the Timers view receives keys.
type timerPanel int

const (
	panelPomodoro timerPanel = iota
	panelCountdowns
	panelAlarms
)

type timersModel struct {
	app    *planner.App
	store  *store.Store
	now    func() time.Time
	width  int
	height int

	panel timerPanel

	// Pomodoro cycle
	phase     pomodoroPhase
	rounds    int
	countdown *timer.Countdown

	workDuration      time.Duration
	breakDuration     time.Duration
	longBreakDuration time.Duration

	set    *timer.Set
	alarms *timer.Alarms
	cursor int

	formActive bool
	form       *huh.Form
	formKind   timerPanel

	// Form field pointers (survive value copies)
	formLabel *string
	formValue *string
}

func newTimersModel(app *planner.App, s *store.Store) timersModel {
	label, value := "", ""
	m := timersModel{
		app:       app,
		store:     s,
		now:       app.Calendar().Now,
		set:       timer.NewSet(),
		alarms:    timer.NewAlarms(),
		formLabel: &label,
		formValue: &value,
	}
	m.loadSettings()
	return m
}

func (t *timersModel) loadSettings() {
	t.workDuration = t.store.SettingDuration(store.SettingPomodoroWork, 25*time.Minute)
	t.breakDuration = t.store.SettingDuration(store.SettingPomodoroBreak, 5*time.Minute)
	t.longBreakDuration = t.store.SettingDuration(store.SettingPomodoroLongBreak, 15*time.Minute)
}

func (t *timersModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

// capturingInput reports whether keys should go to this view rather than
// the global bindings.
func (t timersModel) capturingInput() bool { return t.formActive }

func (t timersModel) update(msg tea.Msg) (timersModel, tea.Cmd) {
	if t.formActive && t.form != nil {
		return t.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tickMsg:
		return t.tick()

	case settingsSavedMsg:
		if t.phase == pomodoroIdle {
			t.loadSettings()
		}
		return t, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			if t.panel > panelPomodoro {
				t.panel--
				t.cursor = 0
			}
			return t, nil
		case key.Matches(msg, keys.Right):
			if t.panel < panelAlarms {
				t.panel++
				t.cursor = 0
			}
			return t, nil
		}
		switch t.panel {
		case panelPomodoro:
			return t.updatePomodoro(msg)
		case panelCountdowns:
			return t.updateCountdowns(msg)
		case panelAlarms:
			return t.updateAlarms(msg)
		}
	}
	return t, nil
}

// tick advances every clock on the view and records finished work.
func (t timersModel) tick() (timersModel, tea.Cmd) {
	now := t.now()
	var cmds []tea.Cmd

	if t.countdown != nil && t.countdown.Tick(now) {
		var cmd tea.Cmd
		t, cmd = t.advancePhase()
		cmds = append(cmds, cmd)
	}

	for _, f := range t.set.Tick(now) {
		cmds = append(cmds, t.record(f.Elapsed, fmt.Sprintf("%s finished \a", f.Label)))
	}
	t.cursor = clampCursor(t.cursor, t.listLen())

	for _, al := range t.alarms.Check(now) {
		text := fmt.Sprintf("Alarm %s %s \a", al.Time, al.Label)
		cmds = append(cmds, func() tea.Msg { return statusMsg{text: text} })
	}
	return t, tea.Batch(cmds...)
}

// record stores a finished focus block as a timer session.
func (t timersModel) record(d time.Duration, okText string) tea.Cmd {
	sessions := t.app.Sessions
	return mutation(okText, func() error {
		_, err := sessions.Record(context.Background(), d)
		return err
	})
}

// --- Pomodoro ---

func (t timersModel) updatePomodoro(msg tea.KeyMsg) (timersModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Start):
		if t.phase == pomodoroIdle {
			t.loadSettings()
			t.rounds = 0
			return t.startPhase(pomodoroWork)
		}
	case key.Matches(msg, keys.Stop):
		if t.phase != pomodoroIdle {
			return t.cancelPomodoro()
		}
	case key.Matches(msg, keys.Toggle):
		if t.countdown != nil {
			t.countdown.Toggle(t.now())
		}
	case key.Matches(msg, keys.Reset):
		// Skip break
		if t.phase == pomodoroShortBreak || t.phase == pomodoroLongBreak {
			return t.startPhase(pomodoroWork)
		}
	}
	return t, nil
}

func (t timersModel) startPhase(phase pomodoroPhase) (timersModel, tea.Cmd) {
	d := t.workDuration
	switch phase {
	case pomodoroShortBreak:
		d = t.breakDuration
	case pomodoroLongBreak:
		d = t.longBreakDuration
	}
	t.phase = phase
	t.countdown = timer.NewCountdown(0, phaseNames[phase], d)
	t.countdown.Start(t.now())
	return t, nil
}

func (t timersModel) advancePhase() (timersModel, tea.Cmd) {
	switch t.phase {
	case pomodoroWork:
		t.rounds++
		record := t.record(t.workDuration, "Pomodoro complete, break time! \a")
		next := pomodoroShortBreak
		if t.rounds%roundsPerCycle == 0 {
			next = pomodoroLongBreak
		}
		t, _ = t.startPhase(next)
		return t, record
	case pomodoroShortBreak, pomodoroLongBreak:
		t, _ = t.startPhase(pomodoroWork)
		return t, func() tea.Msg { return statusMsg{text: "Back to work \a"} }
	}
	return t, nil
}

// cancelPomodoro stops the cycle. Time already spent in a work phase is
// still recorded.
func (t timersModel) cancelPomodoro() (timersModel, tea.Cmd) {
	var elapsed time.Duration
	if t.phase == pomodoroWork && t.countdown != nil {
		t.countdown.Pause(t.now())
		elapsed = t.countdown.Elapsed().Truncate(time.Second)
	}
	t.phase = pomodoroIdle
	t.countdown = nil
	t.rounds = 0
	if elapsed > 0 {
		return t, t.record(elapsed, "Pomodoro cancelled, "+formatDuration(elapsed)+" recorded")
	}
	return t, func() tea.Msg { return statusMsg{text: "Pomodoro cancelled"} }
}

// --- Countdowns ---

func (t timersModel) listLen() int {
	if t.panel == panelAlarms {
		return len(t.alarms.List())
	}
	return t.set.Len()
}

func (t timersModel) selectedTimer() (*timer.Countdown, bool) {
	timers := t.set.Timers()
	if t.cursor < len(timers) {
		return timers[t.cursor], true
	}
	return nil, false
}

func (t timersModel) updateCountdowns(msg tea.KeyMsg) (timersModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if t.cursor > 0 {
			t.cursor--
		}
	case key.Matches(msg, keys.Down):
		if t.cursor < t.set.Len()-1 {
			t.cursor++
		}
	case key.Matches(msg, keys.New):
		return t.showForm(panelCountdowns)
	case key.Matches(msg, keys.Toggle), key.Matches(msg, keys.Start):
		if c, ok := t.selectedTimer(); ok {
			c.Toggle(t.now())
		}
	case key.Matches(msg, keys.Reset):
		if c, ok := t.selectedTimer(); ok {
			c.Reset()
		}
	case key.Matches(msg, keys.Stop), key.Matches(msg, keys.Delete):
		c, ok := t.selectedTimer()
		if !ok {
			return t, nil
		}
		f, record := t.set.Cancel(c.ID, t.now())
		t.cursor = clampCursor(t.cursor, t.set.Len())
		if record {
			return t, t.record(f.Elapsed, fmt.Sprintf("%s cancelled, %s recorded", f.Label, formatDuration(f.Elapsed)))
		}
		return t, func() tea.Msg { return statusMsg{text: c.Label + " removed"} }
	}
	return t, nil
}

// --- Alarms ---

func (t timersModel) updateAlarms(msg tea.KeyMsg) (timersModel, tea.Cmd) {
	list := t.alarms.List()
	switch {
	case key.Matches(msg, keys.Up):
		if t.cursor > 0 {
			t.cursor--
		}
	case key.Matches(msg, keys.Down):
		if t.cursor < len(list)-1 {
			t.cursor++
		}
	case key.Matches(msg, keys.New):
		return t.showForm(panelAlarms)
	case key.Matches(msg, keys.Toggle):
		if t.cursor < len(list) {
			t.alarms.Toggle(list[t.cursor].ID, t.now())
		}
	case key.Matches(msg, keys.Delete):
		if t.cursor < len(list) {
			t.alarms.Remove(list[t.cursor].ID)
			t.cursor = clampCursor(t.cursor, len(list)-1)
		}
	}
	return t, nil
}

// --- Forms ---

func (t timersModel) showForm(kind timerPanel) (timersModel, tea.Cmd) {
	*t.formLabel = ""
	*t.formValue = ""
	t.formKind = kind

	var value *huh.Input
	if kind == panelAlarms {
		value = huh.NewInput().Title("Time").Description("HH:MM, 24-hour").Value(t.formValue).
			Validate(func(s string) error {
				_, err := time.Parse("15:04", strings.TrimSpace(s))
				return err
			})
	} else {
		*t.formValue = "10"
		value = huh.NewInput().Title("Minutes").Value(t.formValue).
			Validate(func(s string) error {
				n, err := strconv.Atoi(strings.TrimSpace(s))
				if err != nil || n <= 0 {
					return fmt.Errorf("enter a positive number of minutes")
				}
				return nil
			})
	}

	t.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Label").Value(t.formLabel),
			value,
		),
	).WithShowHelp(true).WithShowErrors(true)
	t.formActive = true
	return t, t.form.Init()
}

func (t timersModel) updateForm(msg tea.Msg) (timersModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		t.formActive = false
		t.form = nil
		return t, nil
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}
	if t.form.State != huh.StateCompleted {
		return t, cmd
	}

	t.formActive = false
	label := strings.TrimSpace(*t.formLabel)
	value := strings.TrimSpace(*t.formValue)

	if t.formKind == panelAlarms {
		if label == "" {
			label = "Alarm"
		}
		if _, err := t.alarms.Add(value, label, t.now()); err != nil {
			return t, func() tea.Msg { return statusMsg{text: describeError(err), isError: true} }
		}
		return t, func() tea.Msg { return statusMsg{text: "Alarm set for " + value} }
	}

	mins, err := strconv.Atoi(value)
	if err != nil || mins <= 0 {
		return t, func() tea.Msg { return statusMsg{text: "Invalid: minutes must be positive", isError: true} }
	}
	if label == "" {
		label = fmt.Sprintf("%dm timer", mins)
	}
	c := t.set.Add(label, time.Duration(mins)*time.Minute)
	c.Start(t.now())
	return t, func() tea.Msg { return statusMsg{text: label + " started"} }
}

// --- View ---

func (t timersModel) view() string {
	w := t.width - 4
	if t.formActive && t.form != nil {
		title := titleStyle.Render("New Countdown")
		if t.formKind == panelAlarms {
			title = titleStyle.Render("New Alarm")
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", t.form.View()))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		t.framed(panelPomodoro, w, t.renderPomodoro(w)),
		t.framed(panelCountdowns, w, t.renderCountdowns()),
		t.framed(panelAlarms, w, t.renderAlarms()),
		mutedStyle.Render("  ←/→: switch panel"),
	)
}

func (t timersModel) framed(p timerPanel, w int, content string) string {
	if p == t.panel {
		return activePanelStyle.Width(w).Render(content)
	}
	return panelStyle.Width(w).Render(content)
}

func (t timersModel) renderPomodoro(w int) string {
	title := titleStyle.Render("Pomodoro")

	if t.phase == pomodoroIdle || t.countdown == nil {
		return lipgloss.JoinVertical(lipgloss.Center,
			title,
			timerStyle.Width(w-6).Render(formatClock(t.workDuration)),
			mutedStyle.Render("s: start"),
		)
	}

	style := accentStyle
	switch t.phase {
	case pomodoroShortBreak:
		style = successStyle
	case pomodoroLongBreak:
		style = highlightStyle
	}
	label := phaseNames[t.phase]
	if t.countdown.State() == timer.Paused {
		label += " (paused)"
	}

	controls := "space: pause  x: cancel"
	if t.phase != pomodoroWork {
		controls = "space: pause  r: skip break  x: cancel"
	}
	return lipgloss.JoinVertical(lipgloss.Center,
		title,
		style.Bold(true).Width(w-6).Align(lipgloss.Center).Render(formatClock(t.countdown.Remaining())),
		style.Bold(true).Render(label),
		t.renderProgress(),
		mutedStyle.Render(controls),
	)
}

func (t timersModel) renderProgress() string {
	done := t.rounds % roundsPerCycle
	var parts []string
	for i := 0; i < roundsPerCycle; i++ {
		switch {
		case i < done:
			parts = append(parts, successStyle.Render("●"))
		case i == done && t.phase == pomodoroWork:
			parts = append(parts, accentStyle.Render("◐"))
		default:
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	return strings.Join(parts, " ") + mutedStyle.Render(fmt.Sprintf("  %d done", t.rounds))
}

func (t timersModel) renderCountdowns() string {
	rows := []string{titleStyle.Render("Countdowns")}
	timers := t.set.Timers()
	if len(timers) == 0 {
		rows = append(rows, mutedStyle.Render("No countdowns. n: new"))
		return strings.Join(rows, "\n")
	}
	for i, c := range timers {
		cursor := "  "
		style := normalItemStyle
		if t.panel == panelCountdowns && i == t.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		state := successStyle.Render(c.State().String())
		if !c.Running() {
			state = warningStyle.Render(c.State().String())
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-20s %s", cursor, c.Label, formatClock(c.Remaining())))+"  "+state)
	}
	rows = append(rows, mutedStyle.Render("  n: new  space: pause/resume  r: reset  x: cancel"))
	return strings.Join(rows, "\n")
}

func (t timersModel) renderAlarms() string {
	rows := []string{titleStyle.Render("Alarms")}
	list := t.alarms.List()
	if len(list) == 0 {
		rows = append(rows, mutedStyle.Render("No alarms. n: new"))
		return strings.Join(rows, "\n")
	}
	for i, al := range list {
		cursor := "  "
		style := normalItemStyle
		if t.panel == panelAlarms && i == t.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		status := mutedStyle.Render("off")
		if al.Enabled {
			status = successStyle.Render("next " + al.Next().Format("Mon 15:04"))
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s  %s", cursor, al.Time, al.Label))+"  "+status)
	}
	rows = append(rows, mutedStyle.Render("  n: new  space: on/off  d: delete"))
	return strings.Join(rows, "\n")
}
