package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/planr/internal/identity"
	"github.com/sadopc/planr/internal/planner"
	"github.com/sadopc/planr/internal/store"
)

type settingsModel struct {
	store  *store.Store
	app    *planner.App
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	pomodoroWork      *string
	pomodoroBreak     *string
	pomodoroLongBreak *string
	dailyGoal         *string
}

func newSettingsModel(app *planner.App, s *store.Store) settingsModel {
	pw, pb, plb, dg := "", "", "", ""
	return settingsModel{
		store:             s,
		app:               app,
		pomodoroWork:      &pw,
		pomodoroBreak:     &pb,
		pomodoroLongBreak: &plb,
		dailyGoal:         &dg,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) capturingInput() bool { return s.formActive }

type settingsDataMsg struct {
	settings []store.Setting
}

// settingsSavedMsg tells the timers to pick up new durations.
type settingsSavedMsg struct{}

func (s settingsModel) refresh() tea.Cmd {
	st := s.store
	return func() tea.Msg {
		settings, _ := st.GetAllSettings()
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.pomodoroWork = secsToMin(s.getVal(store.SettingPomodoroWork, "1500"))
	*s.pomodoroBreak = secsToMin(s.getVal(store.SettingPomodoroBreak, "300"))
	*s.pomodoroLongBreak = secsToMin(s.getVal(store.SettingPomodoroLongBreak, "900"))
	*s.dailyGoal = secsToHours(s.getVal(store.SettingDailyGoal, "7200"))

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Pomodoro work (min)").Value(s.pomodoroWork).Validate(positiveInt),
			huh.NewInput().Title("Pomodoro break (min)").Value(s.pomodoroBreak).Validate(positiveInt),
			huh.NewInput().Title("Long break (min)").Value(s.pomodoroLongBreak).Validate(positiveInt),
		).Title("Pomodoro"),
		huh.NewGroup(
			huh.NewInput().Title("Daily focus goal (hours)").Value(s.dailyGoal).Validate(positiveFloat),
		).Title("General"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		s.formActive = false
		s.form = nil
		return s, nil
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.saveSettings(); err != nil {
			return s, func() tea.Msg { return statusMsg{text: describeError(err), isError: true} }
		}
		return s, tea.Batch(
			s.refresh(),
			func() tea.Msg { return settingsSavedMsg{} },
			func() tea.Msg { return statusMsg{text: "Settings saved"} },
		)
	}
	return s, cmd
}

func (s settingsModel) saveSettings() error {
	return errors.Join(
		s.store.SetSetting(store.SettingPomodoroWork, minToSecs(*s.pomodoroWork)),
		s.store.SetSetting(store.SettingPomodoroBreak, minToSecs(*s.pomodoroBreak)),
		s.store.SetSetting(store.SettingPomodoroLongBreak, minToSecs(*s.pomodoroLongBreak)),
		s.store.SetSetting(store.SettingDailyGoal, hoursToSecs(*s.dailyGoal)),
	)
}

func (s settingsModel) getVal(k, fallback string) string {
	v, err := s.store.GetSetting(k)
	if err != nil {
		return fallback
	}
	return v
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()))
	}

	rows := []string{title, ""}
	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}
	rows = append(rows, "", mutedStyle.Render("Press enter to edit settings"))

	return lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...)),
		panelStyle.Width(w).Render(s.renderAccount()),
	)
}

// renderAccount shows the identity and calendar the stores are bound to.
func (s settingsModel) renderAccount() string {
	cal := s.app.Calendar()
	u := s.app.Identity().Current()
	who := "guest (data stays on this device)"
	if u != nil {
		who = u.ID
		if u.Email != "" {
			who += " <" + u.Email + ">"
		}
	}
	line := func(k, v string) string {
		return fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(24).Render(k), highlightStyle.Render(v))
	}
	return strings.Join([]string{
		titleStyle.Render("Account"),
		"",
		line("signed in as", who),
		line("storage key", "tasks-storage-"+identity.KeyID(u)),
		line("timezone", cal.Zone().String()),
		line("week starts", cal.WeekStart().String()),
		line("today", cal.Today()),
		"",
		mutedStyle.Render("Sign in or out with `planr login` / `planr logout`"),
	}, "\n")
}

func formatSettingValue(k, v string) string {
	switch k {
	case store.SettingPomodoroWork, store.SettingPomodoroBreak, store.SettingPomodoroLongBreak:
		if secs, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%d min", secs/60)
		}
	case store.SettingDailyGoal:
		if secs, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%.1f hours", float64(secs)/3600)
		}
	}
	return v
}

func positiveInt(s string) error {
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err != nil || n <= 0 {
		return errors.New("enter a positive whole number")
	}
	return nil
}

func positiveFloat(s string) error {
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil || f <= 0 {
		return errors.New("enter a positive number")
	}
	return nil
}

func secsToMin(s string) string {
	if secs, err := strconv.Atoi(s); err == nil {
		return strconv.Itoa(secs / 60)
	}
	return s
}

func minToSecs(s string) string {
	if mins, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return strconv.Itoa(mins * 60)
	}
	return s
}

func secsToHours(s string) string {
	if secs, err := strconv.Atoi(s); err == nil {
		return fmt.Sprintf("%.1f", float64(secs)/3600)
	}
	return s
}

func hoursToSecs(s string) string {
	if hours, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return strconv.Itoa(int(hours * 3600))
	}
	return s
}
