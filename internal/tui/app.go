package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/planr/internal/export"
	"github.com/sadopc/planr/internal/identity"
	"github.com/sadopc/planr/internal/log"
	"github.com/sadopc/planr/internal/planner"
	"github.com/sadopc/planr/internal/store"
)

var exportFormats = []string{"CSV", "JSON", "ICS"}

// App is the root Bubble Tea model.
type App struct {
	planner *planner.App
	store   *store.Store
	width   int
	height  int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	// exportDir overrides the home directory as export target.
	exportDir string

	today     todayModel
	notes     notesModel
	plans     plansModel
	timers    timersModel
	analytics analyticsModel
	settings  settingsModel

	help        help.Model
	status      string
	statusError bool
}

func NewApp(p *planner.App, s *store.Store) App {
	h := help.New()
	h.ShowAll = false

	return App{
		planner:    p,
		store:      s,
		activeView: viewToday,
		today:      newTodayModel(p),
		notes:      newNotesModel(p),
		plans:      newPlansModel(p),
		timers:     newTimersModel(p, s),
		analytics:  newAnalyticsModel(p, s),
		settings:   newSettingsModel(p, s),
		help:       h,
	}
}

// Run drives the TUI until the user quits. Identity changes made elsewhere
// (another process writing the session file) are forwarded to the model.
func Run(ctx context.Context, p *planner.App, s *store.Store) error {
	program := tea.NewProgram(NewApp(p, s), tea.WithAltScreen(), tea.WithContext(ctx))
	unsubscribe := p.Identity().Subscribe(func(_ context.Context, u *identity.User) error {
		go program.Send(identityMsg{user: u})
		return nil
	})
	defer unsubscribe()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		refreshAll,
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.today.setSize(a.width, contentHeight)
		a.notes.setSize(a.width, contentHeight)
		a.plans.setSize(a.width, contentHeight)
		a.timers.setSize(a.width, contentHeight)
		a.analytics.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Sync):
			a.status = "Pulling..."
			a.statusError = false
			return a, a.pull()
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchTo(viewToday)
		case key.Matches(msg, keys.Tab2):
			return a.switchTo(viewNotes)
		case key.Matches(msg, keys.Tab3):
			return a.switchTo(viewPlans)
		case key.Matches(msg, keys.Tab4):
			return a.switchTo(viewTimers)
		case key.Matches(msg, keys.Tab5):
			return a.switchTo(viewAnalytics)
		case key.Matches(msg, keys.Tab6):
			return a.switchTo(viewSettings)
		case key.Matches(msg, keys.Tab):
			return a.switchTo((a.activeView + 1) % viewState(len(viewNames)))
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())
		// Clocks run whichever view is visible.
		var cmd tea.Cmd
		a.today, cmd = a.today.update(msg)
		cmds = append(cmds, cmd)
		a.timers, cmd = a.timers.update(msg)
		cmds = append(cmds, cmd)
		return a, tea.Batch(cmds...)

	case statusMsg:
		a.status = msg.text
		a.statusError = msg.isError
		return a, nil

	case mutatedMsg:
		a.status = msg.text
		a.statusError = false
		return a, refreshAll

	case identityMsg:
		if msg.user == nil {
			a.status = "Signed out, showing guest data"
		} else {
			a.status = "Signed in as " + msg.user.ID
		}
		a.statusError = false
		return a, refreshAll

	case dataChangedMsg:
		return a, tea.Batch(
			a.today.refresh(),
			a.notes.refresh(),
			a.plans.refresh(),
			a.analytics.refresh(),
			a.settings.refresh(),
		)

	case settingsSavedMsg:
		a.timers, _ = a.timers.update(msg)
		return a, a.analytics.refresh()

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusError = false
		a.exportPicking = false
		return a, nil

	// Data snapshots go to their owner whichever view is active.
	case todayDataMsg:
		a.today, _ = a.today.update(msg)
		return a, nil
	case notesDataMsg:
		a.notes, _ = a.notes.update(msg)
		return a, nil
	case plansDataMsg:
		a.plans, _ = a.plans.update(msg)
		return a, nil
	case analyticsDataMsg:
		a.analytics, _ = a.analytics.update(msg)
		return a, nil
	case settingsDataMsg:
		a.settings, _ = a.settings.update(msg)
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) switchTo(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	return a, a.refreshCurrentView()
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewToday:
		a.today, cmd = a.today.update(msg)
	case viewNotes:
		a.notes, cmd = a.notes.update(msg)
	case viewPlans:
		a.plans, cmd = a.plans.update(msg)
	case viewTimers:
		a.timers, cmd = a.timers.update(msg)
	case viewAnalytics:
		a.analytics, cmd = a.analytics.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewToday:
		return a.today.formActive
	case viewNotes:
		return a.notes.capturingInput()
	case viewPlans:
		return a.plans.formActive
	case viewTimers:
		return a.timers.capturingInput()
	case viewSettings:
		return a.settings.capturingInput()
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewToday:
		return a.today.refresh()
	case viewNotes:
		return a.notes.refresh()
	case viewPlans:
		return a.plans.refresh()
	case viewAnalytics:
		return a.analytics.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

// pull replaces every store with the remote copy.
func (a App) pull() tea.Cmd {
	p := a.planner
	return mutation("Pulled latest data", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return p.Pull(ctx)
	})
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewToday:
		content = a.today.view()
	case viewNotes:
		content = a.notes.view()
	case viewPlans:
		content = a.plans.view()
	case viewTimers:
		content = a.timers.view()
	case viewAnalytics:
		content = a.analytics.view()
	case viewSettings:
		content = a.settings.view()
	}

	contentHeight := max(a.height-lipgloss.Height(header)-lipgloss.Height(footer), 1)

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("planr")
	if u := a.planner.Identity().Current(); u != nil {
		title += mutedStyle.Render(" · " + u.ID)
	} else {
		title += mutedStyle.Render(" · guest")
	}
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusError {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	// Clock indicators in footer
	clocks := ""
	if a.today.focus.running() {
		elapsed := a.today.focus.elapsed()
		clocks = successStyle.Render(" ● " + formatDuration(elapsed))
		if a.today.focus.paused() {
			clocks = warningStyle.Render(" ⏸ " + formatDuration(elapsed))
		}
	}
	if a.timers.countdown != nil {
		clocks += accentStyle.Render(" 🍅 " + formatClock(a.timers.countdown.Remaining()))
	}

	left := footerStyle.Render(helpView)
	right := clocks + status

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	rows := []string{titleStyle.Render("Export Format"), ""}
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: export  esc: cancel"))

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	p, dir := a.planner, a.exportDir
	return func() tea.Msg {
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
			}
			dir = home
		}
		cal := p.Calendar()
		base := filepath.Join(dir, "planr-export-"+cal.Today())
		data := export.Data{
			Tasks:    p.Tasks.Items(),
			Notes:    p.Notes.Items(),
			Plans:    p.Plans.Items(),
			Sessions: p.Sessions.Items(),
		}

		var path string
		var err error
		switch exportFormats[format] {
		case "CSV":
			path = base + ".csv"
			err = export.ToCSV(data, path)
		case "JSON":
			path = base + ".json"
			err = export.ToJSON(data, identity.KeyID(p.Identity().Current()), path)
		case "ICS":
			path = base + ".ics"
			err = export.ToICS(data.Plans, cal.Zone(), path)
		}
		if err != nil {
			log.Error("export failed", err, "path", path)
			return statusMsg{text: fmt.Sprintf("%s error: %v", exportFormats[format], err), isError: true}
		}
		log.Info("exported data", "path", path)
		return exportDoneMsg{path: path}
	}
}
