package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/planr/internal/dates"
	"github.com/sadopc/planr/internal/planner"
	"github.com/sadopc/planr/internal/store"
)

var planTypes = []string{planner.DefaultPlanType, "work", "personal", "meeting", "study", "health"}

type plansModel struct {
	app    *planner.App
	width  int
	height int

	date   string // selected day, YYYY-MM-DD
	plans  []store.CalendarPlan
	marked map[string]bool // days that carry at least one plan
	cursor int

	formActive bool
	form       *huh.Form
	editingID  string

	// Form field pointers (survive value copies)
	formTitle    *string
	formTime     *string
	formPriority *store.Priority
	formType     *string
	formDate     *string
}

func newPlansModel(app *planner.App) plansModel {
	title, tm, typ, date := "", "", planner.DefaultPlanType, ""
	prio := store.PriorityMedium
	return plansModel{
		app:          app,
		formTitle:    &title,
		formTime:     &tm,
		formPriority: &prio,
		formType:     &typ,
		formDate:     &date,
	}
}

func (p *plansModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type plansDataMsg struct {
	date   string
	plans  []store.CalendarPlan
	marked []string
}

func (p plansModel) refresh() tea.Cmd {
	app, date := p.app, p.date
	return func() tea.Msg {
		if date == "" {
			date = app.Calendar().Today()
		}
		return plansDataMsg{
			date:   date,
			plans:  app.Plans.ByDate(date),
			marked: app.Plans.DatesWithPlans(),
		}
	}
}

func (p plansModel) update(msg tea.Msg) (plansModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case plansDataMsg:
		p.date = msg.date
		p.plans = msg.plans
		p.marked = make(map[string]bool, len(msg.marked))
		for _, d := range msg.marked {
			p.marked[d] = true
		}
		p.cursor = clampCursor(p.cursor, len(p.plans))
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
		case key.Matches(msg, keys.Down):
			if p.cursor < len(p.plans)-1 {
				p.cursor++
			}
		case key.Matches(msg, keys.Left):
			return p.shiftDay(-1)
		case key.Matches(msg, keys.Right):
			return p.shiftDay(1)
		case key.Matches(msg, keys.Toggle):
			if p.cursor < len(p.plans) {
				id := p.plans[p.cursor].ID
				return p, mutation("Plan updated", func() error {
					return p.app.Plans.Toggle(context.Background(), id)
				})
			}
		case key.Matches(msg, keys.Delete):
			if p.cursor < len(p.plans) {
				id := p.plans[p.cursor].ID
				return p, mutation("Plan deleted", func() error {
					return p.app.Plans.Remove(context.Background(), id)
				})
			}
		case key.Matches(msg, keys.New):
			return p.showForm(nil)
		case key.Matches(msg, keys.Edit), key.Matches(msg, keys.Enter):
			if p.cursor < len(p.plans) {
				plan := p.plans[p.cursor]
				return p.showForm(&plan)
			}
		}
	}
	return p, nil
}

func (p plansModel) shiftDay(n int) (plansModel, tea.Cmd) {
	next, err := dates.AddDays(p.date, n)
	if err != nil {
		return p, nil
	}
	p.date = next
	p.cursor = 0
	return p, p.refresh()
}

func (p plansModel) showForm(editing *store.CalendarPlan) (plansModel, tea.Cmd) {
	*p.formTitle = ""
	*p.formTime = ""
	*p.formPriority = store.PriorityMedium
	*p.formType = planner.DefaultPlanType
	*p.formDate = p.date
	p.editingID = ""
	if editing != nil {
		*p.formTitle = editing.Title
		*p.formTime = editing.Time
		*p.formPriority = editing.Priority
		*p.formType = editing.Type
		*p.formDate = editing.DateISO
		p.editingID = editing.ID
	}

	typeOptions := make([]huh.Option[string], 0, len(planTypes)+1)
	for _, t := range planTypes {
		typeOptions = append(typeOptions, huh.NewOption(t, t))
	}
	if editing != nil && !slices.Contains(planTypes, editing.Type) {
		typeOptions = append(typeOptions, huh.NewOption(editing.Type, editing.Type))
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(p.formTitle),
			huh.NewInput().Title("Time").Description("Optional, HH:MM").Value(p.formTime),
			huh.NewSelect[store.Priority]().Title("Priority").Options(
				huh.NewOption("high", store.PriorityHigh),
				huh.NewOption("medium", store.PriorityMedium),
				huh.NewOption("low", store.PriorityLow),
			).Value(p.formPriority),
			huh.NewSelect[string]().Title("Type").Options(typeOptions...).Value(p.formType),
			huh.NewInput().Title("Date").Description("YYYY-MM-DD, tomorrow, next monday...").Value(p.formDate),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p plansModel) updateForm(msg tea.Msg) (plansModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		p.formActive = false
		p.form = nil
		return p, nil
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		in := planner.PlanInput{
			Title:    *p.formTitle,
			Time:     strings.TrimSpace(*p.formTime),
			Priority: *p.formPriority,
			Type:     *p.formType,
		}
		dateText, id := *p.formDate, p.editingID
		plans, cal := p.app.Plans, p.app.Calendar()
		text := "Plan added"
		if id != "" {
			text = "Plan saved"
		}
		return p, mutation(text, func() error {
			date, err := cal.ParseNatural(dateText)
			if err != nil {
				return err
			}
			in.DateISO = date
			if id != "" {
				return plans.Update(context.Background(), id, in)
			}
			_, err = plans.Add(context.Background(), in)
			return err
		})
	}
	return p, cmd
}

func (p plansModel) view() string {
	w := p.width - 4
	if p.formActive && p.form != nil {
		title := titleStyle.Render("New Plan")
		if p.editingID != "" {
			title = titleStyle.Render("Edit Plan")
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", p.form.View()))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		p.renderStrip(w),
		p.renderDay(w),
	)
}

// renderStrip draws the week around the selected day, marking days with plans.
func (p plansModel) renderStrip(w int) string {
	if p.date == "" {
		return ""
	}
	today := p.app.Calendar().Today()
	var cells []string
	for i := -3; i <= 3; i++ {
		d, err := dates.AddDays(p.date, i)
		if err != nil {
			continue
		}
		t, _ := dates.Parse(d)
		label := fmt.Sprintf("%s %02d", t.Weekday().String()[:2], t.Day())
		if p.marked[d] {
			label += "•"
		} else {
			label += " "
		}
		style := mutedStyle
		switch {
		case d == p.date:
			style = activeTabStyle
		case d == today:
			style = highlightStyle
		}
		cells = append(cells, style.Padding(0, 1).Render(label))
	}
	return panelStyle.Width(w).Render(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
}

func (p plansModel) renderDay(w int) string {
	title := titleStyle.Render("Plans") + mutedStyle.Render("  "+p.date)
	if p.date != "" && p.app.Calendar().IsPast(p.date) {
		title += mutedStyle.Render("  (past)")
	}
	rows := []string{title, ""}

	if len(p.plans) == 0 {
		rows = append(rows, mutedStyle.Render("Nothing planned. Press n to add a plan."))
	}
	for i, plan := range p.plans {
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		box := "[ ]"
		if plan.Completed {
			box = "[x]"
			if i != p.cursor {
				style = doneItemStyle
			}
		}
		tm := plan.Time
		if tm == "" {
			tm = "--:--"
		}
		dot := lipgloss.NewStyle().Foreground(priorityColors[string(plan.Priority)]).Render("●")
		rows = append(rows, fmt.Sprintf("%s %s",
			style.Render(fmt.Sprintf("%s%s %s", cursor, box, tm)),
			dot+" "+style.Render(plan.Title)+mutedStyle.Render("  "+plan.Type)))
	}

	rows = append(rows, "", mutedStyle.Render("  ←/→: day  n: new  e: edit  space: done  d: delete"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
