package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/planr/internal/planner"
	"github.com/sadopc/planr/internal/store"
)

type notesModel struct {
	app    *planner.App
	width  int
	height int

	notes  []store.Note
	cursor int

	searching bool
	search    textinput.Model
	query     string

	formActive bool
	form       *huh.Form
	editingID  int64

	// Form field pointers (survive value copies)
	formText *string
	formDate *string
}

func newNotesModel(app *planner.App) notesModel {
	ti := textinput.New()
	ti.Placeholder = "search notes"
	ti.Prompt = "/ "
	text, date := "", ""
	return notesModel{
		app:      app,
		search:   ti,
		formText: &text,
		formDate: &date,
	}
}

func (n *notesModel) setSize(w, h int) {
	n.width = w
	n.height = h
}

// capturingInput reports whether keys should go to this view rather than
// the global bindings.
func (n notesModel) capturingInput() bool {
	return n.formActive || n.searching
}

type notesDataMsg struct {
	notes []store.Note
}

func (n notesModel) refresh() tea.Cmd {
	notes, query := n.app.Notes, n.query
	return func() tea.Msg {
		if query != "" {
			return notesDataMsg{notes: notes.Search(query)}
		}
		return notesDataMsg{notes: notes.Newest()}
	}
}

func (n notesModel) update(msg tea.Msg) (notesModel, tea.Cmd) {
	if n.formActive && n.form != nil {
		return n.updateForm(msg)
	}

	switch msg := msg.(type) {
	case notesDataMsg:
		n.notes = msg.notes
		n.cursor = clampCursor(n.cursor, len(n.notes))
		return n, nil

	case tea.KeyMsg:
		if n.searching {
			return n.updateSearch(msg)
		}
		switch {
		case key.Matches(msg, keys.Up):
			if n.cursor > 0 {
				n.cursor--
			}
		case key.Matches(msg, keys.Down):
			if n.cursor < len(n.notes)-1 {
				n.cursor++
			}
		case key.Matches(msg, keys.Search):
			n.searching = true
			n.search.SetValue(n.query)
			return n, n.search.Focus()
		case key.Matches(msg, keys.Back):
			if n.query != "" {
				n.query = ""
				return n, n.refresh()
			}
		case key.Matches(msg, keys.New):
			return n.showForm(nil)
		case key.Matches(msg, keys.Edit), key.Matches(msg, keys.Enter):
			if n.cursor < len(n.notes) {
				note := n.notes[n.cursor]
				return n.showForm(&note)
			}
		case key.Matches(msg, keys.Delete):
			if n.cursor < len(n.notes) {
				id := n.notes[n.cursor].ID
				return n, mutation("Note deleted", func() error {
					return n.app.Notes.Remove(context.Background(), id)
				})
			}
		}
	}
	return n, nil
}

func (n notesModel) updateSearch(msg tea.KeyMsg) (notesModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		n.searching = false
		n.search.Blur()
		return n, nil
	case "enter":
		n.searching = false
		n.search.Blur()
		n.query = strings.TrimSpace(n.search.Value())
		n.cursor = 0
		return n, n.refresh()
	}
	var cmd tea.Cmd
	n.search, cmd = n.search.Update(msg)
	return n, cmd
}

func (n notesModel) showForm(editing *store.Note) (notesModel, tea.Cmd) {
	*n.formText = ""
	*n.formDate = ""
	n.editingID = 0

	fields := []huh.Field{huh.NewText().Title("Note").Lines(5).Value(n.formText)}
	if editing != nil {
		*n.formText = editing.Text
		n.editingID = editing.ID
	} else {
		fields = append(fields, huh.NewInput().
			Title("Date").
			Description("Optional: YYYY-MM-DD, today, tomorrow...").
			Value(n.formDate))
	}

	n.form = huh.NewForm(huh.NewGroup(fields...)).WithShowHelp(true).WithShowErrors(true)
	n.formActive = true
	return n, n.form.Init()
}

func (n notesModel) updateForm(msg tea.Msg) (notesModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		n.formActive = false
		n.form = nil
		return n, nil
	}

	form, cmd := n.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		n.form = f
	}

	if n.form.State == huh.StateCompleted {
		n.formActive = false
		text, dateText, id := *n.formText, strings.TrimSpace(*n.formDate), n.editingID
		notes, cal := n.app.Notes, n.app.Calendar()
		if id != 0 {
			return n, mutation("Note saved", func() error {
				return notes.Update(context.Background(), id, text)
			})
		}
		return n, mutation("Note added", func() error {
			date := ""
			if dateText != "" {
				var err error
				if date, err = cal.ParseNatural(dateText); err != nil {
					return err
				}
			}
			_, err := notes.Add(context.Background(), text, date)
			return err
		})
	}
	return n, cmd
}

func (n notesModel) view() string {
	w := n.width - 4
	if n.formActive && n.form != nil {
		title := titleStyle.Render("New Note")
		if n.editingID != 0 {
			title = titleStyle.Render("Edit Note")
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", n.form.View()))
	}

	title := titleStyle.Render("Notes")
	if n.query != "" {
		title += mutedStyle.Render(fmt.Sprintf("  matching %q (esc to clear)", n.query))
	}
	rows := []string{title}
	if n.searching {
		rows = append(rows, n.search.View())
	}
	rows = append(rows, "")

	if len(n.notes) == 0 {
		empty := "No notes yet. Press n to write one."
		if n.query != "" {
			empty = "No notes match."
		}
		rows = append(rows, mutedStyle.Render(empty))
		return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
	}

	for i, note := range n.notes {
		cursor := "  "
		style := normalItemStyle
		if i == n.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		line := firstLine(note.Text, w-20)
		date := ""
		if note.DateISO != "" {
			date = mutedStyle.Render("  " + note.DateISO)
		}
		rows = append(rows, style.Render(cursor+line)+date)
	}

	rows = append(rows, "", mutedStyle.Render("  n: new  e: edit  d: delete  /: search"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

// firstLine returns the first line of s cut to at most width runes.
func firstLine(s string, width int) string {
	s, _, _ = strings.Cut(s, "\n")
	r := []rune(s)
	if width > 1 && len(r) > width {
		return string(r[:width-1]) + "…"
	}
	return s
}
