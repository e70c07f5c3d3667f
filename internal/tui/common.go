package tui

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/planr/internal/identity"
	"github.com/sadopc/planr/internal/syncstore"
)

// viewState represents the currently active view.
type viewState int

const (
	viewToday viewState = iota
	viewNotes
	viewPlans
	viewTimers
	viewAnalytics
	viewSettings
)

var viewNames = []string{"Today", "Notes", "Plans", "Timers", "Analytics", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

// dataChangedMsg asks every view to re-read its snapshot.
type dataChangedMsg struct{}

// mutatedMsg reports a successful store mutation.
type mutatedMsg struct {
	text string
}

// identityMsg is sent from the identity subscription when the user changes.
type identityMsg struct {
	user *identity.User
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

// mutation runs fn off the UI loop and reports the outcome. Validation and
// sync failures become error statuses; a sync failure has already been
// rolled back by the store.
func mutation(okText string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			return statusMsg{text: describeError(err), isError: true}
		}
		return mutatedMsg{text: okText}
	}
}

func describeError(err error) string {
	var verr *syncstore.ValidationError
	switch {
	case errors.As(err, &verr):
		return "Invalid: " + verr.Error()
	case errors.Is(err, syncstore.ErrSync):
		return "Sync failed, change undone: " + err.Error()
	}
	return "Error: " + err.Error()
}

func refreshAll() tea.Msg { return dataChangedMsg{} }

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

func formatHours(secs int64) string {
	h := float64(secs) / 3600
	return fmt.Sprintf("%.1fh", h)
}

func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", m, s)
}

// clampCursor keeps a list cursor inside [0, n).
func clampCursor(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}
