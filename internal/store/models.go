package store

// Task is a to-do item planned for a calendar day.
type Task struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	DateISO string `json:"dateISO"`
	Done    bool   `json:"done"`
}

type Note struct {
	ID      int64  `json:"id"`
	Text    string `json:"text"`
	DateISO string `json:"dateISO,omitempty"`
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// CalendarPlan is a scheduled item on the calendar. Time is an optional
// "HH:MM" clock time.
type CalendarPlan struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Time      string   `json:"time,omitempty"`
	Priority  Priority `json:"priority"`
	Type      string   `json:"type"`
	Completed bool     `json:"completed"`
	DateISO   string   `json:"dateISO"`
}

// TimerSession records a finished countdown. Duration is in seconds.
type TimerSession struct {
	ID       int64  `json:"id"`
	Duration int64  `json:"duration"`
	Date     string `json:"date"`
}

type WeekDay struct {
	DateISO string `json:"dateISO"`
	Tasks   []Task `json:"tasks"`
}

// Week groups tasks by day. It is only ever derived from the flat task
// list, or read from documents written by older clients.
type Week struct {
	StartISO string    `json:"startISO"`
	Days     []WeekDay `json:"days"`
}

type Setting struct {
	Key   string
	Value string
}
