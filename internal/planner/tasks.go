package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sadopc/planr/internal/analytics"
	"github.com/sadopc/planr/internal/dates"
	"github.com/sadopc/planr/internal/identity"
	"github.com/sadopc/planr/internal/remote"
	"github.com/sadopc/planr/internal/store"
	"github.com/sadopc/planr/internal/syncstore"
)

const (
	domainTasks = "tasks"
	// fieldLegacyWeek is the week-grouped task schema written by older
	// clients. It is read on pull but never written.
	fieldLegacyWeek = "currentWeek"
)

// Tasks is the to-do list. The flat list is canonical; weeks are derived.
type Tasks struct {
	c   *syncstore.Collection[int64, store.Task]
	cal *dates.Calendar
	ids *idSource
}

func newTasks(dev syncstore.Device, rem remote.DocumentStore, cal *dates.Calendar, ids *idSource, u *identity.User) (*Tasks, error) {
	t := &Tasks{cal: cal, ids: ids}
	c, err := syncstore.New(syncstore.Options[int64, store.Task]{
		Domain:   domainTasks,
		KeyOf:    func(t store.Task) int64 { return t.ID },
		Validate: t.validate,
		Toggle:   func(t store.Task) store.Task { t.Done = !t.Done; return t },
		Decode:   decodeTasks,
		Device:   dev,
		Remote:   rem,
	}, u)
	if err != nil {
		return nil, fmt.Errorf("open tasks: %w", err)
	}
	t.c = c
	return t, nil
}

func (t *Tasks) validate(task store.Task) error {
	if strings.TrimSpace(task.Title) == "" {
		return syncstore.Invalid("title", "must not be empty")
	}
	if !dates.Valid(task.DateISO) {
		return syncstore.Invalid("date", fmt.Sprintf("%q is not a YYYY-MM-DD date", task.DateISO))
	}
	return nil
}

// decodeTasks reads the flat "tasks" field, falling back to flattening a
// legacy "currentWeek" document.
func decodeTasks(doc remote.Document) ([]store.Task, error) {
	if raw, ok := doc[domainTasks]; ok {
		var tasks []store.Task
		if err := json.Unmarshal(raw, &tasks); err != nil {
			return nil, err
		}
		return tasks, nil
	}
	raw, ok := doc[fieldLegacyWeek]
	if !ok {
		return nil, nil
	}
	var week store.Week
	if err := json.Unmarshal(raw, &week); err != nil {
		return nil, err
	}
	return FlattenWeek(week), nil
}

// FlattenWeek converts a week-grouped task list to the flat schema. Tasks
// without a date inherit the date of their day.
func FlattenWeek(w store.Week) []store.Task {
	var out []store.Task
	for _, day := range w.Days {
		for _, task := range day.Tasks {
			if task.DateISO == "" {
				task.DateISO = day.DateISO
			}
			out = append(out, task)
		}
	}
	return out
}

// Add creates a task for dateISO. Dates before today are rejected.
func (t *Tasks) Add(ctx context.Context, title, dateISO string) (store.Task, error) {
	task := store.Task{Title: strings.TrimSpace(title), DateISO: dateISO}
	if err := t.validate(task); err != nil {
		return store.Task{}, err
	}
	if t.cal.IsPast(dateISO) {
		return store.Task{}, syncstore.Invalid("date", "cannot add a task before today")
	}
	task.ID = t.ids.next(maxID(t.c.Items(), func(t store.Task) int64 { return t.ID }))
	if err := t.c.Add(ctx, task); err != nil {
		return store.Task{}, err
	}
	return task, nil
}

func (t *Tasks) Toggle(ctx context.Context, id int64) error {
	return t.c.Toggle(ctx, id)
}

// Rename changes the title of a task.
func (t *Tasks) Rename(ctx context.Context, id int64, title string) error {
	title = strings.TrimSpace(title)
	return t.c.Update(ctx, id, func(task store.Task) store.Task {
		task.Title = title
		return task
	})
}

func (t *Tasks) Remove(ctx context.Context, id int64) error {
	return t.c.Remove(ctx, id)
}

func (t *Tasks) Get(id int64) (store.Task, bool) { return t.c.Get(id) }

func (t *Tasks) Items() []store.Task { return t.c.Items() }

// ForDate returns the tasks planned for dateISO in insertion order.
func (t *Tasks) ForDate(dateISO string) []store.Task {
	var out []store.Task
	for _, task := range t.c.Items() {
		if task.DateISO == dateISO {
			out = append(out, task)
		}
	}
	return out
}

// Today returns the tasks planned for the calendar's current day.
func (t *Tasks) Today() []store.Task {
	return t.ForDate(t.cal.Today())
}

// Week returns the derived week view containing ref.
func (t *Tasks) Week(ref string) (store.Week, error) {
	start, err := t.cal.StartOfWeek(ref)
	if err != nil {
		return store.Week{}, err
	}
	return analytics.WeekView(t.c.Items(), start)
}
