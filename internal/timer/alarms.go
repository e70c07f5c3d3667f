package timer

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Alarm fires once a day at a wall-clock minute.
type Alarm struct {
	ID      int
	Time    string // HH:MM
	Label   string
	Enabled bool

	schedule cron.Schedule
	next     time.Time
}

// Next is the upcoming firing instant, zero when disabled.
func (a *Alarm) Next() time.Time { return a.next }

// Alarms holds the daily alarms and reports which are due.
type Alarms struct {
	alarms []*Alarm
	nextID int
}

func NewAlarms() *Alarms { return &Alarms{} }

// parseClock turns "HH:MM" into a daily cron schedule.
func parseClock(hhmm string) (cron.Schedule, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(hhmm), ":")
	if !ok {
		return nil, fmt.Errorf("parse alarm time %q: want HH:MM", hhmm)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return nil, fmt.Errorf("parse alarm time %q: bad hour", hhmm)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return nil, fmt.Errorf("parse alarm time %q: bad minute", hhmm)
	}
	sched, err := cron.ParseStandard(fmt.Sprintf("%d %d * * *", minute, hour))
	if err != nil {
		return nil, fmt.Errorf("parse alarm time %q: %w", hhmm, err)
	}
	return sched, nil
}

// Add schedules an enabled alarm. now anchors the first firing.
func (a *Alarms) Add(hhmm, label string, now time.Time) (*Alarm, error) {
	sched, err := parseClock(hhmm)
	if err != nil {
		return nil, err
	}
	a.nextID++
	al := &Alarm{
		ID:       a.nextID,
		Time:     strings.TrimSpace(hhmm),
		Label:    label,
		Enabled:  true,
		schedule: sched,
		next:     sched.Next(now),
	}
	a.alarms = append(a.alarms, al)
	return al, nil
}

func (a *Alarms) List() []*Alarm { return slices.Clone(a.alarms) }

// Toggle enables or disables an alarm. Re-enabling schedules from now.
func (a *Alarms) Toggle(id int, now time.Time) bool {
	for _, al := range a.alarms {
		if al.ID != id {
			continue
		}
		al.Enabled = !al.Enabled
		if al.Enabled {
			al.next = al.schedule.Next(now)
		} else {
			al.next = time.Time{}
		}
		return true
	}
	return false
}

func (a *Alarms) Remove(id int) bool {
	n := len(a.alarms)
	a.alarms = slices.DeleteFunc(a.alarms, func(al *Alarm) bool { return al.ID == id })
	return len(a.alarms) != n
}

// Check returns the alarms due at now and schedules their next firing, so
// each alarm fires at most once per day however often Check is called.
func (a *Alarms) Check(now time.Time) []*Alarm {
	var due []*Alarm
	for _, al := range a.alarms {
		if !al.Enabled || now.Before(al.next) {
			continue
		}
		due = append(due, al)
		al.next = al.schedule.Next(now)
	}
	return due
}
