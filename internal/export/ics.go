package export

import (
	"fmt"
	"os"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/sadopc/planr/internal/dates"
	"github.com/sadopc/planr/internal/store"
)

// timedPlanLength is the event length given to plans that carry a time.
const timedPlanLength = time.Hour

var icalPriority = map[store.Priority]string{
	store.PriorityHigh:   "1",
	store.PriorityMedium: "5",
	store.PriorityLow:    "9",
}

// BuildCalendar converts plans into VEVENTs. Plans without a time become
// all-day events; timed plans are interpreted in zone.
func BuildCalendar(plans []store.CalendarPlan, zone *time.Location, stamp time.Time) (*ical.Calendar, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//planr//calendar plans//EN")

	for _, p := range plans {
		day, err := dates.Parse(p.DateISO)
		if err != nil {
			return nil, fmt.Errorf("plan %s: %w", p.ID, err)
		}

		ev := cal.AddEvent(p.ID + "@planr")
		ev.SetDtStampTime(stamp)
		ev.SetSummary(p.Title)
		if p.Time == "" {
			ev.SetAllDayStartAt(day)
			ev.SetAllDayEndAt(day.AddDate(0, 0, 1))
		} else {
			clock, err := time.Parse("15:04", p.Time)
			if err != nil {
				return nil, fmt.Errorf("plan %s: parse time %q: %w", p.ID, p.Time, err)
			}
			start := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, zone)
			ev.SetStartAt(start)
			ev.SetEndAt(start.Add(timedPlanLength))
		}
		if p.Type != "" {
			ev.SetProperty(ical.ComponentPropertyCategories, p.Type)
		}
		if prio, ok := icalPriority[p.Priority]; ok {
			ev.SetProperty(ical.ComponentPropertyPriority, prio)
		}
		if p.Completed {
			ev.SetDescription("completed")
		}
		ev.SetProperty(ical.ComponentPropertyStatus, "CONFIRMED")
	}
	return cal, nil
}

// ToICS writes plans to an .ics file.
func ToICS(plans []store.CalendarPlan, zone *time.Location, path string) error {
	cal, err := BuildCalendar(plans, zone, time.Now())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(cal.Serialize()), 0o644); err != nil {
		return fmt.Errorf("write ics file: %w", err)
	}
	return nil
}
