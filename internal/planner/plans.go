package planner

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/planr/internal/dates"
	"github.com/sadopc/planr/internal/identity"
	"github.com/sadopc/planr/internal/remote"
	"github.com/sadopc/planr/internal/store"
	"github.com/sadopc/planr/internal/syncstore"
)

const (
	domainPlans = "plans"
	// DefaultPlanType is used when a plan is added without a category.
	DefaultPlanType = "general"
)

// PlanInput carries the user-editable fields of a calendar plan.
type PlanInput struct {
	Title    string
	Time     string
	Priority store.Priority
	Type     string
	DateISO  string
}

type Plans struct {
	c   *syncstore.Collection[string, store.CalendarPlan]
	cal *dates.Calendar
}

func newPlans(dev syncstore.Device, rem remote.DocumentStore, cal *dates.Calendar, u *identity.User) (*Plans, error) {
	c, err := syncstore.New(syncstore.Options[string, store.CalendarPlan]{
		Domain:   domainPlans,
		KeyOf:    func(p store.CalendarPlan) string { return p.ID },
		Validate: validatePlan,
		Toggle:   func(p store.CalendarPlan) store.CalendarPlan { p.Completed = !p.Completed; return p },
		Device:   dev,
		Remote:   rem,
	}, u)
	if err != nil {
		return nil, fmt.Errorf("open plans: %w", err)
	}
	return &Plans{c: c, cal: cal}, nil
}

func validatePlan(p store.CalendarPlan) error {
	if strings.TrimSpace(p.Title) == "" {
		return syncstore.Invalid("title", "must not be empty")
	}
	if !dates.Valid(p.DateISO) {
		return syncstore.Invalid("date", fmt.Sprintf("%q is not a YYYY-MM-DD date", p.DateISO))
	}
	if p.Time != "" {
		if _, err := time.Parse("15:04", p.Time); err != nil {
			return syncstore.Invalid("time", fmt.Sprintf("%q is not HH:MM", p.Time))
		}
	}
	if !p.Priority.Valid() {
		return syncstore.Invalid("priority", fmt.Sprintf("%q is not low, medium or high", p.Priority))
	}
	return nil
}

func (in PlanInput) normalize() PlanInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Time = strings.TrimSpace(in.Time)
	in.Type = strings.TrimSpace(in.Type)
	if in.Type == "" {
		in.Type = DefaultPlanType
	}
	if in.Priority == "" {
		in.Priority = store.PriorityMedium
	}
	return in
}

// Add schedules a plan. Dates before today are rejected.
func (p *Plans) Add(ctx context.Context, in PlanInput) (store.CalendarPlan, error) {
	in = in.normalize()
	plan := store.CalendarPlan{
		ID:       uuid.NewString(),
		Title:    in.Title,
		Time:     in.Time,
		Priority: in.Priority,
		Type:     in.Type,
		DateISO:  in.DateISO,
	}
	if err := validatePlan(plan); err != nil {
		return store.CalendarPlan{}, err
	}
	if p.cal.IsPast(plan.DateISO) {
		return store.CalendarPlan{}, syncstore.Invalid("date", "cannot plan before today")
	}
	if err := p.c.Add(ctx, plan); err != nil {
		return store.CalendarPlan{}, err
	}
	return plan, nil
}

// Update rewrites the editable fields of a plan, keeping its id and
// completion state. Moving a plan into the past is rejected.
func (p *Plans) Update(ctx context.Context, id string, in PlanInput) error {
	in = in.normalize()
	if p.cal.IsPast(in.DateISO) {
		return syncstore.Invalid("date", "cannot plan before today")
	}
	return p.c.Update(ctx, id, func(plan store.CalendarPlan) store.CalendarPlan {
		plan.Title = in.Title
		plan.Time = in.Time
		plan.Priority = in.Priority
		plan.Type = in.Type
		plan.DateISO = in.DateISO
		return plan
	})
}

func (p *Plans) Toggle(ctx context.Context, id string) error {
	return p.c.Toggle(ctx, id)
}

func (p *Plans) Remove(ctx context.Context, id string) error {
	return p.c.Remove(ctx, id)
}

func (p *Plans) Get(id string) (store.CalendarPlan, bool) { return p.c.Get(id) }

func (p *Plans) Items() []store.CalendarPlan { return p.c.Items() }

// ByDate returns the plans for dateISO ordered by time; untimed plans
// come last.
func (p *Plans) ByDate(dateISO string) []store.CalendarPlan {
	var out []store.CalendarPlan
	for _, plan := range p.c.Items() {
		if plan.DateISO == dateISO {
			out = append(out, plan)
		}
	}
	slices.SortStableFunc(out, func(a, b store.CalendarPlan) int {
		switch {
		case a.Time == b.Time:
			return 0
		case a.Time == "":
			return 1
		case b.Time == "":
			return -1
		}
		return strings.Compare(a.Time, b.Time)
	})
	return out
}

// DatesWithPlans returns the distinct plan dates in ascending order.
func (p *Plans) DatesWithPlans() []string {
	var out []string
	for _, plan := range p.c.Items() {
		out = append(out, plan.DateISO)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
