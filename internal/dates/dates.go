// Package dates computes calendar days in a fixed UTC offset so that "today"
// does not depend on the host locale.
package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// Layout is the ISO calendar date format used for every dateISO field.
const Layout = "2006-01-02"

// DefaultOffset is the zone the planner computes "today" in (UTC+2).
const DefaultOffset = 2 * time.Hour

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// FixedClock returns a clock stuck at t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// Calendar resolves instants to calendar days in a fixed zone.
type Calendar struct {
	clock     Clock
	zone      *time.Location
	weekStart time.Weekday
}

// NewCalendar builds a calendar for the given offset from UTC. A nil clock
// means the system clock.
func NewCalendar(clock Clock, offset time.Duration, weekStart time.Weekday) *Calendar {
	if clock == nil {
		clock = SystemClock
	}
	return &Calendar{
		clock:     clock,
		zone:      time.FixedZone(formatOffset(offset), int(offset.Seconds())),
		weekStart: weekStart,
	}
}

// Now returns the current instant in the calendar zone.
func (c *Calendar) Now() time.Time {
	return c.clock.Now().In(c.zone)
}

// Zone returns the fixed zone of the calendar.
func (c *Calendar) Zone() *time.Location {
	return c.zone
}

// WeekStart returns the first weekday of a planner week.
func (c *Calendar) WeekStart() time.Weekday {
	return c.weekStart
}

// Today returns the current calendar date as YYYY-MM-DD.
func (c *Calendar) Today() string {
	return c.Now().Format(Layout)
}

// DateOf formats t as a calendar date in the calendar zone.
func (c *Calendar) DateOf(t time.Time) string {
	return t.In(c.zone).Format(Layout)
}

// IsPast reports whether dateISO is strictly before today.
func (c *Calendar) IsPast(dateISO string) bool {
	return dateISO < c.Today()
}

// StartOfWeek returns the first day of the week containing dateISO.
func (c *Calendar) StartOfWeek(dateISO string) (string, error) {
	d, err := Parse(dateISO)
	if err != nil {
		return "", err
	}
	diff := (int(d.Weekday()) - int(c.weekStart) + 7) % 7
	return d.AddDate(0, 0, -diff).Format(Layout), nil
}

// Parse reads a YYYY-MM-DD date as midnight UTC. Day arithmetic is done in
// UTC so that adding days never crosses a DST transition.
func Parse(dateISO string) (time.Time, error) {
	t, err := time.Parse(Layout, dateISO)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", dateISO, err)
	}
	return t, nil
}

// Valid reports whether s is a well-formed calendar date.
func Valid(s string) bool {
	_, err := time.Parse(Layout, s)
	return err == nil
}

// AddDays shifts dateISO by n days.
func AddDays(dateISO string, n int) (string, error) {
	d, err := Parse(dateISO)
	if err != nil {
		return "", err
	}
	return d.AddDate(0, 0, n).Format(Layout), nil
}

// Range returns every date from 'from' to 'to' inclusive.
func Range(from, to string) ([]string, error) {
	start, err := Parse(from)
	if err != nil {
		return nil, err
	}
	end, err := Parse(to)
	if err != nil {
		return nil, err
	}
	var out []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(Layout))
	}
	return out, nil
}

// ParseOffset parses offsets written as "+02:00", "-0530" or "UTC+2".
func ParseOffset(s string) (time.Duration, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.ToUpper(s), "UTC"))
	if s == "" || s == "Z" {
		return 0, nil
	}
	sign := time.Duration(1)
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		sign = -1
		s = s[1:]
	default:
		return 0, fmt.Errorf("parse offset %q: missing sign", s)
	}
	var hh, mm string
	switch {
	case strings.Contains(s, ":"):
		hh, mm, _ = strings.Cut(s, ":")
	case len(s) == 4:
		hh, mm = s[:2], s[2:]
	default:
		hh, mm = s, "0"
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h > 14 {
		return 0, fmt.Errorf("parse offset hours %q", hh)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m >= 60 {
		return 0, fmt.Errorf("parse offset minutes %q", mm)
	}
	return sign * (time.Duration(h)*time.Hour + time.Duration(m)*time.Minute), nil
}

// ParseWeekday accepts english weekday names ("saturday", "sat").
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || s == name[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

var parser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// ParseNatural resolves either an ISO date or an english phrase such as
// "tomorrow" or "next friday" relative to the calendar's current day.
func (c *Calendar) ParseNatural(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" || strings.EqualFold(text, "today") {
		return c.Today(), nil
	}
	if Valid(text) {
		return text, nil
	}
	r, err := parser.Parse(text, c.Now())
	if err != nil {
		return "", fmt.Errorf("parse date %q: %w", text, err)
	}
	if r == nil {
		return "", fmt.Errorf("parse date %q: not recognised", text)
	}
	return c.DateOf(r.Time), nil
}

func formatOffset(d time.Duration) string {
	sign := '+'
	if d < 0 {
		sign = '-'
		d = -d
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, int(d.Hours()), int(d.Minutes())%60)
}
