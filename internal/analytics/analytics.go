// Package analytics computes rollups over timer sessions and tasks. Every
// function is pure; callers pass store snapshots and a reference date.
package analytics

import (
	"fmt"

	"github.com/sadopc/planr/internal/dates"
	"github.com/sadopc/planr/internal/store"
)

// DayRollup summarises the sessions of one day.
type DayRollup struct {
	Date  string
	Label string // short weekday name, e.g. "Mon"
	Count int
	Total int64 // seconds
}

// CompletionStats counts done versus planned tasks.
type CompletionStats struct {
	Total     int
	Completed int
	Rate      float64 // percent, 0 when Total is 0
}

// DateRange is an inclusive span of calendar dates. An empty bound is
// open.
type DateRange struct {
	From string
	To   string
}

func (r DateRange) Contains(dateISO string) bool {
	if r.From != "" && dateISO < r.From {
		return false
	}
	if r.To != "" && dateISO > r.To {
		return false
	}
	return true
}

func TotalDurationOnDate(sessions []store.TimerSession, dateISO string) int64 {
	var total int64
	for _, s := range sessions {
		if s.Date == dateISO {
			total += s.Duration
		}
	}
	return total
}

func SessionCountOnDate(sessions []store.TimerSession, dateISO string) int {
	n := 0
	for _, s := range sessions {
		if s.Date == dateISO {
			n++
		}
	}
	return n
}

// AverageDurationOnDate returns the mean session length in whole seconds,
// or 0 when there were no sessions.
func AverageDurationOnDate(sessions []store.TimerSession, dateISO string) int64 {
	n := SessionCountOnDate(sessions, dateISO)
	if n == 0 {
		return 0
	}
	return TotalDurationOnDate(sessions, dateISO) / int64(n)
}

// WeeklyRollup returns seven days ending on ref, oldest first. Days
// without sessions are zero-filled.
func WeeklyRollup(sessions []store.TimerSession, ref string) ([]DayRollup, error) {
	end, err := dates.Parse(ref)
	if err != nil {
		return nil, err
	}
	byDate := make(map[string]DayRollup, 7)
	for _, s := range sessions {
		r := byDate[s.Date]
		r.Count++
		r.Total += s.Duration
		byDate[s.Date] = r
	}

	out := make([]DayRollup, 7)
	for i := range out {
		d := end.AddDate(0, 0, i-6)
		iso := d.Format(dates.Layout)
		r := byDate[iso]
		r.Date = iso
		r.Label = d.Weekday().String()[:3]
		out[i] = r
	}
	return out, nil
}

// WeekTotal sums the totals of a rollup.
func WeekTotal(days []DayRollup) int64 {
	var total int64
	for _, d := range days {
		total += d.Total
	}
	return total
}

// TaskCompletionStats counts tasks whose date falls in r.
func TaskCompletionStats(tasks []store.Task, r DateRange) CompletionStats {
	var st CompletionStats
	for _, t := range tasks {
		if !r.Contains(t.DateISO) {
			continue
		}
		st.Total++
		if t.Done {
			st.Completed++
		}
	}
	st.Rate = rate(st.Completed, st.Total)
	return st
}

func rate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}

// FormatDuration renders seconds as "1h 25m".
func FormatDuration(seconds int64) string {
	return fmt.Sprintf("%dh %dm", seconds/3600, (seconds%3600)/60)
}
