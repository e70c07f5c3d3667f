package analytics

import (
	"fmt"
	"time"

	"github.com/sadopc/planr/internal/dates"
	"github.com/sadopc/planr/internal/store"
)

// WeekSpan is a Monday-to-Sunday week overlapping a month.
type WeekSpan struct {
	Number int
	Start  string
	End    string
	Label  string
}

// DayBreakdown combines the focus time and task progress of one day.
type DayBreakdown struct {
	Date           string
	Label          string
	PomodoroCount  int
	PomodoroTotal  int64
	CompletedTasks int
	TotalTasks     int
	CompletionRate float64
}

// MonthStats summarises a calendar month.
type MonthStats struct {
	TotalPomodoros    int
	TotalPomodoroTime int64
	AvgPomodoroTime   float64
	TotalTasks        int
	CompletedTasks    int
	IncompleteTasks   int
	CompletionRate    float64
}

// PerformanceSummary condenses a run of days into one record.
type PerformanceSummary struct {
	Pomodoros      int
	FocusMinutes   float64
	TasksCompleted int
	TotalTasks     int
	CompletionRate float64 // mean of the daily rates
}

// WeeksInMonth lists the Monday-started weeks that overlap the month,
// numbered from 1.
func WeeksInMonth(year int, month time.Month) []WeekSpan {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	diff := (int(first.Weekday()) + 6) % 7 // days since Monday
	start := first.AddDate(0, 0, -diff)

	var weeks []WeekSpan
	for n := 1; !start.After(last); n++ {
		end := start.AddDate(0, 0, 6)
		weeks = append(weeks, WeekSpan{
			Number: n,
			Start:  start.Format(dates.Layout),
			End:    end.Format(dates.Layout),
			Label:  fmt.Sprintf("Week %d", n),
		})
		start = start.AddDate(0, 0, 7)
	}
	return weeks
}

// WeekBreakdown returns one entry per day of span.
func WeekBreakdown(span WeekSpan, sessions []store.TimerSession, tasks []store.Task) ([]DayBreakdown, error) {
	days, err := dates.Range(span.Start, span.End)
	if err != nil {
		return nil, err
	}
	if len(days) > 7 {
		days = days[:7]
	}
	out := make([]DayBreakdown, 0, len(days))
	for _, d := range days {
		t, _ := dates.Parse(d)
		st := TaskCompletionStats(tasks, DateRange{From: d, To: d})
		out = append(out, DayBreakdown{
			Date:           d,
			Label:          t.Weekday().String()[:3],
			PomodoroCount:  SessionCountOnDate(sessions, d),
			PomodoroTotal:  TotalDurationOnDate(sessions, d),
			CompletedTasks: st.Completed,
			TotalTasks:     st.Total,
			CompletionRate: st.Rate,
		})
	}
	return out, nil
}

// MonthlyStats summarises sessions and tasks dated within the month.
func MonthlyStats(sessions []store.TimerSession, tasks []store.Task, year int, month time.Month) MonthStats {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	r := DateRange{
		From: first.Format(dates.Layout),
		To:   first.AddDate(0, 1, -1).Format(dates.Layout),
	}

	var st MonthStats
	for _, s := range sessions {
		if r.Contains(s.Date) {
			st.TotalPomodoros++
			st.TotalPomodoroTime += s.Duration
		}
	}
	if st.TotalPomodoros > 0 {
		st.AvgPomodoroTime = float64(st.TotalPomodoroTime) / float64(st.TotalPomodoros)
	}

	tc := TaskCompletionStats(tasks, r)
	st.TotalTasks = tc.Total
	st.CompletedTasks = tc.Completed
	st.IncompleteTasks = tc.Total - tc.Completed
	st.CompletionRate = tc.Rate
	return st
}

// Performance folds a week breakdown into a summary. ok is false when days
// is empty.
func Performance(days []DayBreakdown) (p PerformanceSummary, ok bool) {
	if len(days) == 0 {
		return PerformanceSummary{}, false
	}
	var seconds int64
	var rates float64
	for _, d := range days {
		p.Pomodoros += d.PomodoroCount
		seconds += d.PomodoroTotal
		p.TasksCompleted += d.CompletedTasks
		p.TotalTasks += d.TotalTasks
		rates += d.CompletionRate
	}
	p.FocusMinutes = float64(seconds) / 60
	p.CompletionRate = rates / float64(len(days))
	return p, true
}

// WeekView groups tasks into the seven days starting at startISO. Tasks
// outside the week are ignored.
func WeekView(tasks []store.Task, startISO string) (store.Week, error) {
	end, err := dates.AddDays(startISO, 6)
	if err != nil {
		return store.Week{}, err
	}
	days, err := dates.Range(startISO, end)
	if err != nil {
		return store.Week{}, err
	}
	w := store.Week{StartISO: startISO, Days: make([]store.WeekDay, len(days))}
	index := make(map[string]int, len(days))
	for i, d := range days {
		w.Days[i] = store.WeekDay{DateISO: d, Tasks: []store.Task{}}
		index[d] = i
	}
	for _, t := range tasks {
		if i, ok := index[t.DateISO]; ok {
			w.Days[i].Tasks = append(w.Days[i].Tasks, t)
		}
	}
	return w, nil
}
