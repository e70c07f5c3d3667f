package analytics

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/sadopc/planr/internal/store"
)

func sess(date string, d int64) store.TimerSession {
	return store.TimerSession{Date: date, Duration: d}
}

// ============================================================
// Daily rollups
// ============================================================

func TestDailyRollupScenario(t *testing.T) {
	sessions := []store.TimerSession{sess("2024-01-01", 1500), sess("2024-01-01", 300), sess("2024-01-02", 60)}

	if got := TotalDurationOnDate(sessions, "2024-01-01"); got != 1800 {
		t.Fatalf("total = %d", got)
	}
	if got := SessionCountOnDate(sessions, "2024-01-01"); got != 2 {
		t.Fatalf("count = %d", got)
	}
	if got := AverageDurationOnDate(sessions, "2024-01-01"); got != 900 {
		t.Fatalf("average = %d", got)
	}
}

func TestAverageEmptyAndTruncated(t *testing.T) {
	if got := AverageDurationOnDate(nil, "2024-01-01"); got != 0 {
		t.Fatalf("empty average = %d", got)
	}
	sessions := []store.TimerSession{sess("d", 10), sess("d", 5)}
	if got := AverageDurationOnDate(sessions, "d"); got != 7 {
		t.Fatalf("truncated average = %d", got)
	}
}

// ============================================================
// Weekly rollup
// ============================================================

func TestWeeklyRollupEmpty(t *testing.T) {
	days, err := WeeklyRollup(nil, "2024-01-10")
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(days))
	}
	for _, d := range days {
		if d.Count != 0 || d.Total != 0 {
			t.Fatalf("expected zero day, got %+v", d)
		}
	}
	if WeekTotal(days) != 0 {
		t.Fatal("week total should be 0")
	}
}

func TestWeeklyRollupCrossesYear(t *testing.T) {
	sessions := []store.TimerSession{
		sess("2023-12-27", 100),
		sess("2023-12-31", 200),
		sess("2024-01-02", 300),
		sess("2024-01-02", 50),
		sess("2024-01-03", 999), // after ref
		sess("2023-12-26", 999), // before window
	}
	days, err := WeeklyRollup(sessions, "2024-01-02")
	if err != nil {
		t.Fatal(err)
	}
	want := []DayRollup{
		{Date: "2023-12-27", Label: "Wed", Count: 1, Total: 100},
		{Date: "2023-12-28", Label: "Thu"},
		{Date: "2023-12-29", Label: "Fri"},
		{Date: "2023-12-30", Label: "Sat"},
		{Date: "2023-12-31", Label: "Sun", Count: 1, Total: 200},
		{Date: "2024-01-01", Label: "Mon"},
		{Date: "2024-01-02", Label: "Tue", Count: 2, Total: 350},
	}
	if diff := cmp.Diff(want, days); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if WeekTotal(days) != 650 {
		t.Fatalf("week total = %d", WeekTotal(days))
	}
}

func TestWeeklyRollupBadDate(t *testing.T) {
	if _, err := WeeklyRollup(nil, "yesterday"); err == nil {
		t.Fatal("expected parse error")
	}
}

// ============================================================
// Task completion
// ============================================================

func TestTaskCompletionStats(t *testing.T) {
	if st := TaskCompletionStats(nil, DateRange{}); st.Rate != 0 || st.Total != 0 {
		t.Fatalf("empty stats = %+v", st)
	}
	tasks := []store.Task{
		{DateISO: "2024-01-01", Done: true},
		{DateISO: "2024-01-02"},
		{DateISO: "2024-01-03", Done: true},
		{DateISO: "2024-01-04", Done: true},
		{DateISO: "2024-02-01"},
	}
	st := TaskCompletionStats(tasks, DateRange{From: "2024-01-01", To: "2024-01-04"})
	want := CompletionStats{Total: 4, Completed: 3, Rate: 75}
	if diff := cmp.Diff(want, st); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

// ============================================================
// Monthly analytics
// ============================================================

func TestWeeksInMonth(t *testing.T) {
	// January 2024 starts on a Monday and ends on a Wednesday.
	weeks := WeeksInMonth(2024, time.January)
	if len(weeks) != 5 {
		t.Fatalf("expected 5 weeks, got %d", len(weeks))
	}
	if weeks[0].Start != "2024-01-01" || weeks[4].End != "2024-02-04" || weeks[4].Label != "Week 5" {
		t.Fatalf("unexpected weeks %+v", weeks)
	}

	// March 2024 starts on a Friday: the first week begins in February.
	weeks = WeeksInMonth(2024, time.March)
	if weeks[0].Start != "2024-02-26" {
		t.Fatalf("first week starts %s", weeks[0].Start)
	}
	if len(weeks) != 5 || weeks[4].End != "2024-03-31" {
		t.Fatalf("unexpected weeks %+v", weeks)
	}
}

func TestWeekBreakdownAndPerformance(t *testing.T) {
	span := WeeksInMonth(2024, time.January)[0]
	sessions := []store.TimerSession{sess("2024-01-01", 1500), sess("2024-01-01", 1500), sess("2024-01-03", 600)}
	tasks := []store.Task{
		{DateISO: "2024-01-01", Done: true},
		{DateISO: "2024-01-01"},
		{DateISO: "2024-01-02", Done: true},
	}
	days, err := WeekBreakdown(span, sessions, tasks)
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(days))
	}
	want := DayBreakdown{Date: "2024-01-01", Label: "Mon", PomodoroCount: 2, PomodoroTotal: 3000, CompletedTasks: 1, TotalTasks: 2, CompletionRate: 50}
	if diff := cmp.Diff(want, days[0]); diff != "" {
		t.Fatalf("monday (-want +got):\n%s", diff)
	}

	p, ok := Performance(days)
	if !ok {
		t.Fatal("expected performance summary")
	}
	wantP := PerformanceSummary{Pomodoros: 3, FocusMinutes: 60, TasksCompleted: 2, TotalTasks: 3, CompletionRate: 150.0 / 7}
	if diff := cmp.Diff(wantP, p); diff != "" {
		t.Fatalf("performance (-want +got):\n%s", diff)
	}

	if _, ok := Performance(nil); ok {
		t.Fatal("empty breakdown should report !ok")
	}
}

func TestMonthlyStats(t *testing.T) {
	sessions := []store.TimerSession{sess("2024-01-05", 1500), sess("2024-01-31", 300), sess("2024-02-01", 900)}
	tasks := []store.Task{
		{DateISO: "2024-01-02", Done: true},
		{DateISO: "2024-01-20"},
		{DateISO: "2023-12-31", Done: true},
	}
	st := MonthlyStats(sessions, tasks, 2024, time.January)
	want := MonthStats{
		TotalPomodoros:    2,
		TotalPomodoroTime: 1800,
		AvgPomodoroTime:   900,
		TotalTasks:        2,
		CompletedTasks:    1,
		IncompleteTasks:   1,
		CompletionRate:    50,
	}
	if diff := cmp.Diff(want, st); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestWeekView(t *testing.T) {
	tasks := []store.Task{
		{ID: 1, DateISO: "2024-01-01"},
		{ID: 2, DateISO: "2024-01-07"},
		{ID: 3, DateISO: "2024-01-08"},
	}
	w, err := WeekView(tasks, "2024-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if len(w.Days) != 7 || w.Days[6].DateISO != "2024-01-07" {
		t.Fatalf("unexpected week %+v", w)
	}
	if len(w.Days[0].Tasks) != 1 || len(w.Days[6].Tasks) != 1 || len(w.Days[3].Tasks) != 0 {
		t.Fatalf("tasks misplaced: %+v", w.Days)
	}
}

func TestFormatDuration(t *testing.T) {
	if got := FormatDuration(5400 + 59); got != "1h 30m" {
		t.Fatalf("got %q", got)
	}
}
