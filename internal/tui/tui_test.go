package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/sadopc/planr/internal/dates"
	"github.com/sadopc/planr/internal/identity"
	"github.com/sadopc/planr/internal/planner"
	"github.com/sadopc/planr/internal/remote"
	"github.com/sadopc/planr/internal/store"
	"github.com/sadopc/planr/internal/syncstore"
)

var start = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

// testClock is a settable clock shared by the calendar and the views.
type testClock struct{ now time.Time }

func newTestClock() *testClock { return &testClock{now: start} }

func (c *testClock) Now() time.Time         { return c.now }
func (c *testClock) advance(d time.Duration) { c.now = c.now.Add(d) }
func (c *testClock) clock() dates.Clock      { return dates.ClockFunc(c.Now) }

func keyPress(s string) tea.KeyMsg        { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }
func specialKey(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

type env struct {
	app    *planner.App
	store  *store.Store
	remote *remote.Memory
	clock  *testClock
}

func newEnv(t *testing.T) *env {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	e := &env{store: s, remote: remote.NewMemory(), clock: newTestClock()}
	e.app, err = planner.New(planner.Options{
		Device:   s,
		Remote:   e.remote,
		Calendar: dates.NewCalendar(e.clock.clock(), dates.DefaultOffset, time.Saturday),
	})
	if err != nil {
		t.Fatalf("new planner: %v", err)
	}
	t.Cleanup(e.app.Close)
	return e
}

func (e *env) login(t *testing.T, uid string) {
	t.Helper()
	if err := e.app.Identity().Set(context.Background(), &identity.User{ID: uid}); err != nil {
		t.Fatalf("login %s: %v", uid, err)
	}
}

// run executes cmd and every command it batches, returning the messages.
// Commands that would block on a timer are not expected here.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func mustMsg[T any](t *testing.T, cmd tea.Cmd) T {
	t.Helper()
	for _, m := range run(cmd) {
		if v, ok := m.(T); ok {
			return v
		}
	}
	var zero T
	t.Fatalf("no %T among messages", zero)
	return zero
}

// ============================================================
// Focus stopwatch
// ============================================================

func TestFocusStartStop(t *testing.T) {
	c := newTestClock()
	f := newFocusModel(c.Now)
	if f.running() {
		t.Fatal("focus should start stopped")
	}

	f.start()
	if !f.running() || f.paused() {
		t.Fatal("focus should be running after start")
	}
	c.advance(90 * time.Second)
	if got := f.elapsed(); got != 90*time.Second {
		t.Fatalf("elapsed = %v, want 1m30s", got)
	}

	if got := f.stop(); got != 90*time.Second {
		t.Fatalf("stop = %v, want 1m30s", got)
	}
	if f.running() {
		t.Fatal("focus should be stopped")
	}
	if got := f.stop(); got != 0 {
		t.Fatalf("second stop = %v, want 0", got)
	}
}

func TestFocusToggleExcludesPausedTime(t *testing.T) {
	c := newTestClock()
	f := newFocusModel(c.Now)
	f.start()
	c.advance(time.Minute)

	f.toggle()
	if !f.paused() {
		t.Fatal("toggle should pause")
	}
	c.advance(10 * time.Minute)

	f.toggle()
	if f.paused() {
		t.Fatal("toggle should resume")
	}
	c.advance(time.Minute)

	if got := f.elapsed(); got != 2*time.Minute {
		t.Fatalf("elapsed = %v, want 2m", got)
	}
}

func TestFocusToggleWhenStopped(t *testing.T) {
	c := newTestClock()
	f := newFocusModel(c.Now)
	f.toggle()
	if f.running() || f.paused() {
		t.Fatal("toggle on a stopped stopwatch should be a no-op")
	}
}

func TestFocusIdleDetection(t *testing.T) {
	c := newTestClock()
	f := newFocusModel(c.Now)
	f.idleTimeout = time.Minute
	f.start()

	c.advance(2 * time.Minute)
	f.tick()
	if !f.isIdle || !f.paused() {
		t.Fatal("focus should pause after idle timeout")
	}

	c.advance(10 * time.Minute)
	f.recordActivity()
	if f.isIdle || f.paused() {
		t.Fatal("activity should resume an idle stopwatch")
	}
	if got := f.elapsed(); got != 2*time.Minute {
		t.Fatalf("elapsed = %v, want 2m", got)
	}
}

func TestFocusActivityWhenNotIdle(t *testing.T) {
	c := newTestClock()
	f := newFocusModel(c.Now)
	f.start()
	f.toggle()
	f.recordActivity()
	if !f.paused() {
		t.Fatal("activity should not resume a manual pause")
	}
}

// ============================================================
// Today view
// ============================================================

func TestTodayRefreshLoadsTodaysTasks(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	if _, err := e.app.Tasks.Add(ctx, "Write report", "2024-01-01"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.app.Tasks.Add(ctx, "Later", "2024-01-03"); err != nil {
		t.Fatal(err)
	}

	d := newTodayModel(e.app)
	d, _ = d.update(mustMsg[todayDataMsg](t, d.refresh()))
	if d.today != "2024-01-01" {
		t.Fatalf("today = %q", d.today)
	}
	if len(d.tasks) != 1 || d.tasks[0].Title != "Write report" {
		t.Fatalf("tasks = %+v", d.tasks)
	}
}

func TestTodayToggleAndDelete(t *testing.T) {
	e := newEnv(t)
	task, err := e.app.Tasks.Add(context.Background(), "Stretch", "2024-01-01")
	if err != nil {
		t.Fatal(err)
	}
	d := newTodayModel(e.app)
	d, _ = d.update(mustMsg[todayDataMsg](t, d.refresh()))

	_, cmd := d.update(keyPress(" "))
	if msg := mustMsg[mutatedMsg](t, cmd); msg.text != "Task updated" {
		t.Fatalf("status = %q", msg.text)
	}
	if got, _ := e.app.Tasks.Get(task.ID); !got.Done {
		t.Fatal("space should complete the task")
	}

	_, cmd = d.update(keyPress("d"))
	mustMsg[mutatedMsg](t, cmd)
	if len(e.app.Tasks.Items()) != 0 {
		t.Fatalf("task not removed: %+v", e.app.Tasks.Items())
	}
}

func TestTodayStopFocusRecordsSession(t *testing.T) {
	e := newEnv(t)
	d := newTodayModel(e.app)

	d, _ = d.update(keyPress("s"))
	if !d.focus.running() {
		t.Fatal("s should start the focus stopwatch")
	}
	e.clock.advance(25 * time.Minute)

	d, cmd := d.update(keyPress("x"))
	if d.focus.running() {
		t.Fatal("x should stop the focus stopwatch")
	}
	mustMsg[mutatedMsg](t, cmd)

	sessions := e.app.Sessions.Items()
	if len(sessions) != 1 || sessions[0].Duration != 1500 || sessions[0].Date != "2024-01-01" {
		t.Fatalf("sessions = %+v", sessions)
	}
}

func TestTodayAddPastTaskReportsValidation(t *testing.T) {
	e := newEnv(t)
	d := newTodayModel(e.app)
	d, _ = d.showTaskForm(nil)
	*d.formTitle = "Too late"
	*d.formDate = "2023-12-31"

	// Skip the form widgets and take the completion path.
	d.form.State = huh.StateCompleted
	_, cmd := d.updateForm(nil)
	msg := mustMsg[statusMsg](t, cmd)
	if !msg.isError || !strings.HasPrefix(msg.text, "Invalid") {
		t.Fatalf("status = %+v", msg)
	}
	if len(e.app.Tasks.Items()) != 0 {
		t.Fatal("past task should not be stored")
	}
}

func TestTodayViewRenders(t *testing.T) {
	e := newEnv(t)
	d := newTodayModel(e.app)
	d.setSize(100, 30)
	if !strings.Contains(d.view(), "Nothing planned today") {
		t.Fatal("empty task list hint missing")
	}
	d.setSize(10, 30)
	if d.view() != "Terminal too small" {
		t.Fatal("narrow terminal should be reported")
	}
}

// ============================================================
// Notes view
// ============================================================

func TestNotesRefreshAndSearch(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	for _, text := range []string{"Buy milk", "Call mum", "milk the cow"} {
		if _, err := e.app.Notes.Add(ctx, text, ""); err != nil {
			t.Fatal(err)
		}
	}

	n := newNotesModel(e.app)
	n, _ = n.update(mustMsg[notesDataMsg](t, n.refresh()))
	if len(n.notes) != 3 || n.notes[0].Text != "milk the cow" {
		t.Fatalf("notes should be newest first: %+v", n.notes)
	}

	n, _ = n.update(keyPress("/"))
	if !n.capturingInput() {
		t.Fatal("/ should open the search box")
	}
	n.search.SetValue("MILK")
	n, cmd := n.update(specialKey(tea.KeyEnter))
	if n.capturingInput() || n.query != "MILK" {
		t.Fatalf("enter should apply the query, got %q", n.query)
	}
	n, _ = n.update(mustMsg[notesDataMsg](t, cmd))
	if len(n.notes) != 2 {
		t.Fatalf("search results = %+v", n.notes)
	}

	n, cmd = n.update(specialKey(tea.KeyEsc))
	if n.query != "" {
		t.Fatal("esc should clear the query")
	}
	n, _ = n.update(mustMsg[notesDataMsg](t, cmd))
	if len(n.notes) != 3 {
		t.Fatalf("cleared search should list every note, got %d", len(n.notes))
	}
}

func TestNotesDelete(t *testing.T) {
	e := newEnv(t)
	if _, err := e.app.Notes.Add(context.Background(), "scratch", ""); err != nil {
		t.Fatal(err)
	}
	n := newNotesModel(e.app)
	n, _ = n.update(mustMsg[notesDataMsg](t, n.refresh()))
	_, cmd := n.update(keyPress("d"))
	mustMsg[mutatedMsg](t, cmd)
	if len(e.app.Notes.Items()) != 0 {
		t.Fatal("note should be removed")
	}
}

func TestFirstLine(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"one\ntwo", 20, "one"},
		{"abcdefgh", 5, "abcd…"},
		{"short", 0, "short"},
	}
	for _, tt := range tests {
		if got := firstLine(tt.in, tt.width); got != tt.want {
			t.Errorf("firstLine(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

// ============================================================
// Plans view
// ============================================================

func TestPlansDayNavigation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	if _, err := e.app.Plans.Add(ctx, planner.PlanInput{Title: "Standup", Time: "09:30", DateISO: "2024-01-02"}); err != nil {
		t.Fatal(err)
	}

	p := newPlansModel(e.app)
	p, _ = p.update(mustMsg[plansDataMsg](t, p.refresh()))
	if p.date != "2024-01-01" || len(p.plans) != 0 {
		t.Fatalf("date=%q plans=%+v", p.date, p.plans)
	}
	if !p.marked["2024-01-02"] {
		t.Fatal("day with a plan should be marked")
	}

	p, cmd := p.update(keyPress("l"))
	if p.date != "2024-01-02" {
		t.Fatalf("right should move to the next day, got %q", p.date)
	}
	p, _ = p.update(mustMsg[plansDataMsg](t, cmd))
	if len(p.plans) != 1 || p.plans[0].Title != "Standup" {
		t.Fatalf("plans = %+v", p.plans)
	}

	_, cmd = p.update(keyPress(" "))
	mustMsg[mutatedMsg](t, cmd)
	if got := e.app.Plans.ByDate("2024-01-02"); !got[0].Completed {
		t.Fatal("space should complete the plan")
	}
}

func TestPlansViewRenders(t *testing.T) {
	e := newEnv(t)
	if _, err := e.app.Plans.Add(context.Background(), planner.PlanInput{Title: "Gym", Priority: store.PriorityHigh, DateISO: "2024-01-01"}); err != nil {
		t.Fatal(err)
	}
	p := newPlansModel(e.app)
	p.setSize(120, 40)
	p, _ = p.update(mustMsg[plansDataMsg](t, p.refresh()))
	out := p.view()
	for _, want := range []string{"Gym", "--:--", "general"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

// ============================================================
// Timers view
// ============================================================

func TestTimersLoadsSettings(t *testing.T) {
	e := newEnv(t)
	if err := e.store.SetSetting(store.SettingPomodoroWork, "600"); err != nil {
		t.Fatal(err)
	}
	tm := newTimersModel(e.app, e.store)
	if tm.workDuration != 10*time.Minute {
		t.Fatalf("work = %v, want 10m", tm.workDuration)
	}
	if tm.breakDuration != 5*time.Minute || tm.longBreakDuration != 15*time.Minute {
		t.Fatalf("defaults = %v/%v", tm.breakDuration, tm.longBreakDuration)
	}
}

func TestPomodoroWorkPhaseRecordsSession(t *testing.T) {
	e := newEnv(t)
	tm := newTimersModel(e.app, e.store)

	tm, _ = tm.update(keyPress("s"))
	if tm.phase != pomodoroWork || tm.countdown == nil {
		t.Fatal("s should start a work phase")
	}

	e.clock.advance(10 * time.Minute)
	tm, cmd := tm.update(tickMsg(e.clock.Now()))
	if cmd != nil && len(run(cmd)) != 0 {
		t.Fatal("mid-phase tick should not emit")
	}
	if got := tm.countdown.Remaining(); got != 15*time.Minute {
		t.Fatalf("remaining = %v, want 15m", got)
	}

	e.clock.advance(15*time.Minute + time.Second)
	tm, cmd = tm.update(tickMsg(e.clock.Now()))
	mustMsg[mutatedMsg](t, cmd)
	if tm.phase != pomodoroShortBreak || tm.rounds != 1 {
		t.Fatalf("phase=%s rounds=%d", phaseNames[tm.phase], tm.rounds)
	}

	sessions := e.app.Sessions.Items()
	if len(sessions) != 1 || sessions[0].Duration != 1500 {
		t.Fatalf("sessions = %+v", sessions)
	}
}

func TestPomodoroLongBreakAfterCycle(t *testing.T) {
	e := newEnv(t)
	tm := newTimersModel(e.app, e.store)
	tm, _ = tm.update(keyPress("s"))

	for i := 0; i < roundsPerCycle; i++ {
		if tm.phase != pomodoroWork {
			t.Fatalf("round %d: expected work phase, got %s", i, phaseNames[tm.phase])
		}
		tm, _ = tm.advancePhase()
		if i < roundsPerCycle-1 {
			tm, _ = tm.advancePhase()
		}
	}
	if tm.phase != pomodoroLongBreak {
		t.Fatalf("expected long break, got %s", phaseNames[tm.phase])
	}
}

func TestPomodoroCancelRecordsElapsedWork(t *testing.T) {
	e := newEnv(t)
	tm := newTimersModel(e.app, e.store)
	tm, _ = tm.update(keyPress("s"))
	e.clock.advance(7*time.Minute + 300*time.Millisecond)

	tm, cmd := tm.update(keyPress("x"))
	if tm.phase != pomodoroIdle || tm.countdown != nil {
		t.Fatal("x should cancel the cycle")
	}
	mustMsg[mutatedMsg](t, cmd)
	sessions := e.app.Sessions.Items()
	if len(sessions) != 1 || sessions[0].Duration != 420 {
		t.Fatalf("sessions = %+v", sessions)
	}
}

func TestPomodoroCancelImmediatelyRecordsNothing(t *testing.T) {
	e := newEnv(t)
	tm := newTimersModel(e.app, e.store)
	tm, _ = tm.update(keyPress("s"))
	_, cmd := tm.update(keyPress("x"))
	mustMsg[statusMsg](t, cmd)
	if len(e.app.Sessions.Items()) != 0 {
		t.Fatal("nothing should be recorded")
	}
}

func TestCountdownFinishesAndRecords(t *testing.T) {
	e := newEnv(t)
	tm := newTimersModel(e.app, e.store)
	c := tm.set.Add("Tea", 3*time.Minute)
	c.Start(e.clock.Now())

	e.clock.advance(3 * time.Minute)
	tm, cmd := tm.update(tickMsg(e.clock.Now()))
	mustMsg[mutatedMsg](t, cmd)
	if tm.set.Len() != 0 {
		t.Fatal("finished countdown should leave the set")
	}
	if sessions := e.app.Sessions.Items(); len(sessions) != 1 || sessions[0].Duration != 180 {
		t.Fatalf("sessions = %+v", sessions)
	}
}

func TestCountdownCancelFromPanel(t *testing.T) {
	e := newEnv(t)
	tm := newTimersModel(e.app, e.store)
	tm, _ = tm.update(keyPress("l"))
	if tm.panel != panelCountdowns {
		t.Fatal("right should focus the countdown panel")
	}
	c := tm.set.Add("Read", 10*time.Minute)
	c.Start(e.clock.Now())
	e.clock.advance(2 * time.Minute)

	tm, cmd := tm.update(keyPress("x"))
	mustMsg[mutatedMsg](t, cmd)
	if tm.set.Len() != 0 {
		t.Fatal("cancelled countdown should leave the set")
	}
	if sessions := e.app.Sessions.Items(); len(sessions) != 1 || sessions[0].Duration != 120 {
		t.Fatalf("sessions = %+v", sessions)
	}
}

func TestAlarmFiresOnTick(t *testing.T) {
	e := newEnv(t)
	tm := newTimersModel(e.app, e.store)
	if _, err := tm.alarms.Add("10:05", "Stretch", e.clock.Now()); err != nil {
		t.Fatal(err)
	}
	e.clock.advance(5 * time.Minute)
	_, cmd := tm.update(tickMsg(e.clock.Now()))
	msg := mustMsg[statusMsg](t, cmd)
	if !strings.Contains(msg.text, "Stretch") {
		t.Fatalf("status = %q", msg.text)
	}
}

func TestPomodoroPhaseNames(t *testing.T) {
	for _, p := range []pomodoroPhase{pomodoroIdle, pomodoroWork, pomodoroShortBreak, pomodoroLongBreak} {
		if phaseNames[p] == "" {
			t.Fatalf("missing phase name for %d", p)
		}
	}
}

func TestTimersViewRenders(t *testing.T) {
	e := newEnv(t)
	tm := newTimersModel(e.app, e.store)
	tm.setSize(120, 40)
	out := tm.view()
	for _, want := range []string{"Pomodoro", "Countdowns", "Alarms", "25:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

// ============================================================
// Analytics view
// ============================================================

func TestAnalyticsWeeklyAndMonthly(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	if _, err := e.app.Sessions.Record(ctx, 25*time.Minute); err != nil {
		t.Fatal(err)
	}
	if _, err := e.app.Tasks.Add(ctx, "Plan week", "2024-01-01"); err != nil {
		t.Fatal(err)
	}

	r := newAnalyticsModel(e.app, e.store)
	r.setSize(120, 40)
	r, _ = r.update(mustMsg[analyticsDataMsg](t, r.refresh()))
	if r.goal != 7200 {
		t.Fatalf("goal = %d, want 7200", r.goal)
	}
	out := r.view()
	for _, want := range []string{"2023-12-26 to 2024-01-01", "25m", "0/1 completed"} {
		if !strings.Contains(out, want) {
			t.Errorf("weekly view missing %q", want)
		}
	}

	r, _ = r.update(keyPress(" "))
	if r.mode != reportMonthly {
		t.Fatal("space should switch to monthly mode")
	}
	out = r.view()
	for _, want := range []string{"January 2024", "1 pomodoros"} {
		if !strings.Contains(out, want) {
			t.Errorf("monthly view missing %q", want)
		}
	}

	r, _ = r.update(keyPress("j"))
	if r.week != 1 {
		t.Fatalf("down should select the next week, got %d", r.week)
	}
	r, _ = r.update(keyPress("h"))
	if y, m := r.month(); y != 2023 || m != time.December || r.week != 0 {
		t.Fatalf("left should go back a month, got %d-%s week %d", y, m, r.week)
	}
}

// ============================================================
// Settings
// ============================================================

func TestSecsToMin(t *testing.T) {
	tests := []struct{ in, want string }{
		{"1500", "25"},
		{"90", "1"},
		{"abc", "abc"},
	}
	for _, tt := range tests {
		if got := secsToMin(tt.in); got != tt.want {
			t.Errorf("secsToMin(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMinToSecs(t *testing.T) {
	tests := []struct{ in, want string }{
		{"25", "1500"},
		{" 5 ", "300"},
		{"x", "x"},
	}
	for _, tt := range tests {
		if got := minToSecs(tt.in); got != tt.want {
			t.Errorf("minToSecs(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHoursConversions(t *testing.T) {
	if got := secsToHours("7200"); got != "2.0" {
		t.Errorf("secsToHours = %q", got)
	}
	if got := hoursToSecs("1.5"); got != "5400" {
		t.Errorf("hoursToSecs = %q", got)
	}
}

func TestFormatSettingValue(t *testing.T) {
	tests := []struct{ key, value, want string }{
		{store.SettingPomodoroWork, "1500", "25 min"},
		{store.SettingDailyGoal, "7200", "2.0 hours"},
		{"other", "x", "x"},
	}
	for _, tt := range tests {
		if got := formatSettingValue(tt.key, tt.value); got != tt.want {
			t.Errorf("formatSettingValue(%q, %q) = %q, want %q", tt.key, tt.value, got, tt.want)
		}
	}
}

func TestSettingsValidators(t *testing.T) {
	if positiveInt("10") != nil || positiveInt("0") == nil || positiveInt("x") == nil {
		t.Fatal("positiveInt")
	}
	if positiveFloat("0.5") != nil || positiveFloat("-1") == nil {
		t.Fatal("positiveFloat")
	}
}

func TestSettingsSaveAndAccount(t *testing.T) {
	e := newEnv(t)
	s := newSettingsModel(e.app, e.store)
	s, _ = s.showForm()
	if *s.pomodoroWork != "25" || *s.dailyGoal != "2.0" {
		t.Fatalf("form defaults = %q/%q", *s.pomodoroWork, *s.dailyGoal)
	}
	*s.pomodoroWork = "50"
	if err := s.saveSettings(); err != nil {
		t.Fatal(err)
	}
	if got := e.store.SettingDuration(store.SettingPomodoroWork, 0); got != 50*time.Minute {
		t.Fatalf("saved work = %v", got)
	}

	if !strings.Contains(s.renderAccount(), "guest") {
		t.Fatal("account should show guest")
	}
	e.login(t, "U1")
	if out := s.renderAccount(); !strings.Contains(out, "U1") || !strings.Contains(out, "tasks-storage-U1") {
		t.Fatalf("account = %q", out)
	}
}

// ============================================================
// Helpers
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{90 * time.Second, "00:01:30"},
		{3*time.Hour + 5*time.Minute, "03:05:00"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
	if got := formatSeconds(3661); got != "01:01:01" {
		t.Errorf("formatSeconds = %q", got)
	}
	if got := formatHours(5400); got != "1.5h" {
		t.Errorf("formatHours = %q", got)
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{25 * time.Minute, "25:00"},
		{5*time.Minute + 30*time.Second, "05:30"},
		{-time.Second, "00:00"},
	}
	for _, tt := range tests {
		if got := formatClock(tt.d); got != tt.want {
			t.Errorf("formatClock(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestClampCursor(t *testing.T) {
	if got := clampCursor(5, 3); got != 2 {
		t.Errorf("clampCursor(5, 3) = %d", got)
	}
	if got := clampCursor(2, 0); got != 0 {
		t.Errorf("clampCursor(2, 0) = %d", got)
	}
}

func TestDescribeError(t *testing.T) {
	if got := describeError(syncstore.Invalid("title", "must not be empty")); !strings.HasPrefix(got, "Invalid: ") {
		t.Errorf("validation = %q", got)
	}
	sync := &syncstore.SyncError{Domain: "tasks", Op: "push", Err: errors.New("offline")}
	if got := describeError(sync); !strings.HasPrefix(got, "Sync failed, change undone") {
		t.Errorf("sync = %q", got)
	}
	if got := describeError(errors.New("boom")); got != "Error: boom" {
		t.Errorf("other = %q", got)
	}
}

func TestMutationRollbackReported(t *testing.T) {
	e := newEnv(t)
	e.login(t, "U1")
	e.remote.FailWrites(errors.New("offline"))

	cmd := mutation("Task added", func() error {
		_, err := e.app.Tasks.Add(context.Background(), "Doomed", "2024-01-01")
		return err
	})
	msg := mustMsg[statusMsg](t, cmd)
	if !msg.isError || !strings.Contains(msg.text, "change undone") {
		t.Fatalf("status = %+v", msg)
	}
	if len(e.app.Tasks.Items()) != 0 {
		t.Fatal("failed push should roll the task back")
	}
}

// ============================================================
// App model
// ============================================================

func TestNewApp(t *testing.T) {
	e := newEnv(t)
	app := NewApp(e.app, e.store)

	if app.activeView != viewToday {
		t.Fatal("default view should be today")
	}
	if app.showHelp || app.exportPicking {
		t.Fatal("help and export picker should be hidden by default")
	}
	if app.isFormActive() {
		t.Fatal("no forms should be active initially")
	}
}

func TestAppViewStates(t *testing.T) {
	e := newEnv(t)
	app := NewApp(e.app, e.store)
	model, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	app = model.(App)

	for i := range viewNames {
		app.activeView = viewState(i)
		if app.View() == "" {
			t.Fatalf("view %d rendered empty", i)
		}
	}
}

func TestAppTabCycles(t *testing.T) {
	e := newEnv(t)
	app := NewApp(e.app, e.store)
	for i := 0; i < len(viewNames); i++ {
		model, _ := app.Update(specialKey(tea.KeyTab))
		app = model.(App)
	}
	if app.activeView != viewToday {
		t.Fatalf("tab should wrap around, got %d", app.activeView)
	}
	model, _ := app.Update(keyPress("5"))
	if model.(App).activeView != viewAnalytics {
		t.Fatal("5 should select analytics")
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	e := newEnv(t)
	app := NewApp(e.app, e.store)
	app.width = 140
	app.height = 40

	header := app.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
	if !strings.Contains(header, "guest") {
		t.Fatal("header should show the guest identity")
	}
}

func TestAppLoadingState(t *testing.T) {
	e := newEnv(t)
	app := NewApp(e.app, e.store)
	if got := app.View(); got != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", got)
	}
}

func TestAppStatusAndIdentityMessages(t *testing.T) {
	e := newEnv(t)
	app := NewApp(e.app, e.store)
	app.width = 120
	app.height = 40

	model, _ := app.Update(statusMsg{text: "boom", isError: true})
	app = model.(App)
	if !app.statusError || !strings.Contains(app.renderFooter(), "boom") {
		t.Fatal("footer should show the error status")
	}

	model, cmd := app.Update(identityMsg{user: &identity.User{ID: "U7"}})
	app = model.(App)
	if app.status != "Signed in as U7" || app.statusError {
		t.Fatalf("status = %q", app.status)
	}
	if _, ok := cmd().(dataChangedMsg); !ok {
		t.Fatal("identity change should refresh every view")
	}

	model, _ = app.Update(identityMsg{})
	if model.(App).status != "Signed out, showing guest data" {
		t.Fatal("sign-out status missing")
	}
}

func TestAppDataChangedRefreshesViews(t *testing.T) {
	e := newEnv(t)
	if _, err := e.app.Tasks.Add(context.Background(), "Ship it", "2024-01-01"); err != nil {
		t.Fatal(err)
	}
	app := NewApp(e.app, e.store)
	_, cmd := app.Update(dataChangedMsg{})
	for _, msg := range run(cmd) {
		model, _ := app.Update(msg)
		app = model.(App)
	}
	if len(app.today.tasks) != 1 {
		t.Fatalf("today tasks = %+v", app.today.tasks)
	}
	if len(app.settings.settings) == 0 {
		t.Fatal("settings should be loaded")
	}
}

func TestAppSyncPulls(t *testing.T) {
	e := newEnv(t)
	e.login(t, "U1")
	if err := e.remote.WriteMerge(context.Background(), "U1", remote.Document{
		"notes": []byte(`[{"id":1,"text":"from elsewhere"}]`),
	}); err != nil {
		t.Fatal(err)
	}

	app := NewApp(e.app, e.store)
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	mustMsg[mutatedMsg](t, cmd)
	if notes := e.app.Notes.Items(); len(notes) != 1 || notes[0].Text != "from elsewhere" {
		t.Fatalf("notes = %+v", notes)
	}
}

func TestAppExportFormats(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	if _, err := e.app.Tasks.Add(ctx, "Export me", "2024-01-01"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.app.Plans.Add(ctx, planner.PlanInput{Title: "Review", Time: "14:00", DateISO: "2024-01-02"}); err != nil {
		t.Fatal(err)
	}

	app := NewApp(e.app, e.store)
	app.exportDir = t.TempDir()
	for i, ext := range []string{".csv", ".json", ".ics"} {
		msg := mustMsg[exportDoneMsg](t, app.doExport(i))
		want := filepath.Join(app.exportDir, "planr-export-2024-01-01"+ext)
		if msg.path != want {
			t.Fatalf("path = %q, want %q", msg.path, want)
		}
		if info, err := os.Stat(msg.path); err != nil || info.Size() == 0 {
			t.Fatalf("export %s missing or empty: %v", ext, err)
		}
	}
}

func TestAppExportPicker(t *testing.T) {
	e := newEnv(t)
	app := NewApp(e.app, e.store)
	model, _ := app.Update(tea.KeyMsg{Type: tea.KeyCtrlE})
	app = model.(App)
	if !app.exportPicking {
		t.Fatal("ctrl+e should open the export picker")
	}
	for i := 0; i < 5; i++ {
		model, _ = app.Update(keyPress("j"))
		app = model.(App)
	}
	if app.exportCursor != len(exportFormats)-1 {
		t.Fatalf("cursor = %d", app.exportCursor)
	}
	model, _ = app.Update(specialKey(tea.KeyEsc))
	if model.(App).exportPicking {
		t.Fatal("esc should close the picker")
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should have bindings")
	}
	for i, g := range keys.FullHelp() {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}

// ============================================================
// Styles (smoke test, must not panic)
// ============================================================

func TestStylesRender(t *testing.T) {
	styles := map[string]func() string{
		"activeTab":    func() string { return activeTabStyle.Render("test") },
		"inactiveTab":  func() string { return inactiveTabStyle.Render("test") },
		"panel":        func() string { return panelStyle.Render("test") },
		"activePanel":  func() string { return activePanelStyle.Render("test") },
		"timer":        func() string { return timerStyle.Render("test") },
		"timerRunning": func() string { return timerRunningStyle.Render("test") },
		"timerPaused":  func() string { return timerPausedStyle.Render("test") },
		"title":        func() string { return titleStyle.Render("test") },
		"subtitle":     func() string { return subtitleStyle.Render("test") },
		"error":        func() string { return errorStyle.Render("test") },
		"done":         func() string { return doneItemStyle.Render("test") },
		"header":       func() string { return headerStyle.Render("test") },
		"footer":       func() string { return footerStyle.Render("test") },
	}
	for name, fn := range styles {
		if fn() == "" {
			t.Fatalf("style %q rendered empty", name)
		}
	}
}
