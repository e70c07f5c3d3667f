package store

import (
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/planr.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set("tasks-storage-guest", `{"state":{}}`); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen, should not re-migrate and the value survives.
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	v, ok, err := s2.Get("tasks-storage-guest")
	if err != nil || !ok {
		t.Fatalf("value lost across reopen: ok=%v err=%v", ok, err)
	}
	if v != `{"state":{}}` {
		t.Fatalf("unexpected value %q", v)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Key-value
// ============================================================

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)
	v, ok, err := s.Get("nope")
	if err != nil {
		t.Fatal(err)
	}
	if ok || v != "" {
		t.Fatalf("expected absent key, got %q ok=%v", v, ok)
	}
}

func TestSetOverwrite(t *testing.T) {
	s := newTestStore(t)
	s.Set("k", "v1")
	s.Set("k", "v2")
	v, ok, _ := s.Get("k")
	if !ok || v != "v2" {
		t.Fatalf("expected v2, got %q", v)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	s.Set("k", "v")
	if err := s.Delete("k"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get("k"); ok {
		t.Fatal("key should be gone")
	}
	// Deleting a missing key is not an error.
	if err := s.Delete("k"); err != nil {
		t.Fatal(err)
	}
}

func TestKeysPrefix(t *testing.T) {
	s := newTestStore(t)
	s.Set("tasks-storage-u2", "x")
	s.Set("tasks-storage-guest", "x")
	s.Set("notes-storage-guest", "x")

	keys, err := s.Keys("tasks-storage-")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 || keys[0] != "tasks-storage-guest" || keys[1] != "tasks-storage-u2" {
		t.Fatalf("unexpected keys %v", keys)
	}
}

func TestMove(t *testing.T) {
	s := newTestStore(t)
	s.Set("tasks-storage", "legacy")

	moved, err := s.Move("tasks-storage", "tasks-storage-guest")
	if err != nil {
		t.Fatal(err)
	}
	if !moved {
		t.Fatal("expected move")
	}
	if _, ok, _ := s.Get("tasks-storage"); ok {
		t.Fatal("old key should be gone")
	}
	v, _, _ := s.Get("tasks-storage-guest")
	if v != "legacy" {
		t.Fatalf("expected legacy, got %q", v)
	}
}

func TestMoveKeepsExistingTarget(t *testing.T) {
	s := newTestStore(t)
	s.Set("old", "a")
	s.Set("new", "b")

	moved, err := s.Move("old", "new")
	if err != nil {
		t.Fatal(err)
	}
	if moved {
		t.Fatal("should not overwrite an existing key")
	}
	v, _, _ := s.Get("new")
	if v != "b" {
		t.Fatalf("target clobbered: %q", v)
	}
}

func TestMoveMissingSource(t *testing.T) {
	s := newTestStore(t)
	moved, err := s.Move("absent", "new")
	if err != nil {
		t.Fatal(err)
	}
	if moved {
		t.Fatal("nothing to move")
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettingsDefaults(t *testing.T) {
	s := newTestStore(t)

	defaults := map[string]string{
		SettingPomodoroWork:      "1500",
		SettingPomodoroBreak:     "300",
		SettingPomodoroLongBreak: "900",
		SettingDailyGoal:         "7200",
	}

	for k, expected := range defaults {
		val, err := s.GetSetting(k)
		if err != nil {
			t.Fatalf("GetSetting(%q): %v", k, err)
		}
		if val != expected {
			t.Fatalf("GetSetting(%q) = %q, want %q", k, val, expected)
		}
	}
}

func TestSetSetting(t *testing.T) {
	s := newTestStore(t)

	s.SetSetting(SettingPomodoroWork, "3000")
	val, _ := s.GetSetting(SettingPomodoroWork)
	if val != "3000" {
		t.Fatalf("expected 3000, got %s", val)
	}
}

func TestGetSettingNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetSetting("nonexistent")
	if err == nil {
		t.Fatal("expected error for missing setting")
	}
}

func TestSettingDuration(t *testing.T) {
	s := newTestStore(t)
	if d := s.SettingDuration(SettingPomodoroWork, time.Minute); d != 25*time.Minute {
		t.Fatalf("expected 25m, got %v", d)
	}
	s.SetSetting("broken", "abc")
	if d := s.SettingDuration("broken", time.Minute); d != time.Minute {
		t.Fatalf("expected fallback, got %v", d)
	}
	if d := s.SettingDuration("missing", 2*time.Minute); d != 2*time.Minute {
		t.Fatalf("expected fallback, got %v", d)
	}
}

func TestGetAllSettings(t *testing.T) {
	s := newTestStore(t)
	all, err := s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 default settings, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Key >= all[i].Key {
			t.Fatalf("settings not sorted: %s >= %s", all[i-1].Key, all[i].Key)
		}
	}
}

func TestPriorityValid(t *testing.T) {
	for _, p := range []Priority{PriorityLow, PriorityMedium, PriorityHigh} {
		if !p.Valid() {
			t.Fatalf("%s should be valid", p)
		}
	}
	if Priority("urgent").Valid() {
		t.Fatal("urgent is not a priority")
	}
}

func TestCloseStore(t *testing.T) {
	s, _ := NewMemory()
	if err := s.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
}
