package log

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(LevelInfo)
	})
	return &buf
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t)
	SetLevel(LevelWarn)

	Info("hidden")
	Warn("shown", "store", "tasks")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered: %q", out)
	}
	if !strings.Contains(out, "[WARN] shown store=tasks") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestErrorIncludesErr(t *testing.T) {
	buf := capture(t)
	Error("push failed", errors.New("offline"), "field", "notes")
	out := buf.String()
	if !strings.Contains(out, "[ERROR] push failed err=offline field=notes") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestQuotedValues(t *testing.T) {
	buf := capture(t)
	Info("added", "title", "buy milk")
	if !strings.Contains(buf.String(), `title="buy milk"`) {
		t.Fatalf("expected quoted value: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != LevelDebug {
		t.Fatal("expected debug")
	}
	if ParseLevel("nonsense") != LevelInfo {
		t.Fatal("unknown levels fall back to info")
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "planr.log")
	if err := OpenFile(FileOptions{Path: path, MaxSizeMB: 1}); err != nil {
		t.Fatal(err)
	}
	Info("to file")
	if err := Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Fatalf("log file missing line: %q", data)
	}
}
