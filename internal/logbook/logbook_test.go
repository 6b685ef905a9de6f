package logbook

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestTailReturnsRecentLinesAndTotal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs", "superdag.log")
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	for i := 0; i < 5; i++ {
		book.Info("entry-%d", i)
	}
	lines, total := book.Tail(3)
	if total != 5 {
		t.Fatalf("total lines = %d, want 5", total)
	}
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %s", idx, lines[idx], want)
		}
	}
}

func TestWithRunTagsEntries(t *testing.T) {
	book, err := New(filepath.Join(t.TempDir(), "superdag.log"))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	run := NewRunID()
	if run == "" || run == NewRunID() {
		t.Fatalf("run ids must be unique and non-empty")
	}
	book.WithRun(run).Warn("provider %s missing", "sops")
	book.Error("plain")

	lines, _ := book.Tail(10)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "WARN  ["+run+"] provider sops missing") {
		t.Fatalf("unexpected run line %q", lines[0])
	}
	if strings.Contains(lines[1], "[") || !strings.Contains(lines[1], "ERROR plain") {
		t.Fatalf("unexpected plain line %q", lines[1])
	}
}

func TestNilLogbookIsSafe(t *testing.T) {
	var book *Logbook
	book.Info("ignored")
	if book.WithRun("x") != nil || book.Path() != "" || book.Run() != "" {
		t.Fatalf("nil logbook should stay inert")
	}
	if lines, total := book.Tail(3); lines != nil || total != 0 {
		t.Fatalf("nil tail = %v, %d", lines, total)
	}
}
