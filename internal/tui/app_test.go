package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/superdag/internal/dag"
	"github.com/kingrea/superdag/internal/engine"
)

func sampleResult() engine.Result {
	return engine.Result{
		Requirements: dag.RequirementMap{
			"stacks/app": dag.NewSet("stacks/vpc", "modules/net"),
			"stacks/db":  dag.NewSet("stacks/vpc"),
		},
		Edges: []dag.Edge{
			{From: "stacks/vpc", To: "stacks/app"},
			{From: "stacks/vpc", To: "stacks/db"},
		},
		Plan: dag.Plan{{"stacks/vpc"}, {"stacks/app", "stacks/db"}},
	}
}

func update(t *testing.T, app *App, msg tea.Msg) (*App, tea.Cmd) {
	t.Helper()
	model, cmd := app.Update(msg)
	next, ok := model.(*App)
	if !ok {
		t.Fatalf("unexpected model type: %T", model)
	}
	return next, cmd
}

func TestAppListsPlanAndDescribesSelection(t *testing.T) {
	app := NewApp(sampleResult(), "")
	app, _ = update(t, app, tea.WindowSizeMsg{Width: 120, Height: 40})
	if app.Selected() != "stacks/vpc" {
		t.Fatalf("expected first artifact selected, got %q", app.Selected())
	}
	view := app.View()
	if !strings.Contains(view, "Unblocks (2)") {
		t.Fatalf("expected vpc details in view:\n%s", view)
	}

	app, _ = update(t, app, tea.KeyMsg{Type: tea.KeyDown})
	if app.Selected() != "stacks/app" {
		t.Fatalf("expected stacks/app after moving down, got %q", app.Selected())
	}
	detail := app.describe("stacks/app")
	for _, want := range []string{"Batch 2 of 2", "Waits for (1)", "  stacks/vpc", "Requirements (2)", "  modules/net"} {
		if !strings.Contains(detail, want) {
			t.Fatalf("detail missing %q:\n%s", want, detail)
		}
	}
}

func TestAppFiltersByPrefix(t *testing.T) {
	app := NewApp(sampleResult(), "stacks/d")
	if len(app.list.Items()) != 1 || app.Selected() != "stacks/db" {
		t.Fatalf("expected only stacks/db, got %d items (%q)", len(app.list.Items()), app.Selected())
	}
	if !strings.Contains(app.describe("stacks/db"), "Batch 1 of 1") {
		t.Fatalf("batch numbering should follow the filtered plan")
	}
}

func TestAppQuits(t *testing.T) {
	app := NewApp(sampleResult(), "")
	_, cmd := update(t, app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestAppRecompute(t *testing.T) {
	calls := 0
	fn := func(context.Context) (engine.Result, error) {
		calls++
		if calls > 1 {
			return engine.Result{}, errors.New("boom")
		}
		return engine.Result{Plan: dag.Plan{{"stacks/dns"}}}, nil
	}
	app := NewApp(sampleResult(), "", WithRecompute(fn))
	app, cmd := update(t, app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if cmd == nil {
		t.Fatalf("expected recompute command")
	}
	app, _ = update(t, app, cmd())
	if app.Selected() != "stacks/dns" || len(app.list.Items()) != 1 {
		t.Fatalf("expected recomputed plan, got %q", app.Selected())
	}

	app, cmd = update(t, app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	app, _ = update(t, app, cmd())
	if app.err == nil || !strings.Contains(app.View(), "boom") {
		t.Fatalf("expected recompute error in view")
	}
	if app.Selected() != "stacks/dns" {
		t.Fatalf("failed recompute must keep the previous plan")
	}
}

func TestAppWithoutRecomputeIgnoresRefresh(t *testing.T) {
	app := NewApp(sampleResult(), "")
	if _, cmd := update(t, app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")}); cmd != nil {
		t.Fatalf("expected no command without a recompute func")
	}
}
