// Package tui is the interactive plan browser behind `superdag view`.
package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/superdag/internal/dag"
	"github.com/kingrea/superdag/internal/engine"
	"github.com/kingrea/superdag/internal/logbook"
)

type focus int

const (
	focusList focus = iota
	focusDetail
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B")).MarginBottom(1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
	activeBox   = boxStyle.BorderForeground(lipgloss.Color("#5B8DEF"))
)

// Recompute runs the planner again and returns its result.
type Recompute func(ctx context.Context) (engine.Result, error)

// planItem implements list.Item for one scheduled artifact.
type planItem struct {
	id    string
	batch int
	total int
}

func (i planItem) Title() string { return i.id }
func (i planItem) Description() string {
	return fmt.Sprintf("batch %d of %d", i.batch+1, i.total)
}
func (i planItem) FilterValue() string { return i.id }

type planComputedMsg struct {
	result engine.Result
	err    error
}

// App is the bubbletea model of the plan browser.
type App struct {
	result    engine.Result
	plan      dag.Plan
	prefix    string
	list      list.Model
	detail    viewport.Model
	focus     focus
	selected  string
	logbook   *logbook.Logbook
	recompute Recompute
	status    string
	err       error
	width     int
	height    int
}

// AppOption customizes a new App.
type AppOption func(*App)

// WithLogbook shows the tail of book below the plan.
func WithLogbook(book *logbook.Logbook) AppOption {
	return func(a *App) { a.logbook = book }
}

// WithRecompute enables the refresh key.
func WithRecompute(fn Recompute) AppOption {
	return func(a *App) { a.recompute = fn }
}

// NewApp builds a browser over res, showing only artifacts under prefix.
func NewApp(res engine.Result, prefix string, opts ...AppOption) *App {
	menu := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	menu.Title = "Execution plan"
	menu.SetShowStatusBar(false)
	app := &App{
		prefix: prefix,
		list:   menu,
		detail: viewport.New(0, 0),
		status: "↑/↓ select · tab scroll details · r recompute · q quit",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	app.setResult(res)
	return app
}

// Run starts the browser on the alternate screen and blocks until it exits.
func Run(app *App) error {
	_, err := tea.NewProgram(app, tea.WithAltScreen()).Run()
	return err
}

func (a *App) setResult(res engine.Result) {
	a.result = res
	a.plan = res.Plan.Filter(a.prefix)
	var items []list.Item
	for i, batch := range a.plan {
		for _, id := range batch {
			items = append(items, planItem{id: id, batch: i, total: a.plan.Len()})
		}
	}
	a.list.SetItems(items)
	a.list.Select(0)
	a.selected = ""
	a.syncDetail()
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		return a, nil

	case planComputedMsg:
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.err = nil
		a.setResult(msg.result)
		a.status = fmt.Sprintf("Recomputed: %d artifacts in %d batches", a.plan.Size(), a.plan.Len())
		return a, nil

	case tea.KeyMsg:
		if a.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return a, tea.Quit
		case "tab":
			if a.focus == focusList {
				a.focus = focusDetail
			} else {
				a.focus = focusList
			}
			return a, nil
		case "r":
			if a.recompute == nil {
				return a, nil
			}
			a.status = "Recomputing plan..."
			fn := a.recompute
			return a, func() tea.Msg {
				res, err := fn(context.Background())
				return planComputedMsg{result: res, err: err}
			}
		}
	}

	var cmd tea.Cmd
	if a.focus == focusDetail {
		a.detail, cmd = a.detail.Update(msg)
		return a, cmd
	}
	a.list, cmd = a.list.Update(msg)
	a.syncDetail()
	return a, cmd
}

// View renders the browser.
func (a *App) View() string {
	header := headerStyle.Render("⬡ SUPERDAG")
	listBox, detailBox := boxStyle, boxStyle
	if a.focus == focusList {
		listBox = activeBox
	} else {
		detailBox = activeBox
	}
	left := listBox.Render(a.list.View())
	right := detailBox.Render(a.detail.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	sections := []string{header, body}
	if panel := a.renderLogPanel(); panel != "" {
		sections = append(sections, panel)
	}
	footer := mutedStyle.Render(a.status)
	if a.err != nil {
		footer = errorStyle.Render("⚠ " + a.err.Error())
	}
	sections = append(sections, footer)
	return strings.Join(sections, "\n")
}

// Selected returns the artifact under the cursor.
func (a *App) Selected() string {
	item, ok := a.list.SelectedItem().(planItem)
	if !ok {
		return ""
	}
	return item.id
}

func (a *App) resize() {
	logHeight := 0
	if a.logbook != nil {
		logHeight = 8
	}
	height := max(5, a.height-logHeight-6)
	leftWidth := max(20, a.width*2/5)
	rightWidth := max(20, a.width-leftWidth-8)
	a.list.SetSize(leftWidth, height)
	a.detail.Width = rightWidth
	a.detail.Height = height
	a.syncDetail()
}

func (a *App) syncDetail() {
	id := a.Selected()
	if id == a.selected && id != "" {
		return
	}
	a.selected = id
	a.detail.SetContent(a.describe(id))
	a.detail.GotoTop()
}

// describe lists what an artifact waits on and what it unblocks.
func (a *App) describe(id string) string {
	if id == "" {
		if a.plan.Len() == 0 {
			return mutedStyle.Render("Nothing to apply.")
		}
		return ""
	}
	var waits, unblocks []string
	for _, e := range a.result.Edges {
		if e.To == id {
			waits = append(waits, e.From)
		}
		if e.From == id {
			unblocks = append(unblocks, e.To)
		}
	}
	lines := []string{
		titleStyle.Render(id),
		fmt.Sprintf("Batch %d of %d", a.plan.Index(id)+1, a.plan.Len()),
		"",
	}
	lines = append(lines, section("Waits for", waits)...)
	lines = append(lines, section("Unblocks", unblocks)...)
	lines = append(lines, section("Requirements", a.result.Requirements[id].Sorted())...)
	return strings.Join(lines, "\n")
}

func section(title string, ids []string) []string {
	out := []string{titleStyle.Render(fmt.Sprintf("%s (%d)", title, len(ids)))}
	for _, id := range ids {
		out = append(out, "  "+id)
	}
	return append(out, "")
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines, _ := a.logbook.Tail(6)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	head := titleStyle.Render(fmt.Sprintf("LOG · %s", fileName))
	body := mutedStyle.Render(strings.Join(lines, "\n"))
	return boxStyle.Render(head + "\n" + body)
}
