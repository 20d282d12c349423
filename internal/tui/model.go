// Package tui shows a progress bar while an archive operation runs.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mcdonaldj/tarwrap/internal/ports"
)

const (
	padding  = 2
	maxWidth = 80
)

// Operation is a create or extract call bound to its arguments. It reports
// entries through progress and returns the verification result.
type Operation func(ctx context.Context, progress ports.ProgressFunc) (bool, error)

// Model is the progress view for a single operation.
type Model struct {
	title    string
	bar      progress.Model
	event    ports.ProgressEvent
	width    int
	done     bool
	ok       bool
	err      error
	quitting bool
}

// Key bindings
type keyMap struct {
	Quit key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "cancel"),
	),
}

type progressMsg ports.ProgressEvent

type doneMsg struct {
	ok  bool
	err error
}

// NewModel returns a model titled title with an empty bar.
func NewModel(title string) *Model {
	bar := progress.New(progress.WithGradient(string(barStart), string(barEnd)))
	bar.Width = maxWidth - padding*2
	return &Model{title: title, bar: bar}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = min(msg.Width-padding*2-4, maxWidth)
		if m.bar.Width < 10 {
			m.bar.Width = 10
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case progressMsg:
		m.event = ports.ProgressEvent(msg)
		return m, nil

	case doneMsg:
		m.done = true
		m.ok = msg.ok
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

// Percent is the completed fraction, clamped to [0, 1].
func (m *Model) Percent() float64 {
	if m.event.Total <= 0 {
		return 0
	}
	return min(float64(m.event.Current)/float64(m.event.Total), 1)
}

// View renders the model
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(headingStyle.Render(m.title))
	b.WriteString("\n\n")
	b.WriteString(m.bar.ViewAs(m.Percent()))
	b.WriteString("\n")

	if m.event.Total > 0 {
		b.WriteString(counterStyle.Render(fmt.Sprintf("[%d/%d] ", m.event.Current, m.event.Total)))
		b.WriteString(entryStyle.Render(truncate(m.event.Name, m.bar.Width)))
	}
	b.WriteString("\n")

	switch {
	case m.done && m.err != nil:
		b.WriteString("\n" + failStyle.Render("✗ "+m.err.Error()) + "\n")
	case m.done && !m.ok:
		b.WriteString("\n" + failStyle.Render("✗ verification failed") + "\n")
	case m.done:
		b.WriteString("\n" + okStyle.Render("✓ done") + "\n")
	case m.quitting:
		b.WriteString("\n" + counterStyle.Render("cancelling...") + "\n")
	default:
		b.WriteString(hintStyle.Render(keys.Quit.Help().Key + " " + keys.Quit.Help().Desc))
	}

	return frameStyle.Render(b.String())
}

// RunProgress runs op while showing its progress. Quitting the program
// cancels the context passed to op; the result is always op's own.
func RunProgress(ctx context.Context, title string, op Operation, opts ...tea.ProgramOption) (bool, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewModel(title), opts...)

	result := make(chan doneMsg, 1)
	go func() {
		ok, err := op(ctx, func(ev ports.ProgressEvent) {
			p.Send(progressMsg(ev))
		})
		res := doneMsg{ok: ok, err: err}
		result <- res
		p.Send(res)
	}()

	_, runErr := p.Run()
	cancel()
	res := <-result
	if runErr != nil && res.err == nil {
		return false, runErr
	}
	return res.ok, res.err
}

// truncate keeps the last max-1 runes of s behind an ellipsis.
func truncate(s string, max int) string {
	r := []rune(s)
	if max <= 1 || len(r) <= max {
		return s
	}
	return "…" + string(r[len(r)-max+1:])
}
