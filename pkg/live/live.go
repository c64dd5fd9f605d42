// Package live shows tracker activity in the terminal while a run is going.
package live

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dkoosis/resusage/pkg/tracker"
)

// maxLines caps the activity log kept in memory.
const maxLines = 500

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	currentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	recordStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

type eventMsg tracker.Event
type doneMsg struct{}

// Model is the bubbletea model for the live view.
type Model struct {
	title    string
	spinner  spinner.Model
	viewport viewport.Model
	lines    []string
	current  string
	tests    int
	records  int
	rejected int
	done     bool
	ready    bool
}

// NewModel returns a model with the given title.
func NewModel(title string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	return Model{title: title, spinner: sp, viewport: viewport.New(80, 10)}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-4, 3)
		m.ready = true
		m.refresh()
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case eventMsg:
		m.apply(tracker.Event(msg))
		m.refresh()
	case doneMsg:
		m.done = true
		m.current = ""
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) apply(e tracker.Event) {
	switch e.Type {
	case tracker.EventTestStart:
		m.tests++
		m.current = e.Test
		m.appendLine(currentStyle.Render("▶ " + e.Test))
	case tracker.EventTestEnd:
		m.current = ""
	case tracker.EventRecord:
		m.records++
		m.appendLine("    " + recordStyle.Render(e.Record.String()))
	case tracker.EventRejected:
		m.rejected++
		m.appendLine("    " + warnStyle.Render(fmt.Sprintf("! %s: %v", e.Keyword, e.Err)))
	}
}

func (m *Model) appendLine(s string) {
	m.lines = append(m.lines, s)
	if len(m.lines) > maxLines {
		m.lines = m.lines[len(m.lines)-maxLines:]
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	var sb strings.Builder
	status := m.spinner.View() + " "
	if m.done {
		status = "✓ "
	}
	sb.WriteString(titleStyle.Render(status + m.title))
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("tests %d · records %d · rejected %d", m.tests, m.records, m.rejected)))
	if m.current != "" {
		sb.WriteString(mutedStyle.Render(" · running ") + currentStyle.Render(m.current))
	}
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")
	return sb.String()
}

// View runs the live display in its own goroutine.
type View struct {
	prog *tea.Program
	done chan error
}

// Start launches the display on out. It reads no keyboard input; cancelling
// ctx (the CLI cancels on interrupt) ends it. Stop must be called to restore
// the terminal.
func Start(ctx context.Context, out io.Writer, title string) *View {
	v := &View{
		prog: tea.NewProgram(NewModel(title), tea.WithContext(ctx), tea.WithOutput(out), tea.WithInput(nil)),
		done: make(chan error, 1),
	}
	go func() {
		_, err := v.prog.Run()
		v.done <- err
	}()
	return v
}

// Observer forwards tracker events to the display. Safe to call from any goroutine.
func (v *View) Observer() tracker.Observer {
	return func(e tracker.Event) {
		v.prog.Send(eventMsg(e))
	}
}

// Stop ends the display and waits for the terminal to be restored.
func (v *View) Stop() error {
	v.prog.Send(doneMsg{})
	err := <-v.done
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
