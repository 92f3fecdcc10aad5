package driver

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// phaseReport is one phase's outcome, sent over the channel Run drains
// into as it works, the same shape evalResultMsg carries a single
// evaluation's outcome back to the teacher's repl model.
type phaseReport struct {
	name string
	dur  time.Duration
	err  error
}

// Styling, named and colored the way repl.go's title/prompt/error styles
// are -- this package has no REPL prompt of its own, only phase rows.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87")).
			Bold(true)

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676"))
)

// reportMsg wraps a phaseReport as a tea.Msg.
type reportMsg phaseReport

// closedMsg signals the report channel has no more phases coming.
type closedMsg struct{}

// progressModel renders the fixed phaseNames list, each row pending,
// spinning, done, or failed -- the batch-pipeline analogue of repl.model
// showing a single spinner while m.evaluating is true.
type progressModel struct {
	ch       <-chan phaseReport
	spinner  spinner.Model
	done     []phaseReport
	current  int
	finished bool
	err      error
}

func newProgressModel(ch <-chan phaseReport) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF79C6"))
	return progressModel{ch: ch, spinner: s}
}

func waitForReport(ch <-chan phaseReport) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return closedMsg{}
		}
		return reportMsg(r)
	}
}

func (m progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForReport(m.ch))
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case reportMsg:
		r := phaseReport(msg)
		m.done = append(m.done, r)
		m.current++
		if r.err != nil {
			m.err = r.err
			m.finished = true
			return m, tea.Quit
		}
		return m, waitForReport(m.ch)
	case closedMsg:
		m.finished = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m progressModel) View() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render(" pythonc "))
	s.WriteString("\n\n")

	for _, r := range m.done {
		if r.err != nil {
			fmt.Fprintf(&s, "  %s %-32s %s\n", failStyle.Render("x"), r.name, failStyle.Render(r.err.Error()))
		} else {
			fmt.Fprintf(&s, "  %s %-32s %s\n", doneStyle.Render("v"), r.name, r.dur.Round(time.Microsecond))
		}
	}

	if !m.finished && m.current < len(phaseNames) {
		fmt.Fprintf(&s, "  %s %-32s\n", m.spinner.View(), phaseNames[m.current])
	}
	for i := m.current + 1; i < len(phaseNames) && !m.finished; i++ {
		fmt.Fprintf(&s, "    %s\n", pendingStyle.Render(phaseNames[i]))
	}

	return s.String()
}

// runProgressUI drives a Bubble Tea program over ch until it closes or a
// phase fails, returning the failing phase's error if any.
func runProgressUI(ch <-chan phaseReport) error {
	m := newProgressModel(ch)
	p := tea.NewProgram(m)
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(progressModel); ok {
		return fm.err
	}
	return nil
}

// runPlainReporter drains ch to stderr as plain lines, matching
// repl.model's NoColor escape hatch -- no TUI, just one line per phase.
func runPlainReporter(ch <-chan phaseReport) error {
	var err error
	for r := range ch {
		if r.err != nil {
			fmt.Fprintf(os.Stderr, "pythonc: %-32s FAILED: %v\n", r.name, r.err)
			err = r.err
			continue
		}
		fmt.Fprintf(os.Stderr, "pythonc: %-32s %s\n", r.name, r.dur.Round(time.Microsecond))
	}
	return err
}
