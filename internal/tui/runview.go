// internal/tui/runview.go
// Package tui renders the live suite-run view: a progress bar fed by the
// execution engine's progress callback plus a rolling list of outcomes.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mwiater/metron/internal/catalog"
	"github.com/mwiater/metron/internal/device"
	"github.com/mwiater/metron/internal/suite"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	passStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	skipStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

// progressMsg reports one benchmark's iteration progress.
type progressMsg struct {
	name  string
	done  int
	total int
}

// outcomeMsg reports one finished benchmark.
type outcomeMsg struct {
	outcome suite.Outcome
}

// suiteDoneMsg carries the final summary and ends the program.
type suiteDoneMsg struct {
	summary suite.Summary
}

// model is the run view's Bubble Tea state.
type model struct {
	spinner  spinner.Model
	progress progress.Model

	current      string
	done, total  int
	outcomes     []suite.Outcome
	summary      *suite.Summary
	benchesTotal int
}

// initialModel creates the run view for a suite of benchCount benchmarks.
func initialModel(benchCount int) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	p := progress.New(progress.WithDefaultGradient())

	return &model{
		spinner:      s,
		progress:     p,
		benchesTotal: benchCount,
	}
}

func (m *model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// The suite keeps running; the view just stays up until it ends.
		return m, nil
	case tea.WindowSizeMsg:
		m.progress.Width = msg.Width - 8
		return m, nil
	case progressMsg:
		m.current = msg.name
		m.done, m.total = msg.done, msg.total
		return m, nil
	case outcomeMsg:
		m.outcomes = append(m.outcomes, msg.outcome)
		m.current = ""
		m.done, m.total = 0, 0
		return m, nil
	case suiteDoneMsg:
		m.summary = &msg.summary
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("metron benchmark suite") + "\n\n")

	for _, o := range m.outcomes {
		switch o.Status {
		case suite.StatusPassed:
			b.WriteString(fmt.Sprintf("  %s %-22s %.3f GOPS\n",
				passStyle.Render("✓"), o.Result.BenchmarkName, o.Result.Metrics.ThroughputGOPS))
		case suite.StatusFailed:
			b.WriteString(fmt.Sprintf("  %s %-22s %s\n",
				failStyle.Render("✗"), o.Result.BenchmarkName, o.Reason))
		case suite.StatusSkipped:
			b.WriteString(fmt.Sprintf("  %s %-22s %s\n",
				skipStyle.Render("‐"), o.Result.BenchmarkName, dimStyle.Render(o.Reason)))
		}
	}

	if m.summary == nil {
		name := m.current
		if name == "" {
			name = "preparing..."
		}
		b.WriteString(fmt.Sprintf("\n  %s %s\n", m.spinner.View(), name))
		if m.total > 0 {
			b.WriteString("  " + m.progress.ViewAs(float64(m.done)/float64(m.total)) + "\n")
		}
		b.WriteString(dimStyle.Render(fmt.Sprintf("\n  %d of %d benchmarks complete\n",
			len(m.outcomes), m.benchesTotal)))
	} else {
		b.WriteString(fmt.Sprintf("\n  %d passed, %d failed, %d skipped\n",
			m.summary.Passed, m.summary.Failed, m.summary.Skipped))
	}
	return b.String()
}

// RunSuite executes the selected benchmarks while the live view renders
// their progress, and returns the suite summary once every benchmark has
// finished.
func RunSuite(dev device.Device, selected []catalog.Definition, ov suite.Overrides) (suite.Summary, error) {
	m := initialModel(len(selected))
	program := tea.NewProgram(m)

	go func() {
		ov.Progress = func(name string, done, total int) {
			program.Send(progressMsg{name: name, done: done, total: total})
		}

		var sum suite.Summary
		for _, def := range selected {
			partial := suite.Run(dev, []catalog.Definition{def}, ov)
			outcome := partial.Outcomes[0]
			sum.Outcomes = append(sum.Outcomes, outcome)
			sum.Passed += partial.Passed
			sum.Failed += partial.Failed
			sum.Skipped += partial.Skipped
			program.Send(outcomeMsg{outcome: outcome})
		}
		program.Send(suiteDoneMsg{summary: sum})
	}()

	final, err := program.Run()
	if err != nil {
		return suite.Summary{}, err
	}
	fm, ok := final.(*model)
	if !ok || fm.summary == nil {
		return suite.Summary{}, fmt.Errorf("run view exited before the suite finished")
	}
	return *fm.summary, nil
}
