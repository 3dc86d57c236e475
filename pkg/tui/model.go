// Package tui is the interactive terminal browser for an analysis
// report: a ranked action list with a per-action detail view. The
// analysis itself runs behind a spinner when started via NewRunningModel.
package tui

import (
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/DrSkyle/costscope/pkg/billing"
)

type ViewState int

const (
	ViewStateList ViewState = iota
	ViewStateDetail
	ViewStateHelp
)

var (
	special           = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF99"))
	dimStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("#94A3B8"))
	urgentStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF3366")).Bold(true)
	warnStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	titleStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF99")).Bold(true)
	listSelectedStyle = lipgloss.NewStyle().Bold(true)
	listNormalStyle   = lipgloss.NewStyle()
)

// RunFunc produces the report the browser displays. It runs once, off
// the UI loop, while the spinner is shown.
type RunFunc func() (billing.OptimizationReport, error)

type resultMsg struct {
	report billing.OptimizationReport
	err    error
}

type Model struct {
	Report billing.OptimizationReport

	// core components
	spinner  spinner.Model
	progress progress.Model
	run      RunFunc

	// state
	state     ViewState
	analyzing bool
	quitting  bool
	err       error
	width     int
	height    int

	// navigation
	cursor int
}

// NewModel wraps an already-computed report.
func NewModel(r billing.OptimizationReport) Model {
	m := newBase()
	m.Report = r
	return m
}

// NewRunningModel starts in the analyzing state and invokes run from
// Init; the result replaces the spinner when it arrives.
func NewRunningModel(run RunFunc) Model {
	m := newBase()
	m.run = run
	m.analyzing = true
	return m
}

func newBase() Model {
	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = special

	// Gradient bar (green to cyan) for the savings ratio.
	prog := progress.New(progress.WithGradient("#00FF99", "#00CCFF"))

	return Model{
		spinner:  s,
		progress: prog,
		state:    ViewStateList,
		height:   24,
		width:    80,
	}
}

func (m Model) Init() tea.Cmd {
	if !m.analyzing {
		return nil
	}
	run := m.run
	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			rep, err := run()
			return resultMsg{report: rep, err: err}
		},
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.analyzing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case resultMsg:
		m.analyzing = false
		m.Report = msg.report
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state != ViewStateList && !m.analyzing && m.err == nil {
				m.state = ViewStateList
				return m, nil
			}
			m.quitting = true
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.Report.PriorityActions)-1 {
				m.cursor++
			}

		case "enter":
			if m.state == ViewStateList && len(m.Report.PriorityActions) > 0 {
				m.state = ViewStateDetail
			}

		case "esc":
			m.state = ViewStateList

		case "?":
			if m.state == ViewStateHelp {
				m.state = ViewStateList
			} else {
				m.state = ViewStateHelp
			}
		}
	}

	return m, nil
}

// Err reports the fatal error from the analysis, if any, so the
// caller can set the exit code after the program ends.
func (m Model) Err() error {
	return m.err
}
