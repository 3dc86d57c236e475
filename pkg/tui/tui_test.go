package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/DrSkyle/costscope/pkg/billing"
)

var errAnalysis = errors.New("every provider failed")

func reportWithActions() billing.OptimizationReport {
	return billing.OptimizationReport{
		TotalCost:             1200,
		TotalPotentialSavings: 340,
		Trend:                 billing.TrendInsight{Direction: billing.TrendIncreasing, ChangeRate: 22},
		PriorityActions: []billing.PriorityAction{
			{
				Ordinal:     0,
				Category:    "cost_spike_investigation",
				Scope:       "portfolio",
				Description: "Weekly spend jumped more than twenty percent",
				Action:      "Investigate the recent cost spike",
			},
			{
				Ordinal:          1,
				Category:         "right_sizing",
				Scope:            "Amazon Elastic Compute Cloud - Compute",
				Description:      "High average cost per record",
				Action:           "Right-size overprovisioned instances",
				PotentialSavings: 180,
			},
			{
				Ordinal:          2,
				Category:         "storage_tiering",
				Scope:            "Amazon Simple Storage Service",
				Description:      "Storage spend suits tiering",
				Action:           "Move cold data to infrequent access tiers",
				PotentialSavings: 60,
			},
		},
	}
}

func TestListRendering(t *testing.T) {
	m := NewModel(reportWithActions())
	view := m.View()

	for _, want := range []string{
		"CostScope",
		"$1200.00",
		"$340.00",
		"increasing",
		"Investigate the recent cost spike",
		"Right-size overprovisioned instances",
		"$180.00",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q.\nGot:\n%s", want, view)
		}
	}
}

func TestEmptyReport(t *testing.T) {
	m := NewModel(billing.OptimizationReport{})
	view := m.View()

	if !strings.Contains(view, "No actions") {
		t.Errorf("expected empty-state message, got:\n%s", view)
	}
}

func TestNavigationAndDetail(t *testing.T) {
	m := NewModel(reportWithActions())

	down, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = down.(Model)
	opened, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = opened.(Model)

	view := m.View()
	for _, want := range []string{"right_sizing", "HIGH", "$180.00", "High average cost per record"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected detail view to contain %q.\nGot:\n%s", want, view)
		}
	}

	back, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = back.(Model)
	if m.state != ViewStateList {
		t.Errorf("expected esc to return to list, state=%v", m.state)
	}
}

func TestCursorBounds(t *testing.T) {
	m := NewModel(reportWithActions())

	up, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = up.(Model)
	if m.cursor != 0 {
		t.Errorf("cursor moved above the top: %d", m.cursor)
	}

	for i := 0; i < 10; i++ {
		down, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
		m = down.(Model)
	}
	if m.cursor != 2 {
		t.Errorf("cursor moved past the last action: %d", m.cursor)
	}
}

func TestQuit(t *testing.T) {
	m := NewModel(reportWithActions())

	quit, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m = quit.(Model)
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if m.View() != "" {
		t.Error("expected empty view after quit")
	}
}

func TestRunningModelShowsSpinnerThenReport(t *testing.T) {
	m := NewRunningModel(func() (billing.OptimizationReport, error) {
		return reportWithActions(), nil
	})

	if !strings.Contains(m.View(), "Crunching billing data") {
		t.Errorf("expected analyzing view, got:\n%s", m.View())
	}

	// Drive the run command manually instead of spinning up a program.
	rep, err := m.run()
	done, _ := m.Update(resultMsg{report: rep, err: err})
	m = done.(Model)

	if m.analyzing {
		t.Error("expected analyzing to clear after the result arrived")
	}
	if !strings.Contains(m.View(), "Investigate the recent cost spike") {
		t.Errorf("expected the report list, got:\n%s", m.View())
	}
}

func TestRunningModelSurfacesError(t *testing.T) {
	m := NewRunningModel(nil)

	failed, _ := m.Update(resultMsg{err: errAnalysis})
	m = failed.(Model)

	if !strings.Contains(m.View(), "analysis failed") {
		t.Errorf("expected failure view, got:\n%s", m.View())
	}
	if m.Err() == nil {
		t.Error("expected Err to report the failure")
	}
}

func TestHelpToggle(t *testing.T) {
	m := NewModel(reportWithActions())

	help, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	m = help.(Model)
	if !strings.Contains(m.View(), "toggle help") {
		t.Error("expected help view")
	}

	list, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	m = list.(Model)
	if m.state != ViewStateList {
		t.Error("expected help toggle back to list")
	}
}
