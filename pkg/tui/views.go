package tui

import (
	"fmt"
	"strings"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.analyzing {
		return fmt.Sprintf("\n\n   %s Crunching billing data...", m.spinner.View())
	}
	if m.err != nil {
		return "\n   " + urgentStyle.Render("analysis failed: "+m.err.Error()) + "\n" +
			dimStyle.Render("   q quit")
	}

	var body string
	switch m.state {
	case ViewStateDetail:
		body = m.viewDetail()
	case ViewStateHelp:
		body = m.viewHelp()
	default:
		body = m.viewList()
	}

	return m.viewHeader() + "\n" + body + "\n" + m.viewFooter()
}

func (m Model) viewHeader() string {
	trend := string(m.Report.Trend.Direction)
	banner := fmt.Sprintf("  spend $%.2f | savings $%.2f | trend %s",
		m.Report.TotalCost, m.Report.TotalPotentialSavings, trend)

	ratio := 0.0
	if m.Report.TotalCost > 0 {
		ratio = m.Report.TotalPotentialSavings / m.Report.TotalCost
		if ratio > 1 {
			ratio = 1
		}
	}
	bar := "  " + m.progress.ViewAs(ratio) + dimStyle.Render(" recoverable")

	return titleStyle.Render("  CostScope") + "\n" + dimStyle.Render(banner) + "\n" + bar
}

func (m Model) viewList() string {
	actions := m.Report.PriorityActions
	if len(actions) == 0 {
		return "\n   " + special.Render("✓") + dimStyle.Render("  No actions. Spend profile looks clean.")
	}

	s := strings.Builder{}
	headerTxt := fmt.Sprintf("  %-4s | %-30s | %-10s | %s", "RANK", "SCOPE", "SAVINGS", "ACTION")
	s.WriteString(dimStyle.Render(headerTxt) + "\n")
	s.WriteString(dimStyle.Render("  "+strings.Repeat("─", 70)) + "\n")

	for i, action := range actions {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		scope := action.Scope
		if scope == "" {
			scope = "portfolio"
		}
		if len(scope) > 30 {
			scope = scope[:27] + "..."
		}

		savings := "—"
		if action.PotentialSavings > 0 {
			savings = fmt.Sprintf("$%.2f", action.PotentialSavings)
		}

		act := action.Action
		if len(act) > 40 {
			act = act[:37] + "..."
		}

		baseLine := fmt.Sprintf("#%-3d | %-30s | %-10s | %s", i+1, scope, savings, act)
		switch {
		case action.Ordinal == 0:
			baseLine = urgentStyle.Render(baseLine)
		case action.Ordinal == 1:
			baseLine = warnStyle.Render(baseLine)
		}

		line := cursor + baseLine
		if i == m.cursor {
			s.WriteString(listSelectedStyle.Render(line) + "\n")
		} else {
			s.WriteString(listNormalStyle.Render(line) + "\n")
		}
	}

	return s.String()
}

func (m Model) viewDetail() string {
	if m.cursor >= len(m.Report.PriorityActions) {
		return dimStyle.Render("  nothing selected")
	}
	action := m.Report.PriorityActions[m.cursor]

	urgency := [...]string{"URGENT", "HIGH", "MEDIUM", "LOW"}
	label := "LOW"
	if action.Ordinal >= 0 && action.Ordinal < len(urgency) {
		label = urgency[action.Ordinal]
	}

	s := strings.Builder{}
	s.WriteString("\n")
	s.WriteString("  " + titleStyle.Render(action.Category) + "\n\n")
	s.WriteString("  Urgency:   " + renderUrgency(action.Ordinal, label) + "\n")
	if action.Scope != "" {
		s.WriteString("  Scope:     " + action.Scope + "\n")
	}
	if action.PotentialSavings > 0 {
		s.WriteString("  Savings:   " + special.Render(fmt.Sprintf("$%.2f", action.PotentialSavings)) + "\n")
	}
	s.WriteString("\n")
	s.WriteString("  " + action.Description + "\n")
	s.WriteString("  " + warnStyle.Render("→ "+action.Action) + "\n")
	return s.String()
}

func renderUrgency(ordinal int, label string) string {
	switch ordinal {
	case 0:
		return urgentStyle.Render(label)
	case 1:
		return warnStyle.Render(label)
	default:
		return dimStyle.Render(label)
	}
}

func (m Model) viewHelp() string {
	lines := []string{
		"",
		"  ↑/k, ↓/j   move",
		"  enter      open action detail",
		"  esc        back to list",
		"  ?          toggle help",
		"  q          quit",
	}
	return dimStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) viewFooter() string {
	switch m.state {
	case ViewStateDetail:
		return dimStyle.Render("  esc back · q quit")
	default:
		return dimStyle.Render("  ↑/↓ move · enter details · ? help · q quit")
	}
}
