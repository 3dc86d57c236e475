package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/DrSkyle/costscope/pkg/billing"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF99")).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#874BFD")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94A3B8"))

	urgentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF3366")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B"))

	savingsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF99"))
)

// RenderText produces the terminal summary of an analysis run.
func RenderText(r billing.OptimizationReport) string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("CostScope Analysis") + "\n")
	s.WriteString(dimStyle.Render(fmt.Sprintf("report %s · generated %s", r.ReportID, r.GeneratedAt.Format("2006-01-02 15:04 MST"))) + "\n\n")

	if r.Empty {
		s.WriteString(dimStyle.Render("No billing records matched the analysis window.") + "\n")
		return s.String()
	}

	s.WriteString(fmt.Sprintf("  Total spend:       $%.2f\n", r.TotalCost))
	s.WriteString("  Potential savings: " + savingsStyle.Render(fmt.Sprintf("$%.2f", r.TotalPotentialSavings)) + "\n")
	if r.DroppedRecords > 0 {
		s.WriteString(warnStyle.Render(fmt.Sprintf("  Dropped %d malformed records", r.DroppedRecords)) + "\n")
	}
	for _, provider := range sortedKeys(r.ProviderErrors) {
		s.WriteString(warnStyle.Render(fmt.Sprintf("  Provider %s failed: %s", provider, r.ProviderErrors[provider])) + "\n")
	}
	s.WriteString("\n")

	s.WriteString(sectionStyle.Render("Trend") + "\n")
	s.WriteString(renderTrend(r.Trend))

	s.WriteString(sectionStyle.Render("Top services") + "\n")
	for i, svc := range r.ServiceCosts {
		if i >= 5 {
			break
		}
		s.WriteString(fmt.Sprintf("  %-40s $%10.2f\n", truncate(svc.Key, 40), svc.TotalCost))
	}
	s.WriteString("\n")

	s.WriteString(sectionStyle.Render("Priority actions") + "\n")
	if len(r.PriorityActions) == 0 {
		s.WriteString(dimStyle.Render("  none") + "\n")
	}
	for i, action := range r.PriorityActions {
		line := fmt.Sprintf("  %2d. [%s] %s", i+1, action.Scope, action.Action)
		if action.PotentialSavings > 0 {
			line += savingsStyle.Render(fmt.Sprintf("  (~$%.2f)", action.PotentialSavings))
		}
		if action.Ordinal == 0 {
			line = urgentStyle.Render(line)
		}
		s.WriteString(line + "\n")
	}

	return s.String()
}

func renderTrend(t billing.TrendInsight) string {
	var s strings.Builder
	switch t.Direction {
	case billing.TrendInsufficientData:
		s.WriteString(dimStyle.Render("  not enough history for a trend") + "\n")
	case billing.TrendIncreasing:
		s.WriteString(warnStyle.Render(fmt.Sprintf("  increasing %+.1f%% week over week", t.ChangeRate)) + "\n")
	case billing.TrendDecreasing:
		s.WriteString(savingsStyle.Render(fmt.Sprintf("  decreasing %+.1f%% week over week", t.ChangeRate)) + "\n")
	default:
		s.WriteString(fmt.Sprintf("  stable (%+.1f%%)\n", t.ChangeRate))
	}
	for _, a := range t.Anomalies {
		s.WriteString(warnStyle.Render(fmt.Sprintf("  anomaly %s: $%.2f (%.1fσ %s)", a.Date.Format("2006-01-02"), a.Cost, a.Deviation, a.Type)) + "\n")
	}
	s.WriteString("\n")
	return s.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
