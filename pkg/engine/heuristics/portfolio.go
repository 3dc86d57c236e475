package heuristics

import (
	"fmt"

	"github.com/DrSkyle/costscope/pkg/billing"
	"github.com/DrSkyle/costscope/pkg/config"
)

// portfolioRules produces account-wide advice independent of any single
// service. These are qualitative: no savings figure is attached.
func portfolioRules(totalCost float64, serviceCount int, p config.RuleParams) []billing.Recommendation {
	var recs []billing.Recommendation
	pf := p.Portfolio

	if totalCost > pf.GovernanceTotalFloor {
		recs = append(recs, billing.Recommendation{
			Type:        "cost_governance",
			Priority:    billing.PriorityHigh,
			Description: fmt.Sprintf("Total spend reached $%.2f; a budget governance process is due", totalCost),
			Action:      "Set budget alerts, schedule cost reviews, and tag spend by owner",
			Confidence:  0.6,
		})
	}

	if serviceCount > pf.ConsolidationMinCount {
		recs = append(recs, billing.Recommendation{
			Type:        "service_consolidation",
			Priority:    billing.PriorityMedium,
			Description: fmt.Sprintf("%d services in use; portfolio sprawl raises baseline cost", serviceCount),
			Action:      "Audit each service's necessity and consolidate overlapping ones",
			Confidence:  0.5,
		})
	}

	// Baseline nudge, always emitted.
	recs = append(recs, billing.Recommendation{
		Type:        "monitoring_enhancement",
		Priority:    billing.PriorityMedium,
		Description: "No continuous cost monitoring detected in this analysis scope",
		Action:      "Automate recurring cost reports and a spend dashboard",
		Confidence:  0.5,
	})

	return recs
}

// trendRules converts trend findings into actions. A sharp rise is the only
// thing urgent enough to outrank every savings figure in the final plan.
func trendRules(insight billing.TrendInsight, p config.RuleParams) (urgent, advisory []billing.Recommendation) {
	pf := p.Portfolio

	if insight.Direction == billing.TrendInsufficientData {
		return nil, nil
	}

	switch {
	case insight.ChangeRate > pf.SpikeChangeRateFloor:
		urgent = append(urgent, billing.Recommendation{
			Type:        "cost_spike_investigation",
			Priority:    billing.PriorityHigh,
			Description: fmt.Sprintf("Cost growth hit %.1f%%; immediate investigation required", insight.ChangeRate),
			Action:      "Inspect newly created resources and usage anomalies now",
			Confidence:  0.8,
		})
	case insight.ChangeRate > pf.TrendChangeRateFloor:
		advisory = append(advisory, billing.Recommendation{
			Type:        "cost_trend_monitoring",
			Priority:    billing.PriorityMedium,
			Description: fmt.Sprintf("Costs trending up (%.1f%%); monitoring should tighten", insight.ChangeRate),
			Action:      "Identify the growth drivers and set a spend alert",
			Confidence:  0.6,
		})
	}
	return urgent, advisory
}
