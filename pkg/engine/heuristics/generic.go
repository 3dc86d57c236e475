package heuristics

import (
	"fmt"

	"github.com/DrSkyle/costscope/pkg/billing"
	"github.com/DrSkyle/costscope/pkg/config"
)

// genericRules is the fallthrough for services no family rule claims.
func genericRules(s billing.CostSummary, p config.RuleParams) []billing.Recommendation {
	g := p.Generic

	if s.TotalCost <= g.MonitorTotalFloor {
		return nil
	}

	return []billing.Recommendation{
		{
			Type:             "cost_monitoring",
			Priority:         billing.PriorityLow,
			Scope:            s.Key,
			Description:      fmt.Sprintf("%s spend is notable; tighten monitoring", s.Key),
			Action:           "Set budget alerts and usage monitoring for this service",
			PotentialSavings: s.TotalCost * g.MonitorFraction,
			BaselineCost:     s.TotalCost,
			Confidence:       0.4,
		},
	}
}
