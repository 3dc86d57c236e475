package heuristics

import (
	"github.com/DrSkyle/costscope/pkg/billing"
	"github.com/DrSkyle/costscope/pkg/config"
)

// loadBalancerRules flags cheap, likely low-traffic load balancers whose
// fixed hourly cost dominates.
func loadBalancerRules(s billing.CostSummary, p config.RuleParams) []billing.Recommendation {
	lb := p.LoadBalancer

	if s.MeanCost >= lb.ConsolidateMeanCeiling {
		return nil
	}

	return []billing.Recommendation{
		{
			Type:             "consolidation",
			Priority:         billing.PriorityMedium,
			Scope:            s.Key,
			Description:      "Low-traffic load balancers detected",
			Action:           "Consolidate low-traffic load balancers to cut fixed hourly cost",
			PotentialSavings: s.TotalCost * lb.ConsolidateFraction,
			BaselineCost:     s.TotalCost,
			Confidence:       0.5,
		},
	}
}
