package heuristics

import (
	"github.com/DrSkyle/costscope/pkg/billing"
	"github.com/DrSkyle/costscope/pkg/config"
)

// storageRules covers object storage. Tiering always applies; lifecycle
// automation only once the bill is big enough to matter.
func storageRules(s billing.CostSummary, p config.RuleParams) []billing.Recommendation {
	st := p.Storage

	recs := []billing.Recommendation{
		{
			Type:             "storage_tiering",
			Priority:         billing.PriorityLow,
			Scope:            s.Key,
			Description:      "Storage class review can reduce per-GB cost",
			Action:           "Move infrequently accessed data to IA or archive tiers",
			PotentialSavings: s.TotalCost * st.TieringFraction,
			BaselineCost:     s.TotalCost,
			Confidence:       0.5,
		},
	}

	if s.TotalCost > st.LifecycleTotalFloor {
		recs = append(recs, billing.Recommendation{
			Type:             "lifecycle_policy",
			Priority:         billing.PriorityMedium,
			Scope:            s.Key,
			Description:      "Storage spend justifies automated lifecycle management",
			Action:           "Configure transition and expiration lifecycle policies",
			PotentialSavings: s.TotalCost * st.LifecycleFraction,
			BaselineCost:     s.TotalCost,
			Confidence:       0.6,
		})
	}

	return recs
}
