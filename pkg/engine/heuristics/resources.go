package heuristics

import (
	"math"
	"sort"

	"github.com/DrSkyle/costscope/pkg/billing"
	"github.com/DrSkyle/costscope/pkg/config"
)

// resourceRules emits per-resource findings from the resource cost summary.
// Resources above the high-cost percentile get an investigation flag; the
// cheapest quintile yields a bounded possibly-idle list. Savings for these
// findings are quantified later by the planner, not here.
func resourceRules(resources []billing.CostSummary, p config.RuleParams) []billing.Recommendation {
	if len(resources) == 0 {
		return nil
	}
	r := p.Resource

	costs := make([]float64, len(resources))
	for i, res := range resources {
		costs[i] = res.TotalCost
	}
	highCut := quantile(costs, r.HighCostPercentile)
	idleCut := quantile(costs, r.IdlePercentile)

	var recs []billing.Recommendation

	for _, res := range resources {
		if res.TotalCost <= highCut {
			continue
		}
		priority := billing.PriorityMedium
		if res.TotalCost > r.HighPriorityFloor {
			priority = billing.PriorityHigh
		}
		recs = append(recs, billing.Recommendation{
			Type:         "high_cost_investigation",
			Priority:     priority,
			Scope:        res.Key,
			Description:  "High-cost resource; usage warrants a closer look",
			Action:       "Review utilization; optimize or replace the resource",
			BaselineCost: res.TotalCost,
			Confidence:   0.5,
		})
	}

	// Cheapest candidates ascending, capped.
	var idle []billing.CostSummary
	for _, res := range resources {
		if res.TotalCost < idleCut {
			idle = append(idle, res)
		}
	}
	sort.Slice(idle, func(i, j int) bool {
		if idle[i].TotalCost != idle[j].TotalCost {
			return idle[i].TotalCost < idle[j].TotalCost
		}
		return idle[i].Key < idle[j].Key
	})
	if len(idle) > r.IdleMaxResults {
		idle = idle[:r.IdleMaxResults]
	}
	for _, res := range idle {
		recs = append(recs, billing.Recommendation{
			Type:         "possibly_idle",
			Priority:     billing.PriorityLow,
			Scope:        res.Key,
			Description:  "Low-cost resource; may no longer be needed",
			Action:       "Verify the resource is still required; delete or downsize",
			BaselineCost: res.TotalCost,
			Confidence:   0.4,
		})
	}

	return recs
}

// quantile returns the q-th quantile of values using linear interpolation
// between closest ranks.
func quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
