package heuristics

import (
	"fmt"

	"github.com/DrSkyle/costscope/pkg/billing"
	"github.com/DrSkyle/costscope/pkg/config"
)

// computeRules covers the EC2-style compute family. A service may satisfy
// several conditions at once; every applicable recommendation is kept and the
// savings are summed into the service subtotal.
func computeRules(s billing.CostSummary, p config.RuleParams) []billing.Recommendation {
	var recs []billing.Recommendation
	c := p.Compute

	// Fleets of cheap records usually mean underutilized instances.
	if s.MeanCost < c.RightSizeMeanCeiling && s.RecordCount > c.RightSizeMinRecords {
		recs = append(recs, billing.Recommendation{
			Type:             "right_sizing",
			Priority:         billing.PriorityHigh,
			Scope:            s.Key,
			Description:      "Possible low-utilization compute instances detected",
			Action:           "Downsize instance types or move suitable workloads to smaller families",
			PotentialSavings: s.TotalCost * c.RightSizeFraction,
			BaselineCost:     s.TotalCost,
			Confidence:       0.7,
		})
	}

	if s.TotalCost > c.ReservedTotalFloor {
		recs = append(recs, billing.Recommendation{
			Type:             "reserved_capacity",
			Priority:         billing.PriorityMedium,
			Scope:            s.Key,
			Description:      fmt.Sprintf("Compute spend is high ($%.2f); commitment discounts apply", s.TotalCost),
			Action:           "Purchase 1-year reserved capacity for the stable baseline",
			PotentialSavings: s.TotalCost * c.ReservedFraction,
			BaselineCost:     s.TotalCost,
			Confidence:       0.6,
		})
	}

	if s.RecordCount > c.SpotMinRecords {
		recs = append(recs, billing.Recommendation{
			Type:             "spot_instances",
			Priority:         billing.PriorityMedium,
			Scope:            s.Key,
			Description:      "Recurring compute usage suited to interruptible capacity",
			Action:           "Run fault-tolerant workloads on spot/preemptible instances",
			PotentialSavings: s.TotalCost * c.SpotFraction,
			BaselineCost:     s.TotalCost,
			Confidence:       0.5,
		})
	}

	return recs
}
