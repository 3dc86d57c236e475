package heuristics

import (
	"github.com/DrSkyle/costscope/pkg/billing"
	"github.com/DrSkyle/costscope/pkg/config"
)

// databaseRules covers managed relational databases.
func databaseRules(s billing.CostSummary, p config.RuleParams) []billing.Recommendation {
	var recs []billing.Recommendation
	d := p.Database

	if s.MeanCost < d.RightSizeMeanCeiling && s.RecordCount > d.RightSizeMinRecords {
		recs = append(recs, billing.Recommendation{
			Type:             "right_sizing",
			Priority:         billing.PriorityMedium,
			Scope:            s.Key,
			Description:      "Possibly over-provisioned database instances detected",
			Action:           "Review CPU and memory utilization; downsize instance classes",
			PotentialSavings: s.TotalCost * d.RightSizeFraction,
			BaselineCost:     s.TotalCost,
			Confidence:       0.6,
		})
	}

	if s.TotalCost > d.ReservedTotalFloor {
		recs = append(recs, billing.Recommendation{
			Type:             "reserved_capacity",
			Priority:         billing.PriorityHigh,
			Scope:            s.Key,
			Description:      "Database spend is high; reserved instances are strongly indicated",
			Action:           "Purchase reserved database capacity for steady-state instances",
			PotentialSavings: s.TotalCost * d.ReservedFraction,
			BaselineCost:     s.TotalCost,
			Confidence:       0.7,
		})
	}

	return recs
}
