// Package planner merges every recommendation source into one ranked,
// bounded action plan and settles the report's savings arithmetic.
package planner

import (
	"math"
	"sort"
	"time"

	"github.com/DrSkyle/costscope/pkg/billing"
	"github.com/DrSkyle/costscope/pkg/config"
	"github.com/DrSkyle/costscope/pkg/engine/heuristics"
	"github.com/google/uuid"
)

// Ordinals: lower ranks first. Urgent trend findings outrank everything.
const (
	ordinalUrgent = 0
	ordinalHigh   = 1
	ordinalMedium = 2
	ordinalLow    = 3
)

// Build assembles the final OptimizationReport from the rule engine output.
//
// This is the single place resource savings are quantified: investigation
// findings carry no figure until here, where they get a fixed fraction of
// their current cost by priority. Total potential savings counts every
// recommendation exactly once across the service, resource, and general
// groups; qualitative advice contributes zero.
func Build(f heuristics.Findings, params config.RuleParams, cap int) billing.OptimizationReport {
	if cap <= 0 {
		cap = 10
	}

	report := billing.OptimizationReport{
		ReportID:               uuid.NewString(),
		GeneratedAt:            time.Now().UTC(),
		ServiceRecommendations: f.Service,
		GeneralRecommendations: f.General,
	}

	// Quantify resource findings.
	resource := make([]billing.Recommendation, len(f.Resource))
	for i, r := range f.Resource {
		if r.Type == "high_cost_investigation" && r.PotentialSavings == 0 {
			switch r.Priority {
			case billing.PriorityHigh:
				r.PotentialSavings = r.BaselineCost * params.Resource.HighSavingsFraction
			default:
				r.PotentialSavings = r.BaselineCost * params.Resource.MediumSavingsFraction
			}
		}
		resource[i] = r
	}
	report.ResourceRecommendations = resource

	// Total savings, each recommendation counted once.
	var total float64
	for _, svc := range f.Service {
		total += svc.PotentialSavings
	}
	for _, r := range resource {
		total += r.PotentialSavings
	}
	for _, r := range f.General {
		total += r.PotentialSavings
	}
	report.TotalPotentialSavings = roundCents(total)

	report.PriorityActions = rank(f, resource, cap)
	return report
}

// rank merges all sources, orders by (ordinal asc, savings desc), and
// truncates to the cap. Ordering is stable so equal entries keep their
// source order across runs.
func rank(f heuristics.Findings, resource []billing.Recommendation, cap int) []billing.PriorityAction {
	var actions []billing.PriorityAction

	for _, r := range f.Urgent {
		actions = append(actions, toAction(r, ordinalUrgent, "urgent_investigation"))
	}

	// Deterministic service iteration.
	services := make([]string, 0, len(f.Service))
	for name := range f.Service {
		services = append(services, name)
	}
	sort.Strings(services)
	for _, name := range services {
		for _, r := range f.Service[name].Recommendations {
			actions = append(actions, toAction(r, ordinalFor(r.Priority), "service_optimization"))
		}
	}

	for _, r := range resource {
		actions = append(actions, toAction(r, ordinalFor(r.Priority), "resource_optimization"))
	}
	for _, r := range f.General {
		actions = append(actions, toAction(r, ordinalFor(r.Priority), "portfolio"))
	}

	sort.SliceStable(actions, func(i, j int) bool {
		if actions[i].Ordinal != actions[j].Ordinal {
			return actions[i].Ordinal < actions[j].Ordinal
		}
		return actions[i].PotentialSavings > actions[j].PotentialSavings
	})

	if len(actions) > cap {
		actions = actions[:cap]
	}
	return actions
}

func ordinalFor(p billing.Priority) int {
	switch p {
	case billing.PriorityHigh:
		return ordinalHigh
	case billing.PriorityMedium:
		return ordinalMedium
	default:
		return ordinalLow
	}
}

func toAction(r billing.Recommendation, ordinal int, category string) billing.PriorityAction {
	return billing.PriorityAction{
		Ordinal:          ordinal,
		Category:         category,
		Scope:            r.Scope,
		Description:      r.Description,
		Action:           r.Action,
		PotentialSavings: r.PotentialSavings,
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
