// Package aggregate groups raw cost records into the per-service, per-region,
// per-resource, and per-day summaries the rest of the pipeline consumes.
package aggregate

import (
	"sort"
	"time"

	"github.com/DrSkyle/costscope/pkg/billing"
)

// Result holds the four grouped views of one record set.
type Result struct {
	ServiceCosts  []billing.CostSummary
	RegionCosts   []billing.CostSummary
	ResourceCosts []billing.CostSummary
	DailyCosts    []billing.DailyCost

	// TotalCost is the unfiltered sum over every input record.
	TotalCost float64

	// Empty reports that no records were supplied. Downstream stages
	// short-circuit on it instead of treating it as an error.
	Empty bool
}

// noRegion is the Cost Explorer marker for unattributed spend; such rows are
// kept for service and daily views but excluded from the region summary.
const noRegion = "NoRegion"

type bucket struct {
	total float64
	count int
}

// Aggregate groups records by service, region, resource, and calendar day.
// Grouping is by exact key match. Service and region summaries whose
// aggregated total falls below costThreshold are dropped after aggregation,
// so many tiny records still surface when their sum clears the threshold.
func Aggregate(records []billing.CostRecord, costThreshold float64) Result {
	if len(records) == 0 {
		return Result{Empty: true}
	}

	services := make(map[string]*bucket)
	regions := make(map[string]*bucket)
	resources := make(map[string]*bucket)
	days := make(map[time.Time]float64)

	var total float64
	for _, r := range records {
		total += r.Cost

		add(services, r.Service, r.Cost)
		if r.Region != "" && r.Region != noRegion {
			add(regions, r.Region, r.Cost)
		}
		if r.ResourceID != "" {
			add(resources, r.ResourceID, r.Cost)
		}
		days[r.Day()] += r.Cost
	}

	return Result{
		ServiceCosts:  summarize(services, costThreshold),
		RegionCosts:   summarize(regions, costThreshold),
		ResourceCosts: summarize(resources, 0),
		DailyCosts:    dailySeries(days),
		TotalCost:     total,
	}
}

func add(m map[string]*bucket, key string, cost float64) {
	b, ok := m[key]
	if !ok {
		b = &bucket{}
		m[key] = b
	}
	b.total += cost
	b.count++
}

// summarize converts buckets into sorted summaries. Sort order is descending
// total cost, ties broken by ascending key for deterministic output.
func summarize(m map[string]*bucket, threshold float64) []billing.CostSummary {
	out := make([]billing.CostSummary, 0, len(m))
	for key, b := range m {
		if b.total < threshold {
			continue
		}
		out = append(out, billing.CostSummary{
			Key:         key,
			TotalCost:   b.total,
			MeanCost:    b.total / float64(b.count),
			RecordCount: b.count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalCost != out[j].TotalCost {
			return out[i].TotalCost > out[j].TotalCost
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func dailySeries(days map[time.Time]float64) []billing.DailyCost {
	out := make([]billing.DailyCost, 0, len(days))
	for day, cost := range days {
		out = append(out, billing.DailyCost{Date: day, TotalCost: cost})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
