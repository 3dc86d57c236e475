// Package heuristics is the optimization rule engine. It maps aggregated cost
// signals to scored recommendations: per-service family rules, resource
// percentile rules, portfolio-level advice, and trend-driven urgency.
package heuristics

import (
	"strings"

	"github.com/DrSkyle/costscope/pkg/billing"
	"github.com/DrSkyle/costscope/pkg/config"
)

// ServiceRule pairs a service-name predicate with a rule function. Rules are
// evaluated in table order; the first matching rule handles the service and
// may emit any number of recommendations. Rules are stateless and never reach
// outside their inputs.
type ServiceRule struct {
	Name     string
	Match    func(service string) bool
	Evaluate func(s billing.CostSummary, p config.RuleParams) []billing.Recommendation
}

// containsAny reports whether service contains one of the markers.
// Matching is deliberately case-sensitive exact-substring: billing service
// names are stable identifiers, not free text.
func containsAny(service string, markers ...string) bool {
	for _, m := range markers {
		if strings.Contains(service, m) {
			return true
		}
	}
	return false
}

// defaultRules returns the ordered dispatch table. The generic rule matches
// everything and must stay last.
func defaultRules() []ServiceRule {
	return []ServiceRule{
		{
			Name:     "compute",
			Match:    func(s string) bool { return containsAny(s, "Elastic Compute Cloud", "EC2", "Compute") },
			Evaluate: computeRules,
		},
		{
			Name:     "database",
			Match:    func(s string) bool { return containsAny(s, "Relational Database", "RDS", "Database") },
			Evaluate: databaseRules,
		},
		{
			Name:     "storage",
			Match:    func(s string) bool { return containsAny(s, "Simple Storage Service", "S3", "Storage") },
			Evaluate: storageRules,
		},
		{
			Name:     "load-balancer",
			Match:    func(s string) bool { return containsAny(s, "Load Balancing", "Load Balancer", "ELB") },
			Evaluate: loadBalancerRules,
		},
		{
			Name:     "generic",
			Match:    func(string) bool { return true },
			Evaluate: genericRules,
		},
	}
}
