package heuristics

import (
	"context"

	"github.com/DrSkyle/costscope/pkg/billing"
	"github.com/DrSkyle/costscope/pkg/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Findings is the rule engine's full output, grouped by origin so the planner
// can rank across sources without double counting.
type Findings struct {
	Service  map[string]billing.ServiceRecommendations
	Resource []billing.Recommendation
	General  []billing.Recommendation
	Urgent   []billing.Recommendation
}

// Engine holds the ordered rule table and tuning parameters. It is stateless
// across runs and safe for concurrent use.
type Engine struct {
	rules  []ServiceRule
	params config.RuleParams
}

// NewEngine builds an engine with the default rule table.
func NewEngine(params config.RuleParams) *Engine {
	return &Engine{
		rules:  defaultRules(),
		params: params,
	}
}

// Run evaluates every rule source against the aggregated summaries.
// Dispatch walks the table in order and stops at the first matching family,
// so rule order is part of the contract.
func (e *Engine) Run(
	ctx context.Context,
	serviceCosts, resourceCosts []billing.CostSummary,
	totalCost float64,
	insight billing.TrendInsight,
) Findings {
	tracer := otel.Tracer("costscope/heuristics")
	_, span := tracer.Start(ctx, "Heuristics.Run")
	defer span.End()

	f := Findings{
		Service: make(map[string]billing.ServiceRecommendations),
	}

	for _, s := range serviceCosts {
		recs := e.evaluateService(s)
		if len(recs) == 0 {
			continue
		}
		var subtotal float64
		for _, r := range recs {
			subtotal += r.PotentialSavings
		}
		f.Service[s.Key] = billing.ServiceRecommendations{
			CurrentCost:      s.TotalCost,
			PotentialSavings: subtotal,
			Recommendations:  recs,
		}
	}

	f.Resource = resourceRules(resourceCosts, e.params)
	f.General = portfolioRules(totalCost, len(serviceCosts), e.params)

	urgent, advisory := trendRules(insight, e.params)
	f.Urgent = urgent
	f.General = append(f.General, advisory...)

	span.SetAttributes(
		attribute.Int("services_evaluated", len(serviceCosts)),
		attribute.Int("service_hits", len(f.Service)),
		attribute.Int("resource_findings", len(f.Resource)),
		attribute.Int("general_findings", len(f.General)),
	)

	return f
}

func (e *Engine) evaluateService(s billing.CostSummary) []billing.Recommendation {
	for _, rule := range e.rules {
		if rule.Match(s.Key) {
			return rule.Evaluate(s, e.params)
		}
	}
	return nil
}
