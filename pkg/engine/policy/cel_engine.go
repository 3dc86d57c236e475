// Package policy applies user-defined CEL override rules to generated
// recommendations, letting deployments suppress or reprioritize advice
// without recompiling the rule engine.
package policy

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/DrSkyle/costscope/pkg/billing"
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/checker/decls"
	"gopkg.in/yaml.v3"
)

// Override actions.
const (
	ActionSuppress = "suppress"
	ActionBoost    = "boost"
	ActionDemote   = "demote"
)

// OverrideRule is a user-defined rule loaded from YAML.
type OverrideRule struct {
	ID        string `yaml:"id" json:"id"`
	Condition string `yaml:"condition" json:"condition"` // CEL: "type == 'spot_instances' && savings < 50.0"
	Action    string `yaml:"action" json:"action"`       // "suppress", "boost", "demote"
}

type compiledRule struct {
	rule    OverrideRule
	program cel.Program
}

// CELEngine manages compilation and execution of override rules.
// Rules are evaluated in file order; the first match wins per recommendation.
type CELEngine struct {
	env      *cel.Env
	compiled []compiledRule
}

// NewCELEngine initializes the CEL environment with the recommendation
// variable declarations.
func NewCELEngine() (*CELEngine, error) {
	env, err := cel.NewEnv(
		cel.Declarations(
			decls.NewVar("type", decls.String),
			decls.NewVar("priority", decls.String),
			decls.NewVar("scope", decls.String),
			decls.NewVar("savings", decls.Double),
			decls.NewVar("baseline", decls.Double),
			decls.NewVar("confidence", decls.Double),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}
	return &CELEngine{env: env}, nil
}

// Compile compiles the rules into executable programs, keeping file order.
func (e *CELEngine) Compile(rules []OverrideRule) error {
	for _, r := range rules {
		switch r.Action {
		case ActionSuppress, ActionBoost, ActionDemote:
		default:
			return fmt.Errorf("rule %s: unknown action %q", r.ID, r.Action)
		}

		ast, issues := e.env.Compile(r.Condition)
		if issues != nil && issues.Err() != nil {
			return fmt.Errorf("rule %s compilation error: %w", r.ID, issues.Err())
		}
		prg, err := e.env.Program(ast)
		if err != nil {
			return fmt.Errorf("rule %s program creation error: %w", r.ID, err)
		}
		e.compiled = append(e.compiled, compiledRule{rule: r, program: prg})
	}
	return nil
}

// Apply evaluates every recommendation against the compiled rules and returns
// the surviving, possibly reprioritized slice plus the suppression count.
// The input slice is not modified.
func (e *CELEngine) Apply(recs []billing.Recommendation) ([]billing.Recommendation, int) {
	if len(e.compiled) == 0 {
		return recs, 0
	}

	out := make([]billing.Recommendation, 0, len(recs))
	suppressed := 0

	for _, rec := range recs {
		vars := map[string]interface{}{
			"type":       rec.Type,
			"priority":   string(rec.Priority),
			"scope":      rec.Scope,
			"savings":    rec.PotentialSavings,
			"baseline":   rec.BaselineCost,
			"confidence": rec.Confidence,
		}

		action, matched := e.firstMatch(vars)
		if !matched {
			out = append(out, rec)
			continue
		}

		switch action {
		case ActionSuppress:
			suppressed++
		case ActionBoost:
			rec.Priority = billing.PriorityHigh
			out = append(out, rec)
		case ActionDemote:
			rec.Priority = billing.PriorityLow
			out = append(out, rec)
		}
	}
	return out, suppressed
}

func (e *CELEngine) firstMatch(vars map[string]interface{}) (string, bool) {
	for _, c := range e.compiled {
		res, _, err := c.program.Eval(vars)
		if err != nil {
			slog.Error("Override rule evaluation failed", "rule_id", c.rule.ID, "error", err)
			continue
		}
		if match, ok := res.Value().(bool); ok && match {
			return c.rule.Action, true
		}
	}
	return "", false
}

// LoadRules reads an override rules YAML file:
//
//	rules:
//	  - id: mute-cheap-spot
//	    condition: "type == 'spot_instances' && savings < 25.0"
//	    action: suppress
func LoadRules(path string) ([]OverrideRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var doc struct {
		Rules []OverrideRule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse rules yaml: %w", err)
	}
	return doc.Rules, nil
}
