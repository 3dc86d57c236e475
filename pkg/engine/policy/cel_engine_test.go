package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/DrSkyle/costscope/pkg/billing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func engineWith(t *testing.T, rules ...OverrideRule) *CELEngine {
	t.Helper()
	e, err := NewCELEngine()
	require.NoError(t, err)
	require.NoError(t, e.Compile(rules))
	return e
}

func TestSuppress(t *testing.T) {
	e := engineWith(t, OverrideRule{
		ID:        "mute-cheap-spot",
		Condition: `type == 'spot_instances' && savings < 25.0`,
		Action:    ActionSuppress,
	})

	recs := []billing.Recommendation{
		{Type: "spot_instances", PotentialSavings: 10},
		{Type: "spot_instances", PotentialSavings: 90},
		{Type: "right_sizing", PotentialSavings: 5},
	}

	out, suppressed := e.Apply(recs)

	assert.Equal(t, 1, suppressed)
	require.Len(t, out, 2)
	assert.Equal(t, 90.0, out[0].PotentialSavings)
}

func TestBoostAndDemote(t *testing.T) {
	e := engineWith(t,
		OverrideRule{ID: "prod-first", Condition: `scope == 'Amazon Relational Database Service'`, Action: ActionBoost},
		OverrideRule{ID: "quiet-monitoring", Condition: `type == 'cost_monitoring'`, Action: ActionDemote},
	)

	recs := []billing.Recommendation{
		{Type: "right_sizing", Scope: "Amazon Relational Database Service", Priority: billing.PriorityMedium},
		{Type: "cost_monitoring", Priority: billing.PriorityMedium},
	}

	out, suppressed := e.Apply(recs)

	assert.Zero(t, suppressed)
	require.Len(t, out, 2)
	assert.Equal(t, billing.PriorityHigh, out[0].Priority)
	assert.Equal(t, billing.PriorityLow, out[1].Priority)
}

func TestFirstMatchWins(t *testing.T) {
	e := engineWith(t,
		OverrideRule{ID: "a", Condition: `savings > 0.0`, Action: ActionDemote},
		OverrideRule{ID: "b", Condition: `savings > 0.0`, Action: ActionSuppress},
	)

	out, suppressed := e.Apply([]billing.Recommendation{{Type: "x", PotentialSavings: 10, Priority: billing.PriorityHigh}})

	assert.Zero(t, suppressed)
	require.Len(t, out, 1)
	assert.Equal(t, billing.PriorityLow, out[0].Priority)
}

func TestCompileRejectsBadInput(t *testing.T) {
	e, err := NewCELEngine()
	require.NoError(t, err)

	assert.Error(t, e.Compile([]OverrideRule{{ID: "bad", Condition: `savings >`, Action: ActionSuppress}}))
	assert.Error(t, e.Compile([]OverrideRule{{ID: "bad-action", Condition: `true`, Action: "explode"}}))
}

func TestNoRulesPassthrough(t *testing.T) {
	e, err := NewCELEngine()
	require.NoError(t, err)

	recs := []billing.Recommendation{{Type: "x"}}
	out, suppressed := e.Apply(recs)

	assert.Zero(t, suppressed)
	assert.Equal(t, recs, out)
}

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overrides.yaml")
	content := `rules:
  - id: mute-cheap-spot
    condition: "type == 'spot_instances' && savings < 25.0"
    action: suppress
  - id: prod-first
    condition: "scope == 'prod'"
    action: boost
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "mute-cheap-spot", rules[0].ID)
	assert.Equal(t, ActionBoost, rules[1].Action)

	_, err = LoadRules(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
