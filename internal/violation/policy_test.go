package violation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name          string
		count         int
		threshold     int
		wantDecision  Decision
		wantRemaining int
	}{
		{"zero count continues", 0, 2, DecisionContinue, 0},
		{"first violation warns", 1, 2, DecisionWarn, 2},
		{"at threshold warns", 2, 2, DecisionWarn, 1},
		{"over threshold forces", 3, 2, DecisionForceSubmit, 0},
		{"far over threshold forces", 10, 2, DecisionForceSubmit, 0},
		{"threshold one, first warns", 1, 1, DecisionWarn, 1},
		{"threshold one, second forces", 2, 1, DecisionForceSubmit, 0},
		{"zero threshold forces on first", 1, 0, DecisionForceSubmit, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Evaluate(tt.count, tt.threshold)
			assert.Equal(t, tt.wantDecision, out.Decision)
			assert.Equal(t, tt.wantRemaining, out.RemainingWarnings)
		})
	}
}

func TestRulesApply_EnforceForcesSubmission(t *testing.T) {
	rules := Rules{Threshold: 2, Enforce: true}

	assert.Equal(t, DecisionWarn, rules.Apply(1).Decision)
	assert.Equal(t, DecisionWarn, rules.Apply(2).Decision)
	assert.Equal(t, DecisionForceSubmit, rules.Apply(3).Decision)
}

func TestRulesApply_AdvisoryNeverForces(t *testing.T) {
	rules := Rules{Threshold: 2, Enforce: false}

	for count := 1; count <= 50; count++ {
		out := rules.Apply(count)
		assert.Equal(t, DecisionWarn, out.Decision, "count %d", count)
	}
}
