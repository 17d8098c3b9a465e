package violation

// Decision is the policy verdict for a given violation count.
type Decision string

const (
	DecisionContinue    Decision = "CONTINUE"
	DecisionWarn        Decision = "WARN"
	DecisionForceSubmit Decision = "FORCE_SUBMIT"
)

// Outcome pairs a decision with the warning budget left before forced
// submission. RemainingWarnings is meaningful only for DecisionWarn.
type Outcome struct {
	Decision          Decision
	RemainingWarnings int
}

// Evaluate maps a violation count against a threshold. Pure function, no
// side effects: counts in [1, threshold] warn, counts above it force
// submission. A zero count is not a violation at all.
func Evaluate(count, threshold int) Outcome {
	if count <= 0 {
		return Outcome{Decision: DecisionContinue}
	}
	if count <= threshold {
		return Outcome{
			Decision:          DecisionWarn,
			RemainingWarnings: threshold - count + 1,
		}
	}
	return Outcome{Decision: DecisionForceSubmit}
}

// Rules is the per-assessment-mode policy configuration. Enforce selects
// whether exceeding the threshold forces submission (coding test) or the
// count stays advisory and the timer is the hard stop (aptitude test).
type Rules struct {
	Threshold int
	Enforce   bool
}

// Apply evaluates count under the rules. With Enforce disabled a
// force-submit verdict is downgraded to a warning.
func (r Rules) Apply(count int) Outcome {
	out := Evaluate(count, r.Threshold)
	if out.Decision == DecisionForceSubmit && !r.Enforce {
		return Outcome{Decision: DecisionWarn}
	}
	return out
}
