package orchestrator

// Decision is the critique gate's verdict after a critique round.
type Decision string

const (
	// DecisionProceed advances to the publish stage.
	DecisionProceed Decision = "proceed"

	// DecisionRetry re-enters the delegate stage with the same enriched
	// issues.
	DecisionRetry Decision = "retry"
)

// Gate is the conditional-edge predicate after the critique stage.
//
// The verdict is proceed when every critique in a non-empty round was
// approved. Otherwise the gate retries delegation until MaxAttempts rounds
// have run, then proceeds best-effort: an unsatisfiable round (including a
// round with zero fixes, which can never be satisfactory) must not cycle
// forever.
type Gate struct {
	// MaxAttempts bounds delegate rounds. Values below 1 behave as 1.
	MaxAttempts int
}

// NewGate creates a gate with the given delegate-attempt cap.
func NewGate(maxAttempts int) *Gate {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Gate{MaxAttempts: maxAttempts}
}

// Decide is a pure function of the state's critique aggregates and attempt
// counter.
func (g *Gate) Decide(state *PipelineState) Decision {
	if state.IsSatisfactory {
		return DecisionProceed
	}
	if state.DelegateAttempts >= g.MaxAttempts {
		return DecisionProceed
	}
	return DecisionRetry
}

// Satisfactory reports whether a critique round passes the gate on merit:
// every critique approved and at least one critique present.
func Satisfactory(critiques []CritiqueRecord) bool {
	if len(critiques) == 0 {
		return false
	}
	for _, c := range critiques {
		if !c.Approved {
			return false
		}
	}
	return true
}
