package harness

// Outcome values recorded on trace events.
const (
	OutcomeOK           = "ok"
	OutcomeNotFound     = "not_found"
	OutcomePrecondition = "precondition"
	OutcomeValidation   = "validation"
	OutcomeFailed       = "failed"
)

// TraceEvent records one executed step: what was asked of the ledger
// and what came back.
type TraceEvent struct {
	Seq     int64             `json:"seq"`
	Op      string            `json:"op"`
	Book    string            `json:"book,omitempty"`
	Args    map[string]string `json:"args,omitempty"`
	Outcome string            `json:"outcome"`
	Result  map[string]string `json:"result,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every step expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per executed step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation and assertion failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an event to the trace.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}

// Last returns the most recent trace event, or nil for an empty trace.
func (r *Result) Last() *TraceEvent {
	if len(r.Trace) == 0 {
		return nil
	}
	return &r.Trace[len(r.Trace)-1]
}
