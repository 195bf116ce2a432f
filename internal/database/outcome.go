package database

// OutcomeKind classifies how a reconciliation routine ended.
type OutcomeKind int

const (
	// OutcomeOK means the routine converged successfully.
	OutcomeOK OutcomeKind = iota
	// OutcomeRecoverable means the routine failed but the failure was
	// handled locally; initialization may still be reported successful
	// by routines that choose to swallow it.
	OutcomeRecoverable
	// OutcomeFatal means the routine failed in a way that must fail
	// the whole initialization pass.
	OutcomeFatal
)

// Outcome is the result of one reconciliation routine. The fatal /
// non-fatal distinction is an explicit variant rather than a
// catch-site decision, so the orchestrator aggregates uniformly.
type Outcome struct {
	Routine string
	Kind    OutcomeKind
	Err     error
}

// OK reports whether the routine converged.
func (o Outcome) OK() bool {
	return o.Kind == OutcomeOK
}
