package job

import "fmt"

// legalTransitions enumerates the state machine from spec: the map key is the
// source status, the value set is every status it may move to directly.
var legalTransitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusInProgress: true,
		StatusCancelled:  true,
	},
	StatusInProgress: {
		StatusCompleted: true,
		StatusRetry:     true,
		StatusFailed:    true,
	},
	StatusRetry: {
		StatusPending:   true,
		StatusCancelled: true,
	},
	StatusCompleted: {},
	StatusFailed:    {},
	StatusCancelled: {},
}

// TransitionError reports an illegal status move. The caller's state is left
// unchanged.
type TransitionError struct {
	From, To Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal transition %s -> %s", e.From, e.To)
}

// Transition validates (and does not itself apply) a status move, returning
// an error for anything not in legalTransitions.
func Transition(from, to Status) error {
	next, ok := legalTransitions[from]
	if !ok || !next[to] {
		return &TransitionError{From: from, To: to}
	}
	return nil
}
