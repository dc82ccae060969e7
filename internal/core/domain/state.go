package domain

import "time"

// State is a pipeline state for one invocation.
type State string

// Pipeline states. Rejected and Failed are terminal and reachable from every
// non-terminal state.
const (
	StateReceived          State = "received"
	StateClassified        State = "classified"
	StateHierarchyResolved State = "hierarchy_resolved"
	StateChecked           State = "checked"
	StatePublished         State = "published"
	StateDone              State = "done"
	StateRejected          State = "rejected"
	StateFailed            State = "failed"
)

// IsTerminal returns true for Done, Rejected and Failed.
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateRejected || s == StateFailed
}

// String returns the string representation.
func (s State) String() string {
	return string(s)
}

// next maps each forward state onto its successor.
var next = map[State]State{
	StateReceived:          StateClassified,
	StateClassified:        StateHierarchyResolved,
	StateHierarchyResolved: StateChecked,
	StateChecked:           StatePublished,
	StatePublished:         StateDone,
}

// Next returns the forward successor of s, or false if s has none.
func (s State) Next() (State, bool) {
	n, ok := next[s]
	return n, ok
}

// CanTransition reports whether from -> to is a legal transition.
func CanTransition(from, to State) bool {
	if from.IsTerminal() {
		return false
	}
	if to == StateRejected || to == StateFailed {
		return true
	}
	n, ok := from.Next()
	return ok && n == to
}

// Outcome is the terminal result of one invocation.
type Outcome struct {
	// ID identifies the invocation.
	ID string

	// File is the processed file.
	File *IncomingFile

	// Handler names the handler family.
	Handler string

	// State is the terminal state.
	State State

	// Stage is the stage at which the invocation stopped: the state it was
	// attempting to enter when it failed, or StateDone on success.
	Stage State

	// Classification is set once the classifier ran.
	Classification Classification

	// Path is set once the hierarchy was resolved.
	Path HierarchyPath

	// Checks is set once the checker ran.
	Checks CheckOutcome

	// Record is set once a publish was attempted.
	Record *PublishRecord

	// Err is the terminal failure, nil on Done.
	Err *StageError

	// StartedAt and FinishedAt bound the invocation.
	StartedAt  time.Time
	FinishedAt time.Time
}

// Succeeded reports whether the invocation reached Done.
func (o *Outcome) Succeeded() bool {
	return o.State == StateDone
}
