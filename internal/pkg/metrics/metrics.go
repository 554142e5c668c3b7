// Package metrics instruments allocation operations.
package metrics

import "time"

// Assignment sources
const (
	SourceAuto   = "auto"
	SourceManual = "manual"
	SourceUndo   = "undo"
)

// Deletion scopes
const (
	ScopeAll      = "all"
	ScopeExaminer = "examiner"
	ScopeSingle   = "single"
)

// Auto-assign run outcomes
const (
	OutcomeSuccess      = "success"
	OutcomeNoop         = "noop"
	OutcomeInsufficient = "insufficient"
	OutcomeError        = "error"
)

// Recorder receives allocation events. Implementations must be safe for
// concurrent use.
type Recorder interface {
	AssignmentsCreated(source string, n int)
	AssignmentsDeleted(scope string, n int64)
	AutoAssignRun(outcome string, unfilled int, elapsed time.Duration)
	UndoCompleted(restored, skipped int)
}

// Nop discards every event
type Nop struct{}

var _ Recorder = Nop{}

// NewNop returns a Recorder that does nothing
func NewNop() Nop { return Nop{} }

func (Nop) AssignmentsCreated(string, int)           {}
func (Nop) AssignmentsDeleted(string, int64)         {}
func (Nop) AutoAssignRun(string, int, time.Duration) {}
func (Nop) UndoCompleted(int, int)                   {}
