package allocation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yigit/examalloc/internal/pkg/apperrors"
)

// SnapshotState is the state of the single undo slot
type SnapshotState string

const (
	SnapshotEmpty   SnapshotState = "EMPTY"
	SnapshotHolding SnapshotState = "HOLDING"
)

// ResetScope tells which reset produced a snapshot
type ResetScope string

const (
	ScopeAll      ResetScope = "all"
	ScopeExaminer ResetScope = "examiner"
)

// SnapshotEntry is one deleted edge as captured before a reset
type SnapshotEntry struct {
	EdgeID     int64 `json:"edgeId"`
	StudentID  int64 `json:"studentId"`
	ExaminerID int64 `json:"examinerId"`
}

// Snapshot is the edge set removed by the most recent reset
type Snapshot struct {
	ID         uuid.UUID       `json:"id"`
	Scope      ResetScope      `json:"scope"`
	ExaminerID *int64          `json:"examinerId,omitempty"`
	TakenAt    time.Time       `json:"takenAt"`
	Entries    []SnapshotEntry `json:"entries"`
}

// SnapshotStatus describes the undo slot without consuming it
type SnapshotStatus struct {
	Available  bool          `json:"available"`
	State      SnapshotState `json:"state"`
	SnapshotID *uuid.UUID    `json:"snapshotId,omitempty"`
	Scope      ResetScope    `json:"scope,omitempty"`
	ExaminerID *int64        `json:"examinerId,omitempty"`
	Size       int           `json:"size"`
	TakenAt    *time.Time    `json:"takenAt,omitempty"`
}

// RestoreOutcome is the per-entry result of an undo
type RestoreOutcome struct {
	Entry     SnapshotEntry `json:"entry"`
	Restored  bool          `json:"restored"`
	NewEdgeID int64         `json:"newEdgeId,omitempty"`
	Reason    string        `json:"reason,omitempty"`
}

// UndoResult aggregates the outcomes of replaying a snapshot
type UndoResult struct {
	SnapshotID    uuid.UUID        `json:"snapshotId"`
	Restored      int              `json:"restored"`
	Skipped       int              `json:"skipped"`
	Outcomes      []RestoreOutcome `json:"outcomes"`
	UndoAvailable bool             `json:"undoAvailable"`
}

// RestoreFunc recreates one edge and returns its new id
type RestoreFunc func(ctx context.Context, entry SnapshotEntry) (int64, error)

// SnapshotStore holds at most one snapshot. Capturing a new one discards the
// previous; a restore consumes it.
type SnapshotStore struct {
	mu      sync.Mutex
	current *Snapshot
	now     func() time.Time
}

// NewSnapshotStore creates an empty store
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{now: time.Now}
}

// State returns EMPTY or HOLDING
func (s *SnapshotStore) State() SnapshotState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return SnapshotEmpty
	}
	return SnapshotHolding
}

// Available reports whether an undo can be performed
func (s *SnapshotStore) Available() bool {
	return s.State() == SnapshotHolding
}

// Capture overwrites the slot with entries. An empty edge set leaves the slot
// untouched and returns false.
func (s *SnapshotStore) Capture(scope ResetScope, examinerID *int64, entries []SnapshotEntry) (Snapshot, bool) {
	if len(entries) == 0 {
		return Snapshot{}, false
	}

	snap := &Snapshot{
		ID:         uuid.New(),
		Scope:      scope,
		ExaminerID: examinerID,
		TakenAt:    s.now(),
		Entries:    append([]SnapshotEntry(nil), entries...),
	}

	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()

	return *snap, true
}

// Status describes the slot
func (s *SnapshotStore) Status() SnapshotStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return SnapshotStatus{State: SnapshotEmpty}
	}
	id := s.current.ID
	takenAt := s.current.TakenAt
	return SnapshotStatus{
		Available:  true,
		State:      SnapshotHolding,
		SnapshotID: &id,
		Scope:      s.current.Scope,
		ExaminerID: s.current.ExaminerID,
		Size:       len(s.current.Entries),
		TakenAt:    &takenAt,
	}
}

// Restore replays the held snapshot through create. Failures of individual
// entries are recorded and do not stop the pass. The slot is cleared
// afterwards whatever the outcome.
func (s *SnapshotStore) Restore(ctx context.Context, create RestoreFunc) (*UndoResult, error) {
	s.mu.Lock()
	snap := s.current
	s.current = nil
	s.mu.Unlock()

	if snap == nil {
		return nil, apperrors.ErrNothingToUndo
	}

	result := &UndoResult{
		SnapshotID: snap.ID,
		Outcomes:   make([]RestoreOutcome, 0, len(snap.Entries)),
	}
	for _, entry := range snap.Entries {
		outcome := RestoreOutcome{Entry: entry}
		id, err := create(ctx, entry)
		if err != nil {
			outcome.Reason = SkipReason(err)
			result.Skipped++
		} else {
			outcome.Restored = true
			outcome.NewEdgeID = id
			result.Restored++
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	return result, nil
}

// SkipReason names why an entry could not be restored. Unknown errors are
// described by their message.
func SkipReason(err error) string {
	switch {
	case apperrors.Is(err, apperrors.ErrAlreadyAssigned, apperrors.ErrDuplicateEdge):
		return "AlreadyAssigned"
	case errors.Is(err, apperrors.ErrStudentAtTarget):
		return "StudentAtTarget"
	case errors.Is(err, apperrors.ErrExaminerAtCapacity):
		return "ExaminerAtCapacity"
	case errors.Is(err, apperrors.ErrExaminerNotFound):
		return "ExaminerNotFound"
	case errors.Is(err, apperrors.ErrNotAnExaminer):
		return "NotAnExaminer"
	case errors.Is(err, apperrors.ErrStudentNotFound):
		return "StudentNotFound"
	default:
		return err.Error()
	}
}
