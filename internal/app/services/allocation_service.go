package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yigit/examalloc/internal/app/allocation"
	"github.com/yigit/examalloc/internal/app/models"
	"github.com/yigit/examalloc/internal/pkg/apperrors"
	"github.com/yigit/examalloc/internal/pkg/metrics"
)

// AllocationStore is the data-access port the allocation service reads the
// roster through and writes assignment edges back to
type AllocationStore interface {
	ListExaminers(ctx context.Context) ([]models.Examiner, error)
	ListStudentsNeedingExaminers(ctx context.Context, target int) ([]models.Student, error)
	GetStudent(ctx context.Context, id int64) (*models.Student, error)
	GetExaminer(ctx context.Context, id int64) (*models.Examiner, error)
	CreateEdge(ctx context.Context, studentID, examinerID int64) (int64, error)
	DeleteEdge(ctx context.Context, edgeID int64) error
	// DeleteEdgesByExaminer and DeleteAllEdges return exactly the rows they removed.
	DeleteEdgesByExaminer(ctx context.Context, examinerID int64) ([]models.Assignment, error)
	DeleteAllEdges(ctx context.Context) ([]models.Assignment, error)
	ListEdges(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, error)
	SetExaminerCapacity(ctx context.Context, id int64, value int) error
}

// AllocationPolicy carries the configurable rules of the allocation service
type AllocationPolicy struct {
	TargetExaminers int
	DefaultCapacity int
	MinCapacity     int
	MaxCapacity     int
	// SerializeResets guards reset and undo with a mutex so concurrent callers
	// cannot lose a snapshot to an interleaved reset.
	SerializeResets bool
}

// AutoAssignResult is the outcome of an auto-assign run
type AutoAssignResult struct {
	RunID    uuid.UUID              `json:"runId"`
	Created  []models.Assignment    `json:"created"`
	Count    int                    `json:"count"`
	Unfilled []allocation.Shortfall `json:"unfilled,omitempty"`
}

// ResetResult is the outcome of a reset
type ResetResult struct {
	Deleted       int64      `json:"deleted"`
	UndoAvailable bool       `json:"undoAvailable"`
	SnapshotID    *uuid.UUID `json:"snapshotId,omitempty"`
}

// AllocationService defines the examiner allocation operations
type AllocationService interface {
	GetCapacityReport(ctx context.Context) (*allocation.CapacityReport, error)
	RunAutoAssign(ctx context.Context) (*AutoAssignResult, error)
	ValidateAssignment(ctx context.Context, examinerID int64, studentIDs []int64) (*allocation.Verdict, error)
	ManualAssign(ctx context.Context, studentID, examinerID int64) (*models.Assignment, error)
	RemoveAssignment(ctx context.Context, edgeID int64) error
	ListAssignments(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, error)
	ResetAll(ctx context.Context) (*ResetResult, error)
	ResetExaminer(ctx context.Context, examinerID int64) (*ResetResult, error)
	UndoLastReset(ctx context.Context) (*allocation.UndoResult, error)
	GetUndoStatus(ctx context.Context) allocation.SnapshotStatus
	UpdateExaminerCapacity(ctx context.Context, examinerID int64, newCapacity int) (*models.Examiner, error)
}

// allocationServiceImpl implements the AllocationService interface
type allocationServiceImpl struct {
	store     AllocationStore
	engine    *allocation.Engine
	snapshots *allocation.SnapshotStore
	policy    AllocationPolicy
	metrics   metrics.Recorder
	logger    zerolog.Logger
	resetMu   sync.Mutex
	now       func() time.Time
}

// NewAllocationService creates a new allocation service instance
func NewAllocationService(
	store AllocationStore,
	snapshots *allocation.SnapshotStore,
	policy AllocationPolicy,
	recorder metrics.Recorder,
	logger zerolog.Logger,
) AllocationService {
	if recorder == nil {
		recorder = metrics.NewNop()
	}
	if snapshots == nil {
		snapshots = allocation.NewSnapshotStore()
	}
	engine := allocation.NewEngine(policy.TargetExaminers)
	policy.TargetExaminers = engine.Target()

	return &allocationServiceImpl{
		store:     store,
		engine:    engine,
		snapshots: snapshots,
		policy:    policy,
		metrics:   recorder,
		logger:    logger.With().Str("component", "allocation").Logger(),
		now:       time.Now,
	}
}

func validateID(id int64, what string) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid %s ID", apperrors.ErrValidationFailed, what)
	}
	return nil
}

// GetCapacityReport returns per-examiner capacity figures and their summary
func (s *allocationServiceImpl) GetCapacityReport(ctx context.Context) (*allocation.CapacityReport, error) {
	examiners, err := s.store.ListExaminers(ctx)
	if err != nil {
		return nil, fmt.Errorf("error retrieving examiners: %w", err)
	}

	report, err := allocation.Calculate(examiners, s.policy.DefaultCapacity)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// RunAutoAssign brings every student up to the target examiner count
func (s *allocationServiceImpl) RunAutoAssign(ctx context.Context) (*AutoAssignResult, error) {
	started := s.now()
	runID := uuid.New()
	log := s.logger.With().Str("runID", runID.String()).Logger()

	result, outcome, err := s.runAutoAssign(ctx, runID, log)
	unfilled := 0
	if result != nil {
		unfilled = len(result.Unfilled)
		s.metrics.AssignmentsCreated(metrics.SourceAuto, result.Count)
	}
	s.metrics.AutoAssignRun(outcome, unfilled, s.now().Sub(started))
	return result, err
}

func (s *allocationServiceImpl) runAutoAssign(ctx context.Context, runID uuid.UUID, log zerolog.Logger) (*AutoAssignResult, string, error) {
	report, err := s.GetCapacityReport(ctx)
	if err != nil {
		return nil, metrics.OutcomeError, err
	}

	students, err := s.store.ListStudentsNeedingExaminers(ctx, s.engine.Target())
	if err != nil {
		return nil, metrics.OutcomeError, fmt.Errorf("error retrieving students: %w", err)
	}

	plan, err := s.engine.Plan(students, report.Examiners)
	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientExaminers) {
			log.Warn().Err(err).Int("students", len(students)).Msg("Auto-assign refused")
			return nil, metrics.OutcomeInsufficient, err
		}
		return nil, metrics.OutcomeError, err
	}

	result := &AutoAssignResult{
		RunID:    runID,
		Created:  make([]models.Assignment, 0, plan.Count()),
		Unfilled: plan.Unfilled,
	}
	if plan.Count() == 0 {
		log.Info().Msg("Auto-assign found every student at target")
		return result, metrics.OutcomeNoop, nil
	}

	for _, edge := range plan.Edges {
		id, err := s.store.CreateEdge(ctx, edge.StudentID, edge.ExaminerID)
		if err != nil {
			if errors.Is(err, apperrors.ErrDuplicateEdge) {
				// A manual assignment landed between the read and this write.
				log.Warn().Int64("studentID", edge.StudentID).Int64("examinerID", edge.ExaminerID).Msg("Assignment already exists, skipping")
				continue
			}
			log.Error().Err(err).Int("created", len(result.Created)).Msg("Auto-assign aborted while persisting")
			result.Count = len(result.Created)
			return result, metrics.OutcomeError, fmt.Errorf("error persisting assignment: %w", err)
		}
		result.Created = append(result.Created, models.Assignment{
			ID:         id,
			StudentID:  edge.StudentID,
			ExaminerID: edge.ExaminerID,
			CreatedAt:  s.now(),
		})
	}
	result.Count = len(result.Created)

	log.Info().
		Int("created", result.Count).
		Int("students", plan.StudentsConsidered).
		Int("unfilled", len(result.Unfilled)).
		Msg("Auto-assign completed")
	return result, metrics.OutcomeSuccess, nil
}

// ValidateAssignment checks whether the given students fit within the examiner's
// capacity. Duplicate ids and students already assigned to the examiner do not
// count towards the requested number.
func (s *allocationServiceImpl) ValidateAssignment(ctx context.Context, examinerID int64, studentIDs []int64) (*allocation.Verdict, error) {
	if err := validateID(examinerID, "examiner"); err != nil {
		return nil, err
	}
	if len(studentIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one student ID is required", apperrors.ErrValidationFailed)
	}

	unique := make(map[int64]struct{}, len(studentIDs))
	for _, id := range studentIDs {
		if err := validateID(id, "student"); err != nil {
			return nil, err
		}
		unique[id] = struct{}{}
	}

	stat, err := s.examinerStat(ctx, examinerID)
	if err != nil {
		return nil, err
	}

	current, err := s.store.ListEdges(ctx, models.AssignmentFilter{ExaminerID: examinerID})
	if err != nil {
		return nil, fmt.Errorf("error retrieving assignments: %w", err)
	}
	already := 0
	for _, edge := range current {
		if _, ok := unique[edge.StudentID]; ok {
			delete(unique, edge.StudentID)
			already++
		}
	}

	verdict := allocation.Validate(stat, len(unique))
	verdict.AlreadyAssigned = already
	return &verdict, nil
}

func (s *allocationServiceImpl) examinerStat(ctx context.Context, examinerID int64) (allocation.CapacityStat, error) {
	examiner, err := s.store.GetExaminer(ctx, examinerID)
	if err != nil {
		return allocation.CapacityStat{}, err
	}
	return allocation.Annotate(*examiner, s.policy.DefaultCapacity)
}

// ManualAssign creates one assignment after passing the validation gate
func (s *allocationServiceImpl) ManualAssign(ctx context.Context, studentID, examinerID int64) (*models.Assignment, error) {
	if err := validateID(studentID, "student"); err != nil {
		return nil, err
	}
	if err := validateID(examinerID, "examiner"); err != nil {
		return nil, err
	}

	id, err := s.admit(ctx, studentID, examinerID)
	if err != nil {
		return nil, err
	}
	s.metrics.AssignmentsCreated(metrics.SourceManual, 1)

	s.logger.Info().Int64("assignmentID", id).Int64("studentID", studentID).Int64("examinerID", examinerID).Msg("Manual assignment created")
	return &models.Assignment{ID: id, StudentID: studentID, ExaminerID: examinerID, CreatedAt: s.now()}, nil
}

// admit creates the (student, examiner) edge if it passes the manual-assign
// checks against the roster as currently stored.
func (s *allocationServiceImpl) admit(ctx context.Context, studentID, examinerID int64) (int64, error) {
	stat, err := s.examinerStat(ctx, examinerID)
	if err != nil {
		return 0, err
	}
	student, err := s.store.GetStudent(ctx, studentID)
	if err != nil {
		return 0, err
	}

	if student.HasExaminer(examinerID) {
		return 0, apperrors.ErrAlreadyAssigned
	}
	if len(student.AssignedExaminerIDs) >= s.engine.Target() {
		return 0, apperrors.NewCustomError(apperrors.ErrStudentAtTarget,
			fmt.Sprintf("student already has %d examiner(s)", len(student.AssignedExaminerIDs)),
		).WithDetails(map[string]interface{}{
			"assigned": len(student.AssignedExaminerIDs),
			"target":   s.engine.Target(),
		})
	}
	if verdict := allocation.Validate(stat, 1); !verdict.Valid {
		return 0, apperrors.NewCustomError(apperrors.ErrExaminerAtCapacity,
			fmt.Sprintf("examiner is at %d/%d", verdict.CurrentLoad, verdict.Capacity),
		).WithDetails(map[string]interface{}{
			"currentLoad": verdict.CurrentLoad,
			"capacity":    verdict.Capacity,
		})
	}

	id, err := s.store.CreateEdge(ctx, studentID, examinerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEdge) {
			return 0, apperrors.ErrAlreadyAssigned
		}
		return 0, fmt.Errorf("error creating assignment: %w", err)
	}
	return id, nil
}

// RemoveAssignment deletes one assignment
func (s *allocationServiceImpl) RemoveAssignment(ctx context.Context, edgeID int64) error {
	if err := validateID(edgeID, "assignment"); err != nil {
		return err
	}

	if err := s.store.DeleteEdge(ctx, edgeID); err != nil {
		if errors.Is(err, apperrors.ErrAssignmentNotFound) {
			return apperrors.ErrAssignmentNotFound
		}
		return fmt.Errorf("error deleting assignment: %w", err)
	}
	s.metrics.AssignmentsDeleted(metrics.ScopeSingle, 1)
	return nil
}

// ListAssignments lists current assignments, optionally narrowed by examiner or student
func (s *allocationServiceImpl) ListAssignments(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, error) {
	if filter.ExaminerID < 0 || filter.StudentID < 0 {
		return nil, fmt.Errorf("%w: filter IDs must be positive", apperrors.ErrValidationFailed)
	}

	assignments, err := s.store.ListEdges(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error retrieving assignments: %w", err)
	}
	return assignments, nil
}

// ResetAll deletes every assignment, keeping them for one undo
func (s *allocationServiceImpl) ResetAll(ctx context.Context) (*ResetResult, error) {
	s.lockResets()
	defer s.unlockResets()

	return s.reset(ctx, allocation.ScopeAll, nil, func(ctx context.Context) ([]models.Assignment, error) {
		return s.store.DeleteAllEdges(ctx)
	})
}

// ResetExaminer deletes every assignment of one examiner, keeping them for one undo
func (s *allocationServiceImpl) ResetExaminer(ctx context.Context, examinerID int64) (*ResetResult, error) {
	if err := validateID(examinerID, "examiner"); err != nil {
		return nil, err
	}
	if _, err := s.store.GetExaminer(ctx, examinerID); err != nil {
		return nil, err
	}

	s.lockResets()
	defer s.unlockResets()

	return s.reset(ctx, allocation.ScopeExaminer, &examinerID, func(ctx context.Context) ([]models.Assignment, error) {
		return s.store.DeleteEdgesByExaminer(ctx, examinerID)
	})
}

// reset deletes the scope's edges and captures exactly the deleted rows. The
// slot is only replaced once the delete has succeeded.
func (s *allocationServiceImpl) reset(
	ctx context.Context,
	scope allocation.ResetScope,
	examinerID *int64,
	deleteFn func(ctx context.Context) ([]models.Assignment, error),
) (*ResetResult, error) {
	edges, err := deleteFn(ctx)
	if err != nil {
		return nil, fmt.Errorf("error deleting assignments: %w", err)
	}
	if len(edges) == 0 {
		return &ResetResult{UndoAvailable: s.snapshots.Available()}, nil
	}

	entries := make([]allocation.SnapshotEntry, len(edges))
	for i, e := range edges {
		entries[i] = allocation.SnapshotEntry{EdgeID: e.ID, StudentID: e.StudentID, ExaminerID: e.ExaminerID}
	}
	snap, _ := s.snapshots.Capture(scope, examinerID, entries)
	deleted := int64(len(edges))
	s.metrics.AssignmentsDeleted(string(scope), deleted)

	s.logger.Info().
		Str("scope", string(scope)).
		Str("snapshotID", snap.ID.String()).
		Int64("deleted", deleted).
		Msg("Assignments reset")
	return &ResetResult{Deleted: deleted, UndoAvailable: true, SnapshotID: &snap.ID}, nil
}

// UndoLastReset recreates the assignments removed by the most recent reset.
// Each edge goes through the manual-assign checks against the roster as it is
// now, so an undo never overloads an examiner or pushes a student past the
// target; entries that fail are reported as skipped.
func (s *allocationServiceImpl) UndoLastReset(ctx context.Context) (*allocation.UndoResult, error) {
	s.lockResets()
	defer s.unlockResets()

	result, err := s.snapshots.Restore(ctx, func(ctx context.Context, entry allocation.SnapshotEntry) (int64, error) {
		return s.admit(ctx, entry.StudentID, entry.ExaminerID)
	})
	if err != nil {
		return nil, err
	}
	result.UndoAvailable = s.snapshots.Available()

	s.metrics.AssignmentsCreated(metrics.SourceUndo, result.Restored)
	s.metrics.UndoCompleted(result.Restored, result.Skipped)

	event := s.logger.Info()
	if result.Skipped > 0 {
		event = s.logger.Warn()
	}
	event.Str("snapshotID", result.SnapshotID.String()).
		Int("restored", result.Restored).
		Int("skipped", result.Skipped).
		Msg("Reset undone")
	return result, nil
}

// GetUndoStatus describes whether an undo is available
func (s *allocationServiceImpl) GetUndoStatus(_ context.Context) allocation.SnapshotStatus {
	return s.snapshots.Status()
}

// UpdateExaminerCapacity stores a new capacity for an examiner
func (s *allocationServiceImpl) UpdateExaminerCapacity(ctx context.Context, examinerID int64, newCapacity int) (*models.Examiner, error) {
	if err := validateID(examinerID, "examiner"); err != nil {
		return nil, err
	}
	if newCapacity < s.policy.MinCapacity || newCapacity > s.policy.MaxCapacity {
		return nil, apperrors.NewCustomError(apperrors.ErrCapacityOutOfRange,
			fmt.Sprintf("capacity must be between %d and %d", s.policy.MinCapacity, s.policy.MaxCapacity),
		).WithDetails(map[string]interface{}{
			"min":       s.policy.MinCapacity,
			"max":       s.policy.MaxCapacity,
			"requested": newCapacity,
		})
	}

	examiner, err := s.store.GetExaminer(ctx, examinerID)
	if err != nil {
		return nil, err
	}
	if newCapacity < examiner.CurrentLoad {
		return nil, belowLoadError(examiner.CurrentLoad, newCapacity)
	}

	if err := s.store.SetExaminerCapacity(ctx, examinerID, newCapacity); err != nil {
		// the examiner may have changed between the read and the locked write
		if apperrors.Is(err, apperrors.ErrBelowCurrentLoad, apperrors.ErrExaminerNotFound, apperrors.ErrNotAnExaminer) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating examiner capacity: %w", err)
	}

	examiner.Capacity = &newCapacity
	s.logger.Info().Int64("examinerID", examinerID).Int("capacity", newCapacity).Msg("Examiner capacity changed")
	return examiner, nil
}

func belowLoadError(load, requested int) error {
	return apperrors.NewCustomError(apperrors.ErrBelowCurrentLoad,
		fmt.Sprintf("examiner already has %d assignment(s), capacity %d is too low", load, requested),
	).WithDetails(map[string]interface{}{
		"currentLoad": load,
		"requested":   requested,
	})
}

func (s *allocationServiceImpl) lockResets() {
	if s.policy.SerializeResets {
		s.resetMu.Lock()
	}
}

func (s *allocationServiceImpl) unlockResets() {
	if s.policy.SerializeResets {
		s.resetMu.Unlock()
	}
}
