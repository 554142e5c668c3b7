package repositories

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/examalloc/internal/app/models"
	"github.com/yigit/examalloc/internal/pkg/apperrors"
	"github.com/yigit/examalloc/internal/pkg/dberrors"
	"github.com/yigit/examalloc/internal/pkg/logger"
)

const assignmentPairConstraint = "examiner_assignments_student_examiner_key"

// AssignmentRepository handles examiner assignment edges
type AssignmentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAssignmentRepository creates a new AssignmentRepository
func NewAssignmentRepository(db *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateEdge inserts a (student, examiner) assignment and returns its ID
func (r *AssignmentRepository) CreateEdge(ctx context.Context, studentID, examinerID int64) (int64, error) {
	sql, args, err := r.sb.Insert("examiner_assignments").
		Columns("student_id", "examiner_id").
		Values(studentID, examinerID).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building create assignment SQL")
		return 0, fmt.Errorf("failed to build create assignment query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsDuplicateConstraintError(err, assignmentPairConstraint) {
			return 0, apperrors.ErrDuplicateEdge
		}
		if dberrors.IsForeignKeyViolation(err) {
			return 0, apperrors.NewResourceNotFoundError(fmt.Sprintf("student %d or examiner %d no longer exists", studentID, examinerID))
		}
		logger.Error().Err(err).Int64("studentID", studentID).Int64("examinerID", examinerID).Msg("Error executing create assignment query")
		return 0, fmt.Errorf("error creating assignment: %w", err)
	}

	return id, nil
}

// DeleteEdge removes a single assignment
func (r *AssignmentRepository) DeleteEdge(ctx context.Context, edgeID int64) error {
	n, err := r.delete(ctx, squirrel.Eq{"id": edgeID})
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.ErrAssignmentNotFound
	}
	return nil
}

// DeleteEdgesByExaminer removes every assignment of one examiner and returns
// the removed rows
func (r *AssignmentRepository) DeleteEdgesByExaminer(ctx context.Context, examinerID int64) ([]models.Assignment, error) {
	return r.deleteReturning(ctx, squirrel.Eq{"examiner_id": examinerID})
}

// DeleteAllEdges removes every assignment and returns the removed rows
func (r *AssignmentRepository) DeleteAllEdges(ctx context.Context) ([]models.Assignment, error) {
	return r.deleteReturning(ctx, nil)
}

func (r *AssignmentRepository) delete(ctx context.Context, where squirrel.Sqlizer) (int64, error) {
	sql, args, err := r.sb.Delete("examiner_assignments").Where(where).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete assignment SQL")
		return 0, fmt.Errorf("failed to build delete assignment query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing delete assignment query")
		return 0, fmt.Errorf("error deleting assignment: %w", err)
	}

	return cmdTag.RowsAffected(), nil
}

// deleteReturning removes the matching rows in one statement, so the returned
// set is exactly what was deleted.
func (r *AssignmentRepository) deleteReturning(ctx context.Context, where squirrel.Sqlizer) ([]models.Assignment, error) {
	builder := r.sb.Delete("examiner_assignments").
		Suffix("RETURNING id, student_id, examiner_id, created_at")
	if where != nil {
		builder = builder.Where(where)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete assignments SQL")
		return nil, fmt.Errorf("failed to build delete assignments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing delete assignments query")
		return nil, fmt.Errorf("error deleting assignments: %w", err)
	}

	deleted, err := scanAssignments(rows)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(deleted, func(a, b models.Assignment) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return deleted, nil
}

// ListEdges lists assignments matching filter in creation order
func (r *AssignmentRepository) ListEdges(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, error) {
	builder := r.sb.Select("id", "student_id", "examiner_id", "created_at").
		From("examiner_assignments").
		OrderBy("created_at ASC", "id ASC")
	if filter.ExaminerID > 0 {
		builder = builder.Where(squirrel.Eq{"examiner_id": filter.ExaminerID})
	}
	if filter.StudentID > 0 {
		builder = builder.Where(squirrel.Eq{"student_id": filter.StudentID})
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list assignments SQL")
		return nil, fmt.Errorf("failed to build list assignments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list assignments query")
		return nil, fmt.Errorf("error querying assignments: %w", err)
	}
	return scanAssignments(rows)
}

func scanAssignments(rows pgx.Rows) ([]models.Assignment, error) {
	defer rows.Close()

	assignments := []models.Assignment{}
	for rows.Next() {
		var a models.Assignment
		if err := rows.Scan(&a.ID, &a.StudentID, &a.ExaminerID, &a.CreatedAt); err != nil {
			logger.Error().Err(err).Msg("Error scanning assignment row")
			return nil, fmt.Errorf("error scanning assignment row: %w", err)
		}
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating assignment rows")
		return nil, fmt.Errorf("error iterating assignment rows: %w", err)
	}

	return assignments, nil
}
