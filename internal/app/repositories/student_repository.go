package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/examalloc/internal/app/models"
	"github.com/yigit/examalloc/internal/pkg/apperrors"
	"github.com/yigit/examalloc/internal/pkg/logger"
)

// StudentRepository reads students together with their assigned examiners
type StudentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// selectStudents builds the base query. Examiner ids are aggregated in the
// order the assignments were made.
func (r *StudentRepository) selectStudents() squirrel.SelectBuilder {
	return r.sb.Select(
		"u.id",
		"CONCAT_WS(' ', u.first_name, u.last_name)",
		"s.identifier",
		"COALESCE(array_agg(a.examiner_id ORDER BY a.created_at, a.id) FILTER (WHERE a.id IS NOT NULL), '{}'::bigint[])",
	).
		From("users u").
		Join("students s ON s.user_id = u.id").
		LeftJoin("examiner_assignments a ON a.student_id = u.id").
		Where(squirrel.Eq{"u.role_type": string(models.RoleStudent)}).
		GroupBy("u.id", "u.first_name", "u.last_name", "s.identifier")
}

// ListStudentsNeedingExaminers returns students with fewer than target examiners, ordered by ID
func (r *StudentRepository) ListStudentsNeedingExaminers(ctx context.Context, target int) ([]models.Student, error) {
	sql, args, err := r.selectStudents().
		Having("COUNT(a.id) < ?", target).
		OrderBy("u.id ASC").
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building list students needing examiners SQL")
		return nil, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int("target", target).Msg("Error executing list students query")
		return nil, fmt.Errorf("error querying students: %w", err)
	}
	defer rows.Close()

	students := []models.Student{}
	for rows.Next() {
		var s models.Student
		if err := rows.Scan(&s.ID, &s.Name, &s.Identifier, &s.AssignedExaminerIDs); err != nil {
			logger.Error().Err(err).Msg("Error scanning student row")
			return nil, fmt.Errorf("error scanning student row: %w", err)
		}
		students = append(students, s)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating student rows")
		return nil, fmt.Errorf("error iterating student rows: %w", err)
	}

	return students, nil
}

// GetStudent retrieves a student by user ID
func (r *StudentRepository) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	sql, args, err := r.selectStudents().
		Where(squirrel.Eq{"u.id": id}).
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building get student SQL")
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	var s models.Student
	err = r.db.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.Name, &s.Identifier, &s.AssignedExaminerIDs)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Int64("studentID", id).Msg("Error scanning student row")
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}

	return &s, nil
}
