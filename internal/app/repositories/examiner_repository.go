package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/examalloc/internal/app/models"
	"github.com/yigit/examalloc/internal/db"
	"github.com/yigit/examalloc/internal/pkg/apperrors"
	"github.com/yigit/examalloc/internal/pkg/logger"
)

const currentLoadColumn = "(SELECT COUNT(*) FROM examiner_assignments a WHERE a.examiner_id = u.id) AS current_load"

// ExaminerRepository reads examiners and maintains their capacities
type ExaminerRepository struct {
	db *pgxpool.Pool
	tx *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewExaminerRepository creates a new ExaminerRepository
func NewExaminerRepository(pool *pgxpool.Pool) *ExaminerRepository {
	return &ExaminerRepository{
		db: pool,
		tx: &db.PostgresDB{Pool: pool},
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListExaminers returns every instructor with capacity and current load, ordered by ID
func (r *ExaminerRepository) ListExaminers(ctx context.Context) ([]models.Examiner, error) {
	sql, args, err := r.sb.Select(
		"u.id", "CONCAT_WS(' ', u.first_name, u.last_name)", "u.email", "c.capacity", currentLoadColumn,
	).
		From("users u").
		LeftJoin("examiner_capacities c ON c.user_id = u.id").
		Where(squirrel.Eq{"u.role_type": string(models.RoleInstructor)}).
		OrderBy("u.id ASC").
		ToSql()

	if err != nil {
		logger.Error().Err(err).Msg("Error building list examiners SQL")
		return nil, fmt.Errorf("failed to build list examiners query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list examiners query")
		return nil, fmt.Errorf("error querying examiners: %w", err)
	}
	defer rows.Close()

	examiners := []models.Examiner{}
	for rows.Next() {
		var e models.Examiner
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.Capacity, &e.CurrentLoad); err != nil {
			logger.Error().Err(err).Msg("Error scanning examiner row")
			return nil, fmt.Errorf("error scanning examiner row: %w", err)
		}
		examiners = append(examiners, e)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating examiner rows")
		return nil, fmt.Errorf("error iterating examiner rows: %w", err)
	}

	return examiners, nil
}

// GetExaminer retrieves one examiner. A user that exists with another role
// yields ErrNotAnExaminer.
func (r *ExaminerRepository) GetExaminer(ctx context.Context, id int64) (*models.Examiner, error) {
	return r.getExaminer(ctx, r.db, id, "")
}

func (r *ExaminerRepository) getExaminer(ctx context.Context, q querier, id int64, suffix string) (*models.Examiner, error) {
	builder := r.sb.Select(
		"u.id", "CONCAT_WS(' ', u.first_name, u.last_name)", "u.email", "u.role_type", "c.capacity", currentLoadColumn,
	).
		From("users u").
		LeftJoin("examiner_capacities c ON c.user_id = u.id").
		Where(squirrel.Eq{"u.id": id}).
		Limit(1)
	if suffix != "" {
		builder = builder.Suffix(suffix)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get examiner SQL")
		return nil, fmt.Errorf("failed to build get examiner query: %w", err)
	}

	var (
		e    models.Examiner
		role string
	)
	err = q.QueryRow(ctx, sql, args...).Scan(&e.ID, &e.Name, &e.Email, &role, &e.Capacity, &e.CurrentLoad)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrExaminerNotFound
		}
		logger.Error().Err(err).Int64("examinerID", id).Msg("Error scanning examiner row")
		return nil, fmt.Errorf("error retrieving examiner: %w", err)
	}

	if models.RoleType(role) != models.RoleInstructor {
		return nil, fmt.Errorf("%w: user %d has role %s", apperrors.ErrNotAnExaminer, id, role)
	}

	return &e, nil
}

// SetExaminerCapacity stores a capacity for the examiner. The examiner row is
// locked while the current load is re-checked, so the stored capacity never
// drops below committed assignments.
func (r *ExaminerRepository) SetExaminerCapacity(ctx context.Context, id int64, value int) error {
	return r.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		examiner, err := r.getExaminer(ctx, tx, id, "FOR UPDATE OF u")
		if err != nil {
			return err
		}
		if value < examiner.CurrentLoad {
			return fmt.Errorf("%w: load %d, requested %d", apperrors.ErrBelowCurrentLoad, examiner.CurrentLoad, value)
		}

		sql, args, err := r.sb.Insert("examiner_capacities").
			Columns("user_id", "capacity", "updated_at").
			Values(id, value, squirrel.Expr("NOW()")).
			Suffix("ON CONFLICT (user_id) DO UPDATE SET capacity = EXCLUDED.capacity, updated_at = EXCLUDED.updated_at").
			ToSql()
		if err != nil {
			logger.Error().Err(err).Msg("Error building set capacity SQL")
			return fmt.Errorf("failed to build set capacity query: %w", err)
		}

		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			logger.Error().Err(err).Int64("examinerID", id).Int("capacity", value).Msg("Error executing set capacity query")
			return fmt.Errorf("error setting examiner capacity: %w", err)
		}

		logger.Info().Int64("examinerID", id).Int("capacity", value).Msg("Examiner capacity updated")
		return nil
	})
}
