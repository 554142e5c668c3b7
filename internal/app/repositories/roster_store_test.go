package repositories

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/yigit/examalloc/internal/app/migrations"
	"github.com/yigit/examalloc/internal/app/models"
	"github.com/yigit/examalloc/internal/pkg/apperrors"
)

// testDatabaseEnv names a disposable Postgres database. Its tables are truncated.
const testDatabaseEnv = "EXAMALLOC_TEST_DATABASE_URL"

func newTestStore(t *testing.T) (*RosterStore, *pgxpool.Pool) {
	t.Helper()

	url := os.Getenv(testDatabaseEnv)
	if url == "" {
		t.Skipf("%s not set", testDatabaseEnv)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	migrator := migrations.NewMigrator(pool, zerolog.New(io.Discard))
	require.NoError(t, migrator.MigrateFromDirectory(ctx, filepath.Join("..", "..", "..", "migrations")))

	_, err = pool.Exec(ctx, "TRUNCATE examiner_assignments, examiner_capacities, students, users RESTART IDENTITY CASCADE")
	require.NoError(t, err)

	return NewRepositories(pool).RosterStore(), pool
}

func insertUser(t *testing.T, pool *pgxpool.Pool, role models.RoleType, n int) int64 {
	t.Helper()
	ctx := context.Background()

	var id int64
	err := pool.QueryRow(ctx,
		`INSERT INTO users (email, first_name, last_name, role_type) VALUES ($1, $2, $3, $4) RETURNING id`,
		fmt.Sprintf("%s%d@school.edu.tr", role, n), "First", fmt.Sprintf("Last%d", n), string(role),
	).Scan(&id)
	require.NoError(t, err)

	if role == models.RoleStudent {
		_, err = pool.Exec(ctx, `INSERT INTO students (user_id, identifier) VALUES ($1, $2)`, id, fmt.Sprintf("S%05d", n))
		require.NoError(t, err)
	}
	return id
}

func TestRosterStore(t *testing.T) {
	store, pool := newTestStore(t)
	ctx := context.Background()

	e1 := insertUser(t, pool, models.RoleInstructor, 1)
	e2 := insertUser(t, pool, models.RoleInstructor, 2)
	s1 := insertUser(t, pool, models.RoleStudent, 3)
	s2 := insertUser(t, pool, models.RoleStudent, 4)

	t.Run("examiners default to no stored capacity", func(t *testing.T) {
		examiners, err := store.ListExaminers(ctx)
		require.NoError(t, err)
		require.Len(t, examiners, 2)
		require.Nil(t, examiners[0].Capacity)
		require.Equal(t, "First Last1", examiners[0].Name)

		_, err = store.GetExaminer(ctx, s1)
		require.ErrorIs(t, err, apperrors.ErrNotAnExaminer)
		_, err = store.GetExaminer(ctx, 9999)
		require.ErrorIs(t, err, apperrors.ErrExaminerNotFound)
	})

	t.Run("edges", func(t *testing.T) {
		id, err := store.CreateEdge(ctx, s1, e1)
		require.NoError(t, err)
		require.Positive(t, id)

		_, err = store.CreateEdge(ctx, s1, e1)
		require.ErrorIs(t, err, apperrors.ErrDuplicateEdge)

		_, err = store.CreateEdge(ctx, 9999, e1)
		require.ErrorIs(t, err, apperrors.ErrResourceNotFound)

		_, err = store.CreateEdge(ctx, s1, e2)
		require.NoError(t, err)

		student, err := store.GetStudent(ctx, s1)
		require.NoError(t, err)
		require.Equal(t, []int64{e1, e2}, student.AssignedExaminerIDs)

		pending, err := store.ListStudentsNeedingExaminers(ctx, 2)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		require.Equal(t, s2, pending[0].ID)
		require.Empty(t, pending[0].AssignedExaminerIDs)

		examiner, err := store.GetExaminer(ctx, e1)
		require.NoError(t, err)
		require.Equal(t, 1, examiner.CurrentLoad)

		edges, err := store.ListEdges(ctx, models.AssignmentFilter{ExaminerID: e2})
		require.NoError(t, err)
		require.Len(t, edges, 1)
		require.NoError(t, store.DeleteEdge(ctx, edges[0].ID))
		require.ErrorIs(t, store.DeleteEdge(ctx, edges[0].ID), apperrors.ErrAssignmentNotFound)
	})

	t.Run("capacity", func(t *testing.T) {
		require.NoError(t, store.SetExaminerCapacity(ctx, e1, 3))
		require.NoError(t, store.SetExaminerCapacity(ctx, e1, 4))
		require.ErrorIs(t, store.SetExaminerCapacity(ctx, e1, 0), apperrors.ErrBelowCurrentLoad)

		examiner, err := store.GetExaminer(ctx, e1)
		require.NoError(t, err)
		require.Equal(t, 4, *examiner.Capacity)
	})

	t.Run("bulk deletes", func(t *testing.T) {
		_, err := store.CreateEdge(ctx, s2, e1)
		require.NoError(t, err)
		_, err = store.CreateEdge(ctx, s2, e2)
		require.NoError(t, err)

		removed, err := store.DeleteEdgesByExaminer(ctx, e2)
		require.NoError(t, err)
		require.Len(t, removed, 1)
		require.Equal(t, s2, removed[0].StudentID)
		require.Equal(t, e2, removed[0].ExaminerID)

		remaining, err := store.ListEdges(ctx, models.AssignmentFilter{})
		require.NoError(t, err)

		removed, err = store.DeleteAllEdges(ctx)
		require.NoError(t, err)
		require.Equal(t, remaining, removed)

		removed, err = store.DeleteAllEdges(ctx)
		require.NoError(t, err)
		require.Empty(t, removed)
	})
}
