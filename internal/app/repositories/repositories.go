package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both the pool and a transaction
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories holds all the repository instances
type Repositories struct {
	ExaminerRepository   *ExaminerRepository
	StudentRepository    *StudentRepository
	AssignmentRepository *AssignmentRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		ExaminerRepository:   NewExaminerRepository(db),
		StudentRepository:    NewStudentRepository(db),
		AssignmentRepository: NewAssignmentRepository(db),
	}
}

// RosterStore is the Postgres-backed roster the allocation service works
// against. It is the union of the three repositories.
type RosterStore struct {
	*ExaminerRepository
	*StudentRepository
	*AssignmentRepository
}

// RosterStore bundles the repositories into a single store
func (r *Repositories) RosterStore() *RosterStore {
	return &RosterStore{
		ExaminerRepository:   r.ExaminerRepository,
		StudentRepository:    r.StudentRepository,
		AssignmentRepository: r.AssignmentRepository,
	}
}
