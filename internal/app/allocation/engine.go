package allocation

import (
	"fmt"

	"github.com/yigit/examalloc/internal/app/models"
	"github.com/yigit/examalloc/internal/pkg/apperrors"
)

// PlannedEdge is a create-edge operation emitted by the engine
type PlannedEdge struct {
	StudentID  int64 `json:"studentId"`
	ExaminerID int64 `json:"examinerId"`
}

// Shortfall records a student the engine could not bring up to target
type Shortfall struct {
	StudentID int64  `json:"studentId"`
	Assigned  int    `json:"assigned"`
	Missing   int    `json:"missing"`
	Reason    string `json:"reason"`
}

// Plan is the outcome of one engine pass
type Plan struct {
	Edges              []PlannedEdge `json:"edges"`
	Unfilled           []Shortfall   `json:"unfilled,omitempty"`
	StudentsConsidered int           `json:"studentsConsidered"`
}

// Count returns the number of edges to create
func (p *Plan) Count() int {
	return len(p.Edges)
}

// Engine performs greedy least-loaded matching of students to examiners
type Engine struct {
	target int
}

// NewEngine creates an engine that aims for target examiners per student.
// A non-positive target falls back to models.DefaultTargetExaminers.
func NewEngine(target int) *Engine {
	if target <= 0 {
		target = models.DefaultTargetExaminers
	}
	return &Engine{target: target}
}

// Target returns the number of examiners each student should end up with
func (e *Engine) Target() int {
	return e.target
}

// Plan computes the edges needed to bring every student up to target.
//
// Students already at target are ignored; if none remain the result is an
// empty plan. Otherwise at least target examiners must have free slots or the
// whole run is refused with ErrInsufficientExaminers. Students are processed
// in input order, each taking the least-loaded eligible examiner per missing
// slot, and the pool is re-sorted after every single edge.
func (e *Engine) Plan(students []models.Student, stats []CapacityStat) (*Plan, error) {
	pending := needingExaminers(students, e.target)
	plan := &Plan{
		Edges:              []PlannedEdge{},
		StudentsConsidered: len(pending),
	}
	if len(pending) == 0 {
		return plan, nil
	}

	p := newPool(stats)
	if p.size() < e.target {
		return nil, apperrors.NewCustomError(
			apperrors.ErrInsufficientExaminers,
			fmt.Sprintf("only %d examiner(s) have free capacity, %d required", p.size(), e.target),
		).WithDetails(map[string]interface{}{
			"eligibleExaminers": p.size(),
			"required":          e.target,
		})
	}

	for _, s := range pending {
		assigned := make(map[int64]struct{}, e.target)
		for _, id := range s.AssignedExaminerIDs {
			assigned[id] = struct{}{}
		}

		for len(assigned) < e.target {
			c := p.firstEligible(assigned)
			if c == nil {
				plan.Unfilled = append(plan.Unfilled, Shortfall{
					StudentID: s.ID,
					Assigned:  len(assigned),
					Missing:   e.target - len(assigned),
					Reason:    "no eligible examiner with free capacity",
				})
				break
			}

			plan.Edges = append(plan.Edges, PlannedEdge{StudentID: s.ID, ExaminerID: c.examinerID})
			assigned[c.examinerID] = struct{}{}
			p.take(c)
		}
	}

	return plan, nil
}
