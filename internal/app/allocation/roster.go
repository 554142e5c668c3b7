package allocation

import (
	"cmp"
	"slices"

	"github.com/yigit/examalloc/internal/app/models"
)

// candidate is one examiner's mutable state during a single planning pass.
type candidate struct {
	examinerID int64
	load       int
	slots      int
	order      int
}

// pool is the working copy of eligible examiners, kept ordered by current
// load with input order breaking ties. It is never shared between passes.
type pool struct {
	members []*candidate
}

func newPool(stats []CapacityStat) *pool {
	p := &pool{members: make([]*candidate, 0, len(stats))}
	for i, s := range stats {
		if s.AvailableSlots <= 0 {
			continue
		}
		p.members = append(p.members, &candidate{
			examinerID: s.ExaminerID,
			load:       s.CurrentLoad,
			slots:      s.AvailableSlots,
			order:      i,
		})
	}
	p.sort()
	return p
}

func (p *pool) size() int {
	return len(p.members)
}

func (p *pool) sort() {
	slices.SortStableFunc(p.members, func(a, b *candidate) int {
		if c := cmp.Compare(a.load, b.load); c != 0 {
			return c
		}
		return cmp.Compare(a.order, b.order)
	})
}

// firstEligible returns the least-loaded examiner with a free slot that the
// student does not already have, or nil.
func (p *pool) firstEligible(assigned map[int64]struct{}) *candidate {
	for _, c := range p.members {
		if c.slots <= 0 {
			continue
		}
		if _, taken := assigned[c.examinerID]; taken {
			continue
		}
		return c
	}
	return nil
}

// take commits one slot of c and restores the load ordering.
func (p *pool) take(c *candidate) {
	c.slots--
	c.load++
	p.sort()
}

// needingExaminers keeps the students below target, preserving order.
func needingExaminers(students []models.Student, target int) []models.Student {
	out := make([]models.Student, 0, len(students))
	for _, s := range students {
		if len(s.AssignedExaminerIDs) < target {
			out = append(out, s)
		}
	}
	return out
}
