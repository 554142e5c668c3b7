package allocation

import (
	"fmt"
	"math"

	"github.com/yigit/examalloc/internal/app/models"
	"github.com/yigit/examalloc/internal/pkg/apperrors"
)

// CapacityStat is an examiner annotated with its derived capacity figures
type CapacityStat struct {
	ExaminerID     int64  `json:"examinerId"`
	Name           string `json:"name"`
	Capacity       int    `json:"capacity"`
	CurrentLoad    int    `json:"currentLoad"`
	AvailableSlots int    `json:"availableSlots"`
	IsFull         bool   `json:"isFull"`
	LoadPercentage int    `json:"loadPercentage"`
}

// CapacitySummary aggregates the capacity figures of every examiner
type CapacitySummary struct {
	TotalExaminers     int `json:"totalExaminers"`
	FullExaminers      int `json:"fullExaminers"`
	AvailableExaminers int `json:"availableExaminers"`
	TotalCapacity      int `json:"totalCapacity"`
	TotalLoad          int `json:"totalLoad"`
}

// CapacityReport is the per-examiner breakdown plus its summary
type CapacityReport struct {
	Examiners []CapacityStat  `json:"examiners"`
	Summary   CapacitySummary `json:"summary"`
}

// Annotate derives the capacity figures for one examiner. An effective capacity
// that is not positive is a data error.
func Annotate(e models.Examiner, defaultCapacity int) (CapacityStat, error) {
	capacity := e.EffectiveCapacity(defaultCapacity)
	if capacity <= 0 {
		return CapacityStat{}, fmt.Errorf("%w: examiner %d has capacity %d", apperrors.ErrInvalidCapacity, e.ID, capacity)
	}

	available := capacity - e.CurrentLoad
	if available < 0 {
		available = 0
	}

	return CapacityStat{
		ExaminerID:     e.ID,
		Name:           e.Name,
		Capacity:       capacity,
		CurrentLoad:    e.CurrentLoad,
		AvailableSlots: available,
		IsFull:         e.CurrentLoad >= capacity,
		LoadPercentage: int(math.Round(float64(e.CurrentLoad) / float64(capacity) * 100)),
	}, nil
}

// Calculate annotates every examiner and builds the summary. Output order
// follows input order.
func Calculate(examiners []models.Examiner, defaultCapacity int) (*CapacityReport, error) {
	report := &CapacityReport{
		Examiners: make([]CapacityStat, 0, len(examiners)),
	}

	for _, e := range examiners {
		stat, err := Annotate(e, defaultCapacity)
		if err != nil {
			return nil, err
		}
		report.Examiners = append(report.Examiners, stat)

		report.Summary.TotalExaminers++
		report.Summary.TotalCapacity += stat.Capacity
		report.Summary.TotalLoad += stat.CurrentLoad
		if stat.IsFull {
			report.Summary.FullExaminers++
		} else {
			report.Summary.AvailableExaminers++
		}
	}

	return report, nil
}
