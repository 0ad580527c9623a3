package domain

import (
	"sort"
	"time"
)

// Stage is one entry of a project's stage template: a named construction
// phase applicable to every unit of the project.
type Stage struct {
	ID         string
	ProjectID  string
	Name       string
	OrderIndex int
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// StageLess is the canonical template order: order_index ascending, ties
// broken by name.
func StageLess(a, b *Stage) bool {
	if a.OrderIndex != b.OrderIndex {
		return a.OrderIndex < b.OrderIndex
	}
	return a.Name < b.Name
}

// SortStages sorts stages in canonical order, in place.
func SortStages(stages []*Stage) {
	sort.SliceStable(stages, func(i, j int) bool {
		return StageLess(stages[i], stages[j])
	})
}

// MaxStageOrder returns the highest order_index in stages, or 0 when empty.
func MaxStageOrder(stages []*Stage) int {
	max := 0
	for i, s := range stages {
		if i == 0 || s.OrderIndex > max {
			max = s.OrderIndex
		}
	}
	return max
}
