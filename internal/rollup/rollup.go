// Package rollup derives unit and project progress from loaded records.
// Nothing here is cached: every read recomputes from the slices it is given.
package rollup

import (
	"github.com/alexanderramin/canteiro/internal/domain"
)

// Contribution is the progress a single unit stage adds to its unit's mean.
//
//	pending     ->   0
//	in_progress ->  50
//	done        -> 100
func Contribution(s domain.Status) float64 {
	switch domain.NormalizeStatus(string(s)) {
	case domain.StatusDone:
		return 100
	case domain.StatusInProgress:
		return 50
	default:
		return 0
	}
}

// UnitProgress is the clamped, rounded mean contribution of the instances.
// A unit without instances has progress 0.
func UnitProgress(instances []*domain.UnitStage) int {
	if len(instances) == 0 {
		return 0
	}
	var sum float64
	for _, us := range instances {
		sum += Contribution(us.Status)
	}
	return domain.ClampProgress(sum / float64(len(instances)))
}

// UnitStatus derives a unit's status: pending when it has no instances or
// none has started, done when all are done, in_progress otherwise.
func UnitStatus(instances []*domain.UnitStage) domain.Status {
	if len(instances) == 0 {
		return domain.StatusPending
	}
	pending, done := 0, 0
	for _, us := range instances {
		switch domain.NormalizeStatus(string(us.Status)) {
		case domain.StatusPending:
			pending++
		case domain.StatusDone:
			done++
		}
	}
	switch {
	case pending == len(instances):
		return domain.StatusPending
	case done == len(instances):
		return domain.StatusDone
	default:
		return domain.StatusInProgress
	}
}

// Summary is the project-level roll-up shown on the project page.
type Summary struct {
	TotalUnits  int
	AvgProgress float64
	Counts      map[domain.Status]int
}

// Percent renders AvgProgress for display.
func (s Summary) Percent() string {
	return domain.FormatPercent(s.AvgProgress)
}

// Count returns the number of units in the given status bucket.
func (s Summary) Count(st domain.Status) int {
	return s.Counts[st]
}

// ProjectSummary partitions units into exactly the three status buckets and
// averages their clamped progress. No units yields an average of 0.
func ProjectSummary(units []*domain.Unit) Summary {
	s := Summary{
		TotalUnits: len(units),
		Counts:     make(map[domain.Status]int, len(domain.Statuses)),
	}
	for _, st := range domain.Statuses {
		s.Counts[st] = 0
	}
	if len(units) == 0 {
		return s
	}
	var sum float64
	for _, u := range units {
		s.Counts[u.EffectiveStatus()]++
		sum += float64(domain.ClampProgress(float64(u.Progress)))
	}
	s.AvgProgress = sum / float64(len(units))
	return s
}

// GroupByUnit indexes instances by their unit ID, keeping input order.
func GroupByUnit(instances []*domain.UnitStage) map[string][]*domain.UnitStage {
	out := make(map[string][]*domain.UnitStage)
	for _, us := range instances {
		out[us.UnitID] = append(out[us.UnitID], us)
	}
	return out
}

// WithComputedProgress returns copies of units whose Progress and Status are
// derived from their instances. Units without instances keep their stored
// values.
func WithComputedProgress(units []*domain.Unit, byUnit map[string][]*domain.UnitStage) []*domain.Unit {
	out := make([]*domain.Unit, len(units))
	for i, u := range units {
		cp := *u
		if instances := byUnit[u.ID]; len(instances) > 0 {
			cp.Progress = UnitProgress(instances)
			cp.Status = UnitStatus(instances)
		}
		out[i] = &cp
	}
	return out
}
