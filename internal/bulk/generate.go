// Package bulk holds the pure pieces of bulk unit creation: identifier
// generation from a floor plan, de-duplication against existing units, and
// batch windowing.
package bulk

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/canteiro/internal/apperr"
)

// DefaultMaxUnitsPerFloor is the soft limit above which generation needs an
// explicit confirmation.
const DefaultMaxUnitsPerFloor = 50

// ErrConfirmationRequired is returned when a plan exceeds the per-floor limit
// and the caller has not confirmed it. Re-invoke with Confirmed set.
var ErrConfirmationRequired = errors.New("units per floor above limit: confirmation required")

// FloorPlan describes a block of units laid out floor by floor.
type FloorPlan struct {
	FloorStart    int
	FloorEnd      int
	UnitsPerFloor int
	Pad           bool // zero-pad the position to two digits
	Confirmed     bool
	// MaxUnitsPerFloor overrides DefaultMaxUnitsPerFloor when positive.
	MaxUnitsPerFloor int
}

func (p FloorPlan) limit() int {
	if p.MaxUnitsPerFloor > 0 {
		return p.MaxUnitsPerFloor
	}
	return DefaultMaxUnitsPerFloor
}

// Size is the number of identifiers the plan produces.
func (p FloorPlan) Size() int {
	if p.FloorEnd < p.FloorStart || p.UnitsPerFloor <= 0 {
		return 0
	}
	return (p.FloorEnd - p.FloorStart + 1) * p.UnitsPerFloor
}

// Validate checks the plan without generating anything.
func (p FloorPlan) Validate() error {
	if p.FloorStart <= 0 {
		return apperr.Validation("floor_start", "must be a positive integer, got %d", p.FloorStart)
	}
	if p.FloorEnd <= 0 {
		return apperr.Validation("floor_end", "must be a positive integer, got %d", p.FloorEnd)
	}
	if p.UnitsPerFloor <= 0 {
		return apperr.Validation("units_per_floor", "must be a positive integer, got %d", p.UnitsPerFloor)
	}
	if p.FloorEnd < p.FloorStart {
		return apperr.Validation("floor_end", "must not be below floor_start (%d < %d)", p.FloorEnd, p.FloorStart)
	}
	if p.UnitsPerFloor > p.limit() && !p.Confirmed {
		return fmt.Errorf("%d units per floor (limit %d): %w", p.UnitsPerFloor, p.limit(), ErrConfirmationRequired)
	}
	return nil
}

// GenerateIdentifiers lists identifiers floor by floor, ascending, with
// positions 1..UnitsPerFloor appended to the floor number.
func GenerateIdentifiers(p FloorPlan) ([]string, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	ids := make([]string, 0, p.Size())
	for floor := p.FloorStart; floor <= p.FloorEnd; floor++ {
		for pos := 1; pos <= p.UnitsPerFloor; pos++ {
			if p.Pad {
				ids = append(ids, fmt.Sprintf("%d%02d", floor, pos))
			} else {
				ids = append(ids, fmt.Sprintf("%d%d", floor, pos))
			}
		}
	}
	return ids, nil
}

// DedupAgainstExisting drops candidates already present in existing, and
// repeats within candidates, keeping the first occurrence order. Comparison
// ignores surrounding whitespace.
func DedupAgainstExisting(candidates, existing []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(candidates))
	for _, e := range existing {
		seen[strings.TrimSpace(e)] = struct{}{}
	}
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		key := strings.TrimSpace(c)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}
