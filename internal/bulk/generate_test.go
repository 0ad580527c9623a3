package bulk

import (
	"testing"

	"github.com/alexanderramin/canteiro/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIdentifiers_PaddedSingleFloor(t *testing.T) {
	ids, err := GenerateIdentifiers(FloorPlan{FloorStart: 3, FloorEnd: 3, UnitsPerFloor: 2, Pad: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"301", "302"}, ids)
}

func TestGenerateIdentifiers_UnpaddedMultiFloor(t *testing.T) {
	ids, err := GenerateIdentifiers(FloorPlan{FloorStart: 1, FloorEnd: 2, UnitsPerFloor: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"11", "12", "13", "21", "22", "23"}, ids)
}

func TestGenerateIdentifiers_PaddingOnlyBelowTen(t *testing.T) {
	ids, err := GenerateIdentifiers(FloorPlan{FloorStart: 12, FloorEnd: 12, UnitsPerFloor: 11, Pad: true})
	require.NoError(t, err)
	require.Len(t, ids, 11)
	assert.Equal(t, "1201", ids[0])
	assert.Equal(t, "1211", ids[10])
}

func TestGenerateIdentifiers_Validation(t *testing.T) {
	tests := []struct {
		name  string
		plan  FloorPlan
		field string
	}{
		{"zero start", FloorPlan{FloorStart: 0, FloorEnd: 2, UnitsPerFloor: 1}, "floor_start"},
		{"negative end", FloorPlan{FloorStart: 1, FloorEnd: -1, UnitsPerFloor: 1}, "floor_end"},
		{"zero units", FloorPlan{FloorStart: 1, FloorEnd: 1, UnitsPerFloor: 0}, "units_per_floor"},
		{"end below start", FloorPlan{FloorStart: 5, FloorEnd: 4, UnitsPerFloor: 1}, "floor_end"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := GenerateIdentifiers(tt.plan)
			assert.Nil(t, ids)
			var ve *apperr.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestGenerateIdentifiers_LargeFloorNeedsConfirmation(t *testing.T) {
	plan := FloorPlan{FloorStart: 1, FloorEnd: 1, UnitsPerFloor: 51}

	_, err := GenerateIdentifiers(plan)
	assert.ErrorIs(t, err, ErrConfirmationRequired)
	assert.False(t, apperr.IsValidation(err))

	plan.Confirmed = true
	ids, err := GenerateIdentifiers(plan)
	require.NoError(t, err)
	assert.Len(t, ids, 51, "confirmed plans are never capped")
}

func TestGenerateIdentifiers_CustomLimit(t *testing.T) {
	_, err := GenerateIdentifiers(FloorPlan{FloorStart: 1, FloorEnd: 1, UnitsPerFloor: 11, MaxUnitsPerFloor: 10})
	assert.ErrorIs(t, err, ErrConfirmationRequired)

	ids, err := GenerateIdentifiers(FloorPlan{FloorStart: 1, FloorEnd: 1, UnitsPerFloor: 10, MaxUnitsPerFloor: 10})
	require.NoError(t, err)
	assert.Len(t, ids, 10)
}

func TestFloorPlan_Size(t *testing.T) {
	assert.Equal(t, 20, FloorPlan{FloorStart: 1, FloorEnd: 5, UnitsPerFloor: 4}.Size())
	assert.Equal(t, 0, FloorPlan{FloorStart: 5, FloorEnd: 1, UnitsPerFloor: 4}.Size())
}

func TestDedupAgainstExisting(t *testing.T) {
	got := DedupAgainstExisting(
		[]string{"301", "302", "303", "302", "304"},
		[]string{"303", " 304 "},
	)
	assert.Equal(t, []string{"301", "302"}, got)
}

func TestDedupAgainstExisting_DoesNotMutateInput(t *testing.T) {
	candidates := []string{"1", "2", "1"}
	_ = DedupAgainstExisting(candidates, []string{"2"})
	assert.Equal(t, []string{"1", "2", "1"}, candidates)
}

func TestDedupAgainstExisting_AllExisting(t *testing.T) {
	got := DedupAgainstExisting([]string{"101"}, []string{"101"})
	assert.Empty(t, got)
}
