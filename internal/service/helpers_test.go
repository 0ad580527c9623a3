package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alexanderramin/canteiro/internal/domain"
)

func TestReorder(t *testing.T) {
	tests := []struct {
		name   string
		order  []int
		pos    int
		dir    domain.Direction
		want   []int
		wantOK bool
	}{
		{"distinct up", []int{1, 2, 3}, 2, domain.DirectionUp, []int{1, 3, 2}, true},
		{"gaps kept", []int{10, 20, 30}, 0, domain.DirectionDown, []int{20, 10, 30}, true},
		{"tie with upper neighbour", []int{1, 2, 2}, 2, domain.DirectionUp, []int{1, 3, 2}, true},
		{"tie with lower neighbour", []int{1, 1, 5}, 0, domain.DirectionDown, []int{2, 1, 3}, true},
		{"zero indices", []int{0, 0}, 1, domain.DirectionUp, []int{2, 1}, true},
		{"top boundary", []int{1, 2}, 0, domain.DirectionUp, nil, false},
		{"bottom boundary", []int{1, 2}, 1, domain.DirectionDown, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := reorder(tt.order, tt.pos, tt.dir)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReorder_LeavesInputUntouched(t *testing.T) {
	order := []int{3, 3, 3}
	_, ok := reorder(order, 1, domain.DirectionDown)
	assert.True(t, ok)
	assert.Equal(t, []int{3, 3, 3}, order)
}
