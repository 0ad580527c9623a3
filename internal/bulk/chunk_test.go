package bulk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunk(t *testing.T) {
	tests := []struct {
		name string
		n    int
		size int
		want []Window
	}{
		{"empty", 0, 200, nil},
		{"single partial", 3, 200, []Window{{0, 3}}},
		{"exact multiple", 400, 200, []Window{{0, 200}, {200, 400}}},
		{"remainder", 450, 200, []Window{{0, 200}, {200, 400}, {400, 450}}},
		{"no size", 7, 0, []Window{{0, 7}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Chunk(tt.n, tt.size))
		})
	}
}

func TestChunk_CoversEveryIndexOnce(t *testing.T) {
	total := 0
	prevEnd := 0
	for _, w := range Chunk(1001, 200) {
		assert.Equal(t, prevEnd, w.Start)
		assert.LessOrEqual(t, w.Len(), 200)
		total += w.Len()
		prevEnd = w.End
	}
	assert.Equal(t, 1001, total)
}
