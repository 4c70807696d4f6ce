package webgpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlign(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 4},
		{1, 4},
		{4, 4},
		{5, 8},
		{13, 16},
		{4096, 4096},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, align(tt.in), "align(%d)", tt.in)
	}
}
