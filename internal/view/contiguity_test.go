package view

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/stride/internal/storage"
)

func TestIsContiguous(t *testing.T) {
	tests := []struct {
		name    string
		sizes   []int
		strides []int
		want    bool
	}{
		{"row major", []int{4, 3}, nil, true},
		{"unit axis with odd stride", []int{4, 1, 3}, []int{3, 100, 1}, true},
		{"column major", []int{4, 3}, []int{1, 4}, false},
		{"padded rows", []int{4, 3}, []int{4, 1}, false},
		{"rank zero", []int{}, nil, true},
		{"all unit axes", []int{1, 1}, []int{7, 9}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newView(t)
			mustResize(t, v, tt.sizes, tt.strides)
			assert.Equal(t, tt.want, v.IsContiguous())
		})
	}
}

func TestAllContiguous(t *testing.T) {
	a := newView(t)
	require.NoError(t, a.Resize(2, 3))
	b := newView(t)
	require.NoError(t, b.Resize(5))

	ok, err := AllContiguous(a, b)
	require.NoError(t, err)
	assert.True(t, ok)

	c := newView(t)
	require.NoError(t, c.Transpose(a, 0, 1))
	ok, err = AllContiguous(a, c, b)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = AllContiguous()
	assert.True(t, errors.Is(err, ErrEmptySet))
}

func TestDevice(t *testing.T) {
	v := newView(t)
	assert.Equal(t, storage.NoDevice, v.Device(), "no storage yet")

	require.NoError(t, v.Resize(2))
	assert.Equal(t, storage.CPU, v.Device())
}

func TestAllSameDevice(t *testing.T) {
	alloc := storage.NewHostAllocator(0)
	onDevice := func(d storage.Device) *View {
		v := New(Config{ScalarType: storage.Float32, Device: d, Allocator: alloc})
		t.Cleanup(v.Release)
		require.NoError(t, v.Resize(2))
		return v
	}

	a, b := onDevice(storage.CUDA), onDevice(storage.CUDA)
	ok, err := AllSameDevice(a, b)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = AllSameDevice(a, b, onDevice(storage.Metal))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = AllSameDevice(a, newView(t))
	require.NoError(t, err)
	assert.False(t, ok, "a view without storage reports NoDevice")

	ok, err = AllSameDevice(a)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = AllSameDevice()
	assert.True(t, errors.Is(err, ErrEmptySet))
}
