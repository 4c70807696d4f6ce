package storage

import (
	"math"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// countingAllocator wraps a HostAllocator and counts Free calls.
type countingAllocator struct {
	*HostAllocator
	frees atomic.Int32
}

func newCountingAllocator() *countingAllocator {
	return &countingAllocator{HostAllocator: NewHostAllocator(0)}
}

func (c *countingAllocator) Free(buf Buffer) error {
	c.frees.Add(1)
	return c.HostAllocator.Free(buf)
}

// deviceOnlyBuffer is a Buffer without host memory.
type deviceOnlyBuffer struct{ n int }

func (b *deviceOnlyBuffer) Len() int { return b.n }

// deviceOnlyAllocator hands out deviceOnlyBuffers.
type deviceOnlyAllocator struct{}

func (deviceOnlyAllocator) Allocate(_ Device, byteSize int) (Buffer, error) {
	return &deviceOnlyBuffer{n: byteSize}, nil
}
func (deviceOnlyAllocator) Free(Buffer) error { return nil }
func (deviceOnlyAllocator) Copy(_, _ Buffer, _ int) error { return nil }

func TestNewStorageIsEmpty(t *testing.T) {
	s := New(Float32, CPU, NewHostAllocator(0))

	assert.Equal(t, 0, s.Capacity())
	assert.Equal(t, 1, s.RefCount())
	assert.Equal(t, Owned, s.Ownership())
	assert.Equal(t, Float32, s.ScalarType())
	assert.Equal(t, CPU, s.Device())
	assert.Nil(t, s.Buffer())

	b, err := s.Bytes()
	require.NoError(t, err)
	assert.Empty(t, b)
}

func TestGrowToPreservesContents(t *testing.T) {
	s := New(Float32, CPU, NewHostAllocator(0))
	require.NoError(t, s.GrowTo(4))
	assert.Equal(t, 4, s.Capacity())

	b, err := s.Bytes()
	require.NoError(t, err)
	require.Len(t, b, 16)
	for i := range b {
		b[i] = byte(i + 1)
	}

	require.NoError(t, s.GrowTo(8))
	assert.Equal(t, 8, s.Capacity())

	grown, err := s.Bytes()
	require.NoError(t, err)
	require.Len(t, grown, 32)
	for i := 0; i < 16; i++ {
		assert.Equal(t, byte(i+1), grown[i], "byte %d not preserved", i)
	}
	for i := 16; i < 32; i++ {
		assert.Zero(t, grown[i])
	}
}

func TestGrowToNeverShrinks(t *testing.T) {
	s := New(Int64, CPU, NewHostAllocator(0))
	require.NoError(t, s.GrowTo(10))
	buf := s.Buffer()

	require.NoError(t, s.GrowTo(3))
	require.NoError(t, s.GrowTo(10))

	assert.Equal(t, 10, s.Capacity())
	assert.Same(t, buf, s.Buffer(), "no reallocation expected")
}

func TestGrowToAllocationFailure(t *testing.T) {
	alloc := NewHostAllocator(64)
	s := New(Float64, CPU, alloc)
	require.NoError(t, s.GrowTo(4)) // 32 bytes

	err := s.GrowTo(16) // 128 bytes
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAllocation))
	assert.Equal(t, 4, s.Capacity())
	assert.Equal(t, int64(32), alloc.InUse())
}

func TestReleaseFreesBuffer(t *testing.T) {
	alloc := newCountingAllocator()
	s := New(Float32, CPU, alloc)
	require.NoError(t, s.GrowTo(10))
	assert.Equal(t, int64(40), alloc.InUse())

	s.Retain()
	s.Release()
	assert.False(t, s.Released())
	assert.Equal(t, int32(0), alloc.frees.Load())

	s.Release()
	assert.True(t, s.Released())
	assert.Equal(t, int32(1), alloc.frees.Load())
	assert.Equal(t, int64(0), alloc.InUse())
	assert.Equal(t, 0, s.Capacity())

	// Over-release is ignored.
	s.Release()
	assert.Equal(t, int32(1), alloc.frees.Load())

	assert.True(t, errors.Is(s.GrowTo(4), ErrReleased))
}

func TestReleaseConcurrentFreesOnce(t *testing.T) {
	alloc := newCountingAllocator()
	s := New(Float32, CPU, alloc)
	require.NoError(t, s.GrowTo(16))

	const workers = 64
	for i := 0; i < workers; i++ {
		s.Retain()
	}

	var g errgroup.Group
	for i := 0; i < workers+1; i++ {
		g.Go(func() error {
			s.Release()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.True(t, s.Released())
	assert.Equal(t, int32(1), alloc.frees.Load())
	assert.Equal(t, 0, s.RefCount())
}

func TestWrapIsBorrowed(t *testing.T) {
	data := make([]byte, 24)
	s := Wrap(NewHostBuffer(data), Float64, CPU)

	assert.Equal(t, Borrowed, s.Ownership())
	assert.Equal(t, 3, s.Capacity())

	s.Retain()
	assert.Equal(t, 1, s.RefCount())
	s.Release()
	s.Release()
	assert.False(t, s.Released())

	err := s.GrowTo(10)
	assert.True(t, errors.Is(err, ErrBorrowed))
	require.NoError(t, s.GrowTo(2))

	b, err := s.Bytes()
	require.NoError(t, err)
	b[0] = 7
	assert.Equal(t, byte(7), data[0], "borrowed storage must share caller memory")
}

func TestBytesOnDeviceBuffer(t *testing.T) {
	s := New(Float32, CUDA, deviceOnlyAllocator{})
	require.NoError(t, s.GrowTo(4))

	_, err := s.Bytes()
	assert.True(t, errors.Is(err, ErrUnsupported))
}

func TestHostAllocatorRejectsForeignBuffers(t *testing.T) {
	a := NewHostAllocator(0)

	err := a.Free(&deviceOnlyBuffer{n: 4})
	assert.True(t, errors.Is(err, ErrForeignBuffer))

	dst, err := a.Allocate(CPU, 4)
	require.NoError(t, err)
	err = a.Copy(dst, &deviceOnlyBuffer{n: 4}, 4)
	assert.True(t, errors.Is(err, ErrUnsupported))

	_, err = a.Allocate(NoDevice, 4)
	assert.True(t, errors.Is(err, ErrAllocation))
}

func TestStorageString(t *testing.T) {
	s := New(Int32, Metal, NewHostAllocator(0))
	require.NoError(t, s.GrowTo(5))
	assert.Equal(t, "Storage[int32]{capacity: 5, device: Metal, refs: 1, owned}", s.String())
}

func TestNewDefaultsAllocator(t *testing.T) {
	s := New(Float32, CPU, nil)
	require.NoError(t, s.GrowTo(4))
	assert.Equal(t, 4, s.Capacity())

	s.Release()
	assert.True(t, s.Released())
}

func TestGrowToRejectsByteOverflow(t *testing.T) {
	s := New(Float64, CPU, NewHostAllocator(0))

	err := s.GrowTo(math.MaxInt/4)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAllocation))
	assert.Equal(t, 0, s.Capacity())
	assert.Nil(t, s.Buffer())
}
