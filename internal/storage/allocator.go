package storage

import (
	"sync/atomic"

	"github.com/pkg/errors"
)

// Buffer is an opaque handle to memory obtained from an Allocator.
type Buffer interface {
	// Len returns the buffer size in bytes.
	Len() int
}

// HostAccessor is implemented by buffers whose bytes live in Go memory.
type HostAccessor interface {
	Bytes() []byte
}

// Allocator is the allocation backend behind Storage.
// The engine never touches raw bytes itself; it only asks for buffers,
// copies the live prefix when growing and hands buffers back.
type Allocator interface {
	// Allocate returns a buffer of at least byteSize bytes on device.
	Allocate(device Device, byteSize int) (Buffer, error)
	// Free returns a buffer to the backend.
	Free(buf Buffer) error
	// Copy copies the first byteCount bytes of src into dst.
	Copy(dst, src Buffer, byteCount int) error
}

// HostBuffer is a Buffer backed by a Go byte slice.
type HostBuffer struct {
	data []byte
}

// NewHostBuffer wraps caller-owned memory, typically for use with Wrap.
func NewHostBuffer(data []byte) *HostBuffer {
	return &HostBuffer{data: data}
}

// Len returns the buffer size in bytes.
func (b *HostBuffer) Len() int {
	return len(b.data)
}

// Bytes returns the underlying memory.
// WARNING: Direct access to underlying memory. Use with caution.
func (b *HostBuffer) Bytes() []byte {
	return b.data
}

// HostAllocator serves every device tag from Go memory.
// A positive limit caps the bytes it hands out at once; requests past the
// limit fail with ErrAllocation.
type HostAllocator struct {
	limit int64
	inUse atomic.Int64
}

// NewHostAllocator creates a host allocator. limit <= 0 means unlimited.
func NewHostAllocator(limit int64) *HostAllocator {
	return &HostAllocator{limit: limit}
}

// Allocate returns a zero-filled HostBuffer.
func (a *HostAllocator) Allocate(device Device, byteSize int) (Buffer, error) {
	if device == NoDevice {
		return nil, errors.Wrap(ErrAllocation, "no device")
	}
	if byteSize < 0 {
		return nil, errors.Wrapf(ErrAllocation, "negative size %d", byteSize)
	}
	n := a.inUse.Add(int64(byteSize))
	if a.limit > 0 && n > a.limit {
		a.inUse.Add(-int64(byteSize))
		return nil, errors.Wrapf(ErrAllocation, "%d bytes on %s exceeds host limit %d", byteSize, device, a.limit)
	}
	return &HostBuffer{data: make([]byte, byteSize)}, nil
}

// Free releases a HostBuffer.
func (a *HostAllocator) Free(buf Buffer) error {
	hb, ok := buf.(*HostBuffer)
	if !ok {
		return errors.Wrapf(ErrForeignBuffer, "host allocator cannot free %T", buf)
	}
	a.inUse.Add(-int64(len(hb.data)))
	hb.data = nil
	return nil
}

// Copy copies the first byteCount bytes of src into dst.
func (a *HostAllocator) Copy(dst, src Buffer, byteCount int) error {
	d, ok := dst.(HostAccessor)
	if !ok {
		return errors.Wrapf(ErrUnsupported, "copy into %T", dst)
	}
	s, ok := src.(HostAccessor)
	if !ok {
		return errors.Wrapf(ErrUnsupported, "copy from %T", src)
	}
	if byteCount > len(d.Bytes()) || byteCount > len(s.Bytes()) {
		return errors.Errorf("copy of %d bytes overruns buffers (%d <- %d)", byteCount, len(d.Bytes()), len(s.Bytes()))
	}
	copy(d.Bytes()[:byteCount], s.Bytes()[:byteCount])
	return nil
}

// InUse returns the number of bytes currently handed out.
func (a *HostAllocator) InUse() int64 {
	return a.inUse.Load()
}
