package storage

import (
	"fmt"
	"math"
	"sync"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Storage is a reference-counted element buffer shared by one or more views.
// Capacity is counted in elements and only ever grows, through GrowTo.
type Storage struct {
	buf       Buffer
	capacity  int
	scalar    ScalarType
	device    Device
	alloc     Allocator
	ownership Ownership
	refs      RefCount
	released  bool
	mu        sync.Mutex // Guards buf, capacity and released.
}

var defaultAllocator = NewHostAllocator(0)

// DefaultAllocator returns the shared unlimited host allocator.
func DefaultAllocator() *HostAllocator {
	return defaultAllocator
}

// New creates an empty owned Storage (capacity 0, no buffer) with refCount = 1.
// Buffers for it are obtained from alloc on device; a nil alloc means
// DefaultAllocator.
func New(scalar ScalarType, device Device, alloc Allocator) *Storage {
	if alloc == nil {
		alloc = defaultAllocator
	}
	s := &Storage{
		scalar:    scalar,
		device:    device,
		alloc:     alloc,
		ownership: Owned,
	}
	s.refs.Init()
	return s
}

// Wrap creates a borrowed Storage over a caller-owned buffer.
// The engine never grows or frees it; retain and release are no-ops.
func Wrap(buf Buffer, scalar ScalarType, device Device) *Storage {
	s := &Storage{
		buf:       buf,
		capacity:  buf.Len() / scalar.Size(),
		scalar:    scalar,
		device:    device,
		ownership: Borrowed,
	}
	s.refs.Init()
	return s
}

// Capacity returns the number of elements the buffer holds.
func (s *Storage) Capacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capacity
}

// ScalarType returns the element type.
func (s *Storage) ScalarType() ScalarType {
	return s.scalar
}

// Device returns the device tag the buffer lives on.
func (s *Storage) Device() Device {
	return s.device
}

// Ownership reports whether the engine manages this storage's lifetime.
func (s *Storage) Ownership() Ownership {
	return s.ownership
}

// RefCount returns the current reference count.
func (s *Storage) RefCount() int {
	return int(s.refs.Load())
}

// Released reports whether the last reference has been dropped.
func (s *Storage) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

// Buffer returns the current buffer handle, nil while capacity is 0.
func (s *Storage) Buffer() Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf
}

// Bytes returns the host memory behind the storage.
// WARNING: Direct access to underlying memory. The slice is invalidated by GrowTo.
func (s *Storage) Bytes() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buf == nil {
		return nil, nil
	}
	b, ok := hostBytes(s.buf)
	if !ok {
		return nil, errors.Wrapf(ErrUnsupported, "storage on %s is not host accessible", s.device)
	}
	return b[:s.capacity*s.scalar.Size()], nil
}

// Retain increments the reference count. No-op for borrowed storage.
func (s *Storage) Retain() {
	if s.ownership == Borrowed {
		return
	}
	s.refs.Inc()
}

// Release decrements the reference count and frees the buffer when it reaches 0.
// No-op for borrowed storage.
func (s *Storage) Release() {
	if s.ownership == Borrowed {
		return
	}
	if !s.refs.Dec() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.buf != nil {
		if err := s.alloc.Free(s.buf); err != nil {
			klog.Warningf("storage: failed to free %d elements of %s on %s: %v", s.capacity, s.scalar, s.device, err)
		}
	}
	s.buf = nil
	s.capacity = 0
	s.released = true
}

// GrowTo reallocates the buffer to hold at least n elements, preserving the
// existing contents. Requests at or below the current capacity do nothing.
// On failure the storage is left untouched.
func (s *Storage) GrowTo(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return ErrReleased
	}
	if n <= s.capacity {
		return nil
	}
	if s.ownership == Borrowed {
		return errors.Wrapf(ErrBorrowed, "grow to %d elements", n)
	}

	elem := s.scalar.Size()
	if n > math.MaxInt/elem {
		return errors.Wrapf(ErrAllocation, "grow to %d %s elements: byte size overflows int", n, s.scalar)
	}
	buf, err := s.alloc.Allocate(s.device, n*elem)
	if err != nil {
		return errors.Wrapf(err, "grow %s storage on %s from %d to %d elements", s.scalar, s.device, s.capacity, n)
	}
	if s.buf != nil {
		if err := s.alloc.Copy(buf, s.buf, s.capacity*elem); err != nil {
			if ferr := s.alloc.Free(buf); ferr != nil {
				klog.Warningf("storage: failed to free abandoned buffer on %s: %v", s.device, ferr)
			}
			return errors.Wrapf(err, "grow %s storage on %s: copy %d elements", s.scalar, s.device, s.capacity)
		}
		if err := s.alloc.Free(s.buf); err != nil {
			klog.Warningf("storage: failed to free old buffer on %s: %v", s.device, err)
		}
	}

	klog.V(2).Infof("storage: grew %s storage on %s from %d to %d elements", s.scalar, s.device, s.capacity, n)
	s.buf = buf
	s.capacity = n
	return nil
}

// String returns a human-readable description of the storage.
func (s *Storage) String() string {
	return fmt.Sprintf("Storage[%s]{capacity: %d, device: %s, refs: %d, %s}",
		s.scalar, s.Capacity(), s.device, s.RefCount(), s.ownership)
}
