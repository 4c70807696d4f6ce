//go:build !windows

package webgpu

import "github.com/born-ml/stride/internal/storage"

// Allocator is a placeholder on platforms without the WebGPU backend.
type Allocator struct{}

// New always fails with ErrUnavailable on this platform.
func New() (*Allocator, error) {
	return nil, ErrUnavailable
}

// IsAvailable reports false on this platform.
func IsAvailable() bool {
	return false
}

// Allocate fails with ErrUnavailable.
func (a *Allocator) Allocate(storage.Device, int) (storage.Buffer, error) {
	return nil, ErrUnavailable
}

// Free fails with ErrUnavailable.
func (a *Allocator) Free(storage.Buffer) error {
	return ErrUnavailable
}

// Copy fails with ErrUnavailable.
func (a *Allocator) Copy(_, _ storage.Buffer, _ int) error {
	return ErrUnavailable
}

// Live returns 0.
func (a *Allocator) Live() int {
	return 0
}

// Release does nothing on this platform.
func (a *Allocator) Release() {}
