// Package webgpu implements a storage.Allocator over WebGPU device buffers.
// Uses go-webgpu (github.com/go-webgpu/webgpu) for zero-CGO WebGPU bindings.
//
// The allocator is only functional on Windows; elsewhere New returns ErrUnavailable.
package webgpu

import "github.com/pkg/errors"

// ErrUnavailable is returned when no WebGPU adapter or native library can be used.
var ErrUnavailable = errors.New("webgpu: not available")

// copyAlignment is COPY_BUFFER_ALIGNMENT; buffer sizes and copy lengths are rounded up to it.
const copyAlignment = 4

// align rounds n up to copyAlignment, with a floor of one aligned word.
func align(n int) int {
	if n < copyAlignment {
		n = copyAlignment
	}
	return (n + copyAlignment - 1) &^ (copyAlignment - 1)
}
