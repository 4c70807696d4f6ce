// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package view

import (
	"github.com/born-ml/stride/internal/storage"
)

// Storage is a reference-counted element buffer shared by views.
type Storage = storage.Storage

// ScalarType represents the element type held by a Storage.
type ScalarType = storage.ScalarType

// Device tags the location of a Storage buffer.
type Device = storage.Device

// Ownership says whether the engine manages an object's lifetime.
type Ownership = storage.Ownership

// Allocator is the allocation backend behind Storage.
type Allocator = storage.Allocator

// Buffer is an opaque handle to memory obtained from an Allocator.
type Buffer = storage.Buffer

// HostAllocator serves buffers from Go memory.
type HostAllocator = storage.HostAllocator

// PooledAllocator reuses freed buffers per device and size class.
type PooledAllocator = storage.PooledAllocator

// PoolConfig controls PooledAllocator behavior.
type PoolConfig = storage.PoolConfig

// Supported scalar types.
const (
	Float32  = storage.Float32
	Float64  = storage.Float64
	Float16  = storage.Float16
	BFloat16 = storage.BFloat16
	Int8     = storage.Int8
	Int16    = storage.Int16
	Int32    = storage.Int32
	Int64    = storage.Int64
	Uint8    = storage.Uint8
	Bool     = storage.Bool
)

// Device tags.
const (
	NoDevice = storage.NoDevice
	CPU      = storage.CPU
	CUDA     = storage.CUDA
	Vulkan   = storage.Vulkan
	Metal    = storage.Metal
	WebGPU   = storage.WebGPU
)

// Ownership variants.
const (
	Owned    = storage.Owned
	Borrowed = storage.Borrowed
)

// Errors returned by storages and allocators.
var (
	ErrAllocation = storage.ErrAllocation
	ErrBorrowed   = storage.ErrBorrowed
)

// NewStorage creates an empty owned Storage served by alloc.
func NewStorage(scalar ScalarType, device Device, alloc Allocator) *Storage {
	return storage.New(scalar, device, alloc)
}

// WrapStorage creates a borrowed Storage over a caller-owned buffer.
func WrapStorage(buf Buffer, scalar ScalarType, device Device) *Storage {
	return storage.Wrap(buf, scalar, device)
}

// NewHostBuffer wraps caller-owned memory, typically for use with WrapStorage.
func NewHostBuffer(data []byte) *storage.HostBuffer {
	return storage.NewHostBuffer(data)
}

// NewHostAllocator creates a host allocator. limit <= 0 means unlimited.
func NewHostAllocator(limit int64) *HostAllocator {
	return storage.NewHostAllocator(limit)
}

// NewPooledAllocator wraps backing with a buffer pool.
func NewPooledAllocator(backing Allocator, cfg PoolConfig) *PooledAllocator {
	return storage.NewPooledAllocator(backing, cfg)
}

// DefaultPoolConfig returns the default pool configuration.
func DefaultPoolConfig() PoolConfig {
	return storage.DefaultPoolConfig()
}
