// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package view

import (
	"github.com/born-ml/stride/internal/view"
)

// View is the metadata record of a strided array.
//
// View provides:
//   - Geometry queries via NDimension(), Size(), Stride(), Sizes(), Strides()
//   - In-place reshaping via Resize(), ResizeNd(), ResizeAs()
//   - Aliasing transforms via Set(), SetStorage(), Squeeze1d(), Unsqueeze1d(),
//     Narrow(), Select(), Transpose()
//   - Reference counting via Retain() and Release()
//
// Example:
//
//	v := view.New(view.DefaultConfig())
//	_ = v.Resize(4, 3)
//	fmt.Println(v.Strides(), v.IsContiguous()) // [3 1] true
type View = view.View

// Config controls how a View creates its Storage when it needs one.
type Config = view.Config

// ArgError reports a bad caller argument.
type ArgError = view.ArgError

// Errors returned by view operations.
var (
	ErrInvalidArgument      = view.ErrInvalidArgument
	ErrInvalidStorageOffset = view.ErrInvalidStorageOffset
	ErrEmptySet             = view.ErrEmptySet
	ErrReleased             = view.ErrReleased
)

// DefaultConfig returns a float32 CPU configuration on the shared host allocator.
func DefaultConfig() Config {
	return view.DefaultConfig()
}

// New creates an owned rank-0 view with no storage.
func New(cfg Config) *View {
	return view.New(cfg)
}

// NewBorrowed creates a rank-0 view whose lifetime belongs to the caller.
func NewBorrowed(cfg Config) *View {
	return view.NewBorrowed(cfg)
}

// NewWithStorage creates an owned view over st with the given geometry.
func NewWithStorage(st *Storage, offset int, sizes, strides []int) (*View, error) {
	return view.NewWithStorage(st, offset, sizes, strides)
}

// AllContiguous reports whether every view is contiguous.
func AllContiguous(views ...*View) (bool, error) {
	return view.AllContiguous(views...)
}

// AllSameDevice reports whether every view lives on the same device.
func AllSameDevice(views ...*View) (bool, error) {
	return view.AllSameDevice(views...)
}
