// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package view provides strided N-dimensional array views for the Born ML framework.
//
// # Overview
//
// A View describes how an N-dimensional index maps onto a flat, shared
// Storage buffer: sizes, strides (in elements) and a storage offset. Views
// never touch element data, so many views may alias one storage: slicing,
// transposing and squeezing only rewrite metadata.
//
// # Basic Usage
//
//	import "github.com/born-ml/stride/view"
//
//	func main() {
//	    v := view.New(view.DefaultConfig())
//	    defer v.Release()
//
//	    _ = v.Resize(4, 3)          // sizes [4 3], strides [3 1]
//	    _ = v.Unsqueeze1d(nil, 1)   // sizes [4 1 3], strides [3 3 1]
//	    _ = v.Squeeze1d(nil, 1)     // back to [4 3]
//
//	    t := view.New(view.DefaultConfig())
//	    defer t.Release()
//	    _ = t.Transpose(v, 0, 1)    // alias: sizes [3 4], strides [1 3]
//	}
//
// # Resizing
//
// Resize and ResizeNd keep only the leading strictly positive sizes, so
// [5, 0, 2] produces a 1-d view of size [5]. Storage is created on demand
// and grown (never shrunk) when the new geometry needs more elements; a
// failed grow leaves the view untouched.
//
// # Memory Management
//
// Storages and views are reference counted with atomic counters. Retain and
// Release may be called from any goroutine; everything else on a view is
// single-writer. Borrowed views and storages are owned by the caller and are
// never freed by the engine.
package view
