// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package view

import (
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/stride/internal/kernel"
)

// ErrLayout is returned for views whose layout a gonum type cannot express.
var ErrLayout = kernel.ErrLayout

// Float64Matrix returns a gonum matrix sharing the memory of a 2-d float64
// host view. Writes through the matrix land in the view's storage.
//
// Example:
//
//	v := view.New(view.Config{ScalarType: view.Float64})
//	_ = v.Resize(2, 3)
//	m, _ := view.Float64Matrix(v)
//	m.Set(1, 2, 5)
func Float64Matrix(v *View) (*mat.Dense, error) {
	return kernel.Float64Matrix(v)
}

// Float64Vector returns a gonum vector sharing the memory of a 1-d float64
// host view. The view's stride becomes the vector increment.
func Float64Vector(v *View) (*mat.VecDense, error) {
	return kernel.Float64Vector(v)
}
