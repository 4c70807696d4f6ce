// Package kernel adapts views to numeric libraries without copying.
//
// Kernels read a view's (sizes, strides, offset, storage) tuple and compute
// over the storage memory; they never change a view's geometry.
package kernel

import (
	"unsafe"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/stride/internal/storage"
	"github.com/born-ml/stride/internal/view"
)

// ErrLayout is returned for views whose layout the target type cannot express.
var ErrLayout = errors.New("view layout not representable")

// Float64Matrix returns a gonum matrix over the memory of a 2-d float64 host view.
// Inner elements must be adjacent (stride 1) and rows must not overlap.
// Writes through the matrix land in the view's storage.
func Float64Matrix(v *view.View) (*mat.Dense, error) {
	if v.NDimension() != 2 {
		return nil, errors.Wrapf(ErrLayout, "matrix needs a 2-d view, got %d-d", v.NDimension())
	}
	sizes, strides := v.Sizes(), v.Strides()
	rows, cols := sizes[0], sizes[1]

	if cols > 1 && strides[1] != 1 {
		return nil, errors.Wrapf(ErrLayout, "column stride %d", strides[1])
	}
	rowStride := strides[0]
	if rows == 1 {
		rowStride = max(rowStride, cols)
	}
	if rowStride < cols {
		return nil, errors.Wrapf(ErrLayout, "row stride %d shorter than %d columns", rowStride, cols)
	}

	data, err := float64Data(v, (rows-1)*rowStride+cols)
	if err != nil {
		return nil, err
	}

	var m mat.Dense
	m.SetRawMatrix(blas64.General{Rows: rows, Cols: cols, Stride: rowStride, Data: data})
	return &m, nil
}

// Float64Vector returns a gonum vector over the memory of a 1-d float64 host view.
func Float64Vector(v *view.View) (*mat.VecDense, error) {
	if v.NDimension() != 1 {
		return nil, errors.Wrapf(ErrLayout, "vector needs a 1-d view, got %d-d", v.NDimension())
	}
	n, _ := v.Size(0)
	inc, _ := v.Stride(0)
	if n == 1 {
		inc = 1
	}
	if inc <= 0 {
		return nil, errors.Wrapf(ErrLayout, "vector stride %d", inc)
	}

	data, err := float64Data(v, (n-1)*inc+1)
	if err != nil {
		return nil, err
	}

	var vec mat.VecDense
	vec.SetRawVector(blas64.Vector{N: n, Inc: inc, Data: data})
	return &vec, nil
}

// float64Data returns extent elements of v's storage starting at its offset.
func float64Data(v *view.View, extent int) ([]float64, error) {
	if v.ScalarType() != storage.Float64 {
		return nil, errors.Errorf("kernel: view holds %s, not float64", v.ScalarType())
	}
	st := v.Storage()
	if st == nil {
		return nil, errors.New("kernel: view has no storage")
	}
	b, err := st.Bytes()
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, errors.New("kernel: storage is empty")
	}

	//nolint:gosec // unsafe.Slice for zero-copy reinterpretation, bounds checked below.
	all := unsafe.Slice((*float64)(unsafe.Pointer(&b[0])), len(b)/8)
	start := v.StorageOffset()
	if start+extent > len(all) {
		return nil, errors.Errorf("kernel: view spans [%d, %d) but storage holds %d elements", start, start+extent, len(all))
	}
	return all[start : start+extent], nil
}
