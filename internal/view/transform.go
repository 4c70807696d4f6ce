package view

import (
	"golang.org/x/exp/slices"

	"github.com/born-ml/stride/internal/storage"
)

// SetStorage rebinds v onto st at offset with the given geometry.
//
// v takes its own reference to st and drops the one it held before. When st
// is nil and v currently has a storage, v moves to a fresh empty storage of
// its own scalar type. A nil strides means contiguous. If the new geometry
// cannot be allocated, v keeps its previous storage, offset and geometry.
func (v *View) SetStorage(st *storage.Storage, offset int, sizes, strides []int) error {
	if err := v.checkLive("setStorage"); err != nil {
		return err
	}
	if strides != nil && len(strides) != len(sizes) {
		return argError("setStorage", 4, "strides", "invalid stride: %d strides for %d sizes", len(strides), len(sizes))
	}
	if offset < 0 {
		invalidOffset(offset)
	}

	prev, prevOffset := v.storage, v.offset
	if v.storage != st {
		if st != nil {
			st.Retain()
			v.storage = st
		} else {
			v.storage = storage.New(v.cfg.ScalarType, v.cfg.Device, v.cfg.Allocator)
		}
	}
	v.offset = offset

	if err := v.resizeNd(sizes, strides); err != nil {
		if v.storage != prev {
			v.storage.Release()
			v.storage = prev
		}
		v.offset = prevOffset
		return err
	}
	if prev != nil && prev != v.storage {
		prev.Release()
	}
	return nil
}

// Set makes v an alias of src: same storage, offset, sizes and strides.
func (v *View) Set(src *View) error {
	if src == nil {
		return argError("set", 1, "src", "nil view")
	}
	if err := v.checkLive("set"); err != nil {
		return err
	}
	if err := src.checkLive("set"); err != nil {
		return err
	}
	if v == src {
		return nil
	}
	return v.SetStorage(src.storage, src.offset, src.sizes, src.strides)
}

// Squeeze1d makes v an alias of src with dimension dim removed when its
// size is 1. A 1-d view is never squeezed to rank 0. A nil src means v.
func (v *View) Squeeze1d(src *View, dim int) error {
	if err := v.checkLive("squeeze1d"); err != nil {
		return err
	}
	if src == nil {
		src = v
	}
	if dim < 0 || dim >= src.NDimension() {
		return argError("squeeze1d", 2, "dim", "dimension %d out of range for %d-d view", dim, src.NDimension())
	}
	if err := v.Set(src); err != nil {
		return err
	}

	if v.sizes[dim] == 1 && len(v.sizes) > 1 {
		v.sizes = slices.Delete(v.sizes, dim, dim+1)
		v.strides = slices.Delete(v.strides, dim, dim+1)
	}
	return nil
}

// Unsqueeze1d makes v an alias of src with a size-1 dimension inserted at
// dim. The new stride keeps the suffix contiguous. A nil src means v.
func (v *View) Unsqueeze1d(src *View, dim int) error {
	if err := v.checkLive("unsqueeze1d"); err != nil {
		return err
	}
	if src == nil {
		src = v
	}
	if dim < 0 || dim > src.NDimension() {
		return argError("unsqueeze1d", 2, "dim", "dimension %d out of range for %d-d view", dim, src.NDimension())
	}
	if src.NDimension() == 0 {
		return argError("unsqueeze1d", 2, "dim", "cannot unsqueeze empty view")
	}
	if err := v.Set(src); err != nil {
		return err
	}

	v.sizes = slices.Insert(v.sizes, dim, 1)
	v.strides = slices.Insert(v.strides, dim, 1)
	if dim+1 < len(v.sizes) {
		v.strides[dim] = v.sizes[dim+1] * v.strides[dim+1]
	}
	return nil
}

// Narrow makes v an alias of src restricted to [first, first+size) along dim.
func (v *View) Narrow(src *View, dim, first, size int) error {
	if err := v.checkLive("narrow"); err != nil {
		return err
	}
	if src == nil {
		src = v
	}
	if dim < 0 || dim >= src.NDimension() {
		return argError("narrow", 2, "dim", "dimension %d out of range for %d-d view", dim, src.NDimension())
	}
	if first < 0 || first >= src.sizes[dim] {
		return argError("narrow", 3, "first", "index %d out of range for size %d", first, src.sizes[dim])
	}
	if size <= 0 || first+size > src.sizes[dim] {
		return argError("narrow", 4, "size", "size %d out of range starting at %d for size %d", size, first, src.sizes[dim])
	}
	if err := v.Set(src); err != nil {
		return err
	}

	v.offset += first * v.strides[dim]
	v.sizes[dim] = size
	return nil
}

// Select makes v an alias of src at index along dim, with dim removed.
func (v *View) Select(src *View, dim, index int) error {
	if err := v.checkLive("select"); err != nil {
		return err
	}
	if src == nil {
		src = v
	}
	if src.NDimension() <= 1 {
		return argError("select", 1, "src", "cannot select on a %d-d view", src.NDimension())
	}
	if dim < 0 || dim >= src.NDimension() {
		return argError("select", 2, "dim", "dimension %d out of range for %d-d view", dim, src.NDimension())
	}
	if index < 0 || index >= src.sizes[dim] {
		return argError("select", 3, "index", "index %d out of range for size %d", index, src.sizes[dim])
	}
	if err := v.Narrow(src, dim, index, 1); err != nil {
		return err
	}

	v.sizes = slices.Delete(v.sizes, dim, dim+1)
	v.strides = slices.Delete(v.strides, dim, dim+1)
	return nil
}

// Transpose makes v an alias of src with dimensions dim1 and dim2 swapped.
func (v *View) Transpose(src *View, dim1, dim2 int) error {
	if err := v.checkLive("transpose"); err != nil {
		return err
	}
	if src == nil {
		src = v
	}
	if dim1 < 0 || dim1 >= src.NDimension() {
		return argError("transpose", 2, "dim1", "dimension %d out of range for %d-d view", dim1, src.NDimension())
	}
	if dim2 < 0 || dim2 >= src.NDimension() {
		return argError("transpose", 3, "dim2", "dimension %d out of range for %d-d view", dim2, src.NDimension())
	}
	if err := v.Set(src); err != nil {
		return err
	}

	v.sizes[dim1], v.sizes[dim2] = v.sizes[dim2], v.sizes[dim1]
	v.strides[dim1], v.strides[dim2] = v.strides[dim2], v.strides[dim1]
	return nil
}
