// Package view implements strided N-dimensional array views: the shape,
// stride and storage offset of an array over a shared, reference-counted
// Storage.
//
// A View never touches element data. It decides how indices map onto a
// Storage and makes sure the Storage is large enough for that mapping.
// Element (i0, ..., in-1) of a view lives at storage index
//
//	StorageOffset() + i0*Stride(0) + ... + in-1*Stride(n-1)
//
// Views are single-writer: geometry mutations (resize, rebind, squeeze, ...)
// must not race with other use of the same view. Only Retain and Release are
// safe to call concurrently.
package view

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/born-ml/stride/internal/storage"
)

// View is the metadata record of a strided array.
type View struct {
	sizes     []int
	strides   []int
	offset    int
	storage   *storage.Storage
	cfg       Config
	ownership storage.Ownership
	refs      storage.RefCount
	released  bool
}

// New creates an owned rank-0 view with no storage and refCount = 1.
func New(cfg Config) *View {
	v := &View{
		cfg:       cfg.normalize(),
		ownership: storage.Owned,
	}
	v.refs.Init()
	return v
}

// NewBorrowed creates a rank-0 view whose lifetime belongs to the caller.
// Retain and Release do nothing on it, and the engine never frees it.
func NewBorrowed(cfg Config) *View {
	v := New(cfg)
	v.ownership = storage.Borrowed
	return v
}

// NewWithStorage creates an owned view over st with the given geometry.
// The view takes its own reference to st. A nil strides means contiguous.
func NewWithStorage(st *storage.Storage, offset int, sizes, strides []int) (*View, error) {
	cfg := DefaultConfig()
	if st != nil {
		cfg.ScalarType = st.ScalarType()
		cfg.Device = st.Device()
	}
	v := New(cfg)
	if err := v.SetStorage(st, offset, sizes, strides); err != nil {
		v.Release()
		return nil, err
	}
	return v, nil
}

// NDimension returns the number of dimensions.
func (v *View) NDimension() int {
	return len(v.sizes)
}

// Size returns the extent of dimension dim.
func (v *View) Size(dim int) (int, error) {
	if dim < 0 || dim >= len(v.sizes) {
		return 0, argError("size", 1, "dim", "dimension %d out of range for %d-d view", dim, len(v.sizes))
	}
	return v.sizes[dim], nil
}

// Stride returns the stride, in elements, of dimension dim.
func (v *View) Stride(dim int) (int, error) {
	if dim < 0 || dim >= len(v.strides) {
		return 0, argError("stride", 1, "dim", "dimension %d out of range for %d-d view", dim, len(v.strides))
	}
	return v.strides[dim], nil
}

// Sizes returns a copy of the sizes.
func (v *View) Sizes() []int {
	return slices.Clone(v.sizes)
}

// Strides returns a copy of the strides.
func (v *View) Strides() []int {
	return slices.Clone(v.strides)
}

// NumElements returns 0 for a rank-0 view and the product of sizes otherwise.
func (v *View) NumElements() int {
	if len(v.sizes) == 0 {
		return 0
	}
	n := 1
	for _, s := range v.sizes {
		n *= s
	}
	return n
}

// StorageOffset returns the element offset of the view into its storage.
func (v *View) StorageOffset() int {
	return v.offset
}

// Storage returns the backing storage, or nil.
func (v *View) Storage() *storage.Storage {
	return v.storage
}

// ScalarType returns the element type of the storage, or of storages the
// view would create when it has none.
func (v *View) ScalarType() storage.ScalarType {
	if v.storage != nil {
		return v.storage.ScalarType()
	}
	return v.cfg.ScalarType
}

// Ownership reports whether the engine manages this view's lifetime.
func (v *View) Ownership() storage.Ownership {
	return v.ownership
}

// IsSameSizeAs reports whether both views have the same rank and sizes.
func (v *View) IsSameSizeAs(other *View) bool {
	return slices.Equal(v.sizes, other.sizes)
}

// IsSetTo reports whether v and other alias the same elements in the same
// order: same storage, offset, sizes and strides, and a non-empty rank.
func (v *View) IsSetTo(other *View) bool {
	return v.storage != nil &&
		v.storage == other.storage &&
		v.offset == other.offset &&
		len(v.sizes) > 0 &&
		slices.Equal(v.sizes, other.sizes) &&
		slices.Equal(v.strides, other.strides)
}

// String returns a human-readable representation of the view.
func (v *View) String() string {
	return fmt.Sprintf("View[%s]%v stride %v offset %d on %s", v.ScalarType(), v.sizes, v.strides, v.offset, v.Device())
}
