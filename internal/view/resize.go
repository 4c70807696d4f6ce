package view

import (
	"math"
	"math/bits"

	"github.com/pkg/errors"

	"github.com/born-ml/stride/internal/storage"
)

// Resize reshapes v to sizes with contiguous strides.
// Resize() with no sizes makes v rank 0.
func (v *View) Resize(sizes ...int) error {
	if sizes == nil {
		sizes = []int{}
	}
	return v.ResizeNd(sizes, nil)
}

// ResizeNd reshapes v in place.
//
// Only the leading strictly positive entries of sizes count: [3, 0, 5]
// yields a 1-d view of size [3]. A nil strides, or a negative entry in it,
// selects the contiguous (row-major) stride for that dimension. The storage
// is created or grown when the new geometry needs more elements than it
// holds; it is never shrunk. If growing fails, v is left unchanged.
func (v *View) ResizeNd(sizes, strides []int) error {
	if err := v.checkLive("resizeNd"); err != nil {
		return err
	}
	if sizes == nil {
		return argError("resizeNd", 1, "sizes", "invalid size")
	}
	if strides != nil && len(strides) != len(sizes) {
		return argError("resizeNd", 2, "strides", "invalid stride: %d strides for %d sizes", len(strides), len(sizes))
	}
	return v.resizeNd(sizes, strides)
}

// ResizeAs reshapes v to other's sizes with contiguous strides, unless the
// sizes already match.
func (v *View) ResizeAs(other *View) error {
	if other == nil {
		return argError("resizeAs", 1, "other", "nil view")
	}
	if err := v.checkLive("resizeAs"); err != nil {
		return err
	}
	if v.IsSameSizeAs(other) {
		return nil
	}
	return v.resizeNd(other.sizes, nil)
}

func (v *View) resizeNd(sizes, strides []int) error {
	if v.offset < 0 {
		invalidOffset(v.offset)
	}

	n := 0
	same := true
	for d, size := range sizes {
		if size <= 0 {
			break
		}
		n++
		if d < len(v.sizes) {
			if size != v.sizes[d] {
				same = false
			}
			if strides != nil && strides[d] >= 0 && strides[d] != v.strides[d] {
				same = false
			}
		}
	}
	if same && n == len(v.sizes) {
		return nil
	}

	if n == 0 {
		v.sizes = v.sizes[:0]
		v.strides = v.strides[:0]
		return nil
	}

	newSizes := make([]int, n)
	newStrides := make([]int, n)
	total, count := 1, 1
	ok := true
	for d := n - 1; d >= 0 && ok; d-- {
		newSizes[d] = sizes[d]
		switch {
		case strides != nil && strides[d] >= 0:
			newStrides[d] = strides[d]
		case d == n-1:
			newStrides[d] = 1
		default:
			newStrides[d], ok = mulInt(newSizes[d+1], newStrides[d+1])
		}
		var span int
		if ok {
			span, ok = mulInt(newSizes[d]-1, newStrides[d])
		}
		if ok {
			total, ok = addInt(total, span)
		}
		if ok {
			count, ok = mulInt(count, newSizes[d])
		}
	}
	footprint := 0
	if ok {
		footprint, ok = addInt(total, v.offset)
	}
	if !ok {
		return errors.Wrapf(storage.ErrAllocation, "resize to %v at offset %d: size overflows int", sizes[:n], v.offset)
	}

	if err := v.reserve(footprint); err != nil {
		return err
	}
	v.sizes = newSizes
	v.strides = newStrides
	return nil
}

// reserve makes sure v has a storage of at least footprint elements.
// A storage created here is only attached once it is large enough.
func (v *View) reserve(footprint int) error {
	if footprint <= 0 {
		return nil
	}

	st := v.storage
	created := false
	if st == nil {
		st = storage.New(v.cfg.ScalarType, v.cfg.Device, v.cfg.Allocator)
		created = true
	}
	if footprint > st.Capacity() {
		if err := st.GrowTo(footprint); err != nil {
			if created {
				st.Release()
			}
			return errors.Wrapf(err, "resize to %d elements", footprint)
		}
	}
	v.storage = st
	return nil
}

// mulInt returns a*b for non-negative a and b, and false if it overflows int.
func mulInt(a, b int) (int, bool) {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > math.MaxInt {
		return 0, false
	}
	return int(lo), true
}

// addInt returns a+b for non-negative a and b, and false if it overflows int.
func addInt(a, b int) (int, bool) {
	if a > math.MaxInt-b {
		return 0, false
	}
	return a + b, true
}
