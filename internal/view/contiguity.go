package view

import "github.com/born-ml/stride/internal/storage"

// IsContiguous reports whether v's strides follow the row-major rule.
// Dimensions of size 1 are skipped, so their stride may be anything.
func (v *View) IsContiguous() bool {
	z := 1
	for d := len(v.sizes) - 1; d >= 0; d-- {
		if v.sizes[d] == 1 {
			continue
		}
		if v.strides[d] != z {
			return false
		}
		z *= v.sizes[d]
	}
	return true
}

// AllContiguous reports whether every view is contiguous.
// It returns ErrEmptySet when called without views.
func AllContiguous(views ...*View) (bool, error) {
	if len(views) == 0 {
		return false, ErrEmptySet
	}
	for _, v := range views {
		if !v.IsContiguous() {
			return false, nil
		}
	}
	return true, nil
}

// Device returns the device tag of v's storage, or storage.NoDevice.
func (v *View) Device() storage.Device {
	if v.storage == nil {
		return storage.NoDevice
	}
	return v.storage.Device()
}

// AllSameDevice reports whether every view reports the first view's device.
// It returns ErrEmptySet when called without views.
func AllSameDevice(views ...*View) (bool, error) {
	if len(views) == 0 {
		return false, ErrEmptySet
	}
	device := views[0].Device()
	for _, v := range views[1:] {
		if v.Device() != device {
			return false, nil
		}
	}
	return true, nil
}
