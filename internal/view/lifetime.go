package view

import (
	"github.com/pkg/errors"

	"github.com/born-ml/stride/internal/storage"
)

// Retain increments the reference count. No-op for borrowed views.
func (v *View) Retain() {
	if v.ownership != storage.Owned {
		return
	}
	v.refs.Inc()
}

// Release decrements the reference count. The last release of an owned view
// drops its storage reference and clears its geometry; it happens exactly
// once even when releases race. No-op for borrowed views.
// A released view rejects every geometry change with ErrReleased.
func (v *View) Release() {
	if v.ownership != storage.Owned {
		return
	}
	if !v.refs.Dec() {
		return
	}

	if v.storage != nil {
		v.storage.Release()
		v.storage = nil
	}
	v.sizes = nil
	v.strides = nil
	v.offset = 0
	v.released = true
}

// RefCount returns the current reference count.
func (v *View) RefCount() int {
	return int(v.refs.Load())
}

// Released reports whether the last reference to an owned view is gone.
func (v *View) Released() bool {
	return v.released
}

func (v *View) checkLive(op string) error {
	if v.released {
		return errors.Wrap(ErrReleased, op)
	}
	return nil
}
