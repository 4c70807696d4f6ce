package storage

import "sync/atomic"

// RefCount is an atomic reference counter that reports the 1 -> 0 transition
// to exactly one caller, however many goroutines release concurrently.
// The zero value holds no references; call Init before sharing it.
type RefCount struct {
	n atomic.Int32
}

// Init sets the count to one.
func (r *RefCount) Init() {
	r.n.Store(1)
}

// Inc adds a reference.
func (r *RefCount) Inc() {
	r.n.Add(1)
}

// Dec drops a reference and reports whether it was the last one.
// Releasing an already dead counter is ignored.
func (r *RefCount) Dec() bool {
	for {
		c := r.n.Load()
		if c <= 0 {
			return false
		}
		if r.n.CompareAndSwap(c, c-1) {
			return c == 1
		}
	}
}

// Load returns the current count.
func (r *RefCount) Load() int32 {
	return r.n.Load()
}
