package storage

import (
	"sync"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// SizeClass represents different buffer size categories for pooling.
type SizeClass int

const (
	// SmallClass for buffers below PoolConfig.SmallThreshold.
	SmallClass SizeClass = iota
	// MediumClass for buffers below PoolConfig.MediumThreshold.
	MediumClass
	// LargeClass for everything else.
	LargeClass
)

// PoolConfig controls PooledAllocator behavior.
type PoolConfig struct {
	MaxPerClass     int // Max idle buffers kept per size class.
	SmallThreshold  int // Byte size below which a buffer is small.
	MediumThreshold int // Byte size below which a buffer is medium.
}

// DefaultPoolConfig returns the 4KB / 1MB split with 100 idle buffers per class.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxPerClass:     100,
		SmallThreshold:  4 * 1024,
		MediumThreshold: 1024 * 1024,
	}
}

// PooledBuffer is a Buffer handed out by a PooledAllocator.
type PooledBuffer struct {
	inner  Buffer
	device Device
}

// Len returns the size of the pooled buffer, which may exceed the request.
func (b *PooledBuffer) Len() int {
	return b.inner.Len()
}

// Unwrap returns the buffer obtained from the backing allocator.
func (b *PooledBuffer) Unwrap() Buffer {
	return b.inner
}

// PoolStats reports PooledAllocator usage.
type PoolStats struct {
	Allocated uint64 // Buffers obtained from the backing allocator.
	Released  uint64 // Buffers handed back through Free.
	Hits      uint64 // Requests served from the pool.
	Misses    uint64 // Requests that went to the backing allocator.
	Pooled    int    // Idle buffers currently held.
}

// PooledAllocator reuses freed buffers per device and size class.
// Reused buffers are not cleared.
type PooledAllocator struct {
	backing Allocator
	cfg     PoolConfig

	idle map[SizeClass][]*PooledBuffer

	mu    sync.Mutex
	stats PoolStats
}

// NewPooledAllocator wraps backing with a buffer pool.
func NewPooledAllocator(backing Allocator, cfg PoolConfig) *PooledAllocator {
	return &PooledAllocator{
		backing: backing,
		cfg:     cfg,
		idle: map[SizeClass][]*PooledBuffer{
			SmallClass:  make([]*PooledBuffer, 0, cfg.MaxPerClass),
			MediumClass: make([]*PooledBuffer, 0, cfg.MaxPerClass),
			LargeClass:  make([]*PooledBuffer, 0, cfg.MaxPerClass),
		},
	}
}

// Allocate gets a buffer from the pool or creates a new one.
func (p *PooledAllocator) Allocate(device Device, byteSize int) (Buffer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	class := p.classify(byteSize)
	for i, pb := range p.idle[class] {
		if pb.device == device && pb.Len() >= byteSize {
			p.idle[class] = append(p.idle[class][:i], p.idle[class][i+1:]...)
			p.stats.Hits++
			return pb, nil
		}
	}

	p.stats.Misses++
	inner, err := p.backing.Allocate(device, byteSize)
	if err != nil {
		return nil, err
	}
	p.stats.Allocated++
	return &PooledBuffer{inner: inner, device: device}, nil
}

// Free returns a buffer to the pool, or to the backing allocator when the
// size class is full.
func (p *PooledAllocator) Free(buf Buffer) error {
	pb, ok := buf.(*PooledBuffer)
	if !ok {
		return errors.Wrapf(ErrForeignBuffer, "pool cannot free %T", buf)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.stats.Released++
	class := p.classify(pb.Len())
	if len(p.idle[class]) >= p.cfg.MaxPerClass {
		return p.backing.Free(pb.inner)
	}
	p.idle[class] = append(p.idle[class], pb)
	return nil
}

// Copy copies between two pooled buffers through the backing allocator.
func (p *PooledAllocator) Copy(dst, src Buffer, byteCount int) error {
	return p.backing.Copy(unwrap(dst), unwrap(src), byteCount)
}

// Clear hands every idle buffer back to the backing allocator.
func (p *PooledAllocator) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for class, pool := range p.idle {
		for _, pb := range pool {
			if err := p.backing.Free(pb.inner); err != nil {
				klog.Warningf("pool: failed to free %d byte buffer on %s: %v", pb.Len(), pb.device, err)
				if firstErr == nil {
					firstErr = err
				}
			}
		}
		p.idle[class] = pool[:0]
	}
	return firstErr
}

// Stats returns a snapshot of pool usage.
func (p *PooledAllocator) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.stats
	s.Pooled = len(p.idle[SmallClass]) + len(p.idle[MediumClass]) + len(p.idle[LargeClass])
	return s
}

// classify determines the size class for a byte size.
func (p *PooledAllocator) classify(byteSize int) SizeClass {
	if byteSize < p.cfg.SmallThreshold {
		return SmallClass
	}
	if byteSize < p.cfg.MediumThreshold {
		return MediumClass
	}
	return LargeClass
}

// unwrap strips allocator wrappers down to the innermost buffer.
func unwrap(buf Buffer) Buffer {
	for {
		u, ok := buf.(interface{ Unwrap() Buffer })
		if !ok {
			return buf
		}
		buf = u.Unwrap()
	}
}

// hostBytes returns the Go memory behind buf, if any.
func hostBytes(buf Buffer) ([]byte, bool) {
	h, ok := unwrap(buf).(HostAccessor)
	if !ok {
		return nil, false
	}
	return h.Bytes(), true
}
