//go:build windows

package webgpu

import (
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/stride/internal/storage"
)

// deviceBuffer wraps a GPU buffer with its aligned byte size.
type deviceBuffer struct {
	buffer *wgpu.Buffer
	size   int
}

// Len returns the aligned buffer size in bytes.
func (b *deviceBuffer) Len() int {
	return b.size
}

// Allocator hands out storage buffers on a single WebGPU device.
// Every device tag it is asked for must be storage.WebGPU.
type Allocator struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	mu       sync.Mutex
	live     int // Buffers handed out and not yet freed.
	released bool
}

// New creates an allocator on the default high-performance adapter.
func New() (alloc *Allocator, err error) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			alloc = nil
			err = errors.Wrapf(ErrUnavailable, "native library: %v", r)
		}
	}()

	instance := wgpu.CreateInstance(nil)
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, errors.Wrapf(ErrUnavailable, "request adapter: %v", adapterErr)
	}

	device, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, errors.Wrapf(ErrUnavailable, "request device: %v", deviceErr)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, errors.Wrap(ErrUnavailable, "no queue")
	}

	return &Allocator{
		instance: instance,
		adapter:  adapter,
		device:   device,
		queue:    queue,
	}, nil
}

// IsAvailable checks if a WebGPU adapter can be obtained.
func IsAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return false
	}
	adapter.Release()
	return true
}

// Allocate creates a storage buffer of at least byteSize bytes.
func (a *Allocator) Allocate(device storage.Device, byteSize int) (buf storage.Buffer, err error) {
	if device != storage.WebGPU {
		return nil, errors.Wrapf(storage.ErrAllocation, "webgpu allocator cannot serve %s", device)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.released {
		return nil, errors.Wrap(storage.ErrAllocation, "webgpu allocator released")
	}

	defer func() {
		if r := recover(); r != nil {
			buf = nil
			err = errors.Wrapf(storage.ErrAllocation, "create %d byte buffer: %v", byteSize, r)
		}
	}()

	size := align(byteSize)
	buffer := a.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
		Size:  uint64(size), //nolint:gosec // G115: size is non-negative and aligned.
	})
	if buffer == nil {
		return nil, errors.Wrapf(storage.ErrAllocation, "create %d byte buffer", size)
	}
	a.live++
	klog.V(3).Infof("webgpu: allocated %d bytes (%d live buffers)", size, a.live)
	return &deviceBuffer{buffer: buffer, size: size}, nil
}

// Free releases a GPU buffer.
func (a *Allocator) Free(buf storage.Buffer) error {
	db, ok := buf.(*deviceBuffer)
	if !ok {
		return errors.Wrapf(storage.ErrForeignBuffer, "webgpu allocator cannot free %T", buf)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if db.buffer != nil {
		db.buffer.Release()
		db.buffer = nil
		a.live--
	}
	return nil
}

// Copy copies the first byteCount bytes of src into dst on the GPU queue.
func (a *Allocator) Copy(dst, src storage.Buffer, byteCount int) error {
	d, ok := dst.(*deviceBuffer)
	if !ok {
		return errors.Wrapf(storage.ErrUnsupported, "copy into %T", dst)
	}
	s, ok := src.(*deviceBuffer)
	if !ok {
		return errors.Wrapf(storage.ErrUnsupported, "copy from %T", src)
	}
	if byteCount == 0 {
		return nil
	}
	n := align(byteCount)
	if n > d.size || n > s.size {
		return errors.Errorf("webgpu: copy of %d bytes overruns buffers (%d <- %d)", n, d.size, s.size)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	encoder := a.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(s.buffer, 0, d.buffer, 0, uint64(n)) //nolint:gosec // G115: n is non-negative.
	cmdBuffer := encoder.Finish(nil)
	a.queue.Submit(cmdBuffer)
	return nil
}

// Live returns the number of buffers handed out and not yet freed.
func (a *Allocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.live
}

// Release releases the device. Buffers still alive become invalid.
func (a *Allocator) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.released {
		return
	}
	a.released = true
	if a.live > 0 {
		klog.Warningf("webgpu: releasing allocator with %d live buffers", a.live)
	}
	if a.queue != nil {
		a.queue.Release()
		a.queue = nil
	}
	if a.device != nil {
		a.device.Release()
		a.device = nil
	}
	if a.adapter != nil {
		a.adapter.Release()
		a.adapter = nil
	}
	if a.instance != nil {
		a.instance.Release()
		a.instance = nil
	}
}
