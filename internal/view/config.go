package view

import "github.com/born-ml/stride/internal/storage"

// Config controls how a View creates its Storage when it needs one.
type Config struct {
	ScalarType storage.ScalarType // Element type of storages the view creates.
	Device     storage.Device     // Device tag of storages the view creates.
	Allocator  storage.Allocator  // Backend for those storages; nil means the shared host allocator.
}

// DefaultConfig returns a float32 CPU configuration on the shared host allocator.
func DefaultConfig() Config {
	return Config{
		ScalarType: storage.Float32,
		Device:     storage.CPU,
		Allocator:  storage.DefaultAllocator(),
	}
}

func (c Config) normalize() Config {
	if c.Allocator == nil {
		c.Allocator = storage.DefaultAllocator()
	}
	return c
}
