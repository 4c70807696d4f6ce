package storage

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Device tags the location of a Storage buffer.
// The engine only compares tags; transfers belong to the device-binding layer.
type Device int

// NoDevice is reported for views that have no Storage attached.
const NoDevice Device = -1

// Known device tags.
const (
	CPU Device = iota
	CUDA
	Vulkan
	Metal
	WebGPU
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case NoDevice:
		return "none"
	case CPU:
		return "CPU"
	case CUDA:
		return "CUDA"
	case Vulkan:
		return "Vulkan"
	case Metal:
		return "Metal"
	case WebGPU:
		return "WebGPU"
	default:
		return fmt.Sprintf("Device(%d)", int(d))
	}
}

// ParseDevice maps a case-insensitive device name to its tag.
func ParseDevice(name string) (Device, error) {
	for d := NoDevice; d <= WebGPU; d++ {
		if strings.EqualFold(d.String(), name) {
			return d, nil
		}
	}
	return NoDevice, errors.Errorf("unknown device %q", name)
}

// Ownership says whether the engine manages a Storage's or View's lifetime.
type Ownership int

const (
	// Owned objects are reference counted and freed on the last release.
	Owned Ownership = iota
	// Borrowed objects belong to someone else; retain and release do nothing.
	Borrowed
)

// String returns "owned" or "borrowed".
func (o Ownership) String() string {
	if o == Borrowed {
		return "borrowed"
	}
	return "owned"
}
