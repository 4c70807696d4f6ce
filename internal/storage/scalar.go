// Package storage provides reference-counted element buffers that back strided views.
package storage

import (
	"fmt"

	"github.com/pkg/errors"
)

// ScalarType represents the element type held by a Storage.
type ScalarType int

// Supported scalar types.
const (
	Float32 ScalarType = iota
	Float64
	Float16
	BFloat16
	Int8
	Int16
	Int32
	Int64
	Uint8
	Bool
)

// Size returns the byte size of one element.
func (st ScalarType) Size() int {
	switch st {
	case Float16, BFloat16, Int16:
		return 2
	case Float32, Int32:
		return 4
	case Float64, Int64:
		return 8
	case Int8, Uint8, Bool:
		return 1
	default:
		panic(fmt.Sprintf("unknown scalar type: %d", int(st)))
	}
}

// String returns a human-readable name for the scalar type.
func (st ScalarType) String() string {
	switch st {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Float16:
		return "float16"
	case BFloat16:
		return "bfloat16"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}

// ParseScalarType maps a name produced by String back to its ScalarType.
func ParseScalarType(name string) (ScalarType, error) {
	for st := Float32; st <= Bool; st++ {
		if st.String() == name {
			return st, nil
		}
	}
	return 0, errors.Errorf("unknown scalar type %q", name)
}
