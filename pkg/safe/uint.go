// Package safe provides range-checked integer narrowing.
package safe

import (
	"fmt"
	"math"
)

// Integer is the set of integer kinds accepted by the narrowing helpers.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Uint16 narrows v to uint16, rejecting negatives and values above math.MaxUint16.
func Uint16[T Integer](v T) (uint16, error) {
	n, err := narrow(v, math.MaxUint16, "uint16")
	return uint16(n), err
}

// Uint32 narrows v to uint32, rejecting negatives and values above math.MaxUint32.
func Uint32[T Integer](v T) (uint32, error) {
	n, err := narrow(v, math.MaxUint32, "uint32")
	return uint32(n), err
}

// Uint64 converts v to uint64, rejecting negatives.
func Uint64[T Integer](v T) (uint64, error) {
	return narrow(v, math.MaxUint64, "uint64")
}

func narrow[T Integer](v T, limit uint64, kind string) (uint64, error) {
	if v < 0 {
		return 0, fmt.Errorf("value %d out of %s range", v, kind)
	}
	n := uint64(v)
	if n > limit {
		return 0, fmt.Errorf("value %d out of %s range", v, kind)
	}
	return n, nil
}
