// Package safe provides checked numeric helpers that fail instead of wrapping.
package safe

import (
	"fmt"
	"math"
)

// Uint32 narrows an unsigned or signed integer to uint32, rejecting values outside its range.
func Uint32[T ~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64](v T) (uint32, error) {
	if v < 0 || uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("value %d out of uint32 range", v)
	}
	return uint32(v), nil
}
