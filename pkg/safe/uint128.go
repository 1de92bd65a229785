package safe

import (
	"errors"

	"github.com/holiman/uint256"
)

// Uint128Bits is the width of a 128-bit unsigned quantity.
const Uint128Bits = 128

var (
	ErrUint128Overflow  = errors.New("uint128 overflow")
	ErrUint128Underflow = errors.New("uint128 underflow")
)

// AddUint128 returns x+y, failing when the sum does not fit in 128 bits.
func AddUint128(x, y *uint256.Int) (*uint256.Int, error) {
	if x.BitLen() > Uint128Bits || y.BitLen() > Uint128Bits {
		return nil, ErrUint128Overflow
	}
	// two 128-bit operands never overflow 256 bits
	sum := new(uint256.Int).Add(x, y)
	if sum.BitLen() > Uint128Bits {
		return nil, ErrUint128Overflow
	}
	return sum, nil
}

// SubUint128 returns x-y, failing when y is greater than x.
func SubUint128(x, y *uint256.Int) (*uint256.Int, error) {
	if x.BitLen() > Uint128Bits || y.BitLen() > Uint128Bits {
		return nil, ErrUint128Overflow
	}
	diff, underflow := new(uint256.Int).SubOverflow(x, y)
	if underflow {
		return nil, ErrUint128Underflow
	}
	return diff, nil
}

// MaxUint128 returns 2^128-1.
func MaxUint128() *uint256.Int {
	return new(uint256.Int).Rsh(new(uint256.Int).SetAllOne(), 256-Uint128Bits)
}
