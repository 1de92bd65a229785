package model

import (
	"fmt"

	"github.com/goodnatureofminers/palletchain/pkg/safe"
	"github.com/holiman/uint256"
	"gopkg.in/yaml.v3"
)

// Balance is an unsigned 128-bit amount. The zero value is zero.
type Balance struct {
	v uint256.Int
}

// NewBalance builds a Balance from a uint64.
func NewBalance(v uint64) Balance {
	return Balance{v: *uint256.NewInt(v)}
}

// ParseBalance parses a base-10 amount that fits in 128 bits.
func ParseBalance(s string) (Balance, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return Balance{}, fmt.Errorf("parse balance %q: %w", s, err)
	}
	if v.BitLen() > safe.Uint128Bits {
		return Balance{}, fmt.Errorf("parse balance %q: %w", s, safe.ErrUint128Overflow)
	}
	return Balance{v: *v}, nil
}

// MaxBalance returns the largest representable Balance.
func MaxBalance() Balance {
	return Balance{v: *safe.MaxUint128()}
}

func (b Balance) CheckedAdd(other Balance) (Balance, error) {
	sum, err := safe.AddUint128(&b.v, &other.v)
	if err != nil {
		return Balance{}, err
	}
	return Balance{v: *sum}, nil
}

func (b Balance) CheckedSub(other Balance) (Balance, error) {
	diff, err := safe.SubUint128(&b.v, &other.v)
	if err != nil {
		return Balance{}, err
	}
	return Balance{v: *diff}, nil
}

func (b Balance) Cmp(other Balance) int {
	return b.v.Cmp(&other.v)
}

func (b Balance) IsZero() bool {
	return b.v.IsZero()
}

func (b Balance) String() string {
	return b.v.Dec()
}

func (b Balance) MarshalYAML() (any, error) {
	return b.String(), nil
}

func (b *Balance) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseBalance(node.Value)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// UnmarshalFlag lets go-flags parse a Balance option.
func (b *Balance) UnmarshalFlag(value string) error {
	parsed, err := ParseBalance(value)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
