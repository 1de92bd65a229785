// Package system tracks the current block number and per-account nonces.
package system

import (
	"errors"
	"maps"

	"github.com/goodnatureofminers/palletchain/internal/runtime/support"
)

var (
	ErrBlockNumberOverflow = errors.New("block number overflow")
	ErrNonceOverflow       = errors.New("nonce overflow")
)

// Pallet owns the block counter and nonce table.
type Pallet[A comparable, N support.Unsigned, M support.Unsigned] struct {
	blockNumber N
	nonces      map[A]M
}

func New[A comparable, N support.Unsigned, M support.Unsigned]() *Pallet[A, N, M] {
	return &Pallet[A, N, M]{nonces: make(map[A]M)}
}

// BlockNumber returns the number of the last executed block.
func (p *Pallet[A, N, M]) BlockNumber() N {
	return p.blockNumber
}

// NextBlockNumber returns the number the next executed block must carry.
func (p *Pallet[A, N, M]) NextBlockNumber() (N, error) {
	next, ok := support.Increment(p.blockNumber)
	if !ok {
		return p.blockNumber, ErrBlockNumberOverflow
	}
	return next, nil
}

func (p *Pallet[A, N, M]) IncBlockNumber() error {
	next, err := p.NextBlockNumber()
	if err != nil {
		return err
	}
	p.blockNumber = next
	return nil
}

func (p *Pallet[A, N, M]) Nonce(who A) M {
	return p.nonces[who]
}

// IncNonce records one more extrinsic from who. Nonces are not checked
// against replays.
func (p *Pallet[A, N, M]) IncNonce(who A) error {
	next, ok := support.Increment(p.nonces[who])
	if !ok {
		return ErrNonceOverflow
	}
	p.nonces[who] = next
	return nil
}

// Nonces returns a copy of the nonce table.
func (p *Pallet[A, N, M]) Nonces() map[A]M {
	return maps.Clone(p.nonces)
}
