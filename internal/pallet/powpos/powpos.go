// Package powpos finalizes blocks under a hybrid rule: a block number is
// awarded to the first miner that presents enough work and holds enough stake.
//
// Every block number moves through Unmined -> Finalized exactly once. The
// finalized table is write-once; nothing in this package overwrites or
// removes an entry.
package powpos

import (
	"maps"

	"github.com/goodnatureofminers/palletchain/internal/runtime/support"
)

// Pallet owns the stake pool and the finalized block table.
type Pallet[A comparable, B support.Balance[B], N support.Unsigned] struct {
	cfg         Config[B]
	stakePool   map[A]B
	minedBlocks map[N]A
}

func New[A comparable, B support.Balance[B], N support.Unsigned](cfg Config[B]) (*Pallet[A, B, N], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pallet[A, B, N]{
		cfg:         cfg,
		stakePool:   make(map[A]B),
		minedBlocks: make(map[N]A),
	}, nil
}

// Stake adds amount to the staker's pool entry.
func (p *Pallet[A, B, N]) Stake(staker A, amount B) error {
	if amount.IsZero() {
		return ErrInvalidStake
	}
	staked, err := p.stakePool[staker].CheckedAdd(amount)
	if err != nil {
		return ErrStakeOverflow
	}
	p.stakePool[staker] = staked
	return nil
}

// MineBlock finalizes blockNumber for miner if it is still unmined and both
// the work and the stake predicates hold.
func (p *Pallet[A, B, N]) MineBlock(miner A, blockNumber N, proofOfWork uint64) error {
	if _, mined := p.minedBlocks[blockNumber]; mined {
		return ErrAlreadyMined
	}
	if !p.WorkValid(proofOfWork) || !p.StakeValid(miner) {
		return ErrConsensusValidationFailed
	}
	p.minedBlocks[blockNumber] = miner
	return nil
}

// WorkValid reports whether proofOfWork meets the difficulty target. Lower is more work.
func (p *Pallet[A, B, N]) WorkValid(proofOfWork uint64) bool {
	return proofOfWork < p.cfg.WorkThreshold
}

// StakeValid reports whether who holds at least the stake threshold.
func (p *Pallet[A, B, N]) StakeValid(who A) bool {
	return p.StakeOf(who).Cmp(p.cfg.StakeThreshold) >= 0
}

// StakeOf returns the stake of who, zero when it never staked.
func (p *Pallet[A, B, N]) StakeOf(who A) B {
	return p.stakePool[who]
}

// Miner returns the account that finalized blockNumber.
func (p *Pallet[A, B, N]) Miner(blockNumber N) (A, bool) {
	miner, ok := p.minedBlocks[blockNumber]
	return miner, ok
}

func (p *Pallet[A, B, N]) Config() Config[B] {
	return p.cfg
}

// StakePool returns a copy of the stake pool.
func (p *Pallet[A, B, N]) StakePool() map[A]B {
	return maps.Clone(p.stakePool)
}

// MinedBlocks returns a copy of the finalized block table.
func (p *Pallet[A, B, N]) MinedBlocks() map[N]A {
	return maps.Clone(p.minedBlocks)
}

func (p *Pallet[A, B, N]) Dispatch(caller A, call Call[A, B, N]) error {
	return call.dispatch(caller, p)
}
