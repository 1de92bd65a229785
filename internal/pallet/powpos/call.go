package powpos

import "github.com/goodnatureofminers/palletchain/internal/runtime/support"

// Handler has one method per consensus call.
type Handler[A comparable, B support.Balance[B], N support.Unsigned] interface {
	Stake(staker A, amount B) error
	MineBlock(miner A, blockNumber N, proofOfWork uint64) error
}

// Call is the closed set of consensus calls.
type Call[A comparable, B support.Balance[B], N support.Unsigned] interface {
	Name() string
	dispatch(caller A, h Handler[A, B, N]) error
}

// Stake adds Amount to the caller's stake.
type Stake[A comparable, B support.Balance[B], N support.Unsigned] struct {
	Amount B
}

func (Stake[A, B, N]) Name() string { return "stake" }

func (c Stake[A, B, N]) dispatch(caller A, h Handler[A, B, N]) error {
	return h.Stake(caller, c.Amount)
}

// MineBlock asks to finalize BlockNumber with the caller as miner.
type MineBlock[A comparable, B support.Balance[B], N support.Unsigned] struct {
	BlockNumber N
	ProofOfWork uint64
}

func (MineBlock[A, B, N]) Name() string { return "mine_block" }

func (c MineBlock[A, B, N]) dispatch(caller A, h Handler[A, B, N]) error {
	return h.MineBlock(caller, c.BlockNumber, c.ProofOfWork)
}
