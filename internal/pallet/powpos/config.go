package powpos

import "fmt"

const (
	// DefaultWorkThreshold is the exclusive upper bound for an accepted proof of work.
	DefaultWorkThreshold uint64 = 10_000
	// DefaultStakeThreshold is the minimum stake a miner needs.
	DefaultStakeThreshold uint64 = 50
)

// Config holds the admission thresholds of the consensus pallet.
type Config[B any] struct {
	// WorkThreshold: a proof is valid when it is strictly below this value.
	WorkThreshold uint64
	// StakeThreshold: a miner is eligible when its stake is at least this value.
	StakeThreshold B
}

// Validate rejects thresholds no block could ever pass.
func (cfg Config[B]) Validate() error {
	if cfg.WorkThreshold == 0 {
		return fmt.Errorf("%w: work threshold must be positive", ErrInvalidConfig)
	}
	return nil
}
