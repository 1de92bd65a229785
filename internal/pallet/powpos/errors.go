package powpos

import "errors"

// Consensus errors
var (
	ErrInvalidStake              = errors.New("stake amount must be greater than zero")
	ErrStakeOverflow             = errors.New("stake overflow")
	ErrAlreadyMined              = errors.New("block already mined")
	ErrConsensusValidationFailed = errors.New("consensus validation failed")
	ErrInvalidConfig             = errors.New("invalid consensus config")
)
