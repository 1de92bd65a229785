package runtime

import "errors"

var (
	ErrBlockNumberMismatch = errors.New("block number does not match what is expected")
	ErrEmptyCall           = errors.New("extrinsic carries no call")
)
