// Package support holds the pieces shared by every pallet: the dispatch
// contract, the block containers and the numeric constraints pallets are
// generic over.
package support

// Dispatcher routes a caller-attributed call to the state it mutates.
// A nil error means the call was fully applied; a non-nil error means the
// dispatcher left its state untouched.
type Dispatcher[Caller any, Call any] interface {
	Dispatch(caller Caller, call Call) error
}

// Header carries the block metadata checked before any extrinsic runs.
type Header[N Unsigned] struct {
	BlockNumber N
}

// Extrinsic is a call attributed to exactly one caller.
type Extrinsic[Caller any, Call any] struct {
	Caller Caller
	Call   Call
}

// Block is a header followed by extrinsics executed in order.
type Block[H any, X any] struct {
	Header     H
	Extrinsics []X
}
