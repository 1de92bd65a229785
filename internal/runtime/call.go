package runtime

import "github.com/goodnatureofminers/palletchain/internal/runtime/model"

// Pallet names as reported in logs, metrics and the journal.
const (
	PalletBalances         = "balances"
	PalletProofOfExistence = "proof_of_existence"
	PalletPowPos           = "pow_pos"
)

// router has one method per pallet. Adding a pallet variant adds a method
// here, which the Runtime must implement before the module compiles again.
type router interface {
	dispatchBalances(caller model.AccountID, call BalancesCall) error
	dispatchProofOfExistence(caller model.AccountID, call ProofOfExistenceCall) error
	dispatchPowPos(caller model.AccountID, call PowPosCall) error
}

// RuntimeCall selects the owning pallet; the wrapped call selects the
// operation within it.
type RuntimeCall interface {
	Pallet() string
	Name() string
	route(caller model.AccountID, r router) error
}

type Balances struct {
	Call BalancesCall
}

func (Balances) Pallet() string { return PalletBalances }

func (c Balances) Name() string { return callName(c.Call) }

func (c Balances) route(caller model.AccountID, r router) error {
	return r.dispatchBalances(caller, c.Call)
}

type ProofOfExistence struct {
	Call ProofOfExistenceCall
}

func (ProofOfExistence) Pallet() string { return PalletProofOfExistence }

func (c ProofOfExistence) Name() string { return callName(c.Call) }

func (c ProofOfExistence) route(caller model.AccountID, r router) error {
	return r.dispatchProofOfExistence(caller, c.Call)
}

type PowPos struct {
	Call PowPosCall
}

func (PowPos) Pallet() string { return PalletPowPos }

func (c PowPos) Name() string { return callName(c.Call) }

func (c PowPos) route(caller model.AccountID, r router) error {
	return r.dispatchPowPos(caller, c.Call)
}

func callName(call interface{ Name() string }) string {
	if call == nil {
		return ""
	}
	return call.Name()
}
