// Package balances keeps account balances and moves funds between accounts.
package balances

import (
	"errors"
	"maps"

	"github.com/goodnatureofminers/palletchain/internal/runtime/support"
)

var (
	ErrInsufficientFunds = errors.New("not enough funds")
	ErrOverflow          = errors.New("overflow")
)

// Pallet owns the balance table.
type Pallet[A comparable, B support.Balance[B]] struct {
	balances map[A]B
}

func New[A comparable, B support.Balance[B]]() *Pallet[A, B] {
	return &Pallet[A, B]{balances: make(map[A]B)}
}

// SetBalance overwrites the balance of who. It is meant for genesis only.
func (p *Pallet[A, B]) SetBalance(who A, amount B) {
	p.balances[who] = amount
}

// Balance returns the balance of who, zero when the account is unknown.
func (p *Pallet[A, B]) Balance(who A) B {
	return p.balances[who]
}

// Transfer moves amount from caller to to. Both sides are computed before
// either is written.
func (p *Pallet[A, B]) Transfer(caller A, to A, amount B) error {
	callerBalance := p.Balance(caller)
	newCallerBalance, err := callerBalance.CheckedSub(amount)
	if err != nil {
		return ErrInsufficientFunds
	}
	if caller == to {
		return nil
	}
	newToBalance, err := p.Balance(to).CheckedAdd(amount)
	if err != nil {
		return ErrOverflow
	}

	p.balances[caller] = newCallerBalance
	p.balances[to] = newToBalance
	return nil
}

// Balances returns a copy of the balance table.
func (p *Pallet[A, B]) Balances() map[A]B {
	return maps.Clone(p.balances)
}

// Dispatch applies call on behalf of caller.
func (p *Pallet[A, B]) Dispatch(caller A, call Call[A, B]) error {
	return call.dispatch(caller, p)
}
