// Package existence registers which account first claimed a piece of content.
package existence

import (
	"errors"
	"maps"
)

var (
	ErrClaimAlreadyExists = errors.New("this content is already claimed")
	ErrClaimNotExist      = errors.New("claim does not exist")
	ErrNotClaimOwner      = errors.New("this content is owned by someone else")
)

// Pallet maps claimed content to its owner.
type Pallet[A comparable, C comparable] struct {
	claims map[C]A
}

func New[A comparable, C comparable]() *Pallet[A, C] {
	return &Pallet[A, C]{claims: make(map[C]A)}
}

// Owner returns the account that holds claim.
func (p *Pallet[A, C]) Owner(claim C) (A, bool) {
	owner, ok := p.claims[claim]
	return owner, ok
}

func (p *Pallet[A, C]) CreateClaim(caller A, claim C) error {
	if _, ok := p.claims[claim]; ok {
		return ErrClaimAlreadyExists
	}
	p.claims[claim] = caller
	return nil
}

func (p *Pallet[A, C]) RevokeClaim(caller A, claim C) error {
	owner, ok := p.claims[claim]
	if !ok {
		return ErrClaimNotExist
	}
	if owner != caller {
		return ErrNotClaimOwner
	}
	delete(p.claims, claim)
	return nil
}

// Claims returns a copy of the claim table.
func (p *Pallet[A, C]) Claims() map[C]A {
	return maps.Clone(p.claims)
}

func (p *Pallet[A, C]) Dispatch(caller A, call Call[A, C]) error {
	return call.dispatch(caller, p)
}
