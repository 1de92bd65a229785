package balances

import "github.com/goodnatureofminers/palletchain/internal/runtime/support"

// Handler has one method per balances call. Adding a call adds a method here,
// so every dispatcher stops compiling until it handles the new call.
type Handler[A comparable, B support.Balance[B]] interface {
	Transfer(caller A, to A, amount B) error
}

// Call is the closed set of balances calls.
type Call[A comparable, B support.Balance[B]] interface {
	Name() string
	dispatch(caller A, h Handler[A, B]) error
}

// Transfer moves Amount from the caller to To.
type Transfer[A comparable, B support.Balance[B]] struct {
	To     A
	Amount B
}

func (Transfer[A, B]) Name() string { return "transfer" }

func (c Transfer[A, B]) dispatch(caller A, h Handler[A, B]) error {
	return h.Transfer(caller, c.To, c.Amount)
}
