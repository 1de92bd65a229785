package existence

// Handler has one method per claim registry call.
type Handler[A comparable, C comparable] interface {
	CreateClaim(caller A, claim C) error
	RevokeClaim(caller A, claim C) error
}

// Call is the closed set of claim registry calls.
type Call[A comparable, C comparable] interface {
	Name() string
	dispatch(caller A, h Handler[A, C]) error
}

type CreateClaim[A comparable, C comparable] struct {
	Claim C
}

func (CreateClaim[A, C]) Name() string { return "create_claim" }

func (c CreateClaim[A, C]) dispatch(caller A, h Handler[A, C]) error {
	return h.CreateClaim(caller, c.Claim)
}

type RevokeClaim[A comparable, C comparable] struct {
	Claim C
}

func (RevokeClaim[A, C]) Name() string { return "revoke_claim" }

func (c RevokeClaim[A, C]) dispatch(caller A, h Handler[A, C]) error {
	return h.RevokeClaim(caller, c.Claim)
}
