package support

// Unsigned covers the counter types used for block numbers and nonces.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Balance is the arithmetic a pallet needs from its balance type. The zero
// value of B must represent zero.
type Balance[B any] interface {
	comparable
	CheckedAdd(other B) (B, error)
	CheckedSub(other B) (B, error)
	Cmp(other B) int
	IsZero() bool
}

// Increment returns n+1, or false when n is already the maximum value of N.
func Increment[N Unsigned](n N) (N, bool) {
	next := n + 1
	if next < n {
		return n, false
	}
	return next, true
}
