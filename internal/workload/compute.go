package workload

import (
	"fmt"
	"io"
	"math/big"
)

// DefaultIterations is the fixed loop size of the reference workload.
const DefaultIterations = 10_000_000

// TraceFormat is the diagnostic line Compute emits before each unit of work.
const TraceFormat = "processing %d\n"

// Item identifies a single unit of work. It selects nothing about the
// computation itself and only appears in the trace line.
type Item int

// Items returns the items 0..k-1.
func Items(k int) []Item {
	if k <= 0 {
		return []Item{}
	}
	items := make([]Item, k)
	for i := range items {
		items[i] = Item(i)
	}
	return items
}

// Trace writes the trace line for n. A nil writer disables tracing.
func Trace(w io.Writer, n Item) {
	if w == nil {
		return
	}
	fmt.Fprintf(w, TraceFormat, n)
}

// Compute emits the trace line for n and then accumulates i*i for every i
// in [0, iterations).
func Compute(n Item, iterations int, trace io.Writer) Sum {
	Trace(trace, n)
	var s Sum
	for i := 0; i < iterations; i++ {
		s = s.AddSquare(uint64(i))
	}
	return s
}

// ClosedForm returns (m-1)m(2m-1)/6, the value Compute must produce for
// m iterations.
func ClosedForm(iterations int) *big.Int {
	if iterations <= 0 {
		return new(big.Int)
	}
	m := big.NewInt(int64(iterations))
	mMinus1 := new(big.Int).Sub(m, big.NewInt(1))
	twoMMinus1 := new(big.Int).Sub(new(big.Int).Lsh(m, 1), big.NewInt(1))
	v := new(big.Int).Mul(mMinus1, m)
	v.Mul(v, twoMMinus1)
	return v.Quo(v, big.NewInt(6))
}

// Verify reports whether s matches the closed form for the given iteration
// count.
func Verify(s Sum, iterations int) bool {
	return s.Big().Cmp(ClosedForm(iterations)) == 0
}
