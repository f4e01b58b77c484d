package workload

import (
	"math/big"
	"math/bits"
)

// Sum is an unsigned 128-bit accumulator. The reference workload sums
// i*i for i < 10^7, which exceeds the range of uint64.
type Sum struct {
	Hi uint64
	Lo uint64
}

// AddSquare returns s + i*i.
func (s Sum) AddSquare(i uint64) Sum {
	hi, lo := bits.Mul64(i, i)
	var carry uint64
	s.Lo, carry = bits.Add64(s.Lo, lo, 0)
	s.Hi, _ = bits.Add64(s.Hi, hi, carry)
	return s
}

// Big returns the value as a big.Int.
func (s Sum) Big() *big.Int {
	v := new(big.Int).SetUint64(s.Hi)
	v.Lsh(v, 64)
	return v.Or(v, new(big.Int).SetUint64(s.Lo))
}

// String returns the decimal representation.
func (s Sum) String() string {
	return s.Big().String()
}

// IsZero reports whether the sum is zero.
func (s Sum) IsZero() bool {
	return s.Hi == 0 && s.Lo == 0
}
