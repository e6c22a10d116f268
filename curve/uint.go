package curve

import (
	"math"
	"math/bits"
)

func checkedAdd(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, ErrOverflowOrUnderflowOccurred
	}
	return a + b, nil
}

func checkedSub(a, b uint64) (uint64, error) {
	if a < b {
		return 0, ErrOverflowOrUnderflowOccurred
	}
	return a - b, nil
}

// mulDiv computes a*b/c with a 128-bit intermediate, truncating down.
// The caller guarantees the quotient fits in 64 bits.
func mulDiv(a, b, c uint64) (uint64, error) {
	if c == 0 {
		return 0, ErrMathOverflow
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= c {
		return 0, ErrMathOverflow
	}
	q, _ := bits.Div64(hi, lo, c)
	return q, nil
}
