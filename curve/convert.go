package curve

import "math"

// QuoteDecimals is the fixed precision of the settlement asset. All quote
// amounts are denominated in its smallest unit.
const QuoteDecimals = byte(9)

// ToFloat converts an integer amount in smallest units to its real value.
func ToFloat(amount uint64, decimals byte) float64 {
	return float64(amount) / math.Pow10(int(decimals))
}

// FromFloat converts a real value back to smallest units, truncating toward
// zero. The caller guarantees the result fits in 64 bits.
func FromFloat(value float64, decimals byte) uint64 {
	return uint64(value * math.Pow10(int(decimals)))
}
