package model

// Milliunits is an amount in thousandths of the budget's currency unit.
type Milliunits int64

// MilliunitsPerUnit is the divisor between milliunits and currency units.
const MilliunitsPerUnit = 1000

// Sum adds amounts together.
func Sum(amounts ...Milliunits) Milliunits {
	var total Milliunits
	for _, a := range amounts {
		total += a
	}
	return total
}
