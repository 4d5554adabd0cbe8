package domain

// Amount is a fixed-point monetary value in micro-units. The engine never
// moves real funds; amounts are instructions to the external custodian.
type Amount int64

// Unit is one coverage unit. Premium normalization divides by it so that a
// risk score of 100 at one unit of coverage reproduces the base rate.
const Unit Amount = 1_000_000

// Positive reports whether the amount is strictly greater than zero.
func (a Amount) Positive() bool { return a > 0 }
