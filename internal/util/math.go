package util

import "math"

// AmountPrecision is the number of decimal places the ledger keeps for
// token amounts. Fee arithmetic runs in float64; normalizing results to
// this precision keeps floating point dust out of stored balances.
const AmountPrecision = 8

// RoundAmount normalizes a token amount to the ledger precision
func RoundAmount(val float64) float64 {
	return RoundToPrecision(val, AmountPrecision)
}

// RoundToPrecision rounds a float64 to a specific number of decimal places
func RoundToPrecision(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// FloorToPrecision floors a float64 to a specific number of decimal places
func FloorToPrecision(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Floor(val*ratio) / ratio
}
