package domain

import "math"

// Round2 rounds a euro amount to cents using round-half-up. Inputs are
// expected to be non-negative; negative values are floored at zero so
// derived prices can never go below free.
func Round2(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Floor(v*100+0.5) / 100
}

// Round1 rounds to one decimal place using round-half-up. Used for scaled
// LED strip lengths.
func Round1(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Floor(v*10+0.5) / 10
}
