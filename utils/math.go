package utils

import (
	"math/rand"
)

// MaxInt returns the maximum of two ints.
func MaxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// MinInt returns the minimum of two ints.
func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// ClampInt limits n to [lo, hi]. If hi < lo, lo wins.
func ClampInt(n, lo, hi int) int {
	if n > hi {
		n = hi
	}
	if n < lo {
		n = lo
	}
	return n
}

// Square returns n*n.
func Square(n float64) float64 {
	return n * n
}

// SquareInt returns n*n.
func SquareInt(n int) int {
	return n * n
}

// SampleRandomIntRange samples a random integer within a range given by [min, max]
// using the given rand.Rand
func SampleRandomIntRange(min, max int, r *rand.Rand) int {
	return r.Intn(max-min+1) + min
}
