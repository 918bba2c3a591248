// Package verify cross-checks derivative computations against each other.
package verify

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Tolerance bounds |a−b| by Atol + Rtol·|b|, where b is the reference.
type Tolerance struct {
	Atol float64
	Rtol float64
}

var (
	// DefaultTolerance separates a correct derivation from a wrong one while
	// absorbing rounding from differing evaluation orders.
	DefaultTolerance = Tolerance{Atol: 1e-8, Rtol: 1e-5}
	// NumericTolerance is used against finite differences.
	NumericTolerance = Tolerance{Atol: 1e-4, Rtol: 1e-3}
)

func (t Tolerance) close(a, b float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= t.Atol+t.Rtol*math.Abs(b)
}

// AllClose reports whether a and b have the same shape and every element of
// a is within tol of the corresponding element of b. NaN is never close.
func AllClose(a, b mat.Matrix, tol Tolerance) bool {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br || ac != bc {
		return false
	}
	for i := 0; i < ar; i++ {
		for j := 0; j < ac; j++ {
			if !tol.close(a.At(i, j), b.At(i, j)) {
				return false
			}
		}
	}
	return true
}

// AllCloseVec is AllClose for slices.
func AllCloseVec(a, b []float64, tol Tolerance) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !tol.close(a[i], b[i]) {
			return false
		}
	}
	return true
}

// MaxAbsDiff returns the largest elementwise |a−b|, or +Inf on shape mismatch.
func MaxAbsDiff(a, b mat.Matrix) float64 {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br || ac != bc {
		return math.Inf(1)
	}
	worst := 0.0
	for i := 0; i < ar; i++ {
		for j := 0; j < ac; j++ {
			d := math.Abs(a.At(i, j) - b.At(i, j))
			if d > worst || math.IsNaN(d) {
				worst = d
			}
		}
	}
	return worst
}

// MaxAbsDiffVec is MaxAbsDiff for slices.
func MaxAbsDiffVec(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	return floats.Distance(a, b, math.Inf(1))
}
