package verify

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrEigen is returned when the symmetric eigendecomposition does not converge.
var ErrEigen = errors.New("verify: eigendecomposition failed")

// IsSymmetric reports whether m is square and |m[i,j] − m[j,i]| ≤ eps everywhere.
func IsSymmetric(m mat.Matrix, eps float64) bool {
	r, c := m.Dims()
	if r != c {
		return false
	}
	for i := 0; i < r; i++ {
		for j := i + 1; j < c; j++ {
			if !(math.Abs(m.At(i, j)-m.At(j, i)) <= eps) {
				return false
			}
		}
	}
	return true
}

// MinEigenvalue returns the smallest eigenvalue of s. The matrix is scaled
// by a power of two to unit norm before factorizing, so entries near the
// bottom of the float64 range do not reach LAPACK.
func MinEigenvalue(s mat.Symmetric) (float64, error) {
	norm := mat.Norm(s, math.Inf(1))
	if norm == 0 {
		return 0, nil
	}
	if math.IsInf(norm, 0) || math.IsNaN(norm) {
		return 0, ErrEigen
	}
	_, exp := math.Frexp(norm)

	n := s.SymmetricDim()
	scaled := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			scaled.SetSym(i, j, math.Ldexp(s.At(i, j), -exp))
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(scaled, false); !ok {
		return 0, ErrEigen
	}
	return math.Ldexp(floats.Min(eig.Values(nil)), exp), nil
}

// IsPSD reports whether every eigenvalue of s is ≥ −eps.
func IsPSD(s mat.Symmetric, eps float64) (bool, error) {
	lowest, err := MinEigenvalue(s)
	if err != nil {
		return false, err
	}
	return lowest >= -eps, nil
}
