// Package analytic holds the closed-form first and second derivatives of the
// softmax cross-entropy loss with respect to the classifier weights.
package analytic

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"gradcheck/internal/model"
)

// Gradient returns G = (p − t) xᵀ, the NumClasses×NumFeatures derivative of
// the loss with respect to W.
func Gradient(p, t, x []float64) (*mat.Dense, error) {
	if err := checkLen("probabilities", p, model.NumClasses); err != nil {
		return nil, err
	}
	if err := checkLen("target", t, model.NumClasses); err != nil {
		return nil, err
	}
	if err := checkLen("features", x, model.NumFeatures); err != nil {
		return nil, err
	}
	diff := make([]float64, model.NumClasses)
	floats.SubTo(diff, p, t)

	g := mat.NewDense(model.NumClasses, model.NumFeatures, nil)
	g.Outer(1, mat.NewVecDense(model.NumClasses, diff), mat.NewVecDense(model.NumFeatures, x))
	return g, nil
}

// Hessian returns the NumParams×NumParams matrix whose (i,j) block is
// p[i](δij − p[j]) x xᵀ, i.e. (diag(p) − p pᵀ) ⊗ x xᵀ.
func Hessian(p, x []float64) (*mat.SymDense, error) {
	if err := checkLen("probabilities", p, model.NumClasses); err != nil {
		return nil, err
	}
	if err := checkLen("features", x, model.NumFeatures); err != nil {
		return nil, err
	}

	k := kronecker(p, x)
	h := mat.NewSymDense(model.NumParams, nil)
	for i := 0; i < model.NumParams; i++ {
		for j := i; j < model.NumParams; j++ {
			h.SetSym(i, j, k.At(i, j))
		}
	}
	return h, nil
}

// kronecker returns the full (diag(p) − p pᵀ) ⊗ x xᵀ product. Both factors
// are built from symmetric products, so k equals kᵀ bit for bit.
func kronecker(p, x []float64) *mat.Dense {
	jac := mat.NewDense(model.NumClasses, model.NumClasses, nil)
	for i := 0; i < model.NumClasses; i++ {
		for j := 0; j < model.NumClasses; j++ {
			delta := 0.0
			if i == j {
				delta = 1
			}
			jac.Set(i, j, p[i]*(delta-p[j]))
		}
	}

	var outer mat.Dense
	xv := mat.NewVecDense(model.NumFeatures, x)
	outer.Outer(1, xv, xv)

	var k mat.Dense
	k.Kronecker(jac, &outer)
	return &k
}

// GradientAt evaluates the forward model at w and returns the flattened gradient for s.
func GradientAt(w model.Params, s model.Sample) ([]float64, error) {
	x := s.X()
	p, err := model.Forward(w, x)
	if err != nil {
		return nil, err
	}
	t, err := model.OneHot(s.Label)
	if err != nil {
		return nil, err
	}
	g, err := Gradient(p, t, x)
	if err != nil {
		return nil, err
	}
	return Flatten(g), nil
}

// HessianAt evaluates the forward model at w and returns the Hessian for x.
// The label does not enter.
func HessianAt(w model.Params, x []float64) (*mat.SymDense, error) {
	p, err := model.Forward(w, x)
	if err != nil {
		return nil, err
	}
	return Hessian(p, x)
}

// Flatten copies m into a row-major slice.
func Flatten(m mat.Matrix) []float64 {
	r, c := m.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out = append(out, m.At(i, j))
		}
	}
	return out
}

func checkLen(what string, v []float64, want int) error {
	if len(v) != want {
		return &model.ShapeError{What: what, Got: len(v), Want: want}
	}
	return nil
}
