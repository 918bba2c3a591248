// Package autodiff differentiates the classifier loss mechanically, treating
// the weights as an explicit argument of a pure function.
//
// Gradient and Hessian use forward-mode dual and hyper-dual numbers.
// Backprop runs reverse mode over a gorgonia expression graph. Numeric is a
// central finite-difference approximation used as a coarse third opinion.
package autodiff

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/dual"
	"gonum.org/v1/gonum/num/hyperdual"

	"gradcheck/internal/model"
)

// Gradient returns ∂loss/∂w for one sample, one dual pass per weight.
func Gradient(w model.Params, s model.Sample) ([]float64, error) {
	if err := model.CheckLabel(s.Label); err != nil {
		return nil, err
	}
	grad := make([]float64, model.NumParams)
	var wd [model.NumParams]dual.Number
	for k := range grad {
		for i := range wd {
			wd[i] = dual.Number{Real: w[i]}
		}
		wd[k].Emag = 1
		grad[k] = dualLoss(&wd, &s.Features, s.Label).Emag
	}
	return grad, nil
}

// Hessian returns ∂²loss/∂w² for one sample, one hyper-dual pass per
// upper-triangle entry.
func Hessian(w model.Params, s model.Sample) (*mat.SymDense, error) {
	if err := model.CheckLabel(s.Label); err != nil {
		return nil, err
	}
	h := mat.NewSymDense(model.NumParams, nil)
	var wh [model.NumParams]hyperdual.Number
	for i := 0; i < model.NumParams; i++ {
		for j := i; j < model.NumParams; j++ {
			for k := range wh {
				wh[k] = hyperdual.Number{Real: w[k]}
			}
			wh[i].E1mag = 1
			wh[j].E2mag = 1
			h.SetSym(i, j, hyperdualLoss(&wh, &s.Features, s.Label).E1E2mag)
		}
	}
	return h, nil
}

func dualLoss(w *[model.NumParams]dual.Number, x *[model.NumFeatures]float64, y int) dual.Number {
	var logits [model.NumClasses]dual.Number
	maxLogit := 0.0
	for c := range logits {
		var z dual.Number
		for f := 0; f < model.NumFeatures; f++ {
			z = dual.Add(z, dual.Scale(x[f], w[c*model.NumFeatures+f]))
		}
		logits[c] = z
		if c == 0 || z.Real > maxLogit {
			maxLogit = z.Real
		}
	}
	// logsumexp(z) = m + log Σ exp(z − m) holds for any constant m.
	shift := dual.Number{Real: maxLogit}
	var sum dual.Number
	for _, z := range logits {
		sum = dual.Add(sum, dual.Exp(dual.Sub(z, shift)))
	}
	lse := dual.Add(dual.Log(sum), shift)
	return dual.Sub(lse, logits[y])
}

func hyperdualLoss(w *[model.NumParams]hyperdual.Number, x *[model.NumFeatures]float64, y int) hyperdual.Number {
	var logits [model.NumClasses]hyperdual.Number
	maxLogit := 0.0
	for c := range logits {
		var z hyperdual.Number
		for f := 0; f < model.NumFeatures; f++ {
			z = hyperdual.Add(z, hyperdual.Scale(x[f], w[c*model.NumFeatures+f]))
		}
		logits[c] = z
		if c == 0 || z.Real > maxLogit {
			maxLogit = z.Real
		}
	}
	shift := hyperdual.Number{Real: maxLogit}
	var sum hyperdual.Number
	for _, z := range logits {
		sum = hyperdual.Add(sum, hyperdual.Exp(hyperdual.Sub(z, shift)))
	}
	lse := hyperdual.Add(hyperdual.Log(sum), shift)
	return hyperdual.Sub(lse, logits[y])
}
