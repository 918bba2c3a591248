package autodiff

import (
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"

	"gradcheck/internal/model"
)

// DefaultStep is the finite-difference step used when Numeric is given step <= 0.
const DefaultStep = 1e-4

// Objective returns the loss for s as a function of the flattened weights.
func Objective(s model.Sample) func(w []float64) float64 {
	x := s.X()
	return func(w []float64) float64 {
		var p model.Params
		copy(p[:], w)
		logits, _ := model.Logits(p, x)
		loss, _ := model.CrossEntropyFromLogits(logits, s.Label)
		return loss
	}
}

// Numeric approximates the gradient and Hessian with central differences.
func Numeric(w model.Params, s model.Sample, step float64) ([]float64, *mat.SymDense, error) {
	if err := model.CheckLabel(s.Label); err != nil {
		return nil, nil, err
	}
	if step <= 0 {
		step = DefaultStep
	}
	f := Objective(s)
	settings := &fd.Settings{
		Formula: fd.Central,
		Step:    step,
	}
	grad := fd.Gradient(nil, f, w.Slice(), settings)
	h := mat.NewSymDense(model.NumParams, nil)
	fd.Hessian(h, f, w.Slice(), settings)
	return grad, h, nil
}
