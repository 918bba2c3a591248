package autodiff

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"gradcheck/internal/model"
)

// Backprop builds loss = m + log Σ exp(W·x − m) − (W·x)[y] as an expression
// graph, runs it forward and accumulates ∂loss/∂W in reverse. The shift m is
// the largest logit, held as a constant.
func Backprop(w model.Params, s model.Sample) (float64, []float64, error) {
	if err := model.CheckLabel(s.Label); err != nil {
		return 0, nil, err
	}
	plain, err := model.Logits(w, s.Features[:])
	if err != nil {
		return 0, nil, err
	}
	shift := floats.Max(plain)

	g := gorgonia.NewGraph()
	wn := gorgonia.NewMatrix(g, tensor.Float64,
		gorgonia.WithShape(model.NumClasses, model.NumFeatures),
		gorgonia.WithName("w"),
		gorgonia.WithValue(tensor.New(
			tensor.WithShape(model.NumClasses, model.NumFeatures),
			tensor.WithBacking(w.Slice()),
		)),
	)
	xn := gorgonia.NewVector(g, tensor.Float64,
		gorgonia.WithShape(model.NumFeatures),
		gorgonia.WithName("x"),
		gorgonia.WithValue(tensor.New(
			tensor.WithShape(model.NumFeatures),
			tensor.WithBacking(s.X()),
		)),
	)

	logits, err := gorgonia.Mul(wn, xn)
	if err != nil {
		return 0, nil, fmt.Errorf("backprop: logits: %w", err)
	}
	lse, err := logSumExp(logits, shift)
	if err != nil {
		return 0, nil, fmt.Errorf("backprop: logsumexp: %w", err)
	}
	picked, err := gorgonia.Slice(logits, gorgonia.S(s.Label))
	if err != nil {
		return 0, nil, fmt.Errorf("backprop: select label: %w", err)
	}
	loss, err := gorgonia.Sub(lse, picked)
	if err != nil {
		return 0, nil, fmt.Errorf("backprop: loss: %w", err)
	}

	var lossVal gorgonia.Value
	gorgonia.Read(loss, &lossVal)

	if _, err := gorgonia.Grad(loss, wn); err != nil {
		return 0, nil, fmt.Errorf("backprop: grad: %w", err)
	}

	vm := gorgonia.NewTapeMachine(g, gorgonia.BindDualValues(wn))
	defer vm.Close()
	if err := vm.RunAll(); err != nil {
		return 0, nil, fmt.Errorf("backprop: run: %w", err)
	}

	gradVal, err := wn.Grad()
	if err != nil {
		return 0, nil, fmt.Errorf("backprop: read grad: %w", err)
	}
	data, ok := gradVal.Data().([]float64)
	if !ok || len(data) != model.NumParams {
		return 0, nil, fmt.Errorf("backprop: unexpected gradient value %v", gradVal)
	}
	grad := make([]float64, model.NumParams)
	copy(grad, data)

	lossF, ok := lossVal.Data().(float64)
	if !ok {
		return 0, nil, fmt.Errorf("backprop: unexpected loss value %v", lossVal)
	}
	return lossF, grad, nil
}

func logSumExp(logits *gorgonia.Node, shift float64) (*gorgonia.Node, error) {
	m := gorgonia.NewConstant(shift)
	shifted, err := gorgonia.Sub(logits, m)
	if err != nil {
		return nil, err
	}
	exp, err := gorgonia.Exp(shifted)
	if err != nil {
		return nil, err
	}
	sum, err := gorgonia.Sum(exp)
	if err != nil {
		return nil, err
	}
	log, err := gorgonia.Log(sum)
	if err != nil {
		return nil, err
	}
	return gorgonia.Add(log, m)
}
