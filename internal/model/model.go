package model

// Shape of the classifier: 3 classes over 4 features, no bias.
const (
	NumClasses  = 3
	NumFeatures = 4
	NumParams   = NumClasses * NumFeatures
)

// Params is the 3×4 weight matrix flattened row-major: W[c][f] = Params[c*NumFeatures+f].
type Params [NumParams]float64

// Sample is one labeled feature vector.
type Sample struct {
	Features [NumFeatures]float64
	Label    int
}

// Batch represents a minibatch of samples.
type Batch struct {
	Samples []Sample
}

// Model defines the minimal training functionality required by the trainer.
type Model interface {
	TrainStep(batch Batch) (float64, error)
	Params() Params
}

// NewParams copies a flat row-major weight vector into a Params.
func NewParams(flat []float64) (Params, error) {
	var w Params
	if len(flat) != NumParams {
		return w, &ShapeError{What: "params", Got: len(flat), Want: NumParams}
	}
	copy(w[:], flat)
	return w, nil
}

// ParamsFromRows builds a Params from a NumClasses×NumFeatures matrix.
func ParamsFromRows(rows [][]float64) (Params, error) {
	var w Params
	if len(rows) != NumClasses {
		return w, &ShapeError{What: "weight rows", Got: len(rows), Want: NumClasses}
	}
	for c, row := range rows {
		if len(row) != NumFeatures {
			return w, &ShapeError{What: "weight columns", Got: len(row), Want: NumFeatures}
		}
		copy(w[c*NumFeatures:], row)
	}
	return w, nil
}

// At returns W[c][f].
func (w Params) At(c, f int) float64 {
	return w[c*NumFeatures+f]
}

// Row returns a copy of the weights for class c.
func (w Params) Row(c int) []float64 {
	row := make([]float64, NumFeatures)
	copy(row, w[c*NumFeatures:(c+1)*NumFeatures])
	return row
}

// Slice returns a copy of the flattened weights.
func (w Params) Slice() []float64 {
	out := make([]float64, NumParams)
	copy(out, w[:])
	return out
}

// X returns the features as a slice.
func (s Sample) X() []float64 {
	x := make([]float64, NumFeatures)
	copy(x, s.Features[:])
	return x
}

// NewSample validates x and y and builds a Sample.
func NewSample(x []float64, y int) (Sample, error) {
	var s Sample
	if len(x) != NumFeatures {
		return s, &ShapeError{What: "features", Got: len(x), Want: NumFeatures}
	}
	if err := CheckLabel(y); err != nil {
		return s, err
	}
	copy(s.Features[:], x)
	s.Label = y
	return s, nil
}
