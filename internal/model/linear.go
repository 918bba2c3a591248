package model

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Logits computes W·x.
func Logits(w Params, x []float64) ([]float64, error) {
	if err := checkFeatures(x); err != nil {
		return nil, err
	}
	logits := make([]float64, NumClasses)
	for c := range logits {
		logits[c] = floats.Dot(w[c*NumFeatures:(c+1)*NumFeatures], x)
	}
	return logits, nil
}

// Softmax maps logits onto the probability simplex.
func Softmax(logits []float64) []float64 {
	maxLogit := floats.Max(logits)
	out := make([]float64, len(logits))
	for i, v := range logits {
		out[i] = math.Exp(v - maxLogit)
	}
	floats.Scale(1/floats.Sum(out), out)
	return out
}

// Forward returns the class probabilities softmax(W·x).
func Forward(w Params, x []float64) ([]float64, error) {
	logits, err := Logits(w, x)
	if err != nil {
		return nil, err
	}
	return Softmax(logits), nil
}

// CrossEntropy returns −log softmax(W·x)[y].
func CrossEntropy(w Params, x []float64, y int) (float64, error) {
	logits, err := Logits(w, x)
	if err != nil {
		return 0, err
	}
	return CrossEntropyFromLogits(logits, y)
}

// CrossEntropyFromLogits evaluates logsumexp(z) − z[y], which stays finite
// where log(softmax(z)[y]) would underflow.
func CrossEntropyFromLogits(logits []float64, y int) (float64, error) {
	if len(logits) != NumClasses {
		return 0, &ShapeError{What: "logits", Got: len(logits), Want: NumClasses}
	}
	if err := CheckLabel(y); err != nil {
		return 0, err
	}
	return floats.LogSumExp(logits) - logits[y], nil
}

// OneHot encodes y as a length-NumClasses indicator vector.
func OneHot(y int) ([]float64, error) {
	if err := CheckLabel(y); err != nil {
		return nil, err
	}
	t := make([]float64, NumClasses)
	t[y] = 1
	return t, nil
}
