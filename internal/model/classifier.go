package model

import (
	"math/rand"
)

// Classifier is a bias-free linear softmax classifier trained with SGD.
type Classifier struct {
	weights Params
	lr      float64
}

// NewClassifier constructs the model with small seeded random weights.
func NewClassifier(lr float64, seed int64) *Classifier {
	if lr <= 0 {
		lr = 0.01
	}
	rng := rand.New(rand.NewSource(seed))
	var w Params
	for i := range w {
		w[i] = (rng.Float64()*2 - 1) * 0.01
	}
	return &Classifier{weights: w, lr: lr}
}

// NewClassifierFrom starts training from the given weights.
func NewClassifierFrom(w Params, lr float64) *Classifier {
	if lr <= 0 {
		lr = 0.01
	}
	return &Classifier{weights: w, lr: lr}
}

// Params returns a snapshot of the current weights.
func (m *Classifier) Params() Params {
	return m.weights
}

// TrainStep executes one SGD step over the batch and returns the mean loss
// measured before the update.
func (m *Classifier) TrainStep(batch Batch) (float64, error) {
	if len(batch.Samples) == 0 {
		return 0, nil
	}
	var grad Params
	totalLoss := 0.0
	for _, s := range batch.Samples {
		x := s.Features[:]
		logits, err := Logits(m.weights, x)
		if err != nil {
			return 0, err
		}
		loss, err := CrossEntropyFromLogits(logits, s.Label)
		if err != nil {
			return 0, err
		}
		totalLoss += loss

		probs := Softmax(logits)
		probs[s.Label] -= 1
		for c := 0; c < NumClasses; c++ {
			for j := 0; j < NumFeatures; j++ {
				grad[c*NumFeatures+j] += probs[c] * x[j]
			}
		}
	}
	n := float64(len(batch.Samples))
	for i := range m.weights {
		m.weights[i] -= m.lr * grad[i] / n
	}
	return totalLoss / n, nil
}
