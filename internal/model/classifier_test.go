package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifierTrainStepReducesLoss(t *testing.T) {
	model := NewClassifier(0.1, 1)
	batch := Batch{Samples: []Sample{
		{Features: [NumFeatures]float64{0.1, 0.2, 0.3, 0.4}, Label: 1},
		{Features: [NumFeatures]float64{0.4, 0.3, 0.2, 0.1}, Label: 2},
	}}
	loss1, err := model.TrainStep(batch)
	require.NoError(t, err)
	loss2, err := model.TrainStep(batch)
	require.NoError(t, err)
	require.LessOrEqual(t, loss2, loss1)
}

func TestClassifierTrainStepRejectsBadLabel(t *testing.T) {
	model := NewClassifier(0.1, 1)
	before := model.Params()
	_, err := model.TrainStep(Batch{Samples: []Sample{{Label: 5}}})
	require.ErrorIs(t, err, ErrInvalidLabel)
	require.Equal(t, before, model.Params(), "weights changed after failed step")
}

func TestClassifierSeededInit(t *testing.T) {
	a := NewClassifier(0.1, 7).Params()
	b := NewClassifier(0.1, 7).Params()
	require.Equal(t, a, b)
	for i, v := range a {
		require.InDelta(t, 0, v, 0.01, "weight %d", i)
	}
}
