package trainer

import (
	"context"
	"errors"
	"log"
	"time"

	"gradcheck/internal/dataset"
	"gradcheck/internal/metrics"
	"gradcheck/internal/model"
)

// RunConfig captures the knobs required by the training loop.
type RunConfig struct {
	Train        []model.Sample
	Epochs       int
	BatchSize    int
	LearningRate float64
	LogEvery     int
	Seed         int64
}

// Run trains a classifier from a seeded random init and returns its final
// weights. With Epochs == 0 the initial weights are returned untouched.
func Run(ctx context.Context, cfg RunConfig) (model.Params, error) {
	mdl := model.NewClassifier(cfg.LearningRate, cfg.Seed)
	if cfg.Epochs == 0 {
		return mdl.Params(), nil
	}
	if cfg.Epochs < 0 {
		return model.Params{}, errors.New("trainer: epochs must be >= 0")
	}
	if cfg.BatchSize <= 0 {
		return model.Params{}, errors.New("trainer: batch size must be > 0")
	}
	if cfg.LogEvery <= 0 {
		cfg.LogEvery = 50
	}

	batches, err := dataset.StartBatcher(ctx, cfg.Train, dataset.BatcherOptions{
		BatchSize: cfg.BatchSize,
		Epochs:    cfg.Epochs,
		Seed:      cfg.Seed,
	})
	if err != nil {
		return model.Params{}, err
	}

	if err := train(ctx, mdl, batches, cfg.LogEvery); err != nil {
		return model.Params{}, err
	}
	return mdl.Params(), nil
}

func train(ctx context.Context, mdl model.Model, batches <-chan dataset.EpochBatch, logEvery int) error {
	var window metrics.Window
	for {
		startData := time.Now()
		var (
			batch dataset.EpochBatch
			ok    bool
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case batch, ok = <-batches:
		}
		if !ok {
			// The batcher also closes on cancellation.
			return ctx.Err()
		}
		dataTime := time.Since(startData)

		startCompute := time.Now()
		loss, err := mdl.TrainStep(batch.Batch)
		if err != nil {
			return err
		}
		computeTime := time.Since(startCompute)

		window.Record(len(batch.Samples), dataTime, computeTime, loss)

		if batch.Step%logEvery == 0 {
			snap := window.Snapshot()
			log.Printf("epoch=%d step=%d samples_per_sec=%.1f data_ms=%.3f compute_ms=%.3f loss=%.4f avg_loss=%.4f",
				batch.Epoch,
				batch.Step,
				snap.SamplesPerSec,
				snap.AvgDataMS,
				snap.AvgComputeMS,
				snap.LastLoss,
				snap.AvgLoss,
			)
		}
	}
}

// Evaluate returns the mean loss and classification accuracy of w on samples.
func Evaluate(w model.Params, samples []model.Sample) (meanLoss, accuracy float64, err error) {
	if len(samples) == 0 {
		return 0, 0, nil
	}
	correct := 0
	for _, s := range samples {
		logits, err := model.Logits(w, s.Features[:])
		if err != nil {
			return 0, 0, err
		}
		loss, err := model.CrossEntropyFromLogits(logits, s.Label)
		if err != nil {
			return 0, 0, err
		}
		meanLoss += loss
		if argmax(logits) == s.Label {
			correct++
		}
	}
	n := float64(len(samples))
	return meanLoss / n, float64(correct) / n, nil
}

func argmax(v []float64) int {
	best := 0
	for i := range v {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
