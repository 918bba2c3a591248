package dataset

import (
	"context"
	"errors"
	"math/rand"

	"gradcheck/internal/model"
)

// BatcherOptions configures the epoch batcher.
type BatcherOptions struct {
	BatchSize int
	Epochs    int
	Seed      int64
}

// EpochBatch is a minibatch tagged with its position in training.
type EpochBatch struct {
	Epoch int
	Step  int
	model.Batch
}

// StartBatcher streams shuffled minibatches over samples for opts.Epochs
// epochs. The final batch of an epoch may be short. The channel closes once
// every epoch is delivered or ctx is done.
func StartBatcher(ctx context.Context, samples []model.Sample, opts BatcherOptions) (<-chan EpochBatch, error) {
	if len(samples) == 0 {
		return nil, errors.New("batcher: no samples")
	}
	if opts.BatchSize <= 0 {
		return nil, errors.New("batcher: batch size must be > 0")
	}
	if opts.Epochs <= 0 {
		return nil, errors.New("batcher: epochs must be > 0")
	}
	if opts.Seed == 0 {
		opts.Seed = 42
	}

	out := make(chan EpochBatch, 2)
	rng := rand.New(rand.NewSource(opts.Seed))

	go func() {
		defer close(out)
		step := 0
		for epoch := 1; epoch <= opts.Epochs; epoch++ {
			order := buildEpochOrder(len(samples), rng)
			for start := 0; start < len(order); start += opts.BatchSize {
				end := min(start+opts.BatchSize, len(order))
				batch := make([]model.Sample, 0, end-start)
				for _, idx := range order[start:end] {
					batch = append(batch, samples[idx])
				}
				step++
				select {
				case <-ctx.Done():
					return
				case out <- EpochBatch{Epoch: epoch, Step: step, Batch: model.Batch{Samples: batch}}:
				}
			}
		}
	}()

	return out, nil
}

func buildEpochOrder(n int, rng *rand.Rand) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if rng != nil {
		rng.Shuffle(n, func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}
	return order
}

// Split shuffles a copy of samples with seed and holds out testFraction of it.
func Split(samples []model.Sample, testFraction float64, seed int64) (train, test []model.Sample, err error) {
	if testFraction < 0 || testFraction >= 1 {
		return nil, nil, errors.New("split: test fraction must be in [0, 1)")
	}
	order := buildEpochOrder(len(samples), rand.New(rand.NewSource(seed)))
	nTest := int(float64(len(samples))*testFraction + 0.5)
	if testFraction > 0 && nTest == 0 && len(samples) > 1 {
		nTest = 1
	}
	for i, idx := range order {
		if i < nTest {
			test = append(test, samples[idx])
		} else {
			train = append(train, samples[idx])
		}
	}
	return train, test, nil
}
