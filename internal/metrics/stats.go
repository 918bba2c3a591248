package metrics

import "time"

// Window accumulates SGD step timings and losses between two trainer log
// lines. The zero value is ready to use.
type Window struct {
	samples  int
	data     time.Duration
	compute  time.Duration
	steps    int
	lastLoss float64
	sumLoss  float64
}

// Record adds one optimizer step: how many samples it consumed, the time
// spent waiting on the batcher, the time spent in TrainStep, and the mean
// batch loss it reported.
func (w *Window) Record(batchSize int, dataTime, computeTime time.Duration, loss float64) {
	w.samples += batchSize
	w.data += dataTime
	w.compute += computeTime
	w.steps++
	w.lastLoss = loss
	w.sumLoss += loss
}

// Snapshot summarizes the steps since the previous call and starts a new window.
func (w *Window) Snapshot() Snapshot {
	snap := Snapshot{LastLoss: w.lastLoss}
	if total := w.data + w.compute; total > 0 {
		snap.SamplesPerSec = float64(w.samples) / total.Seconds()
	}
	if w.steps > 0 {
		steps := float64(w.steps)
		snap.AvgDataMS = w.data.Seconds() * 1000 / steps
		snap.AvgComputeMS = w.compute.Seconds() * 1000 / steps
		snap.AvgLoss = w.sumLoss / steps
	}
	*w = Window{}
	return snap
}

// Snapshot is the per-window view logged by the trainer. AvgLoss averages
// batch losses over the window; LastLoss is the most recent batch.
type Snapshot struct {
	SamplesPerSec float64
	AvgDataMS     float64
	AvgComputeMS  float64
	AvgLoss       float64
	LastLoss      float64
}
