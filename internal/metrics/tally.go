package metrics

import (
	"math"
	"sort"
	"time"
)

// Outcome is one derivative check reduced to loggable numbers.
type Outcome struct {
	Failed   []string
	GradErr  float64
	HessErr  float64
	MinEigen float64
	Elapsed  time.Duration
}

// Tally accumulates check outcomes. It is not safe for concurrent use.
type Tally struct {
	checked    int
	failed     int
	byCheck    map[string]int
	maxGradErr float64
	maxHessErr float64
	minEigen   float64
	elapsed    time.Duration
}

// Record adds one outcome.
func (t *Tally) Record(o Outcome) {
	if t.checked == 0 {
		t.minEigen = math.Inf(1)
	}
	t.checked++
	if len(o.Failed) > 0 {
		t.failed++
		if t.byCheck == nil {
			t.byCheck = make(map[string]int)
		}
		for _, name := range o.Failed {
			t.byCheck[name]++
		}
	}
	t.maxGradErr = math.Max(t.maxGradErr, o.GradErr)
	t.maxHessErr = math.Max(t.maxHessErr, o.HessErr)
	t.minEigen = math.Min(t.minEigen, o.MinEigen)
	t.elapsed += o.Elapsed
}

// Summary returns the aggregate without resetting.
func (t *Tally) Summary() Summary {
	s := Summary{
		Checked:    t.checked,
		Failed:     t.failed,
		MaxGradErr: t.maxGradErr,
		MaxHessErr: t.maxHessErr,
		MinEigen:   t.minEigen,
	}
	if t.checked > 0 {
		s.AvgCheckMS = (t.elapsed.Seconds() * 1000) / float64(t.checked)
	}
	for name := range t.byCheck {
		s.FailedChecks = append(s.FailedChecks, name)
	}
	sort.Strings(s.FailedChecks)
	return s
}

// Summary is the loggable view of a Tally.
type Summary struct {
	Checked      int
	Failed       int
	FailedChecks []string
	MaxGradErr   float64
	MaxHessErr   float64
	MinEigen     float64
	AvgCheckMS   float64
}

// OK reports whether every recorded check passed.
func (s Summary) OK() bool {
	return s.Failed == 0
}
