package metrics

import (
	"math"
	"testing"
	"time"
)

func TestWindowSnapshot(t *testing.T) {
	var w Window
	w.Record(64, 20*time.Millisecond, 10*time.Millisecond, 1.2)
	w.Record(64, 10*time.Millisecond, 20*time.Millisecond, 0.8)
	snap := w.Snapshot()
	if math.Abs(snap.SamplesPerSec-2133.3333) > 1 {
		t.Fatalf("unexpected throughput %.2f", snap.SamplesPerSec)
	}
	if w.samples != 0 || w.steps != 0 {
		t.Fatalf("window was not reset")
	}
	if snap.LastLoss != 0.8 {
		t.Fatalf("expected last loss 0.8, got %.2f", snap.LastLoss)
	}
	if math.Abs(snap.AvgLoss-1.0) > 1e-12 {
		t.Fatalf("expected avg loss 1.0, got %.4f", snap.AvgLoss)
	}
}

func TestTallySummary(t *testing.T) {
	var tally Tally
	tally.Record(Outcome{GradErr: 1e-12, HessErr: 2e-12, MinEigen: 0.1, Elapsed: time.Millisecond})
	tally.Record(Outcome{Failed: []string{"hessian", "gradient"}, GradErr: 3e-3, HessErr: 1e-13, MinEigen: -2e-9, Elapsed: 3 * time.Millisecond})
	tally.Record(Outcome{Failed: []string{"gradient"}, MinEigen: 0.5})

	s := tally.Summary()
	if s.Checked != 3 || s.Failed != 2 {
		t.Fatalf("checked=%d failed=%d", s.Checked, s.Failed)
	}
	if s.OK() {
		t.Fatal("summary with failures reported OK")
	}
	if len(s.FailedChecks) != 2 || s.FailedChecks[0] != "gradient" || s.FailedChecks[1] != "hessian" {
		t.Fatalf("unexpected failed checks %v", s.FailedChecks)
	}
	if s.MaxGradErr != 3e-3 || s.MaxHessErr != 2e-12 {
		t.Fatalf("unexpected max errors grad=%g hess=%g", s.MaxGradErr, s.MaxHessErr)
	}
	if s.MinEigen != -2e-9 {
		t.Fatalf("unexpected min eigenvalue %g", s.MinEigen)
	}
	if math.Abs(s.AvgCheckMS-4.0/3) > 1e-9 {
		t.Fatalf("unexpected avg check ms %f", s.AvgCheckMS)
	}
}

func TestEmptyTallyIsOK(t *testing.T) {
	var tally Tally
	if !tally.Summary().OK() {
		t.Fatal("empty tally should be OK")
	}
}

func TestWindowSnapshotsAreIndependent(t *testing.T) {
	var w Window
	w.Record(8, time.Millisecond, time.Millisecond, 2.0)
	_ = w.Snapshot()

	empty := w.Snapshot()
	if empty != (Snapshot{}) {
		t.Fatalf("expected zero snapshot after reset, got %+v", empty)
	}

	w.Record(4, 0, 2*time.Millisecond, 0.5)
	snap := w.Snapshot()
	if snap.AvgLoss != 0.5 || snap.LastLoss != 0.5 {
		t.Fatalf("loss leaked across windows: %+v", snap)
	}
	if math.Abs(snap.AvgComputeMS-2) > 1e-9 || snap.AvgDataMS != 0 {
		t.Fatalf("unexpected timings %+v", snap)
	}
	if math.Abs(snap.SamplesPerSec-2000) > 1e-6 {
		t.Fatalf("unexpected throughput %.2f", snap.SamplesPerSec)
	}
}
