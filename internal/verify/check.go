package verify

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"gradcheck/internal/analytic"
	"gradcheck/internal/autodiff"
	"gradcheck/internal/metrics"
	"gradcheck/internal/model"
)

// Options configures Check and CheckAll. Zero fields take defaults.
type Options struct {
	Tol          Tolerance
	NumericTol   Tolerance
	Step         float64
	SymmetryEps  float64
	PSDEps       float64
	SkipBackprop bool
	SkipNumeric  bool
	Workers      int
}

func (o Options) withDefaults() Options {
	if o.Tol == (Tolerance{}) {
		o.Tol = DefaultTolerance
	}
	if o.NumericTol == (Tolerance{}) {
		o.NumericTol = NumericTolerance
	}
	if o.Step <= 0 {
		o.Step = autodiff.DefaultStep
	}
	if o.SymmetryEps <= 0 {
		o.SymmetryEps = 1e-10
	}
	if o.PSDEps <= 0 {
		o.PSDEps = 1e-8
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
	return o
}

// Report is the outcome of checking one sample.
type Report struct {
	Sample model.Sample
	Loss   float64

	AnalyticGrad []float64
	AutodiffGrad []float64
	AnalyticHess *mat.SymDense
	AutodiffHess *mat.SymDense

	GradientMatch bool
	HessianMatch  bool
	BackpropMatch bool
	NumericMatch  bool
	Symmetric     bool
	PSD           bool

	MaxGradErr    float64
	MaxHessErr    float64
	MinEigenvalue float64
	Elapsed       time.Duration
}

// OK reports whether every check passed.
func (r Report) OK() bool {
	return len(r.Failed()) == 0
}

// Failed names the checks that did not pass.
func (r Report) Failed() []string {
	var failed []string
	for _, c := range []struct {
		name string
		ok   bool
	}{
		{"gradient", r.GradientMatch},
		{"hessian", r.HessianMatch},
		{"backprop", r.BackpropMatch},
		{"numeric", r.NumericMatch},
		{"symmetric", r.Symmetric},
		{"psd", r.PSD},
	} {
		if !c.ok {
			failed = append(failed, c.name)
		}
	}
	return failed
}

// Outcome converts r for metrics.Tally.
func (r Report) Outcome() metrics.Outcome {
	return metrics.Outcome{
		Failed:   r.Failed(),
		GradErr:  r.MaxGradErr,
		HessErr:  r.MaxHessErr,
		MinEigen: r.MinEigenvalue,
		Elapsed:  r.Elapsed,
	}
}

// Check computes the loss derivatives for s at w through every available
// path and compares the analytical results against the autodiff reference.
// Skipped paths count as passed.
func Check(w model.Params, s model.Sample, opts Options) (Report, error) {
	opts = opts.withDefaults()
	start := time.Now()
	r := Report{Sample: s, BackpropMatch: true, NumericMatch: true}

	loss, err := model.CrossEntropy(w, s.X(), s.Label)
	if err != nil {
		return r, fmt.Errorf("loss: %w", err)
	}
	r.Loss = loss

	if r.AnalyticGrad, err = analytic.GradientAt(w, s); err != nil {
		return r, fmt.Errorf("analytic gradient: %w", err)
	}
	if r.AnalyticHess, err = analytic.HessianAt(w, s.X()); err != nil {
		return r, fmt.Errorf("analytic hessian: %w", err)
	}
	if r.AutodiffGrad, err = autodiff.Gradient(w, s); err != nil {
		return r, fmt.Errorf("autodiff gradient: %w", err)
	}
	if r.AutodiffHess, err = autodiff.Hessian(w, s); err != nil {
		return r, fmt.Errorf("autodiff hessian: %w", err)
	}

	r.GradientMatch = AllCloseVec(r.AnalyticGrad, r.AutodiffGrad, opts.Tol)
	r.HessianMatch = AllClose(r.AnalyticHess, r.AutodiffHess, opts.Tol)
	r.MaxGradErr = MaxAbsDiffVec(r.AnalyticGrad, r.AutodiffGrad)
	r.MaxHessErr = MaxAbsDiff(r.AnalyticHess, r.AutodiffHess)

	r.Symmetric = IsSymmetric(r.AnalyticHess, opts.SymmetryEps)
	if r.MinEigenvalue, err = MinEigenvalue(r.AnalyticHess); err != nil {
		return r, fmt.Errorf("hessian spectrum: %w", err)
	}
	r.PSD = r.MinEigenvalue >= -opts.PSDEps

	if !opts.SkipBackprop {
		_, bp, err := autodiff.Backprop(w, s)
		if err != nil {
			return r, fmt.Errorf("reverse mode: %w", err)
		}
		r.BackpropMatch = AllCloseVec(bp, r.AutodiffGrad, opts.Tol)
	}

	if !opts.SkipNumeric {
		grad, hess, err := autodiff.Numeric(w, s, opts.Step)
		if err != nil {
			return r, fmt.Errorf("numeric: %w", err)
		}
		r.NumericMatch = AllCloseVec(grad, r.AutodiffGrad, opts.NumericTol) &&
			AllClose(hess, r.AutodiffHess, opts.NumericTol)
	}

	r.Elapsed = time.Since(start)
	return r, nil
}

// CheckAll runs Check over samples using up to opts.Workers goroutines.
// Reports are returned in input order; the first error cancels the rest.
func CheckAll(ctx context.Context, w model.Params, samples []model.Sample, opts Options) ([]Report, metrics.Summary, error) {
	opts = opts.withDefaults()
	reports := make([]Report, len(samples))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := range samples {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := Check(w, samples[i], opts)
			if err != nil {
				return fmt.Errorf("sample %d: %w", i, err)
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, metrics.Summary{}, err
	}

	var tally metrics.Tally
	for _, r := range reports {
		tally.Record(r.Outcome())
	}
	return reports, tally.Summary(), nil
}
