package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gonum.org/v1/gonum/mat"

	"gradcheck/internal/config"
	"gradcheck/internal/dataset"
	"gradcheck/internal/model"
	"gradcheck/internal/trainer"
	"gradcheck/internal/verify"
)

func main() {
	cfgPath := flag.String("config", "configs/demo.yaml", "Path to YAML config (empty for defaults)")
	dataPath := flag.String("data", "", "Override dataset CSV file or directory")
	epochs := flag.Int("epochs", 0, "Number of training epochs")
	noTrain := flag.Bool("no-train", false, "Skip training and check the seeded initial weights")
	batchSize := flag.Int("batch-size", 0, "Batch size")
	lr := flag.Float64("lr", 0, "Learning rate")
	seed := flag.Int64("seed", 0, "PRNG seed")
	logEvery := flag.Int("log-every", 0, "Log every N steps")
	workers := flag.Int("workers", 0, "Number of concurrent checks")
	samples := flag.Int("samples", 0, "Check at most N held-out samples")
	atol := flag.Float64("atol", 0, "Absolute tolerance")
	rtol := flag.Float64("rtol", 0, "Relative tolerance")
	noNumeric := flag.Bool("no-numeric", false, "Skip the finite-difference cross-check")
	printFirst := flag.Bool("print", false, "Print gradient and Hessian of the first checked sample")

	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	}

	cfg.ApplyOverrides(config.Overrides{
		DataPath:     *dataPath,
		Epochs:       *epochs,
		NoTrain:      *noTrain,
		BatchSize:    *batchSize,
		LearningRate: *lr,
		Seed:         *seed,
		LogEvery:     *logEvery,
		Workers:      *workers,
		MaxSamples:   *samples,
		Atol:         *atol,
		Rtol:         *rtol,
		NoNumeric:    *noNumeric,
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	all, err := loadSamples(ctx, cfg)
	if err != nil {
		log.Fatalf("load dataset: %v", err)
	}
	train, test, err := dataset.Split(all, cfg.TestFraction, cfg.Seed)
	if err != nil {
		log.Fatalf("split dataset: %v", err)
	}
	log.Printf("samples=%d train=%d test=%d", len(all), len(train), len(test))

	w, err := trainer.Run(ctx, trainer.RunConfig{
		Train:        train,
		Epochs:       cfg.Epochs,
		BatchSize:    cfg.BatchSize,
		LearningRate: cfg.LearningRate,
		LogEvery:     cfg.LogEvery,
		Seed:         cfg.Seed,
	})
	if err != nil {
		log.Fatalf("training failed: %v", err)
	}
	for _, part := range []struct {
		name    string
		samples []model.Sample
	}{{"train", train}, {"test", test}} {
		loss, acc, err := trainer.Evaluate(w, part.samples)
		if err != nil {
			log.Fatalf("evaluate %s: %v", part.name, err)
		}
		log.Printf("split=%s loss=%.4f accuracy=%.3f", part.name, loss, acc)
	}

	checked := test
	if cfg.MaxSamples > 0 && cfg.MaxSamples < len(checked) {
		checked = checked[:cfg.MaxSamples]
	}
	reports, summary, err := verify.CheckAll(ctx, w, checked, verify.Options{
		Tol:         verify.Tolerance{Atol: cfg.Atol, Rtol: cfg.Rtol},
		Step:        cfg.Step,
		SkipNumeric: !cfg.Numeric,
		Workers:     cfg.Workers,
	})
	if err != nil {
		log.Fatalf("verification failed: %v", err)
	}

	if *printFirst && len(reports) > 0 {
		printReport(reports[0])
	}
	for i, r := range reports {
		if !r.OK() {
			log.Printf("sample=%d label=%d failed=%v grad_err=%.3g hess_err=%.3g min_eig=%.3g",
				i, r.Sample.Label, r.Failed(), r.MaxGradErr, r.MaxHessErr, r.MinEigenvalue)
		}
	}
	log.Printf("checked=%d failed=%d max_grad_err=%.3g max_hess_err=%.3g min_eig=%.3g avg_check_ms=%.3f",
		summary.Checked, summary.Failed, summary.MaxGradErr, summary.MaxHessErr, summary.MinEigen, summary.AvgCheckMS)

	if !summary.OK() {
		log.Printf("failed checks: %v", summary.FailedChecks)
		stop()
		os.Exit(1)
	}
}

func loadSamples(ctx context.Context, cfg *config.Config) ([]model.Sample, error) {
	if cfg.DataPath == "" {
		log.Printf("data_path unset; drawing %d synthetic samples", cfg.SyntheticSize)
		return dataset.Synthetic(cfg.SyntheticSize, cfg.Seed), nil
	}
	samples, labels, err := dataset.Load(ctx, cfg.DataPath)
	if err != nil {
		return nil, err
	}
	log.Printf("data=%s classes=%v", cfg.DataPath, labels.Names())
	return samples, nil
}

func printReport(r verify.Report) {
	fmt.Printf("sample features=%v label=%d loss=%.6f\n", r.Sample.Features, r.Sample.Label, r.Loss)
	grad := mat.NewDense(1, model.NumParams, r.AnalyticGrad)
	fmt.Printf("gradient (analytic)\n%.4f\n", mat.Formatted(grad, mat.Squeeze()))
	fmt.Printf("hessian (analytic)\n%.4f\n", mat.Formatted(r.AnalyticHess, mat.Squeeze()))
}
