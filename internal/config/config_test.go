package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseYAML(t *testing.T) {
	in := `
# comment
data_path: "data/iris.csv"
epochs: 10   # short run
batch_size: 4
learning_rate: 0.1
atol: 1e-9
numeric: false
`
	cfg, err := parseYAML(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parseYAML: %v", err)
	}
	if cfg.DataPath != "data/iris.csv" {
		t.Fatalf("data_path=%q", cfg.DataPath)
	}
	if cfg.Epochs != 10 || cfg.BatchSize != 4 || cfg.LearningRate != 0.1 {
		t.Fatalf("unexpected training knobs %+v", cfg)
	}
	if cfg.Atol != 1e-9 || cfg.Rtol != 1e-5 {
		t.Fatalf("unexpected tolerance atol=%g rtol=%g", cfg.Atol, cfg.Rtol)
	}
	if cfg.Numeric {
		t.Fatal("numeric should be false")
	}
	if cfg.SyntheticSize != 150 {
		t.Fatalf("default synthetic_size lost: %d", cfg.SyntheticSize)
	}
}

func TestParseYAMLErrors(t *testing.T) {
	for _, in := range []string{
		"epochs 10",
		"epochs: ten",
		"colour: blue",
		"numeric: maybe",
	} {
		if _, err := parseYAML(strings.NewReader(in)); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()
	cfg.ApplyOverrides(Overrides{DataPath: "x.csv", Epochs: 3, Workers: 8, NoNumeric: true})
	if cfg.DataPath != "x.csv" || cfg.Epochs != 3 || cfg.Workers != 8 || cfg.Numeric {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	cfg.ApplyOverrides(Overrides{NoTrain: true})
	if cfg.Epochs != 0 {
		t.Fatalf("NoTrain should zero epochs, got %d", cfg.Epochs)
	}
	cfg.ApplyOverrides(Overrides{})
	if cfg.DataPath != "x.csv" || cfg.Workers != 8 {
		t.Fatal("zero overrides changed config")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.LogEvery = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.LogEvery != 50 {
		t.Fatalf("log_every default not applied: %d", cfg.LogEvery)
	}

	bad := []func(c *Config){
		func(c *Config) { c.TestFraction = 1 },
		func(c *Config) { c.Epochs = -1 },
		func(c *Config) { c.BatchSize = 0 },
		func(c *Config) { c.LearningRate = 0 },
		func(c *Config) { c.Workers = 0 },
		func(c *Config) { c.SyntheticSize = 0 },
		func(c *Config) { c.Atol = -1 },
	}
	for i, mutate := range bad {
		c := Default()
		mutate(c)
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
	var nilCfg *Config
	if err := nilCfg.Validate(); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestLoadDemoConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "demo.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Epochs != 100 {
		t.Fatalf("demo epochs=%d", cfg.Epochs)
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("batch_size: 0\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error from Load")
	}
}
