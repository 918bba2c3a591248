package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Config captures the runtime knobs for a training and verification run.
type Config struct {
	DataPath      string  `yaml:"data_path"`
	SyntheticSize int     `yaml:"synthetic_size"`
	TestFraction  float64 `yaml:"test_fraction"`
	Epochs        int     `yaml:"epochs"`
	BatchSize     int     `yaml:"batch_size"`
	LearningRate  float64 `yaml:"learning_rate"`
	Seed          int64   `yaml:"seed"`
	LogEvery      int     `yaml:"log_every"`
	Workers       int     `yaml:"workers"`
	MaxSamples    int     `yaml:"max_samples"`
	Atol          float64 `yaml:"atol"`
	Rtol          float64 `yaml:"rtol"`
	Numeric       bool    `yaml:"numeric"`
	Step          float64 `yaml:"step"`
}

// Overrides captures CLI supplied values.
type Overrides struct {
	DataPath     string
	Epochs       int
	NoTrain      bool
	BatchSize    int
	LearningRate float64
	Seed         int64
	LogEvery     int
	Workers      int
	MaxSamples   int
	Atol         float64
	Rtol         float64
	NoNumeric    bool
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		SyntheticSize: 150,
		TestFraction:  0.2,
		Epochs:        100,
		BatchSize:     8,
		LearningRate:  0.05,
		Seed:          42,
		LogEvery:      50,
		Workers:       1,
		Atol:          1e-8,
		Rtol:          1e-5,
		Numeric:       true,
	}
}

// Load reads and validates a Config from YAML. Keys absent from the file
// keep their Default values.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := parseYAML(f)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyOverrides updates cfg using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.DataPath != "" {
		c.DataPath = o.DataPath
	}
	if o.Epochs > 0 {
		c.Epochs = o.Epochs
	}
	if o.NoTrain {
		c.Epochs = 0
	}
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.LearningRate > 0 {
		c.LearningRate = o.LearningRate
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.LogEvery > 0 {
		c.LogEvery = o.LogEvery
	}
	if o.Workers > 0 {
		c.Workers = o.Workers
	}
	if o.MaxSamples > 0 {
		c.MaxSamples = o.MaxSamples
	}
	if o.Atol > 0 {
		c.Atol = o.Atol
	}
	if o.Rtol > 0 {
		c.Rtol = o.Rtol
	}
	if o.NoNumeric {
		c.Numeric = false
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.DataPath == "" && c.SyntheticSize <= 0 {
		return errors.New("either data_path or synthetic_size must be set")
	}
	if c.TestFraction <= 0 || c.TestFraction >= 1 {
		return fmt.Errorf("test_fraction must be in (0, 1) (got %g)", c.TestFraction)
	}
	if c.Epochs < 0 {
		return fmt.Errorf("epochs must be >= 0 (got %d)", c.Epochs)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", c.BatchSize)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning_rate must be > 0 (got %g)", c.LearningRate)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be > 0 (got %d)", c.Workers)
	}
	if c.MaxSamples < 0 {
		return fmt.Errorf("max_samples must be >= 0 (got %d)", c.MaxSamples)
	}
	if c.Atol < 0 || c.Rtol < 0 {
		return fmt.Errorf("atol and rtol must be >= 0 (got %g, %g)", c.Atol, c.Rtol)
	}
	if c.Atol == 0 && c.Rtol == 0 {
		c.Atol, c.Rtol = 1e-8, 1e-5
	}
	if c.LogEvery <= 0 {
		c.LogEvery = 50
	}
	return nil
}

func parseYAML(r io.Reader) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: missing ':'", lineNo)
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if i := strings.Index(value, " #"); i >= 0 {
			value = strings.TrimSpace(value[:i])
		}
		value = strings.Trim(value, "\"'")

		var err error
		switch key {
		case "data_path":
			cfg.DataPath = value
		case "synthetic_size":
			cfg.SyntheticSize, err = strconv.Atoi(value)
		case "test_fraction":
			cfg.TestFraction, err = strconv.ParseFloat(value, 64)
		case "epochs":
			cfg.Epochs, err = strconv.Atoi(value)
		case "batch_size":
			cfg.BatchSize, err = strconv.Atoi(value)
		case "learning_rate":
			cfg.LearningRate, err = strconv.ParseFloat(value, 64)
		case "seed":
			cfg.Seed, err = strconv.ParseInt(value, 10, 64)
		case "log_every":
			cfg.LogEvery, err = strconv.Atoi(value)
		case "workers":
			cfg.Workers, err = strconv.Atoi(value)
		case "max_samples":
			cfg.MaxSamples, err = strconv.Atoi(value)
		case "atol":
			cfg.Atol, err = strconv.ParseFloat(value, 64)
		case "rtol":
			cfg.Rtol, err = strconv.ParseFloat(value, 64)
		case "numeric":
			cfg.Numeric, err = strconv.ParseBool(value)
		case "step":
			cfg.Step, err = strconv.ParseFloat(value, 64)
		default:
			return nil, fmt.Errorf("line %d: unknown key %s", lineNo, key)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", lineNo, key, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cfg, nil
}
