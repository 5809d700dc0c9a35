package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"time"
	"warehouse-route-optimizer/internal/services"

	"gopkg.in/yaml.v3"
)

// Optimizer holds the tunable parameters of a planning request.
type Optimizer struct {
	PopulationSize       int           `yaml:"population_size"`
	EliteCount           int           `yaml:"elite_count"`
	RandomCount          int           `yaml:"random_count"`
	MutationProbability  float64       `yaml:"mutation_probability"`
	CrossoverProbability float64       `yaml:"crossover_probability"`
	Trucks               int           `yaml:"trucks"`
	Generations          int           `yaml:"generations"`
	Runs                 int           `yaml:"runs"`
	Seed                 uint64        `yaml:"seed"`
	Workers              int           `yaml:"workers"`
	TimeBudget           time.Duration `yaml:"time_budget"`
	ReportEvery          int           `yaml:"report_every"`
}

// Default returns the parameters used when nothing is configured.
func Default() Optimizer {
	return Optimizer{
		PopulationSize:       50,
		EliteCount:           5,
		RandomCount:          5,
		MutationProbability:  0.001,
		CrossoverProbability: 1.0,
		Trucks:               1,
		Generations:          5000,
		Runs:                 1,
		Workers:              runtime.NumCPU(),
		ReportEvery:          100,
	}
}

// Load reads YAML parameters from path over the defaults, then applies
// OPT_* environment overrides. A missing file is not an error.
func Load(path string) (Optimizer, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Optimizer{}, fmt.Errorf("load optimizer config: read %q: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Optimizer{}, fmt.Errorf("load optimizer config: parse %q: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Optimizer{}, fmt.Errorf("load optimizer config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Optimizer{}, err
	}
	return cfg, nil
}

func (o *Optimizer) applyEnv() error {
	ints := []struct {
		key string
		dst *int
	}{
		{"OPT_POPULATION_SIZE", &o.PopulationSize},
		{"OPT_ELITE_COUNT", &o.EliteCount},
		{"OPT_RANDOM_COUNT", &o.RandomCount},
		{"OPT_TRUCKS", &o.Trucks},
		{"OPT_GENERATIONS", &o.Generations},
		{"OPT_RUNS", &o.Runs},
		{"OPT_WORKERS", &o.Workers},
		{"OPT_REPORT_EVERY", &o.ReportEvery},
	}
	for _, e := range ints {
		v := os.Getenv(e.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", e.key, v, err)
		}
		*e.dst = n
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"OPT_MUTATION_PROBABILITY", &o.MutationProbability},
		{"OPT_CROSSOVER_PROBABILITY", &o.CrossoverProbability},
	}
	for _, e := range floats {
		v := os.Getenv(e.key)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", e.key, v, err)
		}
		*e.dst = f
	}

	if v := os.Getenv("OPT_SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("OPT_SEED=%q: %w", v, err)
		}
		o.Seed = n
	}

	if v := os.Getenv("OPT_TIME_BUDGET"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("OPT_TIME_BUDGET=%q: %w", v, err)
		}
		o.TimeBudget = d
	}

	return nil
}

// Validate checks the parameters before any run starts.
func (o Optimizer) Validate() error {
	if o.Trucks < 1 {
		return fmt.Errorf("optimizer config: trucks must be positive, got %d", o.Trucks)
	}
	if o.Runs < 1 {
		return fmt.Errorf("optimizer config: runs must be positive, got %d", o.Runs)
	}
	if o.Workers < 0 {
		return fmt.Errorf("optimizer config: workers must not be negative, got %d", o.Workers)
	}
	if o.ReportEvery < 0 {
		return fmt.Errorf("optimizer config: report_every must not be negative, got %d", o.ReportEvery)
	}
	if err := o.Engine().Validate(); err != nil {
		return fmt.Errorf("optimizer config: %w", err)
	}
	return nil
}

// Engine returns the generational loop parameters.
func (o Optimizer) Engine() services.EngineConfig {
	return services.EngineConfig{
		PopulationSize:       o.PopulationSize,
		EliteCount:           o.EliteCount,
		RandomCount:          o.RandomCount,
		MutationProbability:  o.MutationProbability,
		CrossoverProbability: o.CrossoverProbability,
		Generations:          o.Generations,
		TimeBudget:           o.TimeBudget,
		Workers:              o.Workers,
	}
}
