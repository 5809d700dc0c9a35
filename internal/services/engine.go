package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"slices"
	"time"
	"warehouse-route-optimizer/internal/domain"

	"github.com/alitto/pond"
	"gonum.org/v1/gonum/stat"
)

// Queued evaluations per worker before Submit blocks.
const poolQueuePerWorker = 64

// EngineConfig holds the generational loop parameters.
type EngineConfig struct {
	PopulationSize       int
	EliteCount           int
	RandomCount          int
	MutationProbability  float64
	CrossoverProbability float64
	Generations          int
	// Zero means no wall-clock limit.
	TimeBudget time.Duration
	// Goroutines used for cost evaluation. Zero means runtime.NumCPU().
	Workers int
}

func (c EngineConfig) Validate() error {
	switch {
	case c.PopulationSize < 1:
		return fmt.Errorf("engine config: population size must be positive, got %d", c.PopulationSize)
	case c.EliteCount < 0:
		return fmt.Errorf("engine config: elite count must not be negative, got %d", c.EliteCount)
	case c.RandomCount < 0:
		return fmt.Errorf("engine config: random count must not be negative, got %d", c.RandomCount)
	case c.EliteCount+c.RandomCount > c.PopulationSize:
		return fmt.Errorf(
			"engine config: elite (%d) + random (%d) exceeds population size %d",
			c.EliteCount, c.RandomCount, c.PopulationSize,
		)
	case c.MutationProbability < 0 || c.MutationProbability > 1:
		return fmt.Errorf("engine config: mutation probability %v outside [0,1]", c.MutationProbability)
	case c.CrossoverProbability < 0 || c.CrossoverProbability > 1:
		return fmt.Errorf("engine config: crossover probability %v outside [0,1]", c.CrossoverProbability)
	case c.Generations < 0:
		return fmt.Errorf("engine config: generations must not be negative, got %d", c.Generations)
	case c.TimeBudget < 0:
		return fmt.Errorf("engine config: time budget must not be negative, got %s", c.TimeBudget)
	}
	return nil
}

// Report describes one ranked generation.
type Report struct {
	Generation int
	Best       float64
	Mean       float64
	StdDev     float64
	Elapsed    time.Duration
}

// Why a run stopped.
type StopReason string

const (
	StopGenerations StopReason = "generations"
	StopTimeBudget  StopReason = "time_budget"
	StopCancelled   StopReason = "cancelled"
)

// EngineResult is the outcome of Engine.Run.
type EngineResult struct {
	Best        *domain.Solution
	InitialBest float64
	Generations int
	Stop        StopReason
}

// Engine drives the generational loop. All random draws happen on the
// calling goroutine; only cost evaluation is fanned out to workers.
type Engine struct {
	cfg       EngineConfig
	factory   *PopulationFactory
	distances *DistanceCache
	rng       *rand.Rand

	// Called after every ranked generation, generation 0 included.
	OnReport func(Report)
}

func NewEngine(cfg EngineConfig, factory *PopulationFactory, distances *DistanceCache, rng *rand.Rand) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if factory == nil || distances == nil || rng == nil {
		return nil, errors.New("new engine: factory, distances and rng are required")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}

	return &Engine{cfg: cfg, factory: factory, distances: distances, rng: rng}, nil
}

// Run evolves a fresh random population until the generation count or the
// time budget is reached, or ctx is done, and returns the best solution of
// the last ranked generation. An error is returned only when ctx is done
// before the initial population is ranked.
func (e *Engine) Run(ctx context.Context) (EngineResult, error) {
	start := time.Now()

	pool := pond.New(e.cfg.Workers, min(e.cfg.PopulationSize, e.cfg.Workers*poolQueuePerWorker))
	defer pool.StopAndWait()

	pop := e.factory.RandomPopulation(e.rng, e.cfg.PopulationSize)
	e.rank(pool, pop)
	if err := ctx.Err(); err != nil {
		return EngineResult{}, fmt.Errorf("engine run: %w", err)
	}

	res := EngineResult{
		InitialBest: pop[0].Cost(e.distances),
		Stop:        StopGenerations,
	}
	e.report(0, pop, start)

	for gen := 1; gen <= e.cfg.Generations; gen++ {
		if ctx.Err() != nil {
			res.Stop = StopCancelled
			break
		}
		if e.cfg.TimeBudget > 0 && time.Since(start) >= e.cfg.TimeBudget {
			res.Stop = StopTimeBudget
			break
		}

		pop = e.nextGeneration(pool, pop)
		res.Generations = gen
		e.report(gen, pop, start)
	}

	res.Best = pop[0]
	return res, nil
}

func (e *Engine) nextGeneration(pool *pond.WorkerPool, pop []*domain.Solution) []*domain.Solution {
	next := make([]*domain.Solution, 0, e.cfg.PopulationSize)
	next = append(next, pop[:e.cfg.EliteCount]...)

	for i := 0; i < e.cfg.RandomCount; i++ {
		next = append(next, e.factory.RandomSolution(e.rng))
	}

	for len(next) < e.cfg.PopulationSize {
		next = append(next, e.offspring(pop))
	}

	e.rank(pool, next)
	return next
}

func (e *Engine) offspring(ranked []*domain.Solution) *domain.Solution {
	parent1 := SelectParent(e.rng, ranked, e.distances)
	parent2 := SelectParent(e.rng, ranked, e.distances)

	var child *domain.Solution
	if e.rng.Float64() < e.cfg.CrossoverProbability {
		child = Crossover(e.rng, parent1, parent2)
	} else {
		child = parent1.Clone()
	}

	if e.rng.Float64() < e.cfg.MutationProbability {
		// A child without stops has nothing to swap; keep it as is.
		_ = Mutate(e.rng, child)
	}
	return child
}

// rank evaluates pending costs concurrently, then sorts ascending.
func (e *Engine) rank(pool *pond.WorkerPool, pop []*domain.Solution) {
	group := pool.Group()
	for _, s := range pop {
		if s.Evaluated() {
			continue
		}
		group.Submit(func() {
			s.Cost(e.distances)
		})
	}
	group.Wait()

	slices.SortStableFunc(pop, func(a, b *domain.Solution) int {
		return cmp.Compare(a.Cost(e.distances), b.Cost(e.distances))
	})
}

func (e *Engine) report(gen int, pop []*domain.Solution, start time.Time) {
	if e.OnReport == nil {
		return
	}

	costs := make([]float64, len(pop))
	for i, s := range pop {
		costs[i] = s.Cost(e.distances)
	}
	mean, std := stat.MeanStdDev(costs, nil)
	if len(costs) < 2 {
		std = 0
	}

	e.OnReport(Report{
		Generation: gen,
		Best:       costs[0],
		Mean:       mean,
		StdDev:     std,
		Elapsed:    time.Since(start),
	})
}
