package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "optimizer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 50, cfg.PopulationSize)
	assert.Equal(t, 5000, cfg.Generations)
	assert.InDelta(t, 0.001, cfg.MutationProbability, 1e-12)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
population_size: 80
trucks: 3
runs: 4
time_budget: 30s
seed: 42
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 80, cfg.PopulationSize)
	assert.Equal(t, 3, cfg.Trucks)
	assert.Equal(t, 4, cfg.Runs)
	assert.Equal(t, 30*time.Second, cfg.TimeBudget)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, 5, cfg.EliteCount)
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	path := writeFile(t, "trucks: 3\n")
	t.Setenv("OPT_TRUCKS", "7")
	t.Setenv("OPT_MUTATION_PROBABILITY", "0.05")
	t.Setenv("OPT_TIME_BUDGET", "2m")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Trucks)
	assert.InDelta(t, 0.05, cfg.MutationProbability, 1e-12)
	assert.Equal(t, 2*time.Minute, cfg.TimeBudget)
}

func TestLoadRejectsBadInput(t *testing.T) {
	t.Run("bad yaml", func(t *testing.T) {
		_, err := Load(writeFile(t, "trucks: [\n"))
		require.Error(t, err)
	})

	t.Run("bad env", func(t *testing.T) {
		t.Setenv("OPT_GENERATIONS", "many")
		_, err := Load("")
		require.ErrorContains(t, err, "OPT_GENERATIONS")
	})

	t.Run("invalid engine", func(t *testing.T) {
		_, err := Load(writeFile(t, "elite_count: 40\nrandom_count: 20\n"))
		require.ErrorContains(t, err, "exceeds population size")
	})

	t.Run("no trucks", func(t *testing.T) {
		_, err := Load(writeFile(t, "trucks: 0\n"))
		require.ErrorContains(t, err, "trucks")
	})
}

func TestEngineMapping(t *testing.T) {
	cfg := Default()
	cfg.Workers = 3
	cfg.TimeBudget = time.Second

	e := cfg.Engine()
	assert.Equal(t, cfg.PopulationSize, e.PopulationSize)
	assert.Equal(t, cfg.EliteCount, e.EliteCount)
	assert.Equal(t, cfg.RandomCount, e.RandomCount)
	assert.Equal(t, cfg.Generations, e.Generations)
	assert.Equal(t, 3, e.Workers)
	assert.Equal(t, time.Second, e.TimeBudget)
	require.NoError(t, e.Validate())
}

func TestGet(t *testing.T) {
	t.Setenv("ROUTE_OPT_TEST_KEY", "")
	assert.Equal(t, "fb", Get("ROUTE_OPT_TEST_KEY", "fb"))
	t.Setenv("ROUTE_OPT_TEST_KEY", "v")
	assert.Equal(t, "v", Get("ROUTE_OPT_TEST_KEY", "fb"))
}
