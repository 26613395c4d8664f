// Package config resolves runtime configuration from environment variables,
// generalizing the teacher's LoadConfigFromEnv singleton pattern
// (internal/cache/redis.go, internal/db) into one place for every ambient
// setting the core and its command layer need: canonical constants
// overrides, the RNG seed, the solver's caller-supplied tick budget, and
// HTTP server settings (spec §4.9, §5, §9).
package config

import (
	"os"
	"strconv"

	"github.com/transitlab/railsim/internal/railmodel"
)

// Config is the fully-resolved runtime configuration.
type Config struct {
	Constants railmodel.Constants

	// SolverTickBudget bounds the dispatchsolver-driven simulation loop as
	// a practical safeguard (spec §5: "a permitted extension"). Zero means
	// unbounded.
	SolverTickBudget int

	// StrictInvariants controls whether a simulator invariant breach
	// panics (true, the default) or is softened to a logged warning
	// (false) — spec §7's "production builds may soften to logged warnings".
	StrictInvariants bool

	ServerPort string

	// CacheEnabled gates whether cmd/server stands up the Redis-backed
	// memoization cache at all; the Redis connection itself is configured
	// independently via internal/cache's own REDIS_HOST/REDIS_PORT/
	// REDIS_PASSWORD/REDIS_DB environment variables.
	CacheEnabled bool
}

// Load reads Config from the environment, defaulting every field to the
// spec's canonical values.
func Load() Config {
	c := Config{
		Constants:        railmodel.DefaultConstants(),
		SolverTickBudget: getEnvInt("SOLVER_TICK_BUDGET", 0),
		StrictInvariants: getEnvBool("STRICT_INVARIANTS", true),
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		CacheEnabled:     getEnvBool("CACHE_ENABLED", true),
	}

	c.Constants.StationDwellTime = getEnvFloat("STATION_DWELL_TIME", c.Constants.StationDwellTime)
	c.Constants.MinTrainDistance = getEnvFloat("MIN_TRAIN_DISTANCE", c.Constants.MinTrainDistance)
	c.Constants.TimeStep = getEnvFloat("TIME_STEP", c.Constants.TimeStep)
	c.Constants.SchedulePeriod = getEnvInt("SCHEDULE_PERIOD", c.Constants.SchedulePeriod)
	c.Constants.ScheduleGranularity = getEnvInt("SCHEDULE_GRANULARITY", c.Constants.ScheduleGranularity)
	c.Constants.WarmupTicks = getEnvInt("WARMUP_TICKS", c.Constants.WarmupTicks)
	c.Constants.DefaultRNGSeed = getEnvInt("RNG_SEED", c.Constants.DefaultRNGSeed)

	return c
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
