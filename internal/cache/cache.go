// Package cache is a best-effort planner/evaluator memoization layer,
// generalizing the teacher's internal/cache/redis.go singleton client and
// sha256-keyed cache key scheme (spec §4.8). A cache miss or an unreachable
// Redis never changes a result, only the cost of recomputing it — every
// exported function degrades to "not cached" rather than returning an error
// that callers would need to treat as fatal.
package cache

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/transitlab/railsim/internal/planner"
)

var (
	client     *redis.Client
	clientOnce sync.Once
	clientErr  error
)

// Config holds Redis configuration for the memoization cache.
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

// LoadConfigFromEnv loads Config from the environment, matching the
// teacher's LoadConfigFromEnv pattern (also generalized in internal/config).
func LoadConfigFromEnv() *Config {
	port, _ := strconv.Atoi(getEnv("REDIS_PORT", "6379"))
	db, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	ttl, _ := time.ParseDuration(getEnv("CACHE_TTL", "10m"))

	return &Config{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     port,
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
		TTL:      ttl,
	}
}

// GetClient returns the global Redis client (singleton pattern).
func GetClient() (*redis.Client, error) {
	clientOnce.Do(func() {
		cfg := LoadConfigFromEnv()

		opts := &redis.Options{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Password:     cfg.Password,
			DB:           cfg.DB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     10,
			MinIdleConns: 2,
		}

		if getEnv("REDIS_TLS_ENABLED", "false") == "true" {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}

		client = redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			clientErr = fmt.Errorf("cache: redis unreachable: %w", err)
		}
	})

	return client, clientErr
}

// Close closes the shared Redis client.
func Close() {
	if client != nil {
		client.Close()
	}
}

// PathSetKey derives the memoization key for a k-shortest-path planner call:
// (source, target, k, frequency-table fingerprint) per spec §4.8.
func PathSetKey(source, target, k int, freqFingerprint string) string {
	data := fmt.Sprintf("paths:%d:%d:%d:%s", source, target, k, freqFingerprint)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("pathset:%x", hash[:12])
}

// FrequencyFingerprint hashes a frequency table into a short stable string
// so cache keys stay small regardless of schedule length.
func FrequencyFingerprint(freq [][]int) string {
	h := sha256.New()
	for _, row := range freq {
		for _, v := range row {
			fmt.Fprintf(h, "%d,", v)
		}
		fmt.Fprint(h, ";")
	}
	return fmt.Sprintf("%x", h.Sum(nil)[:8])
}

// GetPathSet retrieves a cached k-path candidate set. A cache miss (including
// an unreachable Redis) returns (nil, false, nil) — never an error the
// caller must treat as fatal.
func GetPathSet(ctx context.Context, key string) ([]planner.Path, bool, error) {
	c, err := GetClient()
	if err != nil {
		return nil, false, nil
	}

	data, err := c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, nil
	}

	var paths []planner.Path
	if err := json.Unmarshal(data, &paths); err != nil {
		return nil, false, fmt.Errorf("cache: unmarshal path set: %w", err)
	}
	return paths, true, nil
}

// SetPathSet stores a k-path candidate set under key with the given ttl
// (Config.TTL is not consulted).
// Errors are swallowed by the caller's convention: SetPathSet itself still
// returns them so callers can log at debug level if they choose.
func SetPathSet(ctx context.Context, key string, paths []planner.Path, ttl time.Duration) error {
	c, err := GetClient()
	if err != nil {
		return nil
	}

	data, err := json.Marshal(paths)
	if err != nil {
		return fmt.Errorf("cache: marshal path set: %w", err)
	}
	return c.Set(ctx, key, data, ttl).Err()
}

// EvaluatorCostKey derives the key for a memoized evaluator per-trip unit
// cost: one (origin, destination, departure time) trip against a given
// frequency fingerprint — departure time is part of the key because the
// evaluator's wait/truncation math (spec §4.5) depends on it, not just on
// the station pair.
func EvaluatorCostKey(origin, dest int, departure float64, freqFingerprint string) string {
	data := fmt.Sprintf("cost:%d:%d:%.6f:%s", origin, dest, departure, freqFingerprint)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("cost:%x", hash[:12])
}

// GetCost retrieves a memoized evaluator partial sum, ok=false on any miss.
func GetCost(ctx context.Context, key string) (cost float64, ok bool) {
	c, err := GetClient()
	if err != nil {
		return 0, false
	}
	v, err := c.Get(ctx, key).Float64()
	if err != nil {
		return 0, false
	}
	return v, true
}

// SetCost stores a memoized evaluator partial sum under key.
func SetCost(ctx context.Context, key string, cost float64, ttl time.Duration) {
	c, err := GetClient()
	if err != nil {
		return
	}
	c.Set(ctx, key, cost, ttl)
}

// HealthCheck reports whether the cache's Redis connection is reachable.
func HealthCheck(ctx context.Context) error {
	c, err := GetClient()
	if err != nil {
		return err
	}
	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache: ping failed: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
