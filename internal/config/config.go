// Package config resolves runtime settings from compiled-in defaults, an
// optional .env file, and process environment variables, in that order of
// increasing precedence.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every runtime setting the service needs.
type Config struct {
	ListenAddress string

	// ShardHint is the one optional knob the external interface permits a
	// host to surface. It has no effect on the lock-free customer store; it
	// exists for interface parity with a sharded-mutex realization and is
	// logged at startup only.
	ShardHint int

	RebuildDebounce time.Duration
	RebuildCeiling  time.Duration

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	LogLevel string
}

// Load reads a .env file if present (missing files are not an error, same
// as godotenv.Load's own behavior) and then layers environment variables on
// top of compiled-in defaults.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		ListenAddress:   envStr("LISTEN_ADDRESS", ":8080"),
		ShardHint:       envInt("SHARD_HINT", 0),
		RebuildDebounce: envDuration("REBUILD_DEBOUNCE_MS", 100*time.Millisecond),
		RebuildCeiling:  envDuration("REBUILD_CEILING_MS", 500*time.Millisecond),
		ReadTimeout:     envDuration("READ_TIMEOUT_MS", 5*time.Second),
		WriteTimeout:    envDuration("WRITE_TIMEOUT_MS", 5*time.Second),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT_MS", 10*time.Second),
		LogLevel:        envStr("LOG_LEVEL", "info"),
	}
}

func envStr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// envDuration reads an environment variable expressed in milliseconds. The
// default is passed as a time.Duration for readability at the call site.
func envDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Millisecond
		}
	}
	return def
}
