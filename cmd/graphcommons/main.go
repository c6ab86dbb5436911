// Command graphcommons reads and mutates graphs on the Graph Commons API.
//
// Required environment variables (or api.key in the config file):
//
//	GRAPHCOMMONS_API_KEY      - API key sent in the Authentication header
//
// Optional environment variables:
//
//	GRAPHCOMMONS_CONFIG       - Path to a TOML config file (same as --config)
//	GRAPHCOMMONS_URL          - API root (default: https://graphcommons.com/api/v1)
//	GRAPHCOMMONS_LOG_LEVEL    - Log level: debug, info, warn, error (default: info)
//	GRAPHCOMMONS_TIMEOUT      - Per-request timeout (default: 30s)
//	GRAPHCOMMONS_MAX_RETRIES  - Retries for failed GET requests (default: 2)
//	GRAPHCOMMONS_METRICS_ADDR - Serve Prometheus metrics on this address
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

// Version is set via ldflags at build time.
var Version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "graphcommons: %v\n", err)
		os.Exit(1)
	}
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
