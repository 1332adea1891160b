// Package main is the entrypoint for the rain-alert utility.
//
// rain-alert is a single-shot, schedule-invoked binary: it checks the
// OpenWeatherMap hourly forecast for a fixed point and sends one Pushover
// notification per run, either a rain alert or a no-rain status, with the
// matching weather icon attached when available.
//
// Usage:
//
//	rain-alert --lat 51.5074 --lon -0.1278
//	rain-alert --lat 51.5074 --lon -0.1278 --icon-cache-dir /var/cache/weather-icons --debug
//	rain-alert --lat 51.5074 --lon -0.1278 --dry-run
//
// Credentials (OPENWEATHERMAP_API_KEY, PUSHOVER_API_KEY, PUSHOVER_USER_KEY)
// are read from the environment or a .env file; a missing credential exits
// with status 1 before any network call.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"rainalert/internal/alert"
	"rainalert/internal/config"
	"rainalert/internal/forecast"
	"rainalert/internal/icons"
	"rainalert/internal/notify"
	"rainalert/internal/types"
)

func main() {
	os.Exit(run())
}

// run contains the real main logic so deferred cleanups execute before the
// process exits with a status code.
func run() int {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		return 1
	}

	runID := uuid.New().String()
	newLogger := func(level slog.Level) *slog.Logger {
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})).With("run_id", runID)
	}

	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	logger := newLogger(level)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration error", "error", err)
		return 1
	}

	// LOG_LEVEL=debug enables debug logging without the flag.
	if !opts.Debug && cfg.LogLevel == "debug" {
		logger = newLogger(slog.LevelDebug)
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	forecastClient := forecast.NewClient(
		cfg.Forecast.BaseURL,
		cfg.Forecast.APIKey,
		httpClient,
		logger.With("component", "forecast"),
	)

	iconCache, err := icons.NewCache(
		opts.IconCacheDir,
		cfg.Forecast.IconBaseURL,
		httpClient,
		logger.With("component", "icons"),
	)
	if err != nil {
		logger.Error("failed to initialize icon cache", "error", err)
		return 1
	}

	pushover := notify.NewPushover(
		cfg.Pushover.BaseURL,
		cfg.Pushover.APIKey,
		cfg.Pushover.UserKey,
		httpClient,
		logger.With("component", "notify"),
	)

	runner := alert.NewRunner(forecastClient, iconCache, pushover, types.RealClock{}, logger, *opts)

	if err := runner.Run(context.Background()); err != nil {
		logger.Error("run failed", "error", err)
		return 1
	}

	return 0
}

// parseFlags parses command-line options, writing parse errors and usage to
// errOut. Latitude and longitude are required; their ranges are
// intentionally not validated.
func parseFlags(args []string, errOut io.Writer) (*config.Options, error) {
	fs := flag.NewFlagSet("rain-alert", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var opts config.Options
	fs.Float64Var(&opts.Lat, "lat", 0, "Latitude (required)")
	fs.Float64Var(&opts.Lon, "lon", 0, "Longitude (required)")
	fs.StringVar(&opts.IconCacheDir, "icon-cache-dir", defaultIconCacheDir(), "Icon cache directory")
	fs.BoolVar(&opts.Debug, "debug", false, "Debug logging")
	fs.BoolVar(&opts.DryRun, "dry-run", false, "Log the decision without downloading the icon or sending the notification")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { seen[f.Name] = true })
	for _, name := range []string{"lat", "lon"} {
		if !seen[name] {
			fmt.Fprintf(errOut, "missing required flag: --%s\n", name)
			fs.Usage()
			return nil, fmt.Errorf("missing required flag: --%s", name)
		}
	}

	return &opts, nil
}

// defaultIconCacheDir returns ~/.cache/weather-icons, falling back to a
// relative directory when the home directory cannot be determined.
func defaultIconCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".weather-icons"
	}
	return filepath.Join(home, ".cache", "weather-icons")
}
