package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"wrtrack/config"
	"wrtrack/internal/course"
	"wrtrack/internal/history"
	"wrtrack/internal/metrics"
	"wrtrack/internal/poller"
)

// newLogger creates a JSON logger for CLI use.
func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// runCmd starts the record poller.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the record poller",
	Long: `Start the wrtrack poller.

The poller will:
  - Load configuration and the tracked course list
  - Load the history file (creating it if absent)
  - Poll the records API every poll_interval and append changes

The poller runs until interrupted (Ctrl+C) or it receives SIGTERM. Startup
errors (bad config, invalid course ids, corrupt history) exit non-zero;
upstream outages are retried and never crash the process.

Example:
  wrtrack run -c config.yaml
  wrtrack run --config /etc/wrtrack/config.yaml`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// fail fast: a malformed course list must never reach the network layer
	rawCourses, err := config.LoadCourses(cfg.CoursesFile)
	if err != nil {
		return fmt.Errorf("failed to load course list: %w", err)
	}
	courses, err := course.NormalizeAll(rawCourses)
	if err != nil {
		return fmt.Errorf("invalid course list: %w", err)
	}

	store := history.NewStore(cfg.HistoryFile)
	hist, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	var m *metrics.Metrics
	if cfg.MetricsAddr != "" {
		m = metrics.New()
		go serveMetrics(cfg.MetricsAddr, logger)
	}

	logger.Info("starting poller",
		"courses", len(courses),
		"poll_interval", cfg.PollInterval.Duration().String(),
		"history_file", store.Path(),
	)

	client := poller.NewClient(poller.ClientOptions{
		Endpoint:       cfg.Endpoint,
		MaxAttempts:    cfg.RetryAttempts,
		RetryWait:      cfg.RetryWait.Duration(),
		RequestTimeout: cfg.RequestTimeout.Duration(),
	}, logger, m)

	sched := poller.NewScheduler(client, store, courses, hist, cfg.PollInterval.Duration(), logger, m)

	// cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched.Start(ctx)
	<-ctx.Done()

	// Stop waits for an in-flight cycle to finish its persist
	sched.Stop()
	logger.Info("shutdown complete")
	return nil
}

// serveMetrics exposes Prometheus exposition on addr. A metrics server
// failure must not take the poller down, so it only logs.
func serveMetrics(addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", "error", err)
	}
}
