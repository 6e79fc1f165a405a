// Package main is the entry point for the synthlog fixture generator.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/veldtlabs/synthlog/internal/config"
	"github.com/veldtlabs/synthlog/internal/export"
	"github.com/veldtlabs/synthlog/internal/gen"
	"github.com/veldtlabs/synthlog/internal/logging"
	"github.com/veldtlabs/synthlog/internal/tracing"
	"github.com/veldtlabs/synthlog/internal/upload"
)

func main() {
	help := flag.Bool("help", false, "display help message")
	configPath := flag.String("config", "", "path to optional YAML config file")
	flag.Parse()

	if *help {
		fmt.Println("Synthlog Compliance Fixture Generator")
		fmt.Println()
		fmt.Println("Generates synthetic asset metadata and access-log CSV fixtures")
		fmt.Println("with injected anomalies and rule-based violation labels.")
		fmt.Println()
		fmt.Println("Usage: synthlog [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, errs := config.Load(*configPath)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, "config error:", err)
		}
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Env)
	slog.SetDefault(logger)
	logger.Debug("configuration loaded", "config", cfg.LogSummary())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("generation failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Tracing is a no-op unless enabled in config.
	provider, err := tracing.NewProvider(tracing.Config{
		ServiceName:  "synthlog",
		Enabled:      cfg.TracingEnabled,
		Environment:  cfg.Env,
		ExporterType: cfg.TracingExporter,
		OTLPEndpoint: cfg.TracingEndpoint,
		InsecureMode: cfg.TracingInsecure,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Error("tracing shutdown failed", "error", err)
		}
	}()

	registry := prometheus.NewRegistry()
	metrics := gen.NewMetrics()
	if err := metrics.Register(registry); err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	// Expose a scrape endpoint for the duration of the run when configured.
	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		metricsServer = &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			logger.Info("serving metrics", "addr", cfg.MetricsAddr)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("metrics server shutdown failed", "error", err)
			}
		}()
	}

	windowStart, err := cfg.Window()
	if err != nil {
		return fmt.Errorf("invalid window start: %w", err)
	}

	pipeline := gen.NewPipeline(gen.Params{
		AssetCount:   cfg.AssetCount,
		EventCount:   cfg.EventCount,
		UserCount:    cfg.UserCount,
		AnomalyCount: cfg.AnomalyCount,
		Seed:         cfg.Seed,
		WindowStart:  windowStart,
		WindowDays:   cfg.WindowDays,
	}, logger, metrics)

	result, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}

	writer, err := export.NewWriter(cfg.OutputDir)
	if err != nil {
		return err
	}

	assetPath, assetBytes, err := writer.WriteAssets(result.Assets)
	if err != nil {
		return err
	}
	logger.Info("wrote asset metadata",
		"path", assetPath, "rows", len(result.Assets), "bytes", assetBytes)

	eventsPath, eventBytes, err := writer.WriteEvents(result.Events)
	if err != nil {
		return err
	}
	logger.Info("wrote access logs",
		"path", eventsPath, "rows", len(result.Events), "bytes", eventBytes)

	manifest := export.Manifest{
		RunID:         result.RunID,
		GeneratedAt:   time.Now().UTC(),
		Seed:          cfg.Seed,
		AssetCount:    len(result.Assets),
		EventCount:    len(result.Events),
		AnomalyCount:  cfg.AnomalyCount,
		PHIAssets:     result.Stats.PHIAssets,
		PlainAssets:   result.Stats.PlainAssets,
		Violations:    result.Stats.Violations,
		ViolationRate: result.Stats.ViolationRate(len(result.Events)),
		Injected: map[string]int{
			gen.AnomalyPlainPHI: result.Stats.Injection.PlainPHI,
			gen.AnomalyOffHours: result.Stats.Injection.OffHours,
			gen.AnomalyNonUS:    result.Stats.Injection.NonUS,
		},
		Files: map[string]export.FileStat{
			"metadata":    {Path: assetPath, Rows: len(result.Assets), SizeBytes: assetBytes},
			"access_logs": {Path: eventsPath, Rows: len(result.Events), SizeBytes: eventBytes},
		},
	}
	manifestPath, _, err := writer.WriteManifest(manifest)
	if err != nil {
		return err
	}
	logger.Info("wrote manifest", "path", manifestPath)

	if cfg.UploadEnabled() {
		svc, err := upload.NewService(upload.ServiceConfig{
			BucketName:      cfg.S3Bucket,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Endpoint:        cfg.S3Endpoint,
			KeyPrefix:       cfg.S3KeyPrefix,
		})
		if err != nil {
			return fmt.Errorf("failed to create upload service: %w", err)
		}
		for _, path := range []string{assetPath, eventsPath, manifestPath} {
			key, err := svc.UploadFile(ctx, result.RunID, path)
			if err != nil {
				return err
			}
			logger.Info("uploaded dataset file", "key", key, "bucket", cfg.S3Bucket)
		}
	}

	logger.Info("generation complete",
		"run_id", result.RunID,
		"violations", result.Stats.Violations,
		"violation_rate", fmt.Sprintf("%.2f%%", result.Stats.ViolationRate(len(result.Events))*100),
	)
	return nil
}
