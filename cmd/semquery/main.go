// Package main implements the entry point for the SemQuery service: semantic
// category classification over a stored corpus plus natural-language query
// translation against the same store.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/c360/semquery/classifier"
	"github.com/c360/semquery/compiler"
	"github.com/c360/semquery/config"
	"github.com/c360/semquery/extractor"
	"github.com/c360/semquery/gateway"
	"github.com/c360/semquery/llm"
	"github.com/c360/semquery/metric"
	"github.com/c360/semquery/oracle"
	"github.com/c360/semquery/service"
	"github.com/c360/semquery/store"
)

// Build information constants
const (
	Version = "0.1.0"
	appName = "semquery"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}
	if cliCfg.ShowHelp {
		printHelp()
		return nil
	}

	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cliCfg.LogLevel != "" {
		cfg.Logging.Level = cliCfg.LogLevel
	}
	if cliCfg.LogFormat != "" {
		cfg.Logging.Format = cliCfg.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cliCfg.Validate {
		slog.Info("Configuration is valid")
		return nil
	}

	logger := setupLogger(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	logger.Info("Starting SemQuery",
		"version", Version,
		"config_path", cliCfg.ConfigPath,
		"addr", cfg.Addr())

	registry := metric.NewMetricsRegistry()
	metrics := registry.CoreMetrics()

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	embedder, err := oracle.NewHTTPEmbedder(oracle.HTTPConfig{
		BaseURL: cfg.Oracle.BaseURL,
		Model:   cfg.Oracle.Model,
		APIKey:  cfg.Oracle.APIKey,
		Timeout: cfg.Oracle.Timeout,
		Cache:   oracle.NewMemoryCache(cfg.Oracle.CacheSize),
		Metrics: metrics,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("create embedder: %w", err)
	}

	completer, err := llm.NewHTTPCompleter(llm.HTTPConfig{
		BaseURL: cfg.Completion.BaseURL,
		Model:   cfg.Completion.Model,
		APIKey:  cfg.Completion.APIKey,
		Timeout: cfg.Completion.Timeout,
	})
	if err != nil {
		return fmt.Errorf("create completer: %w", err)
	}

	o := oracle.NewCosineOracle(embedder)
	svc := service.New(service.Deps{
		Config:    config.NewSafeConfig(cfg),
		Store:     st,
		Oracle:    o,
		Extractor: extractor.NewSlotExtractor(completer),
		Classifier: classifier.New(o,
			classifier.WithWorkers(cfg.Classifier.Workers),
			classifier.WithLogger(logger),
			classifier.WithMetrics(metrics)),
		Compiler: compiler.New(completer,
			compiler.WithLogger(logger),
			compiler.WithMetrics(metrics)),
		Metrics: metrics,
		Logger:  logger,
	})

	gw := gateway.New(svc,
		gateway.WithLogger(logger),
		gateway.WithMetrics(metrics, registry.Handler()))

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      gw.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-sigCh:
		logger.Info("Shutdown signal received", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Shutdown complete")
	return nil
}
