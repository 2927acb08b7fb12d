package main

import (
	"flag"
	"fmt"
	"os"
)

// CLIConfig holds command-line configuration.
type CLIConfig struct {
	ConfigPath  string
	LogLevel    string
	LogFormat   string
	ShowVersion bool
	ShowHelp    bool
	Validate    bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("SEMQUERY_CONFIG", ""),
		"Path to configuration file, JSON or YAML (env: SEMQUERY_CONFIG)")
	flag.StringVar(&cfg.ConfigPath, "c",
		getEnv("SEMQUERY_CONFIG", ""),
		"Path to configuration file, JSON or YAML (env: SEMQUERY_CONFIG)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("SEMQUERY_LOG_LEVEL", ""),
		"Log level: debug, info, warn, error (env: SEMQUERY_LOG_LEVEL)")
	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("SEMQUERY_LOG_FORMAT", ""),
		"Log format: json, text (env: SEMQUERY_LOG_FORMAT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")
	flag.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")

	flag.Usage = printHelp
	flag.Parse()

	return cfg
}

func printHelp() {
	fmt.Fprintf(os.Stderr, `%s - semantic classification and query translation service

Usage:
  %s [flags]

Flags:
`, appName, appName)
	flag.PrintDefaults()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
