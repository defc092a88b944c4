// Package main is the entry point for the queregalo server.
//
// main stays minimal: read configuration from the environment, build the
// logger, hand everything to internal/server. All actual behaviour lives in
// the internal packages.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/queregalo/queregalo/internal/server"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// newLogger builds the process logger. LOG_FORMAT=json selects machine-
// readable output for production; the default is tint's colored handler,
// which is much friendlier during development. LOG_LEVEL picks the floor.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}

	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}

func main() {
	logger := newLogger()
	slog.SetDefault(logger)

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	dbPath := getEnv("DB_PATH", "data/queregalo.db")

	// Ensure the data directory exists before sqlite tries to create the file.
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", dbDir),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// STATIC_DIR is optional — without it the server is API-only, which is
	// how the tests and a split frontend deployment run it.
	staticDir := os.Getenv("STATIC_DIR")
	if staticDir != "" {
		abs, err := filepath.Abs(staticDir)
		if err != nil {
			logger.Error("failed to resolve static dir",
				slog.String("dir", staticDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
		staticDir = abs
	}

	srv, err := server.New(server.Config{
		Port:      port,
		DBPath:    dbPath,
		StaticDir: staticDir,
	}, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
