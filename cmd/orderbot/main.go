package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/fauzi-lee/se-take-home-assignment/internal/api"
	"github.com/fauzi-lee/se-take-home-assignment/internal/clock"
	"github.com/fauzi-lee/se-take-home-assignment/internal/config"
	"github.com/fauzi-lee/se-take-home-assignment/internal/engine"
	"github.com/fauzi-lee/se-take-home-assignment/internal/store"
	"github.com/fauzi-lee/se-take-home-assignment/internal/tracing"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg := config.Load()
	logger := config.NewLogger(os.Stdout, cfg.LogLevel)

	logger.Info("orderbot: starting",
		"version", version,
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"process_duration", cfg.ProcessDuration.String(),
		"tick_interval", cfg.TickInterval.String(),
		"initial_units", cfg.InitialUnits,
	)

	shutdownTracing, err := tracing.Init(version, cfg.TraceFile)
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Error("shutdown tracing", "error", err)
		}
	}()

	db, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	eng := engine.NewEngine(engine.Settings{
		Duration:     cfg.ProcessDuration,
		Tick:         cfg.TickInterval,
		InitialUnits: cfg.InitialUnits,
	}, clock.NewWall(), db, logger)
	defer eng.Close()

	srv := api.NewServer(cfg.ListenAddr, eng, db, logger)

	if err := srv.Run(context.Background()); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
