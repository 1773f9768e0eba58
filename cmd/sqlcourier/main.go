package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	// Clickhouse, MySQL, Postgres and SQLite drivers.
	_ "github.com/ClickHouse/clickhouse-go"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

var (
	buildString = "unknown"

	// Initially, set the logger as default
	log *slog.Logger = slog.Default()
	ko               = koanf.New(".")
)

func main() {
	initFlags(ko)

	if ko.Bool("version") {
		fmt.Println(buildString)
		os.Exit(0)
	}

	initConfig(ko)

	// Load environment variables and merge into the loaded config.
	if err := ko.Load(env.Provider("SQLCOURIER_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "SQLCOURIER_")), "__", ".", -1)
	}), nil); err != nil {
		log.Error("error loading config from env", "error", err)
		os.Exit(1)
	}

	// Build and validate the whole export pipeline. Any configuration
	// problem is fatal before the first cycle runs.
	r, err := initExporter(ko)
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Run a single cycle and exit.
	if ko.Bool("run-once") {
		if err := r.RunCycle(ctx); err != nil {
			log.Error("export cycle failed", "error", err)
			os.Exit(1)
		}
		return
	}

	log.Info("starting scheduler", "interval_minutes", ko.Int("schedule.interval_minutes"))
	if err := r.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("scheduler stopped", "error", err)
		os.Exit(1)
	}

	log.Info("shutting down")
}
