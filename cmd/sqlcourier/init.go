package main

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/knadh/goyesql/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	flag "github.com/spf13/pflag"

	"sqlcourier/internal/delivery"
	"sqlcourier/internal/format"
	"sqlcourier/internal/runner"
	"sqlcourier/internal/source"
)

var (
	//go:embed config.sample.toml
	efs embed.FS
)

func initFlags(ko *koanf.Koanf) {
	// Command line flags.
	f := flag.NewFlagSet("config", flag.ContinueOnError)
	f.Usage = func() {
		log.Info("sqlcourier")
		log.Info(f.FlagUsages())
		os.Exit(0)
	}

	f.Bool("new-config", false, "generate a new sample config.toml file.")
	f.String("config", "config.toml", "path to the TOML configuration file")
	f.Bool("run-once", false, "run a single export cycle and exit")
	f.Bool("version", false, "show current version and build")
	f.Parse(os.Args[1:])

	// Load commandline params.
	ko.Load(posflag.Provider(f, ".", ko), nil)
}

func initConfig(ko *koanf.Koanf) {
	log.Info("buildstring", "value", buildString)

	// Generate new config file.
	if ok := ko.Bool("new-config"); ok {
		if err := generateConfig(); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Println("config.toml generated. Edit and run.")
		os.Exit(0)
	}

	// Load the config file.
	if err := ko.Load(file.Provider(ko.String("config")), toml.Parser()); err != nil {
		slog.Error("error reading config", "error", err)
		os.Exit(1)
	}

	var (
		level = ko.MustString("app.log_level")
		opts  = &slog.HandlerOptions{}
	)
	switch level {
	case "DEBUG":
		opts.Level = slog.LevelDebug
	case "INFO":
		opts.Level = slog.LevelInfo
	case "ERROR":
		opts.Level = slog.LevelError
	default:
		log.Error("incorrect log level in app")
		os.Exit(1)
	}

	// Override the logger according to level
	log = slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func generateConfig() error {
	if _, err := os.Stat("config.toml"); !os.IsNotExist(err) {
		return errors.New("config.toml exists. Remove it to generate a new one")
	}

	// Generate config file.
	b, err := efs.ReadFile("config.sample.toml")
	if err != nil {
		return fmt.Errorf("error reading sample config: %v", err)
	}

	if err := os.WriteFile("config.toml", b, 0644); err != nil {
		return err
	}

	return nil
}

// initExporter builds the full export pipeline out of the loaded config:
// source, renderer, delivery target and the scheduling runner.
func initExporter(ko *koanf.Koanf) (*runner.Runner, error) {
	// Source DB config.
	var dbCfg source.Config
	if err := ko.Unmarshal("db", &dbCfg); err != nil {
		return nil, fmt.Errorf("error reading source DB config: %w", err)
	}

	src, err := source.New(dbCfg, log)
	if err != nil {
		return nil, err
	}

	query, err := loadQuery(ko)
	if err != nil {
		return nil, err
	}

	// Renderer for the configured output format.
	ren, err := format.New(ko.MustString("export.format"))
	if err != nil {
		return nil, err
	}

	pattern := ko.String("export.filename")
	if pattern == "" {
		pattern = "query_result_{timestamp:%Y%m%d_%H%M%S}.{ext}"
	}

	interval := ko.Int("schedule.interval_minutes")
	if interval < 1 {
		return nil, fmt.Errorf("schedule.interval_minutes must be >= 1, got %d", interval)
	}

	target, err := initTarget(ko)
	if err != nil {
		return nil, err
	}

	return runner.New(runner.Opt{
		Query:           query,
		IncludeHeader:   ko.Bool("export.include_header"),
		FilenamePattern: pattern,
		Interval:        time.Duration(interval) * time.Minute,
	}, src, ren, target, log), nil
}

// loadQuery returns the SQL to execute each cycle: either the inline
// export.query, or a named query from a goyesql .sql file.
func loadQuery(ko *koanf.Koanf) (string, error) {
	if q := ko.String("export.query"); q != "" {
		return q, nil
	}

	path := ko.String("export.query_file")
	if path == "" {
		return "", errors.New("one of export.query or export.query_file is required")
	}

	queries, err := goyesql.ParseFile(path)
	if err != nil {
		return "", fmt.Errorf("error parsing SQL file %s: %w", path, err)
	}

	name := ko.String("export.query_name")
	if name == "" {
		// A file with exactly one query doesn't need a name.
		if len(queries) != 1 {
			return "", fmt.Errorf("%s has %d queries. Set export.query_name", path, len(queries))
		}
		for _, q := range queries {
			return q.Query, nil
		}
	}

	q, ok := queries[name]
	if !ok {
		return "", fmt.Errorf("query '%s' not found in %s", name, path)
	}

	return q.Query, nil
}

// initTarget builds the delivery target for the configured method.
func initTarget(ko *koanf.Koanf) (delivery.Target, error) {
	switch method := ko.MustString("delivery.method"); method {
	case delivery.MethodLocal:
		return delivery.NewLocal(ko.String("delivery.local.path"), log)
	case delivery.MethodSFTP:
		var cfg delivery.SFTPConfig
		if err := ko.Unmarshal("delivery.sftp", &cfg); err != nil {
			return nil, fmt.Errorf("error reading sftp config: %w", err)
		}

		return delivery.NewSFTP(cfg, log)
	default:
		return nil, fmt.Errorf("unknown delivery.method '%s'. Use '%s' or '%s'", method, delivery.MethodLocal, delivery.MethodSFTP)
	}
}
