// Package source executes the configured SQL query against the source
// database and captures the full result set in memory. A connection is
// opened and closed per invocation; no pool outlives a cycle.
package source

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"sqlcourier/models"
)

// Config is the source DB's config for connecting.
type Config struct {
	Type           string        `koanf:"type"`
	DSN            string        `koanf:"dsn"`
	MaxIdleConns   int           `koanf:"max_idle"`
	MaxActiveConns int           `koanf:"max_active"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

// CaptureError wraps any connection or query execution failure. It is fatal
// to the current cycle only, never to the process.
type CaptureError struct {
	Err error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("error capturing results: %v", e.Err)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}

// Source fetches query results from a single configured database.
type Source struct {
	cfg Config
	lo  *slog.Logger
}

// New returns a new Source for the given DB config.
func New(cfg Config, lo *slog.Logger) (*Source, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("db.type is empty")
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is empty")
	}

	return &Source{cfg: cfg, lo: lo}, nil
}

// Fetch runs the given query verbatim and returns the captured result set.
// It opens a fresh connection, reads every row into memory, and closes the
// connection before returning.
func (s *Source) Fetch(ctx context.Context, query string) (*models.ResultSet, error) {
	db, err := s.connect(ctx)
	if err != nil {
		return nil, &CaptureError{Err: err}
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, &CaptureError{Err: fmt.Errorf("query execution failed: %w", err)}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &CaptureError{Err: err}
	}

	res := &models.ResultSet{Columns: cols}

	// Gymnastics to read arbitrary types from the rows.
	numCols := len(cols)
	for rows.Next() {
		var (
			resCols     = make([]any, numCols)
			resPointers = make([]any, numCols)
		)
		for i := 0; i < numCols; i++ {
			resPointers[i] = &resCols[i]
		}

		if err := rows.Scan(resPointers...); err != nil {
			return nil, &CaptureError{Err: err}
		}

		res.Rows = append(res.Rows, resCols)
	}
	if err := rows.Err(); err != nil {
		return nil, &CaptureError{Err: err}
	}

	s.lo.Debug("fetched rows from source db", "rows", len(res.Rows), "columns", numCols)

	return res, nil
}

// connect creates a database connection and pings it to check for
// connection issues. connect_timeout bounds the ping.
func (s *Source) connect(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open(s.cfg.Type, s.cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("error connecting to db: %w", err)
	}

	db.SetMaxIdleConns(s.cfg.MaxIdleConns)
	db.SetMaxOpenConns(s.cfg.MaxActiveConns)

	if s.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ConnectTimeout)
		defer cancel()
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error pinging db: %w", err)
	}

	return db, nil
}
