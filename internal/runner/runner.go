// Package runner orchestrates export cycles: capture -> render -> resolve
// filename -> deliver, on a fixed schedule. A failed cycle is logged and
// swallowed; the next interval proceeds regardless.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/uuid/v5"

	"sqlcourier/internal/delivery"
	"sqlcourier/internal/filename"
	"sqlcourier/internal/format"
	"sqlcourier/models"
)

// Fetcher captures the result set of one query execution.
type Fetcher interface {
	Fetch(ctx context.Context, query string) (*models.ResultSet, error)
}

// Opt represents the runner's immutable per-process options.
type Opt struct {
	Query           string
	IncludeHeader   bool
	FilenamePattern string
	Interval        time.Duration
}

// Runner runs export cycles. Cycles never overlap: the schedule loop
// blocks on the running cycle before waiting out the next interval.
type Runner struct {
	opt Opt

	src    Fetcher
	ren    format.Renderer
	target delivery.Target

	lo *slog.Logger
}

// New returns a new Runner.
func New(opt Opt, src Fetcher, ren format.Renderer, target delivery.Target, lo *slog.Logger) *Runner {
	return &Runner{
		opt:    opt,
		src:    src,
		ren:    ren,
		target: target,
		lo:     lo,
	}
}

// Start is a blocking function that runs one cycle immediately and then
// waits out the full interval after each cycle before running the next,
// until ctx is cancelled. A long cycle delays the next trigger by its own
// duration; missed intervals are not compensated. Cycle failures are
// reported and swallowed so the schedule stays armed.
func (r *Runner) Start(ctx context.Context) error {
	for {
		if err := r.RunCycle(ctx); err != nil {
			r.lo.Error("export cycle failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.opt.Interval):
		}
	}
}

// RunCycle executes one full export cycle, short-circuiting on the first
// failing stage. The returned error identifies the stage and cause.
func (r *Runner) RunCycle(ctx context.Context) error {
	var (
		start = time.Now()
		lo    = r.lo.With("cycle", cycleID())
	)

	lo.Info("starting export cycle")

	res, err := r.src.Fetch(ctx, r.opt.Query)
	if err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	lo.Info("captured query results", "rows", len(res.Rows), "columns", len(res.Columns))

	art, err := r.ren.Render(res, r.opt.IncludeHeader)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	name, err := filename.Resolve(r.opt.FilenamePattern, time.Now(), r.ren.Ext())
	if err != nil {
		return fmt.Errorf("resolve filename: %w", err)
	}

	if err := r.target.Deliver(ctx, name, art.Bytes); err != nil {
		return fmt.Errorf("deliver: %w", err)
	}

	lo.Info("export cycle complete", "file", name, "format", art.Format, "bytes", len(art.Bytes), "took", time.Since(start))

	return nil
}

// cycleID generates a unique ID to correlate one cycle's log lines.
func cycleID() string {
	uid, err := uuid.NewV4()
	if err != nil {
		return "cycle_unknown"
	}

	return fmt.Sprintf("cycle_%s", uid)
}
