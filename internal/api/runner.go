// Package api exposes the run-control HTTP surface: start a backtest, poll
// its status, fetch results and request a cooperative stop.
package api

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"aibacktest/types"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

var (
	ErrRunInProgress = errors.New("a backtest is already running")
	ErrNoActiveRun   = errors.New("no backtest is running")
)

// Status mirrors what the front-end polls.
type Status struct {
	IsRunning bool   `json:"is_running"`
	Progress  int    `json:"progress"`
	Message   string `json:"message"`
}

// RunParams are the validated parameters of one run request.
type RunParams struct {
	Instrument     string
	DisplayName    string
	Start          time.Time
	End            time.Time
	Frequency      types.Frequency
	InitialCapital decimal.Decimal
}

// RunFunc executes one complete backtest. Implementations must build all
// per-run state (ledger, caches) fresh on every call and honor context
// cancellation between decision dates.
type RunFunc func(ctx context.Context, params RunParams, progress func(int, string)) *types.Result

// Runner serializes runs: at most one backtest at a time, with status,
// result and cancellation tracked under one lock.
type Runner struct {
	run RunFunc
	log *slog.Logger

	mu     sync.Mutex
	status Status
	result *types.Result
	cancel context.CancelFunc
	runID  string
}

// NewRunner creates a Runner that executes runs through fn.
func NewRunner(fn RunFunc, log *slog.Logger) *Runner {
	return &Runner{run: fn, log: log}
}

// Start launches a run in the background and returns its ID. Fails when a
// run is already in flight.
func (r *Runner) Start(params RunParams) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status.IsRunning {
		return "", ErrRunInProgress
	}

	id := ulid.Make().String()
	ctx, cancel := context.WithCancel(context.Background())
	r.runID = id
	r.cancel = cancel
	r.result = nil
	r.status = Status{IsRunning: true, Progress: 0, Message: "initializing backtest"}

	go r.execute(ctx, id, params)
	return id, nil
}

func (r *Runner) execute(ctx context.Context, id string, params RunParams) {
	r.log.Info("run started", "run_id", id, "instrument", params.Instrument)

	result := r.run(ctx, params, r.progress)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.result = result
	r.cancel = nil
	message := "backtest complete"
	if result.Error != "" {
		message = "backtest failed: " + result.Error
	}
	r.status = Status{IsRunning: false, Progress: 100, Message: message}
	r.log.Info("run finished", "run_id", id, "error", result.Error)
}

func (r *Runner) progress(percent int, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.status.IsRunning {
		return
	}
	r.status.Progress = percent
	r.status.Message = message
}

// Status returns the current run status.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Result returns the most recent completed result, if any.
func (r *Runner) Result() (*types.Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result, r.result != nil
}

// RunID returns the identifier of the current or most recent run.
func (r *Runner) RunID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runID
}

// Stop cancels the in-flight run. The simulation loop observes the
// cancellation between decision dates and finishes with a partial result.
func (r *Runner) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.status.IsRunning || r.cancel == nil {
		return ErrNoActiveRun
	}
	r.cancel()
	r.status.Message = "stop requested, finishing current decision date"
	return nil
}
