// Package query runs queries against the prediction API off the caller's
// goroutine and hands each outcome back on the caller's Loop.
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/neugierig/proximo/internal/logging"
	"github.com/neugierig/proximo/internal/models"
)

// Backend is the set of API operations a query may call. *proximo.Client
// implements it.
type Backend interface {
	ListRoutes(ctx context.Context) ([]models.Route, error)
	ListRuns(ctx context.Context, routeID string) ([]models.Run, error)
	ListStops(ctx context.Context, routeID, runID string) ([]models.Stop, error)
	ListPredictions(ctx context.Context, stopID string) ([]models.Prediction, error)
	ListPredictionsForRoute(ctx context.Context, stopID, routeID string) ([]models.Prediction, error)
	GetRoute(ctx context.Context, routeID string) (models.Route, error)
	GetRun(ctx context.Context, routeID, runID string) (models.Run, error)
}

// Query is one unit of work against the backend producing a single value.
type Query[T any] func(ctx context.Context, b Backend) (T, error)

// Callback receives the outcome of a query. Exactly one method is called,
// exactly once, on the Loop the query was started with.
type Callback[T any] interface {
	OnResult(value T)
	OnError(err error)
}

// Callbacks adapts a pair of functions to Callback. A nil function ignores
// that outcome.
type Callbacks[T any] struct {
	Result func(value T)
	Error  func(err error)
}

func (c Callbacks[T]) OnResult(value T) {
	if c.Result != nil {
		c.Result(value)
	}
}

func (c Callbacks[T]) OnError(err error) {
	if c.Error != nil {
		c.Error(err)
	}
}

// ErrRunnerClosed is delivered to queries started after Close.
var ErrRunnerClosed = errors.New("query runner closed")

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	Logger *slog.Logger
	// QueryTimeout bounds each query. Zero means no deadline beyond the
	// backend's own.
	QueryTimeout time.Duration
}

// Runner starts one goroutine per query. It keeps no state beyond the count
// of queries in flight.
type Runner struct {
	backend      Backend
	logger       *slog.Logger
	queryTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	wg       sync.WaitGroup
	inFlight atomic.Int64
}

func NewRunner(backend Backend, opts RunnerOptions) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		backend:      backend,
		logger:       logging.Component(opts.Logger, "query_runner"),
		queryTimeout: opts.QueryTimeout,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start runs q in the background and delivers its outcome to cb on loop.
// It returns immediately. loop must not be nil.
func Start[T any](r *Runner, loop *Loop, q Query[T], cb Callback[T]) {
	StartContext(context.Background(), r, loop, q, cb)
}

// StartContext is Start with a caller context whose cancellation also
// cancels the query.
func StartContext[T any](ctx context.Context, r *Runner, loop *Loop, q Query[T], cb Callback[T]) {
	if r.ctx.Err() != nil {
		deliver(r, loop, cb, *new(T), ErrRunnerClosed)
		return
	}

	r.wg.Add(1)
	r.inFlight.Add(1)
	inFlightGauge.Inc()

	go func() {
		defer r.wg.Done()

		value, err := execute(ctx, r, q)

		r.inFlight.Add(-1)
		inFlightGauge.Dec()

		if err != nil {
			queriesTotal.WithLabelValues(outcomeFailure).Inc()
			logging.LogWarn(r.logger, "query failed", err)
		} else {
			queriesTotal.WithLabelValues(outcomeSuccess).Inc()
		}

		deliver(r, loop, cb, value, err)
	}()
}

func execute[T any](callerCtx context.Context, r *Runner, q Query[T]) (value T, err error) {
	ctx, cancel := context.WithCancel(r.ctx)
	defer cancel()
	stop := context.AfterFunc(callerCtx, cancel)
	defer stop()

	if r.queryTimeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, r.queryTimeout)
		defer cancelTimeout()
	}

	defer func() {
		if p := recover(); p != nil {
			var zero T
			value, err = zero, fmt.Errorf("query panicked: %v", p)
		}
	}()

	return q(ctx, r.backend)
}

func deliver[T any](r *Runner, loop *Loop, cb Callback[T], value T, err error) {
	accepted := loop.Post(func() {
		if err != nil {
			cb.OnError(err)
			return
		}
		cb.OnResult(value)
	})
	if !accepted {
		deliveriesDroppedTotal.Inc()
		r.logger.Debug("caller loop closed, dropping query result")
	}
}

// InFlight returns the number of queries that have not finished executing.
func (r *Runner) InFlight() int {
	return int(r.inFlight.Load())
}

// Wait blocks until every started query has finished and posted its outcome.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Close cancels every running query. Their outcomes are still delivered.
func (r *Runner) Close() {
	r.cancel()
}
