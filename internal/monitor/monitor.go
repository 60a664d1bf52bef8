// Package monitor keeps a long-lived subscription to the predictions of one
// stop, polling the API in the background and handing each update to a
// listener on the subscriber's loop.
package monitor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/neugierig/proximo/internal/logging"
	"github.com/neugierig/proximo/internal/models"
	"github.com/neugierig/proximo/internal/query"
)

// Listener receives every successful poll, on the monitor's loop.
type Listener func(predictions []models.Prediction)

type Monitor struct {
	backend  query.Backend
	loop     *query.Loop
	listener Listener
	config   Config
	logger   *slog.Logger

	latestMutex sync.RWMutex
	latest      []byte
	updatedAt   time.Time

	shutdownChan chan struct{}
	wg           sync.WaitGroup
	startOnce    sync.Once
	shutdownOnce sync.Once
}

func New(backend query.Backend, loop *query.Loop, config Config, listener Listener, logger *slog.Logger) (*Monitor, error) {
	if !config.Enabled() {
		return nil, errors.New("monitor requires a stop id")
	}
	return &Monitor{
		backend:  backend,
		loop:     loop,
		listener: listener,
		config:   config.withDefaults(),
		logger: logging.Component(logger, "prediction_monitor").With(
			slog.String("stop_id", config.StopID),
			slog.String("route_id", config.RouteID),
		),
		shutdownChan: make(chan struct{}),
	}, nil
}

// Start begins polling. The first poll happens immediately.
func (m *Monitor) Start() {
	m.startOnce.Do(func() {
		m.wg.Add(1)
		go m.pollPeriodically()
	})
}

// Shutdown stops polling and waits for the polling goroutine to exit.
func (m *Monitor) Shutdown() {
	m.shutdownOnce.Do(func() {
		close(m.shutdownChan)
		m.wg.Wait()
	})
}

// Latest returns the predictions from the most recent successful poll and
// when it happened. The zero time means no poll has succeeded yet.
func (m *Monitor) Latest() ([]models.Prediction, time.Time) {
	m.latestMutex.RLock()
	encoded, updatedAt := m.latest, m.updatedAt
	m.latestMutex.RUnlock()

	if updatedAt.IsZero() {
		return nil, updatedAt
	}
	predictions, err := models.DecodePredictions(encoded)
	if err != nil {
		logging.LogError(m.logger, "decoding stored predictions", err)
		return nil, time.Time{}
	}
	return predictions, updatedAt
}

func (m *Monitor) pollPeriodically() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	m.poll()
	for {
		select {
		case <-ticker.C:
			m.poll()
		case <-m.shutdownChan:
			logging.LogOperation(m.logger, "shutting_down_prediction_monitor")
			return
		}
	}
}

func (m *Monitor) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), m.config.FetchTimeout)
	defer cancel()

	// Shutdown aborts an in-progress fetch.
	go func() {
		select {
		case <-m.shutdownChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	start := time.Now()
	predictions, err := query.Predictions(m.config.StopID, m.config.RouteID)(ctx, m.backend)
	if err != nil {
		pollsTotal.WithLabelValues(outcomeFailure).Inc()
		logging.LogWarn(m.logger, "polling predictions failed", err)
		return
	}
	pollsTotal.WithLabelValues(outcomeSuccess).Inc()
	logging.LogOperation(m.logger, "polled_predictions",
		slog.Int("count", len(predictions)),
		slog.Duration("duration", time.Since(start)))

	encoded := models.EncodePredictions(predictions)

	m.latestMutex.Lock()
	m.latest = encoded
	m.updatedAt = time.Now()
	m.latestMutex.Unlock()

	if m.listener == nil {
		return
	}
	m.loop.Post(func() {
		decoded, err := models.DecodePredictions(encoded)
		if err != nil {
			logging.LogError(m.logger, "decoding delivered predictions", err)
			return
		}
		m.listener(decoded)
	})
}
