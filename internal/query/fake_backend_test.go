package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/neugierig/proximo/internal/models"
)

var errNotFound = errors.New("not found")

// fakeBackend serves canned data and counts calls. When gate is non-nil every
// call blocks until it is closed or the context ends.
type fakeBackend struct {
	mu     sync.Mutex
	routes []models.Route
	runs   map[string][]models.Run
	stops  map[string][]models.Stop
	preds  map[string][]models.Prediction
	err    error

	gate  chan struct{}
	calls atomic.Int32
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		routes: []models.Route{
			models.NewRoute("F", "F-Market & Wharves"),
			models.NewRoute("N", "N-Judah"),
		},
		runs: map[string][]models.Run{
			"N": {models.NewRun("N_IB1", "N", "Inbound to Caltrain", true)},
		},
		stops: map[string][]models.Stop{
			"N/N_IB1": {models.NewStop("13913", "Judah St & 9th Ave")},
		},
		preds: map[string][]models.Prediction{
			"13913":   {models.NewPrediction("N", "N_IB1", 4, false), models.NewPrediction("71", "71_OB", 9, false)},
			"13913/N": {models.NewPrediction("N", "N_IB1", 4, false)},
		},
	}
}

func (f *fakeBackend) enter(ctx context.Context) error {
	f.calls.Add(1)
	f.mu.Lock()
	gate, err := f.gate, f.err
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *fakeBackend) ListRoutes(ctx context.Context) ([]models.Route, error) {
	if err := f.enter(ctx); err != nil {
		return nil, err
	}
	return f.routes, nil
}

func (f *fakeBackend) ListRuns(ctx context.Context, routeID string) ([]models.Run, error) {
	if err := f.enter(ctx); err != nil {
		return nil, err
	}
	return f.runs[routeID], nil
}

func (f *fakeBackend) ListStops(ctx context.Context, routeID, runID string) ([]models.Stop, error) {
	if err := f.enter(ctx); err != nil {
		return nil, err
	}
	return f.stops[routeID+"/"+runID], nil
}

func (f *fakeBackend) ListPredictions(ctx context.Context, stopID string) ([]models.Prediction, error) {
	if err := f.enter(ctx); err != nil {
		return nil, err
	}
	return f.preds[stopID], nil
}

func (f *fakeBackend) ListPredictionsForRoute(ctx context.Context, stopID, routeID string) ([]models.Prediction, error) {
	if err := f.enter(ctx); err != nil {
		return nil, err
	}
	return f.preds[stopID+"/"+routeID], nil
}

func (f *fakeBackend) GetRoute(ctx context.Context, routeID string) (models.Route, error) {
	if err := f.enter(ctx); err != nil {
		return models.Route{}, err
	}
	for _, r := range f.routes {
		if r.ID == routeID {
			return r, nil
		}
	}
	return models.Route{}, errNotFound
}

func (f *fakeBackend) GetRun(ctx context.Context, routeID, runID string) (models.Run, error) {
	if err := f.enter(ctx); err != nil {
		return models.Run{}, err
	}
	for _, r := range f.runs[routeID] {
		if r.ID == runID {
			return r, nil
		}
	}
	return models.Run{}, errNotFound
}
