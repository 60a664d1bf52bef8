package query

import (
	"context"

	"github.com/neugierig/proximo/internal/models"
)

func Routes() Query[[]models.Route] {
	return func(ctx context.Context, b Backend) ([]models.Route, error) {
		return b.ListRoutes(ctx)
	}
}

func Runs(routeID string) Query[[]models.Run] {
	return func(ctx context.Context, b Backend) ([]models.Run, error) {
		return b.ListRuns(ctx, routeID)
	}
}

func Stops(routeID, runID string) Query[[]models.Stop] {
	return func(ctx context.Context, b Backend) ([]models.Stop, error) {
		return b.ListStops(ctx, routeID, runID)
	}
}

// Predictions lists predictions for a stop, restricted to one route unless
// routeID is empty.
func Predictions(stopID, routeID string) Query[[]models.Prediction] {
	return func(ctx context.Context, b Backend) ([]models.Prediction, error) {
		if routeID == "" {
			return b.ListPredictions(ctx, stopID)
		}
		return b.ListPredictionsForRoute(ctx, stopID, routeID)
	}
}

// RouteName resolves a route id to its display name.
func RouteName(routeID string) Query[string] {
	return func(ctx context.Context, b Backend) (string, error) {
		route, err := b.GetRoute(ctx, routeID)
		if err != nil {
			return "", err
		}
		return route.DisplayName, nil
	}
}

// RunName resolves a run id to its display name.
func RunName(routeID, runID string) Query[string] {
	return func(ctx context.Context, b Backend) (string, error) {
		run, err := b.GetRun(ctx, routeID, runID)
		if err != nil {
			return "", err
		}
		return run.DisplayName, nil
	}
}
