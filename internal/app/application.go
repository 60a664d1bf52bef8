// Package app wires the client, the query runner, the name caches, the
// favorites store and the optional prediction monitor into one container
// shared by the HTTP handlers.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/neugierig/proximo/internal/appconf"
	"github.com/neugierig/proximo/internal/favorites"
	"github.com/neugierig/proximo/internal/logging"
	"github.com/neugierig/proximo/internal/models"
	"github.com/neugierig/proximo/internal/monitor"
	"github.com/neugierig/proximo/internal/names"
	"github.com/neugierig/proximo/internal/proximo"
	"github.com/neugierig/proximo/internal/query"
)

// Application holds the dependencies for our HTTP handlers, helpers,
// and middleware.
type Application struct {
	Config appconf.Config
	Logger *slog.Logger

	Client *proximo.Client
	Runner *query.Runner
	// Loop is the presentation context: name cache updates and monitor
	// deliveries run on it.
	Loop       *query.Loop
	RouteNames *names.Cache
	RunNames   *names.Cache
	Favorites  *favorites.Store
	// Monitor is nil unless a monitor stop is configured.
	Monitor *monitor.Monitor

	loopDone     chan struct{}
	cancelLoop   context.CancelFunc
	startOnce    sync.Once
	shutdownOnce sync.Once
}

// New builds an Application from a validated config. Nothing runs until
// Start is called.
func New(ctx context.Context, cfg appconf.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client, err := proximo.NewClient(proximo.Config{
		BaseURL:           cfg.BaseURL,
		Timeout:           cfg.HTTPTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Logger:            logger,
	})
	if err != nil {
		return nil, err
	}

	store, err := favorites.Open(ctx, favorites.Config{DBPath: cfg.FavoritesDBPath, Env: cfg.Env}, logger)
	if err != nil {
		return nil, fmt.Errorf("opening favorites: %w", err)
	}

	runner := query.NewRunner(client, query.RunnerOptions{Logger: logger, QueryTimeout: cfg.QueryTimeout})
	loop := query.NewLoop()

	application := &Application{
		Config:    cfg,
		Logger:    logger,
		Client:    client,
		Runner:    runner,
		Loop:      loop,
		Favorites: store,
		loopDone:  make(chan struct{}),
	}

	namesLogger := logging.Component(logger, "presentation")
	onChange := func(id, name string) {
		namesLogger.Debug("name resolved", slog.String("id", id), slog.String("name", name))
	}
	application.RouteNames = names.NewCache("route", runner, loop, names.Options{Logger: logger, OnChange: onChange})
	application.RunNames = names.NewCache("run", runner, loop, names.Options{Logger: logger, OnChange: onChange})

	monitorConfig := monitor.Config{
		StopID:   cfg.MonitorStopID,
		RouteID:  cfg.MonitorRouteID,
		Interval: cfg.MonitorInterval,
	}
	if monitorConfig.Enabled() {
		application.Monitor, err = monitor.New(client, loop, monitorConfig, application.onMonitorUpdate, logger)
		if err != nil {
			logging.SafeCloseWithLogging(store, logger, "favorites_store")
			return nil, err
		}
	}

	return application, nil
}

// Start runs the presentation loop and the monitor in the background.
func (app *Application) Start() {
	app.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		app.cancelLoop = cancel
		go func() {
			defer close(app.loopDone)
			_ = app.Loop.Run(ctx)
		}()

		if app.Monitor != nil {
			app.Monitor.Start()
		}
	})
}

// Shutdown stops background work and releases the favorites database.
func (app *Application) Shutdown() {
	app.shutdownOnce.Do(func() {
		if app.Monitor != nil {
			app.Monitor.Shutdown()
		}
		app.Runner.Close()
		app.Runner.Wait()
		app.Loop.Close()
		if app.cancelLoop != nil {
			app.cancelLoop()
			<-app.loopDone
		}
		logging.SafeCloseWithLogging(app.Favorites, app.Logger, "favorites_store")
	})
}

// RouteName returns the display name of routeID, or routeID itself while
// the name is unknown.
func (app *Application) RouteName(routeID string) string {
	return app.RouteNames.Resolve(routeID, query.RouteName(routeID), routeID)
}

// RunName returns the display name of runID, or "" while it is unknown.
func (app *Application) RunName(routeID, runID string) string {
	if runID == "" {
		return ""
	}
	return app.RunNames.Resolve(runID, query.RunName(routeID, runID), "")
}

// NamesVersion changes whenever either name cache stores a name.
func (app *Application) NamesVersion() uint64 {
	return app.RouteNames.Version() + app.RunNames.Version()
}

// PredictionRows renders predictions with whatever names are known now and
// starts fetches for the rest.
func (app *Application) PredictionRows(predictions []models.Prediction) []models.PredictionRow {
	rows := make([]models.PredictionRow, 0, len(predictions))
	for _, p := range predictions {
		rows = append(rows, models.PredictionRow{
			RouteID:   p.RouteID,
			RouteName: app.RouteName(p.RouteID),
			RunID:     p.RunID,
			RunName:   app.RunName(p.RouteID, p.RunID),
			Minutes:   p.Minutes,
			Text:      p.Text(),
		})
	}
	return rows
}

func (app *Application) onMonitorUpdate(predictions []models.Prediction) {
	rows := app.PredictionRows(predictions)
	attrs := []slog.Attr{
		slog.String("stop_id", app.Config.MonitorStopID),
		slog.Int("count", len(rows)),
	}
	if len(rows) > 0 {
		attrs = append(attrs,
			slog.String("next_route", rows[0].RouteName),
			slog.String("next", rows[0].Text))
	}
	logging.LogOperation(logging.Component(app.Logger, "presentation"), "monitor_update", attrs...)
}
