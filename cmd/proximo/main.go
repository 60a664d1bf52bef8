package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neugierig/proximo/internal/app"
	"github.com/neugierig/proximo/internal/appconf"
	"github.com/neugierig/proximo/internal/logging"
	"github.com/neugierig/proximo/internal/proximo"
	"github.com/neugierig/proximo/internal/restapi"
	"github.com/neugierig/proximo/internal/webui"
)

func main() {
	cfg, err := parseConfig(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := logging.NewStructuredLogger(os.Stdout, level)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logging.LogError(logger, "server stopped", err)
		os.Exit(1)
	}
}

// parseConfig reads flags into a validated config.
func parseConfig(args []string, output io.Writer) (appconf.Config, error) {
	var cfg appconf.Config
	var env string

	fs := flag.NewFlagSet("proximo", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.IntVar(&cfg.Port, "port", 4000, "API server port")
	fs.StringVar(&env, "env", "development", "Environment (development|test|production)")
	fs.StringVar(&cfg.BaseURL, "base-url", appconf.DefaultBaseURL, "Root URL of the prediction API agency")
	fs.DurationVar(&cfg.HTTPTimeout, "http-timeout", proximo.DefaultTimeout, "Timeout of a single upstream request")
	fs.DurationVar(&cfg.QueryTimeout, "query-timeout", 0, "Deadline of a background query (0 for none)")
	fs.Float64Var(&cfg.RequestsPerSecond, "requests-per-second", 0, "Upstream request pacing (0 for unlimited)")
	fs.IntVar(&cfg.RateLimit, "rate-limit", 100, "Requests per second allowed per client (0 for unlimited)")
	fs.StringVar(&cfg.FavoritesDBPath, "favorites-db", "favorites.db", "Path to the favorites SQLite database")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	fs.StringVar(&cfg.MonitorStopID, "monitor-stop", "", "Stop id to poll in the background")
	fs.StringVar(&cfg.MonitorRouteID, "monitor-route", "", "Restrict the monitored stop to one route")
	fs.DurationVar(&cfg.MonitorInterval, "monitor-interval", 30*time.Second, "Polling interval of the monitored stop")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	cfg.Env = appconf.EnvFlagToEnvironment(env)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func run(cfg appconf.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	application.Start()
	defer application.Shutdown()

	api := restapi.NewRestAPI(application)
	defer api.Stop()

	router := api.Router()
	if cfg.Env != appconf.Production {
		webUI := &webui.WebUI{Application: application}
		webUI.SetWebUIRoutes(router)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.Wrap(router),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10*time.Second + cfg.HTTPTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr, "env", cfg.Env.String(), "base_url", application.Client.BaseURL())
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	logging.LogOperation(logger, "shutting_down_server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
