// Package favorites persists the stops a user has starred, keyed by route
// and stop, together with the display names known when they were added.
package favorites

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/neugierig/proximo/internal/appconf"
	"github.com/neugierig/proximo/internal/logging"
	"github.com/neugierig/proximo/internal/models"
)

//go:embed schema.sql
var ddl string

const memoryPath = ":memory:"

// Store is a SQLite-backed favorites list. It is safe for concurrent use.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates or opens the database at config.DBPath and applies the schema.
func Open(ctx context.Context, config Config, logger *slog.Logger) (*Store, error) {
	if config.Env == appconf.Test && config.DBPath != memoryPath {
		return nil, fmt.Errorf("favorites database must be in memory under test, got %q", config.DBPath)
	}

	db, err := sql.Open("sqlite", config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening favorites database: %w", err)
	}
	if config.DBPath == memoryPath {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db, logger: logging.Component(logger, "favorites")}
	if err := performDatabaseMigration(ctx, db); err != nil {
		logging.SafeCloseWithLogging(db, store.logger, "favorites_database")
		return nil, fmt.Errorf("error performing database migration: %w", err)
	}
	return store, nil
}

func performDatabaseMigration(ctx context.Context, db *sql.DB) error {
	statements := strings.Split(ddl, "-- migrate")
	for _, stmt := range statements {
		trimmedStmt := strings.TrimSpace(stmt)
		if trimmedStmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, trimmedStmt); err != nil {
			return fmt.Errorf("error executing DDL statement [%s]: %w", trimmedStmt, err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Add stores f, replacing the names of an existing favorite for the same
// route and stop.
func (s *Store) Add(ctx context.Context, f models.Favorite) error {
	if f.RouteID == "" || f.StopID == "" {
		return errors.New("favorite requires a route id and a stop id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer logging.SafeRollbackWithLogging(tx, s.logger, "add_favorite")

	_, err = tx.ExecContext(ctx, `
		INSERT INTO favorites (route_id, stop_id, route_name, run_id, run_name, stop_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (route_id, stop_id) DO UPDATE SET
			route_name = excluded.route_name,
			run_id = excluded.run_id,
			run_name = excluded.run_name,
			stop_name = excluded.stop_name`,
		f.RouteID, f.StopID, f.RouteName, f.RunID, f.RunName, f.StopName, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("inserting favorite %s/%s: %w", f.RouteID, f.StopID, err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logging.LogOperation(s.logger, "favorite_added",
		slog.String("route_id", f.RouteID),
		slog.String("stop_id", f.StopID))
	return nil
}

// Remove deletes the favorite and reports whether one existed.
func (s *Store) Remove(ctx context.Context, routeID, stopID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE route_id = ? AND stop_id = ?`, routeID, stopID)
	if err != nil {
		return false, fmt.Errorf("deleting favorite %s/%s: %w", routeID, stopID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) IsFavorite(ctx context.Context, routeID, stopID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM favorites WHERE route_id = ? AND stop_id = ?)`,
		routeID, stopID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("querying favorite %s/%s: %w", routeID, stopID, err)
	}
	return exists, nil
}

// List returns every favorite in the order it was first added.
func (s *Store) List(ctx context.Context) (favorites []models.Favorite, err error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT route_id, route_name, run_id, run_name, stop_id, stop_name
		FROM favorites
		ORDER BY created_at, route_id, stop_id`)
	if err != nil {
		return nil, fmt.Errorf("listing favorites: %w", err)
	}
	defer logging.HandleDeferredError(&err, rows.Close, s.logger, "close_favorites_rows")

	favorites = []models.Favorite{}
	for rows.Next() {
		var f models.Favorite
		if err := rows.Scan(&f.RouteID, &f.RouteName, &f.RunID, &f.RunName, &f.StopID, &f.StopName); err != nil {
			return nil, err
		}
		favorites = append(favorites, f)
	}
	return favorites, rows.Err()
}
