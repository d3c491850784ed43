package store

import (
	"context"
	"fmt"
	"io"

	"github.com/aman-zulfiqar/fpl-advisor/internal/models"
	"github.com/sirupsen/logrus"
)

// TableName is the single queryable table.
const TableName = "players"

// Supported values for Config.Driver.
const (
	DriverSQLite     = "sqlite"
	DriverClickHouse = "clickhouse"
)

// Dialect names the SQL dialect spoken by driver, for prompting.
func Dialect(driver string) string {
	if driver == DriverClickHouse {
		return "ClickHouse"
	}
	return "SQLite"
}

// Querier runs read-only queries and returns tabular results.
type Querier interface {
	// Query executes a read-only statement verbatim. Any failure is a *QueryError.
	Query(ctx context.Context, query string) (*ResultSet, error)
}

// PlayerStore is the statistics store holding one row per player.
type PlayerStore interface {
	Querier

	// Upsert inserts or updates players keyed by id. All rows are written or none.
	Upsert(ctx context.Context, players []models.Player) error

	// Describe introspects the live players table.
	Describe(ctx context.Context) (*Schema, error)

	// Count returns the number of player rows.
	Count(ctx context.Context) (int64, error)

	// Ping checks if the store is reachable
	Ping(ctx context.Context) error

	// Close closes the store connections
	io.Closer
}

// Config selects and configures a PlayerStore backend.
type Config struct {
	Driver     string
	SQLitePath string
	ClickHouse ClickHouseConfig
	Logger     *logrus.Logger
}

// Open creates the backend named by cfg.Driver and bootstraps the players table.
func Open(ctx context.Context, cfg Config) (PlayerStore, error) {
	switch cfg.Driver {
	case "", DriverSQLite:
		return NewSQLiteStore(ctx, SQLiteConfig{Path: cfg.SQLitePath, Logger: cfg.Logger})
	case DriverClickHouse:
		chCfg := cfg.ClickHouse
		if chCfg.Logger == nil {
			chCfg.Logger = cfg.Logger
		}
		return NewClickHouseStore(ctx, chCfg)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
