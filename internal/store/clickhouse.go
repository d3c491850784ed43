package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/aman-zulfiqar/fpl-advisor/internal/models"
	"github.com/sirupsen/logrus"
)

// ReplacingMergeTree keeps the newest version of each id; reads use final=1
// so only that version is visible.
const clickhouseSchema = `
CREATE TABLE IF NOT EXISTS players (
	id                  Int64,
	name                String,
	team                String,
	position            LowCardinality(String),
	price               Float64,
	total_points        Int64,
	form                Float64,
	selected_by_percent Float64,
	minutes             Int64,
	goals_scored        Int64,
	assists             Int64,
	clean_sheets        Int64,
	goals_conceded      Int64,
	yellow_cards        Int64,
	red_cards           Int64,
	last_updated        DateTime64(3, 'UTC')
) ENGINE = ReplacingMergeTree(last_updated)
ORDER BY id`

// ClickHouseConfig holds ClickHouse connection settings.
type ClickHouseConfig struct {
	Addr     string
	Database string
	Username string
	Password string
	Logger   *logrus.Logger
}

// ClickHouseStore keeps players in a ClickHouse table.
type ClickHouseStore struct {
	conn     driver.Conn
	reader   *sql.DB
	database string
	logger   *logrus.Logger
}

// NewClickHouseStore connects, creates the players table and opens a readonly reader.
func NewClickHouseStore(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseStore, error) {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Database == "" {
		cfg.Database = "default"
	}

	opts := &clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}
	if err := conn.Exec(ctx, clickhouseSchema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create players table: %w", err)
	}

	// readonly=2 rejects writes but still lets the driver send per-query settings.
	readerOpts := *opts
	readerOpts.Settings = clickhouse.Settings{
		"readonly": 2,
		"final":    1,
	}
	reader := clickhouse.OpenDB(&readerOpts)

	cfg.Logger.WithFields(logrus.Fields{
		"addr":     cfg.Addr,
		"database": cfg.Database,
	}).Info("connected to ClickHouse statistics store")

	return &ClickHouseStore{
		conn:     conn,
		reader:   reader,
		database: cfg.Database,
		logger:   cfg.Logger,
	}, nil
}

// Upsert sends all players as a single insert block.
func (c *ClickHouseStore) Upsert(ctx context.Context, players []models.Player) error {
	if len(players) == 0 {
		return nil
	}

	batch, err := c.conn.PrepareBatch(ctx, "INSERT INTO players")
	if err != nil {
		return fmt.Errorf("prepare players batch: %w", err)
	}

	now := time.Now().UTC()
	for _, p := range players {
		err := batch.Append(
			int64(p.ID), p.Name, p.Team, p.Position,
			p.Price, int64(p.TotalPoints), p.Form, p.SelectedByPercent,
			int64(p.Minutes), int64(p.GoalsScored), int64(p.Assists),
			int64(p.CleanSheets), int64(p.GoalsConceded),
			int64(p.YellowCards), int64(p.RedCards), now,
		)
		if err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append player %d: %w", p.ID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to insert players: %w", err)
	}

	c.logger.WithField("players", len(players)).Debug("upserted players")
	return nil
}

// Query validates the statement and runs it on the readonly connection.
func (c *ClickHouseStore) Query(ctx context.Context, query string) (*ResultSet, error) {
	if err := ValidateReadOnly(query); err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}

	rows, err := c.reader.QueryContext(ctx, query)
	if err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	defer rows.Close()

	rs, err := scanRows(rows)
	if err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	return rs, nil
}

// Describe reads column names and types from system.columns.
func (c *ClickHouseStore) Describe(ctx context.Context) (*Schema, error) {
	rows, err := c.conn.Query(ctx,
		"SELECT name, type FROM system.columns WHERE database = ? AND table = ? ORDER BY position",
		c.database, TableName,
	)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", TableName, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var col Column
		if err := rows.Scan(&col.Name, &col.Type); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("describe %s: %w", TableName, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s not found", TableName)
	}
	return newSchema(cols), nil
}

// Count returns the number of distinct player rows.
func (c *ClickHouseStore) Count(ctx context.Context) (int64, error) {
	var n uint64
	if err := c.conn.QueryRow(ctx, "SELECT count() FROM players FINAL").Scan(&n); err != nil {
		return 0, fmt.Errorf("count players: %w", err)
	}
	return int64(n), nil
}

// Ping checks the connection.
func (c *ClickHouseStore) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

// Close closes both connections.
func (c *ClickHouseStore) Close() error {
	c.logger.Debug("closing ClickHouse statistics store")
	rerr := c.reader.Close()
	if err := c.conn.Close(); err != nil {
		return err
	}
	return rerr
}
