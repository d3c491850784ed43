package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aman-zulfiqar/fpl-advisor/internal/models"
	"github.com/sirupsen/logrus"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS players (
	id INTEGER PRIMARY KEY,
	name TEXT,
	team TEXT,
	position TEXT,
	price REAL,
	total_points INTEGER,
	form REAL,
	selected_by_percent REAL,
	minutes INTEGER,
	goals_scored INTEGER,
	assists INTEGER,
	clean_sheets INTEGER,
	goals_conceded INTEGER,
	yellow_cards INTEGER,
	red_cards INTEGER,
	last_updated TIMESTAMP
)`

// ON CONFLICT updates the row in place; INSERT OR REPLACE would delete and re-insert it.
const sqliteUpsert = `
INSERT INTO players (
	id, name, team, position, price, total_points, form, selected_by_percent,
	minutes, goals_scored, assists, clean_sheets, goals_conceded,
	yellow_cards, red_cards, last_updated
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	team = excluded.team,
	position = excluded.position,
	price = excluded.price,
	total_points = excluded.total_points,
	form = excluded.form,
	selected_by_percent = excluded.selected_by_percent,
	minutes = excluded.minutes,
	goals_scored = excluded.goals_scored,
	assists = excluded.assists,
	clean_sheets = excluded.clean_sheets,
	goals_conceded = excluded.goals_conceded,
	yellow_cards = excluded.yellow_cards,
	red_cards = excluded.red_cards,
	last_updated = excluded.last_updated`

// SQLiteConfig holds configuration for the embedded store.
type SQLiteConfig struct {
	Path   string // database file, e.g. "fpl_data.db"
	Logger *logrus.Logger
}

// SQLiteStore keeps players in a local SQLite file. Writes go through a
// single read-write connection; generated queries run on a separate pool
// whose connections are switched to query_only before use.
type SQLiteStore struct {
	db     *sql.DB
	reader *sql.DB
	logger *logrus.Logger
}

// NewSQLiteStore opens (creating if needed) the database file and the players table.
func NewSQLiteStore(ctx context.Context, cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Path == "" {
		cfg.Path = "fpl_data.db"
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite pragma %q: %w", p, err)
		}
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create players table: %w", err)
	}

	reader, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open sqlite reader: %w", err)
	}

	cfg.Logger.WithField("path", cfg.Path).Info("opened sqlite statistics store")

	return &SQLiteStore{db: db, reader: reader, logger: cfg.Logger}, nil
}

// Upsert writes all players in one transaction, stamping last_updated.
func (s *SQLiteStore) Upsert(ctx context.Context, players []models.Player) error {
	if len(players) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, sqliteUpsert)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, p := range players {
		_, err := stmt.ExecContext(ctx,
			p.ID, p.Name, p.Team, p.Position,
			p.Price, p.TotalPoints, p.Form, p.SelectedByPercent,
			p.Minutes, p.GoalsScored, p.Assists, p.CleanSheets, p.GoalsConceded,
			p.YellowCards, p.RedCards, now,
		)
		if err != nil {
			return fmt.Errorf("upsert player %d: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}

	s.logger.WithField("players", len(players)).Debug("upserted players")
	return nil
}

// Query validates the statement and runs it on a query_only connection.
func (s *SQLiteStore) Query(ctx context.Context, query string) (*ResultSet, error) {
	if err := ValidateReadOnly(query); err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	rs, err := s.queryReadOnly(ctx, query)
	if err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	return rs, nil
}

func (s *SQLiteStore) queryReadOnly(ctx context.Context, query string) (*ResultSet, error) {
	conn, err := s.reader.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire reader connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
		return nil, fmt.Errorf("enable query_only: %w", err)
	}
	if _, err := conn.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRows(rows)
}

// Describe reads the players table definition.
func (s *SQLiteStore) Describe(ctx context.Context) (*Schema, error) {
	rows, err := s.reader.QueryContext(ctx, "SELECT name, type FROM pragma_table_info(?) ORDER BY cid", TableName)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", TableName, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var c Column
		if err := rows.Scan(&c.Name, &c.Type); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("describe %s: %w", TableName, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s not found", TableName)
	}
	return newSchema(cols), nil
}

// Count returns the number of player rows.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.reader.QueryRowContext(ctx, "SELECT COUNT(*) FROM players").Scan(&n); err != nil {
		return 0, fmt.Errorf("count players: %w", err)
	}
	return n, nil
}

// Ping checks both connections.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return err
	}
	return s.reader.PingContext(ctx)
}

// Close closes both connections.
func (s *SQLiteStore) Close() error {
	s.logger.Debug("closing sqlite statistics store")
	rerr := s.reader.Close()
	if err := s.db.Close(); err != nil {
		return err
	}
	return rerr
}
