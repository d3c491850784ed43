package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/aman-zulfiqar/fpl-advisor/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestClickHouse(t *testing.T) *ClickHouseStore {
	addr := os.Getenv("CLICKHOUSE_ADDR")
	if addr == "" {
		addr = "localhost:9000"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := NewClickHouseStore(ctx, ClickHouseConfig{Addr: addr, Username: "default"})
	if err != nil {
		t.Skipf("ClickHouse not available: %v", err)
	}
	require.NoError(t, s.conn.Exec(ctx, "TRUNCATE TABLE players"))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestClickHouseStore_UpsertIsKeyStable(t *testing.T) {
	s := setupTestClickHouse(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, testPlayers()))

	updated := testPlayers()[0]
	updated.TotalPoints = 999
	require.NoError(t, s.Upsert(ctx, []models.Player{updated}))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	rs, err := s.Query(ctx, "SELECT total_points FROM players WHERE id = 1")
	require.NoError(t, err)
	require.Equal(t, 1, rs.Len())
	assert.EqualValues(t, 999, rs.Rows[0]["total_points"])
}

func TestClickHouseStore_ReaderIsReadonly(t *testing.T) {
	s := setupTestClickHouse(t)
	ctx := context.Background()

	_, err := s.reader.ExecContext(ctx, "TRUNCATE TABLE players")
	assert.Error(t, err)

	schema, err := s.Describe(ctx)
	require.NoError(t, err)
	assert.Contains(t, schema.ColumnNames(), "selected_by_percent")
}
