package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/fpl-advisor/internal/events"
	"github.com/aman-zulfiqar/fpl-advisor/internal/fpl"
	"github.com/aman-zulfiqar/fpl-advisor/internal/ingest"
	"github.com/aman-zulfiqar/fpl-advisor/internal/metrics"
	"github.com/aman-zulfiqar/fpl-advisor/internal/models"
	"github.com/aman-zulfiqar/fpl-advisor/internal/runs"
	"github.com/aman-zulfiqar/fpl-advisor/internal/store"
)

const upstreamRoster = `{
  "teams": [{"id": 1, "name": "Arsenal"}, {"id": 2, "name": "Spurs"}],
  "element_types": [{"id": 2, "singular_name": "Defender"}],
  "elements": [
    {"id": 10, "first_name": "William", "second_name": "Saliba", "team": 1, "element_type": 2,
     "now_cost": 60, "total_points": 120, "form": "5.1", "selected_by_percent": "35.2"},
    {"id": 11, "first_name": "Pedro", "second_name": "Porro", "team": 2, "element_type": 2,
     "now_cost": 55, "total_points": 130, "form": "6.0", "selected_by_percent": "20.1"}
  ]
}`

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

// setupIntegrationTest starts a real server backed by SQLite, Redis and a fake
// FPL upstream. It skips when Redis is not reachable.
func setupIntegrationTest(t *testing.T) (string, *redis.Client) {
	t.Helper()

	redisClient := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   2, // Use different DB for integration tests
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for integration tests: %v", err)
	}
	_ = redisClient.FlushDB(ctx).Err()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(upstreamRoster))
	}))

	st, err := store.NewSQLiteStore(ctx, store.SQLiteConfig{
		Path:   filepath.Join(t.TempDir(), "fpl.db"),
		Logger: logger,
	})
	require.NoError(t, err)

	runStore, err := runs.NewStore(redisClient, 10)
	require.NoError(t, err)

	m := metrics.NewManager()
	ing, err := ingest.New(ingest.Config{
		Source:   fpl.NewClient(upstream.URL, 5*time.Second),
		Store:    st,
		Recorder: runStore,
		Notifier: events.NewPubSub(redisClient, logger),
		Metrics:  m,
		Logger:   logger,
	})
	require.NoError(t, err)

	addr := freeAddr(t)
	srv, err := NewServer(ServerDeps{
		Handlers: &Handlers{Store: st, Ingest: ing, Runs: runStore, DevMode: true, Logger: logger},
		Config:   ServerConfig{Addr: addr, DevMode: true, APIKey: testKey, Metrics: m.Handler()},
	})
	require.NoError(t, err)

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			t.Logf("Server error: %v", err)
		}
	}()

	// Wait for server to be ready
	base := "http://" + addr
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/v1/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return true
	}, 5*time.Second, 20*time.Millisecond)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(ctx)
		_ = srv.WaitClosed(ctx)
		upstream.Close()
		_ = st.Close()
		_ = redisClient.FlushDB(ctx).Err()
		_ = redisClient.Close()
	})

	return base, redisClient
}

func makeRequest(t *testing.T, method, url string, expectedStatus int) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	req.Header.Set("X-API-Key", testKey)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err)

	assert.Equal(t, expectedStatus, resp.StatusCode, "Expected status %d, got %d", expectedStatus, resp.StatusCode)
	return resp
}

func TestIntegration_RefreshRecordsAndPublishes(t *testing.T) {
	base, redisClient := setupIntegrationTest(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	got := make(chan *models.RefreshRun, 1)
	ps := events.NewPubSub(redisClient, logrus.New())
	subErr := make(chan error, 1)
	go func() {
		subErr <- ps.Subscribe(ctx, events.RefreshChannel, func(run *models.RefreshRun) {
			select {
			case got <- run:
			default:
			}
		})
	}()
	// give the subscription a moment to register
	time.Sleep(100 * time.Millisecond)

	resp := makeRequest(t, http.MethodPost, base+"/v1/players/refresh", http.StatusOK)
	var run models.RefreshRun
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&run))
	resp.Body.Close()
	assert.Equal(t, models.RefreshOK, run.Status)
	assert.Equal(t, 2, run.Players)

	select {
	case published := <-got:
		assert.Equal(t, run.ID, published.ID)
	case <-ctx.Done():
		t.Fatal("refresh event was not published")
	}
	cancel()
	<-subErr

	resp = makeRequest(t, http.MethodGet, base+"/v1/players/refresh/runs", http.StatusOK)
	var list RunsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	resp.Body.Close()
	require.Len(t, list.Items, 1)
	assert.Equal(t, run.ID, list.Items[0].ID)

	resp = makeRequest(t, http.MethodGet, base+"/v1/health", http.StatusOK)
	var health HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, int64(2), health.Players)
}

func TestIntegration_ConcurrentRequests(t *testing.T) {
	base, _ := setupIntegrationTest(t)

	const numRequests = 50
	const numGoroutines = 10

	results := make(chan error, numRequests)
	client := &http.Client{Timeout: 5 * time.Second}

	for i := 0; i < numGoroutines; i++ {
		go func() {
			for j := 0; j < numRequests/numGoroutines; j++ {
				req, _ := http.NewRequest(http.MethodGet, base+"/v1/schema", nil)
				req.Header.Set("X-API-Key", testKey)
				resp, err := client.Do(req)
				if err != nil {
					results <- err
					continue
				}
				resp.Body.Close()
				if resp.StatusCode != http.StatusOK {
					err = fmt.Errorf("status %d", resp.StatusCode)
				}
				results <- err
			}
		}()
	}

	// Collect all results
	for i := 0; i < numRequests; i++ {
		assert.NoError(t, <-results)
	}
}
