package fpl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/fpl-advisor/internal/models"
)

// DefaultBaseURL is the public Fantasy Premier League API.
const DefaultBaseURL = "https://fantasy.premierleague.com/api"

// Client reads the public FPL API. Every call is a single request.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Logger  *logrus.Logger
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL: baseURL,
		HTTP: &http.Client{
			Timeout: timeout,
		},
	}
}

type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	b := strings.TrimSpace(string(e.Body))
	if len(b) > 200 {
		b = b[:200]
	}
	if b == "" {
		return fmt.Sprintf("fpl http %d", e.StatusCode)
	}
	return fmt.Sprintf("fpl http %d: %s", e.StatusCode, b)
}

// Bootstrap fetches the full roster from bootstrap-static/. A failed request
// is returned as is; the caller decides whether to try again.
func (c *Client) Bootstrap(ctx context.Context) (*Bootstrap, error) {
	body, err := c.get(ctx, "/bootstrap-static/")
	if err != nil {
		c.logger().WithError(err).Debug("fpl bootstrap request failed")
		return nil, err
	}

	var out Bootstrap
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode fpl bootstrap response: %w", err)
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("user-agent", "fpl-advisor/1.0")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read fpl response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: res.StatusCode, Body: body}
	}
	return body, nil
}

func (c *Client) logger() *logrus.Logger {
	if c.Logger == nil {
		c.Logger = logrus.New()
	}
	return c.Logger
}

// Players fetches the roster and maps it to player records.
func (c *Client) Players(ctx context.Context) ([]models.Player, error) {
	b, err := c.Bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	return ToPlayers(b)
}
