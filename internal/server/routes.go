package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RegisterRoutes configures all API routes, middleware, and error handlers
func RegisterRoutes(e *echo.Echo, h *Handlers, cfg ServerConfig) {
	// Set custom error handler for consistent JSON responses
	e.HTTPErrorHandler = NotFoundJSON()

	// Player stats change on every refresh, nothing here is cacheable
	e.Use(jsonNoStore)

	// Optional API key authentication
	if cfg.APIKey != "" {
		e.Use(middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			KeyLookup: "header:X-API-Key", // Look for API key in X-API-Key header
			Validator: func(key string, c echo.Context) (bool, error) {
				return key == cfg.APIKey, nil // Simple string comparison
			},
			ErrorHandler: func(err error, c echo.Context) error {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing api key")
			},
		}))
	}

	// Prometheus scrape endpoint
	if cfg.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(cfg.Metrics))
	}

	// API v1 routes
	v1 := e.Group("/v1")
	v1.GET("/health", h.Health) // Health check endpoint
	v1.GET("/schema", h.Schema) // Introspected players table

	// Question endpoint with rate limiting, every call costs two LLM requests
	askLimiter := middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(0.2), // 1 request every 5 seconds
		Burst:     2,               // Allow burst of 2 requests
		ExpiresIn: 2 * time.Minute, // Rate limit window
	}))
	v1.POST("/ask", h.Ask, askLimiter)

	// Data refresh endpoints
	players := v1.Group("/players")
	players.POST("/refresh", h.Refresh)         // Pull the roster from the FPL API
	players.GET("/refresh/runs", h.RefreshRuns) // Recent refresh runs

	// Catch-all route for 404 responses
	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found", Code: http.StatusNotFound})
	})
}

// jsonNoStore marks every response as uncacheable JSON.
func jsonNoStore(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		hdr := c.Response().Header()
		hdr.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		hdr.Set("Cache-Control", "no-store")
		return next(c)
	}
}
