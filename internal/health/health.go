package health

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

// ComponentHealth represents the health of a single component
type ComponentHealth struct {
	Status   Status `json:"status"`
	Message  string `json:"message,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// Response represents the full health check response
type Response struct {
	Status     Status                     `json:"status"`
	Timestamp  string                     `json:"timestamp"`
	Version    string                     `json:"version,omitempty"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

// Checker performs health checks on the service's dependencies
type Checker struct {
	db                *sql.DB
	redis             *redis.Client
	spotifyConfigured func() bool
	version           string
	checkTimeout      time.Duration
}

// CheckerConfig holds configuration for the health checker
type CheckerConfig struct {
	DB                *sql.DB
	Redis             *redis.Client
	SpotifyConfigured func() bool
	Version           string
	Timeout           time.Duration
}

// NewChecker creates a new health checker
func NewChecker(cfg *CheckerConfig) *Checker {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Checker{
		db:                cfg.DB,
		redis:             cfg.Redis,
		spotifyConfigured: cfg.SpotifyConfigured,
		version:           cfg.Version,
		checkTimeout:      timeout,
	}
}

// CheckDB checks database connectivity
func (c *Checker) CheckDB(ctx context.Context) ComponentHealth {
	start := time.Now()

	if c.db == nil {
		return ComponentHealth{
			Status:  StatusUnhealthy,
			Message: "database not configured",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.checkTimeout)
	defer cancel()

	if err := c.db.PingContext(ctx); err != nil {
		return ComponentHealth{
			Status:   StatusUnhealthy,
			Message:  "database ping failed",
			Duration: time.Since(start).String(),
		}
	}

	return ComponentHealth{
		Status:   StatusHealthy,
		Duration: time.Since(start).String(),
	}
}

// CheckCache checks Redis connectivity. A missing cache degrades the
// service but does not make it unhealthy.
func (c *Checker) CheckCache(ctx context.Context) ComponentHealth {
	start := time.Now()

	if c.redis == nil {
		return ComponentHealth{
			Status:  StatusDegraded,
			Message: "cache not configured",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.checkTimeout)
	defer cancel()

	if err := c.redis.Ping(ctx).Err(); err != nil {
		return ComponentHealth{
			Status:   StatusDegraded,
			Message:  "cache ping failed",
			Duration: time.Since(start).String(),
		}
	}

	return ComponentHealth{
		Status:   StatusHealthy,
		Duration: time.Since(start).String(),
	}
}

// CheckSpotify checks that catalog credentials are present. No network call
// is made; a live probe would burn a token exchange on every health check.
func (c *Checker) CheckSpotify() ComponentHealth {
	if c.spotifyConfigured == nil || !c.spotifyConfigured() {
		return ComponentHealth{
			Status:  StatusDegraded,
			Message: "spotify credentials not configured",
		}
	}
	return ComponentHealth{Status: StatusHealthy}
}

// Check runs all component checks and aggregates an overall status.
func (c *Checker) Check(ctx context.Context) Response {
	components := map[string]ComponentHealth{
		"database": c.CheckDB(ctx),
		"cache":    c.CheckCache(ctx),
		"spotify":  c.CheckSpotify(),
	}

	overall := StatusHealthy
	for _, comp := range components {
		switch comp.Status {
		case StatusUnhealthy:
			overall = StatusUnhealthy
		case StatusDegraded:
			if overall == StatusHealthy {
				overall = StatusDegraded
			}
		}
	}

	return Response{
		Status:     overall,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Version:    c.version,
		Components: components,
	}
}

// Handler returns an HTTP handler for the health endpoint
func (c *Checker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := c.Check(r.Context())

		status := http.StatusOK
		if resp.Status == StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(resp)
	}
}
