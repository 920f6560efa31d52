package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/homeplan/scheduler/pkg/domain"
)

// HTTPEngine calls an external OSRM-style routing service over HTTP,
// exchanging JSON request/response bodies rather than the service's native
// protocol. It is configured with a base URL; Duration posts a single
// coordinate pair and expects back a duration in seconds.
type HTTPEngine struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

type durationRequest struct {
	FromLat float64 `json:"from_lat"`
	FromLon float64 `json:"from_lon"`
	ToLat   float64 `json:"to_lat"`
	ToLon   float64 `json:"to_lon"`
}

type durationResponse struct {
	DurationSeconds *float64 `json:"duration_seconds"`
	Routable        bool     `json:"routable"`
}

// NewHTTPEngine builds an HTTPEngine with sensible defaults for the HTTP
// client and per-request timeout.
func NewHTTPEngine(baseURL string) *HTTPEngine {
	return &HTTPEngine{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{},
		Timeout:    10 * time.Second,
	}
}

// Duration implements RoutingEngine by calling the configured routing
// service. It returns ErrNoRoute when the service reports the pair as
// unroutable.
func (e *HTTPEngine) Duration(ctx context.Context, from, to domain.Location) (int64, error) {
	if from.Equal(to) {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout())
	defer cancel()

	body, err := json.Marshal(durationRequest{
		FromLat: from.Latitude(),
		FromLon: from.Longitude(),
		ToLat:   to.Latitude(),
		ToLon:   to.Longitude(),
	})
	if err != nil {
		return 0, fmt.Errorf("routing: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.BaseURL+"/route/duration", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("routing: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client().Do(req)
	if err != nil {
		return 0, fmt.Errorf("routing: call routing engine: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("routing: engine returned status %d", resp.StatusCode)
	}

	var out durationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("routing: decode response: %w", err)
	}
	if !out.Routable || out.DurationSeconds == nil {
		return 0, ErrNoRoute
	}

	return int64(*out.DurationSeconds + 0.999999), nil
}

func (e *HTTPEngine) client() *http.Client {
	if e.HTTPClient != nil {
		return e.HTTPClient
	}
	return http.DefaultClient
}

func (e *HTTPEngine) timeout() time.Duration {
	if e.Timeout > 0 {
		return e.Timeout
	}
	return 10 * time.Second
}
