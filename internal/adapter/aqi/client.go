// Package aqi proxies current air quality lookups to the Google Air Quality API.
package aqi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// ErrUpstream reports a non-200 answer from the air quality API.
var ErrUpstream = errors.New("air quality api error")

// extraComputations are requested on every lookup so clients get health
// advice and pollutant detail in one call.
var extraComputations = []string{
	"HEALTH_RECOMMENDATIONS",
	"DOMINANT_POLLUTANT_CONCENTRATION",
	"POLLUTANT_CONCENTRATION",
	"LOCAL_AQI",
	"POLLUTANT_ADDITIONAL_INFO",
}

// Query is one lookup request.
type Query struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	LanguageCode string  `json:"languageCode,omitempty"`
}

// Validate checks coordinate ranges.
func (q Query) Validate() error {
	if q.Latitude < -90 || q.Latitude > 90 || q.Longitude < -180 || q.Longitude > 180 {
		return fmt.Errorf("coordinates out of range: %v,%v", q.Latitude, q.Longitude)
	}
	return nil
}

type lookupRequest struct {
	UniversalAQI      bool     `json:"universal_aqi"`
	Location          location `json:"location"`
	ExtraComputations []string `json:"extra_computations"`
	LanguageCode      string   `json:"languageCode"`
}

type location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Client calls the currentConditions:lookup endpoint.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a lookup client. endpoint is the full lookup URL without the key.
func NewClient(endpoint, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Lookup returns the upstream JSON document unchanged.
func (c *Client) Lookup(ctx context.Context, q Query) (json.RawMessage, error) {
	lang := q.LanguageCode
	if lang == "" {
		lang = "en"
	}
	body, err := json.Marshal(lookupRequest{
		Location:          location{Latitude: q.Latitude, Longitude: q.Longitude},
		ExtraComputations: extraComputations,
		LanguageCode:      lang,
	})
	if err != nil {
		return nil, fmt.Errorf("encode aqi request: %w", err)
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse aqi endpoint: %w", err)
	}
	params := u.Query()
	params.Set("key", c.apiKey)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create aqi request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The URL carries the key; keep it out of the error.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, fmt.Errorf("aqi request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("air quality api rejected lookup", "status", resp.StatusCode, "body", string(msg))
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read aqi response: %w", err)
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%w: response is not JSON", ErrUpstream)
	}
	return raw, nil
}
