package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/smoke-zone-etl/internal/config"
	"github.com/couchcryptid/smoke-zone-etl/internal/domain"
	"github.com/couchcryptid/smoke-zone-etl/internal/observability"
	"github.com/golang/geo/s2"
)

// Client downloads the fire and wind documents published by the collectors.
// It implements pipeline.Extractor.
type Client struct {
	fireURL    string
	windURL    string
	httpClient *http.Client
	region     *s2.Rect
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a feed client for the configured URLs and region of interest.
func NewClient(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		fireURL: cfg.FireFeedURL,
		windURL: cfg.WindFeedURL,
		httpClient: &http.Client{
			Timeout: cfg.FeedTimeout,
		},
		region:  RegionFromBBox(cfg.BBox),
		metrics: metrics,
		logger:  logger,
	}
}

// Extract fetches both feeds for one refresh cycle.
func (c *Client) Extract(ctx context.Context) (domain.Inputs, error) {
	fires, err := c.FetchFires(ctx)
	if err != nil {
		return domain.Inputs{}, err
	}
	wind, err := c.FetchWind(ctx)
	if err != nil {
		return domain.Inputs{}, err
	}
	return domain.Inputs{Fires: fires, Wind: wind}, nil
}

// FetchFires downloads fire.json and drops points outside the region of interest.
func (c *Client) FetchFires(ctx context.Context) ([]domain.FirePoint, error) {
	var points []domain.FirePoint
	err := c.get(ctx, c.fireURL, "fire", func(r io.Reader) error {
		var err error
		points, err = DecodeFires(r)
		return err
	})
	if err != nil {
		return nil, err
	}

	kept := FilterRegion(points, c.region)
	if dropped := len(points) - len(kept); dropped > 0 {
		c.metrics.FeedPointsFiltered.Add(float64(dropped))
		c.logger.Debug("fire points outside region dropped", "dropped", dropped, "kept", len(kept))
	}
	return kept, nil
}

// FetchWind downloads wind.json and returns the u/v pair.
func (c *Client) FetchWind(ctx context.Context) (domain.WindField, error) {
	var field domain.WindField
	err := c.get(ctx, c.windURL, "wind", func(r io.Reader) error {
		var err error
		field, err = DecodeWind(r)
		return err
	})
	return field, err
}

func (c *Client) get(ctx context.Context, url, feed string, decode func(io.Reader) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create %s request: %w", feed, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.FeedRequestDuration.WithLabelValues(feed).Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("%s feed request: %w", feed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s feed error: status %d: %s", feed, resp.StatusCode, body)
	}

	return decode(resp.Body)
}

// FilterRegion keeps the points inside region, preserving order. A nil region keeps everything.
func FilterRegion(points []domain.FirePoint, region *s2.Rect) []domain.FirePoint {
	if region == nil {
		return points
	}
	kept := make([]domain.FirePoint, 0, len(points))
	for _, p := range points {
		if region.ContainsLatLng(s2.LatLngFromDegrees(p.Latitude, p.Longitude)) {
			kept = append(kept, p)
		}
	}
	return kept
}

// RegionFromBBox converts a configured bounding box to an s2 rectangle. Nil stays nil.
func RegionFromBBox(b *config.BBox) *s2.Rect {
	if b == nil {
		return nil
	}
	r := s2.RectFromLatLng(s2.LatLngFromDegrees(b.MinLat, b.MinLon)).
		AddPoint(s2.LatLngFromDegrees(b.MaxLat, b.MaxLon))
	return &r
}
