package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers    []string
	KafkaSinkTopic  string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Input feeds published by the fire and wind collectors.
	FireFeedURL string
	WindFeedURL string
	FeedTimeout time.Duration
	// Region of interest; nil disables filtering.
	BBox *BBox

	RefreshInterval  time.Duration
	RetryMaxAttempts int
	RetryBackoff     time.Duration

	// Dispersion model tuning.
	YellowZoneExtension float64
	ScalingFactor       float64

	ArchiveEnabled   bool
	ArchivePath      string
	ArchiveRetention time.Duration

	// Air quality lookups are proxied only when a key is set.
	AQIAPIKey string
	AQIURL    string
}

// BBox is a lon/lat bounding box in degrees.
type BBox struct {
	MinLon, MinLat, MaxLon, MaxLat float64
}

// defaultBBox covers Indonesian territory.
const defaultBBox = "95.2930261576,-10.3599874813,141.03385176,5.47982086834"

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parsePositiveDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	feedTimeout, err := parsePositiveDuration("FEED_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	refreshInterval, err := parsePositiveDuration("REFRESH_INTERVAL", "1h")
	if err != nil {
		return nil, err
	}
	retryBackoff, err := parsePositiveDuration("RETRY_BACKOFF", "200ms")
	if err != nil {
		return nil, err
	}

	archiveRetention, err := parsePositiveDuration("ARCHIVE_RETENTION", "168h")
	if err != nil {
		return nil, err
	}

	retryMaxAttempts, err := strconv.Atoi(envOrDefault("RETRY_MAX_ATTEMPTS", "3"))
	if err != nil || retryMaxAttempts < 1 {
		return nil, errors.New("invalid RETRY_MAX_ATTEMPTS: must be a positive integer")
	}

	ext, err := strconv.ParseFloat(envOrDefault("YELLOW_ZONE_EXTENSION", "0.5"), 64)
	if err != nil || ext < 0 {
		return nil, errors.New("invalid YELLOW_ZONE_EXTENSION: must be a non-negative number")
	}
	scaling, err := strconv.ParseFloat(envOrDefault("SCALING_FACTOR", "1.0"), 64)
	if err != nil || scaling <= 0 {
		return nil, errors.New("invalid SCALING_FACTOR: must be a positive number")
	}

	bbox, err := ParseBBox(envOrDefault("BBOX", defaultBBox))
	if err != nil {
		return nil, err
	}

	archiveEnabled := true
	if v := strings.TrimSpace(os.Getenv("ARCHIVE_ENABLED")); v != "" {
		if archiveEnabled, err = strconv.ParseBool(v); err != nil {
			return nil, errors.New("invalid ARCHIVE_ENABLED: must be a boolean")
		}
	}

	cfg := &Config{
		KafkaBrokers:    parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic:  envOrDefault("KAFKA_SINK_TOPIC", "smoke-zones"),
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		FireFeedURL: envOrDefault("FIRE_FEED_URL", "https://storage.googleapis.com/nasa-sparc.appspot.com/fire.json"),
		WindFeedURL: envOrDefault("WIND_FEED_URL", "https://storage.googleapis.com/nasa-sparc.appspot.com/wind.json"),
		FeedTimeout: feedTimeout,
		BBox:        bbox,

		RefreshInterval:  refreshInterval,
		RetryMaxAttempts: retryMaxAttempts,
		RetryBackoff:     retryBackoff,

		YellowZoneExtension: ext,
		ScalingFactor:       scaling,

		ArchiveEnabled:   archiveEnabled,
		ArchivePath:      envOrDefault("ARCHIVE_PATH", "smoke-zones.db"),
		ArchiveRetention: archiveRetention,

		AQIAPIKey: os.Getenv("AQI_API_KEY"),
		AQIURL:    envOrDefault("AQI_URL", "https://airquality.googleapis.com/v1/currentConditions:lookup"),
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.FireFeedURL == "" || cfg.WindFeedURL == "" {
		return nil, errors.New("FIRE_FEED_URL and WIND_FEED_URL are required")
	}
	if cfg.AQIAPIKey != "" && cfg.AQIURL == "" {
		return nil, errors.New("AQI_API_KEY is set but AQI_URL is empty")
	}
	if cfg.ArchiveEnabled && cfg.ArchivePath == "" {
		return nil, errors.New("ARCHIVE_ENABLED is true but ARCHIVE_PATH is not set")
	}

	return cfg, nil
}

// envOrDefault returns the value of the environment variable or fallback when unset.
func envOrDefault(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

// parseBrokers splits a comma-separated broker list, dropping blanks.
func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// ParseBBox parses "minLon,minLat,maxLon,maxLat". An empty string disables filtering.
func ParseBBox(s string) (*BBox, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, errors.New("invalid BBOX: expected minLon,minLat,maxLon,maxLat")
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid BBOX: %w", err)
		}
		v[i] = f
	}
	b := &BBox{MinLon: v[0], MinLat: v[1], MaxLon: v[2], MaxLat: v[3]}
	if b.MinLon > b.MaxLon || b.MinLat > b.MaxLat {
		return nil, errors.New("invalid BBOX: min exceeds max")
	}
	if b.MinLat < -90 || b.MaxLat > 90 {
		return nil, errors.New("invalid BBOX: latitude out of range")
	}
	return b, nil
}
