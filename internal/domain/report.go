package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// Smoke intensity is reported on a 0 (none) to 5 (severe) scale.
const (
	MinSmokeIntensity = 0
	MaxSmokeIntensity = 5

	maxDescriptionLen = 1000
)

// AirQualityLevels are the accepted values of SmokeReport.AirQuality.
var AirQualityLevels = []string{"good", "moderate", "unhealthy", "very_unhealthy", "hazardous"}

// ErrInvalidReport wraps every SmokeReport validation failure.
var ErrInvalidReport = errors.New("invalid smoke report")

// SmokeReport is a citizen observation of smoke at the reporter's location.
type SmokeReport struct {
	ID               int64     `json:"id,omitempty"`
	HeardWildfire    bool      `json:"heard_wildfire"`
	AirQuality       string    `json:"air_quality"`
	SmokeIntensity   int       `json:"smoke_intensity"`
	SmokeDescription string    `json:"smoke_description"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	ReportedAt       time.Time `json:"reported_at"`
	ReceivedAt       time.Time `json:"received_at"`
}

// Normalize trims free text and lowercases the air quality label.
func (r *SmokeReport) Normalize() {
	r.AirQuality = strings.ToLower(strings.TrimSpace(r.AirQuality))
	r.SmokeDescription = strings.TrimSpace(r.SmokeDescription)
}

// Validate checks ranges and labels. Errors wrap ErrInvalidReport.
func (r SmokeReport) Validate() error {
	switch {
	case math.IsNaN(r.Latitude) || r.Latitude < -90 || r.Latitude > 90:
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidReport, r.Latitude)
	case math.IsNaN(r.Longitude) || r.Longitude < -180 || r.Longitude > 180:
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidReport, r.Longitude)
	case r.SmokeIntensity < MinSmokeIntensity || r.SmokeIntensity > MaxSmokeIntensity:
		return fmt.Errorf("%w: smoke_intensity must be between %d and %d", ErrInvalidReport, MinSmokeIntensity, MaxSmokeIntensity)
	case !validAirQuality(r.AirQuality):
		return fmt.Errorf("%w: air_quality must be one of %s", ErrInvalidReport, strings.Join(AirQualityLevels, ", "))
	case utf8.RuneCountInString(r.SmokeDescription) > maxDescriptionLen:
		return fmt.Errorf("%w: smoke_description longer than %d characters", ErrInvalidReport, maxDescriptionLen)
	case r.ReportedAt.IsZero():
		return fmt.Errorf("%w: missing timestamp", ErrInvalidReport)
	}
	return nil
}

func validAirQuality(s string) bool {
	for _, l := range AirQualityLevels {
		if s == l {
			return true
		}
	}
	return false
}
