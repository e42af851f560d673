package archive

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/couchcryptid/smoke-zone-etl/internal/domain"
)

type reportRow struct {
	ID               int64   `db:"id"`
	HeardWildfire    bool    `db:"heard_wildfire"`
	AirQuality       string  `db:"air_quality"`
	SmokeIntensity   int     `db:"smoke_intensity"`
	SmokeDescription string  `db:"smoke_description"`
	Latitude         float64 `db:"latitude"`
	Longitude        float64 `db:"longitude"`
	ReportedAt       int64   `db:"reported_at"`
	ReceivedAt       int64   `db:"received_at"`
}

// SaveReport stores a citizen smoke report and returns its ID.
func (s *Store) SaveReport(ctx context.Context, r domain.SmokeReport) (int64, error) {
	res, err := s.db.NamedExecContext(ctx, `
		INSERT INTO reports (heard_wildfire, air_quality, smoke_intensity, smoke_description,
			latitude, longitude, reported_at, received_at)
		VALUES (:heard_wildfire, :air_quality, :smoke_intensity, :smoke_description,
			:latitude, :longitude, :reported_at, :received_at)`, reportRow{
		HeardWildfire:    r.HeardWildfire,
		AirQuality:       r.AirQuality,
		SmokeIntensity:   r.SmokeIntensity,
		SmokeDescription: r.SmokeDescription,
		Latitude:         r.Latitude,
		Longitude:        r.Longitude,
		ReportedAt:       r.ReportedAt.UnixNano(),
		ReceivedAt:       r.ReceivedAt.UnixNano(),
	})
	if err != nil {
		return 0, fmt.Errorf("insert report: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("report id: %w", err)
	}
	return id, nil
}

// RecentReports returns up to limit reports made at or after since, newest
// first. A zero since returns the newest reports regardless of age.
func (s *Store) RecentReports(ctx context.Context, since time.Time, limit int) ([]domain.SmokeReport, error) {
	from := int64(math.MinInt64)
	if !since.IsZero() {
		from = since.UnixNano()
	}

	var rows []reportRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, heard_wildfire, air_quality, smoke_intensity, smoke_description,
			latitude, longitude, reported_at, received_at
		FROM reports WHERE reported_at >= ?
		ORDER BY reported_at DESC, id DESC LIMIT ?`, from, limit)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}

	reports := make([]domain.SmokeReport, len(rows))
	for i, r := range rows {
		reports[i] = domain.SmokeReport{
			ID:               r.ID,
			HeardWildfire:    r.HeardWildfire,
			AirQuality:       r.AirQuality,
			SmokeIntensity:   r.SmokeIntensity,
			SmokeDescription: r.SmokeDescription,
			Latitude:         r.Latitude,
			Longitude:        r.Longitude,
			ReportedAt:       time.Unix(0, r.ReportedAt).UTC(),
			ReceivedAt:       time.Unix(0, r.ReceivedAt).UTC(),
		}
	}
	return reports, nil
}
