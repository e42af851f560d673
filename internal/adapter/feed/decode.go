package feed

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/couchcryptid/smoke-zone-etl/internal/domain"
)

// GRIB2 discipline 0, category 2 (momentum) parameter numbers.
const (
	paramUGRD = 2
	paramVGRD = 3
)

// fireRecord is one row of the collector's fire.json. The timestamp is epoch
// milliseconds when written by pandas, but RFC3339 strings are accepted too.
type fireRecord struct {
	Latitude  float64         `json:"latitude"`
	Longitude float64         `json:"longitude"`
	Intensity float64         `json:"intensity"`
	Timestamp json.RawMessage `json:"timestamp"`
}

// DecodeFires reads a fire.json document.
func DecodeFires(r io.Reader) ([]domain.FirePoint, error) {
	var records []fireRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode fire feed: %w", err)
	}

	points := make([]domain.FirePoint, 0, len(records))
	for i, rec := range records {
		ts, err := domain.ParseTimestamp(rec.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("decode fire feed: record %d: %w", i, err)
		}
		points = append(points, domain.FirePoint{
			Latitude:   rec.Latitude,
			Longitude:  rec.Longitude,
			Intensity:  rec.Intensity,
			DetectedAt: ts,
		})
	}
	return points, nil
}

// DecodeWind reads grib2json output and picks the UGRD and VGRD records.
// Records without parameter numbers are taken positionally: u first, then v.
func DecodeWind(r io.Reader) (domain.WindField, error) {
	var grids []domain.WindGrid
	if err := json.NewDecoder(r).Decode(&grids); err != nil {
		return domain.WindField{}, fmt.Errorf("decode wind feed: %w", err)
	}
	if len(grids) < 2 {
		return domain.WindField{}, fmt.Errorf("decode wind feed: need u and v records, got %d", len(grids))
	}

	var u, v *domain.WindGrid
	for i := range grids {
		n := grids[i].Header.ParameterNumber
		if n == nil {
			continue
		}
		switch *n {
		case paramUGRD:
			u = &grids[i]
		case paramVGRD:
			v = &grids[i]
		}
	}

	switch {
	case u != nil && v != nil:
		return domain.WindField{U: *u, V: *v}, nil
	case u == nil && v == nil:
		return domain.WindField{U: grids[0], V: grids[1]}, nil
	default:
		return domain.WindField{}, errors.New("decode wind feed: only one of UGRD/VGRD present")
	}
}
