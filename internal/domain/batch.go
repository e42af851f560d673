package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// batchClock stamps GeneratedAt on new batches.
var batchClock = clockwork.NewRealClock()

// SetClock replaces the clock used for batch timestamps; nil restores the real clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	batchClock = c
}

// BuildZoneBatch runs the zone engine over one cycle's inputs and wraps the
// result with run metadata.
func BuildZoneBatch(runID string, in Inputs, p DispersionParams) (ZoneBatch, error) {
	zones, err := AssembleZones(in.Fires, in.Wind, p)
	if err != nil {
		return ZoneBatch{}, err
	}
	return ZoneBatch{
		RunID:       runID,
		GeneratedAt: batchClock.Now().UTC(),
		WindRefTime: parseRefTime(in.Wind.U.Header.RefTime),
		FireCount:   len(in.Fires),
		Params:      p,
		Zones:       zones,
	}, nil
}

// parseRefTime reads the grib2json reference time, e.g. "2023-10-08T00:00:00.000Z".
// Returns zero time when absent or malformed.
func parseRefTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
