package archive

import (
	"context"
	"testing"
	"time"

	"github.com/couchcryptid/smoke-zone-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reportAt(at time.Time, intensity int) domain.SmokeReport {
	return domain.SmokeReport{
		HeardWildfire:    intensity > 2,
		AirQuality:       "unhealthy",
		SmokeIntensity:   intensity,
		SmokeDescription: "haze over the river",
		Latitude:         -2.99,
		Longitude:        104.75,
		ReportedAt:       at,
		ReceivedAt:       at.Add(3 * time.Second),
	}
}

func TestStore_SaveAndRecentReports(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2023, 10, 8, 9, 0, 0, 0, time.UTC)

	oldID, err := s.SaveReport(ctx, reportAt(base.Add(-48*time.Hour), 1))
	require.NoError(t, err)
	firstID, err := s.SaveReport(ctx, reportAt(base, 2))
	require.NoError(t, err)
	secondID, err := s.SaveReport(ctx, reportAt(base.Add(250*time.Millisecond), 4))
	require.NoError(t, err)
	assert.Less(t, oldID, firstID)
	assert.Less(t, firstID, secondID)

	got, err := s.RecentReports(ctx, base.Add(-time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, secondID, got[0].ID)
	assert.Equal(t, 4, got[0].SmokeIntensity)
	assert.True(t, got[0].HeardWildfire)
	assert.True(t, got[0].ReportedAt.Equal(base.Add(250*time.Millisecond)))
	assert.True(t, got[0].ReceivedAt.Equal(base.Add(250*time.Millisecond+3*time.Second)))
	assert.Equal(t, firstID, got[1].ID)
	assert.False(t, got[1].HeardWildfire)
}

func TestStore_RecentReports_Limit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2023, 10, 8, 9, 0, 0, 0, time.UTC)

	for i := range 5 {
		_, err := s.SaveReport(ctx, reportAt(base.Add(time.Duration(i)*time.Minute), i))
		require.NoError(t, err)
	}

	got, err := s.RecentReports(ctx, time.Time{}, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 4, got[0].SmokeIntensity)
	assert.Equal(t, 3, got[1].SmokeIntensity)
}
