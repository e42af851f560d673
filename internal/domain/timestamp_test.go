package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2023, time.October, 8, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"epoch millis", `1696723200000`, want},
		{"rfc3339", `"2023-10-08T07:00:00+07:00"`, want},
		{"null", `null`, time.Time{}},
		{"empty", ``, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(json.RawMessage(tt.raw))
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}

	_, err := ParseTimestamp(json.RawMessage(`"tuesday"`))
	assert.Error(t, err)
	_, err = ParseTimestamp(json.RawMessage(`true`))
	assert.Error(t, err)
}
