package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/smoke-zone-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const windJSON = `[
 {"header":{"parameterCategory":2,"parameterNumber":3,"parameterNumberName":"V-component_of_wind","refTime":"2023-10-08T00:00:00.000Z",
  "lo1":100,"la1":-4,"lo2":101,"la2":-5,"dx":1,"dy":1,"nx":2,"ny":2},"data":[0,0,0,0]},
 {"header":{"parameterCategory":2,"parameterNumber":2,"parameterNumberName":"U-component_of_wind","refTime":"2023-10-08T00:00:00.000Z",
  "lo1":100,"la1":-4,"lo2":101,"la2":-5,"dx":1,"dy":1,"nx":2,"ny":2},"data":[1,1,1,1]}
]`

func TestDecodeFires(t *testing.T) {
	body := `[
		{"latitude":-2.5,"longitude":113.9,"timestamp":1696723200000,"intensity":12.4},
		{"latitude":-3.1,"longitude":104.7,"timestamp":"2023-10-08T01:30:00Z","intensity":3.2},
		{"latitude":-1.0,"longitude":110.0,"intensity":1.0}
	]`

	points, err := DecodeFires(strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, points, 3)

	assert.Equal(t, domain.FirePoint{
		Latitude:   -2.5,
		Longitude:  113.9,
		Intensity:  12.4,
		DetectedAt: time.Date(2023, time.October, 8, 0, 0, 0, 0, time.UTC),
	}, points[0])
	assert.Equal(t, time.Date(2023, time.October, 8, 1, 30, 0, 0, time.UTC), points[1].DetectedAt)
	assert.True(t, points[2].DetectedAt.IsZero())
}

func TestDecodeFires_Invalid(t *testing.T) {
	_, err := DecodeFires(strings.NewReader(`{"not":"an array"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode fire feed")

	_, err = DecodeFires(strings.NewReader(`[{"latitude":1,"longitude":2,"intensity":3,"timestamp":"tuesday"}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 0")
}

func TestDecodeWind_ByParameterNumber(t *testing.T) {
	field, err := DecodeWind(strings.NewReader(windJSON))
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 1, 1, 1}, field.U.Data)
	assert.Equal(t, []float64{0, 0, 0, 0}, field.V.Data)
	assert.Equal(t, "U-component_of_wind", field.U.Header.ParameterNumberName)
	assert.Equal(t, 2, field.U.Header.Nx)
	assert.Equal(t, -4.0, field.U.Header.La1)
	require.NoError(t, field.Validate())
}

func TestDecodeWind_Positional(t *testing.T) {
	body := `[
		{"header":{"lo1":0,"la1":0,"lo2":0,"la2":0,"dx":1,"dy":1,"nx":1,"ny":1},"data":[7]},
		{"header":{"lo1":0,"la1":0,"lo2":0,"la2":0,"dx":1,"dy":1,"nx":1,"ny":1},"data":[-2]}
	]`

	field, err := DecodeWind(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, []float64{7}, field.U.Data)
	assert.Equal(t, []float64{-2}, field.V.Data)
}

func TestDecodeWind_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"not json", `nope`, "decode wind feed"},
		{"single record", `[{"header":{"nx":1,"ny":1},"data":[1]}]`, "need u and v"},
		{"only u", `[{"header":{"parameterNumber":2,"nx":1,"ny":1},"data":[1]},{"header":{"nx":1,"ny":1},"data":[1]}]`, "only one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeWind(strings.NewReader(tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
