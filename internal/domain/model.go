package domain

import "time"

// FirePoint is a single fire detection pixel.
type FirePoint struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Intensity  float64   `json:"intensity"` // fire radiative power
	DetectedAt time.Time `json:"timestamp,omitzero"`
}

// GridHeader describes the geometry of a regular lat/lon grid, following the
// grib2json header layout. The GRIB parameter fields are optional and only
// used to tell the wind components apart.
type GridHeader struct {
	Lo1 float64 `json:"lo1"`
	La1 float64 `json:"la1"`
	Lo2 float64 `json:"lo2"`
	La2 float64 `json:"la2"`
	Dx  float64 `json:"dx"`
	Dy  float64 `json:"dy"`
	Nx  int     `json:"nx"`
	Ny  int     `json:"ny"`

	ParameterCategory   *int   `json:"parameterCategory,omitempty"`
	ParameterNumber     *int   `json:"parameterNumber,omitempty"`
	ParameterNumberName string `json:"parameterNumberName,omitempty"`
	RefTime             string `json:"refTime,omitempty"`
}

// WindGrid is one scalar wind component sampled on a regular grid.
type WindGrid struct {
	Header GridHeader `json:"header"`
	Data   []float64  `json:"data"`
}

// WindField pairs the eastward (U) and northward (V) wind components.
type WindField struct {
	U WindGrid
	V WindGrid
}

// WindVector is a sampled wind in m/s.
type WindVector struct {
	U float64 `json:"u"`
	V float64 `json:"v"`
}

// DispersedZone is the hazard geometry derived from one fire point.
// Areas are km², radii km.
type DispersedZone struct {
	SourceLat  float64 `json:"source_lat"`
	SourceLon  float64 `json:"source_lon"`
	RedLat     float64 `json:"red_lat"`
	RedLon     float64 `json:"red_lon"`
	RedArea    float64 `json:"red_area"`
	YellowLat  float64 `json:"yellow_lat"`
	YellowLon  float64 `json:"yellow_lon"`
	YellowArea float64 `json:"yellow_area"`

	RedRadius    float64 `json:"red_radius"`
	YellowRadius float64 `json:"yellow_radius"`
	Intensity    float64 `json:"intensity"` // normalized, relative to the batch maximum
}

// Inputs is everything one refresh cycle needs.
type Inputs struct {
	Fires []FirePoint
	Wind  WindField
}

// ZoneBatch is the result of one refresh cycle.
type ZoneBatch struct {
	RunID       string           `json:"run_id"`
	GeneratedAt time.Time        `json:"generated_at"`
	WindRefTime time.Time        `json:"wind_ref_time,omitzero"`
	FireCount   int              `json:"fire_count"`
	Params      DispersionParams `json:"params"`
	Zones       []DispersedZone  `json:"zones"`
}
