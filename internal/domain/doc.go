// Package domain computes smoke dispersion hazard zones from satellite fire
// detections and a gridded wind field.
//
// # Data Sources
//
// Fire detections come from NASA FIRMS (VIIRS NOAA-20, Southeast Asia 24h
// product). The upstream collector downloads the CSV, normalises the
// acquisition date/time, filters to the region of interest and publishes a
// flat JSON array of {latitude, longitude, timestamp, intensity} records, where
// intensity is the fire radiative power (FRP, MW).
//
// Wind comes from the NOAA GFS 0.25° analysis (f000), 10 m above ground,
// UGRD and VGRD layers, converted by grib2json into an array of
// {header, data} records. Header fields used here:
//
//	lo1, la1  first grid point (degrees)
//	lo2, la2  last grid point (degrees)
//	dx, dy    step sizes (degrees)
//	nx, ny    columns (longitude) and rows (latitude)
//
// Data is row-major: row index follows latitude, column index longitude,
// value at data[row*nx+col].
//
// # Zone Model
//
// Each fire point is assigned the wind vector of its nearest grid node,
// searched independently on the latitude and longitude axes. The vector is
// scaled by (1 + normalized intensity), where normalized intensity is the
// point's FRP divided by the batch maximum. The scaled vector is advected
// linearly:
//
//	red radius    = |v'| * scaling factor                     (km)
//	red centre    = source + equirectangular offset of v' * scaling factor
//	yellow radius = |v' * (1 + ext)| * scaling factor
//	yellow area   = π (yellow radius² - red radius²)          (annulus, km²)
//
// The scaling factor is kilometres of displacement per m/s of wind. The
// default of 1.0 corresponds to 1000 s of advection. The equirectangular
// offset diverges at the poles; the target region is tropical.
//
// Zones never merge or interact, even when they overlap.
package domain
