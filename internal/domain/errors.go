package domain

import "errors"

var (
	// ErrGridShape reports a grid with fewer than one row or column.
	ErrGridShape = errors.New("grid must have at least one row and one column")

	// ErrGridData reports a data slice whose length is not nx*ny.
	ErrGridData = errors.New("grid data length does not match nx*ny")

	// ErrGridMismatch reports u and v grids with different geometry.
	ErrGridMismatch = errors.New("u and v grid geometries differ")

	// ErrNoFirePoints is returned when normalizing an empty collection.
	ErrNoFirePoints = errors.New("no fire points to normalize")

	// ErrZeroMaxIntensity is returned when the batch maximum intensity is zero,
	// so intensities cannot be normalized.
	ErrZeroMaxIntensity = errors.New("maximum fire intensity is zero")

	// ErrNonFiniteIntensity is returned when any fire intensity is NaN or infinite.
	ErrNonFiniteIntensity = errors.New("fire intensity is not a finite number")

	// ErrNoBatch is returned by stores that have not seen a zone batch yet.
	ErrNoBatch = errors.New("no zone batch available")
)
