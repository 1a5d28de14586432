package domain

import "math"

// DefaultGridSize is the default cell edge length in degrees.
const DefaultGridSize = 2.0

// GridCell identifies one cell of the fixed lat/lon grid by its floored
// lower-left corner in degrees. It is a transient grouping key only and is
// never persisted.
type GridCell struct {
	Lat float64
	Lon float64
}

// CellFor returns the grid cell containing the given coordinates. Floor
// division makes the lower-left edge inclusive, including for negative
// coordinates: (-0.1, -0.1) at grid size 2 falls in cell (-2, -2).
func CellFor(gridSize, lat, lon float64) GridCell {
	return GridCell{
		Lat: math.Floor(lat/gridSize) * gridSize,
		Lon: math.Floor(lon/gridSize) * gridSize,
	}
}

// Center returns the midpoint of the cell for the given grid size.
func (c GridCell) Center(gridSize float64) (lat, lon float64) {
	return c.Lat + gridSize/2, c.Lon + gridSize/2
}

// PartitionEvents groups events into grid cells by floored coordinates.
// Pure and deterministic for a fixed grid size and input; within each cell
// events keep their input order, which RepresentativeRegion relies on for
// stable tie-breaking.
func PartitionEvents(gridSize float64, events []Earthquake) map[GridCell][]Earthquake {
	cells := make(map[GridCell][]Earthquake)
	for _, e := range events {
		cell := CellFor(gridSize, e.Latitude, e.Longitude)
		cells[cell] = append(cells[cell], e)
	}
	return cells
}
