package domain

import "github.com/samirrijal/flightgeo/internal/pkg/geospatial"

// Position is a point on the flat lng/lat plane.
type Position struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// Point converts the position to an engine point (X = lng, Y = lat).
func (p Position) Point() geospatial.Point {
	return geospatial.Point{X: p.Lng, Y: p.Lat}
}

// PositionFromPoint converts an engine point back to a position.
func PositionFromPoint(p geospatial.Point) Position {
	return Position{Lng: p.X, Lat: p.Y}
}

// Region is a named polygon, vertices in traversal order.
type Region struct {
	Name     string     `json:"name" mapstructure:"name"`
	Vertices []Position `json:"vertices" mapstructure:"vertices"`
}

// Polygon returns the region's vertices as an engine polygon.
func (r Region) Polygon() geospatial.Polygon {
	poly := make(geospatial.Polygon, len(r.Vertices))
	for i, v := range r.Vertices {
		poly[i] = v.Point()
	}
	return poly
}
