// Package geospatial implements planar geometry over longitude/latitude pairs.
// Coordinates are treated as flat Cartesian axes; no earth curvature is modelled.
package geospatial

import (
	"errors"
	"math"
)

// Threshold is the single tolerance used as the closeness radius, the step
// length of Step and the boundary tolerance of IsInRegion. Tune it here only.
const Threshold = 0.00015

// ErrEmptyPolygon is the panic value of IsInRegion when called without vertices.
var ErrEmptyPolygon = errors.New("geospatial: polygon must contain at least one vertex")

// Point is a coordinate pair, conventionally X = lng and Y = lat.
type Point struct {
	X float64
	Y float64
}

// Polygon is an ordered vertex sequence. Repeating the first vertex at the
// end is allowed but not required.
type Polygon []Point

// Closed reports whether the last vertex is close to the first.
func (p Polygon) Closed() bool {
	if len(p) == 0 {
		return false
	}
	return IsClose(p[0], p[len(p)-1])
}

// Distance returns the Euclidean distance between two points.
func Distance(p1, p2 Point) float64 {
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// IsClose reports whether p1 and p2 are within Threshold of each other (inclusive).
func IsClose(p1, p2 Point) bool {
	return Distance(p1, p2) <= Threshold
}

// Step returns the point Threshold away from start in the direction of
// angleDegrees, measured counter-clockwise from +X (0 = east, 90 = north).
func Step(start Point, angleDegrees float64) Point {
	rad := toRad(angleDegrees)
	return Point{
		X: start.X + Threshold*math.Cos(rad),
		Y: start.Y + Threshold*math.Sin(rad),
	}
}

// IsInRegion reports whether point lies inside the polygon using the even-odd
// rule. Points on or within Threshold of the boundary count as inside.
// Polygons with fewer than three vertices are accepted; only their boundary
// can match. It panics with ErrEmptyPolygon if vertices is empty.
func IsInRegion(point Point, vertices Polygon) bool {
	if len(vertices) == 0 {
		panic(ErrEmptyPolygon)
	}
	if onBoundary(point, vertices) {
		return true
	}

	crossings := 0
	n := len(vertices)
	for cur, prev := 0, n-1; cur < n; prev, cur = cur, cur+1 {
		c, p := vertices[cur], vertices[prev]
		if (c.Y > point.Y) != (p.Y > point.Y) &&
			point.X < (p.X-c.X)*(point.Y-c.Y)/(p.Y-c.Y)+c.X {
			crossings++
		}
	}
	return crossings%2 == 1
}

// onBoundary checks vertex proximity, then each edge whose bounding box holds
// the point. Edges shorter than Threshold are skipped. The edge test measures
// distance to the infinite line through the edge, gated only by the box.
func onBoundary(point Point, vertices Polygon) bool {
	for _, v := range vertices {
		if IsClose(point, v) {
			return true
		}
	}

	n := len(vertices)
	for s, e := 0, n-1; s < n; e, s = s, s+1 {
		start, end := vertices[s], vertices[e]

		if point.Y < math.Min(start.Y, end.Y) || point.Y > math.Max(start.Y, end.Y) ||
			point.X < math.Min(start.X, end.X) || point.X > math.Max(start.X, end.X) {
			continue
		}

		length := Distance(start, end)
		if length < Threshold {
			continue
		}

		d := math.Abs((end.Y-start.Y)*point.X-(end.X-start.X)*point.Y+
			end.X*start.Y-end.Y*start.X) / length
		if d < Threshold {
			return true
		}
	}
	return false
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
