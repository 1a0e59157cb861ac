package domain

import (
	"time"
)

// DistanceRequest is the body of distance and closeness queries.
type DistanceRequest struct {
	Position1 Position `json:"position1"`
	Position2 Position `json:"position2"`
}

// NextPositionRequest asks for one step from Start in the direction Angle (degrees).
type NextPositionRequest struct {
	Start Position `json:"start"`
	Angle float64  `json:"angle"`
}

// RegionRequest tests Position against an ad-hoc Region.
type RegionRequest struct {
	Position Position `json:"position"`
	Region   Region   `json:"region"`
}

// RegionContainsRequest tests Position against a catalog region named in the path.
type RegionContainsRequest struct {
	Position Position `json:"position"`
}

// RegionCheck records the outcome of a single region test.
type RegionCheck struct {
	Region    string    `json:"region"`
	Position  Position  `json:"position"`
	Inside    bool      `json:"inside"`
	CheckedAt time.Time `json:"checked_at"`
}
