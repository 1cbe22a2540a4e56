// Package geo contains pure planar computation helpers for movement.
package geo

import (
	"math"

	"taxipark/internal/types"
)

// Distance returns the Euclidean distance between two points on the plane.
func Distance(a, b types.Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Steps returns how many interpolation steps a vehicle of the given speed
// needs to travel from a to b. Never fewer than 2 so even a zero-length
// leg yields visible progress ticks.
func Steps(a, b types.Point, speed float64) int {
	if speed <= 0 {
		return 2
	}
	n := int(Distance(a, b) / speed)
	if n < 2 {
		return 2
	}
	return n
}

// Lerp returns the point a fraction t of the way from a to b.
func Lerp(a, b types.Point, t float64) types.Point {
	return types.Point{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}
