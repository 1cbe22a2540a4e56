// README: Common value objects shared across modules.
package types

import "fmt"

// Point is a position on the simulated 2D plane.
type Point struct {
	X float64
	Y float64
}

func (p Point) String() string {
	return fmt.Sprintf("(%.1f, %.1f)", p.X, p.Y)
}

// Bounds is the rectangle vehicles and clients are spawned in.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}
