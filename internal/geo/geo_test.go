package geo

import (
	"math"
	"testing"

	"taxipark/internal/types"
)

func TestDistance(t *testing.T) {
	cases := []struct {
		name string
		a, b types.Point
		want float64
	}{
		{"same point", types.Point{X: 1, Y: 1}, types.Point{X: 1, Y: 1}, 0},
		{"horizontal", types.Point{X: 0, Y: 0}, types.Point{X: 10, Y: 0}, 10},
		{"vertical", types.Point{X: 0, Y: 0}, types.Point{X: 0, Y: 4}, 4},
		{"diagonal 3-4-5", types.Point{X: 0, Y: 0}, types.Point{X: 3, Y: 4}, 5},
		{"negative coords", types.Point{X: -3, Y: -4}, types.Point{X: 0, Y: 0}, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Distance(tc.a, tc.b)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("Distance(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestSteps(t *testing.T) {
	a := types.Point{X: 0, Y: 0}

	if got := Steps(a, types.Point{X: 100, Y: 0}, 5); got != 20 {
		t.Fatalf("expected 20 steps, got %d", got)
	}
	// Short hops still take the minimum of 2 steps.
	if got := Steps(a, types.Point{X: 1, Y: 0}, 5); got != 2 {
		t.Fatalf("expected floor of 2 steps, got %d", got)
	}
	if got := Steps(a, a, 5); got != 2 {
		t.Fatalf("expected 2 steps for zero-length leg, got %d", got)
	}
	if got := Steps(a, types.Point{X: 100, Y: 0}, 0); got != 2 {
		t.Fatalf("expected 2 steps for zero speed, got %d", got)
	}
}

func TestLerp(t *testing.T) {
	a := types.Point{X: 0, Y: 0}
	b := types.Point{X: 10, Y: 20}

	mid := Lerp(a, b, 0.5)
	if mid.X != 5 || mid.Y != 10 {
		t.Fatalf("midpoint = %v, want (5, 10)", mid)
	}
	if end := Lerp(a, b, 1); end != b {
		t.Fatalf("t=1 should land on b, got %v", end)
	}
	if start := Lerp(a, b, 0); start != a {
		t.Fatalf("t=0 should stay at a, got %v", start)
	}
}
