// Package trajectory generates the cubic Bézier paths used for synthetic pointer movement.
package trajectory

import (
	"iter"
	"math"
)

// Point is a relative pixel offset from the pointer position at the start of a cycle.
type Point struct {
	X float64
	Y float64
}

// Pt is shorthand for building a Point from integer pixel offsets.
func Pt(x, y int) Point {
	return Point{X: float64(x), Y: float64(y)}
}

// Round returns the point snapped to the nearest pixel.
func (p Point) Round() (int, int) {
	return int(math.Round(p.X)), int(math.Round(p.Y))
}

// Curve is a cubic Bézier curve from P0 to P3 shaped by the control points P1 and P2.
type Curve struct {
	P0, P1, P2, P3 Point
}

// At evaluates the curve at t, where t=0 is P0 and t=1 is P3.
func (c Curve) At(t float64) Point {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	d := 3 * u * t * t
	e := t * t * t
	return Point{
		X: a*c.P0.X + b*c.P1.X + d*c.P2.X + e*c.P3.X,
		Y: a*c.P0.Y + b*c.P1.Y + d*c.P2.Y + e*c.P3.Y,
	}
}

// Points returns the curve sampled at t = i/steps for i = 1..steps.
// The sequence is lazy and can be ranged over any number of times.
// The final point is exactly P3; steps <= 0 yields nothing.
func (c Curve) Points(steps int) iter.Seq[Point] {
	return func(yield func(Point) bool) {
		for i := 1; i <= steps; i++ {
			p := c.P3
			if i < steps {
				p = c.At(float64(i) / float64(steps))
			}
			if !yield(p) {
				return
			}
		}
	}
}

// Reverse returns the curve traced backwards: from P3 to P0 with the
// control points swapped.
func (c Curve) Reverse() Curve {
	return Curve{P0: c.P3, P1: c.P2, P2: c.P1, P3: c.P0}
}

// Deltas converts the sampled curve into per-step integer pixel moves.
// Each delta is the difference between consecutive rounded points starting
// from the rounded P0, so the deltas always sum to round(P3) - round(P0).
func (c Curve) Deltas(steps int) iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		px, py := c.P0.Round()
		for p := range c.Points(steps) {
			x, y := p.Round()
			if !yield(x-px, y-py) {
				return
			}
			px, py = x, y
		}
	}
}
