package trajectory

import (
	"math"
	"math/rand"
	"testing"
)

func TestCurveEndpoints(t *testing.T) {
	c := Curve{P0: Pt(1, -2), P1: Pt(7, 3), P2: Pt(-4, 9), P3: Pt(5, 5)}

	if got := c.At(0); got != c.P0 {
		t.Errorf("At(0) = %v, want %v", got, c.P0)
	}
	got := c.At(1)
	if math.Abs(got.X-c.P3.X) > 1e-9 || math.Abs(got.Y-c.P3.Y) > 1e-9 {
		t.Errorf("At(1) = %v, want %v", got, c.P3)
	}
}

func TestCurveMidpoint(t *testing.T) {
	// Straight line with evenly spaced controls is linear in t.
	c := Curve{P0: Pt(0, 0), P1: Pt(3, 3), P2: Pt(6, 6), P3: Pt(9, 9)}
	got := c.At(0.5)
	if math.Abs(got.X-4.5) > 1e-9 || math.Abs(got.Y-4.5) > 1e-9 {
		t.Errorf("At(0.5) = %v, want {4.5 4.5}", got)
	}
}

func TestPointsCount(t *testing.T) {
	c := Curve{P3: Pt(4, 4)}
	for _, steps := range []int{-1, 0, 1, 2, 20, 57} {
		n := 0
		for range c.Points(steps) {
			n++
		}
		want := max(steps, 0)
		if n != want {
			t.Errorf("steps=%d: got %d points, want %d", steps, n, want)
		}
	}
}

func TestPointsLastIsEndpoint(t *testing.T) {
	c := Curve{P1: Pt(-3, 8), P2: Pt(2, -6), P3: Pt(3, -1)}
	var last Point
	for p := range c.Points(20) {
		last = p
	}
	if last != c.P3 {
		t.Errorf("last point = %v, want %v", last, c.P3)
	}
}

func TestPointsRestartable(t *testing.T) {
	c := Curve{P1: Pt(1, 2), P2: Pt(3, 4), P3: Pt(5, 6)}
	seq := c.Points(10)

	var first, second []Point
	for p := range seq {
		first = append(first, p)
	}
	for p := range seq {
		second = append(second, p)
	}
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("point %d differs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestPointsEarlyBreak(t *testing.T) {
	c := Curve{P3: Pt(10, 0)}
	n := 0
	for range c.Points(20) {
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Errorf("expected to stop after 3 points, got %d", n)
	}
}

func TestDegenerateCurve(t *testing.T) {
	c := Curve{P1: Pt(2, 2), P2: Pt(-2, -2)}
	sx, sy := 0, 0
	for dx, dy := range c.Deltas(20) {
		sx += dx
		sy += dy
	}
	if sx != 0 || sy != 0 {
		t.Errorf("net displacement = (%d,%d), want (0,0)", sx, sy)
	}
}

func TestReverse(t *testing.T) {
	c := Curve{P0: Pt(0, 0), P1: Pt(1, 2), P2: Pt(3, 4), P3: Pt(5, 6)}
	r := c.Reverse()
	want := Curve{P0: Pt(5, 6), P1: Pt(3, 4), P2: Pt(1, 2), P3: Pt(0, 0)}
	if r != want {
		t.Errorf("Reverse() = %v, want %v", r, want)
	}
	// The reversed curve traces the same path backwards.
	for _, tt := range []float64{0, 0.25, 0.5, 0.75, 1} {
		a, b := c.At(tt), r.At(1-tt)
		if math.Abs(a.X-b.X) > 1e-9 || math.Abs(a.Y-b.Y) > 1e-9 {
			t.Errorf("t=%v: %v vs reversed %v", tt, a, b)
		}
	}
}

func TestRoundTripDisplacement(t *testing.T) {
	gen := NewGenerator(rand.New(rand.NewSource(7)))
	for i := 0; i < 200; i++ {
		out := gen.Outbound(5)
		ex, ey := out.P3.Round()

		sx, sy := 0, 0
		for dx, dy := range out.Deltas(20) {
			sx += dx
			sy += dy
		}
		if sx != ex || sy != ey {
			t.Fatalf("outbound net = (%d,%d), want endpoint (%d,%d)", sx, sy, ex, ey)
		}

		for dx, dy := range out.Reverse().Deltas(20) {
			sx += dx
			sy += dy
		}
		if sx != 0 || sy != 0 {
			t.Fatalf("after inbound leg net = (%d,%d), want (0,0)", sx, sy)
		}
	}
}

func TestContinuity(t *testing.T) {
	const steps = 20
	gen := NewGenerator(rand.New(rand.NewSource(99)))
	for _, distance := range []int{1, 5, 12, 40} {
		// |B'(t)| per axis is bounded by 3 * the largest control polygon edge,
		// which is at most 4*distance for these ranges.
		bound := 12*float64(distance)/steps + 1e-9
		for i := 0; i < 100; i++ {
			c := gen.Outbound(distance)
			prev := c.P0
			for p := range c.Points(steps) {
				if math.Abs(p.X-prev.X) > bound || math.Abs(p.Y-prev.Y) > bound {
					t.Fatalf("distance=%d: jump from %v to %v exceeds %v", distance, prev, p, bound)
				}
				prev = p
			}
		}
	}
}
