package trajectory

import (
	"math/rand"
	"sync"
)

// ControlSpread is how far control points may reach relative to the jiggle distance.
const ControlSpread = 2

// Generator draws random curves for jiggle cycles.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewGenerator creates a new curve generator with a random source.
func NewGenerator(rnd *rand.Rand) *Generator {
	return &Generator{rnd: rnd}
}

// Outbound returns a curve from the origin to a random endpoint.
// The endpoint lies in [-distance, distance] on each axis and both control
// points lie in [-2*distance, 2*distance]; every coordinate is drawn
// independently and uniformly.
func (g *Generator) Outbound(distance int) Curve {
	if distance < 0 {
		distance = 0
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	spread := distance * ControlSpread
	return Curve{
		P0: Point{},
		P1: Pt(g.between(spread), g.between(spread)),
		P2: Pt(g.between(spread), g.between(spread)),
		P3: Pt(g.between(distance), g.between(distance)),
	}
}

// between returns a uniform integer in [-n, n]. Callers hold g.mu.
func (g *Generator) between(n int) int {
	if n == 0 {
		return 0
	}
	return g.rnd.Intn(2*n+1) - n
}
