package optimizer

import (
	"math/rand"

	"trajan/internal/vecmath"
)

// Noise and drift magnitudes for the synthetic signal model. The exact
// values only shape how quickly the strategies diverge; reproducibility
// comes from the seed.
const (
	observationNoise = 0.25
	directionDrift   = 0.02
)

// generator produces a drifting true direction per signal and noisy unit
// observations around it, all from one seeded source.
type generator struct {
	rng   *rand.Rand
	truth [3]vecmath.Vec3
}

func newGenerator(seed int64) *generator {
	g := &generator{rng: rand.New(rand.NewSource(seed))}
	for i := range g.truth {
		g.truth[i] = g.randomUnit()
	}
	return g
}

func (g *generator) next() observation {
	var obs observation
	for i := range g.truth {
		// Slow drift keeps the trajectory non-stationary.
		g.truth[i] = g.perturb(g.truth[i], directionDrift)
		obs[i] = g.perturb(g.truth[i], observationNoise)
	}
	return obs
}

func (g *generator) perturb(v vecmath.Vec3, magnitude float64) vecmath.Vec3 {
	jittered := v.Add(g.randomUnit().Scale(magnitude))
	unit, err := vecmath.Normalize(jittered)
	if err != nil {
		// A unit vector plus a sub-unit perturbation cannot be degenerate
		// for magnitude < 1, but keep the stream alive regardless.
		return v
	}
	return unit
}

// randomUnit samples a uniform direction by rejection from the unit ball.
func (g *generator) randomUnit() vecmath.Vec3 {
	for {
		v := vecmath.Vec3{
			g.rng.Float64()*2 - 1,
			g.rng.Float64()*2 - 1,
			g.rng.Float64()*2 - 1,
		}
		n := v.Norm()
		if n > 1e-6 && n <= 1 {
			return v.Scale(1 / n)
		}
	}
}
