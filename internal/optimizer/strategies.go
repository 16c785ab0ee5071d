package optimizer

import (
	"trajan/internal/vecmath"
)

// observation carries one step's sampled direction per signal
// (influence, productivity, creativity).
type observation [3]vecmath.Vec3

// dataDriven recomputes every base vector from the full observation history
// at each step. Exact, but step n costs n units.
type dataDriven struct {
	history [3][]vecmath.Vec3
}

func newDataDriven() *dataDriven {
	return &dataDriven{}
}

func (d *dataDriven) observe(obs observation) ([3]vecmath.Vec3, float64, error) {
	var bases [3]vecmath.Vec3
	for i := range obs {
		d.history[i] = append(d.history[i], obs[i])
		base, err := vecmath.Normalize(vecmath.Mean(d.history[i]))
		if err != nil {
			return bases, 0, err
		}
		bases[i] = base
	}
	return bases, float64(len(d.history[0])), nil
}

// fastCompounding keeps an exponentially weighted running estimate per
// signal: est = normalize((1-alpha)*est + alpha*obs). Each step costs one
// unit; the error against the exact mean stays bounded because older
// observations decay geometrically.
type fastCompounding struct {
	alpha  float64
	primed bool
	est    [3]vecmath.Vec3
}

func newFastCompounding(alpha float64) *fastCompounding {
	return &fastCompounding{alpha: alpha}
}

func (f *fastCompounding) observe(obs observation) ([3]vecmath.Vec3, float64, error) {
	if !f.primed {
		f.est = obs
		f.primed = true
		return f.est, 1, nil
	}
	for i := range obs {
		blended := f.est[i].Scale(1 - f.alpha).Add(obs[i].Scale(f.alpha))
		est, err := vecmath.Normalize(blended)
		if err != nil {
			return f.est, 0, err
		}
		f.est[i] = est
	}
	return f.est, 1, nil
}
