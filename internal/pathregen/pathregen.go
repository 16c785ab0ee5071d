// Package pathregen searches backward from a target efficiency vector for
// base-vector configurations that would produce it. Candidate triples come
// from a fixed angular grid; the search is exhaustive, deterministic, and
// performs no I/O.
package pathregen

import (
	"fmt"
	"math"
	"sort"

	"trajan/internal/model"
	"trajan/internal/vecmath"
)

// Search outcome statuses.
const (
	StatusOK          = "ok"
	StatusNoCandidate = "no candidate within tolerance"
)

// DefaultGridStepDegrees is the default angular grid resolution.
const DefaultGridStepDegrees = 30.0

// DefaultToleranceDegrees is the default acceptance tolerance around the
// target efficiency direction.
const DefaultToleranceDegrees = 5.0

// Config tunes the grid search.
type Config struct {
	// GridStepDegrees is the angular spacing of candidate directions.
	// Finer grids grow the candidate set cubically.
	GridStepDegrees float64

	// ToleranceDegrees bounds the angular distance between a candidate's
	// efficiency vector and the target for the candidate to be retained.
	ToleranceDegrees float64

	// MaxCandidates caps the returned list after ranking. Zero means all.
	MaxCandidates int
}

// DefaultConfig returns the documented search defaults.
func DefaultConfig() Config {
	return Config{
		GridStepDegrees:  DefaultGridStepDegrees,
		ToleranceDegrees: DefaultToleranceDegrees,
	}
}

// Candidate is one retained base-vector triple, paired with the efficiency
// vector it implies and its angular distance to the target.
type Candidate struct {
	Influence    vecmath.Vec3 `json:"influence"`
	Productivity vecmath.Vec3 `json:"productivity"`
	Creativity   vecmath.Vec3 `json:"creativity"`
	Efficiency   vecmath.Vec3 `json:"efficiency"`

	// DistanceDegrees is the angle between Efficiency and the target.
	DistanceDegrees float64 `json:"distance_degrees"`

	// TransitionDegrees is the mean angular move from the start bases to
	// this candidate's bases; used to rank equally distant candidates by
	// plausibility of the transition.
	TransitionDegrees float64 `json:"transition_degrees"`
}

// Result is the ranked outcome of one search. An empty candidate list with
// StatusNoCandidate is a valid outcome, not an error.
type Result struct {
	Status     string      `json:"status"`
	Candidates []Candidate `json:"candidates"`
}

// Search enumerates base-vector triples on the angular grid, keeps those
// whose implied efficiency vector lies within tolerance of target, and
// returns them ranked by distance ascending (transition cost breaks ties).
func Search(start model.VectorSet, target vecmath.Vec3, cfg Config) (Result, error) {
	if !target.IsUnit(vecmath.UnitEps) {
		return Result{}, &model.ValidationError{Field: "target", Reason: "target efficiency vector must be unit length"}
	}
	if cfg.GridStepDegrees <= 0 {
		cfg.GridStepDegrees = DefaultGridStepDegrees
	}
	if cfg.GridStepDegrees > 90 {
		return Result{}, fmt.Errorf("grid step must be at most 90 degrees, got %v", cfg.GridStepDegrees)
	}
	if cfg.ToleranceDegrees <= 0 {
		cfg.ToleranceDegrees = DefaultToleranceDegrees
	}

	directions := gridDirections(cfg.GridStepDegrees)
	candidates := make([]Candidate, 0, 64)

	for _, influence := range directions {
		for _, productivity := range directions {
			for _, creativity := range directions {
				eff, err := vecmath.Normalize(influence.Add(productivity).Add(creativity))
				if err != nil {
					// The triple cancels out exactly; it implies no
					// efficiency direction and cannot match any target.
					continue
				}
				distance := vecmath.AngleBetween(eff, target)
				if distance > cfg.ToleranceDegrees {
					continue
				}
				candidates = append(candidates, Candidate{
					Influence:         influence,
					Productivity:      productivity,
					Creativity:        creativity,
					Efficiency:        eff,
					DistanceDegrees:   distance,
					TransitionDegrees: transitionCost(start, influence, productivity, creativity),
				})
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].DistanceDegrees != candidates[j].DistanceDegrees {
			return candidates[i].DistanceDegrees < candidates[j].DistanceDegrees
		}
		return candidates[i].TransitionDegrees < candidates[j].TransitionDegrees
	})
	if cfg.MaxCandidates > 0 && len(candidates) > cfg.MaxCandidates {
		candidates = candidates[:cfg.MaxCandidates]
	}

	status := StatusOK
	if len(candidates) == 0 {
		status = StatusNoCandidate
	}
	return Result{Status: status, Candidates: candidates}, nil
}

func transitionCost(start model.VectorSet, influence, productivity, creativity vecmath.Vec3) float64 {
	return (vecmath.AngleBetween(start.Influence, influence) +
		vecmath.AngleBetween(start.Productivity, productivity) +
		vecmath.AngleBetween(start.Creativity, creativity)) / 3
}

// gridDirections discretizes the unit sphere on a fixed angular step in
// spherical coordinates, collapsing the duplicate pole rings.
func gridDirections(stepDegrees float64) []vecmath.Vec3 {
	step := stepDegrees * math.Pi / 180
	dirs := make([]vecmath.Vec3, 0, 64)

	dirs = append(dirs, vecmath.Vec3{0, 0, 1}, vecmath.Vec3{0, 0, -1})
	for theta := step; theta < math.Pi-1e-9; theta += step {
		sinT, cosT := math.Sin(theta), math.Cos(theta)
		for phi := 0.0; phi < 2*math.Pi-1e-9; phi += step {
			dirs = append(dirs, vecmath.Vec3{
				sinT * math.Cos(phi),
				sinT * math.Sin(phi),
				cosT,
			})
		}
	}
	return dirs
}
