// Package vecmath provides the pure vector primitives the analysis engine is
// built on: normalization, angular separation, and cosine similarity over
// three-dimensional vectors. All functions are stateless and allocation-free.
package vecmath

import (
	"errors"
	"math"
)

// DegenerateEps is the norm below which a vector cannot be normalized.
const DegenerateEps = 1e-12

// UnitEps is the tolerance used when checking that a vector is unit length.
const UnitEps = 1e-6

// ErrDegenerateVector indicates an attempt to normalize a zero or
// near-zero vector.
var ErrDegenerateVector = errors.New("vecmath: cannot normalize a degenerate (near-zero) vector")

// Vec3 is a point or direction in the influence/productivity/creativity space.
type Vec3 [3]float64

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v[0] + w[0], v[1] + w[1], v[2] + w[2]}
}

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// Dot returns the dot product of v and w.
func (v Vec3) Dot(w Vec3) float64 {
	return v[0]*w[0] + v[1]*w[1] + v[2]*w[2]
}

// Norm returns the Euclidean norm of v.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// IsUnit reports whether ||v|| is within eps of 1.
func (v Vec3) IsUnit(eps float64) bool {
	return math.Abs(v.Norm()-1) <= eps
}

// Normalize returns v / ||v||. It never silently returns a zero vector:
// vectors with norm below DegenerateEps fail with ErrDegenerateVector.
func Normalize(v Vec3) (Vec3, error) {
	n := v.Norm()
	if n < DegenerateEps {
		return Vec3{}, ErrDegenerateVector
	}
	return v.Scale(1 / n), nil
}

// CosineSimilarity returns the dot product of two unit vectors. Both inputs
// must already be normalized; the result then equals cos(AngleBetween(u, v)).
func CosineSimilarity(u, v Vec3) float64 {
	return u.Dot(v)
}

// AngleBetween returns the angle between two unit vectors in degrees,
// in [0, 180]. Both inputs must already be normalized (precondition, not
// checked). The dot product is clipped to [-1, 1] before acos because
// floating-point error can push it slightly out of domain.
func AngleBetween(u, v Vec3) float64 {
	d := u.Dot(v)
	if d > 1 {
		d = 1
	} else if d < -1 {
		d = -1
	}
	return math.Acos(d) * 180 / math.Pi
}

// Mean returns the component-wise mean of the given vectors. The zero vector
// is returned for an empty input.
func Mean(vs []Vec3) Vec3 {
	if len(vs) == 0 {
		return Vec3{}
	}
	var acc Vec3
	for _, v := range vs {
		acc = acc.Add(v)
	}
	return acc.Scale(1 / float64(len(vs)))
}
