package pathregen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trajan/internal/model"
	"trajan/internal/vecmath"
)

func startSet() model.VectorSet {
	return model.VectorSet{
		Influence:    vecmath.Vec3{1, 0, 0},
		Productivity: vecmath.Vec3{0, 1, 0},
		Creativity:   vecmath.Vec3{0, 0, 1},
		Efficiency:   vecmath.Vec3{0, 0, 1},
	}
}

func TestSearchFindsExactTarget(t *testing.T) {
	target := vecmath.Vec3{0, 0, 1}
	result, err := Search(startSet(), target, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, StatusOK, result.Status)
	require.NotEmpty(t, result.Candidates)
	// The all-poles triple implies the target exactly.
	assert.InDelta(t, 0.0, result.Candidates[0].DistanceDegrees, 1e-9)
}

func TestSearchRanksByDistance(t *testing.T) {
	target, err := vecmath.Normalize(vecmath.Vec3{1, 1, 1})
	require.NoError(t, err)

	result, err := Search(startSet(), target, Config{GridStepDegrees: 30, ToleranceDegrees: 15})
	require.NoError(t, err)
	require.NotEmpty(t, result.Candidates)

	for i := 1; i < len(result.Candidates); i++ {
		assert.LessOrEqual(t, result.Candidates[i-1].DistanceDegrees, result.Candidates[i].DistanceDegrees)
	}
	for _, c := range result.Candidates {
		assert.LessOrEqual(t, c.DistanceDegrees, 15.0)

		// The reported efficiency vector must match its own triple.
		eff, err := vecmath.Normalize(c.Influence.Add(c.Productivity).Add(c.Creativity))
		require.NoError(t, err)
		assert.InDelta(t, 0.0, vecmath.AngleBetween(eff, c.Efficiency), 1e-9)
	}
}

func TestSearchNoCandidateWithinTolerance(t *testing.T) {
	target, err := vecmath.Normalize(vecmath.Vec3{1, 0.5, 0})
	require.NoError(t, err)

	result, err := Search(startSet(), target, Config{GridStepDegrees: 90, ToleranceDegrees: 1})
	require.NoError(t, err)
	assert.Equal(t, StatusNoCandidate, result.Status)
	assert.Empty(t, result.Candidates)
}

func TestSearchRejectsNonUnitTarget(t *testing.T) {
	_, err := Search(startSet(), vecmath.Vec3{2, 0, 0}, DefaultConfig())
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "target", verr.Field)
}

func TestSearchMaxCandidatesCap(t *testing.T) {
	target := vecmath.Vec3{0, 0, 1}
	result, err := Search(startSet(), target, Config{GridStepDegrees: 30, ToleranceDegrees: 20, MaxCandidates: 5})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(result.Candidates), 5)
}

func TestSearchDeterminism(t *testing.T) {
	target, err := vecmath.Normalize(vecmath.Vec3{0.2, 0.3, 0.9})
	require.NoError(t, err)

	cfg := Config{GridStepDegrees: 45, ToleranceDegrees: 10}
	first, err := Search(startSet(), target, cfg)
	require.NoError(t, err)
	second, err := Search(startSet(), target, cfg)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGridDirectionsAreUnit(t *testing.T) {
	for _, d := range gridDirections(30) {
		assert.InDelta(t, 1.0, d.Norm(), 1e-9)
	}
	// 5 latitude rings of 12 directions plus both poles.
	assert.Len(t, gridDirections(30), 2+5*12)
}
