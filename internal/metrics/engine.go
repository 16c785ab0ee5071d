// Package metrics derives the analysis vectors from trajectory data and
// scores their alignment. All computation is pure and deterministic: the
// same points and configuration always produce the same raw metrics.
package metrics

import (
	"fmt"
	"slices"

	"trajan/internal/model"
	"trajan/internal/vecmath"
)

// Config selects how base vectors are derived from a trajectory. It is
// passed explicitly into every call; the engine holds no process-wide state.
type Config struct {
	// InfluenceTags and ProductivityTags select the points whose mean
	// coordinate direction becomes the corresponding base vector.
	InfluenceTags    []string
	ProductivityTags []string

	// CreativityArchetype names the single reference point anchoring the
	// creativity base vector.
	CreativityArchetype string

	// InfluenceBase and ProductivityBase, when set, bypass derivation.
	// They must already be unit vectors.
	InfluenceBase    *vecmath.Vec3
	ProductivityBase *vecmath.Vec3
}

// DefaultConfig returns the conventional tag sets. The creativity archetype
// has no default and must name a point present in the trajectory.
func DefaultConfig() Config {
	return Config{
		InfluenceTags:    []string{"influence"},
		ProductivityTags: []string{"productivity"},
	}
}

// RawMetrics is the numeric output of one engine pass, consumed by Evaluate.
type RawMetrics struct {
	Vectors              model.VectorSet
	EfficiencyScore      float64
	PairwiseAngles       model.PairwiseAngles
	BalanceFactorDegrees float64
}

// Compute turns an ordered trajectory into a VectorSet and raw metrics.
//
// Base vectors not supplied in cfg are derived as the normalized mean
// coordinate direction of tag-matching points; the creativity base always
// comes from the archetype-labeled point. The efficiency vector is the
// normalized sum of the three bases, and the efficiency score is the mean
// cosine similarity between the efficiency vector and each base.
func Compute(points []model.TrajectoryPoint, cfg Config) (RawMetrics, error) {
	if err := model.ValidateTrajectory(points); err != nil {
		return RawMetrics{}, err
	}
	index := model.IndexByLabel(points)
	if err := checkCoverage(points, index, cfg); err != nil {
		return RawMetrics{}, err
	}

	influence, err := baseVector(cfg.InfluenceBase, index, cfg.InfluenceTags, "influence")
	if err != nil {
		return RawMetrics{}, err
	}
	productivity, err := baseVector(cfg.ProductivityBase, index, cfg.ProductivityTags, "productivity")
	if err != nil {
		return RawMetrics{}, err
	}
	creativity, err := archetypeVector(index, cfg.CreativityArchetype)
	if err != nil {
		return RawMetrics{}, err
	}

	efficiency, err := vecmath.Normalize(influence.Add(productivity).Add(creativity))
	if err != nil {
		// The three bases cancelled each other out exactly.
		return RawMetrics{}, fmt.Errorf("efficiency vector: %w", err)
	}

	vectors, err := model.NewVectorSet(influence, productivity, creativity, efficiency)
	if err != nil {
		return RawMetrics{}, err
	}

	score := (vecmath.CosineSimilarity(efficiency, influence) +
		vecmath.CosineSimilarity(efficiency, productivity) +
		vecmath.CosineSimilarity(efficiency, creativity)) / 3

	angles := model.PairwiseAngles{
		InfluenceProductivity:  vecmath.AngleBetween(influence, productivity),
		InfluenceCreativity:    vecmath.AngleBetween(influence, creativity),
		ProductivityCreativity: vecmath.AngleBetween(productivity, creativity),
	}
	balance := (angles.InfluenceProductivity + angles.InfluenceCreativity + angles.ProductivityCreativity) / 3

	return RawMetrics{
		Vectors:              vectors,
		EfficiencyScore:      score,
		PairwiseAngles:       angles,
		BalanceFactorDegrees: balance,
	}, nil
}

// Run composes Compute and Evaluate into the full analysis pipeline.
func Run(points []model.TrajectoryPoint, cfg Config) (model.VectorSet, model.EfficiencySummary, error) {
	raw, err := Compute(points, cfg)
	if err != nil {
		return model.VectorSet{}, model.EfficiencySummary{}, err
	}
	return raw.Vectors, Evaluate(raw), nil
}

// checkCoverage fails fast before any derivation when the trajectory cannot
// possibly yield three base vectors.
func checkCoverage(points []model.TrajectoryPoint, index map[string][]model.TrajectoryPoint, cfg Config) error {
	if model.DistinctLabels(points) >= 3 {
		return nil
	}
	if cfg.InfluenceBase == nil && !anyTagMatches(index, cfg.InfluenceTags) {
		return &model.InsufficientDataError{MissingTag: firstTag(cfg.InfluenceTags, "influence")}
	}
	if cfg.ProductivityBase == nil && !anyTagMatches(index, cfg.ProductivityTags) {
		return &model.InsufficientDataError{MissingTag: firstTag(cfg.ProductivityTags, "productivity")}
	}
	if _, ok := index[cfg.CreativityArchetype]; !ok {
		return &model.InsufficientDataError{MissingTag: firstTag([]string{cfg.CreativityArchetype}, "creativity")}
	}
	return &model.InsufficientDataError{MissingTag: "trajectory"}
}

func anyTagMatches(index map[string][]model.TrajectoryPoint, tags []string) bool {
	for _, tag := range tags {
		if len(index[tag]) > 0 {
			return true
		}
	}
	return false
}

func firstTag(tags []string, fallback string) string {
	for _, tag := range tags {
		if tag != "" {
			return tag
		}
	}
	return fallback
}

func baseVector(explicit *vecmath.Vec3, index map[string][]model.TrajectoryPoint, tags []string, name string) (vecmath.Vec3, error) {
	if explicit != nil {
		if !explicit.IsUnit(vecmath.UnitEps) {
			return vecmath.Vec3{}, &model.ValidationError{Field: name, Reason: "explicit base vector is not unit length"}
		}
		return *explicit, nil
	}

	coords := make([]vecmath.Vec3, 0, 8)
	for _, tag := range tags {
		for _, p := range index[tag] {
			coords = append(coords, p.Coordinates)
		}
	}
	if len(coords) == 0 {
		return vecmath.Vec3{}, &model.InsufficientDataError{MissingTag: firstTag(tags, name)}
	}

	base, err := vecmath.Normalize(vecmath.Mean(coords))
	if err != nil {
		return vecmath.Vec3{}, fmt.Errorf("%s base vector: %w", name, err)
	}
	return base, nil
}

func archetypeVector(index map[string][]model.TrajectoryPoint, archetype string) (vecmath.Vec3, error) {
	matches, ok := index[archetype]
	if !ok || len(matches) == 0 {
		return vecmath.Vec3{}, &model.ArchetypeNotFoundError{Archetype: archetype}
	}
	// The earliest sample anchors the archetype when the label repeats.
	point := slices.MinFunc(matches, func(a, b model.TrajectoryPoint) int {
		return a.SequenceIndex - b.SequenceIndex
	})
	base, err := vecmath.Normalize(point.Coordinates)
	if err != nil {
		return vecmath.Vec3{}, fmt.Errorf("creativity base vector: %w", err)
	}
	return base, nil
}
