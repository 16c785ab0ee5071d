package model

import "fmt"

// ValidateTrajectory checks the structural invariants of a trajectory:
// sequence indexes must be unique and strictly increasing, and weights
// must be non-negative.
func ValidateTrajectory(points []TrajectoryPoint) error {
	for i, p := range points {
		if p.Weight < 0 {
			return &ValidationError{
				Field:  fmt.Sprintf("points[%d].weight", i),
				Reason: "must be non-negative",
			}
		}
		if i > 0 && p.SequenceIndex <= points[i-1].SequenceIndex {
			return &ValidationError{
				Field:  fmt.Sprintf("points[%d].sequence_index", i),
				Reason: fmt.Sprintf("must increase strictly (got %d after %d)", p.SequenceIndex, points[i-1].SequenceIndex),
			}
		}
	}
	return nil
}

// DistinctLabels returns the number of distinct labels in the trajectory.
func DistinctLabels(points []TrajectoryPoint) int {
	seen := make(map[string]struct{}, len(points))
	for _, p := range points {
		seen[p.Label] = struct{}{}
	}
	return len(seen)
}

// IndexByLabel builds a label → points index once per trajectory. Lookup by
// label replaces any ad hoc per-call scanning.
func IndexByLabel(points []TrajectoryPoint) map[string][]TrajectoryPoint {
	index := make(map[string][]TrajectoryPoint, len(points))
	for _, p := range points {
		index[p.Label] = append(index[p.Label], p)
	}
	return index
}
