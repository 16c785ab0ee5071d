package model

import (
	"trajan/internal/vecmath"
)

// TrajectoryPoint is one observed sample along an evolving process. Points
// are value types and never mutated after construction; sequence indexes
// within one trajectory are unique and strictly increasing.
type TrajectoryPoint struct {
	SequenceIndex int          `json:"sequence_index"`
	Label         string       `json:"label"`
	Weight        float64      `json:"weight"`
	Coordinates   vecmath.Vec3 `json:"coordinates"`
}

// VectorSet holds the three derived base vectors plus the computed efficiency
// vector. Every vector is unit length; construction enforces this.
type VectorSet struct {
	Influence    vecmath.Vec3 `json:"influence"`
	Productivity vecmath.Vec3 `json:"productivity"`
	Creativity   vecmath.Vec3 `json:"creativity"`
	Efficiency   vecmath.Vec3 `json:"efficiency"`
}

// NewVectorSet validates that all four vectors are unit length within
// vecmath.UnitEps and returns the assembled set.
func NewVectorSet(influence, productivity, creativity, efficiency vecmath.Vec3) (VectorSet, error) {
	for _, v := range []struct {
		name string
		vec  vecmath.Vec3
	}{
		{"influence", influence},
		{"productivity", productivity},
		{"creativity", creativity},
		{"efficiency", efficiency},
	} {
		if !v.vec.IsUnit(vecmath.UnitEps) {
			return VectorSet{}, &ValidationError{Field: v.name, Reason: "vector is not unit length"}
		}
	}
	return VectorSet{
		Influence:    influence,
		Productivity: productivity,
		Creativity:   creativity,
		Efficiency:   efficiency,
	}, nil
}

// Classification is the overall health label of a trajectory.
type Classification string

const (
	ClassificationAligned    Classification = "aligned"
	ClassificationImbalanced Classification = "imbalanced"
	ClassificationFragmented Classification = "fragmented"
)

// PairwiseAngles names the three angular separations among the base vectors,
// each in degrees within [0, 180].
type PairwiseAngles struct {
	InfluenceProductivity  float64 `json:"influence_productivity"`
	InfluenceCreativity    float64 `json:"influence_creativity"`
	ProductivityCreativity float64 `json:"productivity_creativity"`
}

// EfficiencySummary is the final computed report for one analysis run. It is
// fully derived from a VectorSet and round-trips losslessly through JSON.
type EfficiencySummary struct {
	EfficiencyVector     vecmath.Vec3   `json:"efficiency_vector"`
	EfficiencyScore      float64        `json:"efficiency_score"`
	BalanceFactorDegrees float64        `json:"balance_factor_degrees"`
	PairwiseAngles       PairwiseAngles `json:"pairwise_angles"`
	Classification       Classification `json:"classification"`
	Interpretation       []string       `json:"interpretation"`
}

// AnalysisRunRecord is the persisted index entry for one finalized analysis.
type AnalysisRunRecord struct {
	RunID           string         `json:"run_id"`
	CreatedAtUTC    string         `json:"created_at_utc"`
	Seed            int64          `json:"seed"`
	PointCount      int            `json:"point_count"`
	EfficiencyScore float64        `json:"efficiency_score"`
	Classification  Classification `json:"classification"`
	ArtifactsDir    string         `json:"artifacts_dir"`
}

// StudyRecord is the persisted index entry for one optimizer study. The raw
// report is kept alongside the headline numbers so a study can be re-exported
// without rerunning the simulation.
type StudyRecord struct {
	StudyID       string  `json:"study_id"`
	CreatedAtUTC  string  `json:"created_at_utc"`
	Seed          int64   `json:"seed"`
	Lengths       []int   `json:"lengths"`
	MeanCostRatio float64 `json:"mean_cost_ratio"`
	ReportJSON    []byte  `json:"report_json,omitempty"`
}
