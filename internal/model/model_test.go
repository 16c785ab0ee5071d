package model

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"trajan/internal/vecmath"
)

func TestNewVectorSetRejectsNonUnit(t *testing.T) {
	unit := vecmath.Vec3{1, 0, 0}
	_, err := NewVectorSet(unit, vecmath.Vec3{0, 2, 0}, unit, unit)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "productivity" {
		t.Fatalf("expected productivity field, got %s", verr.Field)
	}
}

func TestNewVectorSetAcceptsUnit(t *testing.T) {
	x := vecmath.Vec3{1, 0, 0}
	y := vecmath.Vec3{0, 1, 0}
	z := vecmath.Vec3{0, 0, 1}
	set, err := NewVectorSet(x, y, z, x)
	if err != nil {
		t.Fatalf("new vector set: %v", err)
	}
	if set.Productivity != y {
		t.Fatalf("unexpected productivity vector: %v", set.Productivity)
	}
}

func TestValidateTrajectory(t *testing.T) {
	ok := []TrajectoryPoint{
		{SequenceIndex: 1, Label: "a", Weight: 0.5},
		{SequenceIndex: 2, Label: "b", Weight: 1},
	}
	if err := ValidateTrajectory(ok); err != nil {
		t.Fatalf("valid trajectory rejected: %v", err)
	}

	dup := []TrajectoryPoint{
		{SequenceIndex: 1, Label: "a"},
		{SequenceIndex: 1, Label: "b"},
	}
	if err := ValidateTrajectory(dup); err == nil {
		t.Fatal("expected error for duplicate sequence index")
	}

	negative := []TrajectoryPoint{{SequenceIndex: 1, Label: "a", Weight: -1}}
	if err := ValidateTrajectory(negative); err == nil {
		t.Fatal("expected error for negative weight")
	}
}

func TestIndexByLabel(t *testing.T) {
	points := []TrajectoryPoint{
		{SequenceIndex: 1, Label: "visionary"},
		{SequenceIndex: 2, Label: "builder"},
		{SequenceIndex: 3, Label: "visionary"},
	}
	index := IndexByLabel(points)
	if len(index["visionary"]) != 2 || len(index["builder"]) != 1 {
		t.Fatalf("unexpected index: %v", index)
	}
	if DistinctLabels(points) != 2 {
		t.Fatalf("expected 2 distinct labels, got %d", DistinctLabels(points))
	}
}

func TestEfficiencySummaryRoundTrip(t *testing.T) {
	summary := EfficiencySummary{
		EfficiencyVector:     vecmath.Vec3{0.5773502691896258, 0.5773502691896258, 0.5773502691896258},
		EfficiencyScore:      0.5773502691896258,
		BalanceFactorDegrees: 90,
		PairwiseAngles: PairwiseAngles{
			InfluenceProductivity:  90,
			InfluenceCreativity:    90,
			ProductivityCreativity: 90,
		},
		Classification: ClassificationImbalanced,
		Interpretation: []string{"first", "second"},
	}

	data, err := json.Marshal(summary)
	if err != nil {
		t.Fatalf("marshal summary: %v", err)
	}
	var decoded EfficiencySummary
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal summary: %v", err)
	}
	if !reflect.DeepEqual(summary, decoded) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", decoded, summary)
	}
}

func TestErrorMessagesNameTheCulprit(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&InsufficientDataError{MissingTag: "influence"}, `no points labeled for "influence"`},
		{&ArchetypeNotFoundError{Archetype: "Da Vinci"}, `"Da Vinci" not found`},
		{&SchemaValidationError{Field: "efficiency_score", Reason: "out of range"}, "efficiency_score"},
		{&ChecksumMismatchError{Name: "run-analysis-final.json", Want: "aa", Got: "bb"}, "run-analysis-final.json"},
	}
	for _, tc := range cases {
		if msg := tc.err.Error(); !strings.Contains(msg, tc.want) {
			t.Fatalf("error %T message %q missing %q", tc.err, msg, tc.want)
		}
	}
}
