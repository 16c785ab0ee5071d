package finalize

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"trajan/internal/model"
	"trajan/internal/vecmath"
)

func fixtureSummary() (model.VectorSet, model.EfficiencySummary) {
	x := vecmath.Vec3{1, 0, 0}
	y := vecmath.Vec3{0, 1, 0}
	z := vecmath.Vec3{0, 0, 1}
	vectors := model.VectorSet{Influence: x, Productivity: y, Creativity: z, Efficiency: x}
	summary := model.EfficiencySummary{
		EfficiencyVector:     x,
		EfficiencyScore:      0.57,
		BalanceFactorDegrees: 90,
		PairwiseAngles: model.PairwiseAngles{
			InfluenceProductivity:  90,
			InfluenceCreativity:    90,
			ProductivityCreativity: 90,
		},
		Classification: model.ClassificationAligned,
		Interpretation: []string{"line one", "line two"},
	}
	return vectors, summary
}

func TestFinalizeWritesArtifactSet(t *testing.T) {
	dir := t.TempDir()
	vectors, summary := fixtureSummary()

	result, err := Finalize(dir, "run-1", vectors, summary, Options{Seed: 42})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	for _, path := range []string{result.AnalysisPath, result.SummaryPath, result.ManifestPath, result.ProvenancePath} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected artifact %s: %v", path, err)
		}
	}
	if len(result.Checksums) != 2 {
		t.Fatalf("expected 2 checksummed artifacts, got %d", len(result.Checksums))
	}

	text, err := os.ReadFile(result.SummaryPath)
	if err != nil {
		t.Fatalf("read summary text: %v", err)
	}
	for _, line := range summary.Interpretation {
		if !strings.Contains(string(text), line) {
			t.Fatalf("summary text missing interpretation line %q", line)
		}
	}
}

func TestFinalizeReproducibleChecksums(t *testing.T) {
	vectors, summary := fixtureSummary()
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first, err := Finalize(t.TempDir(), "run-1", vectors, summary, Options{Seed: 42, Timestamp: ts})
	if err != nil {
		t.Fatalf("first finalize: %v", err)
	}
	second, err := Finalize(t.TempDir(), "run-1", vectors, summary, Options{Seed: 42, Timestamp: ts.Add(time.Hour)})
	if err != nil {
		t.Fatalf("second finalize: %v", err)
	}

	// Content artifact digests must match even when provenance timestamps
	// differ: the manifest never covers the provenance record.
	if !reflect.DeepEqual(first.Checksums, second.Checksums) {
		t.Fatalf("checksums differ:\n first %v\nsecond %v", first.Checksums, second.Checksums)
	}

	firstManifest, err := os.ReadFile(first.ManifestPath)
	if err != nil {
		t.Fatalf("read first manifest: %v", err)
	}
	secondManifest, err := os.ReadFile(second.ManifestPath)
	if err != nil {
		t.Fatalf("read second manifest: %v", err)
	}
	if string(firstManifest) != string(secondManifest) {
		t.Fatal("manifests are not byte-identical")
	}
}

func TestFinalizeRejectsInvalidSummary(t *testing.T) {
	dir := t.TempDir()
	vectors, summary := fixtureSummary()
	summary.EfficiencyScore = 1.5

	_, err := Finalize(dir, "run-1", vectors, summary, Options{})
	var schemaErr *model.SchemaValidationError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaValidationError, got %v", err)
	}
	if schemaErr.Field != "efficiency_score" {
		t.Fatalf("expected efficiency_score field, got %s", schemaErr.Field)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no artifacts after failed validation, found %d", len(entries))
	}
}

func TestValidateSummaryFieldChecks(t *testing.T) {
	_, base := fixtureSummary()

	cases := []struct {
		name   string
		mutate func(*model.EfficiencySummary)
		field  string
	}{
		{"balance out of range", func(s *model.EfficiencySummary) { s.BalanceFactorDegrees = 181 }, "balance_factor_degrees"},
		{"pairwise out of range", func(s *model.EfficiencySummary) { s.PairwiseAngles.InfluenceCreativity = -1 }, "pairwise_angles.influence_creativity"},
		{"unknown classification", func(s *model.EfficiencySummary) { s.Classification = "weird" }, "classification"},
		{"empty interpretation", func(s *model.EfficiencySummary) { s.Interpretation = nil }, "interpretation"},
	}
	for _, tc := range cases {
		summary := base
		summary.Interpretation = append([]string(nil), base.Interpretation...)
		tc.mutate(&summary)
		err := ValidateSummary(summary)
		var schemaErr *model.SchemaValidationError
		if !errors.As(err, &schemaErr) {
			t.Fatalf("%s: expected SchemaValidationError, got %v", tc.name, err)
		}
		if schemaErr.Field != tc.field {
			t.Fatalf("%s: expected field %s, got %s", tc.name, tc.field, schemaErr.Field)
		}
	}

	if err := ValidateSummary(base); err != nil {
		t.Fatalf("valid summary rejected: %v", err)
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	dir := t.TempDir()
	vectors, summary := fixtureSummary()

	result, err := Finalize(dir, "run-1", vectors, summary, Options{Seed: 42})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	report, err := Verify(dir, "run-1")
	if err != nil {
		t.Fatalf("verify clean artifacts: %v", err)
	}
	if len(report.Verified) != 2 {
		t.Fatalf("expected 2 verified artifacts, got %d", len(report.Verified))
	}

	if err := os.WriteFile(result.SummaryPath, []byte("tampered\n"), 0o644); err != nil {
		t.Fatalf("tamper with artifact: %v", err)
	}

	_, err = Verify(dir, "run-1")
	var mismatch *model.ChecksumMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected ChecksumMismatchError, got %v", err)
	}
	if mismatch.Name != filepath.Base(result.SummaryPath) {
		t.Fatalf("mismatch names wrong artifact: %s", mismatch.Name)
	}
}

func TestFinalizeMarkReadOnly(t *testing.T) {
	dir := t.TempDir()
	vectors, summary := fixtureSummary()

	result, err := Finalize(dir, "run-1", vectors, summary, Options{MarkReadOnly: true})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	info, err := os.Stat(result.AnalysisPath)
	if err != nil {
		t.Fatalf("stat artifact: %v", err)
	}
	if info.Mode().Perm()&0o200 != 0 {
		t.Fatalf("expected artifact to be read-only, mode %v", info.Mode())
	}
}
