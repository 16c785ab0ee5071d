package trajan

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"trajan/internal/metrics"
	"trajan/internal/model"
	"trajan/internal/vecmath"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(Options{
		StoreKind:    "memory",
		ArtifactsDir: filepath.Join(t.TempDir(), "artifacts"),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := client.Init(context.Background()); err != nil {
		t.Fatalf("init client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func testPoints() []model.TrajectoryPoint {
	return []model.TrajectoryPoint{
		{SequenceIndex: 1, Label: "influence", Weight: 1, Coordinates: vecmath.Vec3{1, 0.2, 0}},
		{SequenceIndex: 2, Label: "productivity", Weight: 1, Coordinates: vecmath.Vec3{0, 1, 0.3}},
		{SequenceIndex: 3, Label: "muse", Weight: 1, Coordinates: vecmath.Vec3{0.1, 0, 1}},
	}
}

func testMetricsConfig() metrics.Config {
	cfg := metrics.DefaultConfig()
	cfg.CreativityArchetype = "muse"
	return cfg
}

func TestAnalyzeVerifyRuns(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	summary, err := client.Analyze(ctx, AnalyzeRequest{
		RunID:   "run-e2e",
		Points:  testPoints(),
		Metrics: testMetricsConfig(),
		Seed:    42,
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if summary.RunID != "run-e2e" {
		t.Fatalf("unexpected run id: %s", summary.RunID)
	}
	if len(summary.Checksums) == 0 {
		t.Fatal("expected artifact checksums")
	}

	report, err := client.Verify("run-e2e")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if len(report.Verified) == 0 {
		t.Fatal("expected verified artifacts")
	}

	runs, err := client.Runs(ctx, RunsRequest{})
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 1 || runs[0].RunID != "run-e2e" {
		t.Fatalf("unexpected run index: %+v", runs)
	}
	if runs[0].PointCount != 3 {
		t.Fatalf("unexpected point count: %d", runs[0].PointCount)
	}
}

func TestAnalyzeGeneratesRunID(t *testing.T) {
	client := newTestClient(t)

	summary, err := client.Analyze(context.Background(), AnalyzeRequest{
		Points:  testPoints(),
		Metrics: testMetricsConfig(),
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if summary.RunID == "" {
		t.Fatal("expected generated run id")
	}
}

func TestAnalyzeReproducibleArtifacts(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	req := AnalyzeRequest{
		RunID:     "run-repro",
		Points:    testPoints(),
		Metrics:   testMetricsConfig(),
		Seed:      42,
		Timestamp: ts,
	}

	first, err := newTestClient(t).Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("first analyze: %v", err)
	}
	second, err := newTestClient(t).Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("second analyze: %v", err)
	}

	for name, digest := range first.Checksums {
		if second.Checksums[name] != digest {
			t.Fatalf("checksum for %s differs across runs", name)
		}
	}
}

func TestOptimizeStoresStudy(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	summary, err := client.Optimize(ctx, OptimizeRequest{
		StudyID: "study-1",
		Lengths: []int{10, 50},
		Seed:    42,
	})
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if len(summary.Report.Results) != 2 {
		t.Fatalf("expected 2 length results, got %d", len(summary.Report.Results))
	}

	record, ok, err := client.Study(ctx, "study-1")
	if err != nil || !ok {
		t.Fatalf("study lookup: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(record.ReportJSON, summary.Wire) {
		t.Fatal("stored report differs from returned wire bytes")
	}

	repeat, err := client.Optimize(ctx, OptimizeRequest{
		StudyID: "study-2",
		Lengths: []int{10, 50},
		Seed:    42,
	})
	if err != nil {
		t.Fatalf("repeat optimize: %v", err)
	}
	if !bytes.Equal(repeat.Wire, summary.Wire) {
		t.Fatal("identical seed and lengths produced different reports")
	}
}

func TestRegenerate(t *testing.T) {
	client := newTestClient(t)

	start := model.VectorSet{
		Influence:    vecmath.Vec3{1, 0, 0},
		Productivity: vecmath.Vec3{0, 1, 0},
		Creativity:   vecmath.Vec3{0, 0, 1},
		Efficiency:   vecmath.Vec3{0, 0, 1},
	}
	result, err := client.Regenerate(RegenerateRequest{
		Start:  start,
		Target: vecmath.Vec3{0, 0, 1},
	})
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if len(result.Candidates) == 0 {
		t.Fatal("expected candidates for on-grid target")
	}
}

func TestExport(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	study, err := client.Optimize(ctx, OptimizeRequest{
		StudyID: "study-export",
		Lengths: []int{10},
		Seed:    42,
	})
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}

	got, err := client.Export(ctx, "study-export")
	if err != nil {
		t.Fatalf("export study: %v", err)
	}
	if got.Kind != "study" {
		t.Fatalf("kind = %q, want study", got.Kind)
	}
	if !bytes.Equal(got.Data, study.Wire) {
		t.Fatal("exported study bytes differ from wire report")
	}

	run, err := client.Analyze(ctx, AnalyzeRequest{
		RunID:     "run-export",
		Points:    testPoints(),
		Metrics:   testMetricsConfig(),
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	exported, err := client.Export(ctx, run.RunID)
	if err != nil {
		t.Fatalf("export run: %v", err)
	}
	if exported.Kind != "analysis_run" {
		t.Fatalf("kind = %q, want analysis_run", exported.Kind)
	}
	if !bytes.Contains(exported.Data, []byte("run-export")) {
		t.Fatal("exported run record missing run id")
	}

	if _, err := client.Export(ctx, "no-such-id"); err == nil {
		t.Fatal("expected error for unknown id")
	}
}
