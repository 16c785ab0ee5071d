package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"trajan/internal/model"
	"trajan/internal/storage"
	"trajan/internal/vecmath"
	trajanapi "trajan/pkg/trajan"
)

const defaultArtifactsDir = "artifacts"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "analyze":
		return runAnalyze(ctx, args[1:])
	case "optimize":
		return runOptimize(ctx, args[1:])
	case "regen":
		return runRegen(ctx, args[1:])
	case "verify":
		return runVerify(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "studies":
		return runStudies(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: trajanctl <analyze|optimize|regen|verify|runs|studies|export> [flags]", msg)
}

func newClient(storeKind, dbPath, artifactsDir string) (*trajanapi.Client, error) {
	return trajanapi.New(trajanapi.Options{
		StoreKind:    storeKind,
		DBPath:       dbPath,
		ArtifactsDir: artifactsDir,
	})
}

func runAnalyze(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	inputPath := fs.String("input", "", "trajectory file (.json or .csv)")
	configPath := fs.String("config", "", "analysis config file (json)")
	runID := fs.String("run-id", "", "run identifier (generated when empty)")
	archetype := fs.String("archetype", "", "creativity archetype label (overrides config)")
	seed := fs.Int64("seed", 0, "provenance seed (0 = default)")
	readOnly := fs.Bool("read-only", false, "mark finalized artifacts read-only")
	timestamp := fs.String("timestamp", "", "fixed provenance timestamp (RFC3339) for reproducible artifacts")
	artifactsDir := fs.String("artifacts", defaultArtifactsDir, "artifacts base directory")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "trajan.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inputPath == "" {
		return fmt.Errorf("analyze: -input is required")
	}

	points, err := loadTrajectory(*inputPath)
	if err != nil {
		return err
	}
	metricsCfg, err := loadMetricsConfig(*configPath)
	if err != nil {
		return err
	}
	if *archetype != "" {
		metricsCfg.CreativityArchetype = *archetype
	}

	var ts time.Time
	if *timestamp != "" {
		ts, err = time.Parse(time.RFC3339, *timestamp)
		if err != nil {
			return fmt.Errorf("parse -timestamp: %w", err)
		}
	}

	client, err := newClient(*storeKind, *dbPath, *artifactsDir)
	if err != nil {
		return err
	}
	defer client.Close()
	if err := client.Init(ctx); err != nil {
		return err
	}

	summary, err := client.Analyze(ctx, trajanapi.AnalyzeRequest{
		RunID:        *runID,
		Points:       points,
		Metrics:      metricsCfg,
		Seed:         *seed,
		Timestamp:    ts,
		MarkReadOnly: *readOnly,
	})
	if err != nil {
		return err
	}

	fmt.Printf("run %s finalized in %s\n", summary.RunID, summary.ArtifactsDir)
	fmt.Printf("classification: %s (score %.4f, balance %.1f deg)\n",
		summary.Summary.Classification, summary.Summary.EfficiencyScore, summary.Summary.BalanceFactorDegrees)
	for _, line := range summary.Summary.Interpretation {
		fmt.Printf("  - %s\n", line)
	}
	return nil
}

func runOptimize(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("optimize", flag.ContinueOnError)
	studyID := fs.String("study-id", "", "study identifier (generated when empty)")
	lengths := fs.String("lengths", "10,100,1000", "comma-separated trajectory lengths")
	seed := fs.Int64("seed", 42, "simulation seed")
	alpha := fs.Float64("alpha", 0.15, "fast-compounding update weight")
	workers := fs.Int("workers", 1, "parallel simulations")
	outPath := fs.String("out", "", "write report JSON to file instead of stdout")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "trajan.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	parsedLengths, err := parseLengths(*lengths)
	if err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, defaultArtifactsDir)
	if err != nil {
		return err
	}
	defer client.Close()
	if err := client.Init(ctx); err != nil {
		return err
	}

	summary, err := client.Optimize(ctx, trajanapi.OptimizeRequest{
		StudyID: *studyID,
		Lengths: parsedLengths,
		Seed:    *seed,
		Alpha:   *alpha,
		Workers: *workers,
	})
	if err != nil {
		return err
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, summary.Wire, 0o644); err != nil {
			return err
		}
		fmt.Printf("study %s written to %s\n", summary.StudyID, *outPath)
		return nil
	}
	fmt.Print(string(summary.Wire))
	return nil
}

func runRegen(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("regen", flag.ContinueOnError)
	target := fs.String("target", "", "target efficiency vector as x,y,z (normalized before search)")
	influence := fs.String("start-influence", "1,0,0", "start influence base as x,y,z")
	productivity := fs.String("start-productivity", "0,1,0", "start productivity base as x,y,z")
	creativity := fs.String("start-creativity", "0,0,1", "start creativity base as x,y,z")
	gridStep := fs.Float64("grid", 30, "angular grid step in degrees")
	tolerance := fs.Float64("tolerance", 5, "acceptance tolerance in degrees")
	maxCandidates := fs.Int("max", 20, "maximum candidates to print (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	_ = ctx
	if *target == "" {
		return fmt.Errorf("regen: -target is required")
	}

	targetVec, err := parseUnitVector(*target, "target")
	if err != nil {
		return err
	}
	start, err := parseStartSet(*influence, *productivity, *creativity)
	if err != nil {
		return err
	}

	client, err := newClient("memory", "", defaultArtifactsDir)
	if err != nil {
		return err
	}
	defer client.Close()

	result, err := client.Regenerate(trajanapi.RegenerateRequest{
		Start:            start,
		Target:           targetVec,
		GridStepDegrees:  *gridStep,
		ToleranceDegrees: *tolerance,
		MaxCandidates:    *maxCandidates,
	})
	if err != nil {
		return err
	}

	fmt.Printf("status: %s\n", result.Status)
	for i, c := range result.Candidates {
		fmt.Printf("%2d. distance %.2f deg, transition %.2f deg, efficiency (%.3f, %.3f, %.3f)\n",
			i+1, c.DistanceDegrees, c.TransitionDegrees, c.Efficiency[0], c.Efficiency[1], c.Efficiency[2])
	}
	return nil
}

func runVerify(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run identifier to verify")
	artifactsDir := fs.String("artifacts", defaultArtifactsDir, "artifacts base directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	_ = ctx
	if *runID == "" {
		return fmt.Errorf("verify: -run-id is required")
	}

	client, err := newClient("memory", "", *artifactsDir)
	if err != nil {
		return err
	}
	defer client.Close()

	report, err := client.Verify(*runID)
	if err != nil {
		return err
	}
	for _, name := range report.Verified {
		fmt.Printf("ok  %s\n", name)
	}
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "maximum runs to list (0 = all)")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "trajan.db", "sqlite database path")
	asJSON := fs.Bool("json", false, "emit JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, defaultArtifactsDir)
	if err != nil {
		return err
	}
	defer client.Close()
	if err := client.Init(ctx); err != nil {
		return err
	}

	runs, err := client.Runs(ctx, trajanapi.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}

	if *asJSON {
		data, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}
	for _, r := range runs {
		fmt.Printf("%s  %s  score %.4f  %s\n", r.CreatedAtUTC, r.RunID, r.EfficiencyScore, r.Classification)
	}
	return nil
}

func runStudies(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("studies", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "maximum studies to list (0 = all)")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "trajan.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, defaultArtifactsDir)
	if err != nil {
		return err
	}
	defer client.Close()
	if err := client.Init(ctx); err != nil {
		return err
	}

	studies, err := client.Studies(ctx, *limit)
	if err != nil {
		return err
	}
	for _, s := range studies {
		fmt.Printf("%s  %s  seed %d  lengths %v  mean cost ratio %.1f\n",
			s.CreatedAtUTC, s.StudyID, s.Seed, s.Lengths, s.MeanCostRatio)
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	id := fs.String("id", "", "run or study identifier")
	outPath := fs.String("o", "", "output file (stdout when empty)")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "trajan.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return usageError("export requires -id")
	}

	client, err := newClient(*storeKind, *dbPath, defaultArtifactsDir)
	if err != nil {
		return err
	}
	defer client.Close()
	if err := client.Init(ctx); err != nil {
		return err
	}

	result, err := client.Export(ctx, *id)
	if err != nil {
		return err
	}
	if *outPath == "" {
		_, err = os.Stdout.Write(result.Data)
		return err
	}
	return os.WriteFile(*outPath, result.Data, 0o644)
}

func parseStartSet(influence, productivity, creativity string) (model.VectorSet, error) {
	i, err := parseUnitVector(influence, "start-influence")
	if err != nil {
		return model.VectorSet{}, err
	}
	p, err := parseUnitVector(productivity, "start-productivity")
	if err != nil {
		return model.VectorSet{}, err
	}
	c, err := parseUnitVector(creativity, "start-creativity")
	if err != nil {
		return model.VectorSet{}, err
	}
	eff, err := vecmath.Normalize(i.Add(p).Add(c))
	if err != nil {
		return model.VectorSet{}, fmt.Errorf("start bases cancel out: %w", err)
	}
	return model.VectorSet{Influence: i, Productivity: p, Creativity: c, Efficiency: eff}, nil
}

func parseUnitVector(raw, name string) (vecmath.Vec3, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 3 {
		return vecmath.Vec3{}, fmt.Errorf("-%s must be x,y,z, got %q", name, raw)
	}
	var v vecmath.Vec3
	for i, part := range parts {
		if _, err := fmt.Sscanf(strings.TrimSpace(part), "%g", &v[i]); err != nil {
			return vecmath.Vec3{}, fmt.Errorf("-%s component %d: %w", name, i, err)
		}
	}
	unit, err := vecmath.Normalize(v)
	if err != nil {
		return vecmath.Vec3{}, fmt.Errorf("-%s: %w", name, err)
	}
	return unit, nil
}
